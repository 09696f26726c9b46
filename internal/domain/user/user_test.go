package user

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBirthDate(t *testing.T) {
	today := time.Date(2026, time.March, 15, 13, 45, 0, 0, time.UTC)

	assert.NoError(t, ValidateBirthDate(today.AddDate(-25, 0, 0), today, 100))
	assert.NoError(t, ValidateBirthDate(today.AddDate(-100, 0, 0), today, 100), "exactly the bound is allowed")

	err := ValidateBirthDate(today.AddDate(-100, 0, -1), today, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBirthDateTooOld))
	assert.Equal(t, "Birth date cannot be older than 100 years, rejected value: 1926-03-14", err.Error())

	assert.Error(t, ValidateBirthDate(today.AddDate(-101, 0, 0), today, 100))
}

func TestValidateBirthDate_LeapDay(t *testing.T) {
	leapDay := time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateBirthDate(time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), leapDay, 1),
		"Feb 29 minus one year is Feb 28")
	assert.Error(t, ValidateBirthDate(time.Date(2023, time.February, 27, 0, 0, 0, 0, time.UTC), leapDay, 1))

	assert.NoError(t, ValidateBirthDate(time.Date(2020, time.February, 29, 0, 0, 0, 0, time.UTC), leapDay, 4),
		"leap day is kept when the target year has one")
	assert.Error(t, ValidateBirthDate(time.Date(2020, time.February, 28, 0, 0, 0, 0, time.UTC), leapDay, 4))
}

func TestSoftDeleteAndRestore(t *testing.T) {
	now := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	u := &User{ID: 1, IsActive: true}
	require.True(t, u.Active())

	u.SoftDelete(now)
	assert.False(t, u.IsActive)
	require.NotNil(t, u.DeletedAt)
	assert.Equal(t, now, *u.DeletedAt)
	assert.False(t, u.Active())

	require.NoError(t, u.Restore(now.Add(time.Hour)))
	assert.True(t, u.IsActive)
	assert.Nil(t, u.DeletedAt)
	assert.Equal(t, now.Add(time.Hour), u.UpdatedAt)

	assert.ErrorIs(t, u.Restore(now), ErrUserAlreadyActive)
}

func TestRestore_ActiveFlagWithDeletionStamp(t *testing.T) {
	stamp := time.Now().UTC()
	u := &User{IsActive: true, DeletedAt: &stamp}

	require.NoError(t, u.Restore(stamp))
	assert.True(t, u.Active())
}

func TestRename(t *testing.T) {
	now := time.Now().UTC()
	middle := "Quincy"
	u := &User{SSN: "0000000000000001", FirstName: "Old", FamilyName: "Name"}

	u.Rename("John", &middle, "Doe", time.Date(1990, 5, 1, 22, 0, 0, 0, time.UTC), now)

	assert.Equal(t, "John", u.FirstName)
	assert.Equal(t, &middle, u.MiddleName)
	assert.Equal(t, "Doe", u.FamilyName)
	assert.Equal(t, time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), u.BirthDate)
	assert.Equal(t, "0000000000000001", u.SSN, "ssn is immutable")
}

func TestSettingValue(t *testing.T) {
	u := &User{Settings: []Setting{{Key: "widget_order", Value: "1,2,3,4,5"}}}

	v, ok := u.SettingValue("widget_order")
	assert.True(t, ok)
	assert.Equal(t, "1,2,3,4,5", v)

	_, ok = u.SettingValue("missing")
	assert.False(t, ok)
}
