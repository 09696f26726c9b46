package user

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	SystemActor        = "SYSTEM"
	DefaultMaxAgeYears = 100
	BirthDateLayout    = "2006-01-02"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrSettingNotFound   = errors.New("setting not found")
	ErrDuplicateSSN      = errors.New("ssn already registered")
	ErrDuplicateSetting  = errors.New("setting already exists for user")
	ErrUserAlreadyActive = errors.New("user is already active")
	ErrBirthDateTooOld   = errors.New("birth date exceeds maximum age")
)

type Setting struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// User is the aggregate root; it exclusively owns its Settings.
type User struct {
	ID         int64      `json:"id"`
	SSN        string     `json:"ssn"`
	FirstName  string     `json:"first_name"`
	MiddleName *string    `json:"middle_name,omitempty"`
	FamilyName string     `json:"family_name"`
	BirthDate  time.Time  `json:"birth_date"`
	IsActive   bool       `json:"is_active"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	CreatedBy  string     `json:"created_by"`
	UpdatedBy  string     `json:"updated_by"`
	Settings   []Setting  `json:"settings"`
}

// Active reports the steady "not deleted" state. A row with is_active set but
// a deletion stamp still present is not considered active here, so Restore
// can repair it.
func (u *User) Active() bool {
	return u.IsActive && u.DeletedAt == nil
}

func (u *User) SoftDelete(now time.Time) {
	u.IsActive = false
	u.DeletedAt = &now
	u.UpdatedAt = now
	u.UpdatedBy = SystemActor
}

func (u *User) Restore(now time.Time) error {
	if u.Active() {
		return ErrUserAlreadyActive
	}
	u.IsActive = true
	u.DeletedAt = nil
	u.UpdatedAt = now
	u.UpdatedBy = SystemActor
	return nil
}

// Rename overwrites the fields an update is allowed to touch.
func (u *User) Rename(firstName string, middleName *string, familyName string, birthDate time.Time, now time.Time) {
	u.FirstName = firstName
	u.MiddleName = middleName
	u.FamilyName = familyName
	u.BirthDate = DateOf(birthDate)
	u.UpdatedAt = now
	u.UpdatedBy = SystemActor
}

// SettingValue returns the stored value for key.
func (u *User) SettingValue(key string) (string, bool) {
	for _, s := range u.Settings {
		if s.Key == key {
			return s.Value, true
		}
	}
	return "", false
}

// DateOf truncates t to a UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type BirthDateError struct {
	BirthDate   time.Time
	MaxAgeYears int
}

func (e *BirthDateError) Error() string {
	return fmt.Sprintf("Birth date cannot be older than %d years, rejected value: %s",
		e.MaxAgeYears, e.BirthDate.Format(BirthDateLayout))
}

func (e *BirthDateError) Unwrap() error {
	return ErrBirthDateTooOld
}

// yearsBefore subtracts whole years from a calendar date. Feb 29 clamps to
// Feb 28 when the target year has no leap day.
func yearsBefore(t time.Time, years int) time.Time {
	y, m, d := t.Date()
	target := y - years
	if m == time.February && d == 29 && !isLeapYear(target) {
		d = 28
	}
	return time.Date(target, m, d, 0, 0, 0, 0, time.UTC)
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// ValidateBirthDate rejects dates strictly earlier than today minus maxAgeYears.
func ValidateBirthDate(birthDate, today time.Time, maxAgeYears int) error {
	limit := yearsBefore(DateOf(today), maxAgeYears)
	if DateOf(birthDate).Before(limit) {
		return &BirthDateError{BirthDate: DateOf(birthDate), MaxAgeYears: maxAgeYears}
	}
	return nil
}

// Repository is the store contract consumed by the lifecycle and settings use cases.
// Finders return ErrUserNotFound / ErrSettingNotFound when nothing matches.
type Repository interface {
	FindActiveByID(ctx context.Context, id int64) (*User, error)
	FindAnyByID(ctx context.Context, id int64) (*User, error)
	ExistsBySSN(ctx context.Context, ssn string) (bool, error)
	ListActive(ctx context.Context, limit, offset int) ([]*User, error)
	CountActive(ctx context.Context) (int64, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error

	ListSettings(ctx context.Context, userID int64) ([]Setting, error)
	FindSettingByUserAndKey(ctx context.Context, userID int64, key string) (*Setting, error)
	CreateSetting(ctx context.Context, s *Setting) error
	UpdateSetting(ctx context.Context, s *Setting) error
}

// UnitOfWork runs fn against a Repository bound to a single transaction.
// WithinTx commits when fn returns nil and rolls back otherwise; reads issued
// after WithinTx returns observe the committed state.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
	ReadOnly(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
