package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	defaults := Defaults()

	require.Len(t, defaults, 5)
	assert.Equal(t, map[string]string{
		"biometric_login":   "false",
		"push_notification": "false",
		"sms_notification":  "false",
		"show_onboarding":   "false",
		"widget_order":      "1,2,3,4,5",
	}, defaults)

	defaults["biometric_login"] = "true"
	assert.Equal(t, "false", Defaults()["biometric_login"], "callers must not be able to mutate the schema")
}

func TestKeys_SchemaOrder(t *testing.T) {
	assert.Equal(t, []string{
		KeyBiometricLogin, KeyPushNotification, KeySMSNotification, KeyShowOnboarding, KeyWidgetOrder,
	}, Keys())
}

func TestLookup(t *testing.T) {
	d, ok := Lookup("widget_order")
	require.True(t, ok)
	assert.Equal(t, "1,2,3,4,5", d.DefaultValue)
	assert.Equal(t, `^[1-5](,[1-5]){4}$`, d.ValidationPattern)

	_, ok = Lookup("dark_mode")
	assert.False(t, ok)
}

func TestIsValidValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  bool
	}{
		{"boolean true", KeyBiometricLogin, "true", true},
		{"boolean false", KeyPushNotification, "false", true},
		{"boolean wrong case", KeySMSNotification, "TRUE", false},
		{"boolean with suffix", KeyShowOnboarding, "truex", false},
		{"blank value", KeyBiometricLogin, "   ", false},
		{"empty value", KeyBiometricLogin, "", false},
		{"unknown key", "dark_mode", "true", false},
		{"widget order", KeyWidgetOrder, "5,4,3,2,1", true},
		{"widget order repeats allowed", KeyWidgetOrder, "1,1,1,1,1", true},
		{"widget order too short", KeyWidgetOrder, "1,2,3,4", false},
		{"widget order out of range", KeyWidgetOrder, "1,2,3,4,6", false},
		{"widget order too long", KeyWidgetOrder, "1,2,3,4,5,1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidValue(tt.key, tt.value))
		})
	}
}

func TestValidateBatch_Empty(t *testing.T) {
	assert.Equal(t, []string{"Settings cannot be empty"}, ValidateBatch(nil))
	assert.Equal(t, []string{"Settings cannot be empty"}, ValidateBatch(map[string]string{}))
}

func TestValidateBatch_AllValid(t *testing.T) {
	errs := ValidateBatch(map[string]string{
		KeyBiometricLogin: "true",
		KeyWidgetOrder:    "2,1,3,4,5",
	})
	assert.Empty(t, errs)
}

func TestValidateBatch_InvalidKeyAndValue(t *testing.T) {
	errs := ValidateBatch(map[string]string{
		"dark_mode":       "true",
		KeyBiometricLogin: "yes",
		KeyWidgetOrder:    "1,2,3,4,5",
	})

	require.Len(t, errs, 2)
	assert.Equal(t, "Invalid value for setting biometric_login: yes (expected pattern: ^(true|false)$)", errs[0])
	assert.Equal(t, "Invalid setting key: dark_mode", errs[1])
}

func TestValidateBatch_StableOrder(t *testing.T) {
	in := map[string]string{"zeta": "1", "alpha": "2", "mid": "3"}
	first := ValidateBatch(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ValidateBatch(in))
	}
	assert.Equal(t, []string{
		"Invalid setting key: alpha",
		"Invalid setting key: mid",
		"Invalid setting key: zeta",
	}, first)
}
