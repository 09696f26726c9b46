package setting

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	KeyBiometricLogin   = "biometric_login"
	KeyPushNotification = "push_notification"
	KeySMSNotification  = "sms_notification"
	KeyShowOnboarding   = "show_onboarding"
	KeyWidgetOrder      = "widget_order"
)

const ErrMsgEmptySettings = "Settings cannot be empty"

// Definition describes one recognized setting key.
type Definition struct {
	Key               string
	DefaultValue      string
	ValidationPattern string
	pattern           *regexp.Regexp
}

func define(key, defaultValue, pattern string) Definition {
	return Definition{
		Key:               key,
		DefaultValue:      defaultValue,
		ValidationPattern: pattern,
		pattern:           regexp.MustCompile(pattern),
	}
}

// schema order is the order defaults are provisioned in.
var schema = []Definition{
	define(KeyBiometricLogin, "false", `^(true|false)$`),
	define(KeyPushNotification, "false", `^(true|false)$`),
	define(KeySMSNotification, "false", `^(true|false)$`),
	define(KeyShowOnboarding, "false", `^(true|false)$`),
	define(KeyWidgetOrder, "1,2,3,4,5", `^[1-5](,[1-5]){4}$`),
}

var byKey = func() map[string]Definition {
	m := make(map[string]Definition, len(schema))
	for _, d := range schema {
		m[d.Key] = d
	}
	return m
}()

// Lookup returns the definition registered for key.
func Lookup(key string) (Definition, bool) {
	d, ok := byKey[key]
	return d, ok
}

// Keys returns every recognized key in schema order.
func Keys() []string {
	keys := make([]string, len(schema))
	for i, d := range schema {
		keys[i] = d.Key
	}
	return keys
}

// Matches reports whether value satisfies the definition's pattern.
// Blank values never match.
func (d Definition) Matches(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	return d.pattern.MatchString(value)
}

func IsValidValue(key, value string) bool {
	d, ok := Lookup(key)
	if !ok {
		return false
	}
	return d.Matches(value)
}

// Defaults returns a fresh key -> default value map covering the whole schema.
func Defaults() map[string]string {
	out := make(map[string]string, len(schema))
	for _, d := range schema {
		out[d.Key] = d.DefaultValue
	}
	return out
}

// ValidateBatch checks every entry of settings against the schema and returns
// one message per offending entry, in ascending key order. An empty result
// means the whole batch is valid.
func ValidateBatch(settings map[string]string) []string {
	if len(settings) == 0 {
		return []string{ErrMsgEmptySettings}
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	errs := make([]string, 0)
	for _, key := range keys {
		value := settings[key]
		d, ok := Lookup(key)
		if !ok {
			errs = append(errs, fmt.Sprintf("Invalid setting key: %s", key))
			continue
		}
		if !d.Matches(value) {
			errs = append(errs, fmt.Sprintf("Invalid value for setting %s: %s (expected pattern: %s)",
				key, value, d.ValidationPattern))
		}
	}
	return errs
}
