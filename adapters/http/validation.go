package http

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/khoahotran/user-management/internal/domain/user"
	"github.com/khoahotran/user-management/pkg/apperror"
)

const msgSettingPair = "Each setting must have exactly one key-value pair"

var (
	alphaSpace   = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	registerOnce sync.Once
)

// RegisterValidators installs the custom binding rules on gin's validator and
// reports fields by their JSON or form name.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
			return alphaSpace.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("pastdate", validatePastDate)
	})
}

// validatePastDate accepts a YYYY-MM-DD date that is not in the future.
func validatePastDate(fl validator.FieldLevel) bool {
	d, err := time.Parse(user.BirthDateLayout, fl.Field().String())
	if err != nil {
		return false
	}
	return !d.After(user.DateOf(time.Now().UTC()))
}

func parseDate(s string) time.Time {
	d, _ := time.Parse(user.BirthDateLayout, s)
	return d
}

func rejectedValue(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// fieldPath drops the struct prefix and any index, so settings[1] reports as settings.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.Index(ns, "["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

// bindingError converts a gin binding failure into an InvalidInput error with
// one message per offending field. fallback is used when err does not name a field.
func bindingError(err error, fallback string) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		messages := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			if fe.Tag() == "len" && strings.HasPrefix(fieldPath(fe), "settings") {
				messages = append(messages, msgSettingPair)
				continue
			}
			messages = append(messages, apperror.FieldMessage(fieldPath(fe), rejectedValue(fe.Value())))
		}
		return apperror.NewInvalidInput(messages...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperror.NewInvalidField(typeErr.Field, typeErr.Value)
	}
	return apperror.NewInvalidInput(fallback)
}
