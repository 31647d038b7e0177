package services

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	hexColor     = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("url_or_path", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || strings.HasPrefix(s, "/") || isHTTPURL(s)
		})
		_ = v.RegisterValidation("http_url", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || isHTTPURL(s)
		})
		_ = v.RegisterValidation("hex_color", func(fl validator.FieldLevel) bool {
			return hexColor.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("notblank_min8", func(fl validator.FieldLevel) bool {
			return len(strings.TrimSpace(fl.Field().String())) >= 8
		})
		validate = v
	})
	return validate
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// check validates in and converts failures into a KindValidation error
// keyed by the JSON field path.
func check(in interface{}) error {
	err := validatorInstance().Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return newError(KindValidation, err, "validation failed")
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = describeTag(fe)
	}
	return errors.WithStack(&Error{Kind: KindValidation, Message: "validation failed", Fields: fields})
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url_or_path":
		return "must be a valid URL or relative path"
	case "http_url":
		return "must be a valid URL"
	case "hex_color":
		return "must be a hex color like #1A1A1A"
	case "notblank_min8":
		return "must contain at least 8 non-whitespace characters"
	}
	return "is invalid"
}
