// Package validate runs struct-tag validation and reports failures as
// apperr validation issues keyed by JSON field name.
package validate

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"smartraise/internal/platform/apperr"
)

// Bounds of the "score" tag.
const (
	MinScore = 0
	MaxScore = 100
)

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		_ = instance.RegisterValidation("score", func(fl validator.FieldLevel) bool {
			v := fl.Field().Float()
			return v >= MinScore && v <= MaxScore
		})
		_ = instance.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return instance
}

// Struct validates v and returns an *apperr.Error of kind validation, or nil.
func Struct(v any, message string) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(message)
	}
	issues := make([]apperr.Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, apperr.Issue{Field: fe.Field(), Reason: reason(fe)})
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Field < issues[j].Field
	})
	return apperr.Validation(message, issues...)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "score":
		return "must be between 0 and 100"
	case "notblank":
		return "must not be empty"
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}
