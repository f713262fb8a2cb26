package release

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidName reports whether name consists of at least two non-empty
// segments of ASCII letters and digits separated by single dots.
func ValidName(name string) bool {
	segments := strings.Split(name, ".")
	if len(segments) < 2 {
		return false
	}
	for _, segment := range segments {
		if segment == "" {
			return false
		}
		for _, c := range segment {
			if !isAlphaNumeric(c) {
				return false
			}
		}
	}
	return true
}

// ValidFilename rejects names that would escape the release key prefix.
func ValidFilename(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// ValidVersion accepts any free-form version that maps onto exactly one key segment.
func ValidVersion(version string) bool {
	return ValidFilename(version)
}

func isAlphaNumeric(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// NewValidator returns a validator knowing the release specific tags
// `releasename`, `releaseversion` and `filename`.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("releasename", func(fl validator.FieldLevel) bool {
		return ValidName(fl.Field().String())
	})
	_ = v.RegisterValidation("releaseversion", func(fl validator.FieldLevel) bool {
		return ValidVersion(fl.Field().String())
	})
	_ = v.RegisterValidation("filename", func(fl validator.FieldLevel) bool {
		return ValidFilename(fl.Field().String())
	})
	return v
}
