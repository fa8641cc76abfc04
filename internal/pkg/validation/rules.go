package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// SlugPattern matches lowercase, dash separated identifiers
	SlugPattern = `^[a-z0-9]+(?:-[a-z0-9]+)*$`

	// PasswordMinLength is the shortest accepted password
	PasswordMinLength = 8

	// MinGraduationYear is the earliest accepted graduation year
	MinGraduationYear = 1900

	// GraduationYearLookahead is how many years into the future a graduation year may be
	GraduationYearLookahead = 10
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Slug *regexp.Regexp
}{
	Slug: regexp.MustCompile(SlugPattern),
}

// IsStrongPassword requires the minimum length plus at least one letter and one digit
func IsStrongPassword(password string) bool {
	if len(password) < PasswordMinLength {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// IsValidGraduationYear checks year against [MinGraduationYear, currentYear+lookahead]
func IsValidGraduationYear(year, currentYear int) bool {
	return year >= MinGraduationYear && year <= currentYear+GraduationYearLookahead
}

// EmailMatchesDomain reports whether email belongs to domain or one of its subdomains
func EmailMatchesDomain(email, domain string) bool {
	domain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "@"))
	if domain == "" {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	host := strings.ToLower(email[at+1:])
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Register installs the custom tags and reports field errors by their JSON name
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return CompiledPatterns.Slug.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}

	return v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
}
