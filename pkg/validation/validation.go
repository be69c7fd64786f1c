package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/go-playground/validator/v10"
)

const latin1Letters = `\x{C0}-\x{D6}\x{D8}-\x{F6}\x{F8}-\x{FF}`

var (
	humanNameRegex   = regexp.MustCompile(`^[A-Za-z` + latin1Letters + `\s\-']{1,255}$`)
	labelRegex       = regexp.MustCompile(`^[A-Za-z0-9` + latin1Letters + `\s\-']{1,255}$`)
	descriptionRegex = regexp.MustCompile(
		`^[A-Za-z0-9` + latin1Letters + `\s\-'.,;µ!#£€$%&*+=?^_` + "`" + `¤\[({|})\]~]{1,255}$`,
	)
	telephoneRegex = regexp.MustCompile(`^[0-9]{10,13}$`)
	zipcodeRegex   = regexp.MustCompile(`^[0-9]{5}$`)
	rgbHexRegex    = regexp.MustCompile(`^#[A-Fa-f0-9]{6}$`)
	yearRegex      = regexp.MustCompile(`^[0-9]{4}$`)
)

const passwordSpecials = `!@#$%^&*(),;.?":{}|<>`

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with the shop's custom tags registered:
// humanname, label, description, telephone, zipcode, rgbhex, year and password.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}

			return name
		})
		mustRegisterRegex(v, "humanname", humanNameRegex)
		mustRegisterRegex(v, "label", labelRegex)
		mustRegisterRegex(v, "description", descriptionRegex)
		mustRegisterRegex(v, "telephone", telephoneRegex)
		mustRegisterRegex(v, "zipcode", zipcodeRegex)
		mustRegisterRegex(v, "rgbhex", rgbHexRegex)
		mustRegisterRegex(v, "year", yearRegex)
		if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		}); err != nil {
			panic(err)
		}
		validate = v
	})

	return validate
}

func mustRegisterRegex(v *validator.Validate, tag string, re *regexp.Regexp) {
	if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return matchesNonBlank(re, fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// IsStrongPassword requires 10 to 255 characters with at least one lower
// case letter, one upper case letter, one digit and one special character.
func IsStrongPassword(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 10 || n > 255 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	return lower && upper && digit && special
}

// IsLabel reports whether s is a valid product or line item name.
// Whitespace alone is not a name.
func IsLabel(s string) bool {
	return matchesNonBlank(labelRegex, s)
}

func matchesNonBlank(re *regexp.Regexp, s string) bool {
	return strings.TrimSpace(s) != "" && re.MatchString(s)
}

// Struct validates s and converts the first failure to an *apperr.FieldError.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Invalid(fe.Field(), "failed on '"+fe.Tag()+"'")
	}

	return err
}
