package service

import (
	"unicode"

	"github.com/toranj-shop/internal/config"
)

// passwordPolicyError 携带 i18n key，统一归类为 ErrWeakPassword
type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string {
	return e.key
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func (e passwordPolicyError) Key() string {
	return e.key
}

func (e passwordPolicyError) Args() []interface{} {
	return e.args
}

type passwordTraits struct {
	length  int
	upper   bool
	lower   bool
	number  bool
	special bool
}

func inspectPassword(password string) passwordTraits {
	var traits passwordTraits
	for _, r := range password {
		traits.length++
		switch {
		case unicode.IsUpper(r):
			traits.upper = true
		case unicode.IsLower(r):
			traits.lower = true
		case unicode.IsDigit(r):
			traits.number = true
		default:
			traits.special = true
		}
	}
	return traits
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength <= 0 &&
		!policy.RequireUpper &&
		!policy.RequireLower &&
		!policy.RequireNumber &&
		!policy.RequireSpecial {
		return nil
	}

	traits := inspectPassword(password)

	if policy.MinLength > 0 && traits.length < policy.MinLength {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}

	checks := []struct {
		required bool
		present  bool
		key      string
	}{
		{policy.RequireUpper, traits.upper, "error.password_require_upper"},
		{policy.RequireLower, traits.lower, "error.password_require_lower"},
		{policy.RequireNumber, traits.number, "error.password_require_number"},
		{policy.RequireSpecial, traits.special, "error.password_require_special"},
	}
	for _, c := range checks {
		if c.required && !c.present {
			return passwordPolicyError{key: c.key}
		}
	}

	return nil
}
