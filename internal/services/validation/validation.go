// Package validation holds the field rules applied to a registration form.
// Every function returns nil when the value is acceptable, or the first rule it breaks.
package validation

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/mcoot/realmgate/internal/model"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 32
	EmailMaxLength    = 255
	PasswordMinLength = 8
	PasswordMaxLength = 72
)

// DefaultDisposableDomains are rejected when no denylist is configured
var DefaultDisposableDomains = []string{"tempmail.com", "throwaway.email", "10minutemail.com"}

// Error describes a failed rule
type Error struct {
	Field   string
	Code    model.MessageCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Required checks that the four form fields were filled in, in form order
func Required(username, email, password, confirmation string) *Error {
	fields := []struct{ name, value string }{
		{"username", username},
		{"email", email},
		{"password", password},
		{"re-password", confirmation},
	}
	for _, f := range fields {
		if f.value == "" {
			return &Error{Field: f.name, Code: model.MsgFieldsRequired, Message: "All fields are required"}
		}
	}
	return nil
}

// Username allows 3 to 32 ASCII letters and digits after trimming
func Username(username string) *Error {
	username = strings.TrimSpace(username)
	if len(username) < UsernameMinLength || len(username) > UsernameMaxLength || !isASCIIAlnum(username) {
		return &Error{
			Field:   "username",
			Code:    model.MsgInvalidUsername,
			Message: fmt.Sprintf("Username must be %d to %d alphanumeric characters", UsernameMinLength, UsernameMaxLength),
		}
	}
	return nil
}

// Email requires a bare, well-formed address no longer than 255 bytes
// whose domain is not in disposable
func Email(email string, disposable []string) *Error {
	invalid := &Error{Field: "email", Code: model.MsgInvalidEmail, Message: "Please provide a valid email address"}

	email = strings.TrimSpace(email)
	if email == "" || len(email) > EmailMaxLength {
		return invalid
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return invalid
	}

	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !validDomain(domain) {
		return invalid
	}

	for _, d := range disposable {
		if strings.EqualFold(domain, strings.TrimSpace(d)) {
			return invalid
		}
	}
	return nil
}

// Password enforces length and character class rules; the first failing rule is reported
func Password(password string) *Error {
	switch {
	case len(password) < PasswordMinLength:
		return passwordError(model.MsgPasswordTooShort, "Password must be at least 8 characters long")
	case len(password) > PasswordMaxLength:
		return passwordError(model.MsgPasswordTooLong, "Password must be less than 72 characters")
	case !strings.ContainsFunc(password, isASCIIUpper):
		return passwordError(model.MsgPasswordNoUpper, "Password must contain at least one uppercase letter")
	case !strings.ContainsFunc(password, isASCIILower):
		return passwordError(model.MsgPasswordNoLower, "Password must contain at least one lowercase letter")
	case !strings.ContainsFunc(password, isASCIIDigit):
		return passwordError(model.MsgPasswordNoDigit, "Password must contain at least one number")
	}
	return nil
}

// Confirmation requires the repeated password to match exactly
func Confirmation(password, confirmation string) *Error {
	if password != confirmation {
		return &Error{Field: "re-password", Code: model.MsgPasswordMismatch, Message: "Passwords do not match"}
	}
	return nil
}

func passwordError(code model.MessageCode, msg string) *Error {
	return &Error{Field: "password", Code: code, Message: msg}
}

func validDomain(domain string) bool {
	if domain == "" || !strings.Contains(domain, ".") {
		return false
	}
	for label := range strings.SplitSeq(domain, ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	return true
}

func isASCIIAlnum(s string) bool {
	for _, r := range s {
		if !isASCIIUpper(r) && !isASCIILower(r) && !isASCIIDigit(r) {
			return false
		}
	}
	return true
}

func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }
