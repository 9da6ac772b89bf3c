package registration

import "github.com/mcoot/realmgate/internal/model"

// Outcome is the terminal result of one registration attempt
type Outcome struct {
	// Stage is StageInserted on success, StageRejected otherwise
	Stage model.Stage
	// Reached is the last stage passed before the outcome was decided
	Reached model.Stage
	Kind    model.ErrorKind
	Code    model.MessageCode
	// Message is the default English text for Code; the web layer may translate it
	Message string
	// Detail is the server-side cause, never shown to the user
	Detail string

	Account        *model.Account
	SuccessMessage string
	Realmlist      string
}

// Succeeded reports whether the account was created
func (o Outcome) Succeeded() bool {
	return o.Stage == model.StageInserted
}

var defaultMessages = map[model.MessageCode]string{
	model.MsgRegistered:       "Account created successfully",
	model.MsgTooManyAttempts:  "Too many attempts. Please try again later.",
	model.MsgSecurityFailed:   "Security validation failed. Please refresh the page and try again.",
	model.MsgRegisterFailed:   "Registration failed. Please try again.",
	model.MsgFieldsRequired:   "All fields are required!",
	model.MsgInvalidUsername:  "Username must be 3 to 32 alphanumeric characters!",
	model.MsgInvalidEmail:     "Please provide a valid email address!",
	model.MsgPasswordMismatch: "Passwords do not match!",
	model.MsgCaptchaFailed:    "Captcha verification failed. Please try again.",
	model.MsgAccountInUse:     "Username or email is already in use!",
	model.MsgTryAgainLater:    "Registration failed. Please try again later.",
}

// DefaultMessage returns the English text for code
func DefaultMessage(code model.MessageCode) string {
	return defaultMessages[code]
}
