package model

// RegistrationRequest is the input bundle of a single form submission
type RegistrationRequest struct {
	Username        string
	Email           string
	Password        string
	Confirmation    string
	CaptchaResponse string
	Honeypot        string
	CSRFToken       string
	ClientIP        string
}

// Stage is a step of the registration state machine
type Stage string

const (
	StageReceived          Stage = "received"
	StageRateChecked       Stage = "rate_checked"
	StageCSRFChecked       Stage = "csrf_checked"
	StageBotChecked        Stage = "bot_checked"
	StageValidated         Stage = "validated"
	StageUniquenessChecked Stage = "uniqueness_checked"
	StageInserted          Stage = "inserted"
	StageRejected          Stage = "rejected"
)

// ErrorKind classifies why a registration was rejected
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindUserInput     ErrorKind = "user_input"
	KindSecurity      ErrorKind = "security"
	KindConflict      ErrorKind = "conflict"
	KindPersistence   ErrorKind = "persistence"
	KindConfiguration ErrorKind = "configuration"
)

// MessageCode identifies the user-facing message for an outcome
// The text itself is looked up per language by the web layer
type MessageCode string

const (
	MsgRegistered       MessageCode = "registered"
	MsgTooManyAttempts  MessageCode = "too_many_attempts"
	MsgSecurityFailed   MessageCode = "security_failed"
	MsgRegisterFailed   MessageCode = "register_failed"
	MsgFieldsRequired   MessageCode = "fields_required"
	MsgInvalidUsername  MessageCode = "invalid_username"
	MsgInvalidEmail     MessageCode = "invalid_email"
	MsgPasswordTooShort MessageCode = "password_too_short"
	MsgPasswordTooLong  MessageCode = "password_too_long"
	MsgPasswordNoUpper  MessageCode = "password_no_upper"
	MsgPasswordNoLower  MessageCode = "password_no_lower"
	MsgPasswordNoDigit  MessageCode = "password_no_digit"
	MsgPasswordMismatch MessageCode = "password_mismatch"
	MsgCaptchaFailed    MessageCode = "captcha_failed"
	MsgAccountInUse     MessageCode = "account_in_use"
	MsgTryAgainLater    MessageCode = "try_again_later"
)
