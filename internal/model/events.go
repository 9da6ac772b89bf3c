package model

import "time"

// SecurityEventType names an auditable security decision
type SecurityEventType string

const (
	EventRateLimitExceeded SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventCSRFFailed        SecurityEventType = "CSRF_VALIDATION_FAILED"
	EventHoneypotTriggered SecurityEventType = "HONEYPOT_TRIGGERED"
	EventValidationFailed  SecurityEventType = "VALIDATION_FAILED"
	EventCaptchaFailed     SecurityEventType = "CAPTCHA_FAILED"
	EventAccountConflict   SecurityEventType = "ACCOUNT_CONFLICT"
	EventDatabaseError     SecurityEventType = "DATABASE_ERROR"
	EventRegistered        SecurityEventType = "REGISTRATION_SUCCESS"
	EventInvalidConfig     SecurityEventType = "INVALID_CONFIG"
)

// SecurityEvent is an append-only audit record
type SecurityEvent struct {
	Time     time.Time
	ClientIP string
	Type     SecurityEventType
	Detail   string
}
