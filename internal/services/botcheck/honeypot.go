// Package botcheck rejects automated submissions using a hidden honeypot field
// and a third-party CAPTCHA verification.
package botcheck

// HoneypotAccepts reports whether the hidden field was left empty.
// Humans never see the field, so any content marks the submission as automated.
func HoneypotAccepts(value string) bool {
	return value == ""
}
