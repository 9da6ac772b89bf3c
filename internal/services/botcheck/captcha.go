package botcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultVerifyURL is Google's reCAPTCHA verification endpoint
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// maxResponseBytes caps how much of the provider's response is read
const maxResponseBytes = 64 << 10

// CaptchaVerifier checks a CAPTCHA response token with its provider
type CaptchaVerifier interface {
	Verify(ctx context.Context, response, remoteIP string) bool
}

// HTTPVerifierConfig holds settings for HTTPVerifier
type HTTPVerifierConfig struct {
	Secret    string
	VerifyURL string
	Timeout   time.Duration
}

// DefaultHTTPVerifierConfig returns the reCAPTCHA endpoint with a 10s timeout
func DefaultHTTPVerifierConfig() HTTPVerifierConfig {
	return HTTPVerifierConfig{
		VerifyURL: DefaultVerifyURL,
		Timeout:   10 * time.Second,
	}
}

// HTTPVerifier verifies tokens against a siteverify-style HTTP endpoint.
// Any failure to get a definite positive answer is treated as a failed check.
type HTTPVerifier struct {
	client    *http.Client
	secret    string
	verifyURL string
	logger    *slog.Logger
}

// Ensure HTTPVerifier implements CaptchaVerifier
var _ CaptchaVerifier = (*HTTPVerifier)(nil)

// NewHTTPVerifier creates a verifier. Zero config fields take their defaults.
func NewHTTPVerifier(cfg HTTPVerifierConfig, logger *slog.Logger) *HTTPVerifier {
	def := DefaultHTTPVerifierConfig()
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = def.VerifyURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &HTTPVerifier{
		client:    &http.Client{Timeout: cfg.Timeout},
		secret:    cfg.Secret,
		verifyURL: cfg.VerifyURL,
		logger:    logger,
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the response token to the provider
func (v *HTTPVerifier) Verify(ctx context.Context, response, remoteIP string) bool {
	if response == "" {
		return false
	}

	ok, err := v.verify(ctx, response, remoteIP)
	if err != nil {
		v.logger.Warn("captcha verification failed",
			"error", err,
			"remote_ip", remoteIP)
		return false
	}
	return ok
}

func (v *HTTPVerifier) verify(ctx context.Context, response, remoteIP string) (bool, error) {
	form := url.Values{
		"secret":   {v.secret},
		"response": {response},
		"remoteip": {remoteIP},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("calling provider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var result verifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return false, fmt.Errorf("decoding provider response: %w", err)
	}

	if !result.Success && len(result.ErrorCodes) > 0 {
		v.logger.Info("captcha rejected by provider",
			"error_codes", result.ErrorCodes,
			"remote_ip", remoteIP)
	}
	return result.Success, nil
}
