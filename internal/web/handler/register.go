package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/mcoot/realmgate/internal/middleware"
	"github.com/mcoot/realmgate/internal/model"
	"github.com/mcoot/realmgate/internal/services/csrf"
	"github.com/mcoot/realmgate/internal/services/registration"
	webmiddleware "github.com/mcoot/realmgate/internal/web/middleware"
	"github.com/mcoot/realmgate/internal/web/i18n"
	"github.com/mcoot/realmgate/internal/web/templates/layout"
	"github.com/mcoot/realmgate/internal/web/templates/pages"
)

// maxFormBytes bounds the size of a submitted form
const maxFormBytes = 64 << 10

// Form field names
const (
	fieldUsername     = "username"
	fieldEmail        = "email"
	fieldPassword     = "password"
	fieldConfirmation = "re-password"
	fieldCSRFToken    = "csrf_token"
	fieldHoneypot     = "website"
	fieldCaptcha      = "g-recaptcha-response"
	fieldSubmit       = "register"
)

// RegisterConfig holds page settings for RegisterHandler
type RegisterConfig struct {
	CaptchaSiteKey   string
	CaptchaScriptURL string
}

// RegisterHandler serves the registration page and form
type RegisterHandler struct {
	registration *registration.Service
	guard        *csrf.Guard
	cfg          RegisterConfig
	logger       *slog.Logger
}

// NewRegisterHandler creates a new RegisterHandler
func NewRegisterHandler(registration *registration.Service, guard *csrf.Guard, cfg RegisterConfig, logger *slog.Logger) *RegisterHandler {
	return &RegisterHandler{
		registration: registration,
		guard:        guard,
		cfg:          cfg,
		logger:       logger,
	}
}

// Page renders the empty registration form
func (h *RegisterHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pages.RegisterData{})
}

// Submit processes a form submission and renders the form with its result
func (h *RegisterHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// without the submit marker the form is just shown again
	if _, ok := r.PostForm[fieldSubmit]; !ok {
		h.render(w, r, pages.RegisterData{})
		return
	}

	sess := webmiddleware.GetSession(r.Context())
	if sess == nil {
		h.logger.Error("register handler reached without a session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	req := model.RegistrationRequest{
		Username:        r.PostForm.Get(fieldUsername),
		Email:           r.PostForm.Get(fieldEmail),
		Password:        r.PostForm.Get(fieldPassword),
		Confirmation:    r.PostForm.Get(fieldConfirmation),
		CaptchaResponse: r.PostForm.Get(fieldCaptcha),
		Honeypot:        r.PostForm.Get(fieldHoneypot),
		CSRFToken:       r.PostForm.Get(fieldCSRFToken),
		ClientIP:        middleware.ClientIP(r),
	}

	out := h.registration.Register(r.Context(), sess, req)

	loc := i18n.FromRequest(r)
	data := pages.RegisterData{}
	if out.Succeeded() {
		data.Callouts = []pages.Callout{
			{Kind: "success", Message: out.SuccessMessage},
			{Kind: "warning", Message: loc.Textf("result.realmlist", out.Realmlist)},
		}
	} else {
		data.Username = req.Username
		data.Email = req.Email
		data.Callouts = []pages.Callout{
			{Kind: "alert", Message: loc.Message(out.Code, out.Message)},
		}
	}
	h.render(w, r, data)
}

// render fills in the shared page fields and writes the page
func (h *RegisterHandler) render(w http.ResponseWriter, r *http.Request, data pages.RegisterData) {
	sess := webmiddleware.GetSession(r.Context())
	if sess == nil {
		h.logger.Error("register page rendered without a session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	token, err := h.guard.Issue(sess)
	if err != nil {
		h.logger.Error("failed to issue csrf token", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	loc := i18n.FromRequest(r)
	data.PageData = layout.PageData{
		Lang:        loc.Lang(),
		Title:       loc.Text("page.title"),
		Description: loc.Text("page.description"),
		Footer:      []string{loc.Text("footer.trademark"), loc.Text("footer.fan_made")},
	}
	if h.cfg.CaptchaScriptURL != "" {
		data.Scripts = []string{h.cfg.CaptchaScriptURL}
	}
	data.Labels = pages.Labels{
		Heading:         loc.Text("page.heading"),
		Username:        loc.Text("form.username"),
		UsernameHint:    loc.Text("form.username_hint"),
		Email:           loc.Text("form.email"),
		Password:        loc.Text("form.password"),
		PasswordHint:    loc.Text("form.password_hint"),
		ConfirmPassword: loc.Text("form.confirm_password"),
		Submit:          loc.Text("form.submit"),
	}
	data.CSRFToken = token
	data.CaptchaSiteKey = h.cfg.CaptchaSiteKey

	var buf bytes.Buffer
	if err := pages.Register(data).Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render registration page", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
