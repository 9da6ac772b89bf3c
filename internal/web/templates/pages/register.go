// Package pages holds the full-page components.
package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/mcoot/realmgate/internal/web/templates/layout"
)

// Labels are the translated interface strings of the registration form
type Labels struct {
	Heading         string
	Username        string
	UsernameHint    string
	Email           string
	Password        string
	PasswordHint    string
	ConfirmPassword string
	Submit          string
}

// Callout is one result message below the form
type Callout struct {
	// Kind is alert, success or warning
	Kind    string
	Message string
}

// RegisterData is the registration page model
type RegisterData struct {
	layout.PageData
	Labels         Labels
	CSRFToken      string
	CaptchaSiteKey string
	// Username and Email are echoed back after a rejected attempt
	Username string
	Email    string
	Callouts []Callout
}

// Register renders the registration page
func Register(data RegisterData) templ.Component {
	return layout.Base(data.PageData, registerBody(data))
}

func registerBody(data RegisterData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		f := &form{w: w}
		l := data.Labels

		f.raw(`<div class="content-box"><div class="content-box-header"><h2>`)
		f.text(l.Heading)
		f.raw(`</h2></div><div class="content-box-content">`)
		f.raw(`<form method="POST" action="/" id="registrationForm" autocomplete="off">`)
		f.hidden("csrf_token", data.CSRFToken)
		f.raw(`<input type="text" name="website" class="honeypot" tabindex="-1" autocomplete="off" aria-hidden="true">`)

		f.label(l.Username)
		f.raw(`<input type="text" name="username" required minlength="3" maxlength="32" pattern="[A-Za-z0-9]+" autocomplete="username" title="`)
		f.text(l.UsernameHint)
		f.raw(`" value="`)
		f.text(data.Username)
		f.raw(`">`)

		f.label(l.Email)
		f.raw(`<input type="email" name="email" required maxlength="255" autocomplete="email" value="`)
		f.text(data.Email)
		f.raw(`">`)

		f.label(l.Password)
		f.raw(`<input type="password" name="password" required minlength="8" maxlength="72" autocomplete="new-password">`)
		f.raw(`<div class="password-requirements"><small>`)
		f.text(l.PasswordHint)
		f.raw(`</small></div>`)

		f.label(l.ConfirmPassword)
		f.raw(`<input type="password" name="re-password" required minlength="8" maxlength="72" autocomplete="new-password">`)

		f.raw(`<div class="form-actions"><div class="g-recaptcha" data-sitekey="`)
		f.text(data.CaptchaSiteKey)
		f.raw(`"></div><button type="submit" name="register" value="1" class="small button"><span class="button-text">`)
		f.text(l.Submit)
		f.raw(`</span></button></div></form></div></div>`)

		f.raw(`<div class="response">`)
		for _, c := range data.Callouts {
			f.raw(`<div class="callout `)
			f.text(c.Kind)
			f.raw(`">`)
			f.text(c.Message)
			f.raw(`</div>`)
		}
		f.raw(`</div>`)
		return f.err
	})
}

type form struct {
	w   io.Writer
	err error
}

func (f *form) raw(s string) {
	if f.err != nil {
		return
	}
	_, f.err = io.WriteString(f.w, s)
}

func (f *form) text(s string) {
	f.raw(templ.EscapeString(s))
}

func (f *form) label(s string) {
	f.raw(`<label class="orange">`)
	f.text(s)
	f.raw(`</label>`)
}

func (f *form) hidden(name, value string) {
	f.raw(`<input type="hidden" name="`)
	f.text(name)
	f.raw(`" value="`)
	f.text(value)
	f.raw(`">`)
}
