package pages

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/realmgate/internal/web/templates/layout"
)

func render(t *testing.T, data RegisterData) (*goquery.Document, string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Register(data).Render(context.Background(), &buf))
	html := buf.String()
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc, html
}

func TestRegisterEscapesEchoedInput(t *testing.T) {
	doc, html := render(t, RegisterData{
		PageData: layout.PageData{Title: "Register"},
		Username: `"><script>alert(1)</script>`,
		Email:    `x@example.com" onfocus="alert(1)`,
		Callouts: []Callout{{Kind: "alert", Message: "<b>bad</b>"}},
	})

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.NotContains(t, html, "<b>bad</b>")
	assert.Equal(t, `"><script>alert(1)</script>`, doc.Find(`input[name="username"]`).AttrOr("value", ""))
	assert.Equal(t, `x@example.com" onfocus="alert(1)`, doc.Find(`input[name="email"]`).AttrOr("value", ""))
	assert.Equal(t, "<b>bad</b>", doc.Find(".callout.alert").Text())
}

func TestRegisterCarriesTokenAndSiteKey(t *testing.T) {
	doc, _ := render(t, RegisterData{CSRFToken: "tok123", CaptchaSiteKey: "site-key"})

	assert.Equal(t, "tok123", doc.Find(`input[type="hidden"][name="csrf_token"]`).AttrOr("value", ""))
	assert.Equal(t, "site-key", doc.Find(".g-recaptcha").AttrOr("data-sitekey", ""))
	assert.Equal(t, 1, doc.Find(`input.honeypot[name="website"]`).Length())
}

func TestRegisterCalloutsInOrder(t *testing.T) {
	doc, _ := render(t, RegisterData{Callouts: []Callout{
		{Kind: "success", Message: "done"},
		{Kind: "warning", Message: "Realmlist: set realmlist 127.0.0.1"},
	}})

	callouts := doc.Find(".response .callout")
	require.Equal(t, 2, callouts.Length())
	assert.True(t, callouts.Eq(0).HasClass("success"))
	assert.True(t, callouts.Eq(1).HasClass("warning"))
}

func TestRegisterDefaultsLang(t *testing.T) {
	doc, _ := render(t, RegisterData{})
	assert.Equal(t, "en", doc.Find("html").AttrOr("lang", ""))
}

func TestRegisterPropagatesWriteError(t *testing.T) {
	err := Register(RegisterData{}).Render(context.Background(), failingWriter{})
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }
