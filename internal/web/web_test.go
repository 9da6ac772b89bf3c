package web_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/realmgate/internal/factory"
	"github.com/mcoot/realmgate/internal/web"
	"github.com/mcoot/realmgate/internal/web/handler"
	"github.com/mcoot/realmgate/internal/web/middleware"
)

const (
	testSiteKey   = "test-site-key"
	testScriptURL = "https://www.google.com/recaptcha/api.js"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar
	headers http.Header
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()
	return newWebTestServerWithApp(t, factory.NewTestApp())
}

// newWebTestServerWithApp creates a test server around a prepared TestApp
func newWebTestServerWithApp(t *testing.T, app *factory.TestApp) *webTestServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router, err := web.NewRouter(web.RouterConfig{
		Logger:              logger,
		Metrics:             app.Metrics,
		SessionService:      app.SessionService,
		RegistrationService: app.RegistrationService,
		TokenGuard:          app.TokenGuard,
		Register: handler.RegisterConfig{
			CaptchaSiteKey:   testSiteKey,
			CaptchaScriptURL: testScriptURL,
		},
		HealthChecks: app.HealthChecks,
		Throttle:     app.Throttle,
		Headers:      middleware.DefaultHeaderConfig(),
		CookieSecure: true,
		StaticDir:    "static",
	})
	require.NoError(t, err)

	return &webTestServer{
		t:       t,
		handler: router,
		app:     app,
		cookies: newCookieJar(),
		headers: make(http.Header),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, values := range ts.headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	// Add cookies from jar
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	// Extract Set-Cookie headers into jar
	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// session returns the session cookie, or nil if none was set
func (j *cookieJar) session() *http.Cookie {
	return j.cookies[middleware.SessionCookieName]
}

// Helper functions for common test operations

// loadForm fetches the registration page and returns its CSRF token
func (ts *webTestServer) loadForm() string {
	ts.t.Helper()
	rr := ts.get("/")
	require.Equal(ts.t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	token, ok := doc.Find(`input[name="csrf_token"]`).Attr("value")
	require.True(ts.t, ok, "Expected a csrf_token field on the form")
	require.NotEmpty(ts.t, token)
	return token
}

// registrationForm builds a valid submission for username
func registrationForm(token, username string) url.Values {
	return url.Values{
		"csrf_token":           {token},
		"website":              {""},
		"username":             {username},
		"email":                {strings.ToLower(username) + "@example.com"},
		"password":             {"Secret123"},
		"re-password":          {"Secret123"},
		"g-recaptcha-response": {"solved"},
		"register":             {"1"},
	}
}

// submit posts form to the registration page and parses the result
func (ts *webTestServer) submit(form url.Values) *goquery.Document {
	ts.t.Helper()
	rr := ts.post("/", form)
	require.Equal(ts.t, http.StatusOK, rr.Code)
	return parseHTML(rr.Body)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}
