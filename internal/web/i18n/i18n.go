// Package i18n picks the page language from the request and translates
// message codes and interface labels.
package i18n

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/mcoot/realmgate/internal/model"
)

// Supported lists the available languages, the first being the fallback
var Supported = []language.Tag{language.English, language.Spanish}

var (
	matcher = language.NewMatcher(Supported)
	texts   = buildCatalog()
)

// Localizer translates for one language
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for the closest supported match to tag
func New(tag language.Tag) *Localizer {
	_, idx, _ := matcher.Match(tag)
	return newLocalizer(Supported[idx])
}

// FromRequest negotiates the language from the lang query parameter, then Accept-Language
func FromRequest(r *http.Request) *Localizer {
	var prefs []language.Tag
	if q := r.URL.Query().Get("lang"); q != "" {
		if tag, err := language.Parse(q); err == nil {
			prefs = append(prefs, tag)
		}
	}
	if accept, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil {
		prefs = append(prefs, accept...)
	}
	_, idx, _ := matcher.Match(prefs...)
	return newLocalizer(Supported[idx])
}

func newLocalizer(tag language.Tag) *Localizer {
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(texts)),
	}
}

// Lang returns the BCP 47 tag for the html lang attribute
func (l *Localizer) Lang() string {
	return l.tag.String()
}

// Message translates an outcome code. Unknown codes fall back to fallback.
func (l *Localizer) Message(code model.MessageCode, fallback string) string {
	key := "msg." + string(code)
	if !l.has(key) {
		return fallback
	}
	return l.printer.Sprintf(key)
}

// Text translates an interface label
func (l *Localizer) Text(key string) string {
	return l.printer.Sprintf(key)
}

// Textf translates a label containing format verbs
func (l *Localizer) Textf(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

func (l *Localizer) has(key string) bool {
	_, ok := entries[l.tag.String()][key]
	return ok
}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, tag := range Supported {
		for key, msg := range entries[tag.String()] {
			// keys and messages are static, SetString only fails on malformed input
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}
