// Package layout holds the page shell shared by every HTML response.
package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// PageData is passed to every page
type PageData struct {
	Lang        string
	Title       string
	Description string
	Footer      []string
	// Scripts are extra script URLs loaded at the end of the body
	Scripts []string
}

// Base wraps body in the document shell
func Base(data PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := data.Lang
		if lang == "" {
			lang = "en"
		}

		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="`)
		p.text(lang)
		p.raw(`"><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"><title>`)
		p.text(data.Title)
		p.raw(`</title>`)
		if data.Description != "" {
			p.raw(`<meta name="description" content="`)
			p.text(data.Description)
			p.raw(`">`)
		}
		p.raw(`<link rel="stylesheet" type="text/css" href="/static/css/main.css">`)
		p.raw(`<link href="https://fonts.googleapis.com/css2?family=Cinzel:wght@400;600;700;900&amp;family=Spectral+SC:wght@700&amp;display=swap" rel="stylesheet">`)
		p.raw(`</head><body><div class="row"><div class="content">`)
		p.raw(`<div class="content-header"><div class="content-logo">World<span class="orange">of</span>Warcraft</div></div>`)
		if p.err != nil {
			return p.err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		p.raw(`<div class="content-footer">`)
		for _, line := range data.Footer {
			p.raw(`<p>`)
			p.text(line)
			p.raw(`</p>`)
		}
		p.raw(`</div></div></div>`)
		for _, src := range data.Scripts {
			p.raw(`<script type="text/javascript" src="`)
			p.text(src)
			p.raw(`" async defer></script>`)
		}
		p.raw(`</body></html>`)
		return p.err
	})
}

// printer writes markup and stops at the first write error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}
