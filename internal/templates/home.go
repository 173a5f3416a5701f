// Package templates renders the HTML pages.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/jjenkins/courtwatch/internal/model"
)

// HomeData holds everything the availability page shows
type HomeData struct {
	SnapshotSize  int
	Subscriptions int
	LastCheck     string
	Day           string
	Hour          string
	Queried       bool
	Error         string
	Slots         []model.Slot
}

// pageWriter keeps the first write error and skips every write after it
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *pageWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// Home renders the availability page with its query form
func Home(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := &pageWriter{w: w}

		p.raw(`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8"><title>courtwatch</title>` +
			`<meta name="viewport" content="width=device-width, initial-scale=1"></head><body><main>`)

		p.printf(`<h1>🎾 Turnos disponibles</h1><p>Turnos conocidos: %d · Suscripciones: %d`, data.SnapshotSize, data.Subscriptions)
		if data.LastCheck != "" {
			p.printf(` · Última revisión: %s`, templ.EscapeString(data.LastCheck))
		}
		p.raw(`</p>`)

		p.printf(`<form method="get" action="/"><input name="day" placeholder="DD/MM/YYYY" value="%s">`+
			`<input name="hour" placeholder="HH:MM" value="%s"><button type="submit">Buscar</button></form>`,
			templ.EscapeString(data.Day), templ.EscapeString(data.Hour))

		switch {
		case data.Error != "":
			p.printf(`<p class="error">%s</p>`, templ.EscapeString(data.Error))
		case data.Queried && len(data.Slots) == 0:
			p.raw(`<p>No hay turnos disponibles para esa fecha y hora.</p>`)
		case len(data.Slots) > 0:
			p.raw(`<table><thead><tr><th>Fecha</th><th>Hora</th><th>Cancha</th><th>Características</th></tr></thead><tbody>`)
			for _, s := range data.Slots {
				p.printf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
					templ.EscapeString(s.Day), templ.EscapeString(s.Hour),
					templ.EscapeString(s.Court), templ.EscapeString(s.Attributes))
			}
			p.raw(`</tbody></table>`)
		}

		p.raw(`</main></body></html>`)
		return p.err
	})
}
