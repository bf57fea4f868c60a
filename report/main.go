// Package report renders a rules.Result for people (text) or tools (JSON).
package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"nyiyui.ca/hato/kensa/rules"
)

//go:embed text.tmpl
var templates embed.FS

var t = template.Must(template.New("report").Funcs(sprig.TxtFuncMap()).ParseFS(templates, "*.tmpl"))

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", s)
	}
}

type Options struct {
	// Verbose adds the per-rule scores to text output.
	Verbose bool
}

func Render(w io.Writer, r rules.Result, f Format, o Options) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(r)
	case FormatText:
		return t.ExecuteTemplate(w, "result", map[string]any{
			"r":       r,
			"verbose": o.Verbose,
		})
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}
