// Package web renders the diagnosis form page for a browser session.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/kiranshivaraju/partscout/internal/catalog"
	"github.com/kiranshivaraju/partscout/internal/render"
	"github.com/kiranshivaraju/partscout/internal/selector"
	"github.com/kiranshivaraju/partscout/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is everything the form template needs.
type Page struct {
	Selector      selector.View
	Problem       string
	Phase         session.Phase
	Submitting    bool
	SubmitEnabled bool
	Notice        *session.Notice
	Result        *render.View
}

// NewPage projects a session snapshot for display. The result, when present,
// is ordered and formatted with prices in currency.
func NewPage(cat *catalog.Catalog, snap session.Snapshot, currency string) Page {
	p := Page{
		Selector:      selector.Project(cat, snap.Selection),
		Problem:       snap.Problem,
		Phase:         snap.Phase,
		Submitting:    snap.Phase == session.PhaseSubmitting,
		SubmitEnabled: snap.SubmitEnabled,
		Notice:        snap.Notice,
	}
	if snap.Phase == session.PhaseSuccess && snap.Result != nil {
		v := render.Project(snap.Result, currency)
		p.Result = &v
	}
	return p
}

// Renderer executes the parsed page template. Safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, p Page) error {
	return r.tmpl.ExecuteTemplate(w, "page.html", pageData{Page: p, Levels: levels(p.Selector)})
}

type levelData struct {
	Level  selector.Level
	Label  string
	Hint   string
	Picker selector.Picker
}

type pageData struct {
	Page
	Levels []levelData
}

func levels(v selector.View) []levelData {
	return []levelData{
		{Level: selector.LevelBrand, Label: "Car brand", Hint: "Type a brand...", Picker: v.Brand},
		{Level: selector.LevelModel, Label: "Model", Hint: "Type a model...", Picker: v.Model},
		{Level: selector.LevelYear, Label: "Year", Hint: "Type a year...", Picker: v.Year},
	}
}
