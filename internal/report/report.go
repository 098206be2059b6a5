// Package report renders a static HTML snapshot of a geography's scoring
// run for sharing with the investment team.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/haystacklabs/haystack/internal/store"
)

//go:embed templates/*.html
var templates embed.FS

// Data is everything the trend report shows for one geography.
type Data struct {
	Geo         string
	GeneratedAt time.Time
	Summary     store.Summary
	Top         []store.RankedCompany
}

var reportTemplate = template.Must(template.New("report.html").Funcs(template.FuncMap{
	"add1":  func(i int) int { return i + 1 },
	"score": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"date":  func(t time.Time) string { return t.Format("2006-01-02") },
	"yesno": func(v bool) string {
		if v {
			return "yes"
		}
		return "no"
	},
}).ParseFS(templates, "templates/report.html"))

// Render writes the HTML report to w.
func Render(w io.Writer, data Data) error {
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
