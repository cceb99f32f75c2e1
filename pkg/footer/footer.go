package footer

import (
	"bytes"
	"html/template"
)

// Link is a navigation entry in the footer.
type Link struct {
	Label string
	URL   string
	// Muted renders the link in the low-contrast style used for the staff entrances.
	Muted bool
}

// Config captures the markup hooks and content of the footer.
type Config struct {
	ElementID  string
	BaseClass  string
	BrandText  string
	Year       int
	Links      []Link
	LinkClass  string
	MutedClass string
}

var footerTemplate = template.Must(template.New("footer").Parse(`<footer id="{{.ElementID}}" class="{{.BaseClass}}">
  <span class="footer-brand">&copy; {{.Year}} {{.BrandText}}</span>
  <nav class="footer-links">
    {{range .Links}}<a class="{{if .Muted}}{{$.MutedClass}}{{else}}{{$.LinkClass}}{{end}}" href="{{.URL}}">{{.Label}}</a>
    {{end}}
  </nav>
</footer>`))

// Render returns the footer HTML for the provided configuration.
func Render(config Config) (template.HTML, error) {
	var buffer bytes.Buffer
	if err := footerTemplate.Execute(&buffer, config); err != nil {
		return "", err
	}
	return template.HTML(buffer.String()), nil
}
