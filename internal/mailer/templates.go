package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl"))
)

type welcomeData struct {
	SiteName string
	FullName string
	Username string
}

type otpData struct {
	SiteName  string
	FullName  string
	Code      string
	ExpiresAt string
}

// renderBodies produces the HTML and plain-text renditions of a template pair.
func renderBodies(name string, data any) (html string, plain string, err error) {
	var htmlBuf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&htmlBuf, name+".html.tmpl", data); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", name, err)
	}
	var textBuf bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&textBuf, name+".txt.tmpl", data); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", name, err)
	}
	return htmlBuf.String(), textBuf.String(), nil
}
