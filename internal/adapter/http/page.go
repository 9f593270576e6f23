package http

import (
	"embed"
	"html/template"
)

//go:embed templates/index.html
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

type pageData struct {
	ElementID string
}
