package httpapi

import _ "embed"

//go:embed templates/page.tmpl
var pageTemplateHTML string
