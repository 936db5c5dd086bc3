package prompts

import "embed"

//go:embed templates/*.tmpl
var TemplateFS embed.FS
