package server

import (
	"bytes"
	"html/template"
)

// Page formats accepted by the "/" handler.
const (
	PageFormatText = "text"
	PageFormatHTML = "html"
)

// Page controls how the greeting is rendered at "/".
type Page struct {
	Format   string
	Title    string
	AppLabel string
}

var pageTemplate = template.Must(template.New("page").Parse(`<html>
    <head>
        <title>{{ .Page.Title }}</title>
        <style>
            body { font-family: Arial, sans-serif; text-align: center; margin-top: 100px; }
            .version { font-size: 48px; font-weight: bold; color: #007bff; }
            .app-name { font-size: 36px; font-weight: bold; color: #28a745; }
        </style>
    </head>
    <body>
        <h1>{{ .Greeting }}</h1>
        {{- if .Page.AppLabel }}
        <div class="app-name">{{ .Page.AppLabel }}</div>
        {{- end }}
        <div class="version">{{ .Version }}</div>
    </body>
</html>
`))

// renderPage renders the body served at "/" once; it never changes at runtime.
func renderPage(cfg Config) ([]byte, error) {
	if cfg.Page.Format != PageFormatHTML {
		return []byte(cfg.Greeting), nil
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
