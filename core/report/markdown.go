package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/resflavors/core/reservation"
)

var markdownTemplate = template.Must(template.New("leases").Parse(`
{{- range . }}
<h2>{{ if .Name }}{{ .Name }}{{ else }}{{ .ID }}{{ end }}</h2>
<p>Lease <code>{{ .ID }}</code></p>
{{- if .Err }}
<p><strong>error:</strong> {{ .Err }}</p>
{{- else if .Reservations }}
<ul>
{{- range .Reservations }}
<li>amount <code>{{ .Amount }}</code>{{ with .Name }}, flavor <code>{{ . }}</code>{{ end }}</li>
{{- end }}
</ul>
{{- else }}
<p>No reservations.</p>
{{- end }}
{{- with .Warnings }}
<h3>Warnings</h3>
<ul>
{{- range . }}
<li>{{ . }}</li>
{{- end }}
</ul>
{{- end }}
{{- end }}
`))

func writeMarkdown(w io.Writer, leases []*reservation.Lease) error {
	present := make([]*reservation.Lease, 0, len(leases))
	for _, lease := range leases {
		if lease != nil {
			present = append(present, lease)
		}
	}

	var html bytes.Buffer
	if err := markdownTemplate.Execute(&html, present); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	markdown, err := htmltomarkdown.ConvertString(html.String())
	if err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	_, err = fmt.Fprintln(w, markdown)
	return err
}
