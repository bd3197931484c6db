package http

import (
	"html/template"
	"io"
	"strings"

	"github.com/samirrijal/tempusgw/internal/core/domain"
)

var roadmapTemplate = template.Must(template.New("roadmap").Parse(`<table class="roadmap">
<thead><tr><th></th><th>Description</th><th>Costs</th></tr></thead>
<tbody>
{{- range .Rows}}
<tr><td>{{if .Image}}<img src="{{$.IconDir}}/{{.Icon}}.png" width="24" height="24"/>{{else}}{{.Icon}}{{end}}</td><td>{{.Description}}</td><td>{{range $i, $l := .CostLines}}{{if $i}}<br/>{{end}}{{$l}}{{end}}</td></tr>
{{- end}}
</tbody>
</table>
{{- if .Metrics}}
<table class="metrics">
<thead><tr><th>Metric</th><th>Value</th></tr></thead>
<tbody>
{{- range .Metrics}}
<tr><td>{{.Name}}</td><td>{{.Value}}</td></tr>
{{- end}}
</tbody>
</table>
{{- end}}
`))

type htmlRow struct {
	Image       bool // road icons are images, network names stay text
	Icon        string
	Description string
	CostLines   []string
}

// RenderRoadmap writes the roadmap and metrics of r as HTML tables. Road step
// icons resolve to <iconDir>/<icon>.png; public transport rows show the
// network name as text. Each cost sits on its own line.
func RenderRoadmap(w io.Writer, r domain.RoutingResult, iconDir string) error {
	rows := make([]htmlRow, 0, len(r.Roadmap))
	for _, row := range r.Roadmap {
		var lines []string
		if row.Costs != "" {
			lines = strings.Split(row.Costs, "\n")
		}
		rows = append(rows, htmlRow{
			Image:       row.Kind == "road_step" && row.Icon != "",
			Icon:        row.Icon,
			Description: row.Description,
			CostLines:   lines,
		})
	}
	return roadmapTemplate.Execute(w, struct {
		IconDir string
		Rows    []htmlRow
		Metrics []domain.Metric
	}{strings.TrimSuffix(iconDir, "/"), rows, r.Metrics})
}
