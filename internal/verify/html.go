package verify

import (
	"fmt"
	"html/template"
	"os"
)

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Migration Report - {{.SourceDB}} to {{.TargetDB}}</title>
<style>
body { font-family: 'Inter', -apple-system, sans-serif; line-height: 1.5; color: #333; max-width: 1100px; margin: 0 auto; padding: 40px 20px; background-color: #f8f9fa; }
h1, h3 { color: #1a202c; }
.header { border-bottom: 2px solid #e2e8f0; padding-bottom: 20px; margin-bottom: 40px; display: flex; justify-content: space-between; align-items: center; }
.status { padding: 8px 16px; border-radius: 9999px; font-weight: 600; font-size: 0.875rem; }
.status-pass { background-color: #c6f6d5; color: #22543d; }
.status-fail { background-color: #fed7d7; color: #822727; }
.card { background: white; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); padding: 24px; margin-bottom: 32px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th { text-align: left; padding: 10px; background: #f7fafc; border-bottom: 2px solid #edf2f7; font-size: 0.75rem; text-transform: uppercase; color: #4a5568; }
td { padding: 10px; border-bottom: 1px solid #edf2f7; font-size: 0.875rem; }
.badge { padding: 2px 8px; border-radius: 4px; font-size: 0.75rem; font-weight: 600; }
.badge-ok { background: #c6f6d5; color: #22543d; }
.badge-err { background: #fed7d7; color: #822727; }
.badge-warn { background: #feebc8; color: #744210; }
.errors { border-left: 4px solid #f56565; }
.errors li { color: #c53030; }
</style>
</head>
<body>
<div class="header">
  <div>
    <h1>Migration Report</h1>
    <p style="color:#718096;">{{.SourceDB}} (MySQL) &rarr; {{.TargetDB}} (PostgreSQL), schema &quot;{{.Report.TargetSchema}}&quot;</p>
  </div>
  <div class="status {{if .Report.AllPassed}}status-pass{{else}}status-fail{{end}}">
    {{if .Report.AllPassed}}PASSED{{else}}ISSUES DETECTED{{end}}
  </div>
</div>

{{if .Report.Errors}}
<div class="card errors">
  <h3>Errors</h3>
  <ul>{{range .Report.Errors}}<li>{{.}}</li>{{end}}</ul>
</div>
{{end}}

<div class="card">
  <h3>Row Count Comparison</h3>
  <p>{{.Report.RowCounts.Passed}}/{{.Report.RowCounts.Total}} tables match{{if .Report.RowCounts.Extra}}, {{.Report.RowCounts.Extra}} extra{{end}}</p>
  <table>
    <thead><tr><th>Table</th><th>MySQL</th><th>PostgreSQL</th><th>Status</th></tr></thead>
    <tbody>
    {{range .Report.RowCounts.Tables}}
      <tr>
        <td>{{.Table}}</td>
        <td>{{count .SourceCount}}</td>
        <td>{{count .TargetCount}}</td>
        <td><span class="badge {{badge .Status}}">{{.Status}}</span></td>
      </tr>
    {{end}}
    </tbody>
  </table>
</div>

<div class="card">
  <h3>Type Conversions</h3>
  <table>
    <thead><tr><th>Table.Column</th><th>PG Type</th><th>Conversion</th></tr></thead>
    <tbody>
    {{range .Report.TypeConversions}}
      <tr><td>{{.Table}}.{{.Column}}</td><td>{{.TargetType}}</td><td>{{.Conversion}}</td></tr>
    {{end}}
    </tbody>
  </table>
</div>

{{with .Report.Constraints}}
<div class="card">
  <h3>Constraints &amp; Indexes</h3>
  <table>
    <thead><tr><th>Check</th><th>Count</th></tr></thead>
    <tbody>
      <tr><td>Primary Keys</td><td>{{len .PrimaryKeys}}</td></tr>
      <tr><td>Foreign Keys</td><td>{{len .ForeignKeys}}</td></tr>
      <tr><td>Indexes</td><td>{{len .Indexes}}</td></tr>
      <tr><td>Sequences</td><td>{{len .Sequences}}</td></tr>
    </tbody>
  </table>
  {{if .Sequences}}<p>Sequences: {{range $i, $s := .Sequences}}{{if $i}}, {{end}}{{$s}}{{end}}</p>{{end}}
</div>
{{end}}
</body>
</html>
`

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"count": func(n *int64) string {
		if n == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *n)
	},
	"badge": func(status string) string {
		switch status {
		case StatusOK:
			return "badge-ok"
		case StatusExtra:
			return "badge-warn"
		default:
			return "badge-err"
		}
	},
}).Parse(reportTemplate))

// WriteHTML renders the static report document. Failures here are the
// caller's to log; they never change the exit code.
func WriteHTML(path string, report *Report, sourceDB, targetDB string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create HTML report: %w", err)
	}
	defer f.Close()

	data := struct {
		Report   *Report
		SourceDB string
		TargetDB string
	}{report, sourceDB, targetDB}

	if err := htmlReport.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}
