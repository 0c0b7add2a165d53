package output

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/torosent/apiperf/internal/metrics"
	"github.com/torosent/apiperf/internal/threshold"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt      string
	Metadata         ReportMetadata
	Stats            metrics.Stats
	Tasks            []TaskRow
	StatusCodes      []metrics.StatusBucket
	ThresholdSummary *ThresholdSummary
}

// ReportMetadata describes the run the report belongs to.
type ReportMetadata struct {
	RunID     string
	TargetURL string
	Method    string
	WaitTime  time.Duration
}

// TaskRow is one line of the per-task table.
type TaskRow struct {
	Index         int
	StatusCode    int
	OperateTimeMs int64
	BarPercent    float64
	OK            bool
	Error         string
}

// ThresholdSummary counts passed and failed thresholds.
type ThresholdSummary struct {
	Total   int
	Passed  int
	Failed  int
	Results []threshold.Result
}

// GenerateHTMLReport writes a standalone HTML page for one run.
func GenerateHTMLReport(w io.Writer, stats metrics.Stats, results []metrics.TestResult, thresholdResults []threshold.Result, metadata ReportMetadata) error {
	data := HTMLReportData{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Metadata:    metadata,
		Stats:       stats,
		Tasks:       taskRows(results, stats.WorstOperateTimeMs),
		StatusCodes: metrics.FlattenStatusCodes(stats.StatusCodes),
	}
	if len(thresholdResults) > 0 {
		summary := &ThresholdSummary{Total: len(thresholdResults), Results: thresholdResults}
		for _, r := range thresholdResults {
			if r.Pass {
				summary.Passed++
			} else {
				summary.Failed++
			}
		}
		data.ThresholdSummary = summary
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatFloat": func(f float64) string { return fmt.Sprintf("%.2f", f) },
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

func taskRows(results []metrics.TestResult, worst int64) []TaskRow {
	rows := make([]TaskRow, len(results))
	for i, r := range results {
		bar := 0.0
		if worst > 0 {
			bar = float64(r.OperateTimeMs) / float64(worst) * 100
		}
		rows[i] = TaskRow{
			Index:         i + 1,
			StatusCode:    r.StatusCode,
			OperateTimeMs: r.OperateTimeMs,
			BarPercent:    bar,
			OK:            r.OK(),
			Error:         r.ErrorMessage(),
		}
	}
	return rows
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>apiperf Report</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background: #f5f7fa; color: #2c3e50; margin: 0; padding: 20px; }
        .container { max-width: 1200px; margin: 0 auto; background: white; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
        header { background: #34495e; color: white; padding: 24px 32px; border-radius: 8px 8px 0 0; }
        header .meta { opacity: 0.85; font-size: 0.9rem; }
        .content { padding: 32px; }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 16px; margin-bottom: 32px; }
        .card { background: #f8f9fa; border-radius: 6px; padding: 16px; border-left: 4px solid #3498db; }
        .card.success { border-left-color: #10b981; }
        .card.error { border-left-color: #ef4444; }
        .card h3 { font-size: 0.8rem; color: #6c757d; text-transform: uppercase; margin: 0 0 8px; }
        .card .value { font-size: 1.6rem; font-weight: bold; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 32px; }
        th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #e9ecef; font-size: 0.9rem; }
        .bar { background: #3498db; height: 10px; border-radius: 2px; }
        .bar.ng { background: #ef4444; }
        .pass { color: #10b981; font-weight: bold; }
        .fail { color: #ef4444; font-weight: bold; }
    </style>
</head>
<body>
<div class="container">
    <header>
        <h1>apiperf Report</h1>
        <div class="meta">{{.Metadata.Method}} {{.Metadata.TargetURL}}</div>
        <div class="meta">Generated: {{.GeneratedAt}}{{if .Metadata.RunID}} | Run: {{.Metadata.RunID}}{{end}}{{if .Metadata.WaitTime}} | Wait: {{.Metadata.WaitTime}}{{end}}</div>
    </header>
    <div class="content">
        <div class="grid">
            <div class="card"><h3>Total</h3><div class="value">{{.Stats.TotalCount}}</div></div>
            <div class="card success"><h3>OK</h3><div class="value">{{.Stats.OKCount}}</div></div>
            <div class="card error"><h3>NG</h3><div class="value">{{.Stats.NGCount}}</div></div>
            <div class="card"><h3>OK Percent</h3><div class="value">{{formatFloat .Stats.OKPercent}}%</div></div>
        </div>

        <h2>Operate Time (ms)</h2>
        <div class="grid">
            <div class="card"><h3>Average</h3><div class="value">{{.Stats.AverageOperateTimeMs}}</div></div>
            <div class="card"><h3>Best</h3><div class="value">{{.Stats.BestOperateTimeMs}}</div></div>
            <div class="card"><h3>Worst</h3><div class="value">{{.Stats.WorstOperateTimeMs}}</div></div>
            <div class="card"><h3>P50</h3><div class="value">{{.Stats.P50OperateTimeMs}}</div></div>
            <div class="card"><h3>P90</h3><div class="value">{{.Stats.P90OperateTimeMs}}</div></div>
            <div class="card"><h3>P99</h3><div class="value">{{.Stats.P99OperateTimeMs}}</div></div>
        </div>

        {{if .ThresholdSummary}}
        <h2>Thresholds ({{.ThresholdSummary.Passed}}/{{.ThresholdSummary.Total}} Passed)</h2>
        <table>
            <thead><tr><th>Threshold</th><th>Actual</th><th>Status</th></tr></thead>
            <tbody>
            {{range .ThresholdSummary.Results}}
                <tr>
                    <td>{{.Threshold.Raw}}</td>
                    <td>{{formatFloat .Actual}}</td>
                    <td>{{if .Pass}}<span class="pass">PASS</span>{{else}}<span class="fail">FAIL</span>{{end}}</td>
                </tr>
            {{end}}
            </tbody>
        </table>
        {{end}}

        {{if .StatusCodes}}
        <h2>Status Codes</h2>
        <table>
            <thead><tr><th>Code</th><th>Count</th></tr></thead>
            <tbody>
            {{range .StatusCodes}}<tr><td>{{.Code}}</td><td>{{.Count}}</td></tr>{{end}}
            </tbody>
        </table>
        {{end}}

        <h2>Tasks</h2>
        <table>
            <thead><tr><th>#</th><th>Status</th><th>Operate Time</th><th></th><th>Error</th></tr></thead>
            <tbody>
            {{range .Tasks}}
                <tr>
                    <td>{{.Index}}</td>
                    <td>{{.StatusCode}}</td>
                    <td>{{.OperateTimeMs}} ms</td>
                    <td style="width: 40%"><div class="bar{{if not .OK}} ng{{end}}" style="width: {{formatFloat .BarPercent}}%"></div></td>
                    <td>{{.Error}}</td>
                </tr>
            {{end}}
            </tbody>
        </table>
    </div>
</div>
</body>
</html>
`
