package server

import (
	"bytes"
	"embed"
	"html/template"

	"minebot/src/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// dashboardData is what the dashboard page renders
type dashboardData struct {
	BotName string
	Server  string
	Status  model.Status
	Logs    []model.LogEntry
}

func renderDashboard(data dashboardData) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderLogs renders the log fragment polled by the dashboard. Messages are
// escaped since they may carry model output.
func renderLogs(entries []model.LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "logs", entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
