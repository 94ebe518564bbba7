package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/button-panel/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		switch {
		case days > 0:
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		case h > 0:
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		case m > 0:
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"utc": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Button Panel</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.low { color: green; font-weight: bold; }
.high { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Button Panel</h1>

<h2>Buttons</h2>
<table>
<tr><th>#</th><th>Command</th><th>Pin</th><th>Level</th><th>Presses</th></tr>
{{range .Rows}}<tr><td>{{.Number}}</td><td>{{.Label}}</td><td>{{.Pin}}</td><td class="{{if eq .Level "LOW"}}low{{else}}high{{end}}">{{.Level}}</td><td>{{.Presses}}</td></tr>
{{end}}</table>
<p>Last press: {{with .LastPress}}button {{.Button.Number}} ({{.Button.Label}}) at {{utc .Timestamp}}{{else}}none{{end}}</p>

<h2>Connectivity</h2>
<table>
<tr><th>Serial</th><td>{{.Config.Serial}} @ {{.Config.Baud}}</td></tr>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>
<tr><th>MQTT buffered</th><td>{{.MQTTBuffered}}</td></tr>
{{else}}<tr><th>MQTT</th><td>disabled</td></tr>
{{end}}</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{utc .StartTime}}</td></tr>
<tr><th>GPIO chip</th><td>{{.Config.Chip}}</td></tr>
<tr><th>Pause</th><td>{{.Config.PauseMs}}ms</td></tr>
<tr><th>Poll</th><td>{{if eq .Config.PollMs 0}}continuous{{else}}{{.Config.PollMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
