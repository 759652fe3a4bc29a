package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/gauge-display/internal/coordinator"
	"github.com/sweeney/gauge-display/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"meter": func(m coordinator.MetricStatus) string {
		if !m.HasValue {
			return "no data"
		}
		return fmt.Sprintf("%d", m.LastValue)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Gauge Display</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.shown { color: green; font-weight: bold; }
.hidden { color: #888; }
.pending { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Gauge Display</h1>

<h2>Display</h2>
<table>
<tr><th>First data received</th><td class="{{if .Display.FirstSampleReceived}}shown{{else}}pending{{end}}">{{if .Display.FirstSampleReceived}}yes{{else}}no (booting){{end}}</td></tr>
<tr><th>Display</th><td id="display-state" class="{{if .Display.DisplayBlanked}}hidden{{else}}shown{{end}}">{{if .Display.DisplayBlanked}}blanked{{else}}active{{end}}</td></tr>
<tr><th>Time since last data</th><td>{{.Display.SinceLastDataString}}</td></tr>
</table>

<h2>Meters</h2>
<table>
<tr><th>CPU temp</th><td class="{{if .Display.Temp.Hidden}}hidden{{else}}shown{{end}}">{{meter .Display.Temp}}{{if .Display.Temp.Hidden}} (hidden){{end}}</td></tr>
<tr><th>CPU load</th><td class="{{if .Display.Load.Hidden}}hidden{{else}}shown{{end}}">{{meter .Display.Load}}{{if .Display.Load.Hidden}} (hidden){{end}}</td></tr>
{{if .HasSample}}<tr><th>Host clock</th><td>{{.LastSample.Time}}</td></tr>{{end}}
<tr><th>Rejected lines</th><td>{{.Rejected}}</td></tr>
<tr><th>Dropped samples</th><td>{{.Dropped}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Intent Counts</h2>
<table>
<tr><th>Boot dismissed</th><td>{{.Display.Counts.BootDismissed}}</td></tr>
<tr><th>Meter hidden</th><td>{{.Display.Counts.MetricHidden}}</td></tr>
<tr><th>Meter shown</th><td>{{.Display.Counts.MetricShown}}</td></tr>
<tr><th>Display blanked</th><td>{{.Display.Counts.DisplayBlanked}}</td></tr>
<tr><th>Display restored</th><td>{{.Display.Counts.DisplayRestored}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Serial</th><td>{{.Config.SerialDevice}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Meter hide</th><td>{{.Config.HideTimeoutMs}}ms</td></tr>
<tr><th>Display blank</th><td>{{.Config.BlankTimeoutMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
