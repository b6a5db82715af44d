package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/larsks/fancontrol/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Fan Control</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.idle { color: green; font-weight: bold; }
.tracking { color: orange; font-weight: bold; }
.active { color: red; font-weight: bold; }
.starting { color: #888; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.ready { color: green; }
.waiting { color: orange; }
</style>
</head>
<body>
<h1>Fan Control</h1>

<h2>State</h2>
<table>
<tr><th>State</th><td class="{{.StateName}}">{{.StateName}}</td></tr>
{{if not .StateSince.IsZero}}<tr><th>Since</th><td>{{.StateSince.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>{{end}}
<tr><th>Switch</th><td class="{{if .SwitchOn}}on{{else}}off{{end}}">{{if .SwitchOn}}ON{{else}}OFF{{end}}</td></tr>
{{if .HaveDelta}}<tr><th>Last delta</th><td>{{printf "%.2f" .LastDelta}}{{if .Moving}} (moving){{end}}</td></tr>{{end}}
</table>

<h2>Readiness</h2>
<table>
<tr><th>Network</th><td class="{{if .NetworkReady}}ready{{else}}waiting{{end}}">{{if .NetworkReady}}connected{{else}}waiting{{end}}</td></tr>
<tr><th>Clock</th><td class="{{if .TimeValid}}ready{{else}}waiting{{end}}">{{if .TimeValid}}synchronized{{else}}not set{{end}}</td></tr>
</table>

<h2>State Entries</h2>
<table>
<tr><th>Idle</th><td>{{.Counts.Idle}}</td></tr>
<tr><th>Tracking</th><td>{{.Counts.Tracking}}</td></tr>
<tr><th>Active</th><td>{{.Counts.Active}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Delta threshold</th><td>{{.Config.DeltaThreshold}}</td></tr>
<tr><th>Tracking timeout</th><td>{{.Config.TrackingTimeout}}</td></tr>
<tr><th>Switch</th><td>{{.Config.Switch}}</td></tr>
<tr><th>NTP server</th><td>{{.Config.NTPServer}}</td></tr>
{{if .Config.HTTPAddr}}<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>{{end}}
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but the template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime    time.Duration
		StateName string
	}{
		Snapshot:  snap,
		Uptime:    snap.Uptime(),
		StateName: stateName(snap),
	}
	indexTmpl.Execute(w, data)
}

// stateName reports the display name for the current state. Before the
// machine enters its first state the zero Kind would read as "idle", so
// an unset StateSince renders as "starting" instead.
func stateName(snap status.Snapshot) string {
	if snap.StateSince.IsZero() {
		return "starting"
	}
	return snap.State.String()
}
