package view

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"
)

// schemes that run in the page's origin are never opened from the hand-off page
var scriptSchemes = map[string]bool{
	"javascript": true,
	"vbscript":   true,
	"data":       true,
	"blob":       true,
	"file":       true,
}

var redirectSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
	"sms":    true,
}

// SafeRedirect reports whether target can be sent as a Location header: a
// single-line absolute URI with a browser-handled scheme.
func SafeRedirect(target string) bool {
	u, ok := parseSingleLineURI(target)
	if !ok {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if !redirectSchemes[scheme] {
		return false
	}
	if (scheme == "http" || scheme == "https") && u.Host == "" {
		return false
	}
	return true
}

func parseSingleLineURI(s string) (*url.URL, bool) {
	if s == "" || strings.IndexFunc(s, isControl) >= 0 {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return nil, false
	}
	return u, true
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// HandoffPageData provides the fields required by the hand-off template.
type HandoffPageData struct {
	Title   string
	Type    string
	Payload string
	// OpenURI is set when the payload is a single-line URI the device may
	// know how to open, e.g. WIFI: or a custom app scheme.
	OpenURI string
}

// NewHandoffPageData prepares a hand-off page for payloads that cannot be
// redirected to.
func NewHandoffPageData(name, typ, payload string) HandoffPageData {
	data := HandoffPageData{
		Title:   name,
		Type:    typ,
		Payload: payload,
	}
	if u, ok := parseSingleLineURI(payload); ok && !scriptSchemes[strings.ToLower(u.Scheme)] {
		data.OpenURI = payload
	}
	if data.Title == "" {
		data.Title = "QR Code"
	}
	return data
}

var handoffPageTmpl = template.Must(template.New("handoff_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{.Title}}</title>
	<style>
		:root {
			--bg: #090a0f;
			--card: rgba(255, 255, 255, 0.05);
			--border: rgba(255, 255, 255, 0.15);
			--text: #e7ecff;
			--muted: #a1acc5;
			--accent: #7dd3fc;
			--accent-strong: #38bdf8;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: radial-gradient(circle at 20% 20%, #111827, #030712 60%);
			color: var(--text);
		}
		.card {
			background: var(--card);
			border: 1px solid var(--border);
			border-radius: 18px;
			padding: 32px;
			width: min(520px, 92vw);
			box-shadow: 0 45px 100px rgba(0,0,0,0.35);
		}
		h1 { font-size: 1.5rem; margin-bottom: 6px; }
		p { color: var(--muted); margin-top: 0; }
		pre {
			margin: 24px 0;
			padding: 18px;
			border-radius: 14px;
			background: rgba(125, 211, 252, 0.07);
			border: 1px solid rgba(125, 211, 252, 0.25);
			white-space: pre-wrap;
			word-break: break-all;
			font-size: 0.95rem;
		}
		.actions { display: flex; gap: 12px; flex-wrap: wrap; }
		button {
			padding: 0 28px;
			height: 48px;
			border: 0;
			border-radius: 999px;
			background: linear-gradient(120deg, var(--accent), var(--accent-strong));
			color: #050708;
			font-weight: 600;
			cursor: pointer;
		}
	</style>
</head>
<body>
	<div class="card">
		<h1>{{.Title}}</h1>
		<p>This QR code contains {{if .Type}}{{.Type}} {{end}}content:</p>
		<pre id="payload">{{.Payload}}</pre>
		<div class="actions">
			{{if .OpenURI}}<button id="open" type="button">Open</button>{{end}}
			<button id="copy" type="button">Copy</button>
		</div>
	</div>
	<script>
		(function() {
			const payload = {{.Payload}};
			const copy = document.getElementById("copy");
			copy.addEventListener("click", function() {
				if (navigator.clipboard) {
					navigator.clipboard.writeText(payload).then(function() { copy.textContent = "Copied"; });
				}
			});
			{{if .OpenURI}}
			const target = {{.OpenURI}};
			document.getElementById("open").addEventListener("click", function() {
				window.location.assign(target);
			});
			window.location.assign(target);
			{{end}}
		})();
	</script>
</body>
</html>
`))

// RenderHandoffPage expands the hand-off template with the provided data.
func RenderHandoffPage(data HandoffPageData) (string, error) {
	var buf bytes.Buffer
	if err := handoffPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
