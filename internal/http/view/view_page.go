package view

import (
	"bytes"
	"html/template"
	"net/url"

	"github.com/sifan077/PowerQR/internal/app/model"
	"github.com/sifan077/PowerQR/internal/app/qrcontent"
)

// ViewPageData provides the dynamic fields required by the hosted view template.
type ViewPageData struct {
	Title     string
	Name      string
	Type      string
	Primary   string
	Secondary string

	FileURL  string
	FileURLs []string
	FileName string

	AppName       string
	Developer     string
	AppStoreURL   string
	GooglePlayURL string
	Website       string
	WebsiteHost   string

	SocialTitle       string
	SocialDescription string
	SocialLinks       []qrcontent.SocialLink
}

// NewViewPageData prepares template data from a public projection.
func NewViewPageData(code model.PublicQRCode) ViewPageData {
	doc := qrcontent.Decode(qrcontent.Type(code.Type), code.ContentStrings())

	data := ViewPageData{
		Title:     code.Name,
		Name:      code.Name,
		Type:      code.Type,
		Primary:   doc.Theme.PrimaryOrDefault(),
		Secondary: doc.Theme.SecondaryOrDefault(),
		FileURLs:  code.FileURLs,
	}
	if code.FileURL != nil {
		data.FileURL = *code.FileURL
	}

	switch c := doc.Content.(type) {
	case qrcontent.File:
		data.FileName = c.FileName
	case qrcontent.Apps:
		data.AppName = c.AppName
		data.Developer = c.Developer
		data.AppStoreURL = c.AppStoreURL
		data.GooglePlayURL = c.GooglePlayURL
		data.Website = c.Website
		if u, err := url.Parse(c.Website); err == nil && u.Host != "" {
			data.WebsiteHost = u.Host
		} else {
			data.WebsiteHost = c.Website
		}
	case qrcontent.Social:
		data.SocialTitle = c.Title
		data.SocialDescription = c.Description
		data.SocialLinks = c.Links
	}

	if data.Title == "" {
		data.Title = "QR Code"
	}
	return data
}

var viewPageTmpl = template.Must(template.New("view_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>{{.Title}}</title>
	<style>
		:root {
			--text: #111827;
			--muted: #6b7280;
			--border: #e5e7eb;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
		}
		* { box-sizing: border-box; }
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			flex-direction: column;
			align-items: center;
			justify-content: center;
			padding: 40px 0;
			color: var(--text);
		}
		.card {
			background: #fff;
			border-radius: 18px;
			padding: 28px;
			width: min(720px, 92vw);
			box-shadow: 0 30px 80px rgba(0,0,0,0.25);
			text-align: center;
		}
		.card.flush { padding: 0; overflow: hidden; }
		h1, h2 { margin: 0 0 8px; }
		p { color: var(--muted); margin-top: 0; }
		iframe { width: 100%; height: 75vh; border: 0; }
		video, audio, img { width: 100%; }
		.stack > * + * { margin-top: 14px; }
		a.button {
			display: flex;
			align-items: center;
			justify-content: center;
			margin-top: 20px;
			width: min(720px, 92vw);
			height: 52px;
			border-radius: 14px;
			color: #fff;
			font-weight: 600;
			text-decoration: none;
		}
		a.store {
			display: block;
			padding: 14px 24px;
			border-radius: 14px;
			background: #000;
			color: #fff;
			text-decoration: none;
			font-weight: 600;
		}
		a.row {
			display: flex;
			justify-content: space-between;
			align-items: center;
			padding: 12px 16px;
			border: 1px solid var(--border);
			border-radius: 14px;
			text-decoration: none;
			color: var(--text);
		}
		.row small { display: block; color: var(--muted); }
		.heading { color: #fff; text-align: center; margin-bottom: 20px; }
		.heading p { color: rgba(255,255,255,0.8); }
	</style>
</head>
<body style="background: linear-gradient(135deg, {{.Primary}}, {{.Secondary}});">
{{if eq .Type "pdf"}}
	{{if .FileURL}}
	<div class="card flush"><iframe src="{{.FileURL}}" title="{{if .FileName}}{{.FileName}}{{else}}PDF Document{{end}}"></iframe></div>
	<a class="button" href="{{.FileURL}}" target="_blank" rel="noopener noreferrer" style="background: {{.Secondary}};">View PDF</a>
	{{else}}
	<div class="card"><h2>{{if .FileName}}{{.FileName}}{{else}}Document.pdf{{end}}</h2><p>No file uploaded yet.</p></div>
	{{end}}
{{else if eq .Type "video"}}
	<div class="card flush">
		{{if .FileURL}}<video controls src="{{.FileURL}}"></video>{{else}}<p>No video uploaded yet.</p>{{end}}
	</div>
{{else if eq .Type "mp3"}}
	<div class="card">
		<h2>{{if .FileName}}{{.FileName}}{{else}}Audio File{{end}}</h2>
		{{if .FileURL}}<audio controls src="{{.FileURL}}"></audio>{{end}}
	</div>
{{else if eq .Type "images"}}
	<div class="card stack">
		{{range $i, $u := .FileURLs}}<img src="{{$u}}" alt="Image {{$i}}" />{{else}}{{if .FileURL}}<img src="{{.FileURL}}" alt="Image" />{{else}}<p>No images uploaded yet.</p>{{end}}{{end}}
	</div>
{{else if eq .Type "apps"}}
	<div class="heading">
		<h1>{{if .AppName}}{{.AppName}}{{else}}App{{end}}</h1>
		{{if .Developer}}<p>{{.Developer}}</p>{{end}}
	</div>
	<div class="card stack">
		{{if .AppStoreURL}}<a class="store" href="{{.AppStoreURL}}" target="_blank" rel="noopener noreferrer">Download on the App Store</a>{{end}}
		{{if .GooglePlayURL}}<a class="store" href="{{.GooglePlayURL}}" target="_blank" rel="noopener noreferrer">Get it on Google Play</a>{{end}}
		{{if and .Website (not .AppStoreURL) (not .GooglePlayURL)}}<a class="row" href="{{.Website}}" target="_blank" rel="noopener noreferrer"><span>{{.WebsiteHost}}</span><span>&rarr;</span></a>{{end}}
	</div>
{{else if eq .Type "social"}}
	<div class="card stack">
		{{if .FileURL}}<img src="{{.FileURL}}" alt="{{.SocialTitle}}" style="width: 128px; height: 128px; object-fit: cover; border-radius: 12px;" />{{end}}
		<h1>{{if .SocialTitle}}{{.SocialTitle}}{{else}}Social Profile{{end}}</h1>
		{{if .SocialDescription}}<p>{{.SocialDescription}}</p>{{end}}
		{{if .SocialLinks}}<p><strong>Find me on</strong></p>{{end}}
		{{range .SocialLinks}}
		<a class="row" href="{{.URL}}" target="_blank" rel="noopener noreferrer">
			<span><strong>{{.Platform}}</strong><small>{{if .Label}}{{.Label}}{{else}}Follow me on {{.Platform}}{{end}}</small></span>
			<span>&rarr;</span>
		</a>
		{{end}}
	</div>
{{else}}
	<div class="card"><h2>{{.Name}}</h2><p>{{.Type}}</p></div>
{{end}}
</body>
</html>
`))

var notFoundPageTmpl = template.Must(template.New("not_found_page").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>QR Code Not Found</title>
	<style>
		body {
			margin: 0;
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			background: linear-gradient(135deg, #3b82f6, #1d4ed8);
			color: #fff;
			font-family: "Inter", -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
			text-align: center;
		}
		p { opacity: 0.8; }
	</style>
</head>
<body>
	<div>
		<h1>QR Code Not Found</h1>
		<p>This QR code may have been deleted or paused.</p>
	</div>
</body>
</html>
`))

// RenderViewPage expands the hosted view template with the provided data.
func RenderViewPage(data ViewPageData) (string, error) {
	var buf bytes.Buffer
	if err := viewPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderNotFoundPage returns the page shown for missing or paused codes.
func RenderNotFoundPage() (string, error) {
	var buf bytes.Buffer
	if err := notFoundPageTmpl.Execute(&buf, nil); err != nil {
		return "", err
	}
	return buf.String(), nil
}
