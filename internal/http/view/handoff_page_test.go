package view

import (
	"strings"
	"testing"
)

func TestSafeRedirect(t *testing.T) {
	cases := []struct {
		target string
		want   bool
	}{
		{"https://example.org/menu", true},
		{"HTTPS://example.org", true},
		{"mailto:hi@example.org?subject=Hi%21", true},
		{"tel:+15550100", true},
		{"https://a.example\r\nSet-Cookie: session=evil", false},
		{"https://a.example/\nx", false},
		{"https:///nohost", false},
		{"BEGIN:VCARD\nVERSION:3.0\nEND:VCARD", false},
		{"WIFI:T:WPA;S:cafe;P:secret;;", false},
		{"javascript:alert(1)", false},
		{"just some text", false},
		{"/relative/path", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := SafeRedirect(tc.target); got != tc.want {
			t.Errorf("SafeRedirect(%q) = %v, want %v", tc.target, got, tc.want)
		}
	}
}

func TestNewHandoffPageData_OpenURI(t *testing.T) {
	cases := []struct {
		payload string
		open    bool
	}{
		{"WIFI:T:WPA;S:cafe;P:secret;;", true},
		{"BEGIN:VCARD\nVERSION:3.0\nEND:VCARD", false},
		{"javascript:alert(document.cookie)", false},
		{"JavaScript:alert(1)", false},
		{"data:text/html,<script>alert(1)</script>", false},
		{"hello world", false},
	}
	for _, tc := range cases {
		data := NewHandoffPageData("", "text", tc.payload)
		if (data.OpenURI != "") != tc.open {
			t.Errorf("payload %q: OpenURI = %q, want open=%v", tc.payload, data.OpenURI, tc.open)
		}
		if data.Title != "QR Code" {
			t.Errorf("expected default title, got %q", data.Title)
		}
	}
}

func TestRenderHandoffPage_EscapesPayload(t *testing.T) {
	html, err := RenderHandoffPage(NewHandoffPageData("Note", "text", "</pre><script>alert(1)</script>\nline2"))
	if err != nil {
		t.Fatalf("RenderHandoffPage returned error: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatal("payload must be escaped")
	}
	if !strings.Contains(html, "line2") {
		t.Fatal("expected payload to be shown")
	}
	if strings.Contains(html, `id="open"`) {
		t.Fatal("multi-line payloads must not get an open action")
	}
}

func TestRenderHandoffPage_WiFiOpens(t *testing.T) {
	html, err := RenderHandoffPage(NewHandoffPageData("Cafe", "wifi", "WIFI:T:WPA;S:cafe;P:secret;;"))
	if err != nil {
		t.Fatalf("RenderHandoffPage returned error: %v", err)
	}
	if !strings.Contains(html, `id="open"`) || !strings.Contains(html, "window.location.assign(target)") {
		t.Fatal("expected open action for a single-line URI")
	}
}
