package qrcontent

import "testing"

func TestTarget(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		content map[string]string
		want    string
	}{
		{"website", TypeWebsite, map[string]string{"url": "https://go.dev"}, "https://go.dev"},
		{"website placeholder", TypeWebsite, nil, "https://example.com"},
		{"facebook placeholder", TypeFacebook, map[string]string{}, "https://facebook.com"},
		{
			"whatsapp",
			TypeWhatsApp,
			map[string]string{"phone": "+1 (234) 567-8901", "message": "Hi!"},
			"https://wa.me/12345678901?text=Hi%21",
		},
		{"whatsapp no message", TypeWhatsApp, map[string]string{"phone": "555-01"}, "https://wa.me/55501"},
		{
			"wifi",
			TypeWiFi,
			map[string]string{"ssid": "Home", "password": "secret", "encryption": "WEP"},
			"WIFI:T:WEP;S:Home;P:secret;;",
		},
		{"wifi default encryption", TypeWiFi, map[string]string{"ssid": "Home", "password": "secret"}, "WIFI:T:WPA;S:Home;P:secret;;"},
		{
			"email",
			TypeEmail,
			map[string]string{"email": "a@b.co", "subject": "Hello there", "body": "x&y=z"},
			"mailto:a@b.co?subject=Hello%20there&body=x%26y%3Dz",
		},
		{"text verbatim", TypeText, map[string]string{"text": "plain & simple"}, "plain & simple"},
		{"instagram strips at", TypeInstagram, map[string]string{"username": "@gopher"}, "https://instagram.com/gopher"},
		{
			"apps priority",
			TypeApps,
			map[string]string{"appStoreUrl": "https://apps.apple.com/x", "website": "https://x.dev"},
			"https://apps.apple.com/x",
		},
		{"apps placeholder", TypeApps, nil, "https://example.com"},
		{"social placeholder", TypeSocial, map[string]string{"socialTitle": "me"}, "https://example.com"},
		{"pdf file name fallback", TypePDF, map[string]string{"fileName": "menu.pdf"}, "menu.pdf"},
		{"unknown type url", Type("mystery"), map[string]string{"url": "https://u", "text": "t"}, "https://u"},
		{"unknown type text", Type("mystery"), map[string]string{"text": "t"}, "t"},
		{"coupon placeholder", TypeCoupon, nil, "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Target(Decode(tt.typ, tt.content).Content)
			if got != tt.want {
				t.Fatalf("Target() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTarget_VCardAlwaysWellFormed(t *testing.T) {
	got := Target(VCard{FirstName: "Ada"})
	want := "BEGIN:VCARD\nVERSION:3.0\nN:;Ada\nFN:Ada \nTEL:\nEMAIL:\nORG:\nURL:\nEND:VCARD"
	if got != want {
		t.Fatalf("unexpected vcard:\n%s", got)
	}
}

func TestEncode_IndirectionWhenIDPresent(t *testing.T) {
	c := WiFi{SSID: "Home"}
	got := Encode(c, "abc-123", "https://qr.example.com/")
	if got != "https://qr.example.com/view/abc-123" {
		t.Fatalf("unexpected payload %q", got)
	}

	if got := Encode(c, "", "https://qr.example.com"); got != "WIFI:T:WPA;S:Home;P:;;" {
		t.Fatalf("unexpected preview payload %q", got)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	content := map[string]string{"phone": "+44 20 7946 0000", "message": "see you at 5"}
	first := Encode(Decode(TypeWhatsApp, content).Content, "", "")
	second := Encode(Decode(TypeWhatsApp, content).Content, "", "")
	if first != second {
		t.Fatalf("expected identical output, got %q and %q", first, second)
	}
}

func TestRendersInline(t *testing.T) {
	inline := []Type{TypePDF, TypeVideo, TypeImages, TypeMP3, TypeApps, TypeSocial}
	for _, typ := range inline {
		if !typ.RendersInline() {
			t.Fatalf("expected %s to render inline", typ)
		}
	}
	for _, typ := range []Type{TypeWebsite, TypeWiFi, TypeVCard, TypeText} {
		if typ.RendersInline() {
			t.Fatalf("expected %s to redirect", typ)
		}
	}
}
