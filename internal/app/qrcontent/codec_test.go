package qrcontent

import (
	"reflect"
	"testing"
)

func TestDecode_ThemeIsSeparatedFromContent(t *testing.T) {
	doc := Decode(TypeWebsite, map[string]string{
		"url":          "https://go.dev",
		"themePrimary": "#111111",
	})

	if doc.Theme.Primary != "#111111" {
		t.Fatalf("expected primary colour, got %q", doc.Theme.Primary)
	}
	if doc.Theme.SecondaryOrDefault() != DefaultThemeSecondary {
		t.Fatalf("expected default secondary colour, got %q", doc.Theme.SecondaryOrDefault())
	}
	if w, ok := doc.Content.(Website); !ok || w.URL != "https://go.dev" {
		t.Fatalf("unexpected content %#v", doc.Content)
	}
}

func TestDecode_DropsUploadKeys(t *testing.T) {
	doc := Decode(TypePDF, map[string]string{
		"fileName":     "menu.pdf",
		"fileDataUrl":  "data:application/pdf;base64,AAAA",
		"fileDataUrls": "[]",
		"note":         "keep me",
	})

	got := doc.Map()
	want := map[string]string{"fileName": "menu.pdf", "note": "keep me"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Map() = %v, want %v", got, want)
	}
}

func TestDocumentMap_RoundTrip(t *testing.T) {
	stored := map[string]string{
		"socialTitle":    "Gopher",
		"socialLinks":    `[{"platform":"youtube","url":"https://youtube.com/@g","label":"YT"}]`,
		"themeSecondary": "#00ff00",
	}

	doc := Decode(TypeSocial, stored)
	social, ok := doc.Content.(Social)
	if !ok {
		t.Fatalf("expected Social, got %T", doc.Content)
	}
	if len(social.Links) != 1 || social.Links[0].Platform != "youtube" {
		t.Fatalf("unexpected links %#v", social.Links)
	}

	again := Decode(TypeSocial, doc.Map())
	if !reflect.DeepEqual(again, doc) {
		t.Fatalf("round trip changed document: %#v vs %#v", again, doc)
	}
}

func TestDecode_InvalidSocialLinksIgnored(t *testing.T) {
	doc := Decode(TypeSocial, map[string]string{"socialLinks": "not json"})
	if social := doc.Content.(Social); social.Links != nil {
		t.Fatalf("expected no links, got %#v", social.Links)
	}
}

func TestTypeValid(t *testing.T) {
	if !TypeMenu.Valid() {
		t.Fatal("menu should be valid")
	}
	if Type("fax").Valid() {
		t.Fatal("fax should not be valid")
	}
}
