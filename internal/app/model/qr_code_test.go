package model

import "testing"

func TestPublicQRCode_ContentStrings(t *testing.T) {
	code := &QRCode{ID: "qr-1", UserID: "owner-1", Type: "text"}
	code.SetContent(map[string]string{"text": "hello"})
	code.Content["count"] = 3

	public := code.Public()
	got := public.ContentStrings()
	if len(got) != 1 || got["text"] != "hello" {
		t.Fatalf("unexpected content %#v", got)
	}
	if want := code.ContentStrings(); len(want) != len(got) || want["text"] != got["text"] {
		t.Fatalf("projections disagree: %#v vs %#v", want, got)
	}
}
