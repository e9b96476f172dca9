package qrcontent

import (
	"net/url"
	"strings"
)

// PlaceholderURL is encoded when a content variant has no usable target.
const PlaceholderURL = "https://example.com"

const facebookPlaceholder = "https://facebook.com"

// Encode returns the literal payload for a QR symbol. With an id the payload is
// always the indirection URL so the code stays trackable and editable after
// printing; without one (live preview) it is the direct target.
func Encode(c Content, id, baseURL string) string {
	if id != "" {
		return IndirectionURL(baseURL, id)
	}
	return Target(c)
}

// IndirectionURL builds {base}/view/{id}.
func IndirectionURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/view/" + url.PathEscape(id)
}

// Target formats the direct payload of a content variant.
func Target(c Content) string {
	switch v := c.(type) {
	case Website:
		return firstNonEmpty(v.URL, PlaceholderURL)
	case Facebook:
		return firstNonEmpty(v.URL, facebookPlaceholder)
	case WhatsApp:
		target := "https://wa.me/" + digitsOnly(v.Phone)
		if v.Message != "" {
			target += "?text=" + escapeComponent(v.Message)
		}
		return target
	case WiFi:
		return "WIFI:T:" + firstNonEmpty(v.Encryption, "WPA") + ";S:" + v.SSID + ";P:" + v.Password + ";;"
	case Email:
		return "mailto:" + v.Address + "?subject=" + escapeComponent(v.Subject) + "&body=" + escapeComponent(v.Body)
	case Text:
		return v.Text
	case VCard:
		return vcard(v)
	case Instagram:
		return "https://instagram.com/" + strings.TrimPrefix(v.Username, "@")
	case Apps:
		return firstNonEmpty(v.GooglePlayURL, v.AppStoreURL, v.Website, PlaceholderURL)
	case Social:
		// social bundles only exist as the hosted view page
		return PlaceholderURL
	case File:
		return firstNonEmpty(v.URL, v.Text, v.FileName, PlaceholderURL)
	default:
		return PlaceholderURL
	}
}

func vcard(v VCard) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\n")
	b.WriteString("VERSION:3.0\n")
	b.WriteString("N:" + v.LastName + ";" + v.FirstName + "\n")
	b.WriteString("FN:" + v.FirstName + " " + v.LastName + "\n")
	b.WriteString("TEL:" + v.Phone + "\n")
	b.WriteString("EMAIL:" + v.Email + "\n")
	b.WriteString("ORG:" + v.Org + "\n")
	b.WriteString("URL:" + v.Website + "\n")
	b.WriteString("END:VCARD")
	return b.String()
}

// escapeComponent percent-encodes everything outside the RFC 3986 unreserved
// set, with spaces as %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
