package qrcontent

import (
	"encoding/json"
)

// Storage keys shared by several variants.
const (
	keyThemePrimary   = "themePrimary"
	keyThemeSecondary = "themeSecondary"
	keyFileDataURL    = "fileDataUrl"
	keyFileDataURLs   = "fileDataUrls"
	keyURL            = "url"
	keyText           = "text"
	keyFileName       = "fileName"
)

// Decode converts a stored content map into a Document. Unknown types decode
// to File. Upload-only keys (fileDataUrl, fileDataUrls) are discarded.
func Decode(t Type, m map[string]string) Document {
	get := func(k string) string { return m[k] }

	doc := Document{
		Theme: Theme{
			Primary:   get(keyThemePrimary),
			Secondary: get(keyThemeSecondary),
		},
	}

	switch t {
	case TypeWebsite:
		doc.Content = Website{URL: get(keyURL)}
	case TypeFacebook:
		doc.Content = Facebook{URL: get(keyURL)}
	case TypeWhatsApp:
		doc.Content = WhatsApp{Phone: get("phone"), Message: get("message")}
	case TypeWiFi:
		doc.Content = WiFi{SSID: get("ssid"), Password: get("password"), Encryption: get("encryption")}
	case TypeEmail:
		doc.Content = Email{Address: get("email"), Subject: get("subject"), Body: get("body")}
	case TypeText:
		doc.Content = Text{Text: get(keyText)}
	case TypeVCard:
		doc.Content = VCard{
			FirstName: get("firstName"),
			LastName:  get("lastName"),
			Phone:     get("phone"),
			Email:     get("email"),
			Org:       get("org"),
			Website:   get("website"),
		}
	case TypeInstagram:
		doc.Content = Instagram{Username: get("username")}
	case TypeApps:
		doc.Content = Apps{
			AppName:       get("appName"),
			Developer:     get("developer"),
			GooglePlayURL: get("googlePlayUrl"),
			AppStoreURL:   get("appStoreUrl"),
			Website:       get("website"),
		}
	case TypeSocial:
		doc.Content = Social{
			Title:       get("socialTitle"),
			Description: get("socialDescription"),
			Links:       decodeSocialLinks(get("socialLinks")),
		}
	default:
		f := File{Kind: t, URL: get(keyURL), Text: get(keyText), FileName: get(keyFileName)}
		for k, v := range m {
			switch k {
			case keyURL, keyText, keyFileName, keyThemePrimary, keyThemeSecondary, keyFileDataURL, keyFileDataURLs:
				continue
			}
			if f.Extra == nil {
				f.Extra = make(map[string]string)
			}
			f.Extra[k] = v
		}
		doc.Content = f
	}

	return doc
}

// Map converts the document back into its storage form. Empty values are
// omitted.
func (d Document) Map() map[string]string {
	out := make(map[string]string)
	if d.Content != nil {
		for k, v := range d.Content.fields() {
			if v != "" {
				out[k] = v
			}
		}
	}
	if d.Theme.Primary != "" {
		out[keyThemePrimary] = d.Theme.Primary
	}
	if d.Theme.Secondary != "" {
		out[keyThemeSecondary] = d.Theme.Secondary
	}
	return out
}

// Type returns the type of the wrapped content.
func (d Document) Type() Type {
	if d.Content == nil {
		return ""
	}
	return d.Content.Type()
}

func decodeSocialLinks(raw string) []SocialLink {
	if raw == "" {
		return nil
	}
	var links []SocialLink
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return nil
	}
	return links
}

func (c Website) fields() map[string]string  { return map[string]string{keyURL: c.URL} }
func (c Facebook) fields() map[string]string { return map[string]string{keyURL: c.URL} }
func (c Text) fields() map[string]string     { return map[string]string{keyText: c.Text} }

func (c Instagram) fields() map[string]string {
	return map[string]string{"username": c.Username}
}

func (c WhatsApp) fields() map[string]string {
	return map[string]string{"phone": c.Phone, "message": c.Message}
}

func (c WiFi) fields() map[string]string {
	return map[string]string{"ssid": c.SSID, "password": c.Password, "encryption": c.Encryption}
}

func (c Email) fields() map[string]string {
	return map[string]string{"email": c.Address, "subject": c.Subject, "body": c.Body}
}

func (c VCard) fields() map[string]string {
	return map[string]string{
		"firstName": c.FirstName,
		"lastName":  c.LastName,
		"phone":     c.Phone,
		"email":     c.Email,
		"org":       c.Org,
		"website":   c.Website,
	}
}

func (c Apps) fields() map[string]string {
	return map[string]string{
		"appName":       c.AppName,
		"developer":     c.Developer,
		"googlePlayUrl": c.GooglePlayURL,
		"appStoreUrl":   c.AppStoreURL,
		"website":       c.Website,
	}
}

func (c Social) fields() map[string]string {
	m := map[string]string{
		"socialTitle":       c.Title,
		"socialDescription": c.Description,
	}
	if len(c.Links) > 0 {
		if raw, err := json.Marshal(c.Links); err == nil {
			m["socialLinks"] = string(raw)
		}
	}
	return m
}

func (c File) fields() map[string]string {
	m := make(map[string]string, len(c.Extra)+3)
	for k, v := range c.Extra {
		m[k] = v
	}
	m[keyURL] = c.URL
	m[keyText] = c.Text
	m[keyFileName] = c.FileName
	return m
}
