// Package qrcontent maps a QR code's logical content onto the literal string
// embedded in the QR symbol.
//
// Content is a closed set of variants, one per formatting family. The flexible
// string map stored in the database is only read and written by Decode and
// Document.Map.
package qrcontent

// Type identifies the kind of content a QR code carries.
type Type string

const (
	TypeWebsite   Type = "website"
	TypePDF       Type = "pdf"
	TypeLinks     Type = "links"
	TypeVCard     Type = "vcard"
	TypeBusiness  Type = "business"
	TypeVideo     Type = "video"
	TypeImages    Type = "images"
	TypeFacebook  Type = "facebook"
	TypeInstagram Type = "instagram"
	TypeSocial    Type = "social"
	TypeWhatsApp  Type = "whatsapp"
	TypeMP3       Type = "mp3"
	TypeMenu      Type = "menu"
	TypeApps      Type = "apps"
	TypeCoupon    Type = "coupon"
	TypeWiFi      Type = "wifi"
	TypeText      Type = "text"
	TypeEmail     Type = "email"
)

var knownTypes = map[Type]struct{}{
	TypeWebsite: {}, TypePDF: {}, TypeLinks: {}, TypeVCard: {}, TypeBusiness: {},
	TypeVideo: {}, TypeImages: {}, TypeFacebook: {}, TypeInstagram: {}, TypeSocial: {},
	TypeWhatsApp: {}, TypeMP3: {}, TypeMenu: {}, TypeApps: {}, TypeCoupon: {},
	TypeWiFi: {}, TypeText: {}, TypeEmail: {},
}

// Valid reports whether t is one of the known content types.
func (t Type) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// RendersInline reports whether codes of this type are presented on a hosted
// page instead of redirecting to a target URL.
func (t Type) RendersInline() bool {
	switch t {
	case TypePDF, TypeVideo, TypeImages, TypeMP3, TypeApps, TypeSocial:
		return true
	default:
		return false
	}
}

// Content is implemented by every content variant.
type Content interface {
	Type() Type
	fields() map[string]string
}

type Website struct {
	URL string
}

type Facebook struct {
	URL string
}

type WhatsApp struct {
	Phone   string
	Message string
}

type WiFi struct {
	SSID       string
	Password   string
	Encryption string
}

type Email struct {
	Address string
	Subject string
	Body    string
}

type Text struct {
	Text string
}

type VCard struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Org       string
	Website   string
}

type Instagram struct {
	Username string
}

type Apps struct {
	AppName       string
	Developer     string
	GooglePlayURL string
	AppStoreURL   string
	Website       string
}

// SocialLink is one entry of a social profile bundle.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Label    string `json:"label"`
}

type Social struct {
	Title       string
	Description string
	Links       []SocialLink
}

// File covers the file backed kinds and every type without a dedicated
// formatting rule. Extra keeps keys that have no typed field so they survive
// a round trip through the store.
type File struct {
	Kind     Type
	URL      string
	Text     string
	FileName string
	Extra    map[string]string
}

func (Website) Type() Type   { return TypeWebsite }
func (Facebook) Type() Type  { return TypeFacebook }
func (WhatsApp) Type() Type  { return TypeWhatsApp }
func (WiFi) Type() Type      { return TypeWiFi }
func (Email) Type() Type     { return TypeEmail }
func (Text) Type() Type      { return TypeText }
func (VCard) Type() Type     { return TypeVCard }
func (Instagram) Type() Type { return TypeInstagram }
func (Apps) Type() Type      { return TypeApps }
func (Social) Type() Type    { return TypeSocial }
func (f File) Type() Type    { return f.Kind }

// Theme holds the colours of the hosted view page.
type Theme struct {
	Primary   string
	Secondary string
}

const (
	DefaultThemePrimary   = "#527AC9"
	DefaultThemeSecondary = "#7EC09F"
)

// PrimaryOrDefault returns the primary colour, falling back to the default.
func (t Theme) PrimaryOrDefault() string {
	if t.Primary == "" {
		return DefaultThemePrimary
	}
	return t.Primary
}

// SecondaryOrDefault returns the secondary colour, falling back to the default.
func (t Theme) SecondaryOrDefault() string {
	if t.Secondary == "" {
		return DefaultThemeSecondary
	}
	return t.Secondary
}

// Document is a decoded content record: the variant plus the presentation
// settings that share its storage map.
type Document struct {
	Content Content
	Theme   Theme
}
