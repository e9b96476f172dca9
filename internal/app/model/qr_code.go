package model

import (
	"time"

	"gorm.io/datatypes"
)

// QRCode is one generated code owned by a user.
type QRCode struct {
	ID        string                      `db:"id" gorm:"primaryKey;size:64"`
	UserID    string                      `db:"user_id" gorm:"size:64;not null;index"`
	Name      string                      `db:"name" gorm:"size:255;not null;default:''"`
	Type      string                      `db:"type" gorm:"size:32;not null"`
	Content   datatypes.JSONMap           `db:"content" gorm:"type:jsonb;not null;default:'{}'"`
	Style     datatypes.JSONMap           `db:"style" gorm:"type:jsonb;not null;default:'{}'"`
	Paused    bool                        `db:"paused" gorm:"not null;default:false"`
	FileURL   *string                     `db:"file_url" gorm:"type:text"`
	FileURLs  datatypes.JSONSlice[string] `db:"file_urls" gorm:"type:jsonb"`
	CreatedAt time.Time                   `db:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time                   `db:"updated_at" gorm:"autoUpdateTime"`
}

func (QRCode) TableName() string { return "qr_codes" }

// ContentStrings flattens the JSON content column into the string map the
// content codec works with. Non-string values are dropped.
func (q *QRCode) ContentStrings() map[string]string {
	return stringValues(q.Content)
}

// SetContent replaces the content column with the given string map.
func (q *QRCode) SetContent(m map[string]string) {
	q.Content = make(datatypes.JSONMap, len(m))
	for k, v := range m {
		q.Content[k] = v
	}
}

// PublicQRCode is the subset of a QRCode that may be returned to anonymous
// callers. It has no owner field.
type PublicQRCode struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Type     string                 `json:"type"`
	Content  map[string]interface{} `json:"content"`
	Style    map[string]interface{} `json:"style"`
	Paused   bool                   `json:"paused"`
	FileURL  *string                `json:"file_url"`
	FileURLs []string               `json:"file_urls"`
}

// ContentStrings returns the string-valued content keys, as QRCode.ContentStrings.
func (p PublicQRCode) ContentStrings() map[string]string {
	return stringValues(p.Content)
}

func stringValues(m map[string]interface{}) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// Public returns the anonymous-safe projection of q.
func (q *QRCode) Public() PublicQRCode {
	content := map[string]interface{}(q.Content)
	if content == nil {
		content = map[string]interface{}{}
	}
	style := map[string]interface{}(q.Style)
	if style == nil {
		style = map[string]interface{}{}
	}
	return PublicQRCode{
		ID:       q.ID,
		Name:     q.Name,
		Type:     q.Type,
		Content:  content,
		Style:    style,
		Paused:   q.Paused,
		FileURL:  q.FileURL,
		FileURLs: []string(q.FileURLs),
	}
}
