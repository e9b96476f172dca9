package model

import "time"

// ScanEvent records one successful resolution of a QR code's indirection URL.
// Rows are append-only.
type ScanEvent struct {
	ID              string    `db:"id" json:"id" gorm:"primaryKey;size:36"`
	QRCodeID        string    `db:"qr_code_id" json:"qr_code_id" gorm:"size:64;not null;index"`
	OwnerID         string    `db:"owner_id" json:"owner_id" gorm:"size:64;index"`
	OperatingSystem string    `db:"operating_system" json:"operating_system" gorm:"size:32;not null"`
	Country         string    `db:"country" json:"country" gorm:"size:100;not null"`
	Region          string    `db:"region" json:"region" gorm:"size:100;not null"`
	City            string    `db:"city" json:"city" gorm:"size:100;not null"`
	UserAgent       string    `db:"user_agent" json:"user_agent" gorm:"type:text"`
	IPAddress       *string   `db:"ip_address" json:"ip_address,omitempty" gorm:"size:64"`
	ScannedAt       time.Time `db:"scanned_at" json:"scanned_at" gorm:"not null;index"`
}

func (ScanEvent) TableName() string { return "qr_scans" }

const (
	ScanStreamName     = "SCANS"
	ScanStreamSubject  = "scans.recorded"
	ScanConsumerName   = "scan-counter"
	ScanStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
