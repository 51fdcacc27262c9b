package models

import "time"

// CheckoutDraft menyimpan snapshot checkout yang belum disubmit,
// sehingga sesi yang terputus bisa dilanjutkan
type CheckoutDraft struct {
	ID         uint      `gorm:"primaryKey"`
	SessionKey string    `gorm:"type:varchar(128);unique;not null"`
	Payload    string    `gorm:"type:text;not null"` // serialized draft JSON
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}
