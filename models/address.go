package models

import "time"

// Address adalah alamat pengiriman milik user untuk pesanan delivery
type Address struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	RecipientName string    `gorm:"type:varchar(255);not null" json:"recipient_name"`
	PhoneNumber   string    `gorm:"type:varchar(30);not null" json:"phone_number"`
	AddressLine   string    `gorm:"type:text;not null" json:"address_line"`
	Detail        string    `gorm:"type:text" json:"detail,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	IsDefault     bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
