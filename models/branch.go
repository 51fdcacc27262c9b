package models

import "time"

// Branch adalah lokasi cabang untuk pesanan takeaway
type Branch struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Address        string    `gorm:"type:text;not null" json:"address"`
	OperationHours string    `gorm:"type:varchar(100)" json:"operation_hours"`
	MapURL         string    `gorm:"type:varchar(255)" json:"map_url,omitempty"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}
