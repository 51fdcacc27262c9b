package models

import "time"

// Tipe diskon promo
const (
	PromoTypePercent = "percent"
	PromoTypeFixed   = "fixed"
)

// Promo adalah kode promo yang divalidasi terhadap subtotal keranjang
type Promo struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Code          string     `gorm:"type:varchar(50);unique;not null" json:"code"`
	Description   string     `gorm:"type:text" json:"description"`
	DiscountType  string     `gorm:"type:varchar(20);not null;default:'fixed'" json:"discount_type"`
	DiscountValue int64      `gorm:"not null" json:"discount_value"` // persen (1-100) atau nominal
	MaxDiscount   int64      `json:"max_discount"`                   // batas atas untuk tipe percent, 0 = tanpa batas
	MinPurchase   int64      `json:"min_purchase"`
	UsageLimit    int        `json:"usage_limit"` // 0 = tanpa batas
	UsageCount    int        `gorm:"not null;default:0" json:"usage_count"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}
