package models

import "time"

// Payment represents a payment transaction for an order
type Payment struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	OrderID       uint       `json:"order_id"`
	Order         Order      `json:"-" gorm:"foreignKey:OrderID"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status" gorm:"type:varchar(20);default:'pending'"`
	PaymentMethod string     `json:"payment_method" gorm:"type:varchar(20);default:'cod'"` // gateway, cod
	ReferenceID   string     `json:"reference_id" gorm:"type:varchar(64);index"`           // order ref di sisi gateway
	SnapToken     string     `json:"snap_token,omitempty" gorm:"type:varchar(128);index"`
	TransactionID string     `json:"transaction_id,omitempty" gorm:"type:varchar(128)"`
	PaymentType   string     `json:"payment_type,omitempty"` // qris, bank_transfer, dll dari gateway
	PaymentTime   *time.Time `json:"payment_time,omitempty"` // waktu pembayaran dikonfirmasi
	ExpiredAt     *time.Time `json:"expired_at,omitempty"`   // batas waktu pembayaran gateway
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
