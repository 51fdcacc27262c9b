package models

import "time"

type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Ref           string      `gorm:"type:varchar(64);unique;not null" json:"ref"` // external reference, dipakai juga sebagai order_id gateway
	UserID        *uint       `gorm:"index" json:"user_id,omitempty"`
	Status        string      `gorm:"type:varchar(20);not null;default:'pending_payment'" json:"status"`
	OrderType     string      `gorm:"type:varchar(20);not null" json:"order_type"` // delivery, takeaway
	PaymentMethod string      `gorm:"type:varchar(20);not null" json:"payment_method"`
	Subtotal      int64       `gorm:"not null;default:0" json:"subtotal"`
	Discount      int64       `gorm:"not null;default:0" json:"discount"`
	DeliveryFee   int64       `gorm:"not null;default:0" json:"delivery_fee"`
	TotalAmount   int64       `gorm:"not null;default:0" json:"total_amount"`
	PromoCode     string      `gorm:"type:varchar(50)" json:"promo_code,omitempty"`
	AddressID     *uint       `json:"address_id,omitempty"`
	Address       *Address    `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	BranchID      *uint       `json:"branch_id,omitempty"`
	Branch        *Branch     `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	ScheduleType  string      `gorm:"type:varchar(20)" json:"schedule_type"` // ASAP/NOW atau SCHEDULED
	ScheduledAt   *time.Time  `json:"scheduled_at,omitempty"`
	Notes         string      `gorm:"type:text" json:"notes"`
	OrderItems    []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
}
