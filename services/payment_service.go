package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/checkout"
	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/utils"
)

// nowFunc bisa diganti di test
var nowFunc = time.Now

// Status pembayaran
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
	PaymentStatusExpired = "expired"
)

// Status order
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusConfirmed      = "confirmed" // COD: dibayar saat fulfillment
	OrderStatusPaid           = "paid"
	OrderStatusCancelled      = "cancelled"
	OrderStatusCompleted      = "completed"
)

// PaymentService menangani operasi pembayaran
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// GetPaymentByOrderID mendapatkan pembayaran berdasarkan OrderID
func (s *PaymentService) GetPaymentByOrderID(orderID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPaymentByRef mendapatkan pembayaran berdasarkan reference id gateway
func (s *PaymentService) GetPaymentByRef(ref string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Where("reference_id = ?", ref).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateStatusByRef mengupdate status pembayaran berdasarkan reference id
// gateway dan menyesuaikan status order dalam satu transaksi
func (s *PaymentService) UpdateStatusByRef(ref, status, transactionID, paymentType string) (*models.Payment, error) {
	var payment models.Payment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reference_id = ?", ref).First(&payment).Error; err != nil {
			return fmt.Errorf("failed to find payment: %w", err)
		}

		// status terminal tidak boleh mundur
		if payment.Status == PaymentStatusSuccess {
			return nil
		}

		payment.Status = status
		if transactionID != "" {
			payment.TransactionID = transactionID
		}
		if paymentType != "" {
			payment.PaymentType = paymentType
		}
		if status == PaymentStatusSuccess {
			now := nowFunc()
			payment.PaymentTime = &now
		}
		if err := tx.Save(&payment).Error; err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}

		var order models.Order
		if err := tx.First(&order, payment.OrderID).Error; err != nil {
			return fmt.Errorf("failed to find order: %w", err)
		}

		switch status {
		case PaymentStatusSuccess:
			order.Status = OrderStatusPaid
		case PaymentStatusFailed, PaymentStatusExpired:
			order.Status = OrderStatusCancelled
		}

		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ExpireStalePayments menandai pembayaran gateway yang melewati ExpiredAt
// sebagai expired dan membatalkan ordernya
func (s *PaymentService) ExpireStalePayments() error {
	var stale []models.Payment
	err := s.db.
		Where("status = ? AND payment_method = ? AND expired_at IS NOT NULL AND expired_at < ?",
			PaymentStatusPending, string(checkout.PaymentGatewayMethod), nowFunc()).
		Find(&stale).Error
	if err != nil {
		return fmt.Errorf("failed to list stale payments: %w", err)
	}

	for _, p := range stale {
		if _, err := s.UpdateStatusByRef(p.ReferenceID, PaymentStatusExpired, "", ""); err != nil {
			utils.ErrorLogger.Printf("Failed to expire payment %d: %v", p.ID, err)
			continue
		}
		utils.InfoLogger.Printf("Payment %d (order %d) expired", p.ID, p.OrderID)
	}
	return nil
}

// StartTimeoutChecker menjalankan pengecekan pembayaran kadaluarsa secara
// periodik sampai stop channel ditutup
func (s *PaymentService) StartTimeoutChecker(stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.ExpireStalePayments(); err != nil {
					utils.ErrorLogger.Printf("Payment timeout check failed: %v", err)
				}
			case <-stop:
				return
			}
		}
	}()
}
