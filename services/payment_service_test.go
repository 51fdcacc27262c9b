package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/utils"
)

func setupPaymentDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:paymentsvc?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.Payment{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.Where("1 = 1").Delete(&models.Payment{})
	db.Where("1 = 1").Delete(&models.Order{})
	return db
}

func seedOrderWithPayment(t *testing.T, db *gorm.DB, ref, method string, expiredAt *time.Time) models.Order {
	t.Helper()
	order := models.Order{
		Ref: ref, Status: OrderStatusPendingPayment, OrderType: "delivery",
		PaymentMethod: method, TotalAmount: 105000,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	payment := models.Payment{
		OrderID: order.ID, Amount: 105000, Status: PaymentStatusPending,
		PaymentMethod: method, ReferenceID: ref, ExpiredAt: expiredAt,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("failed to seed payment: %v", err)
	}
	return order
}

func TestUpdateStatusByRefSuccessDoesNotRegress(t *testing.T) {
	utils.InitLogger()
	db := setupPaymentDB(t)
	svc := NewPaymentService(db)

	seedOrderWithPayment(t, db, "TKM-p1", "gateway", nil)

	payment, err := svc.UpdateStatusByRef("TKM-p1", PaymentStatusSuccess, "trx-1", "qris")
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusSuccess, payment.Status)
	assert.NotNil(t, payment.PaymentTime)

	var order models.Order
	assert.NoError(t, db.Where("ref = ?", "TKM-p1").First(&order).Error)
	assert.Equal(t, OrderStatusPaid, order.Status)

	// notifikasi failed yang datang terlambat tidak menurunkan status
	payment, err = svc.UpdateStatusByRef("TKM-p1", PaymentStatusFailed, "", "")
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusSuccess, payment.Status)

	assert.NoError(t, db.Where("ref = ?", "TKM-p1").First(&order).Error)
	assert.Equal(t, OrderStatusPaid, order.Status)
}

func TestExpireStalePayments(t *testing.T) {
	utils.InitLogger()
	db := setupPaymentDB(t)
	svc := NewPaymentService(db)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	stale := seedOrderWithPayment(t, db, "TKM-stale", "gateway", &past)
	fresh := seedOrderWithPayment(t, db, "TKM-fresh", "gateway", &future)
	cod := seedOrderWithPayment(t, db, "TKM-cod", "cod", nil)

	assert.NoError(t, svc.ExpireStalePayments())

	var payment models.Payment
	assert.NoError(t, db.Where("reference_id = ?", "TKM-stale").First(&payment).Error)
	assert.Equal(t, PaymentStatusExpired, payment.Status)

	var order models.Order
	assert.NoError(t, db.First(&order, stale.ID).Error)
	assert.Equal(t, OrderStatusCancelled, order.Status)

	// pembayaran yang belum lewat batas dan COD tidak tersentuh
	assert.NoError(t, db.Where("reference_id = ?", "TKM-fresh").First(&payment).Error)
	assert.Equal(t, PaymentStatusPending, payment.Status)
	assert.NoError(t, db.First(&order, fresh.ID).Error)
	assert.Equal(t, OrderStatusPendingPayment, order.Status)

	assert.NoError(t, db.Where("reference_id = ?", "TKM-cod").First(&payment).Error)
	assert.Equal(t, PaymentStatusPending, payment.Status)
	assert.NoError(t, db.First(&order, cod.ID).Error)
	assert.Equal(t, OrderStatusPendingPayment, order.Status)
}
