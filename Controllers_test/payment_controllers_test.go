package Controllers_test

import (
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/config"
	"github.com/takumaeat/takumaeat-app/controllers"
	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/services"
	"github.com/takumaeat/takumaeat-app/utils"
)

const testServerKey = "SB-Mid-server-test"

func setupTestDBForPayments(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:paymentctrl?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.Payment{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.Where("1 = 1").Delete(&models.Payment{})
	db.Where("1 = 1").Delete(&models.Order{})

	order := models.Order{
		Ref: "TKM-pay-1", Status: "pending_payment", OrderType: "delivery",
		PaymentMethod: "gateway", Subtotal: 90000, DeliveryFee: 15000, TotalAmount: 105000,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	payment := models.Payment{
		OrderID: order.ID, Amount: 105000, Status: "pending",
		PaymentMethod: "gateway", ReferenceID: order.Ref, SnapToken: "tok-123",
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("failed to seed payment: %v", err)
	}
	return db
}

func setupPaymentRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	midtransSvc := services.NewMidtransService(&config.MidtransConfig{
		ServerKey:     testServerKey,
		ClientKey:     "SB-Mid-client-test",
		MerchantName:  "TakumaEat",
		MerchantEmail: "order@takumaeat.com",
		MerchantPhone: "08123456789",
		SnapScriptURL: "https://app.sandbox.midtrans.com/snap/snap.js",
	})
	paymentSvc := services.NewPaymentService(db)
	gateway := services.NewSnapGateway(midtransSvc)
	paymentCtrl := controllers.NewPaymentController(paymentSvc, midtransSvc, gateway)

	router.POST("/payments/callback", paymentCtrl.HandleNotification)
	router.GET("/payments/config", paymentCtrl.GetPaymentConfig)
	return router
}

func signNotification(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + testServerKey))
	return hex.EncodeToString(sum[:])
}

func TestNotificationSettlementMarksOrderPaid(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPayments(t)
	router := setupPaymentRouter(db)

	payload := map[string]interface{}{
		"order_id":           "TKM-pay-1",
		"status_code":        "200",
		"gross_amount":       "105000.00",
		"signature_key":      signNotification("TKM-pay-1", "200", "105000.00"),
		"transaction_status": "settlement",
		"transaction_id":     "mid-trx-1",
		"payment_type":       "qris",
	}
	w := postJSON(t, router, "/payments/callback", payload)
	assert.Equal(t, http.StatusOK, w.Code)

	var payment models.Payment
	assert.NoError(t, db.Where("reference_id = ?", "TKM-pay-1").First(&payment).Error)
	assert.Equal(t, "success", payment.Status)
	assert.Equal(t, "mid-trx-1", payment.TransactionID)
	assert.Equal(t, "qris", payment.PaymentType)
	assert.NotNil(t, payment.PaymentTime)

	var order models.Order
	assert.NoError(t, db.Where("ref = ?", "TKM-pay-1").First(&order).Error)
	assert.Equal(t, "paid", order.Status)
}

func TestNotificationRejectsInvalidSignature(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPayments(t)
	router := setupPaymentRouter(db)

	payload := map[string]interface{}{
		"order_id":           "TKM-pay-1",
		"status_code":        "200",
		"gross_amount":       "105000.00",
		"signature_key":      "forged",
		"transaction_status": "settlement",
	}
	w := postJSON(t, router, "/payments/callback", payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var payment models.Payment
	assert.NoError(t, db.Where("reference_id = ?", "TKM-pay-1").First(&payment).Error)
	assert.Equal(t, "pending", payment.Status)
}

func TestNotificationUnknownStatusIsIgnored(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPayments(t)
	router := setupPaymentRouter(db)

	payload := map[string]interface{}{
		"order_id":           "TKM-pay-1",
		"status_code":        "200",
		"gross_amount":       "105000.00",
		"signature_key":      signNotification("TKM-pay-1", "200", "105000.00"),
		"transaction_status": "refund",
	}
	w := postJSON(t, router, "/payments/callback", payload)
	assert.Equal(t, http.StatusOK, w.Code)

	var payment models.Payment
	assert.NoError(t, db.Where("reference_id = ?", "TKM-pay-1").First(&payment).Error)
	assert.Equal(t, "pending", payment.Status)
}

func TestNotificationFailureCancelsOrder(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPayments(t)
	router := setupPaymentRouter(db)

	payload := map[string]interface{}{
		"order_id":           "TKM-pay-1",
		"status_code":        "202",
		"gross_amount":       "105000.00",
		"signature_key":      signNotification("TKM-pay-1", "202", "105000.00"),
		"transaction_status": "expire",
	}
	w := postJSON(t, router, "/payments/callback", payload)
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	assert.NoError(t, db.Where("ref = ?", "TKM-pay-1").First(&order).Error)
	assert.Equal(t, "cancelled", order.Status)
}

func TestGetPaymentConfig(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPayments(t)
	router := setupPaymentRouter(db)

	req, _ := http.NewRequest("GET", "/payments/config", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "SB-Mid-client-test", data["client_key"])
	assert.Equal(t, true, data["gateway_ready"])
	assert.NotEmpty(t, data["snap_script"])
}
