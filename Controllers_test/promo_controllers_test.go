package Controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/controllers"
	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/services"
	"github.com/takumaeat/takumaeat-app/utils"
)

func setupTestDBForPromos(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:promoctrl?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Promo{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.Where("1 = 1").Delete(&models.Promo{})

	promo := models.Promo{
		Code: "DISKON10", DiscountType: models.PromoTypePercent, DiscountValue: 10,
		MaxDiscount: 20000, MinPurchase: 50000, IsActive: true,
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("failed to seed promo: %v", err)
	}
	return db
}

func setupPromoRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	promoCtrl := controllers.NewPromoController(db, services.NewPromoService(db))
	router.POST("/promos/check", promoCtrl.CheckPromo)
	return router
}

func TestCheckPromoValid(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPromos(t)
	router := setupPromoRouter(db)

	w := postJSON(t, router, "/promos/check", map[string]interface{}{
		"code":       "diskon10",
		"cart_total": 90000,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["valid"])
	assert.Equal(t, "DISKON10", resp["promo_code"])
	assert.Equal(t, float64(9000), resp["discount_amount"])
}

func TestCheckPromoRejectionIsStillOK(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPromos(t)
	router := setupPromoRouter(db)

	// di bawah minimum pembelian: bukan error, checkout lanjut tanpa diskon
	w := postJSON(t, router, "/promos/check", map[string]interface{}{
		"code":       "DISKON10",
		"cart_total": 10000,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["valid"])
	assert.NotEmpty(t, resp["message"])
}

func TestCheckPromoMissingCodeIsBadRequest(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForPromos(t)
	router := setupPromoRouter(db)

	w := postJSON(t, router, "/promos/check", map[string]interface{}{
		"cart_total": 90000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
