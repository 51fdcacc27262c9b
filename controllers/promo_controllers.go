package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/services"
	"github.com/takumaeat/takumaeat-app/utils"
)

type PromoController struct {
	DB     *gorm.DB
	Promos *services.PromoService
}

func NewPromoController(db *gorm.DB, promos *services.PromoService) *PromoController {
	return &PromoController{DB: db, Promos: promos}
}

// CheckPromo memvalidasi kode terhadap subtotal keranjang.
// Penolakan promo tetap 200 dengan valid=false; checkout lanjut tanpa diskon.
func (pc *PromoController) CheckPromo(c *gin.Context) {
	type request struct {
		Code      string `json:"code" binding:"required"`
		CartTotal int64  `json:"cart_total" binding:"min=0"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := pc.Promos.Check(c.Request.Context(), req.Code, req.CartTotal)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAllPromos (admin)
func (pc *PromoController) GetAllPromos(c *gin.Context) {
	var promos []models.Promo
	if err := pc.DB.Find(&promos).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of promos", promos)
}

// CreatePromo (admin)
func (pc *PromoController) CreatePromo(c *gin.Context) {
	type request struct {
		Code          string     `json:"code" binding:"required"`
		Description   string     `json:"description"`
		DiscountType  string     `json:"discount_type" binding:"required,oneof=percent fixed"`
		DiscountValue int64      `json:"discount_value" binding:"required,min=1"`
		MaxDiscount   int64      `json:"max_discount"`
		MinPurchase   int64      `json:"min_purchase"`
		UsageLimit    int        `json:"usage_limit"`
		StartsAt      *time.Time `json:"starts_at"`
		EndsAt        *time.Time `json:"ends_at"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	promo := models.Promo{
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxDiscount:   req.MaxDiscount,
		MinPurchase:   req.MinPurchase,
		UsageLimit:    req.UsageLimit,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		IsActive:      true,
	}
	if err := pc.DB.Create(&promo).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Promo created", promo)
}

// UpdatePromo (admin)
func (pc *PromoController) UpdatePromo(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("promo_id"))

	var promo models.Promo
	if err := pc.DB.First(&promo, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type request struct {
		Description   *string    `json:"description"`
		DiscountType  *string    `json:"discount_type"`
		DiscountValue *int64     `json:"discount_value"`
		MaxDiscount   *int64     `json:"max_discount"`
		MinPurchase   *int64     `json:"min_purchase"`
		UsageLimit    *int       `json:"usage_limit"`
		StartsAt      *time.Time `json:"starts_at"`
		EndsAt        *time.Time `json:"ends_at"`
		IsActive      *bool      `json:"is_active"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Description != nil {
		promo.Description = *req.Description
	}
	if req.DiscountType != nil {
		promo.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		promo.DiscountValue = *req.DiscountValue
	}
	if req.MaxDiscount != nil {
		promo.MaxDiscount = *req.MaxDiscount
	}
	if req.MinPurchase != nil {
		promo.MinPurchase = *req.MinPurchase
	}
	if req.UsageLimit != nil {
		promo.UsageLimit = *req.UsageLimit
	}
	if req.StartsAt != nil {
		promo.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		promo.EndsAt = req.EndsAt
	}
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}

	if err := pc.DB.Save(&promo).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Promo updated", promo)
}

// DeletePromo (admin)
func (pc *PromoController) DeletePromo(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("promo_id"))

	if err := pc.DB.Delete(&models.Promo{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Promo deleted", gin.H{"promo_id": id})
}
