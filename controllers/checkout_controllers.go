package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/takumaeat/takumaeat-app/checkout"
	"github.com/takumaeat/takumaeat-app/services"
	"github.com/takumaeat/takumaeat-app/utils"
)

// CheckoutController mengekspos wizard checkout sebagai API per sesi.
// Storefront memegang session key dan memanggil endpoint ini mengikuti
// langkah review -> details -> confirmation.
type CheckoutController struct {
	Checkout *services.CheckoutService
}

func NewCheckoutController(svc *services.CheckoutService) *CheckoutController {
	return &CheckoutController{Checkout: svc}
}

func (cc *CheckoutController) customerFrom(c *gin.Context) (*uint, services.CustomerInfo) {
	var userID *uint
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(uint); ok {
			userID = &id
		}
	}
	return userID, services.CustomerInfo{
		Name:  c.GetHeader("X-Customer-Name"),
		Email: c.GetHeader("X-Customer-Email"),
		Phone: c.GetHeader("X-Customer-Phone"),
	}
}

func (cc *CheckoutController) session(c *gin.Context) *checkout.Orchestrator {
	userID, customer := cc.customerFrom(c)
	orch := cc.Checkout.Session(c.Param("session_id"), userID, customer)
	if orch == nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("checkout session not found"))
		return nil
	}
	return orch
}

// StartSession membuat sesi checkout baru. Query param order_type
// (delivery/takeaway) meng-override tipe order draft yang di-restore.
func (cc *CheckoutController) StartSession(c *gin.Context) {
	orderType := checkout.OrderType(c.Query("order_type"))
	if orderType != "" && orderType != checkout.OrderTypeDelivery && orderType != checkout.OrderTypeTakeaway {
		utils.RespondError(c, http.StatusBadRequest, checkout.ErrOrderType)
		return
	}

	userID, customer := cc.customerFrom(c)
	key := cc.Checkout.NewSession(orderType, userID, customer)

	utils.RespondJSON(c, http.StatusCreated, "Checkout session created", gin.H{
		"session_id": key,
	})
}

// GetSummary mengembalikan ringkasan checkout saat ini
func (cc *CheckoutController) GetSummary(c *gin.Context) {
	orch := cc.session(c)
	if orch == nil {
		return
	}

	data := gin.H{"summary": orch.Summary()}
	if result := orch.Result(); result != nil {
		data["result"] = result
	}
	utils.RespondJSON(c, http.StatusOK, "Checkout summary", data)
}

// AddItem menambahkan item ke keranjang sesi
func (cc *CheckoutController) AddItem(c *gin.Context) {
	orch := cc.session(c)
	if orch == nil {
		return
	}

	var item checkout.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if item.Name == "" || item.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("item name is required and price must not be negative"))
		return
	}

	orch.AddItem(item)
	utils.RespondJSON(c, http.StatusOK, "Item added", orch.Summary())
}

// UpdateItem menaikkan/menurunkan quantity atau menghapus item
func (cc *CheckoutController) UpdateItem(c *gin.Context) {
	orch := cc.session(c)
	if orch == nil {
		return
	}

	type request struct {
		Action string `json:"action" binding:"required,oneof=increment decrement remove"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	name := c.Param("item_name")
	switch req.Action {
	case "increment":
		orch.IncrementItem(name)
	case "decrement":
		orch.DecrementItem(name)
	case "remove":
		orch.RemoveItem(name)
	}

	utils.RespondJSON(c, http.StatusOK, "Cart updated", orch.Summary())
}

// SetOrderType mengganti delivery/takeaway
func (cc *CheckoutController) SetOrderType(c *gin.Context) {
	orch := cc.session(c)
	if orch == nil {
		return
	}

	type request struct {
		OrderType string `json:"order_type" binding:"required,oneof=delivery takeaway"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := orch.SetOrderType(checkout.OrderType(req.OrderType)); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order type updated", orch.Summary())
}

// GoToDetails maju dari review ke details
func (cc *CheckoutController) GoToDetails(c *gin.Context) {
	orch := cc.session(c)
	if orch == nil {
		return
	}

	if err := orch.GoToDetails(); err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Moved to details", orch.Summary())
}

// BackToReview mundur dari details ke review
func (cc *CheckoutController) BackToReview(c *gin.Context) {
	orch := cc.session(c)
	if orch == nil {
		return
	}

	if err := orch.BackToReview(); err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Moved to review", orch.Summary())
}

// SetDetails menyimpan formulir delivery atau takeaway
func (cc *CheckoutController) SetDetails(c *gin.Context) {
	orch := cc.session(c)
	if orch == nil {
		return
	}

	type request struct {
		Delivery *checkout.DeliveryDetails `json:"delivery"`
		Takeaway *checkout.TakeawayDetails `json:"takeaway"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Delivery != nil {
		orch.SetDeliveryDetails(*req.Delivery)
	}
	if req.Takeaway != nil {
		orch.SetTakeawayDetails(*req.Takeaway)
	}
	utils.RespondJSON(c, http.StatusOK, "Details updated", orch.Summary())
}

// ApplyPromo memvalidasi dan menerapkan kode promo terhadap subtotal sesi
func (cc *CheckoutController) ApplyPromo(c *gin.Context) {
	orch := cc.session(c)
	if orch == nil {
		return
	}

	type request struct {
		Code string `json:"code" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := orch.ApplyPromo(c.Request.Context(), req.Code)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, result.Message, gin.H{
		"promo":   result,
		"summary": orch.Summary(),
	})
}

// RemovePromo melepas promo yang sedang diterapkan di sesi
func (cc *CheckoutController) RemovePromo(c *gin.Context) {
	orch := cc.session(c)
	if orch == nil {
		return
	}

	orch.RemovePromo()
	utils.RespondJSON(c, http.StatusOK, "Promo removed", orch.Summary())
}

// Submit menjalankan algoritma pembuatan order dari step details
func (cc *CheckoutController) Submit(c *gin.Context) {
	orch := cc.session(c)
	if orch == nil {
		return
	}

	if err := orch.Submit(c.Request.Context()); err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, checkout.ErrSubmissionInFlight), errors.Is(err, checkout.ErrInvalidStep):
			status = http.StatusConflict
		case errors.Is(err, checkout.ErrGatewayNotReady):
			status = http.StatusServiceUnavailable
		}
		utils.RespondError(c, status, err)
		return
	}

	data := gin.H{"summary": orch.Summary()}
	if result := orch.Result(); result != nil {
		data["result"] = result
	}
	utils.RespondJSON(c, http.StatusOK, "Order submitted", data)
}
