package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/checkout"
	"github.com/takumaeat/takumaeat-app/events"
	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/services"
	"github.com/takumaeat/takumaeat-app/utils"
)

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB, orders *services.OrderService) *OrderController {
	return &OrderController{DB: db, Orders: orders}
}

// CreateOrder menerima payload order dari storefront, memvalidasi dan
// menyimpannya, lalu mengembalikan order id plus instruksi pembayaran
// (snap token untuk gateway, konfirmasi langsung untuk COD)
func (oc *OrderController) CreateOrder(c *gin.Context) {
	type body struct {
		OrderType     string                    `json:"order_type" binding:"required,oneof=delivery takeaway"`
		PaymentMethod string                    `json:"payment_method"`
		CartItems     []checkout.CartItem       `json:"cart_items" binding:"required"`
		PromoCode     string                    `json:"promo_code"`
		Delivery      *checkout.DeliveryDetails `json:"delivery"`
		Takeaway      *checkout.TakeawayDetails `json:"takeaway"`
		CustomerName  string                    `json:"customer_name"`
		CustomerEmail string                    `json:"customer_email"`
		CustomerPhone string                    `json:"customer_phone"`
	}
	var req body
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var userID *uint
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(uint); ok {
			userID = &id
		}
	}

	customer := services.CustomerInfo{
		Name:  req.CustomerName,
		Email: req.CustomerEmail,
		Phone: req.CustomerPhone,
	}
	if customer.Name == "" {
		customer.Name = "TakumaEat Customer"
	}
	if customer.Email == "" {
		customer.Email = "customer@takumaeat.com"
	}

	orderReq := &checkout.OrderRequest{
		OrderType:     checkout.OrderType(req.OrderType),
		PaymentMethod: checkout.PaymentMethod(req.PaymentMethod),
		Items:         req.CartItems,
		PromoCode:     req.PromoCode,
		Delivery:      req.Delivery,
		Takeaway:      req.Takeaway,
	}

	result, err := oc.Orders.CreateOrder(c.Request.Context(), orderReq, userID, customer)
	if err != nil {
		utils.RespondError(c, orderErrorStatus(err), err)
		return
	}

	var order models.Order
	if err := oc.DB.Preload("OrderItems").Where("ref = ?", result.OrderID).First(&order).Error; err == nil {
		events.BroadcastOrderCreated(order)
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": result.OrderID,
		"payment": gin.H{
			"method":     result.PaymentMethod,
			"snap_token": nullableToken(result.SnapToken),
		},
	})
}

func nullableToken(token string) interface{} {
	if token == "" {
		return nil
	}
	return token
}

// orderErrorStatus memetakan error validasi ke 400, sisanya 500
func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNoItems),
		errors.Is(err, services.ErrUnknownAddress),
		errors.Is(err, services.ErrUnknownBranch),
		errors.Is(err, services.ErrPastSchedule),
		errors.Is(err, services.ErrPromoRejected),
		errors.Is(err, checkout.ErrAddressRequired),
		errors.Is(err, checkout.ErrBranchRequired),
		errors.Is(err, checkout.ErrScheduleRequired),
		errors.Is(err, checkout.ErrPaymentMethod),
		errors.Is(err, checkout.ErrOrderType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetOrderByRef -> detail 1 order beserta item dan status pembayarannya,
// dipakai juga untuk melanjutkan pembayaran dari riwayat order
func (oc *OrderController) GetOrderByRef(c *gin.Context) {
	ref := c.Param("order_ref")

	order, payment, err := oc.Orders.GetOrderByRef(ref)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	data := gin.H{"order": order}
	if payment != nil {
		data["payment"] = payment
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", data)
}

// GetAllOrders (admin) -> daftar order beserta items
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var orders []models.Order
	query := oc.DB.Preload("OrderItems").Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// UpdateOrderStatus (admin) -> admin menggeser status fulfillment
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	ref := c.Param("order_ref")

	var order models.Order
	if err := oc.DB.Where("ref = ?", ref).First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type request struct {
		Status string `json:"status" binding:"required,oneof=pending_payment confirmed paid cancelled completed"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order.Status = req.Status
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastOrderUpdate(order)
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}
