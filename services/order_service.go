package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/checkout"
	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/utils"
)

// Kesalahan validasi pembuatan order yang layak dilaporkan sebagai 400
var (
	ErrNoItems        = errors.New("order must contain at least one item")
	ErrUnknownAddress = errors.New("delivery address not found")
	ErrUnknownBranch  = errors.New("pickup branch not found")
	ErrPastSchedule   = errors.New("scheduled time must be in the future")
	ErrPromoRejected  = errors.New("promo code rejected")
)

// CustomerInfo dipakai untuk customer_details transaksi gateway
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
}

// OrderService mengubah payload checkout menjadi order tersimpan beserta
// baris pembayarannya, dan menerbitkan token Snap untuk metode gateway
type OrderService struct {
	db          *gorm.DB
	promos      *PromoService
	midtrans    *MidtransService
	deliveryFee int64
}

func NewOrderService(db *gorm.DB, promos *PromoService, midtrans *MidtransService, deliveryFee int64) *OrderService {
	return &OrderService{
		db:          db,
		promos:      promos,
		midtrans:    midtrans,
		deliveryFee: deliveryFee,
	}
}

// CreateOrder memvalidasi payload, menghitung ulang total di sisi server,
// dan menyimpan order + item + payment dalam satu transaksi. Untuk metode
// gateway, token Snap diterbitkan setelah commit; kegagalan penerbitan token
// tidak membatalkan order (pembayaran bisa dilanjutkan dari riwayat order).
func (s *OrderService) CreateOrder(ctx context.Context, req *checkout.OrderRequest, userID *uint, customer CustomerInfo) (*checkout.OrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}
	if req.OrderType != checkout.OrderTypeDelivery && req.OrderType != checkout.OrderTypeTakeaway {
		return nil, checkout.ErrOrderType
	}

	order := models.Order{
		Ref:       fmt.Sprintf("TKM-%s", uuid.NewString()),
		UserID:    userID,
		OrderType: string(req.OrderType),
		PromoCode: req.PromoCode,
	}

	method, err := s.applyTypeDetails(&order, req)
	if err != nil {
		return nil, err
	}
	order.PaymentMethod = string(method)

	var subtotal int64
	for _, it := range req.Items {
		if it.Quantity < 1 || it.Price < 0 {
			return nil, fmt.Errorf("invalid item %q", it.Name)
		}
		subtotal += it.Price * int64(it.Quantity)
	}
	order.Subtotal = subtotal

	if req.OrderType == checkout.OrderTypeDelivery {
		order.DeliveryFee = s.deliveryFee
	}

	// promo divalidasi ulang di server terhadap subtotal yang dihitung server
	if req.PromoCode != "" {
		result, err := s.promos.Check(ctx, req.PromoCode, subtotal)
		if err != nil {
			return nil, err
		}
		if !result.Valid {
			return nil, fmt.Errorf("%w: %s", ErrPromoRejected, result.Message)
		}
		order.Discount = result.DiscountAmount
		order.PromoCode = result.PromoCode
	}

	total := subtotal - order.Discount + order.DeliveryFee
	if total < 0 {
		total = 0
	}
	order.TotalAmount = total

	if method == checkout.PaymentCODMethod {
		order.Status = OrderStatusConfirmed
	} else {
		order.Status = OrderStatusPendingPayment
	}

	payment := models.Payment{
		Amount:        total,
		Status:        PaymentStatusPending,
		PaymentMethod: string(method),
		ReferenceID:   order.Ref,
	}
	if method == checkout.PaymentGatewayMethod {
		expires := nowFunc().Add(30 * time.Minute)
		payment.ExpiredAt = &expires
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, it := range req.Items {
			item := models.OrderItem{
				OrderID:  order.ID,
				Name:     it.Name,
				Price:    it.Price,
				Quantity: it.Quantity,
				Note:     it.Note,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		payment.OrderID = order.ID
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		if order.PromoCode != "" {
			if err := s.promos.Redeem(tx, order.PromoCode); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &checkout.OrderResult{
		OrderID:       order.Ref,
		PaymentMethod: method,
	}

	if method == checkout.PaymentGatewayMethod {
		token, err := s.midtrans.CreateSnapToken(SnapTokenInput{
			OrderRef:      order.Ref,
			GrossAmount:   total,
			Discount:      order.Discount,
			DeliveryFee:   order.DeliveryFee,
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
			CustomerPhone: customer.Phone,
			Items:         req.Items,
		})
		if err != nil {
			// order sudah ada; tanpa token, storefront memperlakukan
			// pembayaran sebagai pending
			utils.ErrorLogger.Printf("Failed to create snap token for order %s: %v", order.Ref, err)
		} else {
			result.SnapToken = token
			if uerr := s.db.Model(&payment).Update("snap_token", token).Error; uerr != nil {
				utils.ErrorLogger.Printf("Failed to store snap token for order %s: %v", order.Ref, uerr)
			}
		}
	}

	utils.InfoLogger.Printf("Order %s created (%s, %s, total %s)",
		order.Ref, order.OrderType, order.PaymentMethod, utils.FormatRupiah(total))

	return result, nil
}

func (s *OrderService) applyTypeDetails(order *models.Order, req *checkout.OrderRequest) (checkout.PaymentMethod, error) {
	now := nowFunc()

	switch req.OrderType {
	case checkout.OrderTypeDelivery:
		if req.Delivery == nil || req.Delivery.AddressID == 0 {
			return "", checkout.ErrAddressRequired
		}
		var addr models.Address
		if err := s.db.First(&addr, req.Delivery.AddressID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrUnknownAddress
			}
			return "", fmt.Errorf("failed to look up address: %w", err)
		}
		if order.UserID != nil && addr.UserID != *order.UserID {
			return "", ErrUnknownAddress
		}
		if req.Delivery.ScheduleType == checkout.ScheduleScheduled {
			if req.Delivery.ScheduledAt == nil {
				return "", checkout.ErrScheduleRequired
			}
			if !req.Delivery.ScheduledAt.After(now) {
				return "", ErrPastSchedule
			}
			order.ScheduledAt = req.Delivery.ScheduledAt
		}
		order.AddressID = &addr.ID
		order.ScheduleType = req.Delivery.ScheduleType
		order.Notes = req.Delivery.Notes
		// delivery selalu dibayar lewat gateway
		return checkout.PaymentGatewayMethod, nil

	case checkout.OrderTypeTakeaway:
		if req.Takeaway == nil || req.Takeaway.BranchID == 0 {
			return "", checkout.ErrBranchRequired
		}
		var branch models.Branch
		if err := s.db.First(&branch, req.Takeaway.BranchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrUnknownBranch
			}
			return "", fmt.Errorf("failed to look up branch: %w", err)
		}
		if req.Takeaway.PickupType == checkout.ScheduleScheduled {
			if req.Takeaway.PickupAt == nil {
				return "", checkout.ErrScheduleRequired
			}
			if !req.Takeaway.PickupAt.After(now) {
				return "", ErrPastSchedule
			}
			order.ScheduledAt = req.Takeaway.PickupAt
		}
		method := req.Takeaway.PaymentMethod
		if method == "" {
			method = req.PaymentMethod
		}
		if method != checkout.PaymentGatewayMethod && method != checkout.PaymentCODMethod {
			return "", checkout.ErrPaymentMethod
		}
		order.BranchID = &branch.ID
		order.ScheduleType = req.Takeaway.PickupType
		order.Notes = req.Takeaway.Notes
		return method, nil
	}

	return "", checkout.ErrOrderType
}

// GetOrderByRef mengambil detail order beserta item dan pembayarannya
func (s *OrderService) GetOrderByRef(ref string) (*models.Order, *models.Payment, error) {
	var order models.Order
	err := s.db.Preload("OrderItems").Preload("Address").Preload("Branch").
		Where("ref = ?", ref).First(&order).Error
	if err != nil {
		return nil, nil, err
	}

	var payment models.Payment
	if err := s.db.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		return &order, nil, nil
	}
	return &order, &payment, nil
}

// placerFor mengikat service ke identitas customer satu sesi checkout
func (s *OrderService) PlacerFor(userID *uint, customer CustomerInfo) checkout.OrderPlacer {
	return &boundPlacer{svc: s, userID: userID, customer: customer}
}

type boundPlacer struct {
	svc      *OrderService
	userID   *uint
	customer CustomerInfo
}

func (p *boundPlacer) PlaceOrder(ctx context.Context, req *checkout.OrderRequest) (*checkout.OrderResult, error) {
	return p.svc.CreateOrder(ctx, req, p.userID, p.customer)
}
