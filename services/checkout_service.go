package services

import (
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/checkout"
	"github.com/takumaeat/takumaeat-app/utils"
)

// CheckoutService mengelola orchestrator checkout per sesi storefront.
// Draft setiap sesi disimpan di database sehingga sesi yang terputus bisa
// dilanjutkan, juga setelah server restart.
type CheckoutService struct {
	db          *gorm.DB
	orders      *OrderService
	promos      *PromoService
	gateway     *SnapGateway
	deliveryFee int64

	mu       sync.Mutex
	sessions map[string]*checkout.Orchestrator
}

func NewCheckoutService(db *gorm.DB, orders *OrderService, promos *PromoService, gateway *SnapGateway, deliveryFee int64) *CheckoutService {
	return &CheckoutService{
		db:          db,
		orders:      orders,
		promos:      promos,
		gateway:     gateway,
		deliveryFee: deliveryFee,
		sessions:    make(map[string]*checkout.Orchestrator),
	}
}

// NewSession membuat sesi checkout baru dan mengembalikan key-nya
func (s *CheckoutService) NewSession(orderType checkout.OrderType, userID *uint, customer CustomerInfo) string {
	key := uuid.NewString()
	s.buildSession(key, orderType, userID, customer)
	return key
}

// Session mengembalikan orchestrator untuk session key, me-rehydrate dari
// draft tersimpan kalau server sempat restart. Mengembalikan nil untuk key
// yang tidak pernah ada draft-nya.
func (s *CheckoutService) Session(key string, userID *uint, customer CustomerInfo) *checkout.Orchestrator {
	s.mu.Lock()
	orch, ok := s.sessions[key]
	s.mu.Unlock()
	if ok {
		return orch
	}

	repo := checkout.NewGormDraftRepository(s.db, key)
	draft, err := repo.Load()
	if err != nil {
		utils.ErrorLogger.Printf("Failed to load draft for session %s: %v", key, err)
		return nil
	}
	if draft == nil {
		return nil
	}
	return s.buildSession(key, "", userID, customer)
}

func (s *CheckoutService) buildSession(key string, orderTypeOverride checkout.OrderType, userID *uint, customer CustomerInfo) *checkout.Orchestrator {
	orch := checkout.New(
		checkout.NewCart(),
		s.promos,
		s.gateway,
		s.orders.PlacerFor(userID, customer),
		checkout.NewGormDraftRepository(s.db, key),
		checkout.Options{
			DeliveryFee:       s.deliveryFee,
			OrderTypeOverride: orderTypeOverride,
			Logger:            utils.ErrorLogger,
		},
	)

	s.mu.Lock()
	s.sessions[key] = orch
	s.mu.Unlock()
	return orch
}

// EndSession melepas orchestrator dari registry (draft yang belum submit
// tetap tersimpan dan bisa dilanjutkan lagi)
func (s *CheckoutService) EndSession(key string) {
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
}
