package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/checkout"
	"github.com/takumaeat/takumaeat-app/models"
	"github.com/takumaeat/takumaeat-app/utils"
)

// PromoService memvalidasi kode promo dan menghitung diskon
type PromoService struct {
	db *gorm.DB
}

func NewPromoService(db *gorm.DB) *PromoService {
	return &PromoService{db: db}
}

var _ checkout.PromoValidator = (*PromoService)(nil)

// Check memvalidasi kode terhadap subtotal keranjang. Penolakan dikembalikan
// sebagai hasil dengan Valid=false dan pesan untuk user, bukan error.
func (s *PromoService) Check(ctx context.Context, code string, cartSubtotal int64) (*checkout.PromoResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return &checkout.PromoResult{Valid: false, Message: "promo code is required"}, nil
	}

	var promo models.Promo
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&promo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &checkout.PromoResult{Valid: false, Message: "promo code not found"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up promo: %w", err)
	}

	now := nowFunc()

	switch {
	case !promo.IsActive:
		return &checkout.PromoResult{Valid: false, Message: "promo code is no longer active"}, nil
	case promo.StartsAt != nil && now.Before(*promo.StartsAt):
		return &checkout.PromoResult{Valid: false, Message: "promo code is not active yet"}, nil
	case promo.EndsAt != nil && now.After(*promo.EndsAt):
		return &checkout.PromoResult{Valid: false, Message: "promo code has expired"}, nil
	case promo.UsageLimit > 0 && promo.UsageCount >= promo.UsageLimit:
		return &checkout.PromoResult{Valid: false, Message: "promo code usage limit reached"}, nil
	case cartSubtotal < promo.MinPurchase:
		return &checkout.PromoResult{
			Valid:   false,
			Message: fmt.Sprintf("minimum purchase for this promo is %s", utils.FormatRupiah(promo.MinPurchase)),
		}, nil
	}

	discount := s.computeDiscount(&promo, cartSubtotal)
	return &checkout.PromoResult{
		Valid:          true,
		PromoCode:      promo.Code,
		DiscountAmount: discount,
		Message:        "promo applied",
	}, nil
}

func (s *PromoService) computeDiscount(promo *models.Promo, subtotal int64) int64 {
	var discount int64
	switch promo.DiscountType {
	case models.PromoTypePercent:
		discount = subtotal * promo.DiscountValue / 100
		if promo.MaxDiscount > 0 && discount > promo.MaxDiscount {
			discount = promo.MaxDiscount
		}
	default:
		discount = promo.DiscountValue
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// Redeem menaikkan usage count dalam transaksi pembuatan order, dengan
// pengecekan ulang limit supaya promo tidak terpakai melewati batas
func (s *PromoService) Redeem(tx *gorm.DB, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	var promo models.Promo
	if err := tx.Where("code = ?", code).First(&promo).Error; err != nil {
		return fmt.Errorf("failed to look up promo for redemption: %w", err)
	}
	if promo.UsageLimit > 0 && promo.UsageCount >= promo.UsageLimit {
		return fmt.Errorf("promo code usage limit reached")
	}

	return tx.Model(&promo).
		Update("usage_count", gorm.Expr("usage_count + 1")).Error
}
