package checkout

import "context"

// PromoResult adalah hasil validasi kode promo terhadap subtotal tertentu
type PromoResult struct {
	Valid          bool   `json:"valid"`
	PromoCode      string `json:"promo_code,omitempty"`
	DiscountAmount int64  `json:"discount_amount,omitempty"`
	Message        string `json:"message"`
}

// PromoValidator memvalidasi kode promo terhadap subtotal keranjang.
// Penolakan promo bukan error: Check mengembalikan hasil dengan Valid=false
// dan Message terisi. Error hanya untuk kegagalan teknis (network, DB).
type PromoValidator interface {
	Check(ctx context.Context, code string, cartSubtotal int64) (*PromoResult, error)
}

// PromoApplication adalah diskon yang sudah diterapkan. Diskon hanya
// dipercaya untuk subtotal persis saat ia divalidasi: perubahan subtotal
// atau tipe order apa pun membatalkannya dan user harus apply ulang.
type PromoApplication struct {
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
	Subtotal       int64  `json:"subtotal"` // subtotal saat validasi
}
