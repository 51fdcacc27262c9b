package services

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/takumaeat/takumaeat-app/checkout"
	"github.com/takumaeat/takumaeat-app/config"
)

// MidtransService membungkus Snap dan Core API Midtrans
type MidtransService struct {
	cfg        *config.MidtransConfig
	snapClient snap.Client
	coreClient coreapi.Client
}

func NewMidtransService(cfg *config.MidtransConfig) *MidtransService {
	env := midtrans.Sandbox
	if cfg.IsProduction {
		env = midtrans.Production
	}

	ms := &MidtransService{cfg: cfg}
	ms.snapClient.New(cfg.ServerKey, env)
	ms.coreClient.New(cfg.ServerKey, env)
	return ms
}

// SnapTokenInput adalah bahan pembuatan transaksi Snap untuk satu order
type SnapTokenInput struct {
	OrderRef      string
	GrossAmount   int64
	Discount      int64
	DeliveryFee   int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Items         []checkout.CartItem
}

// CreateSnapToken menerbitkan token Snap untuk satu order. Item details harus
// menjumlah persis ke gross amount, jadi diskon masuk sebagai baris negatif
// dan ongkir sebagai baris tersendiri.
func (ms *MidtransService) CreateSnapToken(in SnapTokenInput) (string, error) {
	if err := ms.cfg.Validate(); err != nil {
		return "", fmt.Errorf("midtrans is not configured: %w", err)
	}

	items := make([]midtrans.ItemDetails, 0, len(in.Items)+2)
	for i, it := range in.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    fmt.Sprintf("%s-%d", in.OrderRef, i+1),
			Name:  truncateItemName(it.Name),
			Price: it.Price,
			Qty:   int32(it.Quantity),
		})
	}
	if in.DeliveryFee > 0 {
		items = append(items, midtrans.ItemDetails{
			ID:    in.OrderRef + "-delivery",
			Name:  "Delivery fee",
			Price: in.DeliveryFee,
			Qty:   1,
		})
	}
	if in.Discount > 0 {
		items = append(items, midtrans.ItemDetails{
			ID:    in.OrderRef + "-promo",
			Name:  "Promo discount",
			Price: -in.Discount,
			Qty:   1,
		})
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  in.OrderRef,
			GrossAmt: in.GrossAmount,
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: in.CustomerName,
			Email: in.CustomerEmail,
			Phone: in.CustomerPhone,
		},
		Expiry: &snap.ExpiryDetails{
			Unit:     "minute",
			Duration: 30,
		},
	}

	resp, midErr := ms.snapClient.CreateTransaction(req)
	if midErr != nil {
		return "", fmt.Errorf("failed to create snap transaction: %w", midErr)
	}
	return resp.Token, nil
}

// CheckTransactionStatus menanyakan status transaksi ke Core API dan
// memetakannya ke status internal
func (ms *MidtransService) CheckTransactionStatus(orderRef string) (string, error) {
	resp, midErr := ms.coreClient.CheckTransaction(orderRef)
	if midErr != nil {
		return "", fmt.Errorf("failed to check transaction status: %w", midErr)
	}
	return MapTransactionStatus(resp.TransactionStatus), nil
}

// ValidateSignature memverifikasi signature_key notifikasi Midtrans:
// sha512(order_id + status_code + gross_amount + server_key)
func (ms *MidtransService) ValidateSignature(orderID, statusCode, grossAmount, signature string) bool {
	signatureString := fmt.Sprintf("%s%s%s%s", orderID, statusCode, grossAmount, ms.cfg.ServerKey)
	hash := sha512.New()
	hash.Write([]byte(signatureString))
	calculated := hex.EncodeToString(hash.Sum(nil))
	return calculated == signature
}

// ClientKey untuk dipakai storefront memuat Snap.js
func (ms *MidtransService) ClientKey() string {
	return ms.cfg.ClientKey
}

// SnapScriptURL mengembalikan URL script Snap sesuai environment
func (ms *MidtransService) SnapScriptURL() string {
	return ms.cfg.SnapScriptURL
}

// IsReady melaporkan apakah konfigurasi gateway lengkap
func (ms *MidtransService) IsReady() bool {
	return ms.cfg.Validate() == nil
}

// MapTransactionStatus memetakan status transaksi Midtrans ke status internal
func MapTransactionStatus(status string) string {
	switch status {
	case "capture", "settlement":
		return PaymentStatusSuccess
	case "pending", "authorize":
		return PaymentStatusPending
	case "deny", "cancel", "expire", "failure":
		return PaymentStatusFailed
	default:
		return "unknown"
	}
}

// Snap membatasi nama item sampai 50 karakter
func truncateItemName(name string) string {
	if len(name) > 50 {
		return name[:50]
	}
	return name
}
