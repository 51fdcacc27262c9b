package services

import (
	"sync"

	"github.com/takumaeat/takumaeat-app/checkout"
)

// SnapGateway menjembatani orchestrator checkout dengan Midtrans Snap.
// Pay mendaftarkan percobaan pembayaran berdasarkan token; hasil asinkronnya
// datang lewat webhook notifikasi dan diteruskan ke callbacks lewat Resolve.
type SnapGateway struct {
	midtrans *MidtransService

	mu       sync.Mutex
	attempts map[string]checkout.GatewayCallbacks // token -> callbacks
}

func NewSnapGateway(midtrans *MidtransService) *SnapGateway {
	return &SnapGateway{
		midtrans: midtrans,
		attempts: make(map[string]checkout.GatewayCallbacks),
	}
}

var _ checkout.PaymentGateway = (*SnapGateway)(nil)

// IsReady melaporkan apakah konfigurasi Midtrans lengkap
func (g *SnapGateway) IsReady() bool {
	return g.midtrans.IsReady()
}

// Pay mendaftarkan callbacks untuk token transaksi. Popup pembayaran
// berjalan di storefront; server hanya menunggu sinyal webhook.
func (g *SnapGateway) Pay(token string, cb checkout.GatewayCallbacks) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts[token] = cb
}

// Resolve meneruskan hasil pembayaran ke percobaan yang terdaftar.
// Sinyal untuk token yang tidak dikenal diabaikan (sesi sudah selesai
// atau server pernah restart); status order tetap diperbarui lewat
// PaymentService oleh pemanggil.
func (g *SnapGateway) Resolve(token, status, message string) {
	g.mu.Lock()
	cb, ok := g.attempts[token]
	if ok {
		delete(g.attempts, token)
	}
	g.mu.Unlock()

	if !ok {
		return
	}

	switch status {
	case PaymentStatusSuccess:
		if cb.OnSuccess != nil {
			cb.OnSuccess()
		}
	case PaymentStatusPending:
		if cb.OnPending != nil {
			cb.OnPending()
		}
	case PaymentStatusFailed, PaymentStatusExpired:
		if cb.OnError != nil {
			cb.OnError(message)
		}
	default:
		// status tidak dikenal diperlakukan seperti popup ditutup tanpa hasil
		if cb.OnClose != nil {
			cb.OnClose()
		}
	}
}
