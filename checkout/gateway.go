package checkout

import "sync"

// GatewayCallbacks memetakan sinyal asinkron dari gateway pembayaran.
// Gateway memanggil paling banyak satu callback hasil (success/pending/error);
// OnClose bisa datang setelahnya saat user menutup popup pembayaran.
type GatewayCallbacks struct {
	OnSuccess func()
	OnPending func()
	OnError   func(message string)
	OnClose   func()
}

// PaymentGateway adalah kapabilitas pembayaran online yang di-inject ke
// orchestrator, sehingga alur checkout bisa diuji dengan implementasi palsu.
type PaymentGateway interface {
	// IsReady melaporkan apakah gateway siap dipakai (script dimuat,
	// client key tersedia). Submit dengan metode gateway ditolak saat false.
	IsReady() bool

	// Pay memulai pembayaran untuk token transaksi yang diterbitkan server.
	// Hasilnya dikirim lewat callbacks.
	Pay(token string, cb GatewayCallbacks)
}

// Outcome adalah varian hasil akhir satu percobaan submit
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePending Outcome = "pending"
	OutcomeError   Outcome = "error"
	OutcomeCOD     Outcome = "cod"
)

// gatewayAttempt memastikan satu percobaan submit hanya difinalisasi sekali:
// sinyal pertama di antara success/pending/error/close yang menang, sisanya
// diabaikan.
type gatewayAttempt struct {
	once    sync.Once
	resolve func(outcome Outcome, message string)
}

func (a *gatewayAttempt) callbacks() GatewayCallbacks {
	return GatewayCallbacks{
		OnSuccess: func() { a.settle(OutcomeSuccess, "") },
		OnPending: func() { a.settle(OutcomePending, "") },
		OnError:   func(msg string) { a.settle(OutcomeError, msg) },
		// Popup ditutup tanpa sinyal hasil: user mungkin menyelesaikan
		// pembayaran di tempat lain, jadi dianggap pending
		OnClose: func() { a.settle(OutcomePending, "") },
	}
}

func (a *gatewayAttempt) settle(outcome Outcome, message string) {
	a.once.Do(func() {
		a.resolve(outcome, message)
	})
}
