package checkout

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/models"
)

// Tipe order
type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypeTakeaway OrderType = "takeaway"
)

// Metode pembayaran
type PaymentMethod string

const (
	PaymentGatewayMethod PaymentMethod = "gateway"
	PaymentCODMethod     PaymentMethod = "cod"
)

// Jadwal pengiriman / pengambilan
const (
	ScheduleASAP      = "ASAP"
	ScheduleNow       = "NOW"
	ScheduleScheduled = "SCHEDULED"
)

// DeliveryDetails adalah formulir step details untuk order delivery
type DeliveryDetails struct {
	AddressID    uint       `json:"address_id"`
	ScheduleType string     `json:"schedule_type"` // ASAP atau SCHEDULED
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	Notes        string     `json:"notes"`
}

// TakeawayDetails adalah formulir step details untuk order takeaway
type TakeawayDetails struct {
	BranchID      uint          `json:"branch_id"`
	PickupType    string        `json:"pickup_type"` // NOW atau SCHEDULED
	PickupAt      *time.Time    `json:"pickup_at,omitempty"`
	Notes         string        `json:"notes"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// Draft adalah snapshot state checkout yang belum disubmit. Disimpan pada
// setiap perubahan sehingga sesi yang terputus bisa dilanjutkan, dan
// dihapus segera setelah submit berhasil.
type Draft struct {
	Step      Step            `json:"step"`
	OrderType OrderType       `json:"order_type"`
	Delivery  DeliveryDetails `json:"delivery"`
	Takeaway  TakeawayDetails `json:"takeaway"`
	PromoCode string          `json:"promo_code,omitempty"`
	Items     []CartItem      `json:"items"`
}

// DraftRepository menyimpan snapshot draft. Load mengembalikan (nil, nil)
// saat tidak ada draft tersimpan.
type DraftRepository interface {
	Save(draft *Draft) error
	Load() (*Draft, error)
	Clear() error
}

// MemoryDraftRepository menyimpan draft di memori, dipakai di test dan
// sesi tanpa persistence
type MemoryDraftRepository struct {
	mu    sync.Mutex
	draft *Draft
}

func NewMemoryDraftRepository() *MemoryDraftRepository {
	return &MemoryDraftRepository{}
}

func (r *MemoryDraftRepository) Save(draft *Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *draft
	cp.Items = append([]CartItem(nil), draft.Items...)
	r.draft = &cp
	return nil
}

func (r *MemoryDraftRepository) Load() (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.draft == nil {
		return nil, nil
	}
	cp := *r.draft
	cp.Items = append([]CartItem(nil), r.draft.Items...)
	return &cp, nil
}

func (r *MemoryDraftRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draft = nil
	return nil
}

// GormDraftRepository menyimpan draft sebagai JSON di tabel checkout_drafts,
// satu baris per session key
type GormDraftRepository struct {
	db         *gorm.DB
	sessionKey string
}

func NewGormDraftRepository(db *gorm.DB, sessionKey string) *GormDraftRepository {
	return &GormDraftRepository{db: db, sessionKey: sessionKey}
}

func (r *GormDraftRepository) Save(draft *Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	var row models.CheckoutDraft
	err = r.db.Where("session_key = ?", r.sessionKey).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.CheckoutDraft{
			SessionKey: r.sessionKey,
			Payload:    string(payload),
		}
		return r.db.Create(&row).Error
	case err != nil:
		return err
	default:
		row.Payload = string(payload)
		return r.db.Save(&row).Error
	}
}

func (r *GormDraftRepository) Load() (*Draft, error) {
	var row models.CheckoutDraft
	err := r.db.Where("session_key = ?", r.sessionKey).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var draft Draft
	if err := json.Unmarshal([]byte(row.Payload), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *GormDraftRepository) Clear() error {
	return r.db.Where("session_key = ?", r.sessionKey).
		Delete(&models.CheckoutDraft{}).Error
}
