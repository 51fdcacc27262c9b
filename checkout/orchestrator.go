package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Step adalah tahap wizard checkout
type Step string

const (
	StepReview       Step = "review"
	StepDetails      Step = "details"
	StepSubmitting   Step = "submitting"
	StepConfirmation Step = "confirmation"
)

// DefaultConfirmTimeout membatasi berapa lama state confirmation boleh
// menggantung tanpa finalisasi sebelum dikembalikan ke review
const DefaultConfirmTimeout = 5 * time.Second

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidStep        = errors.New("operation not allowed in current step")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrGatewayNotReady    = errors.New("payment gateway not ready")
	ErrAddressRequired    = errors.New("a delivery address must be selected")
	ErrBranchRequired     = errors.New("a pickup branch must be selected")
	ErrScheduleRequired   = errors.New("a scheduled time must be provided")
	ErrSchedulePast       = errors.New("scheduled time must be in the future")
	ErrPaymentMethod      = errors.New("invalid payment method")
	ErrOrderType          = errors.New("invalid order type")
)

// OrderRequest adalah payload order yang dikomposisi dari state checkout
type OrderRequest struct {
	OrderType     OrderType        `json:"order_type"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	Items         []CartItem       `json:"cart_items"`
	PromoCode     string           `json:"promo_code,omitempty"`
	Delivery      *DeliveryDetails `json:"delivery,omitempty"`
	Takeaway      *TakeawayDetails `json:"takeaway,omitempty"`
}

// OrderResult adalah jawaban API order: id order plus instruksi pembayaran
type OrderResult struct {
	OrderID       string
	PaymentMethod PaymentMethod
	SnapToken     string // kosong untuk COD atau saat token gagal diterbitkan
}

// OrderPlacer mengirim payload order ke API persistence
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req *OrderRequest) (*OrderResult, error)
}

// SubmissionResult adalah hasil akhir satu percobaan submit, dipakai UI
// untuk menampilkan varian modal konfirmasi
type SubmissionResult struct {
	OrderID string  `json:"order_id"`
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message,omitempty"`
}

// Summary adalah ringkasan state checkout untuk rendering
type Summary struct {
	Step        Step              `json:"step"`
	OrderType   OrderType         `json:"order_type"`
	Items       []CartItem        `json:"items"`
	Subtotal    int64             `json:"subtotal"`
	Discount    int64             `json:"discount"`
	DeliveryFee int64             `json:"delivery_fee"`
	Total       int64             `json:"total"`
	Promo       *PromoApplication `json:"promo,omitempty"`
}

// Options mengatur perilaku orchestrator
type Options struct {
	// DeliveryFee adalah surcharge tetap untuk order delivery
	DeliveryFee int64
	// OrderTypeOverride memaksa tipe order saat restore draft, seperti
	// query param di storefront
	OrderTypeOverride OrderType
	// ConfirmTimeout membatasi lamanya state confirmation menggantung.
	// 0 berarti DefaultConfirmTimeout.
	ConfirmTimeout time.Duration
	// Now bisa diganti di test
	Now func() time.Time
	Logger *logrus.Logger
	// OnFinalize dipanggil sekali saat satu submit mencapai hasil akhir
	OnFinalize func(SubmissionResult)
}

// Orchestrator menjalankan wizard checkout tiga langkah
// (review -> details -> confirmation) sebagai state machine dengan transisi
// terjaga: Submit hanya legal dari details, dan panggilan ulang selama
// submitting adalah no-op.
type Orchestrator struct {
	mu        sync.Mutex
	cart      *Cart
	validator PromoValidator
	gateway   PaymentGateway
	placer    OrderPlacer
	drafts    DraftRepository
	opts      Options

	step      Step
	orderType OrderType
	delivery  DeliveryDetails
	takeaway  TakeawayDetails
	applied   *PromoApplication

	confirmTimer *time.Timer
	result       *SubmissionResult
}

// New membangun orchestrator dan me-restore draft tersimpan jika ada
func New(cart *Cart, validator PromoValidator, gateway PaymentGateway, placer OrderPlacer, drafts DraftRepository, opts Options) *Orchestrator {
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = DefaultConfirmTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if drafts == nil {
		drafts = NewMemoryDraftRepository()
	}

	o := &Orchestrator{
		cart:      cart,
		validator: validator,
		gateway:   gateway,
		placer:    placer,
		drafts:    drafts,
		opts:      opts,
		step:      StepReview,
		orderType: OrderTypeDelivery,
		delivery:  DeliveryDetails{ScheduleType: ScheduleASAP},
		takeaway:  TakeawayDetails{PickupType: ScheduleNow, PaymentMethod: PaymentGatewayMethod},
	}

	o.restoreDraft()

	if opts.OrderTypeOverride != "" {
		o.mu.Lock()
		o.setOrderTypeLocked(opts.OrderTypeOverride)
		o.mu.Unlock()
	}

	return o
}

func (o *Orchestrator) restoreDraft() {
	draft, err := o.drafts.Load()
	if err != nil {
		o.opts.Logger.Warnf("failed to load checkout draft: %v", err)
		return
	}
	if draft == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if len(draft.Items) > 0 {
		o.cart.Replace(draft.Items)
	}
	switch draft.Step {
	case StepReview, StepDetails:
		o.step = draft.Step
	case StepSubmitting, StepConfirmation:
		// draft seharusnya sudah dihapus setelah submit; jangan bangunkan
		// kembali state pasca-submit
		o.step = StepDetails
	}
	if draft.OrderType != "" {
		o.orderType = draft.OrderType
	}
	if draft.Delivery.ScheduleType != "" {
		o.delivery = draft.Delivery
	}
	if draft.Takeaway.PickupType != "" {
		o.takeaway = draft.Takeaway
	}
	// kode promo tidak di-restore sebagai diskon aktif: diskon hanya sah
	// untuk subtotal saat validasi, jadi user harus apply ulang
}

// Step mengembalikan tahap wizard saat ini
func (o *Orchestrator) Step() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// OrderType mengembalikan tipe order aktif
func (o *Orchestrator) OrderType() OrderType {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.orderType
}

// Result mengembalikan hasil submit terakhir, nil jika belum ada
func (o *Orchestrator) Result() *SubmissionResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.result == nil {
		return nil
	}
	cp := *o.result
	return &cp
}

// SetOrderType mengganti tipe order. Promo yang sudah diterapkan dibatalkan
// karena diskon divalidasi terhadap konteks order sebelumnya.
func (o *Orchestrator) SetOrderType(t OrderType) error {
	if t != OrderTypeDelivery && t != OrderTypeTakeaway {
		return ErrOrderType
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setOrderTypeLocked(t)
	return nil
}

func (o *Orchestrator) setOrderTypeLocked(t OrderType) {
	if o.orderType != t {
		o.applied = nil
	}
	o.orderType = t
	o.saveDraftLocked()
}

// AddItem menambahkan item ke keranjang lewat orchestrator supaya promo
// yang bergantung pada subtotal ikut dibatalkan
func (o *Orchestrator) AddItem(item CartItem) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cart.AddItem(item)
	o.afterCartChangeLocked()
}

func (o *Orchestrator) IncrementItem(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cart.IncrementItem(name)
	o.afterCartChangeLocked()
}

func (o *Orchestrator) DecrementItem(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cart.DecrementItem(name)
	o.afterCartChangeLocked()
}

func (o *Orchestrator) RemoveItem(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cart.RemoveItem(name)
	o.afterCartChangeLocked()
}

func (o *Orchestrator) afterCartChangeLocked() {
	if o.applied != nil && o.cart.Subtotal() != o.applied.Subtotal {
		// diskon tidak pernah dipakai ulang diam-diam terhadap subtotal
		// yang berubah; user harus apply ulang
		o.applied = nil
	}
	o.saveDraftLocked()
}

// GoToDetails pindah dari review ke details; butuh keranjang tidak kosong
func (o *Orchestrator) GoToDetails() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step != StepReview {
		return ErrInvalidStep
	}
	if o.cart.ItemCount() == 0 {
		return ErrEmptyCart
	}
	o.step = StepDetails
	o.saveDraftLocked()
	return nil
}

// BackToReview kembali dari details ke review
func (o *Orchestrator) BackToReview() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step != StepDetails {
		return ErrInvalidStep
	}
	o.step = StepReview
	o.saveDraftLocked()
	return nil
}

// SetDeliveryDetails menyimpan formulir delivery
func (o *Orchestrator) SetDeliveryDetails(d DeliveryDetails) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if d.ScheduleType == "" {
		d.ScheduleType = ScheduleASAP
	}
	o.delivery = d
	o.saveDraftLocked()
}

// SetTakeawayDetails menyimpan formulir takeaway
func (o *Orchestrator) SetTakeawayDetails(t TakeawayDetails) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if t.PickupType == "" {
		t.PickupType = ScheduleNow
	}
	if t.PaymentMethod == "" {
		t.PaymentMethod = PaymentGatewayMethod
	}
	o.takeaway = t
	o.saveDraftLocked()
}

// ApplyPromo memvalidasi kode terhadap subtotal saat ini. Penolakan bukan
// error: hasilnya membawa pesan untuk user dan checkout lanjut tanpa diskon.
func (o *Orchestrator) ApplyPromo(ctx context.Context, code string) (*PromoResult, error) {
	o.mu.Lock()
	subtotal := o.cart.Subtotal()
	o.mu.Unlock()

	result, err := o.validator.Check(ctx, code, subtotal)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if !result.Valid {
		o.applied = nil
		o.saveDraftLocked()
		return result, nil
	}

	// subtotal bisa saja bergeser selama validasi berjalan; diskon hanya
	// dipercaya untuk subtotal yang persis sama
	if o.cart.Subtotal() != subtotal {
		o.applied = nil
		o.saveDraftLocked()
		return &PromoResult{Valid: false, Message: "cart changed during validation, please re-apply the promo"}, nil
	}

	o.applied = &PromoApplication{
		Code:           result.PromoCode,
		DiscountAmount: result.DiscountAmount,
		Subtotal:       subtotal,
	}
	o.saveDraftLocked()
	return result, nil
}

// RemovePromo melepas diskon yang sedang diterapkan
func (o *Orchestrator) RemovePromo() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applied = nil
	o.saveDraftLocked()
}

// AppliedPromo mengembalikan promo aktif, nil jika tidak ada
func (o *Orchestrator) AppliedPromo() *PromoApplication {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.applied == nil {
		return nil
	}
	cp := *o.applied
	return &cp
}

// Total menghitung ulang total dari state saat ini:
// max(0, subtotal - discount + deliveryFee)
func (o *Orchestrator) Total() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.totalLocked()
}

func (o *Orchestrator) totalLocked() int64 {
	var discount int64
	if o.applied != nil {
		discount = o.applied.DiscountAmount
	}
	total := o.cart.Subtotal() - discount + o.deliveryFeeLocked()
	if total < 0 {
		total = 0
	}
	return total
}

func (o *Orchestrator) deliveryFeeLocked() int64 {
	if o.orderType == OrderTypeDelivery {
		return o.opts.DeliveryFee
	}
	return 0
}

// Summary menyusun ringkasan untuk rendering
func (o *Orchestrator) Summary() Summary {
	o.mu.Lock()
	defer o.mu.Unlock()

	var discount int64
	var promo *PromoApplication
	if o.applied != nil {
		discount = o.applied.DiscountAmount
		cp := *o.applied
		promo = &cp
	}

	return Summary{
		Step:        o.step,
		OrderType:   o.orderType,
		Items:       o.cart.Items(),
		Subtotal:    o.cart.Subtotal(),
		Discount:    discount,
		DeliveryFee: o.deliveryFeeLocked(),
		Total:       o.totalLocked(),
		Promo:       promo,
	}
}

func (o *Orchestrator) validateDetailsLocked() error {
	now := o.opts.Now()

	switch o.orderType {
	case OrderTypeDelivery:
		if o.delivery.AddressID == 0 {
			return ErrAddressRequired
		}
		if o.delivery.ScheduleType == ScheduleScheduled {
			if o.delivery.ScheduledAt == nil {
				return ErrScheduleRequired
			}
			if !o.delivery.ScheduledAt.After(now) {
				return ErrSchedulePast
			}
		}
	case OrderTypeTakeaway:
		if o.takeaway.BranchID == 0 {
			return ErrBranchRequired
		}
		if o.takeaway.PickupType == ScheduleScheduled {
			if o.takeaway.PickupAt == nil {
				return ErrScheduleRequired
			}
			if !o.takeaway.PickupAt.After(now) {
				return ErrSchedulePast
			}
		}
		if o.takeaway.PaymentMethod != PaymentGatewayMethod && o.takeaway.PaymentMethod != PaymentCODMethod {
			return ErrPaymentMethod
		}
	}
	return nil
}

// effectiveMethodLocked: delivery selalu lewat gateway, takeaway mengikuti
// pilihan user
func (o *Orchestrator) effectiveMethodLocked() PaymentMethod {
	if o.orderType == OrderTypeDelivery {
		return PaymentGatewayMethod
	}
	return o.takeaway.PaymentMethod
}

func (o *Orchestrator) composeRequestLocked(method PaymentMethod) *OrderRequest {
	req := &OrderRequest{
		OrderType:     o.orderType,
		PaymentMethod: method,
		Items:         o.cart.Items(),
	}
	if o.applied != nil {
		req.PromoCode = o.applied.Code
	}
	switch o.orderType {
	case OrderTypeDelivery:
		d := o.delivery
		req.Delivery = &d
	case OrderTypeTakeaway:
		t := o.takeaway
		t.PaymentMethod = method
		req.Takeaway = &t
	}
	return req
}

// Submit menjalankan algoritma pembuatan order dari step details.
// Panggilan selama submitting mengembalikan ErrSubmissionInFlight tanpa
// efek samping; dari step lain mengembalikan ErrInvalidStep.
func (o *Orchestrator) Submit(ctx context.Context) error {
	o.mu.Lock()
	if o.step == StepSubmitting {
		o.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if o.step != StepDetails {
		o.mu.Unlock()
		return ErrInvalidStep
	}
	if err := o.validateDetailsLocked(); err != nil {
		o.mu.Unlock()
		return err
	}

	method := o.effectiveMethodLocked()
	if method == PaymentGatewayMethod && (o.gateway == nil || !o.gateway.IsReady()) {
		o.mu.Unlock()
		return ErrGatewayNotReady
	}

	o.step = StepSubmitting
	req := o.composeRequestLocked(method)
	o.mu.Unlock()

	result, err := o.placer.PlaceOrder(ctx, req)

	o.mu.Lock()
	if err != nil {
		// tetap di details, user boleh memperbaiki dan mencoba lagi
		o.step = StepDetails
		o.mu.Unlock()
		return err
	}

	if cerr := o.drafts.Clear(); cerr != nil {
		o.opts.Logger.Warnf("failed to clear checkout draft: %v", cerr)
	}

	o.step = StepConfirmation
	o.result = nil

	attempt := &gatewayAttempt{}
	attempt.resolve = func(outcome Outcome, message string) {
		o.finalize(result.OrderID, outcome, message)
	}

	// safety net: confirmation tidak boleh menggantung tanpa hasil
	o.confirmTimer = time.AfterFunc(o.opts.ConfirmTimeout, o.confirmTimedOut)

	useGateway := method == PaymentGatewayMethod && result.SnapToken != "" && o.gateway.IsReady()
	o.mu.Unlock()

	switch {
	case useGateway:
		o.gateway.Pay(result.SnapToken, attempt.callbacks())
	case method == PaymentCODMethod:
		attempt.settle(OutcomeCOD, "")
	default:
		// token gateway tidak bisa dipakai; order sudah ada dan pembayaran
		// bisa dilanjutkan dari riwayat order
		attempt.settle(OutcomePending, "")
	}
	return nil
}

func (o *Orchestrator) finalize(orderID string, outcome Outcome, message string) {
	o.mu.Lock()
	if o.confirmTimer != nil {
		o.confirmTimer.Stop()
		o.confirmTimer = nil
	}
	o.cart.Clear()
	o.applied = nil
	o.result = &SubmissionResult{
		OrderID: orderID,
		Outcome: outcome,
		Message: message,
	}
	res := *o.result
	cb := o.opts.OnFinalize
	o.mu.Unlock()

	if cb != nil {
		cb(res)
	}
}

func (o *Orchestrator) confirmTimedOut() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step != StepConfirmation || o.result != nil {
		return
	}
	o.opts.Logger.Warn("checkout confirmation timed out without a result, reverting to review")
	o.step = StepReview
	o.confirmTimer = nil
}

func (o *Orchestrator) saveDraftLocked() {
	var promoCode string
	if o.applied != nil {
		promoCode = o.applied.Code
	}
	draft := &Draft{
		Step:      o.step,
		OrderType: o.orderType,
		Delivery:  o.delivery,
		Takeaway:  o.takeaway,
		PromoCode: promoCode,
		Items:     o.cart.Items(),
	}
	if err := o.drafts.Save(draft); err != nil {
		o.opts.Logger.Warnf("failed to save checkout draft: %v", err)
	}
}
