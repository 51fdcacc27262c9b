package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeValidator menerima kode "HEMAT" dengan diskon tetap, menolak sisanya
type fakeValidator struct {
	discount int64
	err      error
	// onCheck memberi kesempatan test memodifikasi state di tengah validasi
	onCheck func()
}

func (v *fakeValidator) Check(_ context.Context, code string, subtotal int64) (*PromoResult, error) {
	if v.onCheck != nil {
		v.onCheck()
	}
	if v.err != nil {
		return nil, v.err
	}
	if code != "HEMAT" {
		return &PromoResult{Valid: false, Message: "Promo code not found"}, nil
	}
	return &PromoResult{Valid: true, PromoCode: code, DiscountAmount: v.discount}, nil
}

// fakeGateway menahan callbacks sampai test memutuskan sinyal mana yang datang
type fakeGateway struct {
	mu       sync.Mutex
	ready    bool
	payCalls int
	lastCB   GatewayCallbacks
}

func (g *fakeGateway) IsReady() bool { return g.ready }

func (g *fakeGateway) Pay(_ string, cb GatewayCallbacks) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payCalls++
	g.lastCB = cb
}

func (g *fakeGateway) callbacks() GatewayCallbacks {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastCB
}

// fakePlacer merekam request dan mengembalikan hasil yang sudah disetel
type fakePlacer struct {
	mu      sync.Mutex
	calls   int
	lastReq *OrderRequest
	result  *OrderResult
	err     error
}

func (p *fakePlacer) PlaceOrder(_ context.Context, req *OrderRequest) (*OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func futureTime(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

func newTestOrchestrator(t *testing.T, gateway *fakeGateway, placer *fakePlacer, opts Options) *Orchestrator {
	t.Helper()
	if opts.DeliveryFee == 0 {
		opts.DeliveryFee = 15000
	}
	return New(NewCart(), &fakeValidator{discount: 10000}, gateway, placer, NewMemoryDraftRepository(), opts)
}

func TestGoToDetailsRequiresItems(t *testing.T) {
	o := newTestOrchestrator(t, &fakeGateway{ready: true}, &fakePlacer{}, Options{})

	assert.ErrorIs(t, o.GoToDetails(), ErrEmptyCart)

	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	assert.NoError(t, o.GoToDetails())
	assert.Equal(t, StepDetails, o.Step())

	// GoToDetails dari details bukan transisi yang sah
	assert.ErrorIs(t, o.GoToDetails(), ErrInvalidStep)

	assert.NoError(t, o.BackToReview())
	assert.Equal(t, StepReview, o.Step())
	assert.ErrorIs(t, o.BackToReview(), ErrInvalidStep)
}

func TestSubmitOnlyLegalFromDetails(t *testing.T) {
	o := newTestOrchestrator(t, &fakeGateway{ready: true}, &fakePlacer{}, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})

	assert.ErrorIs(t, o.Submit(context.Background()), ErrInvalidStep)
}

func TestTotalsDeliveryAndTakeaway(t *testing.T) {
	o := newTestOrchestrator(t, &fakeGateway{ready: true}, &fakePlacer{}, Options{DeliveryFee: 15000})

	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.IncrementItem("Shoyu Ramen")
	assert.Equal(t, int64(90000), o.Summary().Subtotal)

	// delivery menambah ongkir
	assert.NoError(t, o.SetOrderType(OrderTypeDelivery))
	assert.Equal(t, int64(105000), o.Total())

	// takeaway tanpa ongkir
	assert.NoError(t, o.SetOrderType(OrderTypeTakeaway))
	assert.Equal(t, int64(90000), o.Total())

	assert.ErrorIs(t, o.SetOrderType("dine_in"), ErrOrderType)
}

func TestTotalNeverNegative(t *testing.T) {
	o := New(NewCart(), &fakeValidator{discount: 999999}, &fakeGateway{ready: true}, &fakePlacer{}, NewMemoryDraftRepository(), Options{})
	o.AddItem(CartItem{Name: "Ocha", Price: 10000})
	assert.NoError(t, o.SetOrderType(OrderTypeTakeaway))

	result, err := o.ApplyPromo(context.Background(), "HEMAT")
	assert.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, int64(0), o.Total())
}

func TestPromoAppliedAndClearedOnCartChange(t *testing.T) {
	o := newTestOrchestrator(t, &fakeGateway{ready: true}, &fakePlacer{}, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.IncrementItem("Shoyu Ramen")

	result, err := o.ApplyPromo(context.Background(), "HEMAT")
	assert.NoError(t, err)
	assert.True(t, result.Valid)
	assert.NotNil(t, o.AppliedPromo())
	assert.Equal(t, int64(10000), o.Summary().Discount)

	// subtotal berubah, promo dibatalkan
	o.IncrementItem("Shoyu Ramen")
	assert.Nil(t, o.AppliedPromo())
	assert.Equal(t, int64(0), o.Summary().Discount)
}

func TestPromoClearedOnOrderTypeChange(t *testing.T) {
	o := newTestOrchestrator(t, &fakeGateway{ready: true}, &fakePlacer{}, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})

	_, err := o.ApplyPromo(context.Background(), "HEMAT")
	assert.NoError(t, err)
	assert.NotNil(t, o.AppliedPromo())

	assert.NoError(t, o.SetOrderType(OrderTypeTakeaway))
	assert.Nil(t, o.AppliedPromo())

	// set ke tipe yang sama tidak membatalkan
	_, err = o.ApplyPromo(context.Background(), "HEMAT")
	assert.NoError(t, err)
	assert.NoError(t, o.SetOrderType(OrderTypeTakeaway))
	assert.NotNil(t, o.AppliedPromo())
}

func TestPromoRejectionIsNotAnError(t *testing.T) {
	o := newTestOrchestrator(t, &fakeGateway{ready: true}, &fakePlacer{}, Options{})
	o.AddItem(CartItem{Name: "Ocha", Price: 10000})

	result, err := o.ApplyPromo(context.Background(), "SALAH")
	assert.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Message)
	assert.Nil(t, o.AppliedPromo())
}

func TestPromoInvalidatedWhenCartShiftsDuringValidation(t *testing.T) {
	cart := NewCart()
	validator := &fakeValidator{discount: 10000}
	o := New(cart, validator, &fakeGateway{ready: true}, &fakePlacer{}, NewMemoryDraftRepository(), Options{})
	o.AddItem(CartItem{Name: "Ocha", Price: 10000})

	// keranjang berubah selagi validator masih bekerja
	validator.onCheck = func() { cart.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000}) }

	result, err := o.ApplyPromo(context.Background(), "HEMAT")
	assert.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Nil(t, o.AppliedPromo())
}

func TestSubmitValidatesDeliveryDetails(t *testing.T) {
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-1"}}
	o := newTestOrchestrator(t, &fakeGateway{ready: true}, placer, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	assert.NoError(t, o.GoToDetails())

	// alamat belum dipilih
	assert.ErrorIs(t, o.Submit(context.Background()), ErrAddressRequired)

	// jadwal SCHEDULED tanpa waktu
	o.SetDeliveryDetails(DeliveryDetails{AddressID: 1, ScheduleType: ScheduleScheduled})
	assert.ErrorIs(t, o.Submit(context.Background()), ErrScheduleRequired)

	// jadwal di masa lalu
	past := time.Now().Add(-time.Hour)
	o.SetDeliveryDetails(DeliveryDetails{AddressID: 1, ScheduleType: ScheduleScheduled, ScheduledAt: &past})
	assert.ErrorIs(t, o.Submit(context.Background()), ErrSchedulePast)

	assert.Equal(t, 0, placer.calls)
	assert.Equal(t, StepDetails, o.Step())
}

func TestSubmitValidatesTakeawayDetails(t *testing.T) {
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-1"}}
	o := newTestOrchestrator(t, &fakeGateway{ready: true}, placer, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	assert.NoError(t, o.SetOrderType(OrderTypeTakeaway))
	assert.NoError(t, o.GoToDetails())

	assert.ErrorIs(t, o.Submit(context.Background()), ErrBranchRequired)

	o.SetTakeawayDetails(TakeawayDetails{BranchID: 1, PickupType: ScheduleScheduled, PaymentMethod: PaymentCODMethod})
	assert.ErrorIs(t, o.Submit(context.Background()), ErrScheduleRequired)

	o.SetTakeawayDetails(TakeawayDetails{BranchID: 1, PaymentMethod: "transfer"})
	assert.ErrorIs(t, o.Submit(context.Background()), ErrPaymentMethod)

	assert.Equal(t, 0, placer.calls)
}

func TestSubmitRejectedWhenGatewayNotReady(t *testing.T) {
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-1", SnapToken: "tok"}}
	o := newTestOrchestrator(t, &fakeGateway{ready: false}, placer, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.SetDeliveryDetails(DeliveryDetails{AddressID: 1})
	assert.NoError(t, o.GoToDetails())

	// delivery selalu lewat gateway, jadi gateway mati memblok submit
	assert.ErrorIs(t, o.Submit(context.Background()), ErrGatewayNotReady)
	assert.Equal(t, 0, placer.calls)
	assert.Equal(t, StepDetails, o.Step())
}

func TestSubmitCODSkipsGatewayReadiness(t *testing.T) {
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-1"}}
	var finalized []SubmissionResult
	o := New(NewCart(), &fakeValidator{}, &fakeGateway{ready: false}, placer, NewMemoryDraftRepository(), Options{
		OnFinalize: func(r SubmissionResult) { finalized = append(finalized, r) },
	})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	assert.NoError(t, o.SetOrderType(OrderTypeTakeaway))
	o.SetTakeawayDetails(TakeawayDetails{BranchID: 1, PaymentMethod: PaymentCODMethod})
	assert.NoError(t, o.GoToDetails())

	assert.NoError(t, o.Submit(context.Background()))

	assert.Equal(t, 1, placer.calls)
	assert.Equal(t, PaymentCODMethod, placer.lastReq.PaymentMethod)
	result := o.Result()
	assert.NotNil(t, result)
	assert.Equal(t, OutcomeCOD, result.Outcome)
	assert.Equal(t, "TKM-1", result.OrderID)
	assert.Len(t, finalized, 1)
	// keranjang dikosongkan setelah order dibuat
	assert.Empty(t, o.Summary().Items)
}

func TestSubmitDeliveryForcesGatewayMethod(t *testing.T) {
	gateway := &fakeGateway{ready: true}
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-2", SnapToken: "snap-tok"}}
	o := newTestOrchestrator(t, gateway, placer, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.SetDeliveryDetails(DeliveryDetails{AddressID: 1})
	assert.NoError(t, o.GoToDetails())

	assert.NoError(t, o.Submit(context.Background()))

	assert.Equal(t, PaymentGatewayMethod, placer.lastReq.PaymentMethod)
	assert.NotNil(t, placer.lastReq.Delivery)
	assert.Equal(t, 1, gateway.payCalls)
	assert.Equal(t, StepConfirmation, o.Step())
	// belum ada sinyal dari gateway, belum ada hasil
	assert.Nil(t, o.Result())
}

func TestGatewayOutcomeSuccess(t *testing.T) {
	gateway := &fakeGateway{ready: true}
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-3", SnapToken: "tok"}}
	o := newTestOrchestrator(t, gateway, placer, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.SetDeliveryDetails(DeliveryDetails{AddressID: 1})
	assert.NoError(t, o.GoToDetails())
	assert.NoError(t, o.Submit(context.Background()))

	cb := gateway.callbacks()
	cb.OnSuccess()

	result := o.Result()
	assert.NotNil(t, result)
	assert.Equal(t, OutcomeSuccess, result.Outcome)

	// sinyal kedua diabaikan, hasil pertama yang menang
	cb.OnError("late failure")
	assert.Equal(t, OutcomeSuccess, o.Result().Outcome)
}

func TestGatewayOutcomeError(t *testing.T) {
	gateway := &fakeGateway{ready: true}
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-4", SnapToken: "tok"}}
	o := newTestOrchestrator(t, gateway, placer, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.SetDeliveryDetails(DeliveryDetails{AddressID: 1})
	assert.NoError(t, o.GoToDetails())
	assert.NoError(t, o.Submit(context.Background()))

	gateway.callbacks().OnError("card declined")

	result := o.Result()
	assert.NotNil(t, result)
	assert.Equal(t, OutcomeError, result.Outcome)
	assert.Equal(t, "card declined", result.Message)
}

func TestGatewayCloseWithoutOutcomeIsPending(t *testing.T) {
	gateway := &fakeGateway{ready: true}
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-5", SnapToken: "tok"}}
	o := newTestOrchestrator(t, gateway, placer, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.SetDeliveryDetails(DeliveryDetails{AddressID: 1})
	assert.NoError(t, o.GoToDetails())
	assert.NoError(t, o.Submit(context.Background()))

	gateway.callbacks().OnClose()

	result := o.Result()
	assert.NotNil(t, result)
	assert.Equal(t, OutcomePending, result.Outcome)
}

func TestSubmitWithUnusableTokenFallsBackToPending(t *testing.T) {
	// order dibuat tapi token gagal diterbitkan: checkout tetap selesai
	gateway := &fakeGateway{ready: true}
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-6", SnapToken: ""}}
	o := newTestOrchestrator(t, gateway, placer, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.SetDeliveryDetails(DeliveryDetails{AddressID: 1})
	assert.NoError(t, o.GoToDetails())

	assert.NoError(t, o.Submit(context.Background()))

	assert.Equal(t, 0, gateway.payCalls)
	result := o.Result()
	assert.NotNil(t, result)
	assert.Equal(t, OutcomePending, result.Outcome)
	assert.Equal(t, "TKM-6", result.OrderID)
}

func TestSubmitFailureReturnsToDetails(t *testing.T) {
	placer := &fakePlacer{err: errors.New("api down")}
	o := newTestOrchestrator(t, &fakeGateway{ready: true}, placer, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.SetDeliveryDetails(DeliveryDetails{AddressID: 1})
	assert.NoError(t, o.GoToDetails())

	err := o.Submit(context.Background())
	assert.EqualError(t, err, "api down")
	assert.Equal(t, StepDetails, o.Step())
	assert.Nil(t, o.Result())

	// retry setelah API pulih
	placer.err = nil
	placer.result = &OrderResult{OrderID: "TKM-7", SnapToken: "tok"}
	assert.NoError(t, o.Submit(context.Background()))
	assert.Equal(t, StepConfirmation, o.Step())
}

func TestReSubmitDuringSubmittingIsRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	placer := &slowPlacer{release: release, started: started, result: &OrderResult{OrderID: "TKM-8"}}
	o := New(NewCart(), &fakeValidator{}, &fakeGateway{ready: false}, placer, NewMemoryDraftRepository(), Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	assert.NoError(t, o.SetOrderType(OrderTypeTakeaway))
	o.SetTakeawayDetails(TakeawayDetails{BranchID: 1, PaymentMethod: PaymentCODMethod})
	assert.NoError(t, o.GoToDetails())

	done := make(chan error, 1)
	go func() { done <- o.Submit(context.Background()) }()

	<-started
	assert.Equal(t, StepSubmitting, o.Step())
	assert.ErrorIs(t, o.Submit(context.Background()), ErrSubmissionInFlight)

	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, 1, placer.calls)
}

// slowPlacer memblokir PlaceOrder sampai channel release ditutup
type slowPlacer struct {
	release <-chan struct{}
	started chan<- struct{}
	result  *OrderResult
	calls   int
}

func (p *slowPlacer) PlaceOrder(_ context.Context, _ *OrderRequest) (*OrderResult, error) {
	p.calls++
	p.started <- struct{}{}
	<-p.release
	return p.result, nil
}

func TestConfirmationTimeoutRevertsToReview(t *testing.T) {
	gateway := &fakeGateway{ready: true}
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-9", SnapToken: "tok"}}
	o := newTestOrchestrator(t, gateway, placer, Options{ConfirmTimeout: 30 * time.Millisecond})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.SetDeliveryDetails(DeliveryDetails{AddressID: 1})
	assert.NoError(t, o.GoToDetails())
	assert.NoError(t, o.Submit(context.Background()))
	assert.Equal(t, StepConfirmation, o.Step())

	// tidak ada sinyal dari gateway sama sekali
	assert.Eventually(t, func() bool {
		return o.Step() == StepReview
	}, time.Second, 10*time.Millisecond)
	assert.Nil(t, o.Result())
}

func TestConfirmationTimerStoppedByOutcome(t *testing.T) {
	gateway := &fakeGateway{ready: true}
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-10", SnapToken: "tok"}}
	o := newTestOrchestrator(t, gateway, placer, Options{ConfirmTimeout: 30 * time.Millisecond})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.SetDeliveryDetails(DeliveryDetails{AddressID: 1})
	assert.NoError(t, o.GoToDetails())
	assert.NoError(t, o.Submit(context.Background()))

	gateway.callbacks().OnSuccess()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, StepConfirmation, o.Step())
	assert.Equal(t, OutcomeSuccess, o.Result().Outcome)
}

func TestDraftSavedAndRestored(t *testing.T) {
	drafts := NewMemoryDraftRepository()
	o := New(NewCart(), &fakeValidator{discount: 10000}, &fakeGateway{ready: true}, &fakePlacer{}, drafts, Options{})

	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	assert.NoError(t, o.SetOrderType(OrderTypeTakeaway))
	o.SetTakeawayDetails(TakeawayDetails{BranchID: 2, PaymentMethod: PaymentCODMethod})
	assert.NoError(t, o.GoToDetails())

	// sesi baru dengan repository yang sama melanjutkan dari draft
	restored := New(NewCart(), &fakeValidator{discount: 10000}, &fakeGateway{ready: true}, &fakePlacer{}, drafts, Options{})
	assert.Equal(t, StepDetails, restored.Step())
	assert.Equal(t, OrderTypeTakeaway, restored.OrderType())
	assert.Equal(t, int64(45000), restored.Summary().Subtotal)
}

func TestDraftPromoNotRestoredAsApplied(t *testing.T) {
	drafts := NewMemoryDraftRepository()
	o := New(NewCart(), &fakeValidator{discount: 10000}, &fakeGateway{ready: true}, &fakePlacer{}, drafts, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	_, err := o.ApplyPromo(context.Background(), "HEMAT")
	assert.NoError(t, err)

	restored := New(NewCart(), &fakeValidator{discount: 10000}, &fakeGateway{ready: true}, &fakePlacer{}, drafts, Options{})
	assert.Nil(t, restored.AppliedPromo())
	assert.Equal(t, int64(0), restored.Summary().Discount)
}

func TestDraftClearedAfterSubmit(t *testing.T) {
	drafts := NewMemoryDraftRepository()
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-11"}}
	o := New(NewCart(), &fakeValidator{}, &fakeGateway{ready: false}, placer, drafts, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	assert.NoError(t, o.SetOrderType(OrderTypeTakeaway))
	o.SetTakeawayDetails(TakeawayDetails{BranchID: 1, PaymentMethod: PaymentCODMethod})
	assert.NoError(t, o.GoToDetails())
	assert.NoError(t, o.Submit(context.Background()))

	draft, err := drafts.Load()
	assert.NoError(t, err)
	assert.Nil(t, draft)
}

func TestOrderTypeOverrideAppliedOnRestore(t *testing.T) {
	drafts := NewMemoryDraftRepository()
	o := New(NewCart(), &fakeValidator{}, &fakeGateway{ready: true}, &fakePlacer{}, drafts, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})

	restored := New(NewCart(), &fakeValidator{}, &fakeGateway{ready: true}, &fakePlacer{}, drafts, Options{
		OrderTypeOverride: OrderTypeTakeaway,
	})
	assert.Equal(t, OrderTypeTakeaway, restored.OrderType())
}

func TestScheduledDeliveryInFutureIsAccepted(t *testing.T) {
	placer := &fakePlacer{result: &OrderResult{OrderID: "TKM-12", SnapToken: "tok"}}
	o := newTestOrchestrator(t, &fakeGateway{ready: true}, placer, Options{})
	o.AddItem(CartItem{Name: "Shoyu Ramen", Price: 45000})
	o.SetDeliveryDetails(DeliveryDetails{
		AddressID:    1,
		ScheduleType: ScheduleScheduled,
		ScheduledAt:  futureTime(2 * time.Hour),
	})
	assert.NoError(t, o.GoToDetails())
	assert.NoError(t, o.Submit(context.Background()))
	assert.Equal(t, 1, placer.calls)
	assert.Equal(t, ScheduleScheduled, placer.lastReq.Delivery.ScheduleType)
}
