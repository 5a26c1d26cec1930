package usecase

import (
	"context"
	"errors"
	"sync"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/provider"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

// In-memory repository fakes. Each one implements the corresponding
// repository interface over a map, with the same nil-on-missing contract as
// the mongo implementations.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id string, role entity.UserRole) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return errors.New("user not found")
	}
	user.Role = role
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session // keyed by token
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*entity.Session{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *session
	f.sessions[session.Token] = &clone
	return nil
}

func (f *fakeSessionRepo) FindByToken(_ context.Context, token string) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[token]
	if !ok {
		return nil, nil
	}
	clone := *session
	return &clone, nil
}

func (f *fakeSessionRepo) DeleteByToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

type fakeCategoryRepo struct {
	categories []*entity.Category
}

func (f *fakeCategoryRepo) FindAll(_ context.Context) ([]*entity.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryRepo) SeedDefaults(_ context.Context) error {
	if len(f.categories) > 0 {
		return nil
	}
	for _, name := range entity.DefaultCategories {
		f.categories = append(f.categories, &entity.Category{ID: utils.GenerateID(), Name: name})
	}
	return nil
}

type fakeEventRepo struct {
	mu      sync.Mutex
	events  map[string]*entity.Event
	findErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: map[string]*entity.Event{}}
}

func (f *fakeEventRepo) Create(_ context.Context, event *entity.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *event
	f.events[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) FindByID(_ context.Context, id string) (*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	event, ok := f.events[id]
	if !ok {
		return nil, nil
	}
	clone := *event
	return &clone, nil
}

func (f *fakeEventRepo) FindActive(_ context.Context, category, search string) ([]*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Event
	for _, event := range f.events {
		if !event.Active() {
			continue
		}
		if category != "" && event.Category != category {
			continue
		}
		clone := *event
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeEventRepo) FindByCreator(_ context.Context, creatorID string) ([]*entity.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Event
	for _, event := range f.events {
		if event.CreatorID == creatorID {
			clone := *event
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(_ context.Context, event *entity.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *event
	f.events[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) UpdateStatus(_ context.Context, id string, status entity.EventStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return errors.New("event not found")
	}
	event.Status = status
	return nil
}

type fakeTierRepo struct {
	mu      sync.Mutex
	tiers   map[string]*entity.TicketTier
	findErr error
}

func newFakeTierRepo() *fakeTierRepo {
	return &fakeTierRepo{tiers: map[string]*entity.TicketTier{}}
}

func (f *fakeTierRepo) Create(_ context.Context, tier *entity.TicketTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *tier
	f.tiers[tier.ID] = &clone
	return nil
}

func (f *fakeTierRepo) FindByID(_ context.Context, id string) (*entity.TicketTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	tier, ok := f.tiers[id]
	if !ok {
		return nil, nil
	}
	clone := *tier
	return &clone, nil
}

func (f *fakeTierRepo) FindByEventID(_ context.Context, eventID string) ([]*entity.TicketTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.TicketTier
	for _, tier := range f.tiers {
		if tier.EventID == eventID {
			clone := *tier
			out = append(out, &clone)
		}
	}
	return out, nil
}

// TryIncrementSold mirrors the store's conditional update: check and
// increment under one lock.
func (f *fakeTierRepo) TryIncrementSold(_ context.Context, id string, quantity int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tier, ok := f.tiers[id]
	if !ok {
		return false, nil
	}
	if tier.QuantitySold+quantity > tier.QuantityAvailable {
		return false, nil
	}
	tier.QuantitySold += quantity
	return true, nil
}

func (f *fakeTierRepo) DecrementSold(_ context.Context, id string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tier, ok := f.tiers[id]
	if !ok {
		return errors.New("tier not found")
	}
	tier.QuantitySold -= quantity
	return nil
}

func (f *fakeTierRepo) sold(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tiers[id].QuantitySold
}

type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[string]*entity.Booking
	createErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*entity.Booking{}}
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	clone := *booking
	f.bookings[booking.ID] = &clone
	return nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	clone := *booking
	return &clone, nil
}

func (f *fakeBookingRepo) FindByUserID(_ context.Context, userID string) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			clone := *booking
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) SetPaymentSession(_ context.Context, id, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return errors.New("booking not found")
	}
	booking.PaymentSessionID = &sessionID
	return nil
}

func (f *fakeBookingRepo) Confirm(_ context.Context, id, redemptionToken string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok || booking.Status != entity.BookingStatusPending {
		return false, nil
	}
	booking.Status = entity.BookingStatusConfirmed
	booking.RedemptionToken = &redemptionToken
	return true, nil
}

type fakePaymentSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.PaymentSession
}

func newFakePaymentSessionRepo() *fakePaymentSessionRepo {
	return &fakePaymentSessionRepo{sessions: map[string]*entity.PaymentSession{}}
}

func (f *fakePaymentSessionRepo) Create(_ context.Context, session *entity.PaymentSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *session
	f.sessions[session.ID] = &clone
	return nil
}

func (f *fakePaymentSessionRepo) FindBySessionID(_ context.Context, sessionID string) (*entity.PaymentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	clone := *session
	return &clone, nil
}

func (f *fakePaymentSessionRepo) UpdateStatus(_ context.Context, sessionID string, paymentStatus entity.PaymentStatus, state entity.SessionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return errors.New("payment session not found")
	}
	session.PaymentStatus = paymentStatus
	session.Status = state
	return nil
}

func (f *fakeBookingRepo) snapshot() map[string]entity.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[string]entity.Booking, len(f.bookings))
	for id, booking := range f.bookings {
		snap[id] = *booking
	}
	return snap
}

func (f *fakeBookingRepo) restore(snap map[string]entity.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings = make(map[string]*entity.Booking, len(snap))
	for id := range snap {
		clone := snap[id]
		f.bookings[id] = &clone
	}
}

func (f *fakeTierRepo) snapshot() map[string]entity.TicketTier {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := make(map[string]entity.TicketTier, len(f.tiers))
	for id, tier := range f.tiers {
		snap[id] = *tier
	}
	return snap
}

func (f *fakeTierRepo) restore(snap map[string]entity.TicketTier) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tiers = make(map[string]*entity.TicketTier, len(snap))
	for id := range snap {
		clone := snap[id]
		f.tiers[id] = &clone
	}
}

// fakeTx runs the function directly; the fakes above are already atomic per
// operation, which is enough for these tests.
type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// rollbackTx mimics a store transaction over the booking and tier fakes:
// writes made inside a failed function are undone.
type rollbackTx struct {
	bookings *fakeBookingRepo
	tiers    *fakeTierRepo
}

func (t *rollbackTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	bookingSnap := t.bookings.snapshot()
	tierSnap := t.tiers.snapshot()
	if err := fn(ctx); err != nil {
		t.bookings.restore(bookingSnap)
		t.tiers.restore(tierSnap)
		return err
	}
	return nil
}

// fakePayment is a scriptable payment provider.
type fakePayment struct {
	mu           sync.Mutex
	statuses     map[string]*provider.CheckoutStatus
	statusCalls  int
	checkoutErr  error
	sessionSeq   int
	lastCheckout *provider.CheckoutRequest
}

func newFakePayment() *fakePayment {
	return &fakePayment{statuses: map[string]*provider.CheckoutStatus{}}
}

func (f *fakePayment) CreateCheckoutSession(_ context.Context, req *provider.CheckoutRequest) (*provider.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	f.sessionSeq++
	f.lastCheckout = req
	id := "cs_test_" + string(rune('a'+f.sessionSeq-1))
	return &provider.CheckoutSession{
		SessionID:   id,
		RedirectURL: "https://checkout.example.com/" + id,
	}, nil
}

func (f *fakePayment) GetCheckoutStatus(_ context.Context, sessionID string) (*provider.CheckoutStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	status, ok := f.statuses[sessionID]
	if !ok {
		return &provider.CheckoutStatus{
			PaymentStatus: entity.PaymentStatusPending,
			State:         entity.SessionStateInitiated,
		}, nil
	}
	return status, nil
}

func (f *fakePayment) VerifyWebhook(payload []byte, _ string) (*provider.WebhookResult, error) {
	return &provider.WebhookResult{
		SessionID: string(payload),
		EventType: "checkout.session.completed",
	}, nil
}

func (f *fakePayment) setPaid(sessionID string, amount float64, currency string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[sessionID] = &provider.CheckoutStatus{
		PaymentStatus: entity.PaymentStatusPaid,
		State:         entity.SessionStateCompleted,
		Amount:        amount,
		Currency:      currency,
	}
}

// fakeIdentity resolves every session id to the scripted result.
type fakeIdentity struct {
	result *provider.IdentityResult
	err    error
}

func (f *fakeIdentity) Exchange(_ context.Context, _ string) (*provider.IdentityResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	clone := *f.result
	return &clone, nil
}

func newTestRepository() (*repository.Repository, *fakeUserRepo, *fakeEventRepo, *fakeTierRepo, *fakeBookingRepo, *fakePaymentSessionRepo) {
	users := newFakeUserRepo()
	events := newFakeEventRepo()
	tiers := newFakeTierRepo()
	bookings := newFakeBookingRepo()
	payments := newFakePaymentSessionRepo()

	repo := &repository.Repository{
		User:           users,
		Session:        newFakeSessionRepo(),
		Category:       &fakeCategoryRepo{},
		Event:          events,
		Tier:           tiers,
		Booking:        bookings,
		PaymentSession: payments,
	}
	return repo, users, events, tiers, bookings, payments
}

func testConfig() *utils.Config {
	return &utils.Config{
		Session: utils.SessionConfig{ExpiryDays: 7},
		Payment: utils.PaymentConfig{Currency: "usd"},
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
