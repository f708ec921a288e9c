package service

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	bookingserrors "resort/internal/bookings/errors"
	"resort/internal/bookings/validator"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	apperrors "resort/pkg/errors"
	"resort/pkg/keylock"
	"resort/pkg/logger"
	"resort/pkg/model"
)

// ──────────────── fakes ────────────────

type memoryRepo struct {
	mu       sync.Mutex
	bookings map[int64]*model.Booking
	lastID   int64

	// casHook runs before CompareAndSetStatus applies and may mutate state.
	casHook func(b *model.Booking)
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{bookings: make(map[int64]*model.Booking)}
}

func clone(b *model.Booking) *model.Booking {
	c := *b
	if b.UserID != nil {
		id := *b.UserID
		c.UserID = &id
	}
	return &c
}

func (r *memoryRepo) NextID(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	return r.lastID, nil
}

func (r *memoryRepo) Insert(_ context.Context, b *model.Booking) error {
	if err := b.CheckTarget(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = clone(b)
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id int64) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return clone(b), nil
}

func (r *memoryRepo) HasOverlap(_ context.Context, target model.Target, dr model.DateRange) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Target() == target && b.Status.IsActive() && b.Range().Overlaps(dr) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) OverlappingObjectIDs(_ context.Context, objectType model.ObjectType, dr model.DateRange) (map[int64]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	busy := map[int64]struct{}{}
	for _, b := range r.bookings {
		if b.ObjectType == objectType && b.Status.IsActive() && b.Range().Overlaps(dr) {
			busy[b.ObjectID] = struct{}{}
		}
	}
	return busy, nil
}

func (r *memoryRepo) CompareAndSetStatus(_ context.Context, id int64, from, to model.BookingStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if r.casHook != nil {
		hook := r.casHook
		r.casHook = nil
		hook(b)
	}
	if b.Status != from {
		return bookingserrors.ErrStatusChanged
	}
	b.Status = to
	b.UpdatedAt = at
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return bookingserrors.ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *memoryRepo) sorted(match func(*model.Booking) bool) []*model.Booking {
	out := []*model.Booking{}
	for _, b := range r.bookings {
		if match(b) {
			out = append(out, clone(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *memoryRepo) FindForUser(_ context.Context, userID int64, email string) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(b *model.Booking) bool {
		return (b.UserID != nil && *b.UserID == userID) || (b.UserID == nil && b.Email == email)
	}), nil
}

func (r *memoryRepo) FindAll(_ context.Context, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(func(*model.Booking) bool { return true })
	if offset >= int64(len(all)) {
		return []*model.Booking{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memoryRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.bookings)), nil
}

func (r *memoryRepo) HasBookings(_ context.Context, target model.Target) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Target() == target {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) DetachUser(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.UserID != nil && *b.UserID == userID {
			b.UserID = nil
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) all() []*model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(*model.Booking) bool { return true })
}

type countingClaims struct {
	mu     sync.Mutex
	claims map[string]int
}

func (c *countingClaims) Claim(_ context.Context, target model.Target) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.claims == nil {
		c.claims = map[string]int{}
	}
	c.claims[target.Key()]++
	return nil
}

type memoryRegistry struct {
	objects map[model.Target]model.InventoryObject
}

func newRegistry(objects ...model.InventoryObject) *memoryRegistry {
	r := &memoryRegistry{objects: map[model.Target]model.InventoryObject{}}
	for _, o := range objects {
		r.objects[o.Target] = o
	}
	return r
}

func room(id int64, capacity int) model.InventoryObject {
	return model.InventoryObject{Target: model.RoomTarget(id), Title: "Room " + string(rune('A'+id-1)), Capacity: capacity, Beds: capacity}
}

func cabin(id int64, capacity int) model.InventoryObject {
	return model.InventoryObject{Target: model.CabinTarget(id), Title: "Cabin " + string(rune('A'+id-1)), Capacity: capacity, Beds: capacity}
}

func (r *memoryRegistry) Exists(_ context.Context, t model.Target) (bool, error) {
	_, ok := r.objects[t]
	return ok, nil
}

func (r *memoryRegistry) Get(_ context.Context, t model.Target) (model.InventoryObject, error) {
	o, ok := r.objects[t]
	if !ok {
		return model.InventoryObject{}, apperrors.NotFound(resourceName(t.Type))
	}
	return o, nil
}

func (r *memoryRegistry) EffectiveCapacity(ctx context.Context, t model.Target) (int, error) {
	o, err := r.Get(ctx, t)
	return o.Capacity, err
}

func (r *memoryRegistry) ListCandidates(_ context.Context, objectType model.ObjectType, minCapacity int) ([]model.InventoryObject, error) {
	out := []model.InventoryObject{}
	for _, o := range r.objects {
		if o.Type == objectType && o.Capacity >= minCapacity {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRegistry) Titles(_ context.Context, targets []model.Target) (map[model.Target]string, error) {
	out := map[model.Target]string{}
	for _, t := range targets {
		if o, ok := r.objects[t]; ok {
			out[t] = o.Title
		}
	}
	return out, nil
}

type passthroughTx struct{}

func (passthroughTx) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e model.BookingEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []model.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.BookingEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// ──────────────── harness ────────────────

type harness struct {
	svc       *bookingService
	repo      *memoryRepo
	claims    *countingClaims
	publisher *recordingPublisher
	cfg       *config.Config
}

func newHarness(objects ...model.InventoryObject) *harness {
	if len(objects) == 0 {
		objects = []model.InventoryObject{room(1, 2), room(2, 4), cabin(1, 6)}
	}
	h := &harness{
		repo:      newMemoryRepo(),
		claims:    &countingClaims{},
		publisher: &recordingPublisher{},
		cfg:       &config.Config{Log: logger.Discard()},
	}
	svc := NewBookingService(
		h.repo,
		h.claims,
		newRegistry(objects...),
		keylock.New(),
		passthroughTx{},
		h.publisher,
		validator.NewBookingValidator(logger.Discard()),
		h.cfg,
	).(*bookingService)

	var mu sync.Mutex
	clock := time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}
	h.svc = svc
	return h
}

var (
	client  = model.Actor{UserID: 10, Email: "client@example.com", Role: model.RoleClient}
	other   = model.Actor{UserID: 11, Email: "other@example.com", Role: model.RoleClient}
	admin   = model.Actor{UserID: 1, Email: "admin@example.com", Role: model.RoleAdmin}
	baseDay = time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
)

func day(n int) time.Time {
	return baseDay.AddDate(0, 0, n)
}

func request(t model.Target, from, to int) *model.BookingRequest {
	return &model.BookingRequest{
		ObjectType: string(t.Type),
		ObjectID:   t.ID,
		StartDate:  day(from),
		EndDate:    day(to),
		Guests:     2,
		LastName:   "Petrov",
		FirstName:  "Ivan",
		Phone:      "+79161234567",
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperrors.HasCode(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}

// ──────────────── CreateBooking ────────────────

func TestCreate_Success(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	b, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 3), client)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if b.ID <= 0 || b.CreatedAt.IsZero() {
		t.Errorf("expected generated id and created_at, got %d / %v", b.ID, b.CreatedAt)
	}
	if b.Status != model.BookingStatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if b.Email != client.Email {
		t.Errorf("email = %q, want the actor's email", b.Email)
	}
	if b.UserID == nil || *b.UserID != client.UserID {
		t.Errorf("user_id = %v, want %d", b.UserID, client.UserID)
	}
	if err := b.CheckTarget(); err != nil {
		t.Errorf("stored target inconsistent: %v", err)
	}
	if b.RoomID == nil || b.CabinID != nil {
		t.Errorf("room booking must set only room_id")
	}
	if b.ObjectTitle != "Room A" {
		t.Errorf("object_title = %q", b.ObjectTitle)
	}
	if h.claims.claims["room:1"] != 1 {
		t.Errorf("expected one claim on room:1, got %v", h.claims.claims)
	}
	if got := h.publisher.types(); len(got) != 1 || got[0] != model.BookingEventCreated {
		t.Errorf("events = %v", got)
	}
}

func TestCreate_InvalidRange(t *testing.T) {
	h := newHarness()

	for _, tc := range []struct{ from, to int }{{3, 3}, {5, 2}} {
		_, err := h.svc.Create(context.Background(), request(model.RoomTarget(1), tc.from, tc.to), client)
		assertCode(t, err, apperrors.CodeInvalidRange)
	}
	if n := len(h.repo.all()); n != 0 {
		t.Errorf("%d bookings stored after invalid ranges", n)
	}
}

func TestCreate_UnknownObject(t *testing.T) {
	h := newHarness()

	_, err := h.svc.Create(context.Background(), request(model.RoomTarget(99), 1, 2), client)
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = h.svc.Create(context.Background(), request(model.CabinTarget(2), 1, 2), client)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestCreate_ValidationError(t *testing.T) {
	h := newHarness()
	req := request(model.RoomTarget(1), 1, 2)
	req.Phone = "not a phone"

	_, err := h.svc.Create(context.Background(), req, client)
	assertCode(t, err, apperrors.CodeValidation)
}

func TestCreate_NormalizesContact(t *testing.T) {
	h := newHarness()
	req := request(model.RoomTarget(1), 1, 2)
	req.Phone = "8 (916) 123-45-67"
	req.LastName = "  Petrov  "
	req.ObjectType = " Room "

	b, err := h.svc.Create(context.Background(), req, client)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if b.Phone != "+79161234567" || b.LastName != "Petrov" {
		t.Errorf("contact not normalized: %q %q", b.Phone, b.LastName)
	}
}

func TestCreate_Overlap(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		wantErr  bool
	}{
		{"identical", 1, 5, true},
		{"inside", 2, 3, true},
		{"covering", 0, 6, true},
		{"overlapping start", 0, 2, true},
		{"overlapping end", 4, 7, true},
		{"ends at start", 0, 1, false},
		{"starts at end", 5, 8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			ctx := context.Background()
			if _, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 5), client); err != nil {
				t.Fatalf("seed booking: %v", err)
			}

			_, err := h.svc.Create(ctx, request(model.RoomTarget(1), tt.from, tt.to), other)
			if tt.wantErr {
				assertCode(t, err, apperrors.CodeConflict)
				if n := len(h.repo.all()); n != 1 {
					t.Errorf("conflicting booking was stored (%d bookings)", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
		})
	}
}

func TestCreate_CancelledDoesNotBlock(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	first, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 5), client)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.TransitionStatus(ctx, first.ID, &model.BookingStatusUpdate{Status: "cancelled"}, admin); err != nil {
		t.Fatal(err)
	}

	if _, err := h.svc.Create(ctx, request(model.RoomTarget(1), 2, 4), other); err != nil {
		t.Fatalf("cancelled booking still blocks: %v", err)
	}
}

func TestCreate_RoomAndCabinWithSameIDAreIndependent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	if _, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 5), client); err != nil {
		t.Fatal(err)
	}
	b, err := h.svc.Create(ctx, request(model.CabinTarget(1), 1, 5), client)
	if err != nil {
		t.Fatalf("cabin 1 blocked by room 1: %v", err)
	}
	if b.CabinID == nil || b.RoomID != nil {
		t.Errorf("cabin booking must set only cabin_id")
	}
}

func TestCreate_Capacity(t *testing.T) {
	h := newHarness()
	req := request(model.RoomTarget(1), 1, 2)
	req.Guests = 5 // room 1 holds 2

	if _, err := h.svc.Create(context.Background(), req, client); err != nil {
		t.Fatalf("capacity is not enforced by default, got %v", err)
	}

	h = newHarness()
	h.cfg.EnforceBookingCapacity = true
	_, err := h.svc.Create(context.Background(), request(model.RoomTarget(1), 1, 2), client)
	if err != nil {
		t.Fatalf("within capacity: %v", err)
	}
	req = request(model.RoomTarget(1), 3, 4)
	req.Guests = 5
	_, err = h.svc.Create(context.Background(), req, client)
	assertCode(t, err, apperrors.CodeValidation)
}

func TestCreate_DefaultsGuestsToOne(t *testing.T) {
	h := newHarness()
	req := request(model.RoomTarget(1), 1, 2)
	req.Guests = 0

	b, err := h.svc.Create(context.Background(), req, client)
	if err != nil {
		t.Fatal(err)
	}
	if b.Guests != 1 {
		t.Errorf("guests = %d, want 1", b.Guests)
	}
}

func TestCreate_ConcurrentSameObject(t *testing.T) {
	h := newHarness()
	const n = 32

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := h.svc.Create(context.Background(), request(model.RoomTarget(2), 10, 14), client)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperrors.HasCode(err, apperrors.CodeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 || conflicts != n-1 {
		t.Errorf("successes = %d, conflicts = %d; want 1 and %d", successes, conflicts, n-1)
	}
}

func TestCreate_ConcurrentDifferentObjects(t *testing.T) {
	h := newHarness(room(1, 2), room(2, 2), room(3, 2), cabin(1, 2), cabin(2, 2))
	targets := []model.Target{
		model.RoomTarget(1), model.RoomTarget(2), model.RoomTarget(3),
		model.CabinTarget(1), model.CabinTarget(2),
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(targets))
	for _, target := range targets {
		wg.Add(1)
		go func(target model.Target) {
			defer wg.Done()
			_, err := h.svc.Create(context.Background(), request(target, 1, 3), client)
			errs <- err
		}(target)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("independent object blocked: %v", err)
		}
	}
}

// For any sequence of creates and cancels, active bookings on one object
// never intersect.
func TestCreate_OverlapInvariantHolds(t *testing.T) {
	rng := rand.New(rand.NewSource(20260701))
	targets := []model.Target{model.RoomTarget(1), model.RoomTarget(2), model.CabinTarget(1)}

	for round := 0; round < 20; round++ {
		h := newHarness()
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 60; i++ {
			target := targets[rng.Intn(len(targets))]
			from := rng.Intn(30)
			to := from + 1 + rng.Intn(6)
			cancel := rng.Intn(4) == 0

			wg.Add(1)
			go func() {
				defer wg.Done()
				b, err := h.svc.Create(ctx, request(target, from, to), client)
				if err != nil {
					if !apperrors.HasCode(err, apperrors.CodeConflict) {
						t.Errorf("unexpected error: %v", err)
					}
					return
				}
				if cancel {
					if _, err := h.svc.TransitionStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: "cancelled"}, admin); err != nil {
						t.Errorf("cancel: %v", err)
					}
				}
			}()
		}
		wg.Wait()

		active := map[model.Target][]*model.Booking{}
		for _, b := range h.repo.all() {
			if b.Status.IsActive() {
				active[b.Target()] = append(active[b.Target()], b)
			}
		}
		for target, list := range active {
			for i := range list {
				for j := i + 1; j < len(list); j++ {
					if list[i].Range().Overlaps(list[j].Range()) {
						t.Fatalf("round %d: %s has overlapping active bookings %d and %d", round, target, list[i].ID, list[j].ID)
					}
				}
			}
		}
	}
}

// Run sequentially, every rejection must be explained by an active booking
// it overlaps, and every acceptance must overlap none.
func TestCreate_ConflictsMatchActiveBookings(t *testing.T) {
	rng := rand.New(rand.NewSource(20260702))
	targets := []model.Target{model.RoomTarget(1), model.RoomTarget(2), model.CabinTarget(1)}
	h := newHarness()
	ctx := context.Background()

	active := map[model.Target][]model.DateRange{}
	overlapsActive := func(target model.Target, dr model.DateRange) bool {
		for _, existing := range active[target] {
			if existing.Overlaps(dr) {
				return true
			}
		}
		return false
	}

	var accepted, rejected int
	for i := 0; i < 400; i++ {
		target := targets[rng.Intn(len(targets))]
		from := rng.Intn(60)
		to := from + 1 + rng.Intn(6)
		dr, err := model.NewDateRange(day(from), day(to))
		if err != nil {
			t.Fatal(err)
		}

		b, err := h.svc.Create(ctx, request(target, from, to), client)
		if err != nil {
			assertCode(t, err, apperrors.CodeConflict)
			if !overlapsActive(target, dr) {
				t.Fatalf("%s [%d,%d) rejected without an overlapping active booking", target.Key(), from, to)
			}
			rejected++
			continue
		}
		if overlapsActive(target, dr) {
			t.Fatalf("%s [%d,%d) accepted over an active booking", target.Key(), from, to)
		}
		accepted++

		if rng.Intn(4) == 0 {
			if _, err := h.svc.TransitionStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: "cancelled"}, admin); err != nil {
				t.Fatalf("cancel: %v", err)
			}
			continue
		}
		active[target] = append(active[target], b.Range())
	}

	if accepted == 0 || rejected == 0 {
		t.Fatalf("accepted = %d, rejected = %d; the run should exercise both outcomes", accepted, rejected)
	}
}

type panickingTx struct{}

func (panickingTx) ExecuteTransaction(context.Context, mongotx.TransactionFunc) error {
	panic("driver failure")
}

func TestCreate_PanicReleasesObjectLock(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.svc.txManager = panickingTx{}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the panic to reach the caller")
			}
		}()
		_, _ = h.svc.Create(ctx, request(model.RoomTarget(1), 1, 3), client)
	}()

	if n := h.svc.locks.Len(); n != 0 {
		t.Fatalf("%d object locks still held after panic", n)
	}

	h.svc.txManager = passthroughTx{}
	if _, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 3), client); err != nil {
		t.Fatalf("Create() after panic error = %v", err)
	}
}

func TestCreate_LockWaitEndsWithContext(t *testing.T) {
	h := newHarness()
	unlock := h.svc.locks.Lock(model.RoomTarget(1).Key())
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 3), client)
	assertCode(t, err, apperrors.CodeTimeout)
	if n := len(h.repo.all()); n != 0 {
		t.Errorf("stored %d bookings after timing out", n)
	}
}

// ──────────────── SearchAvailable ────────────────

func search(objectType string, from, to int, guests ...model.GuestGroup) *model.SearchRequest {
	if len(guests) == 0 {
		guests = []model.GuestGroup{{Adults: 1}}
	}
	return &model.SearchRequest{ObjectType: objectType, CheckIn: day(from), CheckOut: day(to), Guests: guests}
}

func ids(objects []model.InventoryObject) []int64 {
	out := make([]int64, len(objects))
	for i, o := range objects {
		out[i] = o.ID
	}
	return out
}

func TestSearchAvailable(t *testing.T) {
	h := newHarness(room(1, 2), room(2, 4), room(3, 4), cabin(1, 6))
	ctx := context.Background()

	if _, err := h.svc.Create(ctx, request(model.RoomTarget(2), 5, 8), client); err != nil {
		t.Fatal(err)
	}

	got, err := h.svc.SearchAvailable(ctx, search("room", 6, 7))
	if err != nil {
		t.Fatalf("SearchAvailable() error = %v", err)
	}
	if want := []int64{1, 3}; !equalIDs(ids(got), want) {
		t.Errorf("available rooms = %v, want %v", ids(got), want)
	}

	// adults and children across groups count toward capacity
	got, err = h.svc.SearchAvailable(ctx, search("room", 6, 7, model.GuestGroup{Adults: 2}, model.GuestGroup{Adults: 1, Children: 1}))
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{3}; !equalIDs(ids(got), want) {
		t.Errorf("rooms for 4 guests = %v, want %v", ids(got), want)
	}

	// touching ranges do not block
	got, err = h.svc.SearchAvailable(ctx, search("room", 8, 10))
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{1, 2, 3}; !equalIDs(ids(got), want) {
		t.Errorf("rooms after checkout = %v, want %v", ids(got), want)
	}

	// a room booking never hides a cabin
	got, err = h.svc.SearchAvailable(ctx, search("cabin", 5, 8))
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{1}; !equalIDs(ids(got), want) {
		t.Errorf("cabins = %v, want %v", ids(got), want)
	}
}

func TestSearchAvailable_MatchesCreate(t *testing.T) {
	h := newHarness(room(1, 2), room(2, 2), room(3, 2))
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 15; i++ {
		from := rng.Intn(20)
		_, _ = h.svc.Create(ctx, request(model.RoomTarget(int64(1+rng.Intn(3))), from, from+1+rng.Intn(4)), client)
	}

	for i := 0; i < 30; i++ {
		from := rng.Intn(20)
		to := from + 1 + rng.Intn(4)
		available, err := h.svc.SearchAvailable(ctx, search("room", from, to))
		if err != nil {
			t.Fatal(err)
		}
		free := map[int64]bool{}
		for _, o := range available {
			free[o.ID] = true
		}
		for id := int64(1); id <= 3; id++ {
			overlap, _ := h.repo.HasOverlap(ctx, model.RoomTarget(id), model.DateRange{Start: day(from), End: day(to)})
			if free[id] == overlap {
				t.Fatalf("room %d [%d,%d): search says free=%v, ledger overlap=%v", id, from, to, free[id], overlap)
			}
		}
	}
}

func TestSearchAvailable_CancelFreesSlot(t *testing.T) {
	h := newHarness(room(1, 2))
	ctx := context.Background()

	b, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 3), client)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := h.svc.SearchAvailable(ctx, search("room", 1, 3))
	if len(got) != 0 {
		t.Fatalf("booked room listed as available")
	}

	if _, err := h.svc.TransitionStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: "cancelled"}, admin); err != nil {
		t.Fatal(err)
	}
	got, _ = h.svc.SearchAvailable(ctx, search("room", 1, 3))
	if len(got) != 1 {
		t.Errorf("cancelled booking still hides the room")
	}
}

func TestSearchAvailable_Errors(t *testing.T) {
	h := newHarness()

	_, err := h.svc.SearchAvailable(context.Background(), search("room", 4, 4))
	assertCode(t, err, apperrors.CodeInvalidRange)

	_, err = h.svc.SearchAvailable(context.Background(), search("room", 1, 2, model.GuestGroup{}))
	assertCode(t, err, apperrors.CodeValidation)

	_, err = h.svc.SearchAvailable(context.Background(), search("villa", 1, 2))
	assertCode(t, err, apperrors.CodeValidation)
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ──────────────── TransitionStatus ────────────────

func TestTransitionStatus(t *testing.T) {
	tests := []struct {
		name     string
		path     []string
		next     string
		wantCode string
	}{
		{"pending to confirmed", nil, "confirmed", ""},
		{"pending to cancelled", nil, "cancelled", ""},
		{"confirmed to cancelled", []string{"confirmed"}, "cancelled", ""},
		{"pending no-op", nil, "pending", ""},
		{"confirmed no-op", []string{"confirmed"}, "confirmed", ""},
		{"cancelled to cancelled", []string{"cancelled"}, "cancelled", apperrors.CodeInvalidTransition},
		{"confirmed to pending", []string{"confirmed"}, "pending", apperrors.CodeInvalidTransition},
		{"cancelled to pending", []string{"cancelled"}, "pending", apperrors.CodeInvalidTransition},
		{"cancelled to confirmed", []string{"cancelled"}, "confirmed", apperrors.CodeInvalidTransition},
		{"unknown status", nil, "archived", apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			ctx := context.Background()
			b, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 2), client)
			if err != nil {
				t.Fatal(err)
			}
			for _, step := range tt.path {
				if _, err := h.svc.TransitionStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: step}, admin); err != nil {
					t.Fatalf("setup transition to %s: %v", step, err)
				}
			}
			before, _ := h.repo.FindByID(ctx, b.ID)
			eventsBefore := len(h.publisher.types())

			got, err := h.svc.TransitionStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: tt.next}, admin)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				after, _ := h.repo.FindByID(ctx, b.ID)
				if after.Status != before.Status {
					t.Errorf("rejected transition changed status to %s", after.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("TransitionStatus() error = %v", err)
			}
			if string(got.Status) != tt.next {
				t.Errorf("status = %s, want %s", got.Status, tt.next)
			}
			if got.ObjectTitle == "" {
				t.Error("expected object title on returned booking")
			}

			newEvents := len(h.publisher.types()) - eventsBefore
			if before.Status == got.Status {
				if newEvents != 0 {
					t.Errorf("no-op transition published %d events", newEvents)
				}
				after, _ := h.repo.FindByID(ctx, b.ID)
				if !after.UpdatedAt.Equal(before.UpdatedAt) {
					t.Error("no-op transition wrote to the store")
				}
			} else if newEvents != 1 {
				t.Errorf("transition published %d events, want 1", newEvents)
			}
		})
	}
}

func TestTransitionStatus_NotFound(t *testing.T) {
	h := newHarness()
	_, err := h.svc.TransitionStatus(context.Background(), 404, &model.BookingStatusUpdate{Status: "confirmed"}, admin)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestTransitionStatus_ReevaluatesAfterConcurrentChange(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	b, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 2), client)
	if err != nil {
		t.Fatal(err)
	}

	// another admin cancels between our read and our write
	h.repo.casHook = func(stored *model.Booking) { stored.Status = model.BookingStatusCancelled }

	_, err = h.svc.TransitionStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: "confirmed"}, admin)
	assertCode(t, err, apperrors.CodeInvalidTransition)

	stored, _ := h.repo.FindByID(ctx, b.ID)
	if stored.Status != model.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", stored.Status)
	}
}

func TestTransitionStatus_RetrySucceeds(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	b, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 2), client)
	if err != nil {
		t.Fatal(err)
	}

	// a concurrent confirm lands first; cancelling from confirmed is still legal
	h.repo.casHook = func(stored *model.Booking) { stored.Status = model.BookingStatusConfirmed }

	got, err := h.svc.TransitionStatus(ctx, b.ID, &model.BookingStatusUpdate{Status: "cancelled"}, admin)
	if err != nil {
		t.Fatalf("TransitionStatus() error = %v", err)
	}
	if got.Status != model.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	last := h.publisher.events[len(h.publisher.events)-1]
	if last.PreviousStatus != model.BookingStatusConfirmed {
		t.Errorf("event previous status = %s, want confirmed", last.PreviousStatus)
	}
}

// ──────────────── DeleteBooking ────────────────

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		actor    model.Actor
		id       int64
		wantCode string
	}{
		{"owner", client, 1, ""},
		{"admin", admin, 1, ""},
		{"other client", other, 1, apperrors.CodeForbidden},
		{"missing", admin, 99, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			ctx := context.Background()
			if _, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 2), client); err != nil {
				t.Fatal(err)
			}

			err := h.svc.Delete(ctx, tt.id, tt.actor)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				if len(h.repo.all()) != 1 {
					t.Error("booking removed despite error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if len(h.repo.all()) != 0 {
				t.Error("booking still stored")
			}
			types := h.publisher.types()
			if types[len(types)-1] != model.BookingEventDeleted {
				t.Errorf("events = %v", types)
			}
		})
	}
}

func TestDelete_DetachedBookingNeedsAdmin(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	b, err := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 2), client)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.svc.DetachOwner(ctx, client.UserID); err != nil {
		t.Fatal(err)
	}

	assertCode(t, h.svc.Delete(ctx, b.ID, client), apperrors.CodeForbidden)
	if err := h.svc.Delete(ctx, b.ID, admin); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

// ──────────────── listings ────────────────

func TestListForUser(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	first, _ := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 2), client)
	second, _ := h.svc.Create(ctx, request(model.CabinTarget(1), 3, 4), client)
	if _, err := h.svc.Create(ctx, request(model.RoomTarget(2), 1, 2), other); err != nil {
		t.Fatal(err)
	}

	got, err := h.svc.ListForUser(ctx, client)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != second.ID || got[1].ID != first.ID {
		t.Fatalf("ListForUser() = %v, want newest first [%d %d]", got, second.ID, first.ID)
	}
	if got[0].ObjectTitle != "Cabin A" || got[1].ObjectTitle != "Room A" {
		t.Errorf("titles = %q, %q", got[0].ObjectTitle, got[1].ObjectTitle)
	}
}

func TestListForUser_EmailFallbackAfterDetach(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	b, _ := h.svc.Create(ctx, request(model.RoomTarget(1), 1, 2), client)
	if err := h.svc.DetachOwner(ctx, client.UserID); err != nil {
		t.Fatal(err)
	}

	// a new account registered with the same email sees the old booking
	reborn := model.Actor{UserID: 77, Email: client.Email, Role: model.RoleClient}
	got, err := h.svc.ListForUser(ctx, reborn)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != b.ID || got[0].UserID != nil {
		t.Fatalf("ListForUser() = %+v, want the detached booking", got)
	}

	got, _ = h.svc.ListForUser(ctx, other)
	if len(got) != 0 {
		t.Errorf("other user sees %d bookings", len(got))
	}
}

func TestListAll(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := h.svc.Create(ctx, request(model.RoomTarget(2), i*2, i*2+1), client); err != nil {
			t.Fatal(err)
		}
	}

	page, total, err := h.svc.ListAll(ctx, 2, 1)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Fatalf("ListAll() = %d items, total %d", len(page), total)
	}
	if page[0].ID != 4 || page[1].ID != 3 {
		t.Errorf("page ids = %d, %d; want 4, 3", page[0].ID, page[1].ID)
	}
}

func TestDetachOwner(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, _ = h.svc.Create(ctx, request(model.RoomTarget(1), 1, 2), client)
	_, _ = h.svc.Create(ctx, request(model.RoomTarget(1), 3, 4), other)

	if err := h.svc.DetachOwner(ctx, client.UserID); err != nil {
		t.Fatal(err)
	}
	for _, b := range h.repo.all() {
		if b.Email == client.Email && b.UserID != nil {
			t.Error("client booking still owned")
		}
		if b.Email == other.Email && (b.UserID == nil || *b.UserID != other.UserID) {
			t.Error("other user's booking was detached")
		}
	}
}

func TestMapRepoError(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	assertCode(t, h.svc.mapRepoError(ctx, bookingserrors.ErrNotFound, 1, "x"), apperrors.CodeNotFound)
	assertCode(t, h.svc.mapRepoError(ctx, apperrors.Conflict("c"), 1, "x"), apperrors.CodeConflict)
	err := h.svc.mapRepoError(ctx, errors.New("socket closed"), 1, "x")
	assertCode(t, err, apperrors.CodeInternal)
}
