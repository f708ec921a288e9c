package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	bookingserrors "resort/internal/bookings/errors"
	"resort/internal/bookings/events"
	"resort/internal/bookings/repository"
	"resort/internal/bookings/validator"
	inventory "resort/internal/inventory/service"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	apperrors "resort/pkg/errors"
	"resort/pkg/keylock"
	"resort/pkg/model"
	"resort/pkg/sanitizer"
	"resort/pkg/validation"
)

// maxStatusAttempts bounds re-reads when a status compare-and-set loses a race.
const maxStatusAttempts = 3

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest, actor model.Actor) (*model.Booking, error)
	SearchAvailable(ctx context.Context, req *model.SearchRequest) ([]model.InventoryObject, error)
	TransitionStatus(ctx context.Context, id int64, update *model.BookingStatusUpdate, actor model.Actor) (*model.Booking, error)
	Delete(ctx context.Context, id int64, actor model.Actor) error
	ListForUser(ctx context.Context, actor model.Actor) ([]*model.Booking, error)
	ListAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	// DetachOwner clears the owner of a deleted user's bookings. Called inside
	// the user deletion transaction.
	DetachOwner(ctx context.Context, userID int64) error
}

type bookingService struct {
	repo      repository.BookingRepository
	claims    repository.ClaimRepository
	registry  inventory.Registry
	locks     *keylock.KeyedMutex
	txManager mongotx.TransactionManager
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	claims repository.ClaimRepository,
	registry inventory.Registry,
	locks *keylock.KeyedMutex,
	txManager mongotx.TransactionManager,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		claims:    claims,
		registry:  registry,
		locks:     locks,
		txManager: txManager,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest, actor model.Actor) (*model.Booking, error) {
	log := s.cfg.Log.FromContext(ctx)

	sanitizeRequest(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, s.validationError(ctx, err, "Booking validation failed")
	}

	dr, err := model.NewDateRange(req.StartDate, req.EndDate)
	if err != nil {
		log.Warn("Booking rejected: invalid range", "start_date", req.StartDate, "end_date", req.EndDate)
		return nil, apperrors.InvalidRange("start_date must be before end_date")
	}
	dr = dr.UTC()

	objectType, err := model.ParseObjectType(req.ObjectType)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	target := model.Target{Type: objectType, ID: req.ObjectID}
	guests := max(req.Guests, 1)

	object, err := s.registry.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	if s.cfg.EnforceBookingCapacity {
		if err := s.validator.ValidateCapacity(guests, object.Capacity); err != nil {
			return nil, s.validationError(ctx, err, "Booking exceeds capacity")
		}
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		log.Error("Failed to allocate booking id", "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	ownerID := actor.UserID
	booking := &model.Booking{
		ID:            id,
		UserID:        &ownerID,
		LastName:      req.LastName,
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		Phone:         req.Phone,
		Email:         actor.Email,
		Citizenship:   req.Citizenship,
		Guests:        guests,
		Comments:      req.Comments,
		PaymentMethod: req.PaymentMethod,
		Status:        model.BookingStatusPending,
		StartDate:     dr.Start,
		EndDate:       dr.End,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	booking.SetTarget(target)

	err = s.withObjectLock(ctx, target, func() error {
		return s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			return s.insertIfFree(txCtx, booking, dr)
		})
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			log.Warn("Booking rejected", "target", target.Key(), "start_date", dr.Start, "end_date", dr.End, "error", err)
			return nil, err
		}
		log.Error("Failed to create booking", "target", target.Key(), "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	booking.ObjectTitle = object.Title
	s.publisher.Publish(ctx, model.NewBookingEvent(model.BookingEventCreated, booking, "", &ownerID, now))

	log.Info("Booking created successfully",
		"id", booking.ID,
		"target", target.Key(),
		"start_date", booking.StartDate,
		"end_date", booking.EndDate,
		"user_id", actor.UserID,
	)
	return booking, nil
}

// withObjectLock runs fn holding the in-process lock for target. Waiting
// ends with the request context.
func (s *bookingService) withObjectLock(ctx context.Context, target model.Target, fn func() error) error {
	unlock, err := s.locks.LockContext(ctx, target.Key())
	if err != nil {
		return apperrors.Timeout("Timed out waiting for " + string(target.Type) + " " + strconv.FormatInt(target.ID, 10))
	}
	defer unlock()
	return fn()
}

// insertIfFree is the check-and-insert. It runs under the object's claim so
// no other writer can change the object's bookings until it commits. It may
// run more than once when the transaction is retried.
func (s *bookingService) insertIfFree(ctx context.Context, booking *model.Booking, dr model.DateRange) error {
	target := booking.Target()

	if err := s.claims.Claim(ctx, target); err != nil {
		return err
	}

	exists, err := s.registry.Exists(ctx, target)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NotFoundWithID(resourceName(target.Type), strconv.FormatInt(target.ID, 10))
	}

	overlap, err := s.repo.HasOverlap(ctx, target, dr)
	if err != nil {
		return err
	}
	if overlap {
		return apperrors.Conflict("The selected dates are already booked for this " + string(target.Type))
	}

	return s.repo.Insert(ctx, booking)
}

func (s *bookingService) SearchAvailable(ctx context.Context, req *model.SearchRequest) ([]model.InventoryObject, error) {
	log := s.cfg.Log.FromContext(ctx)

	if err := s.validator.ValidateSearch(req); err != nil {
		return nil, s.validationError(ctx, err, "Search validation failed")
	}
	dr, err := model.NewDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, apperrors.InvalidRange("check_in must be before check_out")
	}
	dr = dr.UTC()

	objectType, err := model.ParseObjectType(req.ObjectType)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	guests := req.TotalGuests()

	candidates, err := s.registry.ListCandidates(ctx, objectType, guests)
	if err != nil {
		return nil, err
	}

	busy, err := s.repo.OverlappingObjectIDs(ctx, objectType, dr)
	if err != nil {
		log.Error("Failed to load booked objects", "object_type", objectType, "error", err)
		return nil, apperrors.Internal("Failed to search availability", err)
	}

	available := make([]model.InventoryObject, 0, len(candidates))
	for _, c := range candidates {
		if _, booked := busy[c.ID]; !booked {
			available = append(available, c)
		}
	}

	log.Debug("Availability search completed",
		"object_type", objectType,
		"guests", guests,
		"candidates", len(candidates),
		"available", len(available),
	)
	return available, nil
}

func (s *bookingService) TransitionStatus(ctx context.Context, id int64, update *model.BookingStatusUpdate, actor model.Actor) (*model.Booking, error) {
	log := s.cfg.Log.FromContext(ctx)

	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		return nil, s.validationError(ctx, err, "Status validation failed")
	}
	next := model.BookingStatus(update.Status)

	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		booking, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, s.mapRepoError(ctx, err, id, "Failed to retrieve booking")
		}

		previous := booking.Status
		if !previous.CanTransitionTo(next) {
			log.Warn("Status transition rejected", "id", id, "from", previous, "to", next)
			return nil, apperrors.InvalidTransition(string(previous), string(next))
		}
		if previous == next {
			return s.withTitle(ctx, booking)
		}

		now := s.now().UTC().Truncate(time.Millisecond)
		err = s.repo.CompareAndSetStatus(ctx, id, previous, next, now)
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			log.Debug("Booking status changed concurrently, re-reading", "id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, s.mapRepoError(ctx, err, id, "Failed to update booking status")
		}

		booking.Status = next
		booking.UpdatedAt = now

		actorID := actor.UserID
		s.publisher.Publish(ctx, model.NewBookingEvent(model.BookingEventStatusChanged, booking, previous, &actorID, now))
		log.Info("Booking status updated", "id", id, "from", previous, "to", next, "actor_id", actor.UserID)

		return s.withTitle(ctx, booking)
	}

	log.Warn("Giving up on status update after concurrent changes", "id", id, "attempts", maxStatusAttempts)
	return nil, apperrors.Conflict("Booking was modified concurrently, please retry")
}

func (s *bookingService) Delete(ctx context.Context, id int64, actor model.Actor) error {
	log := s.cfg.Log.FromContext(ctx)

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(ctx, err, id, "Failed to retrieve booking")
	}
	if !actor.CanManage(booking.UserID) {
		log.Warn("Booking delete forbidden", "id", id, "actor_id", actor.UserID)
		return apperrors.Forbidden("Not enough permissions to delete this booking")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(ctx, err, id, "Failed to delete booking")
	}

	actorID := actor.UserID
	s.publisher.Publish(ctx, model.NewBookingEvent(model.BookingEventDeleted, booking, booking.Status, &actorID, s.now().UTC()))
	log.Info("Booking deleted successfully", "id", id, "actor_id", actor.UserID)
	return nil
}

func (s *bookingService) ListForUser(ctx context.Context, actor model.Actor) ([]*model.Booking, error) {
	bookings, err := s.repo.FindForUser(ctx, actor.UserID, actor.Email)
	if err != nil {
		s.cfg.Log.FromContext(ctx).Error("Failed to list user bookings", "user_id", actor.UserID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	if err := s.attachTitles(ctx, bookings...); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *bookingService) ListAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	log := s.cfg.Log.FromContext(ctx)

	var (
		count             int64
		bookings          []*model.Booking
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
	}()
	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
	}()
	wg.Wait()

	if errCount != nil {
		log.Error("Failed to count bookings", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count bookings", errCount)
	}
	if errFind != nil {
		log.Error("Failed to list bookings", "limit", limit, "offset", offset, "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", errFind)
	}
	if err := s.attachTitles(ctx, bookings...); err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

func (s *bookingService) DetachOwner(ctx context.Context, userID int64) error {
	n, err := s.repo.DetachUser(ctx, userID)
	if err != nil {
		s.cfg.Log.FromContext(ctx).Error("Failed to detach bookings", "user_id", userID, "error", err)
		return apperrors.Internal("Failed to detach user bookings", err)
	}
	s.cfg.Log.FromContext(ctx).Info("Detached bookings from deleted user", "user_id", userID, "count", n)
	return nil
}

// --- Helpers ---

func (s *bookingService) withTitle(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	if err := s.attachTitles(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) attachTitles(ctx context.Context, bookings ...*model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	seen := make(map[model.Target]struct{}, len(bookings))
	targets := make([]model.Target, 0, len(bookings))
	for _, b := range bookings {
		t := b.Target()
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			targets = append(targets, t)
		}
	}

	titles, err := s.registry.Titles(ctx, targets)
	if err != nil {
		s.cfg.Log.FromContext(ctx).Error("Failed to load object titles", "error", err)
		return err
	}
	for _, b := range bookings {
		b.ObjectTitle = titles[b.Target()]
	}
	return nil
}

func (s *bookingService) mapRepoError(ctx context.Context, err error, id int64, message string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", strconv.FormatInt(id, 10))
	}
	if apperrors.IsAppError(err) {
		return err
	}
	s.cfg.Log.FromContext(ctx).Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *bookingService) validationError(ctx context.Context, err error, message string) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		s.cfg.Log.FromContext(ctx).Warn(message, "error", err)
		return verrs.AppError(message)
	}
	return apperrors.Internal(message, err)
}

func sanitizeRequest(req *model.BookingRequest) {
	req.ObjectType = sanitizer.NormalizeLabel(req.ObjectType)
	req.LastName = sanitizer.NormalizeName(req.LastName)
	req.FirstName = sanitizer.NormalizeName(req.FirstName)
	req.MiddleName = sanitizer.NormalizeName(req.MiddleName)
	req.Citizenship = sanitizer.NormalizeName(req.Citizenship)
	req.PaymentMethod = sanitizer.NormalizeLabel(req.PaymentMethod)
	req.Comments = sanitizer.NormalizeText(req.Comments)
	if phone := sanitizer.NormalizePhone(req.Phone); phone != "" {
		req.Phone = phone
	}
}

func resourceName(t model.ObjectType) string {
	if t == model.ObjectTypeCabin {
		return "Cabin"
	}
	return "Room"
}
