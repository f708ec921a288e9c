package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	inventoryerrors "resort/internal/inventory/errors"
	"resort/internal/inventory/repository"
	"resort/internal/inventory/validator"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	apperrors "resort/pkg/errors"
	"resort/pkg/model"
	"resort/pkg/validation"
)

// ReferenceGuard is implemented by the booking ledger. Claim takes the same
// per-object claim that booking creation takes, so a delete and a booking on
// one object never interleave.
type ReferenceGuard interface {
	Claim(ctx context.Context, target model.Target) error
	HasBookings(ctx context.Context, target model.Target) (bool, error)
}

type InventoryService interface {
	Registry

	CreateRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id int64) (*model.Room, error)
	ListRooms(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	UpdateRoom(ctx context.Context, id int64, room *model.Room) error
	DeleteRoom(ctx context.Context, id int64) error

	CreateCabin(ctx context.Context, cabin *model.Cabin) error
	GetCabin(ctx context.Context, id int64) (*model.Cabin, error)
	ListCabins(ctx context.Context, limit int, offset int64) ([]*model.Cabin, int64, error)
	UpdateCabin(ctx context.Context, id int64, cabin *model.Cabin) error
	DeleteCabin(ctx context.Context, id int64) error
}

type inventoryService struct {
	rooms     repository.RoomRepository
	cabins    repository.CabinRepository
	guard     ReferenceGuard
	txManager mongotx.TransactionManager
	validator *validator.InventoryValidator
	cfg       *config.Config
}

func NewInventoryService(
	rooms repository.RoomRepository,
	cabins repository.CabinRepository,
	guard ReferenceGuard,
	txManager mongotx.TransactionManager,
	validator *validator.InventoryValidator,
	cfg *config.Config,
) InventoryService {
	return &inventoryService{
		rooms:     rooms,
		cabins:    cabins,
		guard:     guard,
		txManager: txManager,
		validator: validator,
		cfg:       cfg,
	}
}

// deleteObject removes an object unless a booking references it.
func (s *inventoryService) deleteObject(ctx context.Context, target model.Target, remove func(context.Context) error) error {
	resource := resourceName(target.Type)
	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.guard.Claim(txCtx, target); err != nil {
			return apperrors.Internal("Failed to claim "+resource, err)
		}
		referenced, err := s.guard.HasBookings(txCtx, target)
		if err != nil {
			return apperrors.Internal("Failed to check bookings for "+resource, err)
		}
		if referenced {
			return apperrors.Conflict(resource + " has bookings and cannot be deleted")
		}
		if err := remove(txCtx); err != nil {
			return s.mapRepoError(ctx, err, target, "Failed to delete "+resource)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.FromContext(ctx).Warn("Inventory delete rejected", "target", target.Key(), "error", err)
		return err
	}

	s.cfg.Log.FromContext(ctx).Info("Inventory object deleted", "target", target.Key())
	return nil
}

func (s *inventoryService) mapRepoError(ctx context.Context, err error, target model.Target, message string) error {
	if errors.Is(err, inventoryerrors.ErrNotFound) {
		return apperrors.NotFoundWithID(resourceName(target.Type), strconv.FormatInt(target.ID, 10))
	}
	if apperrors.IsAppError(err) {
		return err
	}
	s.cfg.Log.FromContext(ctx).Error(message, "target", target.Key(), "error", err)
	return apperrors.Internal(message, err)
}

func (s *inventoryService) validationError(ctx context.Context, err error, message string) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		s.cfg.Log.FromContext(ctx).Warn(message, "error", err)
		return verrs.AppError(message)
	}
	return apperrors.Internal(message, err)
}

func resourceName(t model.ObjectType) string {
	if t == model.ObjectTypeCabin {
		return "Cabin"
	}
	return "Room"
}

// listWithCount runs the page query and the total count concurrently.
func listWithCount[T any](
	ctx context.Context,
	s *inventoryService,
	resource string,
	find func(context.Context) ([]T, error),
	count func(context.Context) (int64, error),
) ([]T, int64, error) {
	var (
		items             []T
		total             int64
		errFind, errCount error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		items, errFind = find(ctx)
	}()
	go func() {
		defer wg.Done()
		total, errCount = count(ctx)
	}()
	wg.Wait()

	if errFind != nil {
		s.cfg.Log.FromContext(ctx).Error("Failed to list "+resource, "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve "+resource, errFind)
	}
	if errCount != nil {
		s.cfg.Log.FromContext(ctx).Error("Failed to count "+resource, "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count "+resource, errCount)
	}
	return items, total, nil
}
