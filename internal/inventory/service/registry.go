package service

import (
	"context"
	"fmt"
	"strconv"

	apperrors "resort/pkg/errors"
	"resort/pkg/model"
)

// Registry is the read side of the inventory used by the booking ledger.
// Errors are AppErrors; a missing object is NOT_FOUND.
type Registry interface {
	Exists(ctx context.Context, target model.Target) (bool, error)
	Get(ctx context.Context, target model.Target) (model.InventoryObject, error)
	EffectiveCapacity(ctx context.Context, target model.Target) (int, error)
	// ListCandidates returns objects of the type with effective capacity of
	// at least minCapacity, ordered by id.
	ListCandidates(ctx context.Context, objectType model.ObjectType, minCapacity int) ([]model.InventoryObject, error)
	Titles(ctx context.Context, targets []model.Target) (map[model.Target]string, error)
}

func (s *inventoryService) Exists(ctx context.Context, target model.Target) (bool, error) {
	if !target.Valid() {
		return false, nil
	}

	var (
		ok  bool
		err error
	)
	switch target.Type {
	case model.ObjectTypeRoom:
		ok, err = s.rooms.Exists(ctx, target.ID)
	case model.ObjectTypeCabin:
		ok, err = s.cabins.Exists(ctx, target.ID)
	}
	if err != nil {
		s.cfg.Log.FromContext(ctx).Error("Failed to check inventory object", "target", target.Key(), "error", err)
		return false, apperrors.Internal("Failed to check "+resourceName(target.Type), err)
	}
	return ok, nil
}

func (s *inventoryService) Get(ctx context.Context, target model.Target) (model.InventoryObject, error) {
	notFound := apperrors.NotFoundWithID(resourceName(target.Type), strconv.FormatInt(target.ID, 10))
	if !target.Valid() {
		return model.InventoryObject{}, notFound
	}

	switch target.Type {
	case model.ObjectTypeRoom:
		room, err := s.rooms.FindByID(ctx, target.ID)
		if err != nil {
			return model.InventoryObject{}, s.mapRepoError(ctx, err, target, "Failed to retrieve room")
		}
		return room.Object(), nil
	default:
		cabin, err := s.cabins.FindByID(ctx, target.ID)
		if err != nil {
			return model.InventoryObject{}, s.mapRepoError(ctx, err, target, "Failed to retrieve cabin")
		}
		return cabin.Object(), nil
	}
}

func (s *inventoryService) EffectiveCapacity(ctx context.Context, target model.Target) (int, error) {
	obj, err := s.Get(ctx, target)
	if err != nil {
		return 0, err
	}
	return obj.Capacity, nil
}

func (s *inventoryService) ListCandidates(ctx context.Context, objectType model.ObjectType, minCapacity int) ([]model.InventoryObject, error) {
	var objects []model.InventoryObject

	switch objectType {
	case model.ObjectTypeRoom:
		rooms, err := s.rooms.FindByMinCapacity(ctx, minCapacity)
		if err != nil {
			s.cfg.Log.FromContext(ctx).Error("Failed to list candidate rooms", "min_capacity", minCapacity, "error", err)
			return nil, apperrors.Internal("Failed to search rooms", err)
		}
		objects = make([]model.InventoryObject, 0, len(rooms))
		for _, r := range rooms {
			objects = append(objects, r.Object())
		}
	case model.ObjectTypeCabin:
		cabins, err := s.cabins.FindByMinCapacity(ctx, minCapacity)
		if err != nil {
			s.cfg.Log.FromContext(ctx).Error("Failed to list candidate cabins", "min_capacity", minCapacity, "error", err)
			return nil, apperrors.Internal("Failed to search cabins", err)
		}
		objects = make([]model.InventoryObject, 0, len(cabins))
		for _, c := range cabins {
			objects = append(objects, c.Object())
		}
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown object type %q", objectType))
	}

	return objects, nil
}

func (s *inventoryService) Titles(ctx context.Context, targets []model.Target) (map[model.Target]string, error) {
	var roomIDs, cabinIDs []int64
	for _, t := range targets {
		switch t.Type {
		case model.ObjectTypeRoom:
			roomIDs = append(roomIDs, t.ID)
		case model.ObjectTypeCabin:
			cabinIDs = append(cabinIDs, t.ID)
		}
	}

	out := make(map[model.Target]string, len(targets))

	roomTitles, err := s.rooms.Titles(ctx, roomIDs)
	if err != nil {
		return nil, apperrors.Internal("Failed to load room titles", err)
	}
	for id, title := range roomTitles {
		out[model.RoomTarget(id)] = title
	}

	cabinTitles, err := s.cabins.Titles(ctx, cabinIDs)
	if err != nil {
		return nil, apperrors.Internal("Failed to load cabin titles", err)
	}
	for id, title := range cabinTitles {
		out[model.CabinTarget(id)] = title
	}

	return out, nil
}
