package service

import (
	"context"

	"resort/pkg/model"
	"resort/pkg/sanitizer"
)

func (s *inventoryService) CreateRoom(ctx context.Context, room *model.Room) error {
	sanitizeRoom(room)
	if err := s.validator.ValidateRoom(room); err != nil {
		return s.validationError(ctx, err, "Room validation failed")
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return s.mapRepoError(ctx, err, model.RoomTarget(room.ID), "Failed to create room")
	}

	s.cfg.Log.FromContext(ctx).Info("Room created successfully", "id", room.ID, "title", room.Title)
	return nil
}

func (s *inventoryService) GetRoom(ctx context.Context, id int64) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, err, model.RoomTarget(id), "Failed to retrieve room")
	}
	return room, nil
}

func (s *inventoryService) ListRooms(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	return listWithCount(ctx, s, "rooms",
		func(ctx context.Context) ([]*model.Room, error) { return s.rooms.FindAll(ctx, limit, offset) },
		s.rooms.Count,
	)
}

// UpdateRoom replaces every mutable field; id and created_at are kept.
func (s *inventoryService) UpdateRoom(ctx context.Context, id int64, room *model.Room) error {
	existing, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(ctx, err, model.RoomTarget(id), "Failed to retrieve room")
	}

	sanitizeRoom(room)
	if err := s.validator.ValidateRoom(room); err != nil {
		return s.validationError(ctx, err, "Room validation failed")
	}
	room.ID = existing.ID
	room.CreatedAt = existing.CreatedAt

	if err := s.rooms.Update(ctx, room); err != nil {
		return s.mapRepoError(ctx, err, model.RoomTarget(id), "Failed to update room")
	}

	s.cfg.Log.FromContext(ctx).Info("Room updated successfully", "id", id)
	return nil
}

func (s *inventoryService) DeleteRoom(ctx context.Context, id int64) error {
	return s.deleteObject(ctx, model.RoomTarget(id), func(txCtx context.Context) error {
		return s.rooms.Delete(txCtx, id)
	})
}

func sanitizeRoom(r *model.Room) {
	r.Title = sanitizer.NormalizeName(r.Title)
	r.Category = sanitizer.NormalizeLabel(r.Category)
	r.Images = sanitizer.SanitizeSlice(r.Images, sanitizer.SanitizeURL)
}
