package service

import (
	"context"

	"resort/pkg/model"
	"resort/pkg/sanitizer"
)

func (s *inventoryService) CreateCabin(ctx context.Context, cabin *model.Cabin) error {
	sanitizeCabin(cabin)
	if err := s.validator.ValidateCabin(cabin); err != nil {
		return s.validationError(ctx, err, "Cabin validation failed")
	}

	if err := s.cabins.Create(ctx, cabin); err != nil {
		return s.mapRepoError(ctx, err, model.CabinTarget(cabin.ID), "Failed to create cabin")
	}

	s.cfg.Log.FromContext(ctx).Info("Cabin created successfully", "id", cabin.ID, "title", cabin.Title)
	return nil
}

func (s *inventoryService) GetCabin(ctx context.Context, id int64) (*model.Cabin, error) {
	cabin, err := s.cabins.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, err, model.CabinTarget(id), "Failed to retrieve cabin")
	}
	return cabin, nil
}

func (s *inventoryService) ListCabins(ctx context.Context, limit int, offset int64) ([]*model.Cabin, int64, error) {
	return listWithCount(ctx, s, "cabins",
		func(ctx context.Context) ([]*model.Cabin, error) { return s.cabins.FindAll(ctx, limit, offset) },
		s.cabins.Count,
	)
}

func (s *inventoryService) UpdateCabin(ctx context.Context, id int64, cabin *model.Cabin) error {
	existing, err := s.cabins.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(ctx, err, model.CabinTarget(id), "Failed to retrieve cabin")
	}

	sanitizeCabin(cabin)
	if err := s.validator.ValidateCabin(cabin); err != nil {
		return s.validationError(ctx, err, "Cabin validation failed")
	}
	cabin.ID = existing.ID
	cabin.CreatedAt = existing.CreatedAt

	if err := s.cabins.Update(ctx, cabin); err != nil {
		return s.mapRepoError(ctx, err, model.CabinTarget(id), "Failed to update cabin")
	}

	s.cfg.Log.FromContext(ctx).Info("Cabin updated successfully", "id", id)
	return nil
}

func (s *inventoryService) DeleteCabin(ctx context.Context, id int64) error {
	return s.deleteObject(ctx, model.CabinTarget(id), func(txCtx context.Context) error {
		return s.cabins.Delete(txCtx, id)
	})
}

func sanitizeCabin(c *model.Cabin) {
	c.Title = sanitizer.NormalizeName(c.Title)
	c.Description = sanitizer.NormalizeText(c.Description)
	c.Category = sanitizer.NormalizeLabel(c.Category)
	c.Images = sanitizer.SanitizeSlice(c.Images, sanitizer.SanitizeURL)
}
