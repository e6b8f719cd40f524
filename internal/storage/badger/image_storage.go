package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ImageStorage implements the ImageStorage interface for Badger
type ImageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewImageStorage creates a new ImageStorage instance
func NewImageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ImageStorage {
	return &ImageStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ImageStorage) SaveImage(ctx context.Context, image *models.AuctionImage) error {
	if image.ID == "" {
		return fmt.Errorf("image ID is required")
	}

	if err := s.db.Store().Upsert(image.ID, image); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

func (s *ImageStorage) GetImage(ctx context.Context, id string) (*models.AuctionImage, error) {
	var image models.AuctionImage
	if err := s.db.Store().Get(id, &image); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &image, nil
}

// GetImagesBySheet returns the sheet's images in page document order.
func (s *ImageStorage) GetImagesBySheet(ctx context.Context, sheetID string) ([]*models.AuctionImage, error) {
	var images []models.AuctionImage
	query := badgerhold.Where("SheetID").Eq(sheetID).Index("SheetID").SortBy("Position")
	if err := s.db.Store().Find(&images, query); err != nil {
		return nil, fmt.Errorf("failed to query images by sheet: %w", err)
	}

	result := make([]*models.AuctionImage, len(images))
	for i := range images {
		result[i] = &images[i]
	}
	return result, nil
}

func (s *ImageStorage) DeleteImage(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.AuctionImage{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *ImageStorage) DeleteImagesBySheet(ctx context.Context, sheetID string) error {
	query := badgerhold.Where("SheetID").Eq(sheetID).Index("SheetID")
	if err := s.db.Store().DeleteMatching(&models.AuctionImage{}, query); err != nil {
		return fmt.Errorf("failed to delete images by sheet: %w", err)
	}
	return nil
}

func (s *ImageStorage) CountImages(ctx context.Context) (int, error) {
	n, err := s.db.Store().Count(&models.AuctionImage{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count images: %w", err)
	}
	return int(n), nil
}
