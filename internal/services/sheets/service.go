package sheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
	"github.com/ternarybob/aucsheet/internal/services/extractor"
)

var (
	// ErrSheetNotFound is returned when an operation names a sheet
	// that does not exist.
	ErrSheetNotFound = errors.New("auction sheet not found")

	// ErrDuplicateLotNumber is returned when a manual entry reuses a
	// lot number that already has a sheet. Manual entry always
	// enforces uniqueness; the AI path is governed by configuration.
	ErrDuplicateLotNumber = errors.New("lot number already exists")
)

// Service owns auction sheet reads, manual entry and the narrow
// post-creation update surface.
type Service struct {
	sheets interfaces.SheetStorage
	images interfaces.ImageStorage
	logger arbor.ILogger
}

// NewService creates the sheet service
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		sheets: storage.SheetStorage(),
		images: storage.ImageStorage(),
		logger: logger,
	}
}

// CreateManualSheet records an operator-entered sheet. The data is
// validated against the same rules as extracted data, and the lot
// number must be new.
func (s *Service) CreateManualSheet(ctx context.Context, data *models.AuctionData) (*models.AuctionSheet, error) {
	if err := extractor.ValidateData(data); err != nil {
		return nil, err
	}

	existing, err := s.sheets.GetSheetByLotNumber(ctx, data.LotNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateLotNumber, data.LotNumber)
	}

	now := time.Now()
	sheet := &models.AuctionSheet{
		ID:           common.NewSheetID(),
		AuctionData:  *data,
		DataSource:   models.DataSourceManualEntry,
		QualityScore: 5,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.sheets.SaveSheet(ctx, sheet); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("sheet_id", sheet.ID).
		Str("lot_number", sheet.LotNumber).
		Msg("Manual auction sheet created")

	return sheet, nil
}

// GetSheet returns a sheet by ID, or ErrSheetNotFound.
func (s *Service) GetSheet(ctx context.Context, id string) (*models.AuctionSheet, error) {
	sheet, err := s.sheets.GetSheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if sheet == nil {
		return nil, ErrSheetNotFound
	}
	return sheet, nil
}

// GetSheetByLotNumber returns a sheet by lot number, or ErrSheetNotFound.
func (s *Service) GetSheetByLotNumber(ctx context.Context, lotNumber string) (*models.AuctionSheet, error) {
	sheet, err := s.sheets.GetSheetByLotNumber(ctx, lotNumber)
	if err != nil {
		return nil, err
	}
	if sheet == nil {
		return nil, ErrSheetNotFound
	}
	return sheet, nil
}

// SearchSheets runs a filtered search, newest first.
func (s *Service) SearchSheets(ctx context.Context, filter *interfaces.SheetFilter) ([]*models.AuctionSheet, error) {
	return s.sheets.SearchSheets(ctx, filter)
}

// ListSheets pages through all sheets, newest first.
func (s *Service) ListSheets(ctx context.Context, limit, offset int) ([]*models.AuctionSheet, error) {
	return s.sheets.ListSheets(ctx, limit, offset)
}

// UpdateSheet applies the auction-result update surface. The new
// auction status is enum-checked before the write.
func (s *Service) UpdateSheet(ctx context.Context, id string, update *models.SheetUpdate) (*models.AuctionSheet, error) {
	if update.AuctionStatus != nil {
		switch *update.AuctionStatus {
		case "upcoming", "sold", "unsold", "cancelled":
		default:
			return nil, fmt.Errorf("invalid auction status: %s", *update.AuctionStatus)
		}
	}

	sheet, err := s.sheets.UpdateSheet(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if sheet == nil {
		return nil, ErrSheetNotFound
	}
	return sheet, nil
}

// GetSheetImages returns the sheet's images in page document order.
func (s *Service) GetSheetImages(ctx context.Context, sheetID string) ([]*models.AuctionImage, error) {
	sheet, err := s.sheets.GetSheet(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if sheet == nil {
		return nil, ErrSheetNotFound
	}
	return s.images.GetImagesBySheet(ctx, sheetID)
}
