package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SheetStorage implements the SheetStorage interface for Badger
type SheetStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSheetStorage creates a new SheetStorage instance
func NewSheetStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SheetStorage {
	return &SheetStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SheetStorage) SaveSheet(ctx context.Context, sheet *models.AuctionSheet) error {
	if sheet.ID == "" {
		return fmt.Errorf("sheet ID is required")
	}

	if err := s.db.Store().Upsert(sheet.ID, sheet); err != nil {
		return fmt.Errorf("failed to save sheet: %w", err)
	}
	return nil
}

func (s *SheetStorage) GetSheet(ctx context.Context, id string) (*models.AuctionSheet, error) {
	var sheet models.AuctionSheet
	if err := s.db.Store().Get(id, &sheet); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	return &sheet, nil
}

func (s *SheetStorage) GetSheetByLotNumber(ctx context.Context, lotNumber string) (*models.AuctionSheet, error) {
	var sheets []models.AuctionSheet
	query := badgerhold.Where("LotNumber").Eq(lotNumber).Limit(1)
	if err := s.db.Store().Find(&sheets, query); err != nil {
		return nil, fmt.Errorf("failed to query sheet by lot number: %w", err)
	}
	if len(sheets) == 0 {
		return nil, nil
	}
	return &sheets[0], nil
}

// UpdateSheet applies the narrow post-creation update surface: auction
// results and operator notes. Extracted fields are immutable.
func (s *SheetStorage) UpdateSheet(ctx context.Context, id string, update *models.SheetUpdate) (*models.AuctionSheet, error) {
	sheet, err := s.GetSheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if sheet == nil {
		return nil, nil
	}

	if update.AuctionStatus != nil {
		sheet.AuctionStatus = *update.AuctionStatus
	}
	if update.FinalPrice != nil {
		sheet.FinalPrice = update.FinalPrice
	}
	if update.BidCount != nil {
		sheet.BidCount = update.BidCount
	}
	if update.WinningBidderLocation != nil {
		sheet.WinningBidderLocation = *update.WinningBidderLocation
	}
	if update.SaleDate != nil {
		sheet.SaleDate = *update.SaleDate
	}
	if update.AdditionalNotes != nil {
		sheet.AdditionalNotes = *update.AdditionalNotes
	}
	sheet.UpdatedAt = time.Now()

	if err := s.db.Store().Update(id, sheet); err != nil {
		return nil, fmt.Errorf("failed to update sheet: %w", err)
	}
	return sheet, nil
}

func (s *SheetStorage) DeleteSheet(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.AuctionSheet{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete sheet: %w", err)
	}
	return nil
}

// SearchSheets filters sheets by make (case-insensitive substring,
// the closest BadgerHold gets to a search index on make) plus exact
// model, status, auction house and minimum grade.
func (s *SheetStorage) SearchSheets(ctx context.Context, filter *interfaces.SheetFilter) ([]*models.AuctionSheet, error) {
	query := badgerhold.Where("ID").Ne("")
	if filter != nil {
		if filter.Make != "" {
			needle := strings.ToLower(filter.Make)
			query = query.And("Make").MatchFunc(func(ra *badgerhold.RecordAccess) (bool, error) {
				value, ok := ra.Field().(string)
				if !ok {
					return false, nil
				}
				return strings.Contains(strings.ToLower(value), needle), nil
			})
		}
		if filter.Model != "" {
			query = query.And("Model").Eq(filter.Model)
		}
		if filter.AuctionStatus != "" {
			query = query.And("AuctionStatus").Eq(filter.AuctionStatus)
		}
		if filter.AuctionHouse != "" {
			query = query.And("AuctionHouseCode").Eq(filter.AuctionHouse)
		}
		if filter.MinGrade != "" {
			query = query.And("OverallGrade").Ge(filter.MinGrade)
		}
	}
	query = query.SortBy("CreatedAt").Reverse()
	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var sheets []models.AuctionSheet
	if err := s.db.Store().Find(&sheets, query); err != nil {
		return nil, fmt.Errorf("failed to search sheets: %w", err)
	}
	return toSheetPointers(sheets), nil
}

func (s *SheetStorage) ListSheets(ctx context.Context, limit int, offset int) ([]*models.AuctionSheet, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if offset > 0 {
		query = query.Skip(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var sheets []models.AuctionSheet
	if err := s.db.Store().Find(&sheets, query); err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	return toSheetPointers(sheets), nil
}

func (s *SheetStorage) CountSheets(ctx context.Context) (int, error) {
	n, err := s.db.Store().Count(&models.AuctionSheet{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count sheets: %w", err)
	}
	return int(n), nil
}

func toSheetPointers(sheets []models.AuctionSheet) []*models.AuctionSheet {
	result := make([]*models.AuctionSheet, len(sheets))
	for i := range sheets {
		result[i] = &sheets[i]
	}
	return result
}
