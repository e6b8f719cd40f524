package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db     *BadgerDB
	job    interfaces.JobStorage
	sheet  interfaces.SheetStorage
	image  interfaces.ImageStorage
	kv     interfaces.KeyValueStorage
	blobs  interfaces.BlobStore
	logger arbor.ILogger
}

// NewManager creates a new Badger storage manager. The blob store is
// injected because image bytes live on the filesystem, not in Badger.
func NewManager(logger arbor.ILogger, config *common.BadgerConfig, blobs interfaces.BlobStore) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		job:    NewJobStorage(db, logger),
		sheet:  NewSheetStorage(db, logger),
		image:  NewImageStorage(db, logger),
		kv:     NewKVStorage(db, logger),
		blobs:  blobs,
		logger: logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// JobStorage returns the extraction job storage interface
func (m *Manager) JobStorage() interfaces.JobStorage {
	return m.job
}

// SheetStorage returns the auction sheet storage interface
func (m *Manager) SheetStorage() interfaces.SheetStorage {
	return m.sheet
}

// ImageStorage returns the auction image storage interface
func (m *Manager) ImageStorage() interfaces.ImageStorage {
	return m.image
}

// KeyValueStorage returns the KeyValue storage interface
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// BlobStore returns the image blob store
func (m *Manager) BlobStore() interfaces.BlobStore {
	return m.blobs
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
