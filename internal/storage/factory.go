package storage

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/interfaces"
	"github.com/ternarybob/aucsheet/internal/storage/badger"
	"github.com/ternarybob/aucsheet/internal/storage/blobs"
)

// NewStorageManager creates the storage manager: Badger for structured
// records, a filesystem blob store for image bytes.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	blobStore, err := blobs.NewFileStore(config.Storage.Blobs.Path, logger)
	if err != nil {
		return nil, err
	}
	return badger.NewManager(logger, &config.Storage.Badger, blobStore)
}
