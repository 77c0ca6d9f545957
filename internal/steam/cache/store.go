package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/robalyx/steamfriends/internal/storage"
	"go.uber.org/zap"
)

const (
	// Namespace groups every friend record under one directory-like prefix.
	Namespace = "SteamFriends"
	// KeyPrefix precedes the owner ID in each record key.
	KeyPrefix = "friendInfo"
)

// RecordKey returns the storage key for ownerID's record.
func RecordKey(ownerID string) string {
	return Namespace + "/" + KeyPrefix + "_" + ownerID
}

// RecordStore persists friend records through a storage backend.
type RecordStore struct {
	backend storage.Backend
	logger  *zap.Logger
}

// NewRecordStore wraps backend with the record codec.
func NewRecordStore(backend storage.Backend, logger *zap.Logger) *RecordStore {
	return &RecordStore{
		backend: backend,
		logger:  logger.Named("record_store"),
	}
}

// Read loads the persisted record for ownerID. Missing, unreadable and
// corrupt records are all reported as absent.
func (s *RecordStore) Read(ctx context.Context, ownerID string) (*Record, bool) {
	data, err := s.backend.Get(ctx, RecordKey(ownerID))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to read friend record",
				zap.String("steamID", ownerID),
				zap.Error(err))
		}
		return nil, false
	}

	var record Record
	if err := sonic.Unmarshal(data, &record); err != nil {
		s.logger.Warn("Ignoring corrupt friend record",
			zap.String("steamID", ownerID),
			zap.Error(err))
		return nil, false
	}

	if record.OwnerID == "" || record.OwnerID != ownerID {
		s.logger.Warn("Ignoring friend record with mismatched owner",
			zap.String("steamID", ownerID),
			zap.String("storedOwnerID", record.OwnerID))
		return nil, false
	}

	if record.Friends == nil {
		record.Friends = []string{}
	}

	return &record, true
}

// Write overwrites the persisted record for record.OwnerID.
func (s *RecordStore) Write(ctx context.Context, record *Record) error {
	if record == nil || record.OwnerID == "" {
		return fmt.Errorf("%w: record has no owner", storage.ErrInvalidKey)
	}

	data, err := sonic.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode friend record: %w", err)
	}

	if err := s.backend.Put(ctx, RecordKey(record.OwnerID), data); err != nil {
		return fmt.Errorf("failed to write friend record: %w", err)
	}

	return nil
}
