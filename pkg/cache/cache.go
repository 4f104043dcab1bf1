package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/core/model"
)

// ShiftStore is the persistence contract the services depend on. Load never
// fails for a missing or corrupt backing file: that state is simply "no
// data yet" and the caller prompts for a manual fetch.
type ShiftStore interface {
	Load() ([]model.ShiftRecord, error)
	Save(records []model.ShiftRecord) error
}

// Generation is the metadata wrapped around one scraper run. The record set
// is replaced wholesale every refresh, so the ID identifies the whole
// dataset, not individual records.
type Generation struct {
	ID        string    `json:"generation_id"`
	FetchedAt time.Time `json:"fetched_at"`
}

type cacheFile struct {
	Generation
	Shifts []model.ShiftRecord `json:"shifts"`
}

// FileStore persists shift records as a flat JSON file, replaced wholesale
// on every save.
type FileStore struct {
	path   string
	logger *zap.Logger
	gen    Generation
}

// NewFileStore creates a store backed by the given path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the cached record set. A missing file yields an empty slice.
// A corrupt file is logged and also yields an empty slice: stale or broken
// caches must prompt a refresh, never crash a query. Both the
// generation-wrapped layout and the legacy bare-array layout are accepted.
func (s *FileStore) Load() ([]model.ShiftRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read shift cache", zap.String("path", s.path), zap.Error(err))
		}
		return nil, nil
	}

	var wrapped cacheFile
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Shifts != nil {
		s.gen = wrapped.Generation
		return wrapped.Shifts, nil
	}

	var bare []model.ShiftRecord
	if err := json.Unmarshal(data, &bare); err != nil {
		s.logger.Warn("shift cache is corrupt, treating as empty",
			zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}
	s.gen = Generation{}
	return bare, nil
}

// Save atomically replaces the cached record set: the new generation is
// written to a temp file in the same directory and renamed over the old
// one, so a concurrent Load never observes a torn write.
func (s *FileStore) Save(records []model.ShiftRecord) error {
	gen := Generation{ID: uuid.New().String(), FetchedAt: time.Now()}
	data, err := json.MarshalIndent(cacheFile{Generation: gen, Shifts: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode shift cache: %w", err)
	}

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write shift cache: %w", err)
	}

	s.gen = gen
	s.logger.Info("shift cache saved",
		zap.String("generation", gen.ID),
		zap.Int("records", len(records)))
	return nil
}

// Generation returns the metadata of the last loaded or saved dataset. The
// zero value means no generation has been seen yet.
func (s *FileStore) Generation() Generation {
	return s.gen
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
