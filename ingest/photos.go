package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/errors"
)

const keyLayout = "20060102_150405.000000"

// KeyGenerator hands out capture keys that strictly increase within the
// process, even when the clock stalls or steps back.
type KeyGenerator struct {
	mu   sync.Mutex
	last time.Time
}

func (g *KeyGenerator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := now.Truncate(time.Microsecond)
	if !t.After(g.last) {
		t = g.last.Add(time.Microsecond)
	}
	g.last = t
	return t.Format(keyLayout)
}

// PhotoRef is the reference stored on plant and report rows, relative to the
// photo root.
func PhotoRef(plantID uint64, key string) string {
	return fmt.Sprintf("%d/%s.png", plantID, key)
}

// PhotoStore writes device photos under root/{plant_id}/.
type PhotoStore struct {
	root string
}

func NewPhotoStore(root string) *PhotoStore {
	return &PhotoStore{root: root}
}

func (s *PhotoStore) Root() string {
	return s.root
}

func (s *PhotoStore) path(plantID uint64, key string) string {
	return filepath.Join(s.root, filepath.FromSlash(PhotoRef(plantID, key)))
}

// Exists reports whether any of the plants already has a photo under key.
func (s *PhotoStore) Exists(plantIDs []uint64, key string) bool {
	for _, id := range plantIDs {
		if _, err := os.Lstat(s.path(id, key)); err == nil || !os.IsNotExist(err) {
			return true
		}
	}
	return false
}

// Save writes data for plant under key and returns the file path. The plant
// directory is created on first use. The file appears atomically and an
// existing photo is never replaced: Save fails with os.ErrExist instead.
func (s *PhotoStore) Save(plantID uint64, key string, data []byte) (string, error) {
	dir := filepath.Join(s.root, strconv.FormatUint(plantID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Storage(err, "creating photo dir for plant %d", plantID)
	}

	path := s.path(plantID, key)

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", errors.Storage(err, "writing photo for plant %d", plantID)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Storage(err, "writing photo for plant %d", plantID)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Storage(err, "writing photo for plant %d", plantID)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Storage(err, "writing photo for plant %d", plantID)
	}
	// link, unlike rename, fails when the target exists
	err = os.Link(tmp.Name(), path)
	os.Remove(tmp.Name())
	if err != nil {
		return "", errors.Storage(err, "writing photo for plant %d", plantID)
	}
	return path, nil
}

// Remove deletes files written by a request that did not commit.
func (s *PhotoStore) Remove(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger().Warn().Err(err).Str("path", p).Msg("could not remove orphaned photo")
		}
	}
}
