package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const FileName = "kalashree_cart.json"

type Store interface {
	Load() (*Cart, error)
	Save(c *Cart) error
}

// FileStore keeps the cart as a JSON array of items in a single file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// DefaultDir is the per-user config directory the CLI keeps its cart in.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}

	return filepath.Join(base, "kalashree"), nil
}

func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:   filepath.Join(dir, FileName),
		logger: logger,
	}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns an empty cart when the file is missing or unreadable as JSON.
// Lines that break the quantity rules are repaired with a warning.
func (s *FileStore) Load() (*Cart, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("Cart file is corrupt, starting with an empty cart",
			zap.String("path", s.path),
			zap.Error(err),
		)

		return New(), nil
	}

	items, fixed := sanitize(items)
	if fixed > 0 {
		s.logger.Warn("Cart file had invalid lines, repaired them",
			zap.String("path", s.path),
			zap.Int("lines", fixed),
		)
	}

	return New(items...), nil
}

// sanitize restores 1 <= quantity <= stock on loaded lines. Lines that cannot
// hold a unit, or repeat a product, are dropped. It returns the kept lines and
// how many were changed or removed.
func sanitize(items []Item) ([]Item, int) {
	kept := make([]Item, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	fixed := 0

	for _, item := range items {
		if _, dup := seen[item.ProductID]; dup || item.ProductID == uuid.Nil || item.Quantity < 1 || item.Stock < 1 {
			fixed++
			continue
		}
		seen[item.ProductID] = struct{}{}

		if item.Quantity > item.Stock {
			item.Quantity = item.Stock
			fixed++
		}
		kept = append(kept, item)
	}

	return kept, fixed
}

// Save writes to a temp file in the same directory and renames it over the
// old cart, so a crash never leaves a half-written file behind.
func (s *FileStore) Save(c *Cart) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create cart dir: %w", err)
	}

	items := c.Items
	if items == nil {
		items = []Item{}
	}

	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cart-*.json")
	if err != nil {
		return fmt.Errorf("create temp cart: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp cart: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp cart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cart: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace cart: %w", err)
	}

	return nil
}
