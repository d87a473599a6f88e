package templates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/bonktools/build-detect/internal/catalog"
	"github.com/bonktools/build-detect/internal/preprocess"
)

var (
	// ErrTemplateNotFound is returned when the catalog has no entry for the
	// requested id. Recoverable: the caller proceeds with a reduced set.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateDecode is returned when an entity's icon resource is
	// corrupt or unreachable. Recoverable in the same way.
	ErrTemplateDecode = errors.New("template decode failed")
)

// Template is the decoded reference icon for one entity: a normalized
// grayscale intensity buffer plus dimensions. Templates are created once per
// entity on first use and are immutable after creation.
type Template struct {
	EntityID string

	// Pix is the row-major normalized intensity buffer, each value in [0, 1].
	Pix []float64

	Width  int
	Height int
}

// Stats summarizes the store's cache contents.
type Stats struct {
	// Count is the number of cached templates.
	Count int `json:"count"`

	// ApproxSizeBytes estimates the memory held by cached pixel buffers.
	ApproxSizeBytes int64 `json:"approx_size_bytes"`
}

// Store loads and caches the reference icon for every catalog entity.
//
// The store is the only pipeline component with state shared across
// concurrent detection calls. It is read-mostly after warm-up: cache hits
// take a read lock only, and the one-time load-and-insert per entity is
// serialized per key through singleflight so concurrent Load calls for the
// same never-before-seen id trigger exactly one decode.
//
// Cache entries are request-independent: a cancelled detection call never
// invalidates them. The cache is cleared only by an explicit Clear (catalog
// reload).
type Store struct {
	catalog *catalog.Catalog
	log     *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Template

	group singleflight.Group

	// decodeFn performs the actual icon decode. Tests substitute it to
	// count decode invocations.
	decodeFn func(entityID string) (*Template, error)
}

// NewStore creates a template store over the given read-only catalog.
func NewStore(cat *catalog.Catalog, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		catalog: cat,
		log:     log,
		cache:   make(map[string]*Template),
	}
	s.decodeFn = s.decode
	return s
}

// Load returns the cached template for entityID, decoding it on first use.
//
// Loading is idempotent: later callers for an id whose decode is in flight
// await the first decode's result rather than re-decoding. Load fails with
// ErrTemplateNotFound for unknown ids and ErrTemplateDecode for unreadable
// or corrupt icon resources.
func (s *Store) Load(entityID string) (*Template, error) {
	s.mu.RLock()
	t, ok := s.cache[entityID]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	v, err, _ := s.group.Do(entityID, func() (interface{}, error) {
		// Re-check under the flight: an earlier flight may have filled
		// the cache between our read miss and this callback.
		s.mu.RLock()
		t, ok := s.cache[entityID]
		s.mu.RUnlock()
		if ok {
			return t, nil
		}

		t, err := s.decodeFn(entityID)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cache[entityID] = t
		s.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Template), nil
}

// decode reads an entity's icon from disk and converts it to the normalized
// grayscale form used for correlation.
func (s *Store) decode(entityID string) (*Template, error) {
	entity, ok := s.catalog.Get(entityID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, entityID)
	}

	f, err := os.Open(s.catalog.IconPath(entity))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateDecode, entityID, err)
	}
	defer f.Close()

	img, err := preprocess.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateDecode, entityID, err)
	}

	pix, w, h := preprocess.Gray(img)
	return &Template{EntityID: entityID, Pix: pix, Width: w, Height: h}, nil
}

// PreloadAll warms the cache for every catalog entity and returns the count
// that loaded successfully.
//
// Preloading is best-effort: individual failures are logged and skipped so
// one bad icon never blocks the whole catalog. The context cancels the
// remaining work but never evicts templates already cached.
func (s *Store) PreloadAll(ctx context.Context) int {
	loaded := 0
	for _, e := range s.catalog.Entities() {
		select {
		case <-ctx.Done():
			s.log.Warn("preload cancelled",
				slog.Int("loaded", loaded),
				slog.Int("total", s.catalog.Len()))
			return loaded
		default:
		}
		if _, err := s.Load(e.ID); err != nil {
			s.log.Warn("failed to preload template",
				slog.String("entity", e.ID),
				slog.String("error", err.Error()))
			continue
		}
		loaded++
	}
	s.log.Info("template preload complete",
		slog.Int("loaded", loaded),
		slog.Int("total", s.catalog.Len()))
	return loaded
}

// Stats reports the cache entry count and an estimate of its memory use.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var bytes int64
	for _, t := range s.cache {
		bytes += int64(len(t.Pix)) * 8
	}
	return Stats{Count: len(s.cache), ApproxSizeBytes: bytes}
}

// Clear empties the cache. Intended for catalog reloads; in-flight Load
// calls complete against the old contents and re-insert into the new map.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cache = make(map[string]*Template)
	s.mu.Unlock()
}
