package cache

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"github.com/blaisecz/health-insights/internal/domain"
	"github.com/coocood/freecache"
	"github.com/goccy/go-json"
)

// entryTTLSeconds bounds how long freecache keeps an entry; anything older than
// a day can never satisfy the day bucket anyway.
const entryTTLSeconds = 25 * 60 * 60

// MemoryStore keeps insights in a fixed-size freecache segment.
type MemoryStore struct {
	cache *freecache.Cache
}

// minSizeMB keeps the per-entry limit (1/1024 of the cache) above 8KB.
const minSizeMB = 8

// NewMemoryStore allocates sizeMB megabytes, at least minSizeMB.
func NewMemoryStore(sizeMB int) *MemoryStore {
	if sizeMB < minSizeMB {
		sizeMB = minSizeMB
	}
	return &MemoryStore{cache: freecache.NewCache(sizeMB * 1024 * 1024)}
}

// unsafeStringToBytes converts without allocating; freecache copies keys.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (m *MemoryStore) Get(_ context.Context, key string) (*domain.CachedInsight, error) {
	raw, err := m.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var entry domain.CachedInsight
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cached insight: %w", err)
	}
	return &entry, nil
}

func (m *MemoryStore) Put(_ context.Context, entry *domain.CachedInsight) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached insight: %w", err)
	}
	return m.cache.Set([]byte(entry.Key), raw, entryTTLSeconds)
}

func (m *MemoryStore) Clear(context.Context) error {
	m.cache.Clear()
	return nil
}

// Len reports the number of stored entries.
func (m *MemoryStore) Len() int64 {
	return m.cache.EntryCount()
}
