// Package embedcache provides a disk-backed cache for embedding vectors so
// repeated analyses of the same text never re-pay the model call.
package embedcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
)

// Cache stores vectors keyed by sha256 of the source text plus optional
// metadata. The whole payload lives in one JSON file; a single mutex
// covers every read-modify-write cycle.
type Cache struct {
	path string

	mu sync.Mutex
}

// New opens (or creates) a cache file at path, creating parent directories
// as needed.
func New(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrap(err, "embedcache: create cache dir")
	}
	c := &Cache{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := c.write(map[string][]float64{}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Get returns the cached vector for text, or nil and false on a miss.
func (c *Cache) Get(text string, metadata map[string]string) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.read()
	if err != nil {
		return nil, false
	}
	vec, ok := payload[hashKey(text, metadata)]
	return vec, ok
}

// Set stores a vector for text, replacing any previous entry.
func (c *Cache) Set(text string, vector []float64, metadata map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.read()
	if err != nil {
		payload = map[string][]float64{}
	}
	payload[hashKey(text, metadata)] = vector
	return c.write(payload)
}

func (c *Cache) read() (map[string][]float64, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, eris.Wrap(err, "embedcache: read cache file")
	}
	payload := map[string][]float64{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, eris.Wrap(err, "embedcache: parse cache file")
	}
	return payload, nil
}

func (c *Cache) write(payload map[string][]float64) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "embedcache: encode cache payload")
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		return eris.Wrap(err, "embedcache: write cache file")
	}
	return nil
}

// hashKey folds the text and sorted metadata pairs into one digest so the
// same text embedded under different parameters caches separately.
func hashKey(text string, metadata map[string]string) string {
	h := sha256.New()
	h.Write([]byte(text))
	if len(metadata) > 0 {
		keys := make([]string, 0, len(metadata))
		for k := range metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(h, "%s=%s;", k, metadata[k])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
