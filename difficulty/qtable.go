package difficulty

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// QValues holds the action values in index order: decrease, maintain, increase.
type QValues [3]float64

// QEntry is one exported Q-table row.
type QEntry struct {
	Key    string  `json:"key"`
	Values QValues `json:"values"`
}

type qStore interface {
	get(key string) (QValues, bool)
	put(key string, v QValues)
	size() int
	entries() []QEntry
	clear()
}

// mapQStore grows without bound.
type mapQStore struct {
	rows map[string]QValues
}

func newMapQStore() *mapQStore {
	return &mapQStore{rows: make(map[string]QValues)}
}

func (s *mapQStore) get(key string) (QValues, bool) {
	v, ok := s.rows[key]
	return v, ok
}

func (s *mapQStore) put(key string, v QValues) { s.rows[key] = v }

func (s *mapQStore) size() int { return len(s.rows) }

func (s *mapQStore) entries() []QEntry {
	keys := make([]string, 0, len(s.rows))
	for k := range s.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]QEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, QEntry{Key: k, Values: s.rows[k]})
	}
	return out
}

func (s *mapQStore) clear() { s.rows = make(map[string]QValues) }

// lruQStore evicts the least recently touched state once full.
type lruQStore struct {
	cache *lru.Cache[string, QValues]
}

func newLRUQStore(limit int) (*lruQStore, error) {
	cache, err := lru.New[string, QValues](limit)
	if err != nil {
		return nil, err
	}
	return &lruQStore{cache: cache}, nil
}

func (s *lruQStore) get(key string) (QValues, bool) { return s.cache.Get(key) }

func (s *lruQStore) put(key string, v QValues) { s.cache.Add(key, v) }

func (s *lruQStore) size() int { return s.cache.Len() }

// entries are ordered oldest to newest so a restore keeps recency.
func (s *lruQStore) entries() []QEntry {
	keys := s.cache.Keys()
	out := make([]QEntry, 0, len(keys))
	for _, k := range keys {
		if v, ok := s.cache.Peek(k); ok {
			out = append(out, QEntry{Key: k, Values: v})
		}
	}
	return out
}

func (s *lruQStore) clear() { s.cache.Purge() }
