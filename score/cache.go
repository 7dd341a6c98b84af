package score

import (
	"encoding/binary"
	"hash/fnv"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of datasets kept across matchup switches
const DefaultCacheSize = 8

// Cache is a bounded LRU of built datasets
type Cache struct {
	lru *lru.Cache[string, *Dataset]
}

// NewCache creates a cache holding up to size datasets
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, *Dataset](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// Get returns a cached dataset
func (c *Cache) Get(key string) (*Dataset, bool) {
	return c.lru.Get(key)
}

// Add stores a dataset, evicting the least recently used when full
func (c *Cache) Add(key string, ds *Dataset) {
	c.lru.Add(key, ds)
}

// Len returns the number of cached datasets
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every cached dataset
func (c *Cache) Purge() {
	c.lru.Purge()
}

// CacheKey identifies a dataset by matchup and table content
func CacheKey(matchupID string, t Table) string {
	h := fnv.New64a()
	var lenBuf [8]byte
	write := func(s string) {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
		h.Write(lenBuf[:])
		h.Write([]byte(s))
	}
	for _, col := range t.Header {
		write(col)
	}
	for _, row := range t.Rows {
		write("\x00row")
		for _, v := range row {
			write(v)
		}
	}
	return matchupID + ":" + strconv.FormatUint(h.Sum64(), 16)
}
