package cache

import (
	"container/list"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"lukechampine.com/blake3"

	"narrate/internal/speech/audio"
)

// ErrTooLarge is returned when a clip alone exceeds the byte capacity.
var ErrTooLarge = errors.New("clip too large for cache")

// Stats is a point-in-time view of the cache.
type Stats struct {
	Entries    int
	Bytes      int64
	MaxEntries int
	MaxBytes   int64
	Hits       int64
	Misses     int64
	Evictions  int64
}

// HitRate returns hits / (hits + misses), or zero before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type entry struct {
	key  string
	clip *audio.Clip
	size int64
}

// LRU maps exact text to synthesized clips. It is bounded by entry count
// and by total payload bytes; a zero limit disables that bound. Evicted
// clips are released.
type LRU struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List
	maxEntries int
	maxBytes   int64
	bytes      int64
	hits       int64
	misses     int64
	evictions  int64
}

func NewLRU(maxEntries int, maxBytes int64) *LRU {
	return &LRU{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
	}
}

// Key hashes text into the cache key. The text is not normalised.
func Key(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *LRU) Get(text string) (*audio.Clip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[Key(text)]
	if !ok {
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	return elem.Value.(*entry).clip, true
}

// Put stores clip under text, replacing and releasing any previous clip
// for the same text.
func (c *LRU) Put(text string, clip *audio.Clip) error {
	size := clip.Size()
	if c.maxBytes > 0 && size > c.maxBytes {
		return ErrTooLarge
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(text)
	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry)
		if e.clip != clip {
			e.clip.Release()
		}
		c.bytes += size - e.size
		e.clip = clip
		e.size = size
		c.order.MoveToFront(elem)
	} else {
		c.items[key] = c.order.PushFront(&entry{key: key, clip: clip, size: size})
		c.bytes += size
	}

	for c.overLimit() {
		c.evictOldest()
	}
	return nil
}

func (c *LRU) overLimit() bool {
	if c.order.Len() <= 1 {
		return false
	}
	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		return true
	}
	return c.maxBytes > 0 && c.bytes > c.maxBytes
}

func (c *LRU) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	e := c.remove(elem)
	c.evictions++
	logrus.WithFields(logrus.Fields{
		"key":   e.key[:12],
		"bytes": e.size,
	}).Debug("evicted cached speech")
}

func (c *LRU) remove(elem *list.Element) *entry {
	e := elem.Value.(*entry)
	c.order.Remove(elem)
	delete(c.items, e.key)
	c.bytes -= e.size
	e.clip.Release()
	return e
}

// DeleteClip drops the entry for text only while it still holds clip.
// It reports whether anything was removed.
func (c *LRU) DeleteClip(text string, clip *audio.Clip) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[Key(text)]
	if !ok || clip == nil || elem.Value.(*entry).clip != clip {
		return false
	}
	c.remove(elem)
	return true
}

func (c *LRU) Contains(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[Key(text)]
	return ok
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear releases every cached clip.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		elem.Value.(*entry).clip.Release()
	}
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.bytes = 0
}

func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Entries:    c.order.Len(),
		Bytes:      c.bytes,
		MaxEntries: c.maxEntries,
		MaxBytes:   c.maxBytes,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
	}
}
