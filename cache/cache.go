// Package cache memoizes search results so that replaying or re-solving the
// same tree with the same algorithm does not redo the traversal.
package cache

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/search"
)

type loadFunc func(key string) (*search.Result, error)

const (
	// A generous guess at a cached result of a displayable tree, step log
	// included.
	entrySize = 64 * 1024
	// Fraction of system memory the cache may hold.
	fractionOfMemory = 0.02
	minEntries       = 256
)

type cache struct {
	sync.Mutex
	objects    map[string]*search.Result
	maxEntries int
	hits       int
	misses     int
}

// GlobalResultCache is shared by the shell and the TUI.
var (
	GlobalResultCache *cache
	createOnce        sync.Once
)

func newCache() *cache {
	return &cache{
		objects:    make(map[string]*search.Result),
		maxEntries: capacity(),
	}
}

func capacity() int {
	n := int(fractionOfMemory * float64(memory.TotalMemory()) / entrySize)
	return max(n, minEntries)
}

func (c *cache) load(key string, loadFunc loadFunc) error {
	log.Debug().Str("key", key).Msg("loading into cache")

	obj, err := loadFunc(key)
	if err != nil {
		return err
	}
	if len(c.objects) >= c.maxEntries {
		// Start over rather than track recency; a re-solve is cheap.
		log.Debug().Int("entries", len(c.objects)).Msg("result-cache-full")
		clear(c.objects)
	}
	c.objects[key] = obj
	return nil
}

func (c *cache) get(key string, loadFunc loadFunc) (*search.Result, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		c.hits++
		return obj, nil
	}
	c.misses++
	if err := c.load(key, loadFunc); err != nil {
		return nil, err
	}
	return c.objects[key], nil
}

func (c *cache) reset() {
	c.Lock()
	defer c.Unlock()
	c.objects = make(map[string]*search.Result)
	c.hits, c.misses = 0, 0
}

func CreateGlobalResultCache() {
	GlobalResultCache = newCache()
}

// Key identifies a solve by strategy variant and tree shape, including the
// root role and all leaf utilities.
func Key(variant string, tree *gametree.Node) string {
	return fmt.Sprintf("%s/%016x", variant, xxhash.Sum64String(gametree.Fingerprint(tree)))
}

func Load(key string, loadFunc loadFunc) (*search.Result, error) {
	createOnce.Do(func() {
		if GlobalResultCache == nil {
			CreateGlobalResultCache()
		}
	})
	return GlobalResultCache.get(key, loadFunc)
}

// Solve returns the cached result for tree under the solver's variant,
// solving and storing it on a miss. Results are shared; callers must not
// modify them.
func Solve(solver search.Strategy, tree *gametree.Node) (*search.Result, error) {
	return Load(Key(solver.Variant(), tree), func(string) (*search.Result, error) {
		return solver.Solve(tree)
	})
}

// Stats reports hits and misses on the global cache.
func Stats() (hits, misses int) {
	if GlobalResultCache == nil {
		return 0, 0
	}
	GlobalResultCache.Lock()
	defer GlobalResultCache.Unlock()
	return GlobalResultCache.hits, GlobalResultCache.misses
}

func Reset() {
	if GlobalResultCache == nil {
		return
	}
	GlobalResultCache.reset()
}
