package kv

import (
	"errors"
	"fmt"

	"github.com/annwhocodes/ResQMap/pkg/datastructure"

	"github.com/dgraph-io/badger/v4"
	"github.com/uber/h3-go/v4"
)

var (
	ErrRouteNotFound = errors.New("cached route not found")
)

const (
	// H3 resolution 13 cells are ~3.6 m across: two coordinates quantize
	// to the same key iff they fall in the same cell. This is the cache
	// coordinate tolerance.
	cacheKeyResolution = 13
)

// RouteCache is a badger-backed snapshot of precomputed routes, keyed
// by quantized origin/destination cells plus the avoidance flags.
// Populated out-of-band (cmd/precompute); read-only at serving time, no
// eviction.
type RouteCache struct {
	db *badger.DB
}

func NewRouteCache(db *badger.DB) *RouteCache {
	return &RouteCache{db: db}
}

// OpenRouteCache opens a cache snapshot directory.
func OpenRouteCache(dir string) (*RouteCache, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open route cache %s: %w", dir, err)
	}
	return NewRouteCache(db), nil
}

func cacheKey(origin, destination datastructure.Coordinate, avoid datastructure.AvoidancePreferences) []byte {
	originCell := h3.LatLngToCell(h3.NewLatLng(origin.Lat, origin.Lng), cacheKeyResolution)
	destCell := h3.LatLngToCell(h3.NewLatLng(destination.Lat, destination.Lng), cacheKeyResolution)
	return []byte(fmt.Sprintf("%s-%s-%d", originCell.String(), destCell.String(), avoid.Bits()))
}

// Put stores a precomputed route. Only the precompute pipeline writes;
// the serving path never does.
func (c *RouteCache) Put(origin, destination datastructure.Coordinate, route datastructure.CachedRoute) error {
	val, err := encodeRoute(route)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(origin, destination, route.Avoid), val)
	})
}

// Lookup returns the cached route for (origin, destination, avoid).
// A hit requires the stored avoidance preferences to equal the
// requested ones exactly; coordinates match within the cell tolerance.
func (c *RouteCache) Lookup(origin, destination datastructure.Coordinate,
	avoid datastructure.AvoidancePreferences) (datastructure.CachedRoute, error) {

	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(origin, destination, avoid))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return datastructure.CachedRoute{}, ErrRouteNotFound
	}
	if err != nil {
		return datastructure.CachedRoute{}, err
	}

	route, err := loadRoute(val)
	if err != nil {
		return datastructure.CachedRoute{}, err
	}

	if route.Avoid != avoid {
		return datastructure.CachedRoute{}, ErrRouteNotFound
	}
	return route, nil
}

// Len counts stored routes.
func (c *RouteCache) Len() (int, error) {
	count := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func (c *RouteCache) Close() error {
	return c.db.Close()
}
