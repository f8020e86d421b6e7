package layout

import "spice/internal/types"

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

type cache struct {
	byType map[*types.Type]*cacheEntry
}

func newCache() *cache {
	return &cache{byType: make(map[*types.Type]*cacheEntry, 64)}
}

func (c *cache) get(t *types.Type) (*cacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.byType[t]
	return e, ok
}

func (c *cache) put(t *types.Type, e *cacheEntry) {
	if c == nil {
		return
	}
	c.byType[t] = e
}
