package marketplace

import (
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
)

// supplyCache memoizes mint total-supply lookups. Mint supply changes at
// most once for the mints we care about (an NFT mint is closed after the
// single unit is issued), so a short TTL is enough to collapse the
// per-mint lookups a portfolio fetch fans out into.
type supplyCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[solana.PublicKey]supplyEntry

	now func() time.Time
}

type supplyEntry struct {
	supply  uint64
	expires time.Time
}

func newSupplyCache(ttl time.Duration) *supplyCache {
	return &supplyCache{
		ttl:     ttl,
		entries: make(map[solana.PublicKey]supplyEntry),
		now:     time.Now,
	}
}

func (c *supplyCache) get(mint solana.PublicKey) (uint64, bool) {
	if c.ttl <= 0 {
		return 0, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[mint]
	if !ok || c.now().After(entry.expires) {
		return 0, false
	}
	return entry.supply, true
}

func (c *supplyCache) put(mint solana.PublicKey, supply uint64) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[mint] = supplyEntry{
		supply:  supply,
		expires: c.now().Add(c.ttl),
	}
}

func (c *supplyCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for mint, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, mint)
		}
	}
}
