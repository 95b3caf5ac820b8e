package marketplace

import (
	"context"
	"sync"

	"solmarket/pkg/core"
)

// Tracker holds the latest committed marketplace snapshot and wallet
// profile. Concurrent refreshes race deliberately: whichever refresh
// STARTED last wins, and a refresh that finishes after a newer one has
// begun is discarded rather than allowed to roll state backwards.
type Tracker struct {
	mu sync.Mutex

	snapshotGen uint64
	snapshot    *core.MarketplaceSnapshot
	profileGen  uint64
	profile     *core.WalletProfile
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Snapshot returns the latest committed marketplace snapshot, or nil when
// no scan has completed yet.
func (t *Tracker) Snapshot() *core.MarketplaceSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

// Profile returns the latest committed wallet profile, or nil when no
// profile fetch has completed yet.
func (t *Tracker) Profile() *core.WalletProfile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profile
}

func (t *Tracker) beginSnapshot() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshotGen++
	return t.snapshotGen
}

func (t *Tracker) commitSnapshot(gen uint64, s *core.MarketplaceSnapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen < t.snapshotGen {
		return core.ErrSuperseded
	}
	t.snapshot = s
	return nil
}

func (t *Tracker) beginProfile() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.profileGen++
	return t.profileGen
}

func (t *Tracker) commitProfile(gen uint64, p *core.WalletProfile) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen < t.profileGen {
		return core.ErrSuperseded
	}
	t.profile = p
	return nil
}

// RefreshSnapshot scans the marketplace and installs the result as the
// tracker's current snapshot. Returns core.ErrSuperseded when a newer
// refresh began while this one was in flight; the fresher result wins and
// this one is dropped.
func (c *Client) RefreshSnapshot(ctx context.Context) (*core.MarketplaceSnapshot, error) {
	gen := c.tracker.beginSnapshot()
	snapshot, err := c.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.tracker.commitSnapshot(gen, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// RefreshProfile fetches the wallet profile and installs the result as the
// tracker's current profile, with the same latest-wins rule as
// RefreshSnapshot.
func (c *Client) RefreshProfile(ctx context.Context) (*core.WalletProfile, error) {
	gen := c.tracker.beginProfile()
	profile, err := c.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.tracker.commitProfile(gen, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
