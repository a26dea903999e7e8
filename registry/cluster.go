package registry

import (
	"fmt"
	"time"

	"github.com/coreos/go-semver/semver"

	"github.com/kbukum/registryd/errors"
)

// Cluster holds all live entries sharing one exact (name, version) pair,
// in insertion order, together with the rotation cursor used for
// round-robin selection.
//
// Mutating methods are unexported: every mutation must run under the
// owning Registry's lock, and an emptied cluster must be removed from the
// Registry immediately.
type Cluster struct {
	name    string
	version *semver.Version
	entries []Entry

	// cursor indexes the entry returned by the next selection. It is
	// meaningful only while entries is non-empty.
	cursor int
}

func newCluster(name string, version *semver.Version) *Cluster {
	return &Cluster{name: name, version: version}
}

// Key returns the cluster key: "<name>/v<version>".
func (c *Cluster) Key() string {
	return fmt.Sprintf("%s/v%s", c.name, c.version)
}

// Name returns the service name shared by all entries in the cluster.
func (c *Cluster) Name() string { return c.name }

// Version returns the exact semantic version shared by all entries.
func (c *Cluster) Version() *semver.Version { return c.version }

// Len returns the number of entries in the cluster.
func (c *Cluster) Len() int { return len(c.entries) }

// Entries returns a copy of the entry sequence in insertion order
// (not rotation order).
func (c *Cluster) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// add appends an entry at the tail. Adding an address+port that already
// exists in the cluster fails with DUPLICATE_ENTRY. The duplicate scan is
// linear; clusters hold tens of entries, not millions.
func (c *Cluster) add(e Entry) error {
	for _, existing := range c.entries {
		if existing.sameEndpoint(e.Address, e.Port) {
			return errors.DuplicateEntry(e.Hash())
		}
	}
	c.entries = append(c.entries, e)
	return nil
}

// keepAlive refreshes the lastSeen timestamp of the entry at address+port.
func (c *Cluster) keepAlive(address string, port int, now time.Time) error {
	for i := range c.entries {
		if c.entries[i].sameEndpoint(address, port) {
			c.entries[i].LastSeen = now
			return nil
		}
	}
	return errors.EntryNotFound(Entry{
		Name: c.name, Version: c.version.String(), Address: address, Port: port,
	}.Hash())
}

// remove unlinks the entry at address+port and returns it. If the removed
// entry was the cursor target the cursor resets to the head, restarting
// the rotation; entries before the cursor shift it left so it keeps
// pointing at the same entry.
func (c *Cluster) remove(address string, port int) (Entry, error) {
	for i := range c.entries {
		if !c.entries[i].sameEndpoint(address, port) {
			continue
		}
		removed := c.entries[i]
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
		switch {
		case i == c.cursor:
			c.cursor = 0
		case i < c.cursor:
			c.cursor--
		}
		if c.cursor >= len(c.entries) {
			c.cursor = 0
		}
		return removed, nil
	}
	return Entry{}, errors.EntryNotFound(Entry{
		Name: c.name, Version: c.version.String(), Address: address, Port: port,
	}.Hash())
}

// next returns the entry at the cursor and advances the cursor one step,
// wrapping past the tail. Selecting from an empty cluster fails with
// EMPTY_CLUSTER; empty clusters are removed immediately, so this is a
// defensive path.
func (c *Cluster) next() (Entry, error) {
	if len(c.entries) == 0 {
		return Entry{}, errors.EmptyCluster(c.Key())
	}
	e := c.entries[c.cursor]
	c.cursor = (c.cursor + 1) % len(c.entries)
	return e, nil
}

// prune removes every entry whose lastSeen predates cutoff and returns the
// number removed. The cursor follows the same rule as remove: if its entry
// was pruned the rotation restarts at the head, otherwise it keeps pointing
// at the same entry.
func (c *Cluster) prune(cutoff time.Time) int {
	kept := make([]Entry, 0, len(c.entries))
	removed := 0
	newCursor := -1
	for i, e := range c.entries {
		if e.LastSeen.Before(cutoff) {
			removed++
			continue
		}
		if i == c.cursor {
			newCursor = len(kept)
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0
	}
	c.entries = kept
	if newCursor < 0 {
		newCursor = 0
	}
	c.cursor = newCursor
	return removed
}
