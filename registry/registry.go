package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-semver/semver"

	"github.com/kbukum/registryd/errors"
	"github.com/kbukum/registryd/logger"
	"github.com/kbukum/registryd/observability"
	"github.com/kbukum/registryd/validation"
)

// ipv4MappedPrefix is the IPv6 representation prefix of an IPv4 address.
const ipv4MappedPrefix = "::ffff:"

// ClusterSnapshot is a read-only view of one cluster for introspection.
type ClusterSnapshot struct {
	Cluster string  `json:"cluster"`
	Entries []Entry `json:"entries"`
}

// Registry is the top-level collection of clusters keyed by (name, version).
//
// One Registry exists per process. It is constructed explicitly, handed to
// the API layer, and torn down (prune ticker stopped) at shutdown. A single
// mutex guards the whole cluster/entry structure; a resolve observes either
// the pre- or post-mutation state of a cluster, never an intermediate one.
type Registry struct {
	mu sync.Mutex

	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics

	// clusters indexes by exact key; ordered keeps the same clusters
	// sorted by descending version precedence (tie-break: ascending key)
	// so resolve deterministically prefers the newest satisfying version.
	clusters map[string]*Cluster
	ordered  []*Cluster

	// cycleStart marks the start of the current health-check cycle. It is
	// the cutoff for the next prune: an entry silent since before it is
	// evicted, so every entry survives at least one full interval.
	cycleStart time.Time

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Registry. metrics may be nil when observability is disabled.
func New(cfg Config, log *logger.Logger, metrics *observability.Metrics) *Registry {
	cfg.ApplyDefaults()
	return &Registry{
		cfg:      cfg,
		log:      log.WithComponent("registry"),
		metrics:  metrics,
		clusters: make(map[string]*Cluster),
	}
}

// Register records a new entry for (name, version) at the requester's
// address and port, creating the cluster on first registration. Registering
// an address+port already present in the cluster fails with DUPLICATE_ENTRY.
func (r *Registry) Register(name, version, address string, port int) (Entry, error) {
	entry, ver, err := r.makeEntry(name, version, address, port)
	if err != nil {
		return Entry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := entry.clusterKey()
	c, ok := r.clusters[key]
	if !ok {
		c = newCluster(entry.Name, ver)
		r.insertCluster(c)
	}
	if err := c.add(entry); err != nil {
		return Entry{}, err
	}

	r.log.Debug("entry registered", logger.Fields(
		logger.FieldCluster, key,
		logger.FieldEntry, entry.Hash(),
	))
	r.metrics.RecordRegistration(entry.Name, entry.Version)
	return entry, nil
}

// KeepAlive refreshes the lastSeen timestamp of the entry identified by the
// exact (name, version) cluster and the requester's address+port.
func (r *Registry) KeepAlive(name, version, address string, port int) (Entry, error) {
	entry, _, err := r.makeEntry(name, version, address, port)
	if err != nil {
		return Entry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := entry.clusterKey()
	c, ok := r.clusters[key]
	if !ok {
		return Entry{}, errors.ClusterNotFound(key)
	}
	if err := c.keepAlive(entry.Address, entry.Port, entry.LastSeen); err != nil {
		return Entry{}, err
	}

	r.metrics.RecordKeepAlive(entry.Name, entry.Version)
	return entry, nil
}

// Deregister removes the entry and, if the cluster drains, the cluster
// itself. Failure leaves the registry unchanged.
func (r *Registry) Deregister(name, version, address string, port int) (Entry, error) {
	entry, _, err := r.makeEntry(name, version, address, port)
	if err != nil {
		return Entry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := entry.clusterKey()
	c, ok := r.clusters[key]
	if !ok {
		return Entry{}, errors.ClusterNotFound(key)
	}
	removed, err := c.remove(entry.Address, entry.Port)
	if err != nil {
		return Entry{}, err
	}
	if c.Len() == 0 {
		r.dropCluster(c)
	}

	r.log.Debug("entry deregistered", logger.Fields(
		logger.FieldCluster, key,
		logger.FieldEntry, removed.Hash(),
	))
	r.metrics.RecordDeregistration(removed.Name, removed.Version)
	return removed, nil
}

// Resolve returns one entry for the first cluster, in descending version
// precedence, whose name matches and whose version satisfies the
// expression. Repeated calls against the same cluster rotate round-robin.
func (r *Registry) Resolve(name, expression string) (Entry, error) {
	if err := validateName(name); err != nil {
		return Entry{}, err
	}
	expr, err := ParseExpression(expression)
	if err != nil {
		return Entry{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.ordered) == 0 {
		return Entry{}, errors.RegistryEmpty()
	}
	for _, c := range r.ordered {
		if c.name != name || !expr.Matches(c.version) {
			continue
		}
		e, err := c.next()
		if err != nil {
			return Entry{}, err
		}
		r.metrics.RecordResolution(name, expression)
		return e, nil
	}
	return Entry{}, errors.ClusterNotFound(fmt.Sprintf("%s/v%s", name, expression))
}

// ListAll returns a full snapshot of the registry in stored cluster order.
func (r *Registry) ListAll() []ClusterSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ClusterSnapshot, 0, len(r.ordered))
	for _, c := range r.ordered {
		out = append(out, ClusterSnapshot{Cluster: c.Key(), Entries: c.Entries()})
	}
	return out
}

// Stats returns the current number of clusters and entries.
func (r *Registry) Stats() (clusters, entries int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.ordered {
		entries += c.Len()
	}
	return len(r.ordered), entries
}

// --- prune cycle ---

// StartPruning launches the background prune loop. The first cycle uses the
// start timestamp as its cutoff, so nothing can be evicted before one full
// interval has elapsed.
func (r *Registry) StartPruning() {
	r.mu.Lock()
	r.cycleStart = time.Now()
	r.mu.Unlock()

	r.done = make(chan struct{})
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.cfg.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-r.done:
				return
			case now := <-ticker.C:
				r.pruneCycle(now)
			}
		}
	}()

	r.log.Info("prune loop started", logger.Fields("interval", r.cfg.Interval().String()))
}

// StopPruning halts the prune loop and waits for it to exit. Safe to call
// when pruning was never started.
func (r *Registry) StopPruning() {
	if r.done == nil {
		return
	}
	close(r.done)
	r.wg.Wait()
	r.done = nil
	r.log.Info("prune loop stopped")
}

// pruneCycle removes every entry silent since the previous cycle's start,
// drops clusters that drained, and records now as the next cutoff. A fault
// in one cluster is isolated and logged; the cycle continues.
func (r *Registry) pruneCycle(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.cycleStart
	r.cycleStart = now
	if len(r.ordered) == 0 {
		return
	}

	total := 0
	var drained []*Cluster
	for _, c := range r.ordered {
		removed := r.pruneCluster(c, cutoff)
		if removed > 0 {
			r.log.Info("pruned stale entries", logger.Fields(
				logger.FieldCluster, c.Key(),
				"removed", removed,
			))
			total += removed
		}
		if c.Len() == 0 {
			drained = append(drained, c)
		}
	}
	for _, c := range drained {
		r.dropCluster(c)
	}
	if total > 0 {
		r.metrics.RecordPruneEvictions(total)
	}
}

// pruneCluster prunes one cluster, containing any fault to that cluster.
func (r *Registry) pruneCluster(c *Cluster, cutoff time.Time) (removed int) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("prune failed for cluster", logger.Fields(
				logger.FieldCluster, c.Key(),
				logger.FieldError, fmt.Sprintf("%v", rec),
			))
		}
	}()
	return c.prune(cutoff)
}

// --- internals ---

// makeEntry validates and normalizes the request fields into an Entry with
// lastSeen set to now.
func (r *Registry) makeEntry(name, version, address string, port int) (Entry, *semver.Version, error) {
	if err := validateName(name); err != nil {
		return Entry{}, nil, err
	}
	ver, err := ParseVersion(version)
	if err != nil {
		return Entry{}, nil, err
	}
	if port < 1 || port > 65535 {
		return Entry{}, nil, errors.InvalidField("port", fmt.Sprintf("%d is out of range", port))
	}
	addr := r.normalizeAddress(address)
	if addr == "" {
		return Entry{}, nil, errors.InvalidField("address", "requester address is empty")
	}
	return Entry{
		Name:     name,
		Version:  ver.String(),
		Address:  addr,
		Port:     port,
		LastSeen: time.Now(),
	}, ver, nil
}

// normalizeAddress strips the IPv6-mapped-IPv4 prefix when the registry is
// configured for IPv4 addresses.
func (r *Registry) normalizeAddress(address string) string {
	if r.cfg.AddressFamily == FamilyIPv4 {
		return strings.TrimPrefix(address, ipv4MappedPrefix)
	}
	return address
}

// insertCluster places c into the ordered slice at its sorted position:
// descending version precedence, ascending key between equal versions of
// different names.
func (r *Registry) insertCluster(c *Cluster) {
	i := sort.Search(len(r.ordered), func(i int) bool {
		cmp := ComparePrecedence(r.ordered[i].version, c.version)
		if cmp != 0 {
			return cmp < 0
		}
		return r.ordered[i].Key() >= c.Key()
	})
	r.ordered = append(r.ordered, nil)
	copy(r.ordered[i+1:], r.ordered[i:])
	r.ordered[i] = c
	r.clusters[c.Key()] = c
	r.metrics.SetClusters(len(r.ordered))
}

// dropCluster removes c from both the key index and the ordered slice.
func (r *Registry) dropCluster(c *Cluster) {
	delete(r.clusters, c.Key())
	for i, o := range r.ordered {
		if o == c {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	r.log.Debug("cluster removed", logger.Fields(logger.FieldCluster, c.Key()))
	r.metrics.SetClusters(len(r.ordered))
}

func validateName(name string) error {
	v := validation.New().
		Required("name", name).
		Custom(!strings.Contains(name, "/"), "name", "must not contain '/'")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// clusterKey returns the key of the cluster owning this entry.
func (e Entry) clusterKey() string {
	return fmt.Sprintf("%s/v%s", e.Name, e.Version)
}
