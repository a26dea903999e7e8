// Package registry implements the in-memory service registry at the heart
// of registryd.
//
// Producers announce themselves by name, semantic version, and network
// address. Entries sharing one exact (name, version) pair form a Cluster,
// which hands out addresses in round-robin order. Consumers resolve a name
// plus a version expression ("1", "1.2", or "1.2.3") to one concrete entry;
// clusters are kept ordered by descending version precedence so the newest
// satisfying version always wins. Entries that stop sending keep-alives are
// evicted by a background prune cycle.
//
// All mutation runs under a single mutex over the whole registry: cluster
// membership and entry membership are not independently safe to interleave.
package registry
