package registry

import (
	"testing"
	"time"

	apperrors "github.com/kbukum/registryd/errors"
	"github.com/kbukum/registryd/logger"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(Config{PruneInterval: 30, AddressFamily: FamilyIPv4}, logger.NewDefault("test"), nil)
}

func mustRegister(t *testing.T, r *Registry, name, version, address string, port int) Entry {
	t.Helper()
	e, err := r.Register(name, version, address, port)
	if err != nil {
		t.Fatalf("Register(%s, %s, %s, %d) failed: %v", name, version, address, port, err)
	}
	return e
}

func TestRegistry_Register_CreatesCluster(t *testing.T) {
	r := testRegistry(t)
	e := mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)

	if e.Hash() != "10.0.0.1:8080/auth/v1.0.0" {
		t.Errorf("unexpected entry hash %q", e.Hash())
	}

	snap := r.ListAll()
	if len(snap) != 1 || snap[0].Cluster != "auth/v1.0.0" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if len(snap[0].Entries) != 1 {
		t.Errorf("expected one entry, got %d", len(snap[0].Entries))
	}
}

func TestRegistry_Register_DuplicateFailsWithoutSideEffects(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)

	_, err := r.Register("auth", "1.0.0", "10.0.0.1", 8080)
	if !apperrors.HasCode(err, apperrors.ErrCodeDuplicateEntry) {
		t.Errorf("expected DUPLICATE_ENTRY, got %v", err)
	}

	_, entries := r.Stats()
	if entries != 1 {
		t.Errorf("entry count must be unchanged after failed register, got %d", entries)
	}
}

func TestRegistry_Register_NormalizesMappedIPv4(t *testing.T) {
	r := testRegistry(t)
	e := mustRegister(t, r, "auth", "1.0.0", "::ffff:10.0.0.1", 8080)
	if e.Address != "10.0.0.1" {
		t.Errorf("expected stripped address, got %q", e.Address)
	}
}

func TestRegistry_Register_KeepsMappedAddressForIPv6Family(t *testing.T) {
	r := New(Config{PruneInterval: 30, AddressFamily: FamilyIPv6}, logger.NewDefault("test"), nil)
	e := mustRegister(t, r, "auth", "1.0.0", "::ffff:10.0.0.1", 8080)
	if e.Address != "::ffff:10.0.0.1" {
		t.Errorf("ipv6 family must not strip the prefix, got %q", e.Address)
	}
}

func TestRegistry_Register_Validation(t *testing.T) {
	r := testRegistry(t)
	cases := []struct {
		name    string
		version string
		address string
		port    int
	}{
		{"", "1.0.0", "10.0.0.1", 8080},
		{"a/b", "1.0.0", "10.0.0.1", 8080},
		{"auth", "banana", "10.0.0.1", 8080},
		{"auth", "1.0", "10.0.0.1", 8080},
		{"auth", "1.0.0", "10.0.0.1", 0},
		{"auth", "1.0.0", "10.0.0.1", 70000},
		{"auth", "1.0.0", "", 8080},
	}
	for _, c := range cases {
		_, err := r.Register(c.name, c.version, c.address, c.port)
		if !apperrors.HasCode(err, apperrors.ErrCodeValidation) {
			t.Errorf("Register(%q, %q, %q, %d): expected VALIDATION_ERROR, got %v",
				c.name, c.version, c.address, c.port, err)
		}
	}
	if clusters, _ := r.Stats(); clusters != 0 {
		t.Errorf("failed registrations must not create clusters, got %d", clusters)
	}
}

func TestRegistry_Resolve_EmptyRegistry(t *testing.T) {
	r := testRegistry(t)
	_, err := r.Resolve("auth", "1")
	if !apperrors.HasCode(err, apperrors.ErrCodeRegistryEmpty) {
		t.Errorf("expected REGISTRY_EMPTY, got %v", err)
	}
}

func TestRegistry_Resolve_NoMatchingCluster(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)

	_, err := r.Resolve("billing", "1")
	if !apperrors.HasCode(err, apperrors.ErrCodeClusterNotFound) {
		t.Errorf("expected CLUSTER_NOT_FOUND for unknown name, got %v", err)
	}

	_, err = r.Resolve("auth", "2")
	if !apperrors.HasCode(err, apperrors.ErrCodeClusterNotFound) {
		t.Errorf("expected CLUSTER_NOT_FOUND for unmatched expression, got %v", err)
	}
}

func TestRegistry_Resolve_PrefersHighestSatisfyingVersion(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)
	mustRegister(t, r, "auth", "1.5.0", "10.0.0.2", 8080)
	mustRegister(t, r, "auth", "2.0.0", "10.0.0.3", 8080)

	e, err := r.Resolve("auth", "1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e.Version != "1.5.0" {
		t.Errorf("expected 1.5.0 (highest satisfying), got %s", e.Version)
	}
}

func TestRegistry_Resolve_ExactVersionRoundRobin(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.2", 8080)

	want := []string{"10.0.0.1", "10.0.0.2", "10.0.0.1"}
	for i, w := range want {
		e, err := r.Resolve("auth", "1.0.0")
		if err != nil {
			t.Fatalf("Resolve %d failed: %v", i, err)
		}
		if e.Address != w {
			t.Errorf("Resolve %d: expected %s, got %s", i, w, e.Address)
		}
	}
}

func TestRegistry_Resolve_MalformedExpression(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)

	_, err := r.Resolve("auth", "not-a-version")
	if !apperrors.HasCode(err, apperrors.ErrCodeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestRegistry_KeepAlive_UnknownCluster(t *testing.T) {
	r := testRegistry(t)
	_, err := r.KeepAlive("auth", "1.0.0", "10.0.0.1", 8080)
	if !apperrors.HasCode(err, apperrors.ErrCodeClusterNotFound) {
		t.Errorf("expected CLUSTER_NOT_FOUND, got %v", err)
	}
}

func TestRegistry_KeepAlive_ExactVersionOnly(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.5.0", "10.0.0.1", 8080)

	// Keep-alive addresses clusters by exact version, never by expression.
	_, err := r.KeepAlive("auth", "1.0.0", "10.0.0.1", 8080)
	if !apperrors.HasCode(err, apperrors.ErrCodeClusterNotFound) {
		t.Errorf("expected CLUSTER_NOT_FOUND, got %v", err)
	}

	if _, err := r.KeepAlive("auth", "1.5.0", "10.0.0.1", 8080); err != nil {
		t.Errorf("exact keep-alive failed: %v", err)
	}
}

func TestRegistry_Deregister_RemovesEmptyCluster(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)

	if _, err := r.Deregister("auth", "1.0.0", "10.0.0.1", 8080); err != nil {
		t.Fatalf("Deregister failed: %v", err)
	}

	if snap := r.ListAll(); len(snap) != 0 {
		t.Errorf("cluster should disappear from listAll, got %+v", snap)
	}
}

func TestRegistry_Deregister_UnknownClusterNoSideEffects(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)

	_, err := r.Deregister("billing", "1.0.0", "10.0.0.1", 8080)
	if !apperrors.HasCode(err, apperrors.ErrCodeClusterNotFound) {
		t.Errorf("expected CLUSTER_NOT_FOUND, got %v", err)
	}

	clusters, entries := r.Stats()
	if clusters != 1 || entries != 1 {
		t.Errorf("registry state must be unchanged, got %d clusters %d entries", clusters, entries)
	}
}

func TestRegistry_PruneCycle_PreviousCycleCutoff(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.2", 8080)

	now := time.Now()

	// First cycle: cutoff predates both registrations, nothing is evicted.
	r.mu.Lock()
	r.cycleStart = now.Add(-time.Minute)
	r.mu.Unlock()
	r.pruneCycle(now)

	if _, entries := r.Stats(); entries != 2 {
		t.Fatalf("no entry should be pruned in the first cycle, got %d", entries)
	}

	// One entry keeps signalling, the other stays silent past the boundary.
	if _, err := r.KeepAlive("auth", "1.0.0", "10.0.0.2", 8080); err != nil {
		t.Fatalf("KeepAlive failed: %v", err)
	}

	// Force the silent entry behind the recorded cycle boundary.
	r.mu.Lock()
	c := r.clusters["auth/v1.0.0"]
	for i := range c.entries {
		if c.entries[i].Address == "10.0.0.1" {
			c.entries[i].LastSeen = now.Add(-time.Second)
		}
	}
	r.cycleStart = now
	r.mu.Unlock()

	r.pruneCycle(now.Add(time.Second))

	snap := r.ListAll()
	if len(snap) != 1 || len(snap[0].Entries) != 1 {
		t.Fatalf("expected one surviving entry, got %+v", snap)
	}
	if snap[0].Entries[0].Address != "10.0.0.2" {
		t.Errorf("keep-alive sender should survive, got %s", snap[0].Entries[0].Address)
	}
}

func TestRegistry_PruneCycle_RemovesDrainedClusters(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)

	r.mu.Lock()
	r.clusters["auth/v1.0.0"].entries[0].LastSeen = time.Now().Add(-time.Hour)
	r.cycleStart = time.Now().Add(-time.Minute)
	r.mu.Unlock()

	r.pruneCycle(time.Now())

	if clusters, _ := r.Stats(); clusters != 0 {
		t.Errorf("drained cluster should be removed, got %d clusters", clusters)
	}
}

func TestRegistry_PruneCycle_EmptyRegistryIsNoop(t *testing.T) {
	r := testRegistry(t)
	r.pruneCycle(time.Now())
	if clusters, _ := r.Stats(); clusters != 0 {
		t.Errorf("expected empty registry, got %d clusters", clusters)
	}
}

func TestRegistry_StartStopPruning(t *testing.T) {
	r := testRegistry(t)
	r.StartPruning()
	r.StopPruning()
	// Stopping twice must be safe.
	r.StopPruning()
}

func TestRegistry_ListAll_DescendingPrecedenceOrder(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)
	mustRegister(t, r, "auth", "2.0.0", "10.0.0.2", 8080)
	mustRegister(t, r, "billing", "1.5.0", "10.0.0.3", 8080)

	snap := r.ListAll()
	want := []string{"auth/v2.0.0", "billing/v1.5.0", "auth/v1.0.0"}
	if len(snap) != len(want) {
		t.Fatalf("expected %d clusters, got %d", len(want), len(snap))
	}
	for i, w := range want {
		if snap[i].Cluster != w {
			t.Errorf("cluster %d: expected %s, got %s", i, w, snap[i].Cluster)
		}
	}
}

func TestRegistry_EndToEnd(t *testing.T) {
	r := testRegistry(t)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.1", 8080)
	mustRegister(t, r, "auth", "1.0.0", "10.0.0.2", 8080)

	e1, err := r.Resolve("auth", "1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e1.Hash() != "10.0.0.1:8080/auth/v1.0.0" {
		t.Errorf("first resolve: got %s", e1.Hash())
	}

	e2, err := r.Resolve("auth", "1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if e2.Hash() != "10.0.0.2:8080/auth/v1.0.0" {
		t.Errorf("second resolve: got %s", e2.Hash())
	}

	if _, err := r.Deregister("auth", "1.0.0", "10.0.0.1", 8080); err != nil {
		t.Fatalf("Deregister failed: %v", err)
	}
	if _, entries := r.Stats(); entries != 1 {
		t.Fatalf("expected one remaining entry, got %d", entries)
	}

	for i := 0; i < 3; i++ {
		e, err := r.Resolve("auth", "1")
		if err != nil {
			t.Fatalf("Resolve %d failed: %v", i, err)
		}
		if e.Address != "10.0.0.2" {
			t.Errorf("resolve %d should always return the survivor, got %s", i, e.Address)
		}
	}
}
