package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Client errors
const (
	// ErrCodeValidation indicates a malformed name, version, or port.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeDuplicateEntry indicates the same address+port is already
	// registered in the cluster.
	ErrCodeDuplicateEntry ErrorCode = "DUPLICATE_ENTRY"
	// ErrCodeClusterNotFound indicates no cluster matches the requested
	// name and version.
	ErrCodeClusterNotFound ErrorCode = "CLUSTER_NOT_FOUND"
	// ErrCodeRegistryEmpty indicates a resolve was attempted against a
	// registry with no clusters at all.
	ErrCodeRegistryEmpty ErrorCode = "REGISTRY_EMPTY"
	// ErrCodeEntryNotFound indicates the entry is absent within an
	// existing cluster.
	ErrCodeEntryNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeEmptyCluster indicates a selection from a cluster with no
	// entries. Empty clusters are removed immediately, so observing this
	// code means an internal invariant was violated.
	ErrCodeEmptyCluster ErrorCode = "EMPTY_CLUSTER"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeEmptyCluster: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
