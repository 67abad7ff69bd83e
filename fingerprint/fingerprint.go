// Package fingerprint produces a short, stable digest of a run's
// RunConfig, printed on its own line after the Reporter's output and
// usable as a history row key.
//
// Grounded on the teacher's own use of golang.org/x/crypto/sha3 in
// router/update_test.go (there, Keccak256 over a seed byte builds a
// deterministic test fixture address; here, sha3-256 over a canonical
// config encoding builds a deterministic run identifier) - same
// library, same "hash something deterministic into a short identifier"
// shape, moved from test fixture to production code path.
package fingerprint

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"ccbench/rankmap"
	"ccbench/runconfig"
)

// canonical renders the fields of cfg that affect measured behavior into
// a single deterministic string. Field order is fixed; anything not
// listed here (Verbose, for instance) does not change the fingerprint
// because it does not change what gets measured.
func canonical(cfg runconfig.RunConfig, testID int) string {
	s := fmt.Sprintf("reps=%d;stride=%d;fence=%d,%d;flush=%d;forcesuccess=%t;backoff=%t;memsize=%d;mlock=%t;nonuma=%t;seedcore=%d;test=%d;",
		cfg.Repetitions, cfg.Stride, cfg.Fence.Load, cfg.Fence.Store, cfg.Flush,
		cfg.ForceSuccess, cfg.Backoff, cfg.MemSizeBytes, cfg.MLock, cfg.NoNUMA,
		cfg.SeedCore, testID)
	s += ranksCanonical(cfg.Ranks)
	return s
}

func ranksCanonical(m rankmap.Map) string {
	s := fmt.Sprintf("groups=%v;ranks=[", m.GroupSizes)
	for _, r := range m.Ranks {
		s += fmt.Sprintf("(%d,%d,%d,%d,%d)", r.Core, r.Test, r.Role, r.Group, r.BackoffCap)
	}
	return s + "]"
}

// Hash returns the hex-encoded sha3-256 digest of cfg's canonical
// encoding, truncated to 16 bytes (32 hex characters) - long enough to
// be collision-free across a single invocation's history table, short
// enough for a one-line report header.
func Hash(cfg runconfig.RunConfig, testID int) string {
	sum := sha3.Sum256([]byte(canonical(cfg, testID)))
	return hex.EncodeToString(sum[:16])
}
