package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/guardline/incident-agent/internal/types"
)

// IncidentID computes the deterministic dedup fingerprint for an incident:
// SHA-256 over location, crime, and the full second-granularity timestamp.
//
// The full timestamp (not the month-truncated partition key) goes into the
// hash: IDs disambiguate incidents within a partition, while partitions group
// by month. Two reports of the same event filed in different seconds get
// different IDs — dedup only collapses exact resubmissions.
func IncidentID(inc types.Incident) string {
	key := fmt.Sprintf("%s:%s:%s", inc.Location, inc.Crime, Timestamp(inc.CreatedAt))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
