package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"caregame/internal/config"
	"caregame/internal/models"
)

// LocalSessionCache is the device-local session cache. It holds sessions for
// every child on the device.
type LocalSessionCache interface {
	LoadAll() ([]models.SessionRecord, error)
	AppendOne(record models.SessionRecord) error
}

// RemoteSessionStore is the multi-device session store, scoped per child
type RemoteSessionStore interface {
	LoadAll(ctx context.Context, childID string) ([]models.SessionRecord, error)
	AppendOne(ctx context.Context, childID string, record models.SessionRecord) (models.SessionRecord, error)
}

// ProfileStore looks up child profiles. Get returns nil, nil for unknown children.
type ProfileStore interface {
	Get(ctx context.Context, name string) (*models.ChildProfile, error)
}

// DuplicatePolicy picks which copy survives a fingerprint collision
type DuplicatePolicy string

const (
	// LocalFirst keeps the first copy in local-then-remote order
	LocalFirst DuplicatePolicy = config.PolicyLocalFirst
	// LatestRevision keeps the copy with the highest store revision
	LatestRevision DuplicatePolicy = config.PolicyLatestRevision
)

// ParseDuplicatePolicy maps a configuration value to a policy
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case LocalFirst, "":
		return LocalFirst, nil
	case LatestRevision:
		return LatestRevision, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// SessionSet is the reconciled session list for one child, newest first
type SessionSet struct {
	ChildID           string
	Sessions          []models.SessionRecord
	LocalUnavailable  bool
	RemoteUnavailable bool
}

// ReconcileService merges the local cache and remote store into one session list
type ReconcileService struct {
	local  LocalSessionCache
	remote RemoteSessionStore
	policy DuplicatePolicy
}

// NewReconcileService creates a reconcile service. Either store may be nil.
func NewReconcileService(local LocalSessionCache, remote RemoteSessionStore, policy DuplicatePolicy) *ReconcileService {
	if policy == "" {
		policy = LocalFirst
	}
	return &ReconcileService{
		local:  local,
		remote: remote,
		policy: policy,
	}
}

// Sessions loads both sources for a child and reconciles them. A failing
// source contributes no sessions for this pass and is flagged on the result.
func (s *ReconcileService) Sessions(ctx context.Context, childID string) SessionSet {
	childID = models.NormalizeChildID(childID)
	set := SessionSet{ChildID: childID}

	var local, remote []models.SessionRecord
	if s.local != nil {
		all, err := s.local.LoadAll()
		if err != nil {
			log.Printf("Local session cache unavailable for %s: %v", childID, err)
			set.LocalUnavailable = true
		} else {
			local = all
		}
	}
	if s.remote != nil {
		recs, err := s.remote.LoadAll(ctx, childID)
		if err != nil {
			log.Printf("Remote session store unavailable for %s: %v", childID, err)
			set.RemoteUnavailable = true
		} else {
			remote = recs
		}
	}

	set.Sessions = MergeSessions(childID, local, remote, s.policy)
	return set
}

// MergeSessions filters local to the child, concatenates local then remote,
// drops fingerprint duplicates by policy and sorts newest first. Records
// with equal or unparseable timestamps keep their merge order.
func MergeSessions(childID string, local, remote []models.SessionRecord, policy DuplicatePolicy) []models.SessionRecord {
	childID = models.NormalizeChildID(childID)

	combined := make([]models.SessionRecord, 0, len(local)+len(remote))
	for _, rec := range local {
		rec = rec.Normalize()
		if rec.ChildID != childID {
			continue
		}
		rec.Revision = 0
		combined = append(combined, rec)
	}
	for _, rec := range remote {
		rec = rec.Normalize()
		rec.ChildID = childID
		combined = append(combined, rec)
	}

	merged := make([]models.SessionRecord, 0, len(combined))
	seen := make(map[string]int, len(combined))
	for _, rec := range combined {
		key := rec.Fingerprint()
		idx, dup := seen[key]
		if !dup {
			seen[key] = len(merged)
			merged = append(merged, rec)
			continue
		}
		if policy == LatestRevision && rec.Revision > merged[idx].Revision {
			merged[idx] = rec
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time().After(merged[j].Time())
	})
	return merged
}
