package cache

import (
	"slices"
	"time"
)

// Record is the cached friend list of a single Steam user.
type Record struct {
	// OwnerID is the Steam ID this record describes.
	OwnerID string `json:"ownerID"`
	// LastUpdated is the unix time in seconds of the last successful fetch.
	LastUpdated int64 `json:"lastUpdated"`
	// Friends holds the owner's friend IDs as of the last successful fetch.
	Friends []string `json:"friends"`
}

// HasFriend reports whether friendID is in the record's friend list.
func (r *Record) HasFriend(friendID string) bool {
	if r == nil || friendID == "" {
		return false
	}
	return slices.Contains(r.Friends, friendID)
}

// UpdatedAt returns LastUpdated as a time.Time.
func (r *Record) UpdatedAt() time.Time {
	return time.Unix(r.LastUpdated, 0)
}

// clone returns a deep copy so callers never share the cache's slice.
func (r *Record) clone() *Record {
	return &Record{
		OwnerID:     r.OwnerID,
		LastUpdated: r.LastUpdated,
		Friends:     slices.Clone(r.Friends),
	}
}

// entry is the cache's private view of a resident record.
type entry struct {
	record  Record
	friends map[string]struct{}
	// ready is false while the record is a placeholder or was loaded
	// stale and has not yet been refreshed.
	ready bool
	// pending is true while a fetch for this owner is in flight.
	pending bool
}

func newEntry(record Record) *entry {
	friends := make(map[string]struct{}, len(record.Friends))
	unique := make([]string, 0, len(record.Friends))

	for _, id := range record.Friends {
		if id == "" {
			continue
		}
		if _, ok := friends[id]; ok {
			continue
		}
		friends[id] = struct{}{}
		unique = append(unique, id)
	}
	record.Friends = unique

	return &entry{
		record:  record,
		friends: friends,
	}
}

func (e *entry) hasFriend(friendID string) bool {
	_, ok := e.friends[friendID]
	return ok
}
