package relay

import (
	"sync"
	"time"
)

// DefaultSeenGroupTTL bounds how long a notified album key is remembered.
const DefaultSeenGroupTTL = time.Minute

// SeenGroups remembers album keys that already produced a notification.
type SeenGroups struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	seen map[AlbumKey]time.Time
}

// NewSeenGroups returns an empty set whose entries expire after ttl.
func NewSeenGroups(ttl time.Duration) *SeenGroups {
	if ttl <= 0 {
		ttl = DefaultSeenGroupTTL
	}
	return &SeenGroups{
		ttl:  ttl,
		now:  time.Now,
		seen: make(map[AlbumKey]time.Time),
	}
}

// MarkFirst records key and reports whether it was not seen within the TTL.
func (s *SeenGroups) MarkFirst(key AlbumKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, at := range s.seen {
		if now.Sub(at) >= s.ttl {
			delete(s.seen, k)
		}
	}
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = now
	return true
}

// Len returns the number of remembered keys.
func (s *SeenGroups) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
