package cache

import "context"

// Mutation kinds understood by the Invalidator.
type Mutation string

const (
	// MutationReport covers create/update/delete/verify of a report.
	MutationReport Mutation = "report"
	// MutationDisaster covers update/delete of a disaster record.
	MutationDisaster Mutation = "disaster"
)

// keyForMutation is the static mutation -> derived-key map. One mutation kind
// invalidates exactly one key pattern; resource mutations are absent because
// resource lists are never cached.
var keyForMutation = map[Mutation]func(disasterID string) string{
	MutationReport:   SocialMediaKey,
	MutationDisaster: OfficialUpdatesKey,
}

// Invalidator maps domain mutations to the cache keys they stale out.
// Deletion inherits the cache's best-effort semantics, so invalidation can
// never fail the triggering write. It must run before the write's response is
// sent, so the next reader cannot observe the pre-mutation cached value.
type Invalidator struct {
	cache Cache
}

func NewInvalidator(c Cache) *Invalidator {
	return &Invalidator{cache: c}
}

// Invalidate erases the cache entry derived from the given mutation on the
// given disaster. Unknown mutation kinds are a no-op.
func (i *Invalidator) Invalidate(ctx context.Context, m Mutation, disasterID string) {
	keyFn, ok := keyForMutation[m]
	if !ok {
		return
	}
	i.cache.Delete(ctx, keyFn(disasterID))
}
