// Package idgen mints the IDs for history records and pending offers
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator returns a new unique ID per call
type Generator interface {
	Generate() string
}

// UUID yields time-ordered v7 UUIDs, so history IDs sort in creation order.
// A non-empty prefix is joined with an underscore: "hist_0190..."
type UUID struct {
	prefix string
}

func NewUUID(prefix string) *UUID {
	return &UUID{prefix: prefix}
}

func (g *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		// only fails when crypto/rand does
		id = uuid.New()
	}
	return join(g.prefix, id.String())
}

// Sequential yields prefix_1, prefix_2, ... and is safe for concurrent use.
// Tests use it for predictable IDs.
type Sequential struct {
	prefix string
	n      atomic.Uint64
}

func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

func (g *Sequential) Generate() string {
	return join(g.prefix, strconv.FormatUint(g.n.Add(1), 10))
}

func join(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
