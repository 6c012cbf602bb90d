package course

import "sort"

// Available is the read-only view of a Pool handed to rule evaluators.
type Available interface {
	Has(id string) bool
	Credits(id string) float64
}

// Pool holds the completed courses not yet claimed by a requirement group.
//
// A Pool belongs to exactly one evaluation pass. Removal is permanent: once a
// course is credited to a group it never returns, so a course counts toward at
// most one group. Pool is not safe for concurrent use.
type Pool struct {
	remaining map[string]struct{}
	credits   map[string]float64
}

// NewPool seeds a pool with every completed record. When an identifier
// repeats, the greatest credit value wins so the result does not depend on
// row order.
func NewPool(records []Record) *Pool {
	p := &Pool{
		remaining: make(map[string]struct{}, len(records)),
		credits:   make(map[string]float64, len(records)),
	}
	for _, rec := range records {
		if !rec.Completed || rec.ID == "" {
			continue
		}
		p.remaining[rec.ID] = struct{}{}
		if prev, ok := p.credits[rec.ID]; !ok || rec.Credits > prev {
			p.credits[rec.ID] = rec.Credits
		}
	}
	return p
}

// Has reports whether id is still unclaimed.
func (p *Pool) Has(id string) bool {
	_, ok := p.remaining[id]
	return ok
}

// Credits returns the credit value recorded for id, or 0 if unknown.
// Credits stay readable after removal.
func (p *Pool) Credits(id string) float64 {
	return p.credits[id]
}

// Remove claims the given identifiers. Unknown identifiers are ignored.
func (p *Pool) Remove(ids ...string) {
	for _, id := range ids {
		delete(p.remaining, id)
	}
}

// Len returns the number of unclaimed courses.
func (p *Pool) Len() int {
	return len(p.remaining)
}

// Remaining returns the unclaimed identifiers in sorted order.
func (p *Pool) Remaining() []string {
	ids := make([]string, 0, len(p.remaining))
	for id := range p.remaining {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
