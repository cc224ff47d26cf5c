package neighbors

// UniquePairs is the canonical unordered form of a neighbor relation: each
// {i,j} pair appears exactly once regardless of how many times (i,j) or
// (j,i) occurred in the source relation. Pair order within a record is
// canonical (Ref < Neighbor) and must be treated as arbitrary by consumers.
type UniquePairs struct {
	Pairs []Pair
}

// Len returns the number of unique unordered pairs.
func (u *UniquePairs) Len() int { return len(u.Pairs) }

// Dedupe canonicalizes each ordered pair of r (smaller index first), packs
// it into a single map key and keeps the first occurrence, preserving
// first-seen order. Near-linear in the relation size; the relation can reach
// n*k pairs, so quadratic duplicate scans are off the table.
func Dedupe(r *Relation) *UniquePairs {
	seen := make(map[int64]struct{}, len(r.Pairs))
	out := make([]Pair, 0, len(r.Pairs))

	for _, p := range r.Pairs {
		i, j := p.Ref, p.Neighbor
		if i > j {
			i, j = j, i
		}
		key := int64(i)<<32 | int64(j)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Pair{Ref: i, Neighbor: j})
	}

	return &UniquePairs{Pairs: out}
}
