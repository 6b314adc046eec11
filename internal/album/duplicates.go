package album

import (
	"fmt"
	"sort"

	"github.com/yp-ac/album-maker/internal/fingerprint"
)

// unionFind is a plain disjoint-set forest with path halving and union by
// size, enough for connected-components extraction without a graph library.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

// FindDuplicateGroups builds a similarity graph over the entire input and
// returns its connected components as duplicate groups, keeper not yet
// assigned. Two photos are adjacent when the Hamming distance between their
// fingerprints is at most thresholdBits, so grouping is transitive: a chain
// of near-identical shots lands in one group even when its endpoints differ
// by more than the threshold. A photo with no near-duplicate forms a
// singleton group.
//
// Edge construction is O(n²) over one processing batch. Group ids ascend
// by smallest member id.
func FindDuplicateGroups(photos []Photo, thresholdBits int) ([]DuplicateGroup, error) {
	bits := make([]uint64, len(photos))
	for i, p := range photos {
		b, err := fingerprint.Parse(p.Fingerprint)
		if err != nil {
			return nil, fmt.Errorf("photo %q: %w", p.ID, ErrInvalidFingerprint)
		}
		bits[i] = b
	}

	uf := newUnionFind(len(photos))
	for i := 0; i < len(photos); i++ {
		for j := i + 1; j < len(photos); j++ {
			if fingerprint.HammingDistance(bits[i], bits[j]) <= thresholdBits {
				uf.union(i, j)
			}
		}
	}

	members := make(map[int][]string)
	for i, p := range photos {
		root := uf.find(i)
		members[root] = append(members[root], p.ID)
	}

	groups := make([]DuplicateGroup, 0, len(members))
	for _, ids := range members {
		sort.Strings(ids)
		groups = append(groups, DuplicateGroup{PhotoIDs: ids})
	}
	// Map iteration order is random; normalize before assigning ids.
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].PhotoIDs[0] < groups[j].PhotoIDs[0]
	})
	for i := range groups {
		groups[i].ID = i
	}
	return groups, nil
}
