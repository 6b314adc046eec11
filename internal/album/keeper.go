package album

import "fmt"

// SelectKeepers populates the keeper of every group: the member with the
// strictly greatest sharpness score wins; on a tie the lexicographically
// smallest id does. The comparison is order-independent, so re-running over
// reordered input always yields the same keeper. The input slice is not
// modified.
func SelectKeepers(groups []DuplicateGroup, photos []Photo) ([]DuplicateGroup, error) {
	sharpness := make(map[string]float64, len(photos))
	for _, p := range photos {
		sharpness[p.ID] = p.Sharpness
	}

	out := make([]DuplicateGroup, len(groups))
	for i, g := range groups {
		keeper := ""
		best := 0.0
		for _, id := range g.PhotoIDs {
			s, ok := sharpness[id]
			if !ok {
				return nil, fmt.Errorf("group %d references unknown photo %q", g.ID, id)
			}
			if keeper == "" || s > best || (s == best && id < keeper) {
				keeper = id
				best = s
			}
		}
		g.KeeperID = keeper
		out[i] = g
	}
	return out, nil
}
