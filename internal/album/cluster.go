package album

import (
	"sort"
	"time"
)

// protoCluster is the mutable working form used while merging. Members
// always carry both position and timestamp, so the centroid sums and the
// time span stay exact under O(1) merges.
type protoCluster struct {
	photos []Photo
	sumLat float64
	sumLon float64
	start  time.Time
	end    time.Time
}

func newProtoCluster(p Photo) *protoCluster {
	return &protoCluster{
		photos: []Photo{p},
		sumLat: p.Position.Lat,
		sumLon: p.Position.Lon,
		start:  *p.TakenAt,
		end:    *p.TakenAt,
	}
}

func (c *protoCluster) centroid() Position {
	n := float64(len(c.photos))
	return Position{Lat: c.sumLat / n, Lon: c.sumLon / n}
}

// absorb merges other into c. Callers guarantee other starts no earlier
// than c does.
func (c *protoCluster) absorb(other *protoCluster) {
	c.photos = append(c.photos, other.photos...)
	c.sumLat += other.sumLat
	c.sumLon += other.sumLon
	if other.end.After(c.end) {
		c.end = other.end
	}
}

// ClusterPhotos partitions photos into location/time clusters. Photos with
// both a position and a timestamp are clustered by divide and conquer over
// time order; photos missing either become singleton clusters and are never
// merged by proximity they do not have. Every input photo lands in exactly
// one cluster.
//
// Determinism: cluster ids ascend by earliest member timestamp; clusters
// with no timestamp at all sort last by their first member id.
func ClusterPhotos(photos []Photo, distanceKm, timeHours float64) []Cluster {
	var timed, loners []Photo
	for _, p := range photos {
		if p.Position != nil && p.TakenAt != nil {
			timed = append(timed, p)
		} else {
			loners = append(loners, p)
		}
	}

	// Sort by capture time, id as tie-break, so the split points and the
	// resulting membership do not depend on input iteration order.
	sort.Slice(timed, func(i, j int) bool {
		if !timed[i].TakenAt.Equal(*timed[j].TakenAt) {
			return timed[i].TakenAt.Before(*timed[j].TakenAt)
		}
		return timed[i].ID < timed[j].ID
	})
	sort.Slice(loners, func(i, j int) bool { return loners[i].ID < loners[j].ID })

	protos := clusterRange(timed, distanceKm, timeHours)

	clusters := make([]Cluster, 0, len(protos)+len(loners))
	for _, pc := range protos {
		ids := make([]string, len(pc.photos))
		for i, p := range pc.photos {
			ids[i] = p.ID
		}
		centroid := pc.centroid()
		start, end := pc.start, pc.end
		clusters = append(clusters, Cluster{
			PhotoIDs: ids,
			Centroid: &centroid,
			Start:    &start,
			End:      &end,
		})
	}
	for _, p := range loners {
		clusters = append(clusters, singletonCluster(p))
	}

	// Clusters with a time span order by it, interleaving timestamped
	// singletons with merged clusters; the fully undated ones go last.
	sort.SliceStable(clusters, func(i, j int) bool {
		a, b := clusters[i], clusters[j]
		switch {
		case a.Start != nil && b.Start != nil:
			if !a.Start.Equal(*b.Start) {
				return a.Start.Before(*b.Start)
			}
			return a.PhotoIDs[0] < b.PhotoIDs[0]
		case a.Start != nil:
			return true
		case b.Start != nil:
			return false
		default:
			return a.PhotoIDs[0] < b.PhotoIDs[0]
		}
	})
	for i := range clusters {
		clusters[i].ID = i
	}
	return clusters
}

// clusterRange recursively clusters a time-sorted slice. After clustering
// each half independently it reconciles the seam: the last cluster of the
// left half and the first of the right half merge when their centroids are
// within distanceKm and the time gap between them is within timeHours.
// Repeated merges during recursion unwinding coalesce long runs of mutually
// close clusters.
func clusterRange(photos []Photo, distanceKm, timeHours float64) []*protoCluster {
	if len(photos) == 0 {
		return nil
	}
	if len(photos) == 1 {
		return []*protoCluster{newProtoCluster(photos[0])}
	}

	mid := len(photos) / 2
	left := clusterRange(photos[:mid], distanceKm, timeHours)
	right := clusterRange(photos[mid:], distanceKm, timeHours)

	l := left[len(left)-1]
	r := right[0]
	if HaversineKm(l.centroid(), r.centroid()) <= distanceKm &&
		HoursApart(r.start, l.end) <= timeHours {
		l.absorb(r)
		right = right[1:]
	}
	return append(left, right...)
}

func singletonCluster(p Photo) Cluster {
	c := Cluster{PhotoIDs: []string{p.ID}}
	if p.Position != nil {
		pos := *p.Position
		c.Centroid = &pos
	}
	if p.TakenAt != nil {
		t := *p.TakenAt
		c.Start = &t
		c.End = &t
	}
	return c
}
