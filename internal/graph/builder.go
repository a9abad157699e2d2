package graph

import (
	"sort"

	"github.com/tgrcode/transit-atlas/internal/feed"
)

// Edge is one outgoing connection from a stop: a travel time in
// seconds and, for transit edges, the dominant route id. Route is nil
// for transfer edges, per spec.md section 3 (StopGraph).
type Edge struct {
	To      string
	Seconds int
	Route   *string
}

// StopGraph is a map from stop id to its outgoing edges.
type StopGraph map[string][]Edge

// BuildStopGraph assembles a window's StopGraph from its segments and
// the complex map (stop id -> parent station id, for stops that have
// one), per spec.md section 4.4. Transfer edges are added for every
// ordered pair of distinct stops sharing a parent, even when the
// complex carries no transit edges at all.
func BuildStopGraph(segments WindowSegments, stopIDs []string, parentOf map[string]string, transferSeconds int) StopGraph {
	g := make(StopGraph)
	for _, id := range stopIDs {
		g[id] = nil
	}

	keys := make([]EdgeKey, 0, len(segments.Weights))
	for k := range segments.Weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From < keys[j].From
		}
		return keys[i].To < keys[j].To
	})

	for _, k := range keys {
		weight := segments.Weights[k]
		var route *string
		if r, ok := segments.Routes[k]; ok {
			rv := r
			route = &rv
		}
		g[k.From] = append(g[k.From], Edge{To: k.To, Seconds: weight, Route: route})
	}

	complexes := make(map[string][]string)
	for _, id := range stopIDs {
		parent, ok := parentOf[id]
		if !ok {
			continue
		}
		complexes[parent] = append(complexes[parent], id)
	}

	complexIDs := make([]string, 0, len(complexes))
	for id := range complexes {
		complexIDs = append(complexIDs, id)
	}
	sort.Strings(complexIDs)

	for _, parent := range complexIDs {
		members := append([]string(nil), complexes[parent]...)
		sort.Strings(members)

		for _, u := range members {
			for _, v := range members {
				if u == v {
					continue
				}
				g[u] = append(g[u], Edge{To: v, Seconds: transferSeconds, Route: nil})
			}
		}
	}

	return g
}

// ParentMap builds a stop-id -> parent-station-id map from a feed's
// stop list, keeping only stops that declared a parent.
func ParentMap(stops []feed.Stop) map[string]string {
	out := make(map[string]string)
	for _, s := range stops {
		if s.HasParentStation {
			out[s.ID] = s.ParentStation
		}
	}
	return out
}

// StopIDs returns every stop id in a feed, in file order.
func StopIDs(stops []feed.Stop) []string {
	out := make([]string, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.ID)
	}
	return out
}
