package graph

import "container/heap"

// Result is a single-source shortest-path solution: per-destination
// distance in seconds and the route id of the first edge leaving the
// source on that destination's shortest path (nil if the first edge
// is a transfer or the destination is the source itself).
type Result struct {
	Distance   map[string]int
	FirstRoute map[string]*string
}

// pqItem is one entry in the Dijkstra frontier.
type pqItem struct {
	id   string
	dist int
}

// priorityQueue orders by (distance, id) so pops are deterministic
// under ties, per spec.md section 4.5.
type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].id < pq[j].id
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)   { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// Solve runs Dijkstra from source over g. transferPenalty is added to
// the weight of every edge whose Route is nil (a transfer edge); pass
// 0 for the unpenalized metric, and the configured
// transfer_penalty_minutes (in seconds) for the penalized variant
// used by the transfer-penalized harmonic centrality (section 4.6).
func Solve(g StopGraph, source string, transferPenalty int) Result {
	dist := map[string]int{source: 0}
	firstRoute := map[string]*string{}
	visited := map[string]bool{}

	pq := &priorityQueue{{id: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		for _, e := range g[cur.id] {
			weight := e.Seconds
			if e.Route == nil {
				weight += transferPenalty
			}

			next := cur.dist + weight
			if existing, ok := dist[e.To]; ok && existing <= next {
				continue
			}

			dist[e.To] = next

			if cur.id == source {
				firstRoute[e.To] = e.Route
			} else if fr, ok := firstRoute[cur.id]; ok {
				firstRoute[e.To] = fr
			} else {
				firstRoute[e.To] = nil
			}

			heap.Push(pq, pqItem{id: e.To, dist: next})
		}
	}

	delete(dist, source)
	delete(firstRoute, source)

	return Result{Distance: dist, FirstRoute: firstRoute}
}
