package graph

import (
	"math"
	"sort"

	"github.com/tgrcode/transit-atlas/internal/feed"
)

// EdgeKey identifies a directed pair of stops observed within a trip.
type EdgeKey struct {
	From string
	To   string
}

// WindowSegments is the per-window aggregation output of the
// SegmentAggregator (C3): the median travel time and dominant route
// for every observed directed stop pair.
type WindowSegments struct {
	Weights map[EdgeKey]int
	Routes  map[EdgeKey]string
}

type tripState struct {
	lastSequence    int
	lastStop        string
	lastDeparture   int
	lastDepartureOK bool
}

type routeTally struct {
	counts map[string]int
	order  []string
}

// Aggregator streams stop_times events without assuming trip grouping
// and derives per-window directed segments, per spec.md section 4.3.
type Aggregator struct {
	windows  []WindowDef
	tripMeta map[string]feed.Trip
	classes  feed.ServiceClasses

	state   map[string]*tripState
	samples map[string]map[EdgeKey][]int
	tallies map[string]map[EdgeKey]*routeTally
}

// NewAggregator prepares an aggregator for the given windows, trip
// metadata (keyed by trip id) and service classification.
func NewAggregator(windows []WindowDef, trips []feed.Trip, classes feed.ServiceClasses) *Aggregator {
	tripMeta := make(map[string]feed.Trip, len(trips))
	for _, t := range trips {
		tripMeta[t.ID] = t
	}

	samples := make(map[string]map[EdgeKey][]int, len(windows))
	tallies := make(map[string]map[EdgeKey]*routeTally, len(windows))
	for _, w := range windows {
		samples[w.Window.ID] = map[EdgeKey][]int{}
		tallies[w.Window.ID] = map[EdgeKey]*routeTally{}
	}

	return &Aggregator{
		windows:  windows,
		tripMeta: tripMeta,
		classes:  classes,
		state:    map[string]*tripState{},
		samples:  samples,
		tallies:  tallies,
	}
}

// Process consumes one stop_times event. It is the sole entry point
// StreamStopTimes drives; state is kept per trip id and reset on any
// ordering violation, per the design note in spec.md section 9.
func (a *Aggregator) Process(ev feed.StopTimeEvent) {
	if !ev.SequenceOK {
		delete(a.state, ev.TripID)
		return
	}

	prior, hasPrior := a.state[ev.TripID]

	if hasPrior && ev.Sequence <= prior.lastSequence {
		// Out-of-order or duplicate: the chain cannot be trusted.
		delete(a.state, ev.TripID)
		return
	}

	if hasPrior && ev.Sequence == prior.lastSequence+1 {
		if prior.lastDepartureOK && ev.ArrivalOK {
			seconds := ev.Arrival - prior.lastDeparture
			if seconds > 0 && seconds < 3600 {
				a.emit(ev.TripID, prior.lastStop, ev.StopID, prior.lastDeparture, seconds)
			}
		}
	}

	if !ev.DepartureOK {
		delete(a.state, ev.TripID)
		return
	}

	a.state[ev.TripID] = &tripState{
		lastSequence:    ev.Sequence,
		lastStop:        ev.StopID,
		lastDeparture:   ev.Departure,
		lastDepartureOK: true,
	}
}

func (a *Aggregator) emit(tripID, from, to string, departure, seconds int) {
	trip, ok := a.tripMeta[tripID]
	if !ok {
		return
	}

	key := EdgeKey{From: from, To: to}

	for _, w := range a.windows {
		if !w.Window.Contains(departure) {
			continue
		}

		var allowed map[string]bool
		switch w.Service {
		case ServiceWeekday:
			allowed = a.classes.Weekday
		case ServiceWeekend:
			allowed = a.classes.Weekend
		}
		if !feed.AllowsTrip(allowed, trip.ServiceID) {
			continue
		}

		a.samples[w.Window.ID][key] = append(a.samples[w.Window.ID][key], seconds)

		tally, ok := a.tallies[w.Window.ID][key]
		if !ok {
			tally = &routeTally{counts: map[string]int{}}
			a.tallies[w.Window.ID][key] = tally
		}
		if _, seen := tally.counts[trip.RouteID]; !seen {
			tally.order = append(tally.order, trip.RouteID)
		}
		tally.counts[trip.RouteID]++
	}
}

// Finish reduces the accumulated samples/tallies into the per-window
// segment maps: median seconds (rounded) and the dominant route.
func (a *Aggregator) Finish() map[string]WindowSegments {
	out := make(map[string]WindowSegments, len(a.windows))

	for _, w := range a.windows {
		weights := make(map[EdgeKey]int, len(a.samples[w.Window.ID]))
		for key, values := range a.samples[w.Window.ID] {
			weights[key] = medianRounded(values)
		}

		routes := make(map[EdgeKey]string, len(a.tallies[w.Window.ID]))
		for key, tally := range a.tallies[w.Window.ID] {
			routes[key] = dominantRoute(tally)
		}

		out[w.Window.ID] = WindowSegments{Weights: weights, Routes: routes}
	}

	return out
}

func medianRounded(values []int) int {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}

	avg := float64(sorted[n/2-1]+sorted[n/2]) / 2.0
	return int(math.Floor(avg + 0.5))
}

func dominantRoute(tally *routeTally) string {
	best := ""
	bestCount := -1
	for _, route := range tally.order {
		c := tally.counts[route]
		if c > bestCount {
			bestCount = c
			best = route
		}
	}
	return best
}
