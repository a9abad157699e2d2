package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tgrcode/transit-atlas/internal/feed"
)

func windowDefs() []WindowDef {
	return []WindowDef{
		{Window: Window{ID: "weekday_am", Start: 7 * 3600, End: 10 * 3600}, Service: ServiceWeekday},
	}
}

func TestAggregatorEmitsOneSegmentForTwoStopTrip(t *testing.T) {
	trips := []feed.Trip{{ID: "T1", RouteID: "R1", ServiceID: "WKDY"}}
	classes := feed.ServiceClasses{Weekday: map[string]bool{"WKDY": true}}

	a := NewAggregator(windowDefs(), trips, classes)
	a.Process(feed.StopTimeEvent{TripID: "T1", StopID: "S1", Sequence: 1, SequenceOK: true, Departure: 7 * 3600, DepartureOK: true, Arrival: 7 * 3600, ArrivalOK: true})
	a.Process(feed.StopTimeEvent{TripID: "T1", StopID: "S2", Sequence: 2, SequenceOK: true, Arrival: 7*3600 + 300, ArrivalOK: true, Departure: 7*3600 + 300, DepartureOK: true})

	segs := a.Finish()["weekday_am"]
	require.Equal(t, 300, segs.Weights[EdgeKey{From: "S1", To: "S2"}])
	require.Equal(t, "R1", segs.Routes[EdgeKey{From: "S1", To: "S2"}])
}

func TestAggregatorResetsChainOnOutOfOrderSequence(t *testing.T) {
	trips := []feed.Trip{{ID: "T1", RouteID: "R1", ServiceID: "WKDY"}}
	classes := feed.ServiceClasses{Weekday: map[string]bool{"WKDY": true}}

	a := NewAggregator(windowDefs(), trips, classes)
	a.Process(feed.StopTimeEvent{TripID: "T1", StopID: "S1", Sequence: 3, SequenceOK: true, Departure: 7 * 3600, DepartureOK: true, Arrival: 7 * 3600, ArrivalOK: true})
	// out of order: sequence 2 follows sequence 3
	a.Process(feed.StopTimeEvent{TripID: "T1", StopID: "S2", Sequence: 2, SequenceOK: true, Arrival: 7*3600 + 60, ArrivalOK: true, Departure: 7*3600 + 60, DepartureOK: true})
	// chain should have reset, so sequence 3 again starts fresh
	a.Process(feed.StopTimeEvent{TripID: "T1", StopID: "S3", Sequence: 3, SequenceOK: true, Arrival: 7*3600 + 120, ArrivalOK: true, Departure: 7*3600 + 120, DepartureOK: true})

	segs := a.Finish()["weekday_am"]
	require.Empty(t, segs.Weights)
}

func TestAggregatorDropsImplausibleSegmentDurations(t *testing.T) {
	trips := []feed.Trip{{ID: "T1", RouteID: "R1", ServiceID: "WKDY"}}
	classes := feed.ServiceClasses{Weekday: map[string]bool{"WKDY": true}}

	a := NewAggregator(windowDefs(), trips, classes)
	a.Process(feed.StopTimeEvent{TripID: "T1", StopID: "S1", Sequence: 1, SequenceOK: true, Departure: 7 * 3600, DepartureOK: true})
	// 3600+ seconds gap: not a plausible single hop
	a.Process(feed.StopTimeEvent{TripID: "T1", StopID: "S2", Sequence: 2, SequenceOK: true, Arrival: 7*3600 + 3600, ArrivalOK: true, Departure: 7*3600 + 3600, DepartureOK: true})

	segs := a.Finish()["weekday_am"]
	require.Empty(t, segs.Weights)
}

func TestMedianRoundedHalfUp(t *testing.T) {
	require.Equal(t, 5, medianRounded([]int{5}))
	require.Equal(t, 5, medianRounded([]int{4, 6}))
	require.Equal(t, 5, medianRounded([]int{4, 5}))
}

func TestDominantRouteStableInsertionOrder(t *testing.T) {
	tally := &routeTally{counts: map[string]int{"A": 2, "B": 2}, order: []string{"A", "B"}}
	require.Equal(t, "A", dominantRoute(tally))
}
