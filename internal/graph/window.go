// Package graph builds the per-window stop-level multigraph (C3, C4)
// and runs shortest-path queries over it (C5), per spec.md section 4.
package graph

// Window is a named half-open interval of seconds-since-midnight that
// selects which departures contribute to a profile's matrix, per
// spec.md section 3 (TimeWindow) and the GLOSSARY.
type Window struct {
	ID    string
	Label string
	Start int
	End   int
}

// Contains reports whether secs falls in [Start, End).
func (w Window) Contains(secs int) bool {
	return secs >= w.Start && secs < w.End
}

// ServiceClass identifies which service-class allowed-set a window draws
// trips from: weekday windows read the weekday-only service set,
// weekend windows read the weekend-only set.
type ServiceClass int

const (
	ServiceWeekday ServiceClass = iota
	ServiceWeekend
)

// WindowDef pairs a Window with the service class that gates it.
type WindowDef struct {
	Window  Window
	Service ServiceClass
}

// DefaultWindows are the three fixed windows of spec.md section 3.
var DefaultWindows = []WindowDef{
	{Window: Window{ID: "weekday_am", Label: "Weekday AM", Start: 7 * 3600, End: 10 * 3600}, Service: ServiceWeekday},
	{Window: Window{ID: "weekday_pm", Label: "Weekday PM", Start: 16 * 3600, End: 19 * 3600}, Service: ServiceWeekday},
	{Window: Window{ID: "weekend", Label: "Weekend", Start: 10 * 3600, End: 22 * 3600}, Service: ServiceWeekend},
}
