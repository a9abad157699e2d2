// Package feed streams a zipped transit feed archive into typed
// records, per spec.md component C1 (FeedReader) and C2 (ServiceFilter).
package feed

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tgrcode/transit-atlas/internal/atlaserr"
)

// Stop is a single stop/station row from stops.txt.
type Stop struct {
	ID              string
	Name            string
	Lat             float64
	Lon             float64
	ParentStation   string
	HasParentStation bool
}

// Route is a row from routes.txt.
type Route struct {
	ID           string
	ShortName    string
	Color        string
	TextColor    string
}

// Trip is a row from trips.txt.
type Trip struct {
	ID        string
	RouteID   string
	ServiceID string
}

// CalendarRow is a row from calendar.txt.
type CalendarRow struct {
	ServiceID string
	Weekday   [7]bool // Monday=0 ... Sunday=6
}

// StopTimeEvent is a single stop_times.txt row, with unparsable fields
// reported via the ArrivalOK/DepartureOK/SequenceOK flags rather than
// failing the whole read: malformed rows are absorbed locally per
// spec.md section 7.
type StopTimeEvent struct {
	TripID      string
	StopID      string
	Sequence    int
	SequenceOK  bool
	Arrival     int
	ArrivalOK   bool
	Departure   int
	DepartureOK bool
}

// Feed holds the eagerly-loaded small tables (stops, trips, routes,
// calendar) plus a handle to stream the large stop_times table.
type Feed struct {
	Stops    []Stop
	Trips    []Trip
	Routes   []Route
	Calendar []CalendarRow

	zipReader    *zip.Reader
	stopTimesName string
}

// requiredTables per spec.md section 4.1.
var requiredTables = []string{"stops.txt", "trips.txt", "stop_times.txt"}

// Load opens the archive, reads the small tables fully, and validates
// that every required table is present. stop_times.txt is not read
// here; call StreamStopTimes to walk it in file order.
func Load(archive []byte) (*Feed, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening zip: %v", atlaserr.ErrIOFailure, err)
	}

	names := map[string]string{}
	for _, f := range zr.File {
		// Feeds are sometimes nested one directory deep; match on the
		// base file name the same way stops/trips/stop_times are named
		// in spec.md section 6.
		base := f.Name
		if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
			base = base[idx+1:]
		}
		names[base] = f.Name
	}

	for _, table := range requiredTables {
		if _, ok := names[table]; !ok {
			return nil, fmt.Errorf("%w: %s", atlaserr.ErrFeedMissingTable, table)
		}
	}

	feed := &Feed{zipReader: zr}

	if name, ok := names["stops.txt"]; ok {
		rows, err := readTable(zr, name)
		if err != nil {
			return nil, err
		}
		feed.Stops = parseStops(rows)
	}

	if name, ok := names["trips.txt"]; ok {
		rows, err := readTable(zr, name)
		if err != nil {
			return nil, err
		}
		feed.Trips = parseTrips(rows)
	}

	if name, ok := names["routes.txt"]; ok {
		rows, err := readTable(zr, name)
		if err != nil {
			return nil, err
		}
		feed.Routes = parseRoutes(rows)
	}

	if name, ok := names["calendar.txt"]; ok {
		rows, err := readTable(zr, name)
		if err != nil {
			return nil, err
		}
		feed.Calendar = parseCalendar(rows)
	}

	if name, ok := names["stop_times.txt"]; ok {
		feed.stopTimesName = name
	}

	return feed, nil
}

// tableRows is a parsed CSV table: a header->index map and the
// remaining data rows.
type tableRows struct {
	index map[string]int
	rows  [][]string
}

func (t tableRows) get(row []string, key string) string {
	i, ok := t.index[key]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// readTable loads one of the small tables (stops/trips/routes/calendar)
// fully into memory, unlike StreamStopTimes below which streams
// stop_times.txt directly off the zip entry instead of buffering it.
func readTable(zr *zip.Reader, name string) (tableRows, error) {
	contents, err := readZipEntry(zr, name)
	if err != nil {
		return tableRows{}, fmt.Errorf("%w: %v", atlaserr.ErrIOFailure, err)
	}

	reader := csv.NewReader(stripBOM(bytes.NewReader(contents)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return tableRows{index: map[string]int{}, rows: nil}, nil
	}
	if err != nil {
		return tableRows{}, fmt.Errorf("%w: reading %s header: %v", atlaserr.ErrIOFailure, name, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row in a small table is dropped, not fatal;
			// only stop_times applies the stricter per-row state
			// machine that resets a chain (section 4.3).
			continue
		}
		rows = append(rows, row)
	}

	return tableRows{index: index, rows: rows}, nil
}

// readZipEntry fully reads the named entry out of an open zip reader.
func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	var chosen *zip.File
	for _, f := range zr.File {
		if f.Name == name {
			chosen = f
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("could not find file %s in zip", name)
	}

	rc, err := chosen.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// stripBOM drops a UTF-8 byte-order mark if present, per spec.md 4.1.
func stripBOM(r io.Reader) io.Reader {
	br := bufioPeeker{r}
	return br.stripped()
}

type bufioPeeker struct{ io.Reader }

func (b bufioPeeker) stripped() io.Reader {
	buf := make([]byte, 3)
	n, _ := io.ReadFull(b.Reader, buf)
	if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return b.Reader
	}
	return io.MultiReader(bytes.NewReader(buf[:n]), b.Reader)
}

func parseStops(t tableRows) []Stop {
	out := make([]Stop, 0, len(t.rows))
	for _, row := range t.rows {
		lat, _ := strconv.ParseFloat(t.get(row, "stop_lat"), 64)
		lon, _ := strconv.ParseFloat(t.get(row, "stop_lon"), 64)
		parent := t.get(row, "parent_station")
		out = append(out, Stop{
			ID:               t.get(row, "stop_id"),
			Name:             t.get(row, "stop_name"),
			Lat:              lat,
			Lon:              lon,
			ParentStation:    parent,
			HasParentStation: parent != "",
		})
	}
	return out
}

func parseTrips(t tableRows) []Trip {
	out := make([]Trip, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, Trip{
			ID:        t.get(row, "trip_id"),
			RouteID:   t.get(row, "route_id"),
			ServiceID: t.get(row, "service_id"),
		})
	}
	return out
}

func parseRoutes(t tableRows) []Route {
	out := make([]Route, 0, len(t.rows))
	for _, row := range t.rows {
		short := t.get(row, "route_short_name")
		if short == "" {
			short = t.get(row, "route_long_name")
		}
		out = append(out, Route{
			ID:        t.get(row, "route_id"),
			ShortName: short,
			Color:     t.get(row, "route_color"),
			TextColor: t.get(row, "route_text_color"),
		})
	}
	return out
}

func parseCalendar(t tableRows) []CalendarRow {
	dayKeys := [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	out := make([]CalendarRow, 0, len(t.rows))
	for _, row := range t.rows {
		var week [7]bool
		for i, key := range dayKeys {
			week[i] = t.get(row, key) == "1"
		}
		out = append(out, CalendarRow{
			ServiceID: t.get(row, "service_id"),
			Weekday:   week,
		})
	}
	return out
}

// StreamStopTimes walks stop_times.txt in file order (no assumption of
// trip grouping, per spec.md 4.1/4.3/9) calling fn once per row. A row
// whose stop_sequence cannot be parsed is still delivered, with
// SequenceOK false, so the aggregator can reset its chain state.
func (f *Feed) StreamStopTimes(fn func(StopTimeEvent) error) error {
	if f.stopTimesName == "" {
		return fmt.Errorf("%w: stop_times.txt", atlaserr.ErrFeedMissingTable)
	}

	var chosen *zip.File
	for _, file := range f.zipReader.File {
		if file.Name == f.stopTimesName {
			chosen = file
			break
		}
	}
	if chosen == nil {
		return fmt.Errorf("%w: stop_times.txt vanished from archive", atlaserr.ErrIOFailure)
	}

	rc, err := chosen.Open()
	if err != nil {
		return fmt.Errorf("%w: opening stop_times.txt: %v", atlaserr.ErrIOFailure, err)
	}
	defer rc.Close()

	reader := csv.NewReader(stripBOM(rc))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading stop_times.txt header: %v", atlaserr.ErrIOFailure, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	get := func(row []string, key string) string {
		i, ok := index[key]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed CSV row: drop it and let the aggregator reset
			// its chain on the next valid row for this trip.
			continue
		}

		event := StopTimeEvent{
			TripID: get(row, "trip_id"),
			StopID: get(row, "stop_id"),
		}

		if seq, err := strconv.Atoi(strings.TrimSpace(get(row, "stop_sequence"))); err == nil {
			event.Sequence = seq
			event.SequenceOK = true
		}

		if arr, ok := ParseClockSeconds(get(row, "arrival_time")); ok {
			event.Arrival = arr
			event.ArrivalOK = true
		}

		if dep, ok := ParseClockSeconds(get(row, "departure_time")); ok {
			event.Departure = dep
			event.DepartureOK = true
		}

		if err := fn(event); err != nil {
			return err
		}
	}

	return nil
}
