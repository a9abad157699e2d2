package atlas

// WindowRef names a time window in every output document, per spec.md
// section 6.
type WindowRef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// StopOut is one stop row in graph_<profile>.json.
type StopOut struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	ParentStation string  `json:"parent_station,omitempty"`
}

// RouteOut is one route-table row, shared by graph and matrix outputs.
type RouteOut struct {
	ID        string `json:"id"`
	ShortName string `json:"short_name"`
	Color     string `json:"color,omitempty"`
	TextColor string `json:"text_color,omitempty"`
}

// NeighborhoodOut is one neighborhood row, shared by graph and matrix
// outputs.
type NeighborhoodOut struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Borough    string    `json:"borough,omitempty"`
	Centroid   []float64 `json:"centroid"`
	StopID     string    `json:"stop_id"`
	StopIndex  int       `json:"stop_index"`
}

// GraphOutput is graph_<profile>.json.
type GraphOutput struct {
	GeneratedAt   string            `json:"generated_at"`
	Window        WindowRef         `json:"window"`
	Stops         []StopOut         `json:"stops"`
	Routes        []RouteOut        `json:"routes"`
	Edges         []EdgeOut         `json:"edges"`
	Neighborhoods []NeighborhoodOut `json:"neighborhoods"`
}

// EdgeOut is one [u_idx, v_idx, minutes, route_idx|null] tuple. It
// marshals as a plain 4-element JSON array via MarshalJSON.
type EdgeOut struct {
	U        int
	V        int
	Minutes  int
	RouteIdx *int
}

// MarshalJSON renders the edge as [u_idx, v_idx, minutes, route_idx|null],
// per spec.md section 6.
func (e EdgeOut) MarshalJSON() ([]byte, error) {
	return jsonMarshal([]any{e.U, e.V, e.Minutes, e.RouteIdx})
}

// CentralityOut mirrors matrix.Bundle for JSON output.
type CentralityOut struct {
	Default string                 `json:"default"`
	Metrics map[string][]float64 `json:"metrics"`
}

// MatrixOutput is matrix_<profile>.json (and its _derived variant).
type MatrixOutput struct {
	GeneratedAt   string            `json:"generated_at"`
	Window        WindowRef         `json:"window"`
	Neighborhoods []NeighborhoodOut `json:"neighborhoods"`
	Routes        []RouteOut        `json:"routes"`
	Minutes       [][]*int          `json:"minutes"`
	FirstRoute    [][]*int          `json:"first_route"`
	Centrality    CentralityOut     `json:"centrality"`
}

// HubOut is one hub entry in teleport_corridors.json.
type HubOut struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Centroid []float64 `json:"centroid"`
}

// CorridorEntryOut is one scored origin in a top-N list.
type CorridorEntryOut struct {
	OriginID        string  `json:"origin_id"`
	DistanceKm      float64 `json:"distance_km"`
	KmPerMin        float64 `json:"km_per_min"`
	ExpectedMinutes float64 `json:"expected_minutes"`
	MinutesSaved    float64 `json:"minutes_saved"`
	FirstLine       *string `json:"first_line"`
}

// CorridorListsOut bundles the two ranked views for one hub.
type CorridorListsOut struct {
	TopUnderrated []CorridorEntryOut `json:"top_underrated"`
	TopSpeed      []CorridorEntryOut `json:"top_speed"`
}

// ProfileCorridorsOut is one profile's entry in teleport_corridors.json.
type ProfileCorridorsOut struct {
	Window                WindowRef                   `json:"window"`
	MaxMinutes            int                         `json:"max_minutes"`
	ExpectedSpeedKmPerMin float64                      `json:"expected_speed_km_per_min"`
	Hubs                  map[string]HubOut            `json:"hubs"`
	Corridors             map[string]CorridorListsOut `json:"corridors"`
}

// TeleportCorridorsOutput is teleport_corridors.json (and its _derived
// variant).
type TeleportCorridorsOutput struct {
	GeneratedAt string                         `json:"generated_at"`
	Windows     map[string]ProfileCorridorsOut `json:"windows"`
}
