// Package atlas wires the feed, graph, matrix, geometry, neighborhood,
// corridor, tessellation, namer and derived-matrix components into a
// single batch pipeline, per SPEC_FULL.md's orchestration section.
package atlas

import "github.com/tgrcode/transit-atlas/internal/corridor"

// Config bundles every tunable enumerated in spec.md section 6, with
// the same defaults.
type Config struct {
	TransferMinutes        float64
	GridStep               float64
	Profiles               []string
	TransferPenaltyMinutes float64
	MaxMinutes             int
	TopN                   int
	ExpectedSpeedKmPerMin  float64
	HubAnchors             []corridor.Anchor
	AllowedBoroughs        []string
	TriBoroughs            []string
	ExcludedFallbackBoroughs []string
}

// DefaultConfig returns the configuration spec.md section 6 specifies
// when no override is supplied.
func DefaultConfig() Config {
	return Config{
		TransferMinutes:        2.0,
		GridStep:               0.004,
		Profiles:               []string{"weekday_am", "weekday_pm", "weekend"},
		TransferPenaltyMinutes: 4.0,
		MaxMinutes:             180,
		TopN:                  180,
		ExpectedSpeedKmPerMin:  0.25,
		HubAnchors:             corridor.DefaultHubs,
		AllowedBoroughs:        []string{"Brooklyn", "Queens"},
		TriBoroughs:            []string{"Manhattan", "Brooklyn", "Queens"},
		ExcludedFallbackBoroughs: []string{"Manhattan", "Bronx", "Staten Island"},
	}
}

func (c Config) transferSeconds() int {
	return int(c.TransferMinutes * 60)
}

func (c Config) transferPenaltySeconds() int {
	return int(c.TransferPenaltyMinutes * 60)
}
