// Command atlasgen runs the travel-time atlas batch pipeline over a
// transit feed and a neighborhoods GeoJSON, writing every output
// document spec.md section 6 names into an output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"honnef.co/go/spew"

	atlas "github.com/tgrcode/transit-atlas"
	"github.com/tgrcode/transit-atlas/internal/atlaserr"
)

func main() {
	log.SetFlags(log.Lmicroseconds | log.Lshortfile)

	flagFeed := flag.String("feed", "", "Path to the zipped transit feed archive")
	flagNeighborhoods := flag.String("neighborhoods", "", "Path to the neighborhoods GeoJSON FeatureCollection")
	flagGazetteer := flag.String("gazetteer", "", "Optional path to a gazetteer GeoJSON overlay")
	flagScalars := flag.String("scalars", "", "Optional comma-separated list of key=path.csv scalar files")
	flagOut := flag.String("out", "out", "Output directory for generated documents")
	flagTransferMinutes := flag.Float64("transfer-minutes", 2.0, "Fixed transfer cost in minutes")
	flagGridStep := flag.Float64("grid-step", 0.004, "Micro-cell grid step in degrees")
	flagProfiles := flag.String("profiles", "weekday_am,weekday_pm,weekend", "Comma-separated list of time-window profiles to compute")
	flagTransferPenalty := flag.Float64("transfer-penalty-minutes", 4.0, "Extra transfer cost applied for the penalized centrality metric")
	flagMaxMinutes := flag.Int("max-minutes", 180, "Maximum minutes a corridor entry may report")
	flagTopN := flag.Int("top-n", 180, "Corridor list length cap (hard cap 200)")
	flagExpectedSpeed := flag.Float64("expected-speed-km-per-min", 0.25, "Expected driving speed baseline, km/min")
	flagDebug := flag.Bool("debug", false, "Dump intermediate structures with spew before writing output")
	flag.Parse()

	if *flagFeed == "" || *flagNeighborhoods == "" {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s --feed=city.gtfs.zip --neighborhoods=ntas.geojson [--out=out]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(1)
	}

	in, err := loadInputs(*flagFeed, *flagNeighborhoods, *flagGazetteer, *flagScalars)
	if err != nil {
		log.Printf("loading inputs: %v", err)
		os.Exit(2)
	}

	cfg := atlas.DefaultConfig()
	cfg.TransferMinutes = *flagTransferMinutes
	cfg.GridStep = *flagGridStep
	cfg.TransferPenaltyMinutes = *flagTransferPenalty
	cfg.MaxMinutes = *flagMaxMinutes
	cfg.TopN = *flagTopN
	cfg.ExpectedSpeedKmPerMin = *flagExpectedSpeed
	if *flagProfiles != "" {
		cfg.Profiles = strings.Split(*flagProfiles, ",")
	}

	if *flagDebug {
		spew.Dump(cfg)
	}

	pipeline := atlas.NewPipeline(cfg, func() string { return time.Now().UTC().Format(time.RFC3339) })

	out, err := pipeline.Run(*in)
	if err != nil {
		if atlaserr.IsTerminal(err) {
			log.Printf("atlas generation failed: %v", err)
			os.Exit(2)
		}
		log.Fatalf("atlas generation failed: %v", err)
	}

	if *flagDebug {
		spew.Dump(out.Files)
	}

	if err := writeOutputs(*flagOut, out); err != nil {
		log.Printf("writing output: %v", err)
		os.Exit(2)
	}
}

func loadInputs(feedPath, neighborhoodsPath, gazetteerPath, scalarsFlag string) (*atlas.Inputs, error) {
	feedBytes, err := os.ReadFile(feedPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading feed archive: %v", atlaserr.ErrIOFailure, err)
	}

	neighborhoodBytes, err := os.ReadFile(neighborhoodsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading neighborhoods geojson: %v", atlaserr.ErrIOFailure, err)
	}

	in := &atlas.Inputs{
		FeedArchive:   feedBytes,
		Neighborhoods: neighborhoodBytes,
		ScalarCSVs:    map[string][]byte{},
	}

	if gazetteerPath != "" {
		gazetteerBytes, err := os.ReadFile(gazetteerPath)
		if err != nil {
			return nil, fmt.Errorf("%w: reading gazetteer geojson: %v", atlaserr.ErrIOFailure, err)
		}
		in.Gazetteer = gazetteerBytes
	}

	if scalarsFlag != "" {
		for _, pair := range strings.Split(scalarsFlag, ",") {
			parts := strings.SplitN(pair, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("%w: malformed --scalars entry %q, want key=path.csv", atlaserr.ErrIOFailure, pair)
			}
			key, path := parts[0], parts[1]
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("%w: reading scalar csv %s: %v", atlaserr.ErrIOFailure, path, err)
			}
			in.ScalarCSVs[key] = data
		}
	}

	return in, nil
}

func writeOutputs(dir string, out *atlas.Outputs) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating output directory: %v", atlaserr.ErrIOFailure, err)
	}

	names := make([]string, 0, len(out.Files))
	for name := range out.Files {
		names = append(names, name)
	}

	for i, name := range names {
		for j := i + 1; j < len(names); j++ {
			if names[j] < names[i] {
				names[i], names[j] = names[j], names[i]
			}
		}
	}

	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, out.Files[name], 0o644); err != nil {
			return fmt.Errorf("%w: writing %s: %v", atlaserr.ErrIOFailure, name, err)
		}
		log.Printf("wrote %s (%s bytes)", path, strconv.Itoa(len(out.Files[name])))
	}

	return nil
}
