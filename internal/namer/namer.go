// Package namer chooses a primary display name for each derived
// region via gazetteer overlap, compound splitting, and an anchor
// fallback, then de-duplicates collisions, per spec.md component C12.
package namer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tgrcode/transit-atlas/internal/geo"
	"github.com/tgrcode/transit-atlas/internal/tessellate"
)

// GazetteerEntry is one authoritative named overlay polygon, per
// spec.md section 3.
type GazetteerEntry struct {
	Name    string
	Polygon geo.Polygon
}

// Result is the resolved name for one region, prior to de-duplication.
type Result struct {
	Primary    string
	Aliases    []string
	Confidence float64
}

const namingConfidenceFloor = 0.2

// Resolve runs the three-phase selection of spec.md section 4.12 for
// a single region.
func Resolve(region tessellate.Region, gazetteer []GazetteerEntry) Result {
	if res, ok := gazetteerOverlay(region, gazetteer); ok {
		return res
	}
	if res, ok := compoundFallback(region); ok {
		return res
	}
	return anchorFallback(region)
}

// gazetteerOverlay implements phase 1.
func gazetteerOverlay(region tessellate.Region, gazetteer []GazetteerEntry) (Result, bool) {
	area := map[string]float64{}
	var order []string

	for _, cell := range region.Cells {
		name, ok := matchGazetteer(cell.Centroid, gazetteer)
		if !ok {
			continue
		}
		if _, seen := area[name]; !seen {
			order = append(order, name)
		}
		area[name] += cell.AreaKm2
	}

	if len(order) == 0 {
		return Result{}, false
	}

	total := 0.0
	for _, n := range order {
		total += area[n]
	}
	if total <= 0 {
		return Result{}, false
	}

	sort.SliceStable(order, func(i, j int) bool { return area[order[i]] > area[order[j]] })

	topName := order[0]
	topFrac := area[topName] / total

	stationTokens := Normalize(region.StationName)

	if parts := SplitCompound(topName); len(parts) > 1 {
		for _, part := range parts {
			if JaccardOverlap(Normalize(part), stationTokens) >= 0.5 {
				confidence := math.Max(topFrac, 0.35)
				return Result{Primary: part, Aliases: aliasesFrom(order, part), Confidence: confidence}, true
			}
		}
	}

	if topFrac >= 0.5 {
		return Result{Primary: topName, Aliases: aliasesFrom(order, topName), Confidence: topFrac}, true
	}

	if len(order) >= 2 {
		secondName := order[1]
		secondFrac := area[secondName] / total
		if topFrac > 0.25 && secondFrac > 0.25 {
			combined := topName + " / " + secondName
			return Result{Primary: combined, Aliases: aliasesFrom(order, topName, secondName), Confidence: topFrac}, true
		}
	}

	return Result{Primary: topName, Aliases: aliasesFrom(order, topName), Confidence: topFrac}, true
}

func aliasesFrom(order []string, used ...string) []string {
	usedSet := map[string]bool{}
	for _, u := range used {
		usedSet[u] = true
	}
	var aliases []string
	for _, n := range order {
		if usedSet[n] {
			continue
		}
		aliases = append(aliases, n)
		if len(aliases) == 3 {
			break
		}
	}
	return aliases
}

func matchGazetteer(pt geo.Point, gazetteer []GazetteerEntry) (string, bool) {
	for _, g := range gazetteer {
		if g.Polygon.Contains(pt) {
			return g.Name, true
		}
	}
	return "", false
}

// compoundFallback implements phase 2.
func compoundFallback(region tessellate.Region) (Result, bool) {
	tractName := representativeTractName(region)
	if tractName == "" {
		return Result{}, false
	}

	stationLower := strings.ToLower(region.StationName)
	for _, part := range SplitCompound(tractName) {
		if part == "" {
			continue
		}
		if strings.Contains(stationLower, strings.ToLower(part)) {
			return Result{Primary: part, Aliases: nil, Confidence: 0.35}, true
		}
	}

	return Result{}, false
}

// anchorFallback implements phase 3: always succeeds, guaranteeing
// every region gets a non-empty primary name (spec.md section 9's
// naming confidence floor).
func anchorFallback(region tessellate.Region) Result {
	return Result{
		Primary:    region.StationName + " area",
		Aliases:    []string{region.StationName, representativeTractName(region)},
		Confidence: namingConfidenceFloor,
	}
}

// representativeTractName returns the display name of the region's
// representative tract, read from the first cell carrying that tract
// id; it falls back to RepresentativeTract itself when no cell does.
func representativeTractName(region tessellate.Region) string {
	for _, c := range region.Cells {
		if c.TractID == region.RepresentativeTract && c.TractName != "" {
			return c.TractName
		}
	}
	return region.RepresentativeTract
}

// Resolved is one region's name after de-duplication, ready for
// output.
type Resolved struct {
	AtlasID    string
	Primary    string
	Aliases    []string
	Confidence float64
}

// DeduplicateInput pairs a region's resolved Result with the data the
// three de-duplication stages need: its atlas id (for stable ordinal
// tie-break), station name/coords, and centroid.
type DeduplicateInput struct {
	AtlasID     string
	Result      Result
	StationName string
	StationLat  float64
	StationLon  float64
	CentroidLat float64
	CentroidLon float64
}

// Deduplicate runs the three collision-resolution stages of spec.md
// section 4.12 in stable atlas-id order, only advancing a stage while
// collisions remain.
func Deduplicate(inputs []DeduplicateInput) []Resolved {
	sorted := append([]DeduplicateInput(nil), inputs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AtlasID < sorted[j].AtlasID })

	names := make([]string, len(sorted))
	aliases := make([][]string, len(sorted))
	for i, in := range sorted {
		names[i] = in.Result.Primary
		aliases[i] = append([]string(nil), in.Result.Aliases...)
	}

	if hasCollision(names) {
		applyStage(names, aliases, sorted, stationSuffix)
	}
	if hasCollision(names) {
		applyStage(names, aliases, sorted, compassSuffix)
	}
	if hasCollision(names) {
		applyOrdinalStage(names, aliases)
	}

	out := make([]Resolved, len(sorted))
	for i, in := range sorted {
		out[i] = Resolved{
			AtlasID:    in.AtlasID,
			Primary:    names[i],
			Aliases:    aliases[i],
			Confidence: in.Result.Confidence,
		}
	}
	return out
}

func hasCollision(names []string) bool {
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			return true
		}
		seen[n] = true
	}
	return false
}

func applyStage(names []string, aliases [][]string, inputs []DeduplicateInput, suffix func(DeduplicateInput) string) {
	counts := map[string]int{}
	for _, n := range names {
		counts[n]++
	}
	for i, n := range names {
		if counts[n] <= 1 {
			continue
		}
		pushAlias(&aliases[i], n)
		names[i] = n + " · " + suffix(inputs[i])
	}
}

// applyOrdinalStage is stage 3: any name that still collides after the
// station-name and compass-direction stages gets a per-group ordinal,
// numbered within its own collision group rather than across the
// whole sorted list; names that are already unique are left alone.
func applyOrdinalStage(names []string, aliases [][]string) {
	counts := map[string]int{}
	for _, n := range names {
		counts[n]++
	}
	seen := map[string]int{}
	for i, n := range names {
		if counts[n] <= 1 {
			continue
		}
		seen[n]++
		pushAlias(&aliases[i], n)
		names[i] = n + " · " + fmt.Sprintf("%d", seen[n])
	}
}

func stationSuffix(in DeduplicateInput) string {
	return in.StationName
}

func compassSuffix(in DeduplicateInput) string {
	dLon := in.CentroidLon - in.StationLon
	dLat := in.CentroidLat - in.StationLat
	angle := math.Atan2(dLat, dLon) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}

	// 8-way compass, 45° bins starting at E (0°).
	directions := []string{"E", "NE", "N", "NW", "W", "SW", "S", "SE"}
	idx := int(math.Mod(angle+22.5, 360) / 45)
	return directions[idx]
}

func pushAlias(aliases *[]string, name string) {
	for _, a := range *aliases {
		if a == name {
			return
		}
	}
	*aliases = append(*aliases, name)
}
