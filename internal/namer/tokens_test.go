package namer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLowercasesStripsParensAndDirections(t *testing.T) {
	tokens := Normalize("Upper West Side (Manhattan)")
	require.Equal(t, []string{"side"}, tokens)
}

func TestNormalizeMapsStAndFtAbbreviations(t *testing.T) {
	tokens := Normalize("St George")
	require.Equal(t, []string{"saint", "george"}, tokens)

	tokens = Normalize("Ft Greene")
	require.Equal(t, []string{"fort", "greene"}, tokens)
}

func TestNormalizeAppliesUnicodeCompatibilityFold(t *testing.T) {
	// The fullwidth digit/letter forms fold to their ASCII equivalents
	// under NFKC, so they survive the ASCII-only tokenizer pass.
	tokens := Normalize("Ａlpha")
	require.Equal(t, []string{"alpha"}, tokens)
}

func TestJaccardOverlapComputesSharedOverPart(t *testing.T) {
	part := []string{"west", "side"}
	whole := []string{"west", "side", "highway"}
	require.InDelta(t, 1.0, JaccardOverlap(part, whole), 1e-9)

	require.InDelta(t, 0.0, JaccardOverlap([]string{"nope"}, whole), 1e-9)
	require.Equal(t, 0.0, JaccardOverlap(nil, whole))
}

func TestSplitCompoundSplitsOnSeparators(t *testing.T) {
	require.Equal(t, []string{"Clinton", "Hell's Kitchen"}, SplitCompound("Clinton/Hell's Kitchen"))
	require.Equal(t, []string{"Bedford", "Stuyvesant"}, SplitCompound("Bedford and Stuyvesant"))
	require.Equal(t, []string{"Park", "Slope"}, SplitCompound("Park-Slope"))
}
