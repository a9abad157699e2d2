package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClockSeconds(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    int
		wantOK  bool
	}{
		{"simple", "07:00:00", 7 * 3600, true},
		{"overnight", "25:15:30", 25*3600 + 15*60 + 30, true},
		{"single digit hour", "7:05:09", 7*3600 + 5*60 + 9, true},
		{"empty", "", 0, false},
		{"malformed parts", "7:5:09", 0, false},
		{"minute out of range", "07:60:00", 0, false},
		{"second out of range", "07:00:60", 0, false},
		{"non numeric", "ab:cd:ef", 0, false},
		{"too many hour digits", "123:00:00", 0, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := ParseClockSeconds(c.raw)
			assert.Equal(t, c.wantOK, ok)
			if c.wantOK {
				assert.Equal(t, c.want, got)
			}
		})
	}
}
