package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyServices(t *testing.T) {
	rows := []CalendarRow{
		{ServiceID: "wkdy", Weekday: [7]bool{true, true, true, true, true, false, false}},
		{ServiceID: "wknd", Weekday: [7]bool{false, false, false, false, false, true, true}},
		{ServiceID: "sat_only", Weekday: [7]bool{false, false, false, false, false, true, false}},
		{ServiceID: "everyday", Weekday: [7]bool{true, true, true, true, true, true, true}},
	}

	classes := ClassifyServices(rows)

	assert.True(t, classes.Weekday["wkdy"])
	assert.False(t, classes.Weekday["wknd"])
	assert.False(t, classes.Weekday["everyday"])

	assert.True(t, classes.Weekend["wknd"])
	assert.True(t, classes.Weekend["sat_only"])
	assert.False(t, classes.Weekend["wkdy"])
	assert.False(t, classes.Weekend["everyday"])
}

func TestAllowsTripPassThroughWhenEmpty(t *testing.T) {
	empty := map[string]bool{}
	assert.True(t, AllowsTrip(empty, "anything"))

	set := map[string]bool{"a": true}
	assert.True(t, AllowsTrip(set, "a"))
	assert.False(t, AllowsTrip(set, "b"))
}
