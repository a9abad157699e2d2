package feed

// ServiceClasses holds the weekday-only and weekend-only service-id
// sets derived from calendar.txt, per spec.md section 4.2. A calendar
// row counts as weekday iff Mon-Fri are all active and Sat/Sun are
// both inactive; weekend iff at least one of Sat/Sun is active and all
// of Mon-Fri are inactive.
type ServiceClasses struct {
	Weekday map[string]bool
	Weekend map[string]bool
}

// ClassifyServices builds the weekday/weekend service-id sets. Either
// set may end up empty; an empty set means "no restriction" when
// consulted by AllowsTrip below.
func ClassifyServices(rows []CalendarRow) ServiceClasses {
	weekday := map[string]bool{}
	weekend := map[string]bool{}

	for _, row := range rows {
		mon, tue, wed, thu, fri, sat, sun := row.Weekday[0], row.Weekday[1], row.Weekday[2], row.Weekday[3], row.Weekday[4], row.Weekday[5], row.Weekday[6]

		if mon && tue && wed && thu && fri && !sat && !sun {
			weekday[row.ServiceID] = true
		}

		if (sat || sun) && !mon && !tue && !wed && !thu && !fri {
			weekend[row.ServiceID] = true
		}
	}

	return ServiceClasses{Weekday: weekday, Weekend: weekend}
}

// AllowsTrip reports whether a trip with the given service-id is
// permitted under this class's set: pass-through (true) if the set is
// empty, otherwise membership.
func AllowsTrip(set map[string]bool, serviceID string) bool {
	if len(set) == 0 {
		return true
	}
	return set[serviceID]
}
