package servicerequest

import (
	"math"
	"time"
)

// ApplyDerived fills the open-elapsed field in place. Open records get the whole days
// (floored) between their creation date and today; Completed records keep it nil.
func ApplyDerived(records []ResolvedRecord, today time.Time) {
	todayDate := DateOf(today)
	for i := range records {
		r := &records[i]
		if r.Status != StatusOpen {
			r.OpenDays = nil
			continue
		}
		days := OpenDays(r.CreatedDate, todayDate)
		r.OpenDays = &days
	}
}

// OpenDays is the floored number of whole days from created to today.
func OpenDays(created, today time.Time) int {
	return int(math.Floor(DateOf(today).Sub(DateOf(created)).Hours() / hoursPerDay))
}
