package clock

import "time"

// Clock supplies the authoritative wall time for the application. Session
// timestamps, attendance marks and reset-token expiries must all come from
// the same Clock so that stored values compare consistently.
type Clock func() time.Time

// Location is the institution's fixed time zone (UTC+7).
var Location = time.FixedZone("Asia/Ho_Chi_Minh", 7*60*60)

// System returns a Clock backed by the system time in the fixed zone.
func System() Clock {
	return func() time.Time {
		return time.Now().In(Location)
	}
}

// Fixed returns a Clock frozen at the provided instant. Intended for tests.
func Fixed(t time.Time) Clock {
	return func() time.Time {
		return t.In(Location)
	}
}

// Now is a nil-safe accessor falling back to the system clock.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().In(Location)
	}
	return c()
}
