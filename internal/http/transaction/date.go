package transaction

import (
	"encoding/json"
	"time"
)

// Date accepts either YYYY-MM-DD or RFC 3339 in request bodies.
type Date time.Time

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	t, _, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = Date(t)

	return nil
}

// ParseDate reports whether s carried only a calendar day, so callers can
// widen an end bound to the end of that day.
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}

	t, err = time.Parse(time.RFC3339, s)

	return t, false, err
}
