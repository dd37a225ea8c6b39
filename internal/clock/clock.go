package clock

import "time"

// Clock supplies the current time in the league's time zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type League struct {
	loc *time.Location
}

func NewLeague(loc *time.Location) *League {
	if loc == nil {
		loc = time.UTC
	}
	return &League{loc: loc}
}

func (c *League) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *League) Location() *time.Location {
	return c.loc
}

// Func adapts a function to Clock; the returned times are used as-is.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

func (f Func) Location() *time.Location {
	return f().Location()
}
