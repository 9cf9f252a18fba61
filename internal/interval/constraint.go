package interval

import "fmt"

// Constraint is a named interval: a function name paired with the interval
// that describes it at some program point. Join/Meet/Covers on
// two Constraints require Fname agreement, checked by panic — an internal
// invariant violation, not an input error.
type Constraint struct {
	Fname    string
	Interval Interval
	// File/Line carry optional debug metadata from the icmp that produced
	// this constraint.
	File string
	Line int
}

// New builds a Constraint naming fname, defaulting to Bot (the identity of
// Join), matching the C++ constructor's default-initialized interval.
func New(fname string) Constraint {
	return Constraint{Fname: fname, Interval: Bot}
}

func requireSameFunc(a, b Constraint) {
	if a.Fname != b.Fname {
		panic(fmt.Sprintf("interval: Constraint fname mismatch: %q vs %q", a.Fname, b.Fname))
	}
}

// Join returns the Constraint naming the same function with the joined
// interval.
func (c Constraint) Join(other Constraint) Constraint {
	requireSameFunc(c, other)
	return Constraint{Fname: c.Fname, Interval: Join(c.Interval, other.Interval)}
}

// Meet returns the Constraint naming the same function with the met
// interval.
func (c Constraint) Meet(other Constraint) Constraint {
	requireSameFunc(c, other)
	return Constraint{Fname: c.Fname, Interval: Meet(c.Interval, other.Interval)}
}

// Covers reports whether c's interval covers other's interval. Unlike
// Join/Meet this does not require Fname agreement — callers compare a
// block constraint on one function against an unrelated spec's interval.
func (c Constraint) Covers(other Constraint) bool {
	return Covers(c.Interval, other.Interval)
}
