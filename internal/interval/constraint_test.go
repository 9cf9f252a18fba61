package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintJoinMeet(t *testing.T) {
	a := Constraint{Fname: "malloc", Interval: Ltz}
	b := Constraint{Fname: "malloc", Interval: Zero}

	assert.Equal(t, Lez, a.Join(b).Interval)
	assert.Equal(t, Bot, a.Meet(b).Interval)
	assert.Equal(t, "malloc", a.Join(b).Fname)
}

func TestConstraintJoinPanicsOnFnameMismatch(t *testing.T) {
	a := Constraint{Fname: "malloc", Interval: Ltz}
	b := Constraint{Fname: "free", Interval: Zero}
	assert.Panics(t, func() { a.Join(b) })
}

func TestConstraintCoversIgnoresFname(t *testing.T) {
	a := Constraint{Fname: "malloc", Interval: Lez}
	b := Constraint{Fname: "free", Interval: Ltz}
	assert.True(t, a.Covers(b))
}

func TestNewDefaultsToBot(t *testing.T) {
	c := New("f")
	assert.Equal(t, Bot, c.Interval)
}
