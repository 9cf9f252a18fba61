package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allIntervals = []Interval{Bot, Ltz, Zero, Gtz, Lez, Gez, Ntz, Top}

func TestJoinIdentityAndAbsorbing(t *testing.T) {
	for _, i := range allIntervals {
		assert.Equal(t, i, Join(i, Bot), "Bot is Join's identity")
		assert.Equal(t, Top, Join(i, Top), "Top is Join's absorbing element")
	}
}

func TestMeetIdentityAndAbsorbing(t *testing.T) {
	for _, i := range allIntervals {
		assert.Equal(t, i, Meet(i, Top), "Top is Meet's identity")
		assert.Equal(t, Bot, Meet(i, Bot), "Bot is Meet's absorbing element")
	}
}

func TestJoinCommutative(t *testing.T) {
	for _, a := range allIntervals {
		for _, b := range allIntervals {
			assert.Equal(t, Join(a, b), Join(b, a), "Join(%v,%v)", a, b)
		}
	}
}

func TestMeetCommutative(t *testing.T) {
	for _, a := range allIntervals {
		for _, b := range allIntervals {
			assert.Equal(t, Meet(a, b), Meet(b, a), "Meet(%v,%v)", a, b)
		}
	}
}

func TestJoinIdempotent(t *testing.T) {
	for _, a := range allIntervals {
		assert.Equal(t, a, Join(a, a))
	}
}

func TestMeetIdempotent(t *testing.T) {
	for _, a := range allIntervals {
		assert.Equal(t, a, Meet(a, a))
	}
}

// TestCoversAgreesWithJoinAndMeet checks the three-way equivalence the
// lattice must satisfy: a covers b iff Join(a,b) == a iff Meet(a,b) == b.
func TestCoversAgreesWithJoinAndMeet(t *testing.T) {
	for _, a := range allIntervals {
		for _, b := range allIntervals {
			covers := Covers(a, b)
			assert.Equal(t, covers, Join(a, b) == a, "Covers/Join for (%v,%v)", a, b)
			assert.Equal(t, covers, Meet(a, b) == b, "Covers/Meet for (%v,%v)", a, b)
		}
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	for _, i := range allIntervals {
		parsed, ok := Parse(i.String())
		assert.True(t, ok, "Parse(%q)", i.String())
		assert.Equal(t, i, parsed)
	}
}

func TestParseRejectsUnknownToken(t *testing.T) {
	_, ok := Parse("nonsense")
	assert.False(t, ok)
}

func TestAbstractInt(t *testing.T) {
	assert.Equal(t, Ltz, AbstractInt(-7))
	assert.Equal(t, Zero, AbstractInt(0))
	assert.Equal(t, Gtz, AbstractInt(3))
}

func TestJoinKnownUnions(t *testing.T) {
	assert.Equal(t, Lez, Join(Ltz, Zero))
	assert.Equal(t, Gez, Join(Zero, Gtz))
	assert.Equal(t, Ntz, Join(Ltz, Gtz))
	assert.Equal(t, Top, Join(Lez, Gez))
}

func TestMeetKnownUnions(t *testing.T) {
	assert.Equal(t, Zero, Meet(Lez, Gez))
	assert.Equal(t, Ltz, Meet(Lez, Ntz))
	assert.Equal(t, Gtz, Meet(Gez, Ntz))
	assert.Equal(t, Bot, Meet(Ltz, Gtz))
}
