package atom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagIdentity(t *testing.T) {
	a, b := NewTag("osc~"), NewTag("osc~")
	assert.Equal(t, a, b)
	assert.True(t, a == b)
	assert.NotEqual(t, a, NewTag("saw~"))
	assert.True(t, NewTag("").IsZero())
	assert.Equal(t, "", Tag{}.String())
}

func TestParse(t *testing.T) {
	v := Parse("osc~ 440  0.5 -3 hz")
	assert.Equal(t, Vector{NewTag("osc~"), int64(440), 0.5, int64(-3), NewTag("hz")}, v)
	assert.Equal(t, "osc~ 440 0.5 -3 hz", Format(v))
	assert.Empty(t, Parse("   "))
}

func TestAccessors(t *testing.T) {
	i, ok := Int(5)
	assert.True(t, ok)
	assert.Equal(t, int64(5), i)

	i, ok = Int(2.9)
	assert.True(t, ok)
	assert.Equal(t, int64(2), i)

	_, ok = Int(NewTag("x"))
	assert.False(t, ok)

	f, ok := Float(int64(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	tag, ok := TagOf("print")
	assert.True(t, ok)
	assert.Equal(t, NewTag("print"), tag)

	_, ok = VectorOf(Dict{})
	assert.False(t, ok)
}

func TestDictCopyIsDeep(t *testing.T) {
	d := Dict{From: Vector{int64(1), int64(0)}, Patcher: Dict{ID: int64(2)}}
	c := d.Copy()
	c[From].(Vector)[0] = int64(9)
	c[Patcher].(Dict)[ID] = int64(9)
	assert.Equal(t, int64(1), d[From].(Vector)[0])
	assert.Equal(t, int64(2), d[Patcher].(Dict)[ID])
}
