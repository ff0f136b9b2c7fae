package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turkce-yazilim-konati/karamel/lang/value"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	arena := value.NewArena()

	numbers := []float64{0, math.Copysign(0, -1), 1, -1, 3.14159, math.MaxFloat64,
		math.SmallestNonzeroFloat64, -math.SmallestNonzeroFloat64, 1e308, -1e308}
	for _, f := range numbers {
		v := value.Encode(value.Number(f), arena)
		require.True(t, v.IsNumber())
		got := value.Decode(v, arena)
		assert.True(t, got.Equal(value.Number(f)), "round trip for %v", f)
		assert.Equal(t, math.Float64bits(f), math.Float64bits(v.Float64()))
	}

	for _, b := range []bool{true, false} {
		v := value.Encode(value.Bool(b), arena)
		assert.False(t, v.IsNumber())
		got := value.Decode(v, arena)
		assert.Equal(t, value.Bool(b), got)
	}

	v := value.Encode(value.Empty{}, arena)
	assert.Equal(t, value.Empty{}, value.Decode(v, arena))

	text := &value.Text{Value: "erhan"}
	v = value.Encode(text, arena)
	assert.False(t, v.IsNumber())
	got := value.Decode(v, arena)
	assert.True(t, got.Equal(text))
}

func TestEncodeDoesNotCollideWithQNaNTag(t *testing.T) {
	arena := value.NewArena()

	trueObj := value.Encode(value.Bool(true), arena)
	falseObj := value.Encode(value.Bool(false), arena)
	emptyObj := value.Encode(value.Empty{}, arena)
	textObj := value.Encode(&value.Text{Value: "x"}, arena)

	assert.NotEqual(t, trueObj, falseObj)
	assert.NotEqual(t, trueObj, emptyObj)
	assert.NotEqual(t, falseObj, emptyObj)
	assert.NotEqual(t, textObj, trueObj)

	assert.False(t, trueObj.IsNumber())
	assert.False(t, falseObj.IsNumber())
	assert.False(t, emptyObj.IsNumber())
	assert.False(t, textObj.IsNumber())
}

func TestArenaFreeListReusesHandles(t *testing.T) {
	arena := value.NewArena()
	h1 := arena.Alloc(&value.Text{Value: "a"})
	h2 := arena.Alloc(&value.Text{Value: "b"})
	arena.Free(h1)
	h3 := arena.Alloc(&value.Text{Value: "c"})
	assert.Equal(t, h1, h3)
	assert.NotEqual(t, h2, h3)
}
