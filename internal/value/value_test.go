package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberString(t *testing.T) {
	a, b := 0.1, 0.2
	tests := []struct {
		in   float64
		want string
	}{
		{3, "3"},
		{0.5, "0.5"},
		{-2.25, "-2.25"},
		{1e21, "1000000000000000000000"},
		{a + b, "0.30000000000000004"},
		{math.Inf(1), "+Inf"},
		{math.Inf(-1), "-Inf"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Number(tt.in).String())
	}
}

func TestRender(t *testing.T) {
	assert.Equal(t, "nil", Nil{}.String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "false", Bool(false).String())
	assert.Equal(t, "raw \"text\"", String(`raw "text"`).String())
	assert.Equal(t, "nil", Format(nil))
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(Nil{}))
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(Bool(false)))
	assert.True(t, Truthy(Bool(true)))
	assert.True(t, Truthy(Number(0)))
	assert.True(t, Truthy(String("")))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil nil", Nil{}, Nil{}, true},
		{"nil interface", nil, Nil{}, true},
		{"numbers", Number(1), Number(1), true},
		{"different numbers", Number(1), Number(2), false},
		{"strings", String("a"), String("a"), true},
		{"bools", Bool(true), Bool(false), false},
		{"number and string", Number(1), String("1"), false},
		{"nil and false", Nil{}, Bool(false), false},
		{"nan", Number(math.NaN()), Number(math.NaN()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "number", KindOf(Number(1)).String())
	assert.Equal(t, "nil", KindOf(nil).String())
	assert.Equal(t, "string", String("").Kind().String())
	assert.Equal(t, "bool", Bool(true).Kind().String())
}

func TestInspect(t *testing.T) {
	assert.Equal(t, `"1"`, Inspect(String("1")))
	assert.Equal(t, "1", Inspect(Number(1)))
	assert.Equal(t, "nil", Inspect(nil))
}
