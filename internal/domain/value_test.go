package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValueEqual(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal strings", StringValue("x"), StringValue("x"), true},
		{"different strings", StringValue("x"), StringValue("y"), false},
		{"different kinds", StringValue("1"), IntValue(1), false},
		{"equal ints", IntValue(42), IntValue(42), true},
		{"equal bools", BoolValue(true), BoolValue(true), true},
		{
			"maps equal regardless of build order",
			MapValue(map[string]Value{"a": IntValue(1), "b": IntValue(2)}),
			MapValue(map[string]Value{"b": IntValue(2), "a": IntValue(1)}),
			true,
		},
		{
			"lists differ by position",
			ListValue([]Value{IntValue(1), IntValue(2)}),
			ListValue([]Value{IntValue(2), IntValue(1)}),
			false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestValueHashOrderInsensitiveForMaps(t *testing.T) {
	t.Parallel()
	a := MapValue(map[string]Value{"a": IntValue(1), "b": IntValue(2)})
	b := MapValue(map[string]Value{"b": IntValue(2), "a": IntValue(1)})
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestValueHashPositionalForLists(t *testing.T) {
	t.Parallel()
	a := ListValue([]Value{IntValue(1), IntValue(2)})
	b := ListValue([]Value{IntValue(2), IntValue(1)})
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestValueHashByInstantForDates(t *testing.T) {
	t.Parallel()
	instant := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := TimeValue(instant)
	b := TimeValue(instant.In(time.FixedZone("X", 3600)))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, a.Equal(b))
}

func TestValueStringOnlyForStringKind(t *testing.T) {
	t.Parallel()
	s, ok := StringValue("hi").AsString()
	assert.True(t, ok)
	assert.Equal(t, "hi", s)

	_, ok = IntValue(5).AsString()
	assert.False(t, ok)
}
