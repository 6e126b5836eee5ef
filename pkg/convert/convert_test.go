package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected int64
		ok       bool
	}{
		// Direct integer types
		{"int64", int64(99), 99, true},
		{"int", 42, 42, true},
		{"int32", int32(50), 50, true},
		{"uint", uint(10), 10, true},
		{"uint32", uint32(25), 25, true},
		{"uint64", uint64(100), 100, true},

		// Float conversion (truncation)
		{"float64", 3.7, 3, true},
		{"float64 negative", -3.7, -3, true},
		{"float32", float32(2.9), 2, true},

		// String parsing
		{"string integer", "42", 42, true},
		{"string negative", "-10", -10, true},
		{"string float", "3.7", 3, true},

		// Error cases
		{"string invalid", "hello", 0, false},
		{"string empty", "", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt64(tt.input)
			assert.Equal(t, tt.ok, ok, "ok mismatch")
			if ok {
				assert.Equal(t, tt.expected, got, "value mismatch")
			}
		})
	}
}

func TestToStringSlice(t *testing.T) {
	t.Run("[]string", func(t *testing.T) {
		input := []string{"a", "b", "c"}
		got := ToStringSlice(input)
		assert.Equal(t, input, got)
	})

	t.Run("[]interface{} strings", func(t *testing.T) {
		input := []interface{}{"a", "b", "c"}
		got := ToStringSlice(input)
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("[]interface{} mixed", func(t *testing.T) {
		input := []interface{}{"a", 1, "c"}
		got := ToStringSlice(input)
		assert.Nil(t, got)
	})

	t.Run("invalid type", func(t *testing.T) {
		got := ToStringSlice(123)
		assert.Nil(t, got)
	})
}
