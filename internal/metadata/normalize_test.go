package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScalars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"json number float", json.Number("3.5"), 3.5},
		{"json number int", json.Number("42"), int64(42)},
		{"json number exponent", json.Number("1e3"), 1000.0},
		{"float32", float32(2.5), 2.5},
		{"int", int(7), int64(7)},
		{"uint32", uint32(9), int64(9)},
		{"string untouched", "hello", "hello"},
		{"bool untouched", true, true},
		{"nil untouched", nil, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeNested(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"handles": map[string]any{
			"start": map[string]any{"x": json.Number("1.00005"), "y": json.Number("2")},
		},
		"values": []any{json.Number("1"), json.Number("2.5"), "text"},
	}

	got := Normalize(in).(map[string]any)

	handles := got["handles"].(map[string]any)
	start := handles["start"].(map[string]any)
	assert.Equal(t, 1.00005, start["x"])
	assert.Equal(t, int64(2), start["y"])
	assert.Equal(t, []any{int64(1), 2.5, "text"}, got["values"])
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"a": json.Number("3.5"),
		"b": map[string]any{"c": []any{float32(1.5), uint8(3)}},
	}

	once := Normalize(in)
	twice := Normalize(once)
	assert.Equal(t, once, twice)
}

func TestNormalizeInterfaceKeyedMap(t *testing.T) {
	t.Parallel()

	in := map[any]any{"k": json.Number("2")}
	got, ok := Normalize(in).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(2), got["k"])
}

func TestNormalizeSerializesAsPlainNumber(t *testing.T) {
	t.Parallel()

	// A boxed 3.5 must serialize as 3.5, not as an opaque wrapper
	out, err := json.Marshal(Normalize(map[string]any{"mean": json.Number("3.5")}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"mean":3.5}`, string(out))
}
