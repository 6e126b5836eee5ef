package codec

import (
	"testing"

	"github.com/orneryd/provgraph/pkg/provenance"
	"github.com/stretchr/testify/assert"
)

func TestEncode_Scalars(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
	assert.Equal(t, "hello", Encode("hello"))
	assert.Equal(t, true, Encode(true))
	assert.Equal(t, int64(42), Encode(int64(42)))
}

func TestEncode_Actor(t *testing.T) {
	assert.Equal(t, "", Encode((*provenance.PLUSActor)(nil)))
	assert.Equal(t, "plus:a1", Encode(&provenance.PLUSActor{AID: "plus:a1", Name: "A1"}))
}

func TestEncode_PrivilegeSet(t *testing.T) {
	got := Encode([]provenance.PrivilegeClass{{PID: "ADMIN", Name: "ADMIN"}, {PID: "PUBLIC", Name: "PUBLIC"}})
	assert.Equal(t, []string{"ADMIN", "PUBLIC"}, got)
}

func TestEncode_Slice(t *testing.T) {
	got := Encode([]int{1, 2, 3})
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestMetadata_RoundTrip(t *testing.T) {
	props := EncodeMetadata(map[string]any{"oid": "plus:o1"}, map[string]string{"source": "upload"})
	assert.Equal(t, "upload", props["metadata:source"])

	meta := DecodeMetadata(props)
	assert.Equal(t, map[string]string{"source": "upload"}, meta)

	stripped := StripMetadataKeys(props)
	_, ok := stripped["metadata:source"]
	assert.False(t, ok)
	assert.Equal(t, "plus:o1", stripped["oid"])
}

func TestToString_MissingKeyIsEmpty(t *testing.T) {
	assert.Equal(t, "", ToString(map[string]any{}, "missing"))
	assert.Equal(t, "5", ToString(map[string]any{"n": 5}, "n"))
}

func TestToInt64_MissingKeyIsZero(t *testing.T) {
	assert.Equal(t, int64(0), ToInt64(map[string]any{}, "missing"))
	assert.Equal(t, int64(7), ToInt64(map[string]any{"n": int64(7)}, "n"))
}

func TestToBool_NonBoolDefaultsFalse(t *testing.T) {
	assert.False(t, ToBool(map[string]any{"flag": "true"}, "flag"))
	assert.True(t, ToBool(map[string]any{"flag": true}, "flag"))
}
