// Package codec implements the property codec (C1): the rules for
// converting domain attribute values into the storage-safe property
// encoding pkg/storage.Node and pkg/storage.Edge property maps use, and
// back again.
//
// Encode is applied recursively per §4.1:
//
//	null                    -> ""
//	iterable of X           -> []string of recursively-encoded elements
//	privilege set           -> []string of privilege-class names
//	class/type descriptor   -> its fully-qualified name string
//	actor                   -> its aid
//	any other scalar        -> stored as-is
//
// Metadata keys are prefixed "metadata:" on the way in and stripped on the
// way out, so user-supplied metadata can never collide with first-class
// node/edge properties.
package codec

import (
	"fmt"
	"reflect"

	"github.com/orneryd/provgraph/pkg/convert"
	"github.com/orneryd/provgraph/pkg/provenance"
)

// MetadataPrefix marks a storage property key as originating from a
// PLUSObject's metadata map rather than a first-class attribute.
const MetadataPrefix = "metadata:"

// Encode converts v to a storage-safe value following the rules above.
func Encode(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case *provenance.PLUSActor:
		if val == nil {
			return ""
		}
		return val.AID
	case provenance.PrivilegeClass:
		return val.Name
	case []provenance.PrivilegeClass:
		names := make([]string, len(val))
		for i, p := range val {
			names[i] = p.Name
		}
		return names
	case fmt.Stringer:
		return val.String()
	case string, bool, int, int32, int64, float32, float64:
		return val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = fmt.Sprint(Encode(rv.Index(i).Interface()))
		}
		return out
	default:
		return v
	}
}

// EncodeMetadata prefixes every key in meta with MetadataPrefix and returns
// the result merged into the given property map (props may be nil).
func EncodeMetadata(props map[string]any, meta map[string]string) map[string]any {
	if props == nil {
		props = make(map[string]any)
	}
	for k, v := range meta {
		props[MetadataPrefix+k] = v
	}
	return props
}

// DecodeMetadata extracts every "metadata:"-prefixed key from props into a
// plain string map, stripping the prefix. Non-string values are rendered
// with fmt.Sprint.
func DecodeMetadata(props map[string]any) map[string]string {
	meta := make(map[string]string)
	for k, v := range props {
		if len(k) > len(MetadataPrefix) && k[:len(MetadataPrefix)] == MetadataPrefix {
			key := k[len(MetadataPrefix):]
			if s, ok := v.(string); ok {
				meta[key] = s
			} else {
				meta[key] = fmt.Sprint(v)
			}
		}
	}
	return meta
}

// StripMetadataKeys returns a copy of props with every metadata-prefixed
// key removed, leaving only first-class properties.
func StripMetadataKeys(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if len(k) >= len(MetadataPrefix) && k[:len(MetadataPrefix)] == MetadataPrefix {
			continue
		}
		out[k] = v
	}
	return out
}

// ToString reads a property as a string, converting non-strings with
// fmt.Sprint and returning "" for a missing or nil key.
func ToString(props map[string]any, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ToInt64 reads a property as an int64 via convert.ToInt64, defaulting to 0.
func ToInt64(props map[string]any, key string) int64 {
	v, ok := props[key]
	if !ok {
		return 0
	}
	i, _ := convert.ToInt64(v)
	return i
}

// ToBool reads a property as a bool, defaulting to false for any type that
// isn't a literal bool.
func ToBool(props map[string]any, key string) bool {
	v, ok := props[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ToStringSlice reads a property as a []string via convert.ToStringSlice.
func ToStringSlice(props map[string]any, key string) []string {
	v, ok := props[key]
	if !ok {
		return nil
	}
	return convert.ToStringSlice(v)
}
