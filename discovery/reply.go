package discovery

import (
	"fmt"
	"strconv"
)

// Reply is one parsed discovery-protocol record.
type Reply map[string]any

// ParseReply converts a raw discovery reply into a structured record.
//
// The discovery protocol returns a flat sequence where, at each position,
// an element is either a nested sequence or a scalar field name immediately
// followed by its scalar value. Nested sequences are parsed recursively
// into their own record and stored under their position index; scalar
// pairs consume two positions and become a field assignment.
//
// Parameters:
//   - raw: The raw reply elements
//
// Returns:
//   - Reply: The structured record
func ParseReply(raw []any) Reply {
	out := make(Reply, len(raw)/2)

	for i := 0; i < len(raw); i++ {
		if nested, ok := raw[i].([]any); ok {
			out[strconv.Itoa(i)] = ParseReply(nested)
			continue
		}

		key := scalarString(raw[i])
		if i+1 >= len(raw) {
			// Dangling field name with no value; keep it visible.
			out[key] = nil
			break
		}

		if nested, ok := raw[i+1].([]any); ok {
			out[key] = ParseReply(nested)
		} else {
			out[key] = scalarString(raw[i+1])
		}
		i++
	}

	return out
}

// Str returns the named field as a string, empty when the field is
// missing or holds a nested record.
func (r Reply) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}

	return ""
}

// ParseReplyList converts a reply whose top level is one nested sequence
// per record, e.g. the per-replica records of a "slaves" query.
//
// Non-sequence elements at the top level are skipped.
//
// Parameters:
//   - raw: The raw reply elements
//
// Returns:
//   - []Reply: One structured record per nested sequence
func ParseReplyList(raw []any) []Reply {
	out := make([]Reply, 0, len(raw))
	for _, el := range raw {
		if nested, ok := el.([]any); ok {
			out = append(out, ParseReply(nested))
		}
	}

	return out
}

// scalarString normalizes a scalar reply element to a string.
//
// The wire client reports bulk strings as string and integers as int64.
func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return fmt.Sprint(v)
	}
}
