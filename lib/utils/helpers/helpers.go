package helpers

import (
	"context"
	"strings"
)

func IsContextDone(ctx context.Context) bool {
	if ctx == nil {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
	}
	return false
}

// PayloadText flattens the string values of an opaque action payload into a
// single lowercase blob for substring and pattern matching
func PayloadText(payload map[string]interface{}) string {
	if len(payload) == 0 {
		return ""
	}
	sb := strings.Builder{}
	appendValue(&sb, payload)
	return strings.ToLower(sb.String())
}

func appendValue(sb *strings.Builder, value interface{}) {
	switch v := value.(type) {
	case string:
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(v)
	case map[string]interface{}:
		for _, nested := range v {
			appendValue(sb, nested)
		}
	case []interface{}:
		for _, nested := range v {
			appendValue(sb, nested)
		}
	}
}
