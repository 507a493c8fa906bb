package utils

import "strings"

// minRevealLen is the shortest value, in runes, whose tail is shown.
const minRevealLen = 8

// MaskSecret hides all but the last four characters of s.
// Values shorter than eight characters are fully masked.
func MaskSecret(s string) string {
	r := []rune(s)
	if len(r) < minRevealLen {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}

// MaskValue masks every string leaf of a decrypted secret value, keeping its shape.
func MaskValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return MaskSecret(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = MaskValue(e)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = MaskSecret(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = MaskValue(e)
		}
		return out
	default:
		return "****"
	}
}
