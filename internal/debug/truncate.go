package debug

// MaxLoggedString is the rune length after which logged payload strings are cut.
const MaxLoggedString = 100

// TruncateStrings returns a copy of a decoded JSON object with every string
// longer than limit runes shortened to limit runes plus "...". Nested objects
// and arrays of objects are walked; other values are kept as-is.
func TruncateStrings(obj map[string]any, limit int) map[string]any {
	out := make(map[string]any, len(obj))
	for key, value := range obj {
		switch v := value.(type) {
		case string:
			out[key] = truncate(v, limit)
		case map[string]any:
			out[key] = TruncateStrings(v, limit)
		case []any:
			out[key] = truncateArray(v, limit)
		default:
			out[key] = value
		}
	}
	return out
}

// truncateArray only rewrites arrays made entirely of objects.
func truncateArray(items []any, limit int) []any {
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return items
		}
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = TruncateStrings(item.(map[string]any), limit)
	}
	return out
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
