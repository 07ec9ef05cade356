package anthropic

import "strings"

// StripFences removes surrounding markdown code fences from a model response
// so the remainder can be fed to a JSON parser. Handles ```json, bare ```,
// and responses with prose before the fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)

	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		// Drop an optional language tag on the fence line.
		if j := strings.IndexByte(s, '\n'); j >= 0 && len(strings.Fields(s[:j])) <= 1 {
			s = s[j+1:]
		}
		if j := strings.LastIndex(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}

	// No fence: trim to the outermost JSON braces/brackets if prose surrounds
	// the object.
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	end := strings.LastIndexAny(s, "}]")
	if end < start {
		return s
	}
	return strings.TrimSpace(s[start : end+1])
}
