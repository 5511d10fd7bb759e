// Package richtext decodes Day One's stored rich-text payloads into plain text.
//
// Day One changed its rich-text encoding several times over the app's history
// and never migrated old rows, so a single entries table can hold attributed
// strings, Quill-style insert deltas, bare JSON strings, and raw plain text —
// with no version marker. Encodings are recognized by structural shape, tried
// in a fixed order from most to least specific. Extraction is best-effort and
// never fails: a payload nothing can decode comes back as-is or empty.
package richtext

import (
	"encoding/json"
	"strings"
)

// Extract converts a stored rich-text payload into plain text. It never
// returns an error; malformed payloads degrade to the raw input (when it is
// not JSON at all) or to whatever text could be recovered.
func Extract(payload string) string {
	if strings.TrimSpace(payload) == "" {
		return ""
	}

	var data any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		// Legacy plain-text storage. The payload is already the entry text.
		return payload
	}

	switch v := data.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if text, ok := extractKnownShape(v); ok {
			return strings.TrimSpace(text)
		}
	}

	// Valid JSON but no recognized shape: scavenge for the most plausible
	// text content rather than failing the entry.
	return strings.TrimSpace(scavenge(data))
}

// extractKnownShape tries each recognized document shape in priority order.
func extractKnownShape(doc map[string]any) (string, bool) {
	if text, ok := doc["text"].(string); ok {
		return text, true
	}
	if attr, ok := doc["attributedString"].(map[string]any); ok {
		return attributedText(attr), true
	}
	if ops, ok := doc["ops"].([]any); ok {
		return deltaText(ops), true
	}
	if delta, ok := doc["delta"].(map[string]any); ok {
		if ops, ok := delta["ops"].([]any); ok {
			return deltaText(ops), true
		}
	}
	if text, ok := doc["NSString"].(string); ok {
		return text, true
	}
	return "", false
}

// attributedText handles the attributed-string shape: either a flat "string"
// field, or a list of runs each carrying a text fragment.
func attributedText(attr map[string]any) string {
	if s, ok := attr["string"].(string); ok {
		return s
	}
	runs, ok := attr["runs"].([]any)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, r := range runs {
		run, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := run["text"].(string); ok {
			b.WriteString(s)
		}
	}
	return b.String()
}

// deltaText concatenates the string payload of each insert operation.
// Non-string inserts (embedded images, attachments) contribute nothing
// unless they carry their own "text" field.
func deltaText(ops []any) string {
	var b strings.Builder
	for _, o := range ops {
		op, ok := o.(map[string]any)
		if !ok {
			continue
		}
		switch insert := op["insert"].(type) {
		case string:
			b.WriteString(insert)
		case map[string]any:
			if s, ok := insert["text"].(string); ok {
				b.WriteString(s)
			}
		}
	}
	return b.String()
}

const scavengeDepth = 3

// scavenge walks an unrecognized JSON structure collecting string values and
// returns the longest one that looks like prose, preferring anything over ten
// characters. Returns "" when the structure holds no text at all.
func scavenge(data any) string {
	strs := collectStrings(data, scavengeDepth)
	if len(strs) == 0 {
		return ""
	}
	best := ""
	for _, s := range strs {
		if len(s) > 10 && len(s) > len(best) {
			best = s
		}
	}
	if best != "" {
		return best
	}
	return strs[0]
}

func collectStrings(data any, depth int) []string {
	if depth <= 0 {
		return nil
	}
	var out []string
	switch v := data.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	case map[string]any:
		for _, val := range v {
			out = append(out, collectStrings(val, depth-1)...)
		}
	case []any:
		for _, item := range v {
			out = append(out, collectStrings(item, depth-1)...)
		}
	}
	return out
}
