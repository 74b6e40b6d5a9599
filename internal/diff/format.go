package diff

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evanofslack/domain-sync/internal/domain"
)

// Format renders a change set as human-readable text, one line per changed
// field. The metadata blob gets sub-key treatment: the union of keys present
// on either side is compared, with "status" and "security_lock" rendered in
// plain English through the permissive boolean coercion. The auto-renew flag
// gets the same treatment at the top level. Everything else renders its raw
// serialized values. Pure, no I/O.
func Format(changes ChangeSet) string {
	var lines []string

	for _, key := range sortedKeys(changes) {
		change := changes[key]

		switch {
		case key == "metadata":
			if sub := formatMetadata(change); sub != "" {
				lines = append(lines, sub)
				continue
			}
			lines = append(lines, formatPair(key, change.Old, change.New))
		case key == "ext_auto_renew":
			lines = append(lines, fmt.Sprintf(" - Auto Renew Changed: %t => %t",
				domain.CoerceBool(change.Old), domain.CoerceBool(change.New)))
		default:
			lines = append(lines, formatPair(key, change.Old, change.New))
		}
	}

	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// formatMetadata compares metadata sub-keys across both sides. Returns empty
// when either side is not a structured object, in which case the caller
// falls back to the generic rendering of the whole blob.
func formatMetadata(change FieldChange) string {
	pre, preOK := change.Old.(map[string]any)
	post, postOK := change.New.(map[string]any)
	if !preOK || !postOK {
		return ""
	}

	union := make(map[string]bool, len(pre)+len(post))
	for k := range pre {
		union[k] = true
	}
	for k := range post {
		union[k] = true
	}

	var lines []string
	for _, key := range sortedKeys(union) {
		preVal, postVal := pre[key], post[key]
		if jsonEqual(preVal, postVal) {
			continue
		}

		switch key {
		case "status":
			lines = append(lines, fmt.Sprintf(" - Status Changed: %t => %t",
				domain.CoerceBool(preVal), domain.CoerceBool(postVal)))
		case "security_lock":
			lines = append(lines, fmt.Sprintf(" - Security Lock Changed: %t => %t",
				domain.CoerceBool(preVal), domain.CoerceBool(postVal)))
		default:
			lines = append(lines, formatPair(key, preVal, postVal))
		}
	}
	return strings.Join(lines, "\n")
}

func formatPair(key string, old, new any) string {
	return fmt.Sprintf(" - %s: (%s, %s)", key, renderValue(old), renderValue(new))
}

// renderValue serializes a decoded JSON value back to its wire form, so
// strings keep their quotes and absent values render as null.
func renderValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func jsonEqual(a, b any) bool {
	return renderValue(a) == renderValue(b)
}
