package diff

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/evanofslack/domain-sync/internal/domain"
)

// Store-managed housekeeping fields, never meaningful for diffing.
var ignoredKeys = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

// FieldChange is the old and new value of one changed field, as decoded
// canonical JSON values.
type FieldChange struct {
	Old any
	New any
}

// ChangeSet maps a changed field name to its old and new value.
type ChangeSet map[string]FieldChange

// Change is a changed domain together with its changed fields.
type Change struct {
	Record domain.Record
	Fields ChangeSet
}

// Result holds the classified differences between two snapshots of one
// provider's domains. Output order is not guaranteed beyond grouping.
type Result struct {
	Additions []domain.Record
	Deletions []string
	Changes   []Change
}

// IsEmpty reports whether the two snapshots were equivalent.
func (r Result) IsEmpty() bool {
	return len(r.Additions) == 0 && len(r.Deletions) == 0 && len(r.Changes) == 0
}

// Diff compares a stored snapshot against a freshly ingested one and
// classifies every difference as an addition, a deletion, or a field-level
// change. Records are matched by domain name. Comparison happens on the
// canonical JSON serialization of each record, so a field counts as changed
// exactly when its serialized value differs. Metadata is compared as one
// opaque value here; sub-key comparison is the formatter's concern.
func Diff(pre, post []domain.Record) (Result, error) {
	result := Result{}

	preByName := make(map[string]domain.Record, len(pre))
	for _, rec := range pre {
		preByName[rec.Name] = rec
	}

	for _, rec := range post {
		prev, exists := preByName[rec.Name]
		if !exists {
			result.Additions = append(result.Additions, rec)
			continue
		}

		preRaw, err := canonical(prev)
		if err != nil {
			return Result{}, fmt.Errorf("serialize stored record %s: %w", prev.Name, err)
		}
		postRaw, err := canonical(rec)
		if err != nil {
			return Result{}, fmt.Errorf("serialize ingested record %s: %w", rec.Name, err)
		}

		fields := ChangeSet{}
		for key, postVal := range postRaw {
			if ignoredKeys[key] {
				continue
			}
			if !reflect.DeepEqual(preRaw[key], postVal) {
				fields[key] = FieldChange{Old: preRaw[key], New: postVal}
			}
		}

		if len(fields) > 0 {
			result.Changes = append(result.Changes, Change{Record: rec, Fields: fields})
		}
	}

	postNames := make(map[string]bool, len(post))
	for _, rec := range post {
		postNames[rec.Name] = true
	}
	for _, rec := range pre {
		if !postNames[rec.Name] {
			result.Deletions = append(result.Deletions, rec.Name)
		}
	}

	return result, nil
}

// canonical flattens a record to its key to serialized-value form.
func canonical(rec domain.Record) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// sortedKeys returns the keys of a change set in stable order. Output is for
// humans, but stable ordering keeps messages reproducible.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
