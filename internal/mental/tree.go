package mental

import "sort"

// #region accessors

// GetMap returns tree[key] as an object, or an empty map.
func GetMap(tree map[string]interface{}, key string) map[string]interface{} {
	if tree == nil {
		return map[string]interface{}{}
	}
	if m, ok := tree[key].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// GetString returns tree[key] as a string, or "".
func GetString(tree map[string]interface{}, key string) string {
	if tree == nil {
		return ""
	}
	if s, ok := tree[key].(string); ok {
		return s
	}
	return ""
}

// GetFloat returns tree[key] as a float64 and whether it was numeric.
func GetFloat(tree map[string]interface{}, key string) (float64, bool) {
	if tree == nil {
		return 0, false
	}
	switch v := tree[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// GetSlice returns tree[key] as an array, or nil.
func GetSlice(tree map[string]interface{}, key string) []interface{} {
	if tree == nil {
		return nil
	}
	if s, ok := tree[key].([]interface{}); ok {
		return s
	}
	return nil
}

// #endregion accessors

// #region turn-index

// TurnIndexEntry is one per-turn perception snapshot in iteration order.
type TurnIndexEntry struct {
	TurnID   string
	Snapshot interface{}
}

// TurnIndexEntries exposes memory.turn_index sorted lexicographically by
// turn id. Turn ids are fixed-width zero-padded, so lexicographic order
// equals chronological order.
func TurnIndexEntries(memory map[string]interface{}) []TurnIndexEntry {
	index := GetMap(memory, "turn_index")
	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]TurnIndexEntry, len(ids))
	for i, id := range ids {
		entries[i] = TurnIndexEntry{TurnID: id, Snapshot: index[id]}
	}
	return entries
}

// #endregion turn-index

// #region export-helpers

// Memory returns the memory subtree of a TurnState, or nil.
func Memory(turnState map[string]interface{}) map[string]interface{} {
	if turnState == nil {
		return nil
	}
	if m, ok := turnState["memory"].(map[string]interface{}); ok {
		return m
	}
	return nil
}

// WithoutSituationLog returns a copy of the TurnState with
// memory.situation_log removed, for per-turn export records where the
// monotonically-growing log is hoisted out.
func WithoutSituationLog(turnState map[string]interface{}) map[string]interface{} {
	out := DeepCopy(turnState).(map[string]interface{})
	if mem, ok := out["memory"].(map[string]interface{}); ok {
		delete(mem, "situation_log")
	}
	return out
}

// #endregion export-helpers
