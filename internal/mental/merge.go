package mental

// #region deep-copy

// DeepCopy clones a JSON value tree.
func DeepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = DeepCopy(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = DeepCopy(val)
		}
		return out
	default:
		return t
	}
}

// #endregion deep-copy

// #region deep-merge

// DeepMerge overlays src onto a copy of dst. Objects merge recursively,
// arrays replace wholesale, and scalars overwrite only when non-nil.
func DeepMerge(dst, src map[string]interface{}) map[string]interface{} {
	out := DeepCopy(dst).(map[string]interface{})
	for k, sv := range src {
		if sv == nil {
			continue
		}
		if sm, ok := sv.(map[string]interface{}); ok {
			if dm, ok := out[k].(map[string]interface{}); ok {
				out[k] = DeepMerge(dm, sm)
				continue
			}
		}
		out[k] = DeepCopy(sv)
	}
	return out
}

// #endregion deep-merge

// #region merge-turn

// MergeTurn folds one turn's model output into a well-formed TurnState:
// defaults copy, generic overlay, then the two corrections that guard
// against model-corrupted echoes and flaky memory fields.
//
// prevMemory may be nil on the first turn. The model's echoed turn_id and
// text are discarded in favor of the caller-supplied values; turn_index is
// key-union-overwritten against the previous memory; situation_log facts
// are replaced only when the model returned an array for them at all.
func MergeTurn(prevMemory, output map[string]interface{}, turnID, userText string) map[string]interface{} {
	if prevMemory == nil {
		prevMemory = NewMemory()
	}
	merged := DeepMerge(Defaults(), output)

	// The generic overlay lets a scalar replace a whole section; the
	// merged tree must stay schema-shaped, so restore the defaults
	// subtree for any top-level section the model flattened.
	for k, dv := range Defaults() {
		if _, isObj := dv.(map[string]interface{}); !isObj {
			continue
		}
		if _, ok := merged[k].(map[string]interface{}); !ok {
			merged[k] = dv
		}
	}

	// Correction 1: the current turn's identity is authoritative.
	behavior := merged["behavior"].(map[string]interface{})
	behavior["turn_id"] = turnID
	behavior["text"] = userText

	// Correction 2: recompute memory against the previous turn's memory.
	merged["memory"] = mergeMemory(prevMemory, output, turnID)

	return merged
}

// mergeMemory applies the cross-turn carry-over rules.
func mergeMemory(prev, output map[string]interface{}, turnID string) map[string]interface{} {
	outMem, _ := output["memory"].(map[string]interface{})

	// turn_index: union of previous and fresh entries, fresh wins per key.
	index := map[string]interface{}{}
	for k, v := range GetMap(prev, "turn_index") {
		index[k] = DeepCopy(v)
	}
	for k, v := range GetMap(outMem, "turn_index") {
		index[k] = DeepCopy(v)
	}
	if _, ok := index[turnID]; !ok {
		// The model did not index the current turn; record an empty
		// snapshot so the index stays one entry per turn.
		index[turnID] = map[string]interface{}{}
	}

	// situation_log: summary is safe to prefer fresh; a missing facts
	// array must not erase accumulated facts.
	prevLog := GetMap(prev, "situation_log")
	outLog := GetMap(outMem, "situation_log")

	summary := GetString(prevLog, "summary")
	if s, ok := outLog["summary"].(string); ok && s != "" {
		summary = s
	}

	var facts interface{}
	if f, ok := outLog["facts"].([]interface{}); ok {
		facts = DeepCopy(f)
	} else if f, ok := prevLog["facts"].([]interface{}); ok {
		facts = DeepCopy(f)
	} else {
		facts = []interface{}{}
	}

	return map[string]interface{}{
		"situation_log": map[string]interface{}{
			"summary": summary,
			"facts":   facts,
		},
		"turn_index": index,
	}
}

// #endregion merge-turn

// #region merge-legacy

// MergeLegacy overlays model output onto the legacy defaults. Stateless:
// no merge with any prior value, and unknown keys are dropped.
func MergeLegacy(output map[string]interface{}) map[string]interface{} {
	merged := LegacyDefaults()
	for _, k := range legacyKeys {
		if v, ok := output[k]; ok && v != nil {
			merged[k] = v
		}
	}
	return merged
}

// #endregion merge-legacy
