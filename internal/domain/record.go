package domain

// Record is the generic shape of an entity inside the engine.
//
// Records read back from the store carry numeric scalars as json.Number, so
// a row written with age 30 returns age json.Number("30"). Use the
// conversion helpers (Int64, Float64) or a Typed repository with an
// accessor table to get Go numeric types back.
type Record map[string]any

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Without returns a copy of the record with the given keys removed.
func (r Record) Without(keys ...string) Record {
	out := r.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// AsRecord reports whether v is a nested record.
// A nil Record or nil map counts as absent.
func AsRecord(v any) (Record, bool) {
	switch rec := v.(type) {
	case Record:
		return rec, rec != nil
	case map[string]any:
		return Record(rec), rec != nil
	}
	return nil, false
}

// AsRecords converts a has-many value into a slice of records.
// Elements that are not records are skipped.
func AsRecords(v any) []Record {
	switch list := v.(type) {
	case []Record:
		return list
	case []map[string]any:
		out := make([]Record, 0, len(list))
		for _, m := range list {
			if m != nil {
				out = append(out, Record(m))
			}
		}
		return out
	case []any:
		out := make([]Record, 0, len(list))
		for _, item := range list {
			if rec, ok := AsRecord(item); ok {
				out = append(out, rec)
			}
		}
		return out
	}
	return nil
}
