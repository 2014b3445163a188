package domain

import "fmt"

// seen tracks entities already encoded during one ToRecord call so that
// cyclic object graphs (a child pointing back at its parent) terminate.
type seen map[any]bool

// Field is one entry of an accessor table.
type Field[T any] struct {
	Name string
	get  func(*T, seen) (any, bool)
	set  func(*T, any) error
}

// Accessors is a hand-written get/set table for entities of type T.
type Accessors[T any] struct {
	fields []Field[T]
}

// NewAccessors creates an accessor table from the given fields
func NewAccessors[T any](fields ...Field[T]) *Accessors[T] {
	return &Accessors[T]{fields: fields}
}

// Add appends fields to the table. Used to close cycles between tables that
// reference each other.
func (a *Accessors[T]) Add(fields ...Field[T]) *Accessors[T] {
	a.fields = append(a.fields, fields...)
	return a
}

// ToRecord converts an entity into a record. Nil relation values are omitted.
func (a *Accessors[T]) ToRecord(v *T) Record {
	return a.toRecord(v, seen{})
}

func (a *Accessors[T]) toRecord(v *T, s seen) Record {
	if v == nil {
		return nil
	}
	s[v] = true
	rec := make(Record, len(a.fields))
	for _, f := range a.fields {
		if f.get == nil {
			continue
		}
		if val, ok := f.get(v, s); ok {
			rec[f.Name] = val
		}
	}
	return rec
}

// FromRecord builds a new entity from a record.
// Properties without a matching field are ignored.
func (a *Accessors[T]) FromRecord(rec Record) (*T, error) {
	v := new(T)
	for _, f := range a.fields {
		if f.set == nil {
			continue
		}
		val, ok := rec[f.Name]
		if !ok {
			continue
		}
		if err := f.set(v, val); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return v, nil
}

// Scalar declares a field with explicit get and set functions.
func Scalar[T any](name string, get func(*T) any, set func(*T, any) error) Field[T] {
	return Field[T]{
		Name: name,
		get: func(v *T, _ seen) (any, bool) {
			val := get(v)
			return val, val != nil
		},
		set: set,
	}
}

// StringField declares a string property backed by a struct field.
func StringField[T any](name string, ref func(*T) *string) Field[T] {
	return Field[T]{
		Name: name,
		get:  func(v *T, _ seen) (any, bool) { return *ref(v), true },
		set: func(v *T, val any) error {
			s, err := String(val)
			if err != nil {
				return err
			}
			*ref(v) = s
			return nil
		},
	}
}

// Int64Field declares an integer property backed by a struct field.
func Int64Field[T any](name string, ref func(*T) *int64) Field[T] {
	return Field[T]{
		Name: name,
		get:  func(v *T, _ seen) (any, bool) { return *ref(v), true },
		set: func(v *T, val any) error {
			i, err := Int64(val)
			if err != nil {
				return err
			}
			*ref(v) = i
			return nil
		},
	}
}

// IntField declares an int property backed by a struct field.
func IntField[T any](name string, ref func(*T) *int) Field[T] {
	return Field[T]{
		Name: name,
		get:  func(v *T, _ seen) (any, bool) { return *ref(v), true },
		set: func(v *T, val any) error {
			i, err := Int64(val)
			if err != nil {
				return err
			}
			*ref(v) = int(i)
			return nil
		},
	}
}

// Float64Field declares a floating point property backed by a struct field.
func Float64Field[T any](name string, ref func(*T) *float64) Field[T] {
	return Field[T]{
		Name: name,
		get:  func(v *T, _ seen) (any, bool) { return *ref(v), true },
		set: func(v *T, val any) error {
			f, err := Float64(val)
			if err != nil {
				return err
			}
			*ref(v) = f
			return nil
		},
	}
}

// BoolField declares a boolean property backed by a struct field.
func BoolField[T any](name string, ref func(*T) *bool) Field[T] {
	return Field[T]{
		Name: name,
		get:  func(v *T, _ seen) (any, bool) { return *ref(v), true },
		set: func(v *T, val any) error {
			b, err := Bool(val)
			if err != nil {
				return err
			}
			*ref(v) = b
			return nil
		},
	}
}

// One declares a has-one relation property holding a *R.
// related is resolved lazily so two tables may reference each other.
func One[T, R any](name string, related func() *Accessors[R], ref func(*T) **R) Field[T] {
	return Field[T]{
		Name: name,
		get: func(v *T, s seen) (any, bool) {
			target := *ref(v)
			if target == nil || s[target] {
				return nil, false
			}
			return related().toRecord(target, s), true
		},
		set: func(v *T, val any) error {
			rec, ok := AsRecord(val)
			if !ok {
				*ref(v) = nil
				return nil
			}
			target, err := related().FromRecord(rec)
			if err != nil {
				return err
			}
			*ref(v) = target
			return nil
		},
	}
}

// Many declares a has-many relation property holding a []*R.
func Many[T, R any](name string, related func() *Accessors[R], ref func(*T) *[]*R) Field[T] {
	return Field[T]{
		Name: name,
		get: func(v *T, s seen) (any, bool) {
			list := *ref(v)
			if list == nil {
				return nil, false
			}
			out := make([]Record, 0, len(list))
			for _, item := range list {
				if item == nil || s[item] {
					continue
				}
				out = append(out, related().toRecord(item, s))
			}
			return out, true
		},
		set: func(v *T, val any) error {
			recs := AsRecords(val)
			list := make([]*R, 0, len(recs))
			for _, rec := range recs {
				item, err := related().FromRecord(rec)
				if err != nil {
					return err
				}
				list = append(list, item)
			}
			*ref(v) = list
			return nil
		},
	}
}
