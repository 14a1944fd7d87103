package savestate

import (
	"math"
	"strconv"
)

// Kind is the type of a Lua value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	default:
		return "nil"
	}
}

// Value is an evaluated literal.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	t    *Table
}

// Nil is the nil value.
var Nil = Value{}

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a number value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// TableValue wraps a table.
func TableValue(t *Table) Value { return Value{kind: KindTable, t: t} }

// Kind returns the value's type.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is nil.
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsBool returns the boolean and whether v is one.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the number and whether v is one.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsInt returns the number as an int when it is integral.
func (v Value) AsInt() (int, bool) {
	if v.kind != KindNumber || v.n != math.Trunc(v.n) {
		return 0, false
	}
	return int(v.n), true
}

// AsString returns the string and whether v is one.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsTable returns the table and whether v is one.
func (v Value) AsTable() (*Table, bool) { return v.t, v.kind == KindTable }

// Entry is one key/value pair of a table, in source order.
type Entry struct {
	Key   Value
	Value Value
}

// Table is a Lua table that keeps source order. Assigning nil removes a key,
// matching Lua semantics.
type Table struct {
	entries []Entry
	strs    map[string]int
	nums    map[float64]int
	next    int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{strs: map[string]int{}, nums: map[float64]int{}, next: 1}
}

// Len is the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns the entries in source order.
func (t *Table) Entries() []Entry { return t.entries }

// Get returns the value at a string key.
func (t *Table) Get(key string) (Value, bool) {
	i, ok := t.strs[key]
	if !ok {
		return Nil, false
	}
	return t.entries[i].Value, true
}

// Index returns the value at a numeric key.
func (t *Table) Index(n int) (Value, bool) {
	i, ok := t.nums[float64(n)]
	if !ok {
		return Nil, false
	}
	return t.entries[i].Value, true
}

// Append adds a positional value at the next array index.
func (t *Table) Append(v Value) {
	t.Set(Number(float64(t.next)), v)
	t.next++
}

// Set stores value at key. Keys must be strings, numbers or booleans;
// other keys are ignored since nothing can look them up.
func (t *Table) Set(key, value Value) {
	var idx map[string]int
	var skey string
	var nidx map[float64]int
	var nkey float64

	switch key.kind {
	case KindString:
		idx, skey = t.strs, key.s
	case KindNumber:
		nidx, nkey = t.nums, key.n
	case KindBool:
		idx, skey = t.strs, "\x00bool:"+strconv.FormatBool(key.b)
	default:
		return
	}

	var pos int
	var exists bool
	if idx != nil {
		pos, exists = idx[skey]
	} else {
		pos, exists = nidx[nkey]
	}

	switch {
	case exists && value.IsNil():
		t.remove(pos)
	case exists:
		t.entries[pos].Value = value
	case value.IsNil():
	default:
		t.entries = append(t.entries, Entry{Key: key, Value: value})
		if idx != nil {
			idx[skey] = len(t.entries) - 1
		} else {
			nidx[nkey] = len(t.entries) - 1
		}
	}
}

func (t *Table) remove(pos int) {
	t.entries = append(t.entries[:pos], t.entries[pos+1:]...)
	t.strs = map[string]int{}
	t.nums = map[float64]int{}
	for i, e := range t.entries {
		switch e.Key.kind {
		case KindString:
			t.strs[e.Key.s] = i
		case KindNumber:
			t.nums[e.Key.n] = i
		case KindBool:
			t.strs["\x00bool:"+strconv.FormatBool(e.Key.b)] = i
		}
	}
}
