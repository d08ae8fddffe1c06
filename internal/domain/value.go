package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// MaxValueDepth bounds nesting for decoding and comparison.
const MaxValueDepth = 512

var ErrValueTooDeep = errors.New("value nesting exceeds maximum depth")

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a decoded JSON-like value: test case inputs, expected outputs and
// program output all travel as Values. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	seq  []Value
	m    map[string]Value
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

func String(s string) Value { return Value{kind: KindString, s: s} }

func Sequence(items ...Value) Value { return Value{kind: KindSequence, seq: items} }

func Mapping(fields map[string]Value) Value { return Value{kind: KindMapping, m: fields} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return len(v.m)
	case KindString:
		return len(v.s)
	}
	return 0
}

// Equal reports whether v and other are structurally equal.
func (v Value) Equal(other Value) bool {
	return StructurallyEqual(v, other)
}

// StructurallyEqual compares two values deeply. Sequences are order-sensitive,
// mappings are compared by key set. An empty sequence equals an empty mapping:
// expected values authored as `{}` and `[]` are indistinguishable in the
// fixtures this service grades against.
func StructurallyEqual(a, b Value) bool {
	return equalAt(a, b, 0)
}

func equalAt(a, b Value, depth int) bool {
	if depth > MaxValueDepth {
		return false
	}
	if a.kind != b.kind {
		return emptyCollections(a, b)
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindSequence:
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !equalAt(a.seq[i], b.seq[i], depth+1) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(a.m) != len(b.m) {
			return false
		}
		for k, av := range a.m {
			bv, ok := b.m[k]
			if !ok || !equalAt(av, bv, depth+1) {
				return false
			}
		}
		return true
	}
	return false
}

func emptyCollections(a, b Value) bool {
	isEmptyCollection := func(v Value) bool {
		return (v.kind == KindSequence || v.kind == KindMapping) && v.Len() == 0
	}
	return isEmptyCollection(a) && isEmptyCollection(b)
}

// ParseValue decodes a single JSON document into a Value.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("invalid JSON: unexpected data after top-level value")
	}
	return ValueFromAny(raw)
}

// ValueFromAny converts a tree produced by encoding/json or gopkg.in/yaml.v3.
func ValueFromAny(raw interface{}) (Value, error) {
	return fromAny(raw, 0)
}

func fromAny(raw interface{}, depth int) (Value, error) {
	if depth > MaxValueDepth {
		return Value{}, ErrValueTooDeep
	}
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case []interface{}:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			v, err := fromAny(item, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Sequence(items...), nil
	case map[string]interface{}:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			v, err := fromAny(item, depth+1)
			if err != nil {
				return Value{}, err
			}
			fields[k] = v
		}
		return Mapping(fields), nil
	case map[interface{}]interface{}:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			v, err := fromAny(item, depth+1)
			if err != nil {
				return Value{}, err
			}
			fields[fmt.Sprint(k)] = v
		}
		return Mapping(fields), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

// Any returns the value as a plain Go tree suitable for encoding/json.
func (v Value) Any() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindSequence:
		items := make([]interface{}, len(v.seq))
		for i, item := range v.seq {
			items[i] = item.Any()
		}
		return items
	case KindMapping:
		fields := make(map[string]interface{}, len(v.m))
		for k, item := range v.m {
			fields[k] = item.Any()
		}
		return fields
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// String renders the value as compact JSON with sorted keys.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return "<invalid>"
	}
	return string(data)
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return fmt.Errorf("cannot encode number %v", v.n)
		}
		buf.WriteString(strconv.FormatFloat(v.n, 'f', -1, 64))
	case KindString:
		data, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := v.m[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
