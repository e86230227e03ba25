package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// TimeScale is the number of fixed-point units per simulation time unit in
// canonical output. Floats never appear in canonical JSON.
const TimeScale = 1_000_000

// Fixed converts a clock reading to canonical fixed-point units.
func Fixed(t float64) int64 {
	return int64(math.Round(t * TimeScale))
}

// Canonical returns the event as a map holding only strings, ints and bools.
// RunID is left out so traces of different runs with the same behavior
// encode identically.
func (ev Event) Canonical() map[string]any {
	m := map[string]any{
		"seq":    ev.Seq,
		"tick":   ev.Tick,
		"clock":  Fixed(ev.Clock),
		"kind":   string(ev.Kind),
		"entity": ev.Entity,
	}
	switch ev.Kind {
	case KindTransition:
		m["from"] = ev.From
		m["to"] = ev.To
	case KindSent, KindScheduled, KindSuppressed, KindDelivered, KindUnhandled:
		m["sender"] = ev.Sender
		m["receiver"] = ev.Receiver
		m["msg"] = ev.Msg
		m["dispatch_at"] = Fixed(ev.DispatchAt)
	}
	if ev.Detail != "" {
		m["detail"] = ev.Detail
	}
	return m
}

// MarshalEvents encodes events as a canonical JSON array.
func MarshalEvents(events []Event) ([]byte, error) {
	list := make([]any, len(events))
	for i, ev := range events {
		list[i] = ev.Canonical()
	}
	return MarshalCanonical(list)
}

// MarshalCanonical produces canonical JSON:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings NFC normalized
//  4. No floats, no null
func MarshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalString(val)
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []any:
		return marshalArray(val)
	case map[string]any:
		return marshalObject(val)
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func marshalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareUTF16(keys[i], keys[j]) < 0
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func compareUTF16(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	return len(ua) - len(ub)
}
