package session

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DataKind discriminates the variants a session data value can take.
type DataKind string

const (
	KindStr     DataKind = "str"
	KindInt     DataKind = "int"
	KindFloat   DataKind = "float"
	KindList    DataKind = "list"
	KindListStr DataKind = "list_str"
	KindDict    DataKind = "dict"
	KindNone    DataKind = "none"
)

// Data is a tagged value stored in the session data bag. It covers both
// user-entered input and structured service results, nested arbitrarily.
type Data struct {
	Kind    DataKind
	Str     string
	Int     int64
	Float   float64
	List    []Data
	ListStr []string
	Dict    map[string]Data
}

// NewStr wraps a string value.
func NewStr(v string) Data { return Data{Kind: KindStr, Str: v} }

// NewInt wraps an integer value.
func NewInt(v int64) Data { return Data{Kind: KindInt, Int: v} }

// NewFloat wraps a float value.
func NewFloat(v float64) Data { return Data{Kind: KindFloat, Float: v} }

// NewList wraps a list of tagged values.
func NewList(v []Data) Data { return Data{Kind: KindList, List: v} }

// NewListStr wraps a list of strings.
func NewListStr(v []string) Data { return Data{Kind: KindListStr, ListStr: v} }

// NewDict wraps a nested map of tagged values.
func NewDict(v map[string]Data) Data { return Data{Kind: KindDict, Dict: v} }

// NewNone returns the empty value.
func NewNone() Data { return Data{Kind: KindNone} }

// ErrorValue is the structured value written into session data when a
// service's handler cannot be resolved. The flow keeps running and menu
// templates can render a fallback from it.
func ErrorValue(msg string) Data {
	return NewDict(map[string]Data{"error": NewStr(msg)})
}

// String renders the value the way screen templates expect scalars:
// strings verbatim, numbers formatted, string lists comma-joined.
func (d Data) String() string {
	switch d.Kind {
	case KindStr:
		return d.Str
	case KindInt:
		return fmt.Sprintf("%d", d.Int)
	case KindFloat:
		return fmt.Sprintf("%g", d.Float)
	case KindListStr:
		return strings.Join(d.ListStr, ", ")
	default:
		return ""
	}
}

// dataJSON is the serialization envelope with an explicit discriminant.
type dataJSON struct {
	Type    DataKind        `json:"type"`
	Str     *string         `json:"str,omitempty"`
	Int     *int64          `json:"int,omitempty"`
	Float   *float64        `json:"float,omitempty"`
	List    []Data          `json:"list,omitempty"`
	ListStr []string        `json:"listStr,omitempty"`
	Dict    map[string]Data `json:"dict,omitempty"`
}

// MarshalJSON encodes the tagged value with its discriminant.
func (d Data) MarshalJSON() ([]byte, error) {
	env := dataJSON{Type: d.Kind}
	switch d.Kind {
	case KindStr:
		env.Str = &d.Str
	case KindInt:
		env.Int = &d.Int
	case KindFloat:
		env.Float = &d.Float
	case KindList:
		env.List = d.List
	case KindListStr:
		env.ListStr = d.ListStr
	case KindDict:
		env.Dict = d.Dict
	case KindNone, "":
		env.Type = KindNone
	default:
		return nil, fmt.Errorf("unknown data kind %q", d.Kind)
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes the tagged value by its discriminant.
func (d *Data) UnmarshalJSON(b []byte) error {
	var env dataJSON
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	switch env.Type {
	case KindStr:
		*d = Data{Kind: KindStr}
		if env.Str != nil {
			d.Str = *env.Str
		}
	case KindInt:
		*d = Data{Kind: KindInt}
		if env.Int != nil {
			d.Int = *env.Int
		}
	case KindFloat:
		*d = Data{Kind: KindFloat}
		if env.Float != nil {
			d.Float = *env.Float
		}
	case KindList:
		*d = Data{Kind: KindList, List: env.List}
	case KindListStr:
		*d = Data{Kind: KindListStr, ListStr: env.ListStr}
	case KindDict:
		*d = Data{Kind: KindDict, Dict: env.Dict}
	case KindNone, "":
		*d = Data{Kind: KindNone}
	default:
		return fmt.Errorf("unknown data kind %q", env.Type)
	}
	return nil
}
