package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// Optional is a float64 that may be explicitly absent (N/A)
type Optional struct {
	Value float64
	Valid bool
}

// Some wraps a defined value; non-finite input becomes None
func Some(v float64) Optional {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Optional{}
	}
	return Optional{Value: v, Valid: true}
}

// None returns an absent value
func None() Optional { return Optional{} }

// Get returns the value and whether it is defined
func (o Optional) Get() (float64, bool) { return o.Value, o.Valid }

// Or returns the value, or def when absent
func (o Optional) Or(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

func (o Optional) String() string {
	if !o.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(o.Value, 'f', -1, 64)
}

func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Optional{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
