// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package semantic

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ColumnType is the declared type of a relation column. Literal values in
// filters are converted based on the target column's type, not the literal's
// lexical shape, so backends that reject implicit string to date comparisons
// keep working.
type ColumnType int

const (
	// Unknown is the zero type. Values pass through unconverted.
	Unknown ColumnType = iota
	// Boolean is a true/false column.
	Boolean
	// Int64 is a signed integer column.
	Int64
	// Float64 is a floating point column.
	Float64
	// Text is a string column.
	Text
	// Date is a calendar date column.
	Date
	// Timestamp is a point-in-time column.
	Timestamp
)

// DateLayout is the layout used for date literals.
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	DateLayout,
}

func (t ColumnType) String() string {
	switch t {
	case Boolean:
		return "boolean"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Text:
		return "text"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// IsTime returns whether the type holds temporal values.
func (t ColumnType) IsTime() bool {
	return t == Date || t == Timestamp
}

// IsNumber returns whether the type holds numeric values.
func (t ColumnType) IsNumber() bool {
	return t == Int64 || t == Float64
}

// Convert converts the given value to this type. nil converts to nil.
func (t ColumnType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	switch t {
	case Boolean:
		return cast.ToBoolE(v)
	case Int64:
		return cast.ToInt64E(v)
	case Float64:
		return cast.ToFloat64E(v)
	case Text:
		return cast.ToStringE(v)
	case Date:
		ts, err := parseTime(v)
		if err != nil {
			return nil, err
		}
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location()), nil
	case Timestamp:
		return parseTime(v)
	default:
		return v, nil
	}
}

// Check returns whether the value is valid for this type.
func (t ColumnType) Check(v interface{}) bool {
	if v == nil {
		return true
	}
	_, err := t.Convert(v)
	return err == nil
}

// Compare compares two values of this type. It returns -1, 0 or 1.
func (t ColumnType) Compare(a, b interface{}) (int, error) {
	typ := t
	if typ == Unknown {
		typ = TypeOfValue(a)
	}

	switch typ {
	case Boolean:
		av, err := cast.ToBoolE(a)
		if err != nil {
			return 0, ErrInvalidValue.New(a, typ)
		}
		bv, err := cast.ToBoolE(b)
		if err != nil {
			return 0, ErrInvalidValue.New(b, typ)
		}
		if av == bv {
			return 0, nil
		}
		if !av {
			return -1, nil
		}
		return 1, nil
	case Int64, Float64:
		av, err := cast.ToFloat64E(a)
		if err != nil {
			return 0, ErrInvalidValue.New(a, typ)
		}
		bv, err := cast.ToFloat64E(b)
		if err != nil {
			return 0, ErrInvalidValue.New(b, typ)
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case Date, Timestamp:
		av, err := parseTime(a)
		if err != nil {
			return 0, err
		}
		bv, err := parseTime(b)
		if err != nil {
			return 0, err
		}
		switch {
		case av.Before(bv):
			return -1, nil
		case av.After(bv):
			return 1, nil
		default:
			return 0, nil
		}
	default:
		av, err := cast.ToStringE(a)
		if err != nil {
			return 0, ErrInvalidValue.New(a, typ)
		}
		bv, err := cast.ToStringE(b)
		if err != nil {
			return 0, ErrInvalidValue.New(b, typ)
		}
		return strings.Compare(av, bv), nil
	}
}

// Compare compares two values of possibly different Go types, using the type
// of the first non-nil value to pick comparison semantics. It returns -1, 0
// or 1.
func Compare(a, b interface{}) (int, error) {
	typ := TypeOfValue(a)
	if typ == Unknown {
		typ = TypeOfValue(b)
	}
	return typ.Compare(a, b)
}

func parseTime(v interface{}) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, ErrInvalidValue.New(v, Timestamp)
	default:
		ts, err := cast.ToTimeE(v)
		if err != nil {
			return time.Time{}, ErrInvalidValue.New(v, Timestamp)
		}
		return ts, nil
	}
}

// TypeOfValue returns the column type a Go value naturally maps to.
func TypeOfValue(v interface{}) ColumnType {
	switch v.(type) {
	case bool:
		return Boolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Int64
	case float32, float64:
		return Float64
	case time.Time:
		return Timestamp
	case string:
		return Text
	default:
		return Unknown
	}
}
