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

package filter

import (
	"encoding/json"
	"strings"
	"time"

	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrInvalidJSON is returned when a JSON filter document is malformed.
var ErrInvalidJSON = errors.NewKind("invalid filter JSON: %s")

// FromJSON decodes a filter from its JSON form. A JSON string is an Expr
// filter. A Compound is an object with an "and" or "or" array, or one with a
// "conditions" array and an "operator" of "AND" or "OR". An object with
// "field", "start" and "end" is a TimeRange. Any other object is a Condition
// with "field", "operator" and "value" or "values".
func FromJSON(data []byte) (Filter, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrInvalidJSON.New(err)
	}
	return fromDecoded(raw)
}

func fromDecoded(raw interface{}) (Filter, error) {
	switch v := raw.(type) {
	case string:
		return Expr(v), nil
	case map[string]interface{}:
		return fromObject(v)
	default:
		return nil, ErrInvalidJSON.New("filter must be a string or an object")
	}
}

func fromObject(obj map[string]interface{}) (Filter, error) {
	if sub, ok := obj["and"]; ok {
		return fromCompound(ConnectorAnd, sub)
	}
	if sub, ok := obj["or"]; ok {
		return fromCompound(ConnectorOr, sub)
	}
	if sub, ok := obj["conditions"]; ok {
		op, _ := obj["operator"].(string)
		switch strings.ToLower(strings.TrimSpace(op)) {
		case ConnectorAnd:
			return fromCompound(ConnectorAnd, sub)
		case ConnectorOr:
			return fromCompound(ConnectorOr, sub)
		}
		return nil, ErrInvalidJSON.New(`compound "operator" must be "AND" or "OR"`)
	}

	field, ok := obj["field"].(string)
	if !ok {
		return nil, ErrInvalidJSON.New(`missing "field"`)
	}

	if _, ok := obj["start"]; ok {
		return fromTimeRange(field, obj)
	}

	op, ok := obj["operator"].(string)
	if !ok {
		return nil, ErrInvalidJSON.New(`missing "operator"`)
	}
	canonical, err := ParseOperator(op)
	if err != nil {
		return nil, err
	}

	c := Condition{Field: field, Operator: canonical}
	if values, ok := obj["values"].([]interface{}); ok {
		c.Values = values
	} else {
		c.Value = obj["value"]
	}
	return c, nil
}

func fromCompound(connector string, sub interface{}) (Filter, error) {
	items, ok := sub.([]interface{})
	if !ok {
		return nil, ErrInvalidJSON.New(`"` + connector + `" must be an array`)
	}

	filters := make([]Filter, len(items))
	for i, item := range items {
		f, err := fromDecoded(item)
		if err != nil {
			return nil, err
		}
		filters[i] = f
	}
	return Compound{Operator: connector, Conditions: filters}, nil
}

func fromTimeRange(field string, obj map[string]interface{}) (Filter, error) {
	start, err := parseRFC3339(obj["start"])
	if err != nil {
		return nil, err
	}
	end, err := parseRFC3339(obj["end"])
	if err != nil {
		return nil, err
	}
	return TimeRange{Field: field, Start: start, End: end}, nil
}

func parseRFC3339(v interface{}) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, ErrInvalidJSON.New("time range bounds must be strings")
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidJSON.New(err)
	}
	return ts, nil
}
