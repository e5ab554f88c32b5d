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
)

// Grain is a time resolution. Time dimensions declare the smallest grain they
// support; queries may group at that grain or any coarser one.
type Grain int

const (
	// GrainNone means no grain was specified.
	GrainNone Grain = iota
	// GrainSecond truncates to seconds.
	GrainSecond
	// GrainMinute truncates to minutes.
	GrainMinute
	// GrainHour truncates to hours.
	GrainHour
	// GrainDay truncates to calendar days.
	GrainDay
	// GrainWeek truncates to ISO weeks starting on Monday.
	GrainWeek
	// GrainMonth truncates to the first day of the month.
	GrainMonth
	// GrainQuarter truncates to the first day of the quarter.
	GrainQuarter
	// GrainYear truncates to the first day of the year.
	GrainYear
)

var grainNames = map[Grain]string{
	GrainSecond:  "second",
	GrainMinute:  "minute",
	GrainHour:    "hour",
	GrainDay:     "day",
	GrainWeek:    "week",
	GrainMonth:   "month",
	GrainQuarter: "quarter",
	GrainYear:    "year",
}

func (g Grain) String() string {
	if name, ok := grainNames[g]; ok {
		return name
	}
	return "none"
}

// ParseGrain parses a grain name, case insensitively.
func ParseGrain(s string) (Grain, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for g, n := range grainNames {
		if n == name {
			return g, nil
		}
	}
	return GrainNone, ErrInvalidGrain.New(s, "second, minute, hour, day, week, month, quarter, year")
}

// FinerThan returns whether g is a strictly finer resolution than o. An
// unspecified grain is never finer than anything.
func (g Grain) FinerThan(o Grain) bool {
	return g != GrainNone && o != GrainNone && g < o
}

// Truncate truncates the given time down to the grain boundary.
func (g Grain) Truncate(t time.Time) time.Time {
	switch g {
	case GrainSecond:
		return t.Truncate(time.Second)
	case GrainMinute:
		return t.Truncate(time.Minute)
	case GrainHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case GrainDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case GrainWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		weekday := int(day.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return day.AddDate(0, 0, 1-weekday)
	case GrainMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case GrainQuarter:
		month := (int(t.Month())-1)/3*3 + 1
		return time.Date(t.Year(), time.Month(month), 1, 0, 0, 0, 0, t.Location())
	case GrainYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	default:
		return t
	}
}
