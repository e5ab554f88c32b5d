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

// Package similartext suggests close matches for misspelled names in error
// messages.
package similartext

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// maxDistanceIgnored is the edit distance above which a name is considered
// unrelated and not worth suggesting.
const maxDistanceIgnored = 3

// distance computes the Levenshtein edit distance between two strings,
// ignoring case.
func distance(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Find returns a ", maybe you mean ...?" suffix naming the entries of names
// closest to src, or an empty string when nothing is close enough. The result
// is meant to be appended to a not-found error message.
func Find(names []string, src string) string {
	if src == "" {
		return ""
	}

	minDist := -1
	var matches []string
	for _, name := range names {
		d := distance(name, src)
		switch {
		case minDist < 0 || d < minDist:
			minDist = d
			matches = []string{name}
		case d == minDist:
			matches = append(matches, name)
		}
	}

	if minDist < 0 || minDist > maxDistanceIgnored {
		return ""
	}
	return fmt.Sprintf(", maybe you mean %s?", strings.Join(matches, " or "))
}

// FindFromMap does the same as Find but over the string keys of a map.
func FindFromMap(m interface{}, src string) string {
	v := reflect.ValueOf(m)
	if v.Kind() != reflect.Map {
		panic("FindFromMap requires a map")
	}

	var names []string
	for _, key := range v.MapKeys() {
		if key.Kind() == reflect.String {
			names = append(names, key.String())
		}
	}
	sort.Strings(names)
	return Find(names, src)
}
