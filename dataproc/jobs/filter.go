// Copyright 2026 The LUCI Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jobs

import (
	"sort"
	"strconv"
	"strings"

	"go.chromium.org/luci/common/errors"
)

// LabelTerm restricts a job label.
type LabelTerm struct {
	Key string
	// Value is the required label value. Ignored if Any is set.
	Value string
	// Any matches any value as long as the label is present.
	Any bool
}

// Filter is a parsed ListJobs filter.
//
// The filter grammar is
//
//	filter = term { ["AND"] term }
//	term   = field [ "=" value ]
//
// where field is "status.state" or "labels.<KEY>". status.state takes ACTIVE
// or NON_ACTIVE (or "*" for any state). A label term without a value, or with
// an unquoted "*", matches jobs having the label at all; a quoted "*" is a
// literal value. Terms are always combined with AND; whitespace between terms
// is an implicit AND.
//
// Example: "status.state = ACTIVE AND labels.env = staging AND labels.starred = *"
type Filter struct {
	// State is MatchAll if the filter does not restrict the state.
	State StateMatcher
	// Labels are the label restrictions, in filter order.
	Labels []LabelTerm
}

type tokenKind int

const (
	tokWord tokenKind = iota
	tokEquals
)

type token struct {
	kind tokenKind
	text string
	pos  int
	// quoted is set for words that came from a string literal.
	quoted bool
}

func tokenize(s string) ([]token, error) {
	var out []token
	for i := 0; i < len(s); {
		switch c := s[i]; {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '=':
			out = append(out, token{kind: tokEquals, text: "=", pos: i})
			i++
		case c == '"':
			end := i + 1
			for end < len(s) && s[end] != '"' {
				if s[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(s) {
				return nil, errors.Reason("unterminated string at offset %d", i).Err()
			}
			v, err := strconv.Unquote(s[i : end+1])
			if err != nil {
				return nil, errors.Annotate(err, "bad string at offset %d", i).Err()
			}
			out = append(out, token{kind: tokWord, text: v, pos: i, quoted: true})
			i = end + 1
		default:
			start := i
			for i < len(s) && !strings.ContainsRune(" \t\n=\"", rune(s[i])) {
				i++
			}
			out = append(out, token{kind: tokWord, text: s[start:i], pos: start})
		}
	}
	return out, nil
}

// ParseFilter parses a ListJobs filter. An empty filter matches everything.
func ParseFilter(s string) (*Filter, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, errors.Annotate(err, "bad filter").Err()
	}
	f := &Filter{}
	stateSeen := false
	for i := 0; i < len(toks); {
		t := toks[i]
		if t.kind != tokWord {
			return nil, errors.Reason("bad filter: unexpected %q at offset %d", t.text, t.pos).Err()
		}
		if t.text == "AND" {
			if i == 0 || i == len(toks)-1 {
				return nil, errors.Reason("bad filter: dangling AND at offset %d", t.pos).Err()
			}
			i++
			continue
		}
		field := t.text
		i++
		value, hasValue, wildcard := "", false, true
		if i < len(toks) && toks[i].kind == tokEquals {
			if i+1 >= len(toks) || toks[i+1].kind != tokWord {
				return nil, errors.Reason("bad filter: missing value for %q", field).Err()
			}
			value, hasValue = toks[i+1].text, true
			wildcard = value == "*" && !toks[i+1].quoted
			i += 2
		}

		switch {
		case field == "status.state":
			if stateSeen {
				return nil, errors.Reason("bad filter: status.state is given more than once").Err()
			}
			stateSeen = true
			switch {
			case wildcard && hasValue:
				f.State = MatchAll
			case value == "ACTIVE":
				f.State = MatchActive
			case value == "NON_ACTIVE":
				f.State = MatchNonActive
			default:
				return nil, errors.Reason("bad filter: status.state must be ACTIVE or NON_ACTIVE, got %q", value).Err()
			}
		case strings.HasPrefix(field, "labels."):
			key := strings.TrimPrefix(field, "labels.")
			if key == "" {
				return nil, errors.Reason("bad filter: empty label key at offset %d", t.pos).Err()
			}
			term := LabelTerm{Key: key, Value: value, Any: wildcard}
			if term.Any {
				term.Value = ""
			}
			f.Labels = append(f.Labels, term)
		default:
			return nil, errors.Reason("bad filter: unknown field %q, want status.state or labels.<KEY>", field).Err()
		}
	}
	return f, nil
}

// String formats the filter in the canonical form accepted by ParseFilter.
func (f *Filter) String() string {
	var terms []string
	if f.State != MatchAll {
		terms = append(terms, "status.state = "+f.State.String())
	}
	for _, l := range f.Labels {
		v := "*"
		if !l.Any {
			v = l.Value
			if v == "" || v == "*" || strings.ContainsAny(v, " \t\n=\"") {
				v = strconv.Quote(v)
			}
		}
		terms = append(terms, "labels."+l.Key+" = "+v)
	}
	return strings.Join(terms, " AND ")
}

// WithState returns a copy of the filter restricted to the state matcher.
func (f Filter) WithState(m StateMatcher) *Filter {
	f.State = m
	return &f
}

// WithLabel returns a copy of the filter that also requires the label to
// have the value, or to be present if the value is "*".
func (f Filter) WithLabel(key, value string) *Filter {
	term := LabelTerm{Key: key, Value: value}
	if value == "*" {
		term = LabelTerm{Key: key, Any: true}
	}
	f.Labels = append(append([]LabelTerm(nil), f.Labels...), term)
	return &f
}

// LabelsFilter builds a filter that requires every label in the map,
// in key order.
func LabelsFilter(labels map[string]string) *Filter {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	f := &Filter{}
	for _, k := range keys {
		f = f.WithLabel(k, labels[k])
	}
	return f
}

// Matches reports whether the job satisfies every term of the filter.
func (f *Filter) Matches(job *Job) bool {
	if !f.State.Matches(job.State()) {
		return false
	}
	for _, l := range f.Labels {
		v, ok := job.Labels[l.Key]
		if !ok || (!l.Any && v != l.Value) {
			return false
		}
	}
	return true
}
