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

package configsvc

import (
	"regexp"
	"strings"

	"go.chromium.org/luci/common/errors"
)

// ParentKinds are the resource collections that can own sinks.
var ParentKinds = []string{"projects", "organizations", "folders", "billingAccounts"}

var sinkIDRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,100}$`)

// Parent identifies a resource owning sinks, e.g. "projects/my-project".
type Parent struct {
	Kind string
	ID   string
}

func (p Parent) String() string {
	return p.Kind + "/" + p.ID
}

// ParseParent parses "<kind>/<id>" where kind is one of ParentKinds.
func ParseParent(s string) (Parent, error) {
	kind, id, ok := strings.Cut(s, "/")
	if !ok || id == "" || strings.Contains(id, "/") {
		return Parent{}, errors.Reason("parent %q: want <kind>/<id>", s).Err()
	}
	for _, k := range ParentKinds {
		if k == kind {
			return Parent{Kind: kind, ID: id}, nil
		}
	}
	return Parent{}, errors.Reason("parent %q: unknown kind %q, want one of %s", s, kind, strings.Join(ParentKinds, ", ")).Err()
}

// SinkRef is a parsed full sink resource name.
type SinkRef struct {
	Parent Parent
	ID     string
}

func (r SinkRef) String() string {
	return SinkName(r.Parent, r.ID)
}

// SinkName returns "<parent>/sinks/<sinkID>".
func SinkName(parent Parent, sinkID string) string {
	return parent.String() + "/sinks/" + sinkID
}

// ParseSinkName parses a full sink resource name such as
// "projects/my-project/sinks/my-sink".
func ParseSinkName(name string) (SinkRef, error) {
	parts := strings.Split(name, "/")
	if len(parts) != 4 || parts[2] != "sinks" {
		return SinkRef{}, errors.Reason("sink name %q: want <kind>/<id>/sinks/<sink>", name).Err()
	}
	parent, err := ParseParent(parts[0] + "/" + parts[1])
	if err != nil {
		return SinkRef{}, errors.Annotate(err, "sink name %q", name).Err()
	}
	if err := ValidateSinkID(parts[3]); err != nil {
		return SinkRef{}, errors.Annotate(err, "sink name %q", name).Err()
	}
	return SinkRef{Parent: parent, ID: parts[3]}, nil
}

// ValidateSinkID checks a client-assigned sink identifier.
//
// Identifiers are limited to 100 characters and can include only upper and
// lower-case alphanumeric characters, underscores, hyphens and periods.
func ValidateSinkID(id string) error {
	if !sinkIDRe.MatchString(id) {
		return errors.Reason("invalid sink ID %q: want 1-100 characters of [A-Za-z0-9_.-]", id).Err()
	}
	return nil
}
