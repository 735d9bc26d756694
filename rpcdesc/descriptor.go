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

package rpcdesc

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"go.chromium.org/luci/common/errors"
)

// CheckDescriptor verifies the table agrees with a service descriptor.
//
// Every method in the table must be declared by the descriptor as a unary
// method with the same input and output messages. The descriptor may declare
// methods the table omits.
func (s *Service) CheckDescriptor(sd protoreflect.ServiceDescriptor) error {
	var merr errors.MultiError
	if got := string(sd.FullName()); got != s.Name {
		merr = append(merr, errors.Reason("table is for %q, descriptor is for %q", s.Name, got).Err())
	}
	methods := sd.Methods()
	for i := range s.Methods {
		m := &s.Methods[i]
		md := methods.ByName(protoreflect.Name(m.Name))
		switch {
		case md == nil:
			merr = append(merr, errors.Reason("%s: not declared by %s", m.Name, sd.FullName()).Err())
			continue
		case md.IsStreamingClient() || md.IsStreamingServer():
			merr = append(merr, errors.Reason("%s: streaming methods are not supported", m.Name).Err())
		}
		if got, want := m.RequestName(), md.Input().FullName(); got != want {
			merr = append(merr, errors.Reason("%s: request is %s, descriptor says %s", m.Name, got, want).Err())
		}
		if got, want := m.ResponseName(), md.Output().FullName(); got != want {
			merr = append(merr, errors.Reason("%s: response is %s, descriptor says %s", m.Name, got, want).Err())
		}
	}
	return merr.AsError()
}

// CheckRegistered looks up the service in protoregistry.GlobalFiles and calls
// CheckDescriptor.
func (s *Service) CheckRegistered() error {
	return s.CheckIn(protoregistry.GlobalFiles)
}

// CheckIn is like CheckRegistered, but uses the given file registry.
func (s *Service) CheckIn(files *protoregistry.Files) error {
	d, err := files.FindDescriptorByName(protoreflect.FullName(s.Name))
	if err != nil {
		return errors.Annotate(err, "looking up %q", s.Name).Err()
	}
	sd, ok := d.(protoreflect.ServiceDescriptor)
	if !ok {
		return errors.Reason("%q is not a service", s.Name).Err()
	}
	return s.CheckDescriptor(sd)
}
