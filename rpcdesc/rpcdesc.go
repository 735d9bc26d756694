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

// Package rpcdesc describes unary RPC services as static tables of
// (method name, request type, response type) and binds those tables to the
// gRPC dispatch machinery.
//
// A table carries no logic of its own. Clients built on it delegate to a
// grpc.ClientConnInterface (a *grpc.ClientConn or a luci *prpc.Client), and
// servers built on it register a grpc.ServiceDesc with any
// grpc.ServiceRegistrar.
package rpcdesc

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"go.chromium.org/luci/common/data/stringset"
	"go.chromium.org/luci/common/errors"
)

var (
	serviceNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)+$`)
	methodNameRe  = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
)

// Method declares one unary RPC method.
type Method struct {
	// Name is the method name, e.g. "ListSinks".
	Name string
	// NewRequest returns a new empty request message.
	NewRequest func() proto.Message
	// NewResponse returns a new empty response message.
	NewResponse func() proto.Message
}

// RequestName is the full protobuf name of the request message.
func (m *Method) RequestName() protoreflect.FullName {
	return m.NewRequest().ProtoReflect().Descriptor().FullName()
}

// ResponseName is the full protobuf name of the response message.
func (m *Method) ResponseName() protoreflect.FullName {
	return m.NewResponse().ProtoReflect().Descriptor().FullName()
}

// Service is a table of unary methods registered under a fixed service name.
//
// Tables are declared as package-level values and must not be modified after
// they were registered.
type Service struct {
	// Name is the full protobuf service name, e.g.
	// "google.logging.v2.ConfigServiceV2".
	Name string
	// File is the .proto file declaring the service. Informational only, it
	// ends up in grpc.ServiceDesc.Metadata.
	File string
	// Methods lists the methods in declaration order.
	Methods []Method
}

// FullMethod returns the gRPC method path "/<service>/<method>".
func (s *Service) FullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", s.Name, method)
}

// Lookup returns the method with the given name.
func (s *Service) Lookup(method string) (*Method, bool) {
	for i := range s.Methods {
		if s.Methods[i].Name == method {
			return &s.Methods[i], true
		}
	}
	return nil, false
}

// MethodNames returns method names in declaration order.
func (s *Service) MethodNames() []string {
	names := make([]string, len(s.Methods))
	for i, m := range s.Methods {
		names[i] = m.Name
	}
	return names
}

// Validate checks the table is well formed.
//
// Every method must have a unique CamelCase name and exactly one request and
// one response schema.
func (s *Service) Validate() error {
	var merr errors.MultiError
	if !serviceNameRe.MatchString(s.Name) {
		merr = append(merr, errors.Reason("service name %q is not a full protobuf name", s.Name).Err())
	}
	if len(s.Methods) == 0 {
		merr = append(merr, errors.Reason("service %q declares no methods", s.Name).Err())
	}
	seen := stringset.New(len(s.Methods))
	for i := range s.Methods {
		m := &s.Methods[i]
		if !methodNameRe.MatchString(m.Name) {
			merr = append(merr, errors.Reason("method #%d: bad name %q", i, m.Name).Err())
		}
		if !seen.Add(m.Name) {
			merr = append(merr, errors.Reason("method %q is declared more than once", m.Name).Err())
		}
		if err := checkSchema(m.NewRequest); err != nil {
			merr = append(merr, errors.Annotate(err, "method %q request", m.Name).Err())
		}
		if err := checkSchema(m.NewResponse); err != nil {
			merr = append(merr, errors.Annotate(err, "method %q response", m.Name).Err())
		}
	}
	return merr.AsError()
}

func checkSchema(ctor func() proto.Message) error {
	if ctor == nil {
		return errors.Reason("no schema").Err()
	}
	if msg := ctor(); msg == nil || !msg.ProtoReflect().IsValid() {
		return errors.Reason("schema constructor returned nil").Err()
	}
	return nil
}

var registry struct {
	m        sync.RWMutex
	services map[string]*Service
}

// Register adds a service table to the process-wide registry.
//
// Panics if the table is invalid or a service with the same name is already
// registered. Usually called from init().
func Register(s *Service) {
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("rpcdesc: bad service table: %s", err))
	}
	registry.m.Lock()
	defer registry.m.Unlock()
	if registry.services == nil {
		registry.services = map[string]*Service{}
	}
	if _, ok := registry.services[s.Name]; ok {
		panic(fmt.Sprintf("rpcdesc: service %q is already registered", s.Name))
	}
	registry.services[s.Name] = s
}

// Get returns a registered service table or nil.
func Get(name string) *Service {
	registry.m.RLock()
	defer registry.m.RUnlock()
	return registry.services[name]
}

// Services returns all registered tables sorted by name.
func Services() []*Service {
	registry.m.RLock()
	defer registry.m.RUnlock()
	out := make([]*Service, 0, len(registry.services))
	for _, s := range registry.services {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
