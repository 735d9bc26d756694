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
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
)

// Dispatcher routes a decoded request to the server implementation.
//
// srv is the implementation passed to grpc.ServiceRegistrar.RegisterService
// and method is one of the table's method names.
type Dispatcher func(srv any, ctx context.Context, method string, req proto.Message) (proto.Message, error)

// ServiceDesc builds a grpc.ServiceDesc for the table.
//
// handlerType is a pointer to the server interface, e.g. (*Server)(nil); gRPC
// uses it to check implementations at registration time. The returned
// descriptor has one unary handler per method and no streams.
func (s *Service) ServiceDesc(handlerType any, dispatch Dispatcher) *grpc.ServiceDesc {
	desc := &grpc.ServiceDesc{
		ServiceName: s.Name,
		HandlerType: handlerType,
		Methods:     make([]grpc.MethodDesc, 0, len(s.Methods)),
		Streams:     []grpc.StreamDesc{},
		Metadata:    s.File,
	}
	for i := range s.Methods {
		m := &s.Methods[i]
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: m.Name,
			Handler:    s.unaryHandler(m, dispatch),
		})
	}
	return desc
}

func (s *Service) unaryHandler(m *Method, dispatch Dispatcher) grpc.MethodHandler {
	info := &grpc.UnaryServerInfo{FullMethod: s.FullMethod(m.Name)}
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := m.NewRequest()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return dispatch(srv, ctx, m.Name, in)
		}
		info := *info
		info.Server = srv
		handler := func(ctx context.Context, req any) (any, error) {
			return dispatch(srv, ctx, m.Name, req.(proto.Message))
		}
		return interceptor(ctx, in, &info, handler)
	}
}
