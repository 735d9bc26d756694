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
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/proto"

	"go.chromium.org/luci/grpc/grpcutil"
)

// Invoke calls a unary method declared by the table.
//
// The request and response messages must be of the types the table declares
// for the method. Everything else (encoding, transport, deadlines, retries) is
// up to cc.
func Invoke(ctx context.Context, cc grpc.ClientConnInterface, svc *Service, method string, req, resp proto.Message, opts ...grpc.CallOption) error {
	m, ok := svc.Lookup(method)
	if !ok {
		return grpcutil.Errf(codes.Unimplemented, "%s has no method %q", svc.Name, method)
	}
	if got, want := req.ProtoReflect().Descriptor().FullName(), m.RequestName(); got != want {
		return grpcutil.Errf(codes.InvalidArgument, "%s: request is %s, want %s", svc.FullMethod(method), got, want)
	}
	if got, want := resp.ProtoReflect().Descriptor().FullName(), m.ResponseName(); got != want {
		return grpcutil.Errf(codes.InvalidArgument, "%s: response is %s, want %s", svc.FullMethod(method), got, want)
	}
	return cc.Invoke(ctx, svc.FullMethod(method), req, resp, opts...)
}

// Call is like Invoke, but allocates the response message from the table.
//
// Useful for callers that know the method only at runtime, e.g. a generic
// "call an RPC with a JSON request" command.
func Call(ctx context.Context, cc grpc.ClientConnInterface, svc *Service, method string, req proto.Message, opts ...grpc.CallOption) (proto.Message, error) {
	m, ok := svc.Lookup(method)
	if !ok {
		return nil, grpcutil.Errf(codes.Unimplemented, "%s has no method %q", svc.Name, method)
	}
	resp := m.NewResponse()
	if err := Invoke(ctx, cc, svc, method, req, resp, opts...); err != nil {
		return nil, err
	}
	return resp, nil
}
