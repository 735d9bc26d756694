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

// Package configsvc is a client and server stub for the Cloud Logging
// ConfigServiceV2 sink API.
//
// The stub is a static table of five unary methods registered under
// "google.logging.v2.ConfigServiceV2". It adds no retries, validation or error
// translation to calls; that is up to the connection the client is bound to.
package configsvc

import (
	"context"

	"cloud.google.com/go/logging/apiv2/loggingpb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"

	"go.chromium.org/luci/grpc/grpcutil"

	"github.com/cloudapis-go/cloudapis/rpcdesc"
)

// ServiceName is the full name the service is registered under.
const ServiceName = "google.logging.v2.ConfigServiceV2"

// Service configures sinks used to export log entries outside of Cloud
// Logging.
var Service = rpcdesc.Service{
	Name: ServiceName,
	File: "google/logging/v2/logging_config.proto",
	Methods: []rpcdesc.Method{
		{
			Name:        "ListSinks",
			NewRequest:  func() proto.Message { return new(loggingpb.ListSinksRequest) },
			NewResponse: func() proto.Message { return new(loggingpb.ListSinksResponse) },
		},
		{
			Name:        "GetSink",
			NewRequest:  func() proto.Message { return new(loggingpb.GetSinkRequest) },
			NewResponse: func() proto.Message { return new(loggingpb.LogSink) },
		},
		{
			Name:        "CreateSink",
			NewRequest:  func() proto.Message { return new(loggingpb.CreateSinkRequest) },
			NewResponse: func() proto.Message { return new(loggingpb.LogSink) },
		},
		{
			Name:        "UpdateSink",
			NewRequest:  func() proto.Message { return new(loggingpb.UpdateSinkRequest) },
			NewResponse: func() proto.Message { return new(loggingpb.LogSink) },
		},
		{
			Name:        "DeleteSink",
			NewRequest:  func() proto.Message { return new(loggingpb.DeleteSinkRequest) },
			NewResponse: func() proto.Message { return new(emptypb.Empty) },
		},
	},
}

func init() {
	rpcdesc.Register(&Service)
}

// Client is the client API for the sink configuration service.
type Client interface {
	// ListSinks lists sinks.
	ListSinks(ctx context.Context, in *loggingpb.ListSinksRequest, opts ...grpc.CallOption) (*loggingpb.ListSinksResponse, error)
	// GetSink gets a sink.
	GetSink(ctx context.Context, in *loggingpb.GetSinkRequest, opts ...grpc.CallOption) (*loggingpb.LogSink, error)
	// CreateSink creates a sink that exports specified log entries to a
	// destination.
	//
	// The export of newly-ingested log entries begins immediately, unless the
	// sink's writer identity is not permitted to write to the destination. A
	// sink can export log entries only from the resource owning the sink.
	CreateSink(ctx context.Context, in *loggingpb.CreateSinkRequest, opts ...grpc.CallOption) (*loggingpb.LogSink, error)
	// UpdateSink updates a sink.
	//
	// If the named sink doesn't exist, this is identical to CreateSink. If it
	// does, the fields named by the update mask (DefaultUpdateMask when empty)
	// are replaced with values from the new sink. The updated sink might also
	// get a new writer identity, see unique_writer_identity.
	UpdateSink(ctx context.Context, in *loggingpb.UpdateSinkRequest, opts ...grpc.CallOption) (*loggingpb.LogSink, error)
	// DeleteSink deletes a sink. If the sink has a unique writer identity,
	// that service account is also deleted.
	DeleteSink(ctx context.Context, in *loggingpb.DeleteSinkRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a Client bound to the given connection.
//
// cc can be a *grpc.ClientConn or a *prpc.Client.
func NewClient(cc grpc.ClientConnInterface) Client {
	return &client{cc}
}

func (c *client) ListSinks(ctx context.Context, in *loggingpb.ListSinksRequest, opts ...grpc.CallOption) (*loggingpb.ListSinksResponse, error) {
	out := new(loggingpb.ListSinksResponse)
	if err := rpcdesc.Invoke(ctx, c.cc, &Service, "ListSinks", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) GetSink(ctx context.Context, in *loggingpb.GetSinkRequest, opts ...grpc.CallOption) (*loggingpb.LogSink, error) {
	out := new(loggingpb.LogSink)
	if err := rpcdesc.Invoke(ctx, c.cc, &Service, "GetSink", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) CreateSink(ctx context.Context, in *loggingpb.CreateSinkRequest, opts ...grpc.CallOption) (*loggingpb.LogSink, error) {
	out := new(loggingpb.LogSink)
	if err := rpcdesc.Invoke(ctx, c.cc, &Service, "CreateSink", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) UpdateSink(ctx context.Context, in *loggingpb.UpdateSinkRequest, opts ...grpc.CallOption) (*loggingpb.LogSink, error) {
	out := new(loggingpb.LogSink)
	if err := rpcdesc.Invoke(ctx, c.cc, &Service, "UpdateSink", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) DeleteSink(ctx context.Context, in *loggingpb.DeleteSinkRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := rpcdesc.Invoke(ctx, c.cc, &Service, "DeleteSink", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Server is the server API for the sink configuration service.
type Server interface {
	ListSinks(context.Context, *loggingpb.ListSinksRequest) (*loggingpb.ListSinksResponse, error)
	GetSink(context.Context, *loggingpb.GetSinkRequest) (*loggingpb.LogSink, error)
	CreateSink(context.Context, *loggingpb.CreateSinkRequest) (*loggingpb.LogSink, error)
	UpdateSink(context.Context, *loggingpb.UpdateSinkRequest) (*loggingpb.LogSink, error)
	DeleteSink(context.Context, *loggingpb.DeleteSinkRequest) (*emptypb.Empty, error)
}

// UnimplementedServer can be embedded to have forward compatible
// implementations.
type UnimplementedServer struct{}

func (UnimplementedServer) ListSinks(context.Context, *loggingpb.ListSinksRequest) (*loggingpb.ListSinksResponse, error) {
	return nil, grpcutil.Errf(codes.Unimplemented, "method ListSinks not implemented")
}
func (UnimplementedServer) GetSink(context.Context, *loggingpb.GetSinkRequest) (*loggingpb.LogSink, error) {
	return nil, grpcutil.Errf(codes.Unimplemented, "method GetSink not implemented")
}
func (UnimplementedServer) CreateSink(context.Context, *loggingpb.CreateSinkRequest) (*loggingpb.LogSink, error) {
	return nil, grpcutil.Errf(codes.Unimplemented, "method CreateSink not implemented")
}
func (UnimplementedServer) UpdateSink(context.Context, *loggingpb.UpdateSinkRequest) (*loggingpb.LogSink, error) {
	return nil, grpcutil.Errf(codes.Unimplemented, "method UpdateSink not implemented")
}
func (UnimplementedServer) DeleteSink(context.Context, *loggingpb.DeleteSinkRequest) (*emptypb.Empty, error) {
	return nil, grpcutil.Errf(codes.Unimplemented, "method DeleteSink not implemented")
}

// RegisterServer registers srv with a gRPC or pRPC server.
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(Service.ServiceDesc((*Server)(nil), dispatch), srv)
}

func dispatch(srv any, ctx context.Context, method string, req proto.Message) (proto.Message, error) {
	s := srv.(Server)
	switch method {
	case "ListSinks":
		return s.ListSinks(ctx, req.(*loggingpb.ListSinksRequest))
	case "GetSink":
		return s.GetSink(ctx, req.(*loggingpb.GetSinkRequest))
	case "CreateSink":
		return s.CreateSink(ctx, req.(*loggingpb.CreateSinkRequest))
	case "UpdateSink":
		return s.UpdateSink(ctx, req.(*loggingpb.UpdateSinkRequest))
	case "DeleteSink":
		return s.DeleteSink(ctx, req.(*loggingpb.DeleteSinkRequest))
	}
	return nil, grpcutil.Errf(codes.Unimplemented, "unknown method %s", method)
}
