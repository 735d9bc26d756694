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

// Package jobcontroller is a client and server stub for the Cloud Dataproc
// v1 JobController API.
//
// Requests and responses are the dataprocpb wire types; package jobs holds a
// documented model of the job resource and the conversions to it.
package jobcontroller

import (
	"context"

	"cloud.google.com/go/dataproc/v2/apiv1/dataprocpb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"

	"go.chromium.org/luci/grpc/grpcutil"

	"github.com/cloudapis-go/cloudapis/rpcdesc"
)

// ServiceName is the full name the service is registered under.
const ServiceName = "google.cloud.dataproc.v1.JobController"

// Service manages the lifecycle of jobs submitted to clusters.
var Service = rpcdesc.Service{
	Name: ServiceName,
	File: "google/cloud/dataproc/v1/jobs.proto",
	Methods: []rpcdesc.Method{
		{
			Name:        "SubmitJob",
			NewRequest:  func() proto.Message { return new(dataprocpb.SubmitJobRequest) },
			NewResponse: func() proto.Message { return new(dataprocpb.Job) },
		},
		{
			Name:        "GetJob",
			NewRequest:  func() proto.Message { return new(dataprocpb.GetJobRequest) },
			NewResponse: func() proto.Message { return new(dataprocpb.Job) },
		},
		{
			Name:        "ListJobs",
			NewRequest:  func() proto.Message { return new(dataprocpb.ListJobsRequest) },
			NewResponse: func() proto.Message { return new(dataprocpb.ListJobsResponse) },
		},
		{
			Name:        "UpdateJob",
			NewRequest:  func() proto.Message { return new(dataprocpb.UpdateJobRequest) },
			NewResponse: func() proto.Message { return new(dataprocpb.Job) },
		},
		{
			Name:        "CancelJob",
			NewRequest:  func() proto.Message { return new(dataprocpb.CancelJobRequest) },
			NewResponse: func() proto.Message { return new(dataprocpb.Job) },
		},
		{
			Name:        "DeleteJob",
			NewRequest:  func() proto.Message { return new(dataprocpb.DeleteJobRequest) },
			NewResponse: func() proto.Message { return new(emptypb.Empty) },
		},
	},
}

func init() {
	rpcdesc.Register(&Service)
}

// Client is the client API for the job controller.
type Client interface {
	// SubmitJob submits a job to a cluster.
	SubmitJob(ctx context.Context, in *dataprocpb.SubmitJobRequest, opts ...grpc.CallOption) (*dataprocpb.Job, error)
	// GetJob gets the resource representation for a job in a project.
	GetJob(ctx context.Context, in *dataprocpb.GetJobRequest, opts ...grpc.CallOption) (*dataprocpb.Job, error)
	// ListJobs lists regional jobs.
	ListJobs(ctx context.Context, in *dataprocpb.ListJobsRequest, opts ...grpc.CallOption) (*dataprocpb.ListJobsResponse, error)
	// UpdateJob updates a job in a project. Only labels can be updated.
	UpdateJob(ctx context.Context, in *dataprocpb.UpdateJobRequest, opts ...grpc.CallOption) (*dataprocpb.Job, error)
	// CancelJob starts a job cancellation request. Use GetJob or ListJobs to
	// follow up on the cancellation.
	CancelJob(ctx context.Context, in *dataprocpb.CancelJobRequest, opts ...grpc.CallOption) (*dataprocpb.Job, error)
	// DeleteJob deletes the job from the project. If the job is active, the
	// delete fails with FAILED_PRECONDITION.
	DeleteJob(ctx context.Context, in *dataprocpb.DeleteJobRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a Client bound to the given connection.
func NewClient(cc grpc.ClientConnInterface) Client {
	return &client{cc}
}

func (c *client) SubmitJob(ctx context.Context, in *dataprocpb.SubmitJobRequest, opts ...grpc.CallOption) (*dataprocpb.Job, error) {
	out := new(dataprocpb.Job)
	if err := rpcdesc.Invoke(ctx, c.cc, &Service, "SubmitJob", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) GetJob(ctx context.Context, in *dataprocpb.GetJobRequest, opts ...grpc.CallOption) (*dataprocpb.Job, error) {
	out := new(dataprocpb.Job)
	if err := rpcdesc.Invoke(ctx, c.cc, &Service, "GetJob", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) ListJobs(ctx context.Context, in *dataprocpb.ListJobsRequest, opts ...grpc.CallOption) (*dataprocpb.ListJobsResponse, error) {
	out := new(dataprocpb.ListJobsResponse)
	if err := rpcdesc.Invoke(ctx, c.cc, &Service, "ListJobs", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) UpdateJob(ctx context.Context, in *dataprocpb.UpdateJobRequest, opts ...grpc.CallOption) (*dataprocpb.Job, error) {
	out := new(dataprocpb.Job)
	if err := rpcdesc.Invoke(ctx, c.cc, &Service, "UpdateJob", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) CancelJob(ctx context.Context, in *dataprocpb.CancelJobRequest, opts ...grpc.CallOption) (*dataprocpb.Job, error) {
	out := new(dataprocpb.Job)
	if err := rpcdesc.Invoke(ctx, c.cc, &Service, "CancelJob", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) DeleteJob(ctx context.Context, in *dataprocpb.DeleteJobRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := rpcdesc.Invoke(ctx, c.cc, &Service, "DeleteJob", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Server is the server API for the job controller.
type Server interface {
	SubmitJob(context.Context, *dataprocpb.SubmitJobRequest) (*dataprocpb.Job, error)
	GetJob(context.Context, *dataprocpb.GetJobRequest) (*dataprocpb.Job, error)
	ListJobs(context.Context, *dataprocpb.ListJobsRequest) (*dataprocpb.ListJobsResponse, error)
	UpdateJob(context.Context, *dataprocpb.UpdateJobRequest) (*dataprocpb.Job, error)
	CancelJob(context.Context, *dataprocpb.CancelJobRequest) (*dataprocpb.Job, error)
	DeleteJob(context.Context, *dataprocpb.DeleteJobRequest) (*emptypb.Empty, error)
}

// UnimplementedServer can be embedded to have forward compatible
// implementations.
type UnimplementedServer struct{}

func (UnimplementedServer) SubmitJob(context.Context, *dataprocpb.SubmitJobRequest) (*dataprocpb.Job, error) {
	return nil, grpcutil.Errf(codes.Unimplemented, "method SubmitJob not implemented")
}
func (UnimplementedServer) GetJob(context.Context, *dataprocpb.GetJobRequest) (*dataprocpb.Job, error) {
	return nil, grpcutil.Errf(codes.Unimplemented, "method GetJob not implemented")
}
func (UnimplementedServer) ListJobs(context.Context, *dataprocpb.ListJobsRequest) (*dataprocpb.ListJobsResponse, error) {
	return nil, grpcutil.Errf(codes.Unimplemented, "method ListJobs not implemented")
}
func (UnimplementedServer) UpdateJob(context.Context, *dataprocpb.UpdateJobRequest) (*dataprocpb.Job, error) {
	return nil, grpcutil.Errf(codes.Unimplemented, "method UpdateJob not implemented")
}
func (UnimplementedServer) CancelJob(context.Context, *dataprocpb.CancelJobRequest) (*dataprocpb.Job, error) {
	return nil, grpcutil.Errf(codes.Unimplemented, "method CancelJob not implemented")
}
func (UnimplementedServer) DeleteJob(context.Context, *dataprocpb.DeleteJobRequest) (*emptypb.Empty, error) {
	return nil, grpcutil.Errf(codes.Unimplemented, "method DeleteJob not implemented")
}

// RegisterServer registers srv with a gRPC or pRPC server.
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(Service.ServiceDesc((*Server)(nil), dispatch), srv)
}

func dispatch(srv any, ctx context.Context, method string, req proto.Message) (proto.Message, error) {
	s := srv.(Server)
	switch method {
	case "SubmitJob":
		return s.SubmitJob(ctx, req.(*dataprocpb.SubmitJobRequest))
	case "GetJob":
		return s.GetJob(ctx, req.(*dataprocpb.GetJobRequest))
	case "ListJobs":
		return s.ListJobs(ctx, req.(*dataprocpb.ListJobsRequest))
	case "UpdateJob":
		return s.UpdateJob(ctx, req.(*dataprocpb.UpdateJobRequest))
	case "CancelJob":
		return s.CancelJob(ctx, req.(*dataprocpb.CancelJobRequest))
	case "DeleteJob":
		return s.DeleteJob(ctx, req.(*dataprocpb.DeleteJobRequest))
	}
	return nil, grpcutil.Errf(codes.Unimplemented, "unknown method %s", method)
}
