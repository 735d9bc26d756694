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

// Package configsvctest implements an in-memory ConfigServiceV2 server for
// tests.
package configsvctest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"cloud.google.com/go/logging/apiv2/loggingpb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/config/validation"

	"github.com/cloudapis-go/cloudapis/internal/rpcerr"
	"github.com/cloudapis-go/cloudapis/logging/configsvc"
)

// SharedWriterIdentity is the writer identity of sinks created without
// unique_writer_identity.
const SharedWriterIdentity = "serviceAccount:cloud-logs@system.gserviceaccount.com"

// DefaultPageSize is used by ListSinks when the request has no page size.
const DefaultPageSize = 50

// Fake is an in-memory implementation of configsvc.Server.
//
// The zero value is ready to use.
type Fake struct {
	mu       sync.Mutex
	sinks    map[string]*loggingpb.LogSink // full sink name => sink
	nextSA   int
	errs     []error
	requests []proto.Message
}

var _ configsvc.Server = (*Fake)(nil)

// InjectErrors presets 1 or more errors to be returned by the following calls,
// one error per call.
func (f *Fake) InjectErrors(errs ...error) {
	f.mu.Lock()
	f.errs = append(f.errs, errs...)
	f.mu.Unlock()
}

// PopRequests returns requests received since the previous call.
func (f *Fake) PopRequests() []proto.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	ret := f.requests
	f.requests = nil
	return ret
}

// Sink returns a copy of a stored sink or nil.
func (f *Fake) Sink(name string) *loggingpb.LogSink {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sinks[name]; ok {
		return proto.Clone(s).(*loggingpb.LogSink)
	}
	return nil
}

// begin records the request and pops a preset error. Must be called under the
// lock.
func (f *Fake) begin(req proto.Message) error {
	f.requests = append(f.requests, proto.Clone(req))
	if len(f.errs) > 0 {
		var err error
		f.errs, err = f.errs[1:], f.errs[0]
		return err
	}
	if f.sinks == nil {
		f.sinks = map[string]*loggingpb.LogSink{}
	}
	return nil
}

// ListSinks implements configsvc.Server.
func (f *Fake) ListSinks(ctx context.Context, req *loggingpb.ListSinksRequest) (*loggingpb.ListSinksResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(req); err != nil {
		return nil, err
	}

	parent, err := configsvc.ParseParent(req.Parent)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s", err)
	}
	offset := 0
	if req.PageToken != "" {
		if offset, err = strconv.Atoi(req.PageToken); err != nil || offset < 0 {
			return nil, status.Errorf(codes.InvalidArgument, "bad page token %q", req.PageToken)
		}
	}
	pageSize := int(req.PageSize)
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	prefix := parent.String() + "/sinks/"
	var names []string
	for name := range f.sinks {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	resp := &loggingpb.ListSinksResponse{}
	if offset >= len(names) {
		return resp, nil
	}
	end := offset + pageSize
	if end < len(names) {
		resp.NextPageToken = strconv.Itoa(end)
	} else {
		end = len(names)
	}
	for _, name := range names[offset:end] {
		resp.Sinks = append(resp.Sinks, proto.Clone(f.sinks[name]).(*loggingpb.LogSink))
	}
	return resp, nil
}

// GetSink implements configsvc.Server.
func (f *Fake) GetSink(ctx context.Context, req *loggingpb.GetSinkRequest) (*loggingpb.LogSink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(req); err != nil {
		return nil, err
	}
	ref, err := configsvc.ParseSinkName(req.SinkName)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s", err)
	}
	sink, ok := f.sinks[ref.String()]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "sink %s does not exist", ref)
	}
	return proto.Clone(sink).(*loggingpb.LogSink), nil
}

// CreateSink implements configsvc.Server.
func (f *Fake) CreateSink(ctx context.Context, req *loggingpb.CreateSinkRequest) (*loggingpb.LogSink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(req); err != nil {
		return nil, err
	}
	vctx := &validation.Context{Context: ctx}
	configsvc.ValidateCreateRequest(vctx, req)
	if err := vctx.Finalize(); err != nil {
		return nil, rpcerr.InvalidArgument(err)
	}
	parent, _ := configsvc.ParseParent(req.Parent)
	return f.create(ctx, configsvc.SinkName(parent, req.Sink.Name), req.Sink, req.UniqueWriterIdentity)
}

// UpdateSink implements configsvc.Server.
//
// Updating a missing sink creates it.
func (f *Fake) UpdateSink(ctx context.Context, req *loggingpb.UpdateSinkRequest) (*loggingpb.LogSink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(req); err != nil {
		return nil, err
	}
	vctx := &validation.Context{Context: ctx}
	configsvc.ValidateUpdateRequest(vctx, req)
	if err := vctx.Finalize(); err != nil {
		return nil, rpcerr.InvalidArgument(err)
	}

	existing, ok := f.sinks[req.SinkName]
	if !ok {
		return f.create(ctx, req.SinkName, req.Sink, req.UniqueWriterIdentity)
	}
	if existing.WriterIdentity != SharedWriterIdentity && !req.UniqueWriterIdentity {
		return nil, status.Errorf(codes.InvalidArgument, "unique_writer_identity cannot be changed from true to false")
	}

	updated := proto.Clone(existing).(*loggingpb.LogSink)
	if err := configsvc.ApplyUpdate(updated, req.Sink, req.UpdateMask); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s", err)
	}
	if req.UniqueWriterIdentity && updated.WriterIdentity == SharedWriterIdentity {
		updated.WriterIdentity = f.uniqueIdentity()
	}
	updated.UpdateTime = timestamppb.New(clock.Now(ctx))
	f.sinks[req.SinkName] = updated
	return proto.Clone(updated).(*loggingpb.LogSink), nil
}

// DeleteSink implements configsvc.Server.
func (f *Fake) DeleteSink(ctx context.Context, req *loggingpb.DeleteSinkRequest) (*emptypb.Empty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(req); err != nil {
		return nil, err
	}
	ref, err := configsvc.ParseSinkName(req.SinkName)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s", err)
	}
	if _, ok := f.sinks[ref.String()]; !ok {
		return nil, status.Errorf(codes.NotFound, "sink %s does not exist", ref)
	}
	delete(f.sinks, ref.String())
	return &emptypb.Empty{}, nil
}

func (f *Fake) create(ctx context.Context, name string, sink *loggingpb.LogSink, unique bool) (*loggingpb.LogSink, error) {
	if _, ok := f.sinks[name]; ok {
		return nil, status.Errorf(codes.AlreadyExists, "sink %s already exists", name)
	}
	stored := proto.Clone(sink).(*loggingpb.LogSink)
	if unique {
		stored.WriterIdentity = f.uniqueIdentity()
	} else {
		stored.WriterIdentity = SharedWriterIdentity
	}
	now := timestamppb.New(clock.Now(ctx))
	stored.CreateTime = now
	stored.UpdateTime = now
	f.sinks[name] = stored
	return proto.Clone(stored).(*loggingpb.LogSink), nil
}

func (f *Fake) uniqueIdentity() string {
	f.nextSA++
	return fmt.Sprintf("serviceAccount:sink-%d@gcp-sa-logging.iam.gserviceaccount.com", f.nextSA)
}

// Client returns a configsvc.Client that calls the fake directly, without
// any transport in between.
func (f *Fake) Client() configsvc.Client {
	return directClient{f}
}

type directClient struct {
	f *Fake
}

func (c directClient) ListSinks(ctx context.Context, in *loggingpb.ListSinksRequest, _ ...grpc.CallOption) (*loggingpb.ListSinksResponse, error) {
	return c.f.ListSinks(ctx, in)
}

func (c directClient) GetSink(ctx context.Context, in *loggingpb.GetSinkRequest, _ ...grpc.CallOption) (*loggingpb.LogSink, error) {
	return c.f.GetSink(ctx, in)
}

func (c directClient) CreateSink(ctx context.Context, in *loggingpb.CreateSinkRequest, _ ...grpc.CallOption) (*loggingpb.LogSink, error) {
	return c.f.CreateSink(ctx, in)
}

func (c directClient) UpdateSink(ctx context.Context, in *loggingpb.UpdateSinkRequest, _ ...grpc.CallOption) (*loggingpb.LogSink, error) {
	return c.f.UpdateSink(ctx, in)
}

func (c directClient) DeleteSink(ctx context.Context, in *loggingpb.DeleteSinkRequest, _ ...grpc.CallOption) (*emptypb.Empty, error) {
	return c.f.DeleteSink(ctx, in)
}
