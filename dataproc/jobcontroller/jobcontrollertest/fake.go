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

// Package jobcontrollertest implements an in-memory JobController server for
// tests.
package jobcontrollertest

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"

	"cloud.google.com/go/dataproc/v2/apiv1/dataprocpb"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/config/validation"

	"github.com/cloudapis-go/cloudapis/dataproc/jobcontroller"
	"github.com/cloudapis-go/cloudapis/dataproc/jobs"
	"github.com/cloudapis-go/cloudapis/internal/rpcerr"
)

// DefaultPageSize is used by ListJobs when the request has no page size.
const DefaultPageSize = 50

type entry struct {
	seq int
	job *dataprocpb.Job
}

// Fake is an in-memory implementation of jobcontroller.Server.
//
// Submitted jobs stay PENDING until a test moves them along with Advance. The
// zero value is ready to use.
type Fake struct {
	mu         sync.Mutex
	jobs       map[string]*entry // project/region/jobID => entry
	requestIDs map[string]string // project/region/requestID => key in jobs
	clusters   map[string]string // cluster name => cluster UUID
	seq        int
	errs       []error
	requests   []proto.Message
}

var _ jobcontroller.Server = (*Fake)(nil)

func jobKey(project, region, jobID string) string {
	return project + "/" + region + "/" + jobID
}

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

// Job returns a copy of the stored job with the ID, or nil.
func (f *Fake) Job(jobID string) *dataprocpb.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, err := f.find(jobID); err == nil {
		return proto.Clone(e.job).(*dataprocpb.Job)
	}
	return nil
}

// Advance moves a job to a new state, pushing its current status to the
// status history.
//
// Jobs in terminal states cannot be advanced.
func (f *Fake) Advance(ctx context.Context, jobID string, state jobs.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, err := f.find(jobID)
	if err != nil {
		return err
	}
	if cur := jobs.State(e.job.GetStatus().GetState()); cur.Terminal() {
		return errors.Reason("job %q is already %s", jobID, cur).Err()
	}
	f.transition(ctx, e.job, state)
	return nil
}

// find locates a job by ID alone. Must be called under the lock.
func (f *Fake) find(jobID string) (*entry, error) {
	var found *entry
	for _, e := range f.jobs {
		if e.job.GetReference().GetJobId() != jobID {
			continue
		}
		if found != nil {
			return nil, errors.Reason("job ID %q is ambiguous", jobID).Err()
		}
		found = e
	}
	if found == nil {
		return nil, errors.Reason("no job %q", jobID).Err()
	}
	return found, nil
}

func (f *Fake) transition(ctx context.Context, job *dataprocpb.Job, state jobs.State) {
	if job.Status != nil {
		job.StatusHistory = append(job.StatusHistory, job.Status)
	}
	job.Status = &dataprocpb.JobStatus{
		State:          dataprocpb.JobStatus_State(state),
		StateStartTime: timestamppb.New(clock.Now(ctx)),
	}
	job.Done = state.Terminal()
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
	if f.jobs == nil {
		f.jobs = map[string]*entry{}
		f.requestIDs = map[string]string{}
		f.clusters = map[string]string{}
	}
	return nil
}

func (f *Fake) lookup(project, region, jobID string) (*entry, error) {
	e, ok := f.jobs[jobKey(project, region, jobID)]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "job %s/%s/%s does not exist", project, region, jobID)
	}
	return e, nil
}

// SubmitJob implements jobcontroller.Server.
func (f *Fake) SubmitJob(ctx context.Context, req *dataprocpb.SubmitJobRequest) (*dataprocpb.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(req); err != nil {
		return nil, err
	}
	sreq, err := jobs.SubmitRequestFromProto(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s", err)
	}
	vctx := &validation.Context{Context: ctx}
	jobs.ValidateSubmitRequest(vctx, sreq)
	if err := vctx.Finalize(); err != nil {
		return nil, rpcerr.InvalidArgument(err)
	}

	if req.RequestId != "" {
		if key, ok := f.requestIDs[jobKey(req.ProjectId, req.Region, req.RequestId)]; ok {
			if e, ok := f.jobs[key]; ok {
				return proto.Clone(e.job).(*dataprocpb.Job), nil
			}
		}
	}

	jobID := req.Job.GetReference().GetJobId()
	if jobID == "" {
		jobID = uuid.NewString()
	}
	key := jobKey(req.ProjectId, req.Region, jobID)
	if _, ok := f.jobs[key]; ok {
		return nil, status.Errorf(codes.AlreadyExists, "job %s already exists", key)
	}

	job := proto.Clone(req.Job).(*dataprocpb.Job)
	job.Reference = &dataprocpb.JobReference{ProjectId: req.ProjectId, JobId: jobID}
	clusterName := job.Placement.ClusterName
	clusterUUID, ok := f.clusters[clusterName]
	if !ok {
		clusterUUID = uuid.NewString()
		f.clusters[clusterName] = clusterUUID
	}
	job.Placement.ClusterUuid = clusterUUID
	job.JobUuid = uuid.NewString()
	job.Status = nil
	job.StatusHistory = nil
	job.YarnApplications = nil
	job.DriverControlFilesUri = fmt.Sprintf("gs://dataproc-staging-%s/google-cloud-dataproc-metainfo/%s/jobs/%s/", req.Region, clusterUUID, jobID)
	job.DriverOutputResourceUri = job.DriverControlFilesUri + "driveroutput"
	f.transition(ctx, job, jobs.StatePending)

	f.seq++
	f.jobs[key] = &entry{seq: f.seq, job: job}
	if req.RequestId != "" {
		f.requestIDs[jobKey(req.ProjectId, req.Region, req.RequestId)] = key
	}
	return proto.Clone(job).(*dataprocpb.Job), nil
}

// GetJob implements jobcontroller.Server.
func (f *Fake) GetJob(ctx context.Context, req *dataprocpb.GetJobRequest) (*dataprocpb.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(req); err != nil {
		return nil, err
	}
	vctx := &validation.Context{Context: ctx}
	jobs.ValidateGetRequest(vctx, jobs.GetRequestFromProto(req))
	if err := vctx.Finalize(); err != nil {
		return nil, rpcerr.InvalidArgument(err)
	}
	e, err := f.lookup(req.ProjectId, req.Region, req.JobId)
	if err != nil {
		return nil, err
	}
	return proto.Clone(e.job).(*dataprocpb.Job), nil
}

// ListJobs implements jobcontroller.Server.
//
// Jobs are returned in submission order. A filter takes precedence over the
// state matcher.
func (f *Fake) ListJobs(ctx context.Context, req *dataprocpb.ListJobsRequest) (*dataprocpb.ListJobsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(req); err != nil {
		return nil, err
	}
	lreq := jobs.ListRequestFromProto(req)
	vctx := &validation.Context{Context: ctx}
	jobs.ValidateListRequest(vctx, lreq)
	if err := vctx.Finalize(); err != nil {
		return nil, rpcerr.InvalidArgument(err)
	}

	filter := &jobs.Filter{State: lreq.StateMatcher}
	if lreq.Filter != "" {
		filter, _ = jobs.ParseFilter(lreq.Filter)
	}
	offset := 0
	if req.PageToken != "" {
		var err error
		if offset, err = strconv.Atoi(req.PageToken); err != nil || offset < 0 {
			return nil, status.Errorf(codes.InvalidArgument, "bad page token %q", req.PageToken)
		}
	}
	pageSize := int(req.PageSize)
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var matched []*entry
	prefix := jobKey(req.ProjectId, req.Region, "")
	for key, e := range f.jobs {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if req.ClusterName != "" && e.job.GetPlacement().GetClusterName() != req.ClusterName {
			continue
		}
		model, err := jobs.FromProto(e.job)
		if err != nil || !filter.Matches(model) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	resp := &dataprocpb.ListJobsResponse{}
	if offset >= len(matched) {
		return resp, nil
	}
	end := offset + pageSize
	if end < len(matched) {
		resp.NextPageToken = strconv.Itoa(end)
	} else {
		end = len(matched)
	}
	for _, e := range matched[offset:end] {
		resp.Jobs = append(resp.Jobs, proto.Clone(e.job).(*dataprocpb.Job))
	}
	return resp, nil
}

// UpdateJob implements jobcontroller.Server. Only labels can be updated.
func (f *Fake) UpdateJob(ctx context.Context, req *dataprocpb.UpdateJobRequest) (*dataprocpb.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(req); err != nil {
		return nil, err
	}
	ureq, err := jobs.UpdateRequestFromProto(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s", err)
	}
	vctx := &validation.Context{Context: ctx}
	jobs.ValidateUpdateRequest(vctx, ureq)
	if err := vctx.Finalize(); err != nil {
		return nil, rpcerr.InvalidArgument(err)
	}
	e, err := f.lookup(req.ProjectId, req.Region, req.JobId)
	if err != nil {
		return nil, err
	}
	e.job.Labels = maps.Clone(req.Job.GetLabels())
	return proto.Clone(e.job).(*dataprocpb.Job), nil
}

// CancelJob implements jobcontroller.Server.
//
// Active jobs move to CANCEL_PENDING. Cancelling a finished job fails with
// FailedPrecondition.
func (f *Fake) CancelJob(ctx context.Context, req *dataprocpb.CancelJobRequest) (*dataprocpb.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(req); err != nil {
		return nil, err
	}
	vctx := &validation.Context{Context: ctx}
	jobs.ValidateCancelRequest(vctx, jobs.CancelRequestFromProto(req))
	if err := vctx.Finalize(); err != nil {
		return nil, rpcerr.InvalidArgument(err)
	}
	e, err := f.lookup(req.ProjectId, req.Region, req.JobId)
	if err != nil {
		return nil, err
	}
	switch cur := jobs.State(e.job.GetStatus().GetState()); {
	case cur.Terminal():
		return nil, rpcerr.FailedPrecondition("STATE", req.JobId, "job %s is already %s and cannot be cancelled", req.JobId, cur)
	case cur == jobs.StateCancelPending || cur == jobs.StateCancelStarted:
	default:
		f.transition(ctx, e.job, jobs.StateCancelPending)
	}
	return proto.Clone(e.job).(*dataprocpb.Job), nil
}

// DeleteJob implements jobcontroller.Server.
//
// Deleting an active job fails with FailedPrecondition.
func (f *Fake) DeleteJob(ctx context.Context, req *dataprocpb.DeleteJobRequest) (*emptypb.Empty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(req); err != nil {
		return nil, err
	}
	vctx := &validation.Context{Context: ctx}
	jobs.ValidateDeleteRequest(vctx, jobs.DeleteRequestFromProto(req))
	if err := vctx.Finalize(); err != nil {
		return nil, rpcerr.InvalidArgument(err)
	}
	e, err := f.lookup(req.ProjectId, req.Region, req.JobId)
	if err != nil {
		return nil, err
	}
	if cur := jobs.State(e.job.GetStatus().GetState()); cur.Active() {
		return nil, rpcerr.FailedPrecondition("STATE", req.JobId, "job %s is %s; cancel it before deleting", req.JobId, cur)
	}
	key := jobKey(req.ProjectId, req.Region, req.JobId)
	delete(f.jobs, key)
	maps.DeleteFunc(f.requestIDs, func(_, v string) bool { return v == key })
	return &emptypb.Empty{}, nil
}

// Client returns a jobcontroller.Client that calls the fake directly, without
// any transport in between.
func (f *Fake) Client() jobcontroller.Client {
	return directClient{f}
}

type directClient struct {
	f *Fake
}

func (c directClient) SubmitJob(ctx context.Context, in *dataprocpb.SubmitJobRequest, _ ...grpc.CallOption) (*dataprocpb.Job, error) {
	return c.f.SubmitJob(ctx, in)
}

func (c directClient) GetJob(ctx context.Context, in *dataprocpb.GetJobRequest, _ ...grpc.CallOption) (*dataprocpb.Job, error) {
	return c.f.GetJob(ctx, in)
}

func (c directClient) ListJobs(ctx context.Context, in *dataprocpb.ListJobsRequest, _ ...grpc.CallOption) (*dataprocpb.ListJobsResponse, error) {
	return c.f.ListJobs(ctx, in)
}

func (c directClient) UpdateJob(ctx context.Context, in *dataprocpb.UpdateJobRequest, _ ...grpc.CallOption) (*dataprocpb.Job, error) {
	return c.f.UpdateJob(ctx, in)
}

func (c directClient) CancelJob(ctx context.Context, in *dataprocpb.CancelJobRequest, _ ...grpc.CallOption) (*dataprocpb.Job, error) {
	return c.f.CancelJob(ctx, in)
}

func (c directClient) DeleteJob(ctx context.Context, in *dataprocpb.DeleteJobRequest, _ ...grpc.CallOption) (*emptypb.Empty, error) {
	return c.f.DeleteJob(ctx, in)
}
