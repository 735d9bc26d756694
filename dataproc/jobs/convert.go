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
	"maps"
	"slices"
	"time"

	"google.golang.org/protobuf/types/known/fieldmaskpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"cloud.google.com/go/dataproc/v2/apiv1/dataprocpb"

	"go.chromium.org/luci/common/errors"
)

// ErrUnsupportedVariant is returned by FromProto for wire job types the model
// does not describe, such as SparkR, Presto, Trino or Flink jobs.
var ErrUnsupportedVariant = errors.New("unsupported job variant")

// ToProto converts a job to its wire form. A nil job converts to nil.
func ToProto(j *Job) *dataprocpb.Job {
	if j == nil {
		return nil
	}
	out := &dataprocpb.Job{
		DriverOutputResourceUri: j.DriverOutputResourceURI,
		DriverControlFilesUri:   j.DriverControlFilesURI,
		Labels:                  maps.Clone(j.Labels),
		Status:                  statusToProto(j.Status),
	}
	if r := j.Reference; r != nil {
		out.Reference = &dataprocpb.JobReference{ProjectId: r.ProjectID, JobId: r.JobID}
	}
	if p := j.Placement; p != nil {
		out.Placement = &dataprocpb.JobPlacement{
			ClusterName:   p.ClusterName,
			ClusterUuid:   p.ClusterUUID,
			ClusterLabels: maps.Clone(p.ClusterLabels),
		}
	}
	for _, s := range j.StatusHistory {
		out.StatusHistory = append(out.StatusHistory, statusToProto(s))
	}
	for _, y := range j.YarnApplications {
		out.YarnApplications = append(out.YarnApplications, &dataprocpb.YarnApplication{
			Name:        y.Name,
			State:       dataprocpb.YarnApplication_State(y.State),
			Progress:    y.Progress,
			TrackingUrl: y.TrackingURL,
		})
	}
	if s := j.Scheduling; s != nil {
		out.Scheduling = &dataprocpb.JobScheduling{MaxFailuresPerHour: s.MaxFailuresPerHour}
	}

	switch v := j.Variant.(type) {
	case *HadoopJob:
		h := &dataprocpb.HadoopJob{
			Args:          slices.Clone(v.Args),
			JarFileUris:   slices.Clone(v.JarFileURIs),
			FileUris:      slices.Clone(v.FileURIs),
			ArchiveUris:   slices.Clone(v.ArchiveURIs),
			Properties:    maps.Clone(v.Properties),
			LoggingConfig: loggingToProto(v.LoggingConfig),
		}
		switch {
		case v.MainJarFileURI != "":
			h.Driver = &dataprocpb.HadoopJob_MainJarFileUri{MainJarFileUri: v.MainJarFileURI}
		case v.MainClass != "":
			h.Driver = &dataprocpb.HadoopJob_MainClass{MainClass: v.MainClass}
		}
		out.TypeJob = &dataprocpb.Job_HadoopJob{HadoopJob: h}
	case *SparkJob:
		s := &dataprocpb.SparkJob{
			Args:          slices.Clone(v.Args),
			JarFileUris:   slices.Clone(v.JarFileURIs),
			FileUris:      slices.Clone(v.FileURIs),
			ArchiveUris:   slices.Clone(v.ArchiveURIs),
			Properties:    maps.Clone(v.Properties),
			LoggingConfig: loggingToProto(v.LoggingConfig),
		}
		switch {
		case v.MainJarFileURI != "":
			s.Driver = &dataprocpb.SparkJob_MainJarFileUri{MainJarFileUri: v.MainJarFileURI}
		case v.MainClass != "":
			s.Driver = &dataprocpb.SparkJob_MainClass{MainClass: v.MainClass}
		}
		out.TypeJob = &dataprocpb.Job_SparkJob{SparkJob: s}
	case *PySparkJob:
		out.TypeJob = &dataprocpb.Job_PysparkJob{PysparkJob: &dataprocpb.PySparkJob{
			MainPythonFileUri: v.MainPythonFileURI,
			Args:              slices.Clone(v.Args),
			PythonFileUris:    slices.Clone(v.PythonFileURIs),
			JarFileUris:       slices.Clone(v.JarFileURIs),
			FileUris:          slices.Clone(v.FileURIs),
			ArchiveUris:       slices.Clone(v.ArchiveURIs),
			Properties:        maps.Clone(v.Properties),
			LoggingConfig:     loggingToProto(v.LoggingConfig),
		}}
	case *HiveJob:
		h := &dataprocpb.HiveJob{
			ContinueOnFailure: v.ContinueOnFailure,
			ScriptVariables:   maps.Clone(v.ScriptVariables),
			Properties:        maps.Clone(v.Properties),
			JarFileUris:       slices.Clone(v.JarFileURIs),
		}
		switch {
		case v.QueryFileURI != "":
			h.Queries = &dataprocpb.HiveJob_QueryFileUri{QueryFileUri: v.QueryFileURI}
		case v.QueryList != nil:
			h.Queries = &dataprocpb.HiveJob_QueryList{QueryList: queriesToProto(v.QueryList)}
		}
		out.TypeJob = &dataprocpb.Job_HiveJob{HiveJob: h}
	case *PigJob:
		p := &dataprocpb.PigJob{
			ContinueOnFailure: v.ContinueOnFailure,
			ScriptVariables:   maps.Clone(v.ScriptVariables),
			Properties:        maps.Clone(v.Properties),
			JarFileUris:       slices.Clone(v.JarFileURIs),
			LoggingConfig:     loggingToProto(v.LoggingConfig),
		}
		switch {
		case v.QueryFileURI != "":
			p.Queries = &dataprocpb.PigJob_QueryFileUri{QueryFileUri: v.QueryFileURI}
		case v.QueryList != nil:
			p.Queries = &dataprocpb.PigJob_QueryList{QueryList: queriesToProto(v.QueryList)}
		}
		out.TypeJob = &dataprocpb.Job_PigJob{PigJob: p}
	case *SparkSQLJob:
		s := &dataprocpb.SparkSqlJob{
			ScriptVariables: maps.Clone(v.ScriptVariables),
			Properties:      maps.Clone(v.Properties),
			JarFileUris:     slices.Clone(v.JarFileURIs),
			LoggingConfig:   loggingToProto(v.LoggingConfig),
		}
		switch {
		case v.QueryFileURI != "":
			s.Queries = &dataprocpb.SparkSqlJob_QueryFileUri{QueryFileUri: v.QueryFileURI}
		case v.QueryList != nil:
			s.Queries = &dataprocpb.SparkSqlJob_QueryList{QueryList: queriesToProto(v.QueryList)}
		}
		out.TypeJob = &dataprocpb.Job_SparkSqlJob{SparkSqlJob: s}
	}
	return out
}

// FromProto converts a wire job to the model.
//
// Returns an error wrapping ErrUnsupportedVariant if the job uses a variant
// the model doesn't describe. A job without a variant is converted with a nil
// Variant.
func FromProto(j *dataprocpb.Job) (*Job, error) {
	if j == nil {
		return nil, nil
	}
	out := &Job{
		DriverOutputResourceURI: j.GetDriverOutputResourceUri(),
		DriverControlFilesURI:   j.GetDriverControlFilesUri(),
		Labels:                  maps.Clone(j.GetLabels()),
		Status:                  statusFromProto(j.GetStatus()),
	}
	if r := j.GetReference(); r != nil {
		out.Reference = &JobReference{ProjectID: r.GetProjectId(), JobID: r.GetJobId()}
	}
	if p := j.GetPlacement(); p != nil {
		out.Placement = &JobPlacement{
			ClusterName:   p.GetClusterName(),
			ClusterUUID:   p.GetClusterUuid(),
			ClusterLabels: maps.Clone(p.GetClusterLabels()),
		}
	}
	for _, s := range j.GetStatusHistory() {
		out.StatusHistory = append(out.StatusHistory, statusFromProto(s))
	}
	for _, y := range j.GetYarnApplications() {
		out.YarnApplications = append(out.YarnApplications, &YarnApplication{
			Name:        y.GetName(),
			State:       YarnState(y.GetState()),
			Progress:    y.GetProgress(),
			TrackingURL: y.GetTrackingUrl(),
		})
	}
	if s := j.GetScheduling(); s != nil {
		out.Scheduling = &JobScheduling{MaxFailuresPerHour: s.GetMaxFailuresPerHour()}
	}

	switch v := j.GetTypeJob().(type) {
	case nil:
	case *dataprocpb.Job_HadoopJob:
		h := v.HadoopJob
		out.Variant = &HadoopJob{
			MainJarFileURI: h.GetMainJarFileUri(),
			MainClass:      h.GetMainClass(),
			Args:           slices.Clone(h.GetArgs()),
			JarFileURIs:    slices.Clone(h.GetJarFileUris()),
			FileURIs:       slices.Clone(h.GetFileUris()),
			ArchiveURIs:    slices.Clone(h.GetArchiveUris()),
			Properties:     maps.Clone(h.GetProperties()),
			LoggingConfig:  loggingFromProto(h.GetLoggingConfig()),
		}
	case *dataprocpb.Job_SparkJob:
		s := v.SparkJob
		out.Variant = &SparkJob{
			MainJarFileURI: s.GetMainJarFileUri(),
			MainClass:      s.GetMainClass(),
			Args:           slices.Clone(s.GetArgs()),
			JarFileURIs:    slices.Clone(s.GetJarFileUris()),
			FileURIs:       slices.Clone(s.GetFileUris()),
			ArchiveURIs:    slices.Clone(s.GetArchiveUris()),
			Properties:     maps.Clone(s.GetProperties()),
			LoggingConfig:  loggingFromProto(s.GetLoggingConfig()),
		}
	case *dataprocpb.Job_PysparkJob:
		p := v.PysparkJob
		out.Variant = &PySparkJob{
			MainPythonFileURI: p.GetMainPythonFileUri(),
			Args:              slices.Clone(p.GetArgs()),
			PythonFileURIs:    slices.Clone(p.GetPythonFileUris()),
			JarFileURIs:       slices.Clone(p.GetJarFileUris()),
			FileURIs:          slices.Clone(p.GetFileUris()),
			ArchiveURIs:       slices.Clone(p.GetArchiveUris()),
			Properties:        maps.Clone(p.GetProperties()),
			LoggingConfig:     loggingFromProto(p.GetLoggingConfig()),
		}
	case *dataprocpb.Job_HiveJob:
		h := v.HiveJob
		out.Variant = &HiveJob{
			QueryFileURI:      h.GetQueryFileUri(),
			QueryList:         queriesFromProto(h.GetQueryList()),
			ContinueOnFailure: h.GetContinueOnFailure(),
			ScriptVariables:   maps.Clone(h.GetScriptVariables()),
			Properties:        maps.Clone(h.GetProperties()),
			JarFileURIs:       slices.Clone(h.GetJarFileUris()),
		}
	case *dataprocpb.Job_PigJob:
		p := v.PigJob
		out.Variant = &PigJob{
			QueryFileURI:      p.GetQueryFileUri(),
			QueryList:         queriesFromProto(p.GetQueryList()),
			ContinueOnFailure: p.GetContinueOnFailure(),
			ScriptVariables:   maps.Clone(p.GetScriptVariables()),
			Properties:        maps.Clone(p.GetProperties()),
			JarFileURIs:       slices.Clone(p.GetJarFileUris()),
			LoggingConfig:     loggingFromProto(p.GetLoggingConfig()),
		}
	case *dataprocpb.Job_SparkSqlJob:
		s := v.SparkSqlJob
		out.Variant = &SparkSQLJob{
			QueryFileURI:    s.GetQueryFileUri(),
			QueryList:       queriesFromProto(s.GetQueryList()),
			ScriptVariables: maps.Clone(s.GetScriptVariables()),
			Properties:      maps.Clone(s.GetProperties()),
			JarFileURIs:     slices.Clone(s.GetJarFileUris()),
			LoggingConfig:   loggingFromProto(s.GetLoggingConfig()),
		}
	default:
		return nil, errors.Annotate(ErrUnsupportedVariant, "job %q: %T", out.ID(), v).Err()
	}
	return out, nil
}

func statusToProto(s *JobStatus) *dataprocpb.JobStatus {
	if s == nil {
		return nil
	}
	out := &dataprocpb.JobStatus{
		State:    dataprocpb.JobStatus_State(s.State),
		Details:  s.Details,
		Substate: dataprocpb.JobStatus_Substate(s.Substate),
	}
	if !s.StateStartTime.IsZero() {
		out.StateStartTime = timestamppb.New(s.StateStartTime)
	}
	return out
}

func statusFromProto(s *dataprocpb.JobStatus) *JobStatus {
	if s == nil {
		return nil
	}
	out := &JobStatus{
		State:    State(s.GetState()),
		Details:  s.GetDetails(),
		Substate: Substate(s.GetSubstate()),
	}
	if ts := s.GetStateStartTime(); ts != nil {
		out.StateStartTime = ts.AsTime().In(time.UTC)
	}
	return out
}

func loggingToProto(c *LoggingConfig) *dataprocpb.LoggingConfig {
	if c == nil {
		return nil
	}
	out := &dataprocpb.LoggingConfig{}
	if c.DriverLogLevels != nil {
		out.DriverLogLevels = make(map[string]dataprocpb.LoggingConfig_Level, len(c.DriverLogLevels))
		for pkg, l := range c.DriverLogLevels {
			out.DriverLogLevels[pkg] = dataprocpb.LoggingConfig_Level(l)
		}
	}
	return out
}

func loggingFromProto(c *dataprocpb.LoggingConfig) *LoggingConfig {
	if c == nil {
		return nil
	}
	out := &LoggingConfig{}
	if levels := c.GetDriverLogLevels(); levels != nil {
		out.DriverLogLevels = make(map[string]Level, len(levels))
		for pkg, l := range levels {
			out.DriverLogLevels[pkg] = Level(l)
		}
	}
	return out
}

func queriesToProto(q *QueryList) *dataprocpb.QueryList {
	return &dataprocpb.QueryList{Queries: slices.Clone(q.Queries)}
}

func queriesFromProto(q *dataprocpb.QueryList) *QueryList {
	if q == nil {
		return nil
	}
	return &QueryList{Queries: slices.Clone(q.GetQueries())}
}

// ToProto converts the request to its wire form.
func (r *SubmitRequest) ToProto() *dataprocpb.SubmitJobRequest {
	return &dataprocpb.SubmitJobRequest{
		ProjectId: r.ProjectID,
		Region:    r.Region,
		Job:       ToProto(r.Job),
		RequestId: r.RequestID,
	}
}

// SubmitRequestFromProto converts a wire request to the model.
func SubmitRequestFromProto(r *dataprocpb.SubmitJobRequest) (*SubmitRequest, error) {
	job, err := FromProto(r.GetJob())
	if err != nil {
		return nil, err
	}
	return &SubmitRequest{
		ProjectID: r.GetProjectId(),
		Region:    r.GetRegion(),
		Job:       job,
		RequestID: r.GetRequestId(),
	}, nil
}

// ToProto converts the request to its wire form.
func (r *GetRequest) ToProto() *dataprocpb.GetJobRequest {
	return &dataprocpb.GetJobRequest{ProjectId: r.ProjectID, Region: r.Region, JobId: r.JobID}
}

// GetRequestFromProto converts a wire request to the model.
func GetRequestFromProto(r *dataprocpb.GetJobRequest) *GetRequest {
	return &GetRequest{ProjectID: r.GetProjectId(), Region: r.GetRegion(), JobID: r.GetJobId()}
}

// ToProto converts the request to its wire form.
func (r *ListRequest) ToProto() *dataprocpb.ListJobsRequest {
	return &dataprocpb.ListJobsRequest{
		ProjectId:       r.ProjectID,
		Region:          r.Region,
		PageSize:        r.PageSize,
		PageToken:       r.PageToken,
		ClusterName:     r.ClusterName,
		JobStateMatcher: dataprocpb.ListJobsRequest_JobStateMatcher(r.StateMatcher),
		Filter:          r.Filter,
	}
}

// ListRequestFromProto converts a wire request to the model.
func ListRequestFromProto(r *dataprocpb.ListJobsRequest) *ListRequest {
	return &ListRequest{
		ProjectID:    r.GetProjectId(),
		Region:       r.GetRegion(),
		PageSize:     r.GetPageSize(),
		PageToken:    r.GetPageToken(),
		ClusterName:  r.GetClusterName(),
		StateMatcher: StateMatcher(r.GetJobStateMatcher()),
		Filter:       r.GetFilter(),
	}
}

// ToProto converts the response to its wire form.
func (r *ListResponse) ToProto() *dataprocpb.ListJobsResponse {
	out := &dataprocpb.ListJobsResponse{NextPageToken: r.NextPageToken}
	for _, j := range r.Jobs {
		out.Jobs = append(out.Jobs, ToProto(j))
	}
	return out
}

// ListResponseFromProto converts a wire response to the model.
//
// Jobs with unsupported variants are skipped; their IDs are reported in the
// returned error, which wraps ErrUnsupportedVariant.
func ListResponseFromProto(r *dataprocpb.ListJobsResponse) (*ListResponse, error) {
	out := &ListResponse{NextPageToken: r.GetNextPageToken()}
	var merr errors.MultiError
	for _, pj := range r.GetJobs() {
		j, err := FromProto(pj)
		if err != nil {
			merr = append(merr, err)
			continue
		}
		out.Jobs = append(out.Jobs, j)
	}
	return out, merr.AsError()
}

// ToProto converts the request to its wire form.
func (r *UpdateRequest) ToProto() *dataprocpb.UpdateJobRequest {
	out := &dataprocpb.UpdateJobRequest{
		ProjectId: r.ProjectID,
		Region:    r.Region,
		JobId:     r.JobID,
		Job:       ToProto(r.Job),
	}
	if r.UpdateMask != nil {
		out.UpdateMask = &fieldmaskpb.FieldMask{Paths: slices.Clone(r.UpdateMask)}
	}
	return out
}

// UpdateRequestFromProto converts a wire request to the model.
func UpdateRequestFromProto(r *dataprocpb.UpdateJobRequest) (*UpdateRequest, error) {
	job, err := FromProto(r.GetJob())
	if err != nil {
		return nil, err
	}
	return &UpdateRequest{
		ProjectID:  r.GetProjectId(),
		Region:     r.GetRegion(),
		JobID:      r.GetJobId(),
		Job:        job,
		UpdateMask: slices.Clone(r.GetUpdateMask().GetPaths()),
	}, nil
}

// ToProto converts the request to its wire form.
func (r *CancelRequest) ToProto() *dataprocpb.CancelJobRequest {
	return &dataprocpb.CancelJobRequest{ProjectId: r.ProjectID, Region: r.Region, JobId: r.JobID}
}

// CancelRequestFromProto converts a wire request to the model.
func CancelRequestFromProto(r *dataprocpb.CancelJobRequest) *CancelRequest {
	return &CancelRequest{ProjectID: r.GetProjectId(), Region: r.GetRegion(), JobID: r.GetJobId()}
}

// ToProto converts the request to its wire form.
func (r *DeleteRequest) ToProto() *dataprocpb.DeleteJobRequest {
	return &dataprocpb.DeleteJobRequest{ProjectId: r.ProjectID, Region: r.Region, JobId: r.JobID}
}

// DeleteRequestFromProto converts a wire request to the model.
func DeleteRequestFromProto(r *dataprocpb.DeleteJobRequest) *DeleteRequest {
	return &DeleteRequest{ProjectID: r.GetProjectId(), Region: r.GetRegion(), JobID: r.GetJobId()}
}
