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
	"net/url"
	"regexp"
	"sort"
	"strings"

	"go.chromium.org/luci/common/data/stringset"
	"go.chromium.org/luci/config/validation"
)

const (
	// MaxLabels is the maximum number of labels on a job.
	MaxLabels = 32
	// MaxFailuresPerHour is the upper bound of JobScheduling.MaxFailuresPerHour.
	MaxFailuresPerHour = 10
)

var (
	jobIDRe     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)
	requestIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,40}$`)
	// RFC 1035 label: lowercase letter first, no trailing hyphen, 1..63 chars.
	labelRe = regexp.MustCompile(`^[a-z]([-a-z0-9]{0,61}[a-z0-9])?$`)
	// Values additionally may start with a digit.
	labelValueRe = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]{0,61}[a-z0-9])?$`)
)

// HCFSSchemes are the URI schemes accepted for job files.
var HCFSSchemes = stringset.NewFromSlice("gs", "hdfs", "file", "s3a", "viewfs", "webhdfs")

// UpdatableFields are the job fields UpdateJob can change.
var UpdatableFields = stringset.NewFromSlice("labels")

var (
	archiveExts = []string{".jar", ".tar", ".tar.gz", ".tgz", ".zip"}
	pythonExts  = []string{".py", ".egg", ".zip"}
)

// ValidateJobID checks a job ID.
func ValidateJobID(ctx *validation.Context, id string) {
	if !jobIDRe.MatchString(id) {
		ctx.Errorf("job ID %q must be 1 to 100 letters, numbers, underscores or hyphens", id)
	}
}

// ValidateLabels checks job labels.
//
// Keys must be 1 to 63 characters and conform to RFC 1035. Values may be
// empty, otherwise 1 to 63 characters conforming to RFC 1035. At most 32
// labels can be associated with a job.
func ValidateLabels(ctx *validation.Context, labels map[string]string) {
	ctx.Enter("labels")
	defer ctx.Exit()

	if len(labels) > MaxLabels {
		ctx.Errorf("%d labels, at most %d are allowed", len(labels), MaxLabels)
	}
	for _, k := range sortedKeys(labels) {
		if !labelRe.MatchString(k) {
			ctx.Errorf("key %q does not conform to RFC 1035", k)
		}
		if v := labels[k]; v != "" && !labelValueRe.MatchString(v) {
			ctx.Errorf("value %q of %q does not conform to RFC 1035", v, k)
		}
	}
}

// ValidateJob checks the client-settable fields of a job being submitted.
func ValidateJob(ctx *validation.Context, job *Job) {
	ctx.Enter("job")
	defer ctx.Exit()

	if job == nil {
		ctx.Errorf("missing")
		return
	}
	if r := job.Reference; r != nil && r.JobID != "" {
		ctx.Enter("reference")
		ValidateJobID(ctx, r.JobID)
		ctx.Exit()
	}
	ctx.Enter("placement")
	if job.Placement == nil || job.Placement.ClusterName == "" {
		ctx.Errorf("cluster name is required")
	}
	ctx.Exit()

	if job.Variant == nil {
		ctx.Errorf("exactly one job variant is required")
	} else {
		validateVariant(ctx, job.Variant)
	}

	ValidateLabels(ctx, job.Labels)

	if s := job.Scheduling; s != nil {
		ctx.Enter("scheduling")
		if s.MaxFailuresPerHour < 0 || s.MaxFailuresPerHour > MaxFailuresPerHour {
			ctx.Errorf("max_failures_per_hour must be in [0, %d], got %d", MaxFailuresPerHour, s.MaxFailuresPerHour)
		}
		ctx.Exit()
	}
}

func validateVariant(ctx *validation.Context, v Variant) {
	ctx.Enter("%s", v.Kind())
	defer ctx.Exit()

	switch v := v.(type) {
	case *HadoopJob:
		validateDriver(ctx, v.MainJarFileURI, v.MainClass)
		validateFiles(ctx, v.JarFileURIs, v.FileURIs, v.ArchiveURIs)
		validateLogging(ctx, v.LoggingConfig)
	case *SparkJob:
		validateDriver(ctx, v.MainJarFileURI, v.MainClass)
		validateFiles(ctx, v.JarFileURIs, v.FileURIs, v.ArchiveURIs)
		validateLogging(ctx, v.LoggingConfig)
	case *PySparkJob:
		ctx.Enter("main_python_file_uri")
		if v.MainPythonFileURI == "" {
			ctx.Errorf("required")
		} else {
			validateURI(ctx, v.MainPythonFileURI, ".py")
		}
		ctx.Exit()
		ctx.Enter("python_file_uris")
		for _, u := range v.PythonFileURIs {
			validateURI(ctx, u, pythonExts...)
		}
		ctx.Exit()
		validateFiles(ctx, v.JarFileURIs, v.FileURIs, v.ArchiveURIs)
		validateLogging(ctx, v.LoggingConfig)
	case *HiveJob:
		validateQueries(ctx, v.QueryFileURI, v.QueryList)
		validateFiles(ctx, v.JarFileURIs, nil, nil)
	case *PigJob:
		validateQueries(ctx, v.QueryFileURI, v.QueryList)
		validateFiles(ctx, v.JarFileURIs, nil, nil)
		validateLogging(ctx, v.LoggingConfig)
	case *SparkSQLJob:
		validateQueries(ctx, v.QueryFileURI, v.QueryList)
		validateFiles(ctx, v.JarFileURIs, nil, nil)
		validateLogging(ctx, v.LoggingConfig)
	}
}

func validateDriver(ctx *validation.Context, jar, class string) {
	switch {
	case jar == "" && class == "":
		ctx.Errorf("one of main_jar_file_uri or main_class is required")
	case jar != "" && class != "":
		ctx.Errorf("main_jar_file_uri and main_class are mutually exclusive")
	case jar != "":
		ctx.Enter("main_jar_file_uri")
		validateURI(ctx, jar, ".jar")
		ctx.Exit()
	}
}

func validateQueries(ctx *validation.Context, file string, list *QueryList) {
	switch {
	case file == "" && list == nil:
		ctx.Errorf("one of query_file_uri or query_list is required")
	case file != "" && list != nil:
		ctx.Errorf("query_file_uri and query_list are mutually exclusive")
	case file != "":
		ctx.Enter("query_file_uri")
		validateURI(ctx, file)
		ctx.Exit()
	default:
		ctx.Enter("query_list")
		if len(list.Queries) == 0 {
			ctx.Errorf("at least one query is required")
		}
		for i, q := range list.Queries {
			if strings.TrimSpace(q) == "" {
				ctx.Errorf("query #%d is empty", i)
			}
		}
		ctx.Exit()
	}
}

func validateFiles(ctx *validation.Context, jars, files, archives []string) {
	ctx.Enter("jar_file_uris")
	for _, u := range jars {
		validateURI(ctx, u, ".jar")
	}
	ctx.Exit()
	ctx.Enter("file_uris")
	for _, u := range files {
		validateURI(ctx, u)
	}
	ctx.Exit()
	ctx.Enter("archive_uris")
	for _, u := range archives {
		validateURI(ctx, u, archiveExts...)
	}
	ctx.Exit()
}

func validateLogging(ctx *validation.Context, cfg *LoggingConfig) {
	if cfg == nil {
		return
	}
	ctx.Enter("logging_config")
	defer ctx.Exit()
	for _, pkg := range sortedKeys(cfg.DriverLogLevels) {
		if pkg == "" {
			ctx.Errorf("empty package name")
		}
		if l := cfg.DriverLogLevels[pkg]; levelTable.names[l] == "" {
			ctx.Errorf("package %q: unknown level %d", pkg, int32(l))
		}
	}
}

// validateURI checks that uri is an HCFS URI and, if exts are given, that it
// ends with one of them.
func validateURI(ctx *validation.Context, uri string, exts ...string) {
	u, err := url.Parse(uri)
	switch {
	case err != nil:
		ctx.Errorf("%q is not a valid URI: %s", uri, err)
		return
	case u.Scheme == "":
		ctx.Errorf("%q has no scheme, want an HCFS URI such as gs://bucket/path", uri)
		return
	case !HCFSSchemes.Has(u.Scheme):
		ctx.Errorf("%q: unsupported scheme %q, want one of %s", uri, u.Scheme, strings.Join(HCFSSchemes.ToSortedSlice(), ", "))
		return
	case u.Scheme == "gs" && u.Host == "":
		ctx.Errorf("%q names no bucket", uri)
		return
	}
	if len(exts) == 0 {
		return
	}
	for _, ext := range exts {
		if strings.HasSuffix(u.Path, ext) {
			return
		}
	}
	ctx.Errorf("%q must end with one of %s", uri, strings.Join(exts, ", "))
}

func validateRef(ctx *validation.Context, projectID, region, jobID string) {
	if projectID == "" {
		ctx.Errorf("project_id is required")
	}
	if region == "" {
		ctx.Errorf("region is required")
	}
	ctx.Enter("job_id")
	if jobID == "" {
		ctx.Errorf("required")
	} else {
		ValidateJobID(ctx, jobID)
	}
	ctx.Exit()
}

// ValidateSubmitRequest checks a SubmitJob request.
func ValidateSubmitRequest(ctx *validation.Context, req *SubmitRequest) {
	if req.ProjectID == "" {
		ctx.Errorf("project_id is required")
	}
	if req.Region == "" {
		ctx.Errorf("region is required")
	}
	if req.RequestID != "" && !requestIDRe.MatchString(req.RequestID) {
		ctx.Errorf("request_id %q must be 1 to 40 letters, numbers, underscores or hyphens", req.RequestID)
	}
	ValidateJob(ctx, req.Job)
	if req.Job != nil && req.Job.Reference != nil {
		if p := req.Job.Reference.ProjectID; p != "" && p != req.ProjectID {
			ctx.Errorf("job.reference.project_id %q does not match project_id %q", p, req.ProjectID)
		}
	}
}

// ValidateGetRequest checks a GetJob request.
func ValidateGetRequest(ctx *validation.Context, req *GetRequest) {
	validateRef(ctx, req.ProjectID, req.Region, req.JobID)
}

// ValidateCancelRequest checks a CancelJob request.
func ValidateCancelRequest(ctx *validation.Context, req *CancelRequest) {
	validateRef(ctx, req.ProjectID, req.Region, req.JobID)
}

// ValidateDeleteRequest checks a DeleteJob request.
func ValidateDeleteRequest(ctx *validation.Context, req *DeleteRequest) {
	validateRef(ctx, req.ProjectID, req.Region, req.JobID)
}

// ValidateListRequest checks a ListJobs request.
func ValidateListRequest(ctx *validation.Context, req *ListRequest) {
	if req.ProjectID == "" {
		ctx.Errorf("project_id is required")
	}
	if req.Region == "" {
		ctx.Errorf("region is required")
	}
	if req.PageSize < 0 {
		ctx.Errorf("page_size must be non-negative, got %d", req.PageSize)
	}
	if matcherTable.names[req.StateMatcher] == "" {
		ctx.Errorf("unknown job_state_matcher %d", int32(req.StateMatcher))
	}
	if req.Filter != "" {
		ctx.Enter("filter")
		if _, err := ParseFilter(req.Filter); err != nil {
			ctx.Error(err)
		}
		ctx.Exit()
	}
}

// ValidateUpdateRequest checks an UpdateJob request.
func ValidateUpdateRequest(ctx *validation.Context, req *UpdateRequest) {
	validateRef(ctx, req.ProjectID, req.Region, req.JobID)
	ctx.Enter("update_mask")
	if len(req.UpdateMask) == 0 {
		ctx.Errorf("required")
	}
	for _, path := range req.UpdateMask {
		if !UpdatableFields.Has(path) {
			ctx.Errorf("field %q cannot be updated", path)
		}
	}
	ctx.Exit()
	if req.Job == nil {
		ctx.Errorf("job is required")
		return
	}
	ValidateLabels(ctx, req.Job.Labels)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
