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
	"context"
	"fmt"
	"strings"
	"testing"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/testing/ftt"
	"go.chromium.org/luci/common/testing/truth/assert"
	"go.chromium.org/luci/common/testing/truth/should"
	"go.chromium.org/luci/config/validation"
)

func validate(fn func(*validation.Context)) error {
	ctx := validation.Context{Context: context.Background()}
	fn(&ctx)
	return ctx.Finalize()
}

func errCount(err error) int {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return 0
	}
	return len(verr.Errors)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	ftt.Run("ValidateJob", t, func(t *ftt.Test) {
		job := &Job{
			Placement: &JobPlacement{ClusterName: "cluster"},
			Variant:   &SparkJob{MainJarFileURI: "gs://bucket/app.jar"},
			Labels:    map[string]string{"env": "staging", "starred": ""},
		}
		check := func() error {
			return validate(func(ctx *validation.Context) { ValidateJob(ctx, job) })
		}

		t.Run("OK", func(t *ftt.Test) {
			assert.Loosely(t, check(), should.BeNil)
		})

		t.Run("missing", func(t *ftt.Test) {
			job = nil
			assert.Loosely(t, check(), should.ErrLike("(job): missing"))
		})

		t.Run("placement", func(t *ftt.Test) {
			job.Placement = nil
			assert.Loosely(t, check(), should.ErrLike("(job / placement): cluster name is required"))
		})

		t.Run("variant", func(t *ftt.Test) {
			job.Variant = nil
			assert.Loosely(t, check(), should.ErrLike("exactly one job variant is required"))
		})

		t.Run("job ID", func(t *ftt.Test) {
			job.Reference = &JobReference{JobID: "has space"}
			assert.Loosely(t, check(), should.ErrLike(`(job / reference): job ID "has space"`))

			job.Reference.JobID = strings.Repeat("a", 100)
			assert.Loosely(t, check(), should.BeNil)
			job.Reference.JobID = strings.Repeat("a", 101)
			assert.Loosely(t, check(), should.ErrLike("job ID"))
		})

		t.Run("driver", func(t *ftt.Test) {
			job.Variant = &HadoopJob{}
			assert.Loosely(t, check(), should.ErrLike("(job / hadoop): one of main_jar_file_uri or main_class is required"))
			job.Variant = &HadoopJob{MainJarFileURI: "gs://b/x.jar", MainClass: "C"}
			assert.Loosely(t, check(), should.ErrLike("mutually exclusive"))
			job.Variant = &HadoopJob{MainJarFileURI: "gs://b/x.txt"}
			assert.Loosely(t, check(), should.ErrLike(`"gs://b/x.txt" must end with one of .jar`))
		})

		t.Run("URIs", func(t *ftt.Test) {
			for _, good := range []string{"gs://b/f", "hdfs:/tmp/f", "file:///usr/lib/f", "hdfs://nn:8020/f"} {
				job.Variant = &SparkJob{MainClass: "C", FileURIs: []string{good}}
				assert.Loosely(t, check(), should.BeNil)
			}
			job.Variant = &SparkJob{MainClass: "C", FileURIs: []string{"/local/f"}}
			assert.Loosely(t, check(), should.ErrLike("has no scheme"))
			job.Variant = &SparkJob{MainClass: "C", FileURIs: []string{"ftp://host/f"}}
			assert.Loosely(t, check(), should.ErrLike(`unsupported scheme "ftp"`))
			job.Variant = &SparkJob{MainClass: "C", FileURIs: []string{"gs:///f"}}
			assert.Loosely(t, check(), should.ErrLike("names no bucket"))
			job.Variant = &SparkJob{MainClass: "C", ArchiveURIs: []string{"gs://b/a.tar.gz", "gs://b/a.rar"}}
			assert.Loosely(t, check(), should.ErrLike(`(job / spark / archive_uris): "gs://b/a.rar" must end with one of`))
		})

		t.Run("pyspark", func(t *ftt.Test) {
			job.Variant = &PySparkJob{}
			assert.Loosely(t, check(), should.ErrLike("(job / pyspark / main_python_file_uri): required"))
			job.Variant = &PySparkJob{MainPythonFileURI: "gs://b/main.jar"}
			assert.Loosely(t, check(), should.ErrLike("must end with one of .py"))
			job.Variant = &PySparkJob{MainPythonFileURI: "gs://b/main.py", PythonFileURIs: []string{"gs://b/dep.egg", "gs://b/dep.zip"}}
			assert.Loosely(t, check(), should.BeNil)
		})

		t.Run("queries", func(t *ftt.Test) {
			job.Variant = &HiveJob{}
			assert.Loosely(t, check(), should.ErrLike("one of query_file_uri or query_list is required"))
			job.Variant = &PigJob{QueryFileURI: "gs://b/q.pig", QueryList: &QueryList{Queries: []string{"x"}}}
			assert.Loosely(t, check(), should.ErrLike("mutually exclusive"))
			job.Variant = &SparkSQLJob{QueryList: &QueryList{}}
			assert.Loosely(t, check(), should.ErrLike("at least one query is required"))
			job.Variant = &SparkSQLJob{QueryList: &QueryList{Queries: []string{"SELECT 1", " "}}}
			assert.Loosely(t, check(), should.ErrLike("query #1 is empty"))
		})

		t.Run("logging config", func(t *ftt.Test) {
			job.Variant = &SparkJob{MainClass: "C", LoggingConfig: &LoggingConfig{DriverLogLevels: map[string]Level{"root": Level(42)}}}
			assert.Loosely(t, check(), should.ErrLike(`package "root": unknown level 42`))
		})

		t.Run("labels", func(t *ftt.Test) {
			job.Labels = map[string]string{"Env": "x"}
			assert.Loosely(t, check(), should.ErrLike(`key "Env" does not conform to RFC 1035`))
			job.Labels = map[string]string{"env": "-x"}
			assert.Loosely(t, check(), should.ErrLike(`value "-x" of "env"`))
			job.Labels = map[string]string{"k": strings.Repeat("v", 63), strings.Repeat("k", 63): "1"}
			assert.Loosely(t, check(), should.BeNil)
			job.Labels = map[string]string{strings.Repeat("k", 64): ""}
			assert.Loosely(t, check(), should.ErrLike("does not conform"))

			job.Labels = map[string]string{}
			for i := 0; i < MaxLabels+1; i++ {
				job.Labels[fmt.Sprintf("l%d", i)] = ""
			}
			assert.Loosely(t, check(), should.ErrLike("33 labels, at most 32 are allowed"))
		})

		t.Run("scheduling", func(t *ftt.Test) {
			job.Scheduling = &JobScheduling{MaxFailuresPerHour: 10}
			assert.Loosely(t, check(), should.BeNil)
			job.Scheduling.MaxFailuresPerHour = 11
			assert.Loosely(t, check(), should.ErrLike("max_failures_per_hour must be in [0, 10], got 11"))
		})

		t.Run("accumulates", func(t *ftt.Test) {
			job.Placement = nil
			job.Variant = &HiveJob{}
			job.Labels = map[string]string{"BAD": ""}
			assert.Loosely(t, errCount(check()), should.Equal(3))
		})
	})

	ftt.Run("requests", t, func(t *ftt.Test) {
		t.Run("submit", func(t *ftt.Test) {
			req := &SubmitRequest{
				ProjectID: "p",
				Region:    "us-central1",
				RequestID: "req-1",
				Job: &Job{
					Reference: &JobReference{ProjectID: "p"},
					Placement: &JobPlacement{ClusterName: "c"},
					Variant:   &HiveJob{QueryList: &QueryList{Queries: []string{"SHOW TABLES"}}},
				},
			}
			check := func() error {
				return validate(func(ctx *validation.Context) { ValidateSubmitRequest(ctx, req) })
			}
			assert.Loosely(t, check(), should.BeNil)

			req.Job.Reference.ProjectID = "other"
			assert.Loosely(t, check(), should.ErrLike(`job.reference.project_id "other" does not match`))

			req.Job.Reference.ProjectID = ""
			req.RequestID = strings.Repeat("r", 41)
			assert.Loosely(t, check(), should.ErrLike("request_id"))

			req.RequestID = ""
			req.Region = ""
			assert.Loosely(t, check(), should.ErrLike("region is required"))
		})

		t.Run("get, cancel, delete", func(t *ftt.Test) {
			err := validate(func(ctx *validation.Context) { ValidateGetRequest(ctx, &GetRequest{ProjectID: "p", Region: "r", JobID: "j"}) })
			assert.Loosely(t, err, should.BeNil)
			err = validate(func(ctx *validation.Context) { ValidateCancelRequest(ctx, &CancelRequest{Region: "r", JobID: "j"}) })
			assert.Loosely(t, err, should.ErrLike("project_id is required"))
			err = validate(func(ctx *validation.Context) { ValidateDeleteRequest(ctx, &DeleteRequest{ProjectID: "p", Region: "r"}) })
			assert.Loosely(t, err, should.ErrLike("(job_id): required"))
		})

		t.Run("list", func(t *ftt.Test) {
			err := validate(func(ctx *validation.Context) {
				ValidateListRequest(ctx, &ListRequest{ProjectID: "p", Region: "r", Filter: "labels.env = prod"})
			})
			assert.Loosely(t, err, should.BeNil)
			err = validate(func(ctx *validation.Context) {
				ValidateListRequest(ctx, &ListRequest{ProjectID: "p", Region: "r", Filter: "status.state = DONE"})
			})
			assert.Loosely(t, err, should.ErrLike("(filter): bad filter"))
			err = validate(func(ctx *validation.Context) {
				ValidateListRequest(ctx, &ListRequest{ProjectID: "p", Region: "r", StateMatcher: StateMatcher(7)})
			})
			assert.Loosely(t, err, should.ErrLike("unknown job_state_matcher 7"))
		})

		t.Run("update", func(t *ftt.Test) {
			req := &UpdateRequest{
				ProjectID:  "p",
				Region:     "r",
				JobID:      "j",
				Job:        &Job{Labels: map[string]string{"env": "prod"}},
				UpdateMask: []string{"labels"},
			}
			check := func() error {
				return validate(func(ctx *validation.Context) { ValidateUpdateRequest(ctx, req) })
			}
			assert.Loosely(t, check(), should.BeNil)

			req.UpdateMask = []string{"labels", "placement"}
			assert.Loosely(t, check(), should.ErrLike(`field "placement" cannot be updated`))

			req.UpdateMask = nil
			assert.Loosely(t, check(), should.ErrLike("(update_mask): required"))

			req.UpdateMask = []string{"labels"}
			req.Job = nil
			assert.Loosely(t, check(), should.ErrLike("job is required"))
		})
	})
}
