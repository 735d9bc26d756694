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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"cloud.google.com/go/dataproc/v2/apiv1/dataprocpb"
	"cloud.google.com/go/logging/apiv2/loggingpb"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"

	"go.chromium.org/luci/common/testing/ftt"
	"go.chromium.org/luci/common/testing/truth"
	"go.chromium.org/luci/common/testing/truth/assert"
	"go.chromium.org/luci/common/testing/truth/should"
	"go.chromium.org/luci/grpc/prpc"
	"go.chromium.org/luci/server/router"

	"github.com/cloudapis-go/cloudapis/dataproc/jobcontroller"
	"github.com/cloudapis-go/cloudapis/dataproc/jobcontroller/jobcontrollertest"
	"github.com/cloudapis-go/cloudapis/dataproc/jobs"
	"github.com/cloudapis-go/cloudapis/internal/config"
	"github.com/cloudapis-go/cloudapis/logging/configsvc"
	"github.com/cloudapis-go/cloudapis/logging/configsvc/configsvctest"
)

// testEnv runs the CLI against fakes served over pRPC on localhost.
type testEnv struct {
	sinks *configsvctest.Fake
	jobs  *jobcontrollertest.Fake
	host  string
	out   bytes.Buffer
	log   bytes.Buffer
}

func newTestEnv(t testing.TB) *testEnv {
	e := &testEnv{
		sinks: &configsvctest.Fake{},
		jobs:  &jobcontrollertest.Fake{},
	}
	s := &prpc.Server{}
	configsvc.RegisterServer(s, e.sinks)
	jobcontroller.RegisterServer(s, e.jobs)
	r := router.New()
	s.InstallHandlers(r, router.NewMiddlewareChain())
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	u, err := url.Parse(ts.URL)
	assert.Loosely(t, err, should.BeNil)
	e.host = u.Host
	return e
}

func (e *testEnv) run(args ...string) int {
	e.out.Reset()
	e.log.Reset()
	return Main(Params{
		Defaults: config.Defaults{
			Project:      "p",
			Region:       "r",
			LoggingHost:  e.host,
			DataprocHost: e.host,
			Transport:    config.TransportPRPC,
		},
		Out: &e.out,
		Log: &e.log,
	}, args)
}

func TestSinks(t *testing.T) {
	t.Parallel()

	ftt.Run("sinks-*", t, func(t *ftt.Test) {
		e := newTestEnv(t)

		create := func(id string, extra ...string) int {
			args := append([]string{"sinks-create", "-destination", "storage.googleapis.com/bucket-" + id}, extra...)
			return e.run(append(args, id)...)
		}

		t.Run("create and get", func(t *ftt.Test) {
			assert.Loosely(t, create("s1", "-filter", "severity>=ERROR", "-exclusion", "noisy=resource.type=gce"), should.BeZero)
			assert.Loosely(t, e.out.String(), should.ContainSubstring("Sink s1\n"))
			assert.Loosely(t, e.log.String(), should.ContainSubstring("Created s1"))

			stored := e.sinks.Sink("projects/p/sinks/s1")
			assert.Loosely(t, stored, should.NotBeNil)
			assert.Loosely(t, stored.Filter, should.Equal("severity>=ERROR"))
			assert.Loosely(t, stored.Exclusions, should.HaveLength(1))
			assert.Loosely(t, stored.Exclusions[0].Filter, should.Equal("resource.type=gce"))
			assert.Loosely(t, stored.WriterIdentity, should.NotEqual(configsvctest.SharedWriterIdentity))

			assert.Loosely(t, e.run("sinks-get", "-json", "projects/p/sinks/s1"), should.BeZero)
			got := &loggingpb.LogSink{}
			assert.Loosely(t, protojson.Unmarshal(e.out.Bytes(), got), should.BeNil)
			assert.Loosely(t, got.Destination, should.Equal("storage.googleapis.com/bucket-s1"))
		})

		t.Run("local validation", func(t *ftt.Test) {
			assert.Loosely(t, e.run("sinks-create", "-destination", "example.com/x", "s1"), should.Equal(1))
			assert.Loosely(t, e.log.String(), should.ContainSubstring("unsupported destination"))
			assert.Loosely(t, e.sinks.PopRequests(), should.BeEmpty)
		})

		t.Run("bad parent", func(t *ftt.Test) {
			assert.Loosely(t, e.run("sinks-list", "-parent", "planets/earth"), should.Equal(1))
			assert.Loosely(t, e.log.String(), should.ContainSubstring(`unknown kind "planets"`))
		})

		t.Run("list", func(t *ftt.Test) {
			assert.Loosely(t, e.run("sinks-list"), should.BeZero)
			assert.Loosely(t, e.out.String(), should.Equal("No sinks\n"))

			for _, id := range []string{"a", "b", "c"} {
				assert.Loosely(t, create(id), should.BeZero)
			}
			assert.Loosely(t, e.run("sinks-list", "-page-size", "2"), should.BeZero)
			for _, id := range []string{"a", "b", "c"} {
				assert.Loosely(t, e.out.String(), should.ContainSubstring("storage.googleapis.com/bucket-"+id))
			}

			assert.Loosely(t, e.run("sinks-list", "-n", "1", "-json"), should.BeZero)
			got := &loggingpb.LogSink{}
			assert.Loosely(t, protojson.Unmarshal(e.out.Bytes(), got), should.BeNil)
			assert.Loosely(t, got.Name, should.Equal("a"))
		})

		t.Run("update only sends given fields", func(t *ftt.Test) {
			assert.Loosely(t, create("s1", "-filter", "severity>=ERROR"), should.BeZero)
			e.sinks.PopRequests()

			assert.Loosely(t, e.run("sinks-update", "-disabled", "-description", "off for now", "s1"), should.BeZero)
			reqs := e.sinks.PopRequests()
			assert.Loosely(t, reqs, should.HaveLength(2))
			upd := reqs[1].(*loggingpb.UpdateSinkRequest)
			assert.Loosely(t, upd.UpdateMask.Paths, should.Match([]string{"description", "disabled"}))

			stored := e.sinks.Sink("projects/p/sinks/s1")
			assert.Loosely(t, stored.Disabled, should.BeTrue)
			assert.Loosely(t, stored.Description, should.Equal("off for now"))
			assert.Loosely(t, stored.Filter, should.Equal("severity>=ERROR"))
		})

		t.Run("update without flags", func(t *ftt.Test) {
			assert.Loosely(t, e.run("sinks-update", "s1"), should.Equal(1))
			assert.Loosely(t, e.log.String(), should.ContainSubstring("nothing to update"))
		})

		t.Run("delete", func(t *ftt.Test) {
			assert.Loosely(t, create("s1"), should.BeZero)
			assert.Loosely(t, e.run("sinks-delete", "s1", "missing"), should.Equal(1))
			assert.Loosely(t, e.log.String(), should.ContainSubstring("Deleted projects/p/sinks/s1"))
			assert.Loosely(t, e.log.String(), should.ContainSubstring("deleting projects/p/sinks/missing"))
			assert.Loosely(t, e.sinks.Sink("projects/p/sinks/s1"), should.BeNil)
		})
	})
}

func TestSinksOverGRPC(t *testing.T) {
	t.Parallel()

	ftt.Run("sinks-list over gRPC", t, func(t *ftt.Test) {
		fake := &configsvctest.Fake{}
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		assert.Loosely(t, err, should.BeNil)
		s := grpc.NewServer()
		configsvc.RegisterServer(s, fake)
		go s.Serve(lis)
		t.Cleanup(s.Stop)

		_, err = fake.CreateSink(context.Background(), &loggingpb.CreateSinkRequest{
			Parent: "projects/p",
			Sink:   &loggingpb.LogSink{Name: "s1", Destination: "pubsub.googleapis.com/projects/p/topics/t"},
		})
		assert.Loosely(t, err, should.BeNil)

		var out, log bytes.Buffer
		code := Main(Params{
			Defaults: config.Defaults{Project: "p", LoggingHost: lis.Addr().String(), Transport: config.TransportGRPC},
			Out:      &out,
			Log:      &log,
		}, []string{"sinks-list"})
		assert.Loosely(t, code, should.BeZero, truth.Explain("log: %s", log.String()))
		assert.Loosely(t, out.String(), should.ContainSubstring("pubsub.googleapis.com/projects/p/topics/t"))
	})
}

func TestJobs(t *testing.T) {
	t.Parallel()

	ftt.Run("jobs-*", t, func(t *ftt.Test) {
		e := newTestEnv(t)
		ctx := context.Background()

		submit := func(id string, extra ...string) int {
			args := append([]string{"jobs-submit", "-cluster", "c", "-id", id, "-class", "org.example.Pi"}, extra...)
			return e.run(append(args, "spark", "--", "1000")...)
		}

		t.Run("submit", func(t *ftt.Test) {
			assert.Loosely(t, submit("j1", "-label", "env=prod", "-driver-log-level", "root=warn"), should.BeZero)
			assert.Loosely(t, e.out.String(), should.ContainSubstring("Job j1\n"))
			assert.Loosely(t, e.out.String(), should.ContainSubstring("State: PENDING"))

			job := e.jobs.Job("j1")
			assert.Loosely(t, job.Labels, should.Match(map[string]string{"env": "prod"}))
			spark := job.GetSparkJob()
			assert.Loosely(t, spark.GetMainClass(), should.Equal("org.example.Pi"))
			assert.Loosely(t, spark.Args, should.Match([]string{"1000"}))
			assert.Loosely(t, spark.LoggingConfig.DriverLogLevels["root"], should.Equal(dataprocpb.LoggingConfig_WARN))

			req := e.jobs.PopRequests()[0].(*dataprocpb.SubmitJobRequest)
			assert.Loosely(t, req.RequestId, should.NotBeEmpty)
		})

		t.Run("dry run", func(t *ftt.Test) {
			assert.Loosely(t, e.run("jobs-submit", "-dry-run", "-cluster", "c", "-request-id", "r1",
				"-query", "SELECT 1", "-var", "x=y", "hive"), should.BeZero)
			req := &dataprocpb.SubmitJobRequest{}
			assert.Loosely(t, protojson.Unmarshal(e.out.Bytes(), req), should.BeNil)
			assert.Loosely(t, req.RequestId, should.Equal("r1"))
			assert.Loosely(t, req.Job.GetHiveJob().GetQueryList().Queries, should.Match([]string{"SELECT 1"}))
			assert.Loosely(t, req.Job.GetHiveJob().ScriptVariables, should.Match(map[string]string{"x": "y"}))
			assert.Loosely(t, e.jobs.PopRequests(), should.BeEmpty)
		})

		t.Run("invalid jobs are not sent", func(t *ftt.Test) {
			assert.Loosely(t, e.run("jobs-submit", "-cluster", "c", "-py", "gs://b/main.sh", "pyspark"), should.Equal(1))
			assert.Loosely(t, e.log.String(), should.ContainSubstring(".py"))

			assert.Loosely(t, e.run("jobs-submit", "-cluster", "c", "presto"), should.Equal(1))
			assert.Loosely(t, e.log.String(), should.ContainSubstring(`unknown job kind "presto"`))

			assert.Loosely(t, e.run("jobs-submit", "-cluster", "c", "-query", "q", "hive", "--", "arg"), should.Equal(1))
			assert.Loosely(t, e.log.String(), should.ContainSubstring("hive jobs take no arguments"))

			assert.Loosely(t, e.jobs.PopRequests(), should.BeEmpty)
		})

		t.Run("idempotent submission", func(t *ftt.Test) {
			assert.Loosely(t, submit("j1", "-request-id", "same"), should.BeZero)
			assert.Loosely(t, submit("j1", "-request-id", "same"), should.BeZero)
			assert.Loosely(t, e.run("jobs-list"), should.BeZero)
			assert.Loosely(t, bytes.Count(e.out.Bytes(), []byte("j1")), should.Equal(1))
		})

		t.Run("get", func(t *ftt.Test) {
			assert.Loosely(t, submit("j1"), should.BeZero)
			assert.Loosely(t, submit("j2"), should.BeZero)

			assert.Loosely(t, e.run("jobs-get", "j2", "j1"), should.BeZero)
			out := e.out.String()
			assert.Loosely(t, bytes.Index([]byte(out), []byte("Job j2")) < bytes.Index([]byte(out), []byte("Job j1")), should.BeTrue)

			assert.Loosely(t, e.run("jobs-get", "j1", "nope"), should.Equal(1))
			assert.Loosely(t, e.out.String(), should.ContainSubstring("Job j1"))
			assert.Loosely(t, e.log.String(), should.ContainSubstring(`getting job "nope"`))
		})

		t.Run("list with filters", func(t *ftt.Test) {
			assert.Loosely(t, submit("j1", "-label", "env=prod"), should.BeZero)
			assert.Loosely(t, submit("j2", "-label", "env=dev"), should.BeZero)
			assert.Loosely(t, submit("j3"), should.BeZero)
			assert.Loosely(t, e.jobs.Advance(ctx, "j3", jobs.StateDone), should.BeNil)
			e.jobs.PopRequests()

			assert.Loosely(t, e.run("jobs-list", "-label", "env=prod", "-state", "active"), should.BeZero)
			assert.Loosely(t, e.out.String(), should.ContainSubstring("j1"))
			assert.Loosely(t, e.out.String(), should.NotContainSubstring("j2"))
			req := e.jobs.PopRequests()[0].(*dataprocpb.ListJobsRequest)
			assert.Loosely(t, req.Filter, should.Equal("status.state = ACTIVE AND labels.env = prod"))

			assert.Loosely(t, e.run("jobs-list", "-state", "NON_ACTIVE"), should.BeZero)
			assert.Loosely(t, e.out.String(), should.ContainSubstring("j3"))
			assert.Loosely(t, e.out.String(), should.NotContainSubstring("j1"))

			assert.Loosely(t, e.run("jobs-list", "-filter", "labels.env = *", "-n", "1"), should.BeZero)
			assert.Loosely(t, e.out.String(), should.ContainSubstring("j1"))
			assert.Loosely(t, e.out.String(), should.NotContainSubstring("j2"))

			assert.Loosely(t, e.run("jobs-list", "-filter", "labels.env = *", "-state", "ACTIVE"), should.Equal(1))
			assert.Loosely(t, e.run("jobs-list", "-filter", "status.state = RUNNING"), should.Equal(1))
		})

		t.Run("update labels", func(t *ftt.Test) {
			assert.Loosely(t, submit("j1", "-label", "env=prod", "-label", "team=a"), should.BeZero)
			assert.Loosely(t, e.run("jobs-update", "-label", "owner=me", "-remove-label", "team", "j1"), should.BeZero)
			assert.Loosely(t, e.jobs.Job("j1").Labels, should.Match(map[string]string{"env": "prod", "owner": "me"}))

			assert.Loosely(t, e.run("jobs-update", "-clear-labels", "j1"), should.BeZero)
			assert.Loosely(t, e.jobs.Job("j1").Labels, should.BeEmpty)

			assert.Loosely(t, e.run("jobs-update", "j1"), should.Equal(1))
			assert.Loosely(t, e.log.String(), should.ContainSubstring("nothing to update"))
		})

		t.Run("cancel, wait and delete", func(t *ftt.Test) {
			assert.Loosely(t, submit("j1"), should.BeZero)

			assert.Loosely(t, e.run("jobs-delete", "j1"), should.Equal(1))
			assert.Loosely(t, e.log.String(), should.ContainSubstring("cancel it before deleting"))

			assert.Loosely(t, e.run("jobs-cancel", "j1"), should.BeZero)
			assert.Loosely(t, e.out.String(), should.ContainSubstring("CANCEL_PENDING"))

			assert.Loosely(t, e.jobs.Advance(ctx, "j1", jobs.StateCancelled), should.BeNil)
			assert.Loosely(t, e.run("jobs-wait", "j1"), should.Equal(1))
			assert.Loosely(t, e.out.String(), should.ContainSubstring("State: CANCELLED"))
			assert.Loosely(t, e.log.String(), should.ContainSubstring(`job "j1" finished in state CANCELLED`))

			assert.Loosely(t, e.run("jobs-delete", "j1"), should.BeZero)
			assert.Loosely(t, e.jobs.Job("j1"), should.BeNil)
		})

		t.Run("cancel with some failures", func(t *ftt.Test) {
			assert.Loosely(t, submit("j1"), should.BeZero)

			assert.Loosely(t, e.run("jobs-cancel", "j1", "nope"), should.Equal(1))
			assert.Loosely(t, e.out.String(), should.ContainSubstring("CANCEL_PENDING"))
			assert.Loosely(t, e.out.String(), should.ContainSubstring("j1"))
			assert.Loosely(t, e.log.String(), should.ContainSubstring(`cancelling job "nope"`))
		})

		t.Run("cancel and wait", func(t *ftt.Test) {
			assert.Loosely(t, submit("j1"), should.BeZero)

			// Finish the cancellation once the CLI has asked for it.
			done := make(chan struct{})
			go func() {
				defer close(done)
				for deadline := time.Now().Add(10 * time.Second); time.Now().Before(deadline); time.Sleep(10 * time.Millisecond) {
					if j := e.jobs.Job("j1"); j.GetStatus().GetState() == dataprocpb.JobStatus_CANCEL_PENDING {
						e.jobs.Advance(ctx, "j1", jobs.StateCancelled)
						return
					}
				}
			}()

			code := e.run("jobs-cancel", "-wait", "j1", "nope")
			<-done
			assert.Loosely(t, code, should.Equal(1))
			assert.Loosely(t, e.out.String(), should.ContainSubstring("State: CANCELLED"))
			assert.Loosely(t, e.log.String(), should.ContainSubstring(`cancelling job "nope"`))
			assert.Loosely(t, e.log.String(), should.NotContainSubstring("finished in state"))
		})

		t.Run("wait for done jobs", func(t *ftt.Test) {
			assert.Loosely(t, submit("j1"), should.BeZero)
			assert.Loosely(t, submit("j2"), should.BeZero)
			assert.Loosely(t, e.jobs.Advance(ctx, "j1", jobs.StateDone), should.BeNil)
			assert.Loosely(t, e.jobs.Advance(ctx, "j2", jobs.StateDone), should.BeNil)

			assert.Loosely(t, e.run("jobs-wait", "-json", "j1", "j2"), should.BeZero)
			dec := json.NewDecoder(&e.out)
			var ids []string
			for dec.More() {
				var raw json.RawMessage
				assert.Loosely(t, dec.Decode(&raw), should.BeNil)
				job := &dataprocpb.Job{}
				assert.Loosely(t, protojson.Unmarshal(raw, job), should.BeNil)
				ids = append(ids, job.Reference.JobId)
			}
			assert.Loosely(t, ids, should.Match([]string{"j1", "j2"}))
		})

		t.Run("missing region", func(t *ftt.Test) {
			code := Main(Params{Defaults: config.Defaults{Project: "p", Transport: "prpc"}, Log: &e.log}, []string{"jobs-list"})
			assert.Loosely(t, code, should.Equal(1))
			assert.Loosely(t, e.log.String(), should.ContainSubstring("-region is required"))
		})
	})
}

func TestLocalCommands(t *testing.T) {
	t.Parallel()

	ftt.Run("describe and lint", t, func(t *ftt.Test) {
		var out, log bytes.Buffer
		p := Params{Out: &out, Log: &log}

		t.Run("describe", func(t *ftt.Test) {
			assert.Loosely(t, Main(p, []string{"describe", "-enums=false"}), should.BeZero)
			assert.Loosely(t, out.String(), should.ContainSubstring(
				"  rpc SubmitJob(google.cloud.dataproc.v1.SubmitJobRequest) returns (google.cloud.dataproc.v1.Job)\n"))
			assert.Loosely(t, out.String(), should.ContainSubstring("service google.logging.v2.ConfigServiceV2"))
			assert.Loosely(t, out.String(), should.NotContainSubstring("enum "))
		})

		t.Run("describe one service as JSON", func(t *ftt.Test) {
			assert.Loosely(t, Main(p, []string{"describe", "-json", jobcontroller.ServiceName}), should.BeZero)
			var got struct {
				Services []serviceDesc `json:"services"`
				Enums    []enumDesc    `json:"enums"`
			}
			assert.Loosely(t, json.Unmarshal(out.Bytes(), &got), should.BeNil)
			assert.Loosely(t, got.Services, should.HaveLength(1))
			assert.Loosely(t, got.Services[0].Methods, should.HaveLength(6))
			assert.Loosely(t, got.Enums, should.HaveLength(len(jobs.Enums())))
		})

		t.Run("describe unknown service", func(t *ftt.Test) {
			assert.Loosely(t, Main(p, []string{"describe", "no.such.Service"}), should.Equal(1))
			assert.Loosely(t, log.String(), should.ContainSubstring(`unknown service "no.such.Service"`))
		})

		t.Run("lint", func(t *ftt.Test) {
			assert.Loosely(t, Main(p, []string{"lint"}), should.BeZero)
			assert.Loosely(t, out.String(), should.Equal("2 services OK\n"))
		})
	})
}
