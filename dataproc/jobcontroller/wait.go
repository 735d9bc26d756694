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

package jobcontroller

import (
	"context"
	"time"

	"cloud.google.com/go/dataproc/v2/apiv1/dataprocpb"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc"

	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/common/retry"
	"go.chromium.org/luci/common/retry/transient"
	"go.chromium.org/luci/grpc/grpcutil"

	"github.com/cloudapis-go/cloudapis/dataproc/jobs"
)

// WaitTimerTag tags the timers Wait sleeps on between polls.
const WaitTimerTag = "jobcontroller-wait"

// DefaultPollBackoff paces polls when WaitOptions.Backoff is unset.
var DefaultPollBackoff = gax.Backoff{
	Initial:    time.Second,
	Max:        30 * time.Second,
	Multiplier: 1.5,
}

// WaitOptions configure Wait.
type WaitOptions struct {
	// Backoff paces polls. Zero value means DefaultPollBackoff.
	Backoff gax.Backoff
	// Retry is the retry policy for transient GetJob failures. Nil means
	// retry.Default.
	Retry retry.Factory
	// OnChange, if set, is called with the job every time its state changes.
	OnChange func(*dataprocpb.Job)
	// CallOptions are passed to every GetJob call.
	CallOptions []grpc.CallOption
}

// Wait polls GetJob until the job reaches a terminal state and returns the
// final job.
//
// Transient RPC errors are retried. Wait gives up when ctx is done, returning
// the context error annotated with the last known state.
func Wait(ctx context.Context, c Client, req *dataprocpb.GetJobRequest, opts WaitOptions) (*dataprocpb.Job, error) {
	bo := opts.Backoff
	if bo == (gax.Backoff{}) {
		bo = DefaultPollBackoff
	}
	policy := opts.Retry
	if policy == nil {
		policy = retry.Default
	}

	last := dataprocpb.JobStatus_State(-1)
	for {
		var job *dataprocpb.Job
		err := retry.Retry(ctx, transient.Only(policy), func() (err error) {
			job, err = c.GetJob(ctx, req, opts.CallOptions...)
			return grpcutil.WrapIfTransient(err)
		}, retry.LogCallback(ctx, "GetJob"))
		if err != nil {
			return nil, errors.Annotate(err, "polling job %q", req.GetJobId()).Err()
		}

		state := job.GetStatus().GetState()
		if state != last {
			logging.Infof(ctx, "Job %q is %s", req.GetJobId(), state)
			if d := job.GetStatus().GetDetails(); d != "" {
				logging.Debugf(ctx, "Job %q details: %s", req.GetJobId(), d)
			}
			last = state
			if opts.OnChange != nil {
				opts.OnChange(job)
			}
		}
		if jobs.State(state).Terminal() {
			return job, nil
		}

		if tr := <-clock.After(clock.Tag(ctx, WaitTimerTag), bo.Pause()); tr.Incomplete() {
			return nil, errors.Annotate(tr.Err, "waiting for job %q (last state %s)", req.GetJobId(), state).Err()
		}
	}
}
