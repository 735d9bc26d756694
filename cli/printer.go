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
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/dataproc/v2/apiv1/dataprocpb"
	"cloud.google.com/go/logging/apiv2/loggingpb"
	"github.com/dustin/go-humanize"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"go.chromium.org/luci/common/errors"

	"github.com/cloudapis-go/cloudapis/dataproc/jobs"
)

// printer writes results either as protojson or as human readable text.
type printer struct {
	w    io.Writer
	json bool
	err  error
}

func newPrinter(w io.Writer, json bool) *printer {
	return &printer{w: w, json: json}
}

func (p *printer) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *printer) message(m proto.Message) {
	if p.err != nil {
		return
	}
	buf, err := (protojson.MarshalOptions{Multiline: true, Indent: "  "}).Marshal(m)
	if err != nil {
		p.err = errors.Annotate(err, "marshaling %s", m.ProtoReflect().Descriptor().FullName()).Err()
		return
	}
	p.printf("%s\n", buf)
}

// Sink prints a single sink.
func (p *printer) Sink(s *loggingpb.LogSink) {
	if p.json {
		p.message(s)
		return
	}
	p.printf("Sink %s\n", s.Name)
	p.printf("  Destination: %s\n", s.Destination)
	if s.Filter != "" {
		p.printf("  Filter: %s\n", s.Filter)
	}
	if s.Description != "" {
		p.printf("  Description: %s\n", s.Description)
	}
	if s.Disabled {
		p.printf("  Disabled\n")
	}
	if s.IncludeChildren {
		p.printf("  Includes children\n")
	}
	for _, e := range s.Exclusions {
		p.printf("  Excludes %s: %s\n", e.Name, e.Filter)
	}
	if s.WriterIdentity != "" {
		p.printf("  Writer: %s\n", s.WriterIdentity)
	}
}

// Sinks prints a sink table, or one JSON object per sink.
func (p *printer) Sinks(sinks []*loggingpb.LogSink) {
	if p.json {
		for _, s := range sinks {
			p.message(s)
		}
		return
	}
	if len(sinks) == 0 {
		p.printf("No sinks\n")
		return
	}
	p.table(func(tw io.Writer) {
		fmt.Fprintln(tw, "NAME\tDESTINATION\tDISABLED")
		for _, s := range sinks {
			fmt.Fprintf(tw, "%s\t%s\t%t\n", s.Name, s.Destination, s.Disabled)
		}
	})
}

// Job prints a single job.
func (p *printer) Job(job *dataprocpb.Job) {
	if p.json {
		p.message(job)
		return
	}
	st := job.GetStatus()
	p.printf("Job %s\n", job.GetReference().GetJobId())
	p.printf("  Kind: %s\n", kindOf(job))
	p.printf("  Cluster: %s\n", job.GetPlacement().GetClusterName())
	p.printf("  State: %s", jobs.State(st.GetState()))
	if sub := jobs.Substate(st.GetSubstate()); sub != jobs.SubstateUnspecified {
		p.printf(" (%s)", sub)
	}
	if t := st.GetStateStartTime(); t != nil {
		p.printf(" since %s (%s)", t.AsTime().Format(time.RFC3339), humanize.Time(t.AsTime()))
	}
	p.printf("\n")
	if st.GetDetails() != "" {
		p.printf("  Details: %s\n", st.Details)
	}
	if len(job.Labels) > 0 {
		p.printf("  Labels: %s\n", formatLabels(job.Labels))
	}
	if job.DriverOutputResourceUri != "" {
		p.printf("  Driver output: %s\n", job.DriverOutputResourceUri)
	}
	for _, app := range job.YarnApplications {
		p.printf("  YARN %s: %s %.0f%%\n", app.Name, jobs.YarnState(app.State), app.Progress*100)
	}
}

// Jobs prints a job table, or one JSON object per job.
func (p *printer) Jobs(list []*dataprocpb.Job) {
	if p.json {
		for _, j := range list {
			p.message(j)
		}
		return
	}
	if len(list) == 0 {
		p.printf("No jobs\n")
		return
	}
	p.table(func(tw io.Writer) {
		fmt.Fprintln(tw, "JOB ID\tKIND\tCLUSTER\tSTATE")
		for _, j := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				j.GetReference().GetJobId(), kindOf(j), j.GetPlacement().GetClusterName(),
				jobs.State(j.GetStatus().GetState()))
		}
	})
}

func (p *printer) table(fill func(io.Writer)) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fill(tw)
	p.err = tw.Flush()
}

func kindOf(job *dataprocpb.Job) string {
	switch job.GetTypeJob().(type) {
	case *dataprocpb.Job_HadoopJob:
		return string(jobs.KindHadoop)
	case *dataprocpb.Job_SparkJob:
		return string(jobs.KindSpark)
	case *dataprocpb.Job_PysparkJob:
		return string(jobs.KindPySpark)
	case *dataprocpb.Job_HiveJob:
		return string(jobs.KindHive)
	case *dataprocpb.Job_PigJob:
		return string(jobs.KindPig)
	case *dataprocpb.Job_SparkSqlJob:
		return string(jobs.KindSparkSQL)
	case nil:
		return "none"
	default:
		return "unsupported"
	}
}

func formatLabels(labels map[string]string) string {
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
