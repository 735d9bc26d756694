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
	"context"
	"strings"

	"cloud.google.com/go/dataproc/v2/apiv1/dataprocpb"
	"github.com/google/uuid"
	"github.com/maruel/subcommands"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/api/iterator"

	"go.chromium.org/luci/common/data/stringset"
	"go.chromium.org/luci/common/data/text"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/flag/stringlistflag"
	"go.chromium.org/luci/common/flag/stringmapflag"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/config/validation"

	"github.com/cloudapis-go/cloudapis/dataproc/jobcontroller"
	"github.com/cloudapis-go/cloudapis/dataproc/jobs"
)

// maxParallelRPCs bounds concurrent RPCs of commands taking several job IDs.
const maxParallelRPCs = 8

// fanOutQPS limits the rate at which commands taking several job IDs start
// RPCs. Dataproc quotas are per project and per region.
const fanOutQPS = 10

// jobRun is the base of all jobs-* subcommands.
type jobRun struct {
	baseCommandRun
}

func (r *jobRun) registerJobFlags(p Params) {
	r.RegisterGlobalFlags(p, dataprocAPI)
}

func (r *jobRun) client(ctx context.Context) (jobcontroller.Client, func(), error) {
	conn, closer, err := r.dial(ctx)
	if err != nil {
		return nil, nil, err
	}
	return jobcontroller.NewClient(conn), closer, nil
}

func (r *jobRun) getRequest(jobID string) *dataprocpb.GetJobRequest {
	return (&jobs.GetRequest{ProjectID: r.project, Region: r.region, JobID: jobID}).ToProto()
}

// checkJobIDs validates positional job ID arguments.
func checkJobIDs(ctx context.Context, ids []string) error {
	if err := checkArgs(ids, 1, -1); err != nil {
		return err
	}
	return validationError(ctx, func(vctx *validation.Context) {
		for _, id := range ids {
			jobs.ValidateJobID(vctx, id)
		}
	})
}

// forEachJob calls cb for every job ID concurrently and returns the results
// in the order of ids.
func forEachJob(ctx context.Context, ids []string, cb func(ctx context.Context, id string) (*dataprocpb.Job, error)) ([]*dataprocpb.Job, error) {
	out := make([]*dataprocpb.Job, len(ids))
	errs := make(errors.MultiError, len(ids))
	limiter := rate.NewLimiter(fanOutQPS, maxParallelRPCs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRPCs)
	for i, id := range ids {
		g.Go(func() error {
			if errs[i] = limiter.Wait(gctx); errs[i] == nil {
				out[i], errs[i] = cb(gctx, id)
			}
			return nil
		})
	}
	g.Wait()
	var merr errors.MultiError
	for _, err := range errs {
		if err != nil {
			merr = append(merr, err)
		}
	}
	return out, merr.AsError()
}

// waitFlags are flags of commands that can wait for jobs to finish.
type waitFlags struct {
	wait bool
}

// appendErr adds err to merr, flattening a MultiError. Nil errors are skipped.
func appendErr(merr errors.MultiError, err error) errors.MultiError {
	switch e := err.(type) {
	case nil:
		return merr
	case errors.MultiError:
		return append(merr, e...)
	default:
		return append(merr, err)
	}
}

// waitAll waits for every job and prints the final jobs. It returns an error
// if any job finished in a state other than the wanted one.
func (r *jobRun) waitAll(ctx context.Context, c jobcontroller.Client, ids []string, want jobs.State) error {
	final, err := forEachJob(ctx, ids, func(ctx context.Context, id string) (*dataprocpb.Job, error) {
		return jobcontroller.Wait(ctx, c, r.getRequest(id), jobcontroller.WaitOptions{})
	})
	pr := newPrinter(r.out(), r.json)
	var failed errors.MultiError
	for i, job := range final {
		if job == nil {
			continue
		}
		pr.Job(job)
		if st := job.GetStatus(); jobs.State(st.GetState()) != want {
			failed = append(failed, errors.Reason("job %q finished in state %s: %s",
				ids[i], jobs.State(st.GetState()), st.GetDetails()).Err())
		}
	}
	merr := appendErr(appendErr(nil, err), pr.err)
	return append(merr, failed...).AsError()
}

////////////////////////////////////////////////////////////////////////////////

func cmdJobsSubmit(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `jobs-submit [flags] KIND [-- ARGS...]`,
		ShortDesc: "submits a Dataproc job",
		LongDesc: text.Doc(`
			Submits a job to a Dataproc cluster.

			KIND is one of hadoop, spark, pyspark, hive, pig or spark-sql.
			ARGS are passed to the driver of hadoop, spark and pyspark jobs.

			Hadoop and Spark jobs need exactly one of -class and -jar. PySpark
			jobs need -py. Query jobs need either -query or -query-file.

			Submissions are idempotent: retrying with the same -request-id
			returns the job created by the first attempt.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &jobsSubmitRun{}
			r.registerJobFlags(p)
			r.registerSubmitFlags()
			return r
		},
	}
}

type jobsSubmitRun struct {
	jobRun
	waitFlags

	cluster       string
	clusterLabels stringmapflag.Value
	jobID         string
	requestID     string
	labels        stringmapflag.Value
	maxFailures   int

	mainClass         string
	mainJar           string
	mainPy            string
	jars              stringlistflag.Flag
	files             stringlistflag.Flag
	archives          stringlistflag.Flag
	pyFiles           stringlistflag.Flag
	properties        stringmapflag.Value
	logLevels         stringlistflag.Flag
	queries           stringlistflag.Flag
	queryFile         string
	vars              stringmapflag.Value
	continueOnFailure bool

	dryRun bool
}

func (r *jobsSubmitRun) registerSubmitFlags() {
	r.Flags.StringVar(&r.cluster, "cluster", "", "Name of the cluster to run the job on. Required.")
	r.Flags.Var(&r.clusterLabels, "cluster-label", text.Doc(`
		Only run on a cluster with this label, as key=value. Can be specified
		multiple times.
	`))
	r.Flags.StringVar(&r.jobID, "id", "", "Job ID. Generated by the service if empty.")
	r.Flags.StringVar(&r.requestID, "request-id", "", text.Doc(`
		Idempotency key of the submission. A random UUID by default.
	`))
	r.Flags.Var(&r.labels, "label", text.Doc(`
		A job label as key=value. Can be specified multiple times.
	`))
	r.Flags.IntVar(&r.maxFailures, "max-failures-per-hour", 0, text.Doc(`
		How many times per hour the driver may be restarted after failing.
		At most 10.
	`))

	r.Flags.StringVar(&r.mainClass, "class", "", "Main class of a hadoop or spark job.")
	r.Flags.StringVar(&r.mainJar, "jar", "", "HCFS URI of the main jar of a hadoop or spark job.")
	r.Flags.StringVar(&r.mainPy, "py", "", "HCFS URI of the main .py file of a pyspark job.")
	r.Flags.Var(&r.jars, "jars", "HCFS URI of a jar to add to the CLASSPATH. Can be specified multiple times.")
	r.Flags.Var(&r.files, "files", "HCFS URI of a file to copy to the working directory. Can be specified multiple times.")
	r.Flags.Var(&r.archives, "archives", "HCFS URI of an archive to extract. Can be specified multiple times.")
	r.Flags.Var(&r.pyFiles, "py-files", "HCFS URI of a Python file for a pyspark job. Can be specified multiple times.")
	r.Flags.Var(&r.properties, "property", "A job property as key=value. Can be specified multiple times.")
	r.Flags.Var(&r.logLevels, "driver-log-level", text.Doc(`
		A driver log level as package=LEVEL, e.g. root=WARN. Can be specified
		multiple times.
	`))
	r.Flags.Var(&r.queries, "query", "A query of a hive, pig or spark-sql job. Can be specified multiple times.")
	r.Flags.StringVar(&r.queryFile, "query-file", "", "HCFS URI of a query script.")
	r.Flags.Var(&r.vars, "var", "A script variable as name=value. Can be specified multiple times.")
	r.Flags.BoolVar(&r.continueOnFailure, "continue-on-failure", false, "Keep running queries after one fails.")

	r.Flags.BoolVar(&r.wait, "wait", false, "Wait for the job to finish.")
	r.Flags.BoolVar(&r.dryRun, "dry-run", false, "Print the request instead of sending it.")
}

func (r *jobsSubmitRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

func (r *jobsSubmitRun) queryList() *jobs.QueryList {
	if len(r.queries) == 0 {
		return nil
	}
	return &jobs.QueryList{Queries: r.queries}
}

// variant builds the engine-specific part of the job.
func (r *jobsSubmitRun) variant(kind jobs.VariantKind, args []string) (jobs.Variant, error) {
	var logCfg *jobs.LoggingConfig
	if len(r.logLevels) > 0 {
		var err error
		if logCfg, err = jobs.ParseLoggingConfig(r.logLevels); err != nil {
			return nil, userError{err}
		}
	}
	query := kind == jobs.KindHive || kind == jobs.KindPig || kind == jobs.KindSparkSQL
	if query && len(args) > 0 {
		return nil, newUserError("%s jobs take no arguments", kind)
	}

	switch kind {
	case jobs.KindHadoop:
		return &jobs.HadoopJob{
			MainJarFileURI: r.mainJar,
			MainClass:      r.mainClass,
			Args:           args,
			JarFileURIs:    r.jars,
			FileURIs:       r.files,
			ArchiveURIs:    r.archives,
			Properties:     r.properties,
			LoggingConfig:  logCfg,
		}, nil
	case jobs.KindSpark:
		return &jobs.SparkJob{
			MainJarFileURI: r.mainJar,
			MainClass:      r.mainClass,
			Args:           args,
			JarFileURIs:    r.jars,
			FileURIs:       r.files,
			ArchiveURIs:    r.archives,
			Properties:     r.properties,
			LoggingConfig:  logCfg,
		}, nil
	case jobs.KindPySpark:
		return &jobs.PySparkJob{
			MainPythonFileURI: r.mainPy,
			Args:              args,
			PythonFileURIs:    r.pyFiles,
			JarFileURIs:       r.jars,
			FileURIs:          r.files,
			ArchiveURIs:       r.archives,
			Properties:        r.properties,
			LoggingConfig:     logCfg,
		}, nil
	case jobs.KindHive:
		if logCfg != nil {
			return nil, newUserError("hive jobs take no -driver-log-level")
		}
		return &jobs.HiveJob{
			QueryFileURI:      r.queryFile,
			QueryList:         r.queryList(),
			ContinueOnFailure: r.continueOnFailure,
			ScriptVariables:   r.vars,
			Properties:        r.properties,
			JarFileURIs:       r.jars,
		}, nil
	case jobs.KindPig:
		return &jobs.PigJob{
			QueryFileURI:      r.queryFile,
			QueryList:         r.queryList(),
			ContinueOnFailure: r.continueOnFailure,
			ScriptVariables:   r.vars,
			Properties:        r.properties,
			JarFileURIs:       r.jars,
			LoggingConfig:     logCfg,
		}, nil
	case jobs.KindSparkSQL:
		return &jobs.SparkSQLJob{
			QueryFileURI:    r.queryFile,
			QueryList:       r.queryList(),
			ScriptVariables: r.vars,
			Properties:      r.properties,
			JarFileURIs:     r.jars,
			LoggingConfig:   logCfg,
		}, nil
	}
	kinds := make([]string, 0, len(jobs.Kinds()))
	for _, k := range jobs.Kinds() {
		kinds = append(kinds, string(k))
	}
	return nil, newUserError("unknown job kind %q, want one of %s", kind, strings.Join(kinds, ", "))
}

// request builds and validates the submission.
func (r *jobsSubmitRun) request(ctx context.Context, args []string) (*jobs.SubmitRequest, error) {
	if err := checkArgs(args, 1, -1); err != nil {
		return nil, err
	}
	jobArgs := args[1:]
	if len(jobArgs) > 0 && jobArgs[0] == "--" {
		jobArgs = jobArgs[1:]
	}
	v, err := r.variant(jobs.VariantKind(args[0]), jobArgs)
	if err != nil {
		return nil, err
	}
	job := &jobs.Job{
		Reference: &jobs.JobReference{ProjectID: r.project, JobID: r.jobID},
		Placement: &jobs.JobPlacement{ClusterName: r.cluster, ClusterLabels: r.clusterLabels},
		Variant:   v,
		Labels:    r.labels,
	}
	if r.maxFailures != 0 {
		job.Scheduling = &jobs.JobScheduling{MaxFailuresPerHour: int32(r.maxFailures)}
	}
	req := &jobs.SubmitRequest{
		ProjectID: r.project,
		Region:    r.region,
		Job:       job,
		RequestID: r.requestID,
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	err = validationError(ctx, func(vctx *validation.Context) {
		jobs.ValidateSubmitRequest(vctx, req)
	})
	return req, err
}

func (r *jobsSubmitRun) run(ctx context.Context, args []string) error {
	if err := r.validate(dataprocAPI); err != nil {
		return err
	}
	req, err := r.request(ctx, args)
	if err != nil {
		return err
	}
	if r.dryRun {
		pr := newPrinter(r.out(), true)
		pr.message(req.ToProto())
		return pr.err
	}

	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()

	job, err := c.SubmitJob(ctx, req.ToProto())
	if err != nil {
		return errors.Annotate(err, "submitting %s job (request %s)", args[0], req.RequestID).Err()
	}
	id := job.GetReference().GetJobId()
	logging.Infof(ctx, "Submitted job %q", id)
	if r.wait {
		return r.waitAll(ctx, c, []string{id}, jobs.StateDone)
	}
	pr := newPrinter(r.out(), r.json)
	pr.Job(job)
	return pr.err
}

////////////////////////////////////////////////////////////////////////////////

func cmdJobsGet(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `jobs-get [flags] JOB_ID [JOB_ID...]`,
		ShortDesc: "prints Dataproc jobs",
		LongDesc:  "Prints Dataproc jobs.",
		CommandRun: func() subcommands.CommandRun {
			r := &jobsGetRun{}
			r.registerJobFlags(p)
			return r
		},
	}
}

type jobsGetRun struct {
	jobRun
}

func (r *jobsGetRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

func (r *jobsGetRun) run(ctx context.Context, args []string) error {
	if err := r.validate(dataprocAPI); err != nil {
		return err
	}
	if err := checkJobIDs(ctx, args); err != nil {
		return err
	}
	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()

	got, err := forEachJob(ctx, args, func(ctx context.Context, id string) (*dataprocpb.Job, error) {
		job, err := c.GetJob(ctx, r.getRequest(id))
		return job, errors.Annotate(err, "getting job %q", id).Err()
	})
	pr := newPrinter(r.out(), r.json)
	for _, job := range got {
		if job != nil {
			pr.Job(job)
		}
	}
	if err != nil {
		return err
	}
	return pr.err
}

////////////////////////////////////////////////////////////////////////////////

func cmdJobsList(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `jobs-list [flags]`,
		ShortDesc: "lists Dataproc jobs",
		LongDesc: text.Doc(`
			Lists Dataproc jobs in a region.

			-state and -label are combined into a filter; -filter replaces
			them. A filter looks like
			"status.state = ACTIVE AND labels.env = staging AND labels.team = *".
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &jobsListRun{}
			r.registerJobFlags(p)
			r.Flags.StringVar(&r.cluster, "cluster", "", "Only list jobs of this cluster.")
			r.Flags.StringVar(&r.state, "state", "ALL", "ALL, ACTIVE or NON_ACTIVE.")
			r.Flags.Var(&r.labels, "label", text.Doc(`
				Only list jobs with this label, as key=value. key=* matches any
				value. Can be specified multiple times.
			`))
			r.Flags.StringVar(&r.filter, "filter", "", "Raw list filter.")
			r.Flags.IntVar(&r.pageSize, "page-size", 0, "Number of jobs to fetch per request.")
			r.Flags.IntVar(&r.limit, "n", 0, "Maximum number of jobs to print. 0 means no limit.")
			return r
		},
	}
}

type jobsListRun struct {
	jobRun
	cluster  string
	state    string
	labels   stringmapflag.Value
	filter   string
	pageSize int
	limit    int
}

func (r *jobsListRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

func (r *jobsListRun) request(ctx context.Context) (*jobs.ListRequest, error) {
	matcher, err := jobs.ParseStateMatcher(strings.ToUpper(r.state))
	if err != nil {
		return nil, userError{err}
	}
	if r.filter != "" && (len(r.labels) > 0 || matcher != jobs.MatchAll) {
		return nil, newUserError("-filter cannot be combined with -state or -label")
	}
	if r.pageSize < 0 || r.limit < 0 {
		return nil, newUserError("-page-size and -n must be non-negative")
	}
	req := &jobs.ListRequest{
		ProjectID:    r.project,
		Region:       r.region,
		PageSize:     int32(r.pageSize),
		ClusterName:  r.cluster,
		StateMatcher: matcher,
		Filter:       r.filter,
	}
	if len(r.labels) > 0 {
		req.Filter = jobs.LabelsFilter(r.labels).WithState(matcher).String()
	}
	err = validationError(ctx, func(vctx *validation.Context) {
		jobs.ValidateListRequest(vctx, req)
	})
	return req, err
}

func (r *jobsListRun) run(ctx context.Context, args []string) error {
	if err := r.validate(dataprocAPI); err != nil {
		return err
	}
	if err := checkArgs(args, 0, 0); err != nil {
		return err
	}
	req, err := r.request(ctx)
	if err != nil {
		return err
	}
	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()

	it := jobcontroller.ListAllJobs(ctx, c, req.ToProto())
	var list []*dataprocpb.Job
	for r.limit == 0 || len(list) < r.limit {
		job, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}
		list = append(list, job)
	}
	logging.Debugf(ctx, "Fetched %s", plural(len(list), "job"))

	pr := newPrinter(r.out(), r.json)
	pr.Jobs(list)
	return pr.err
}

////////////////////////////////////////////////////////////////////////////////

func cmdJobsUpdate(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `jobs-update [flags] JOB_ID`,
		ShortDesc: "updates labels of a Dataproc job",
		LongDesc: text.Doc(`
			Updates labels of a Dataproc job. Labels are the only mutable part
			of a job.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &jobsUpdateRun{}
			r.registerJobFlags(p)
			r.Flags.Var(&r.set, "label", text.Doc(`
				A label to set, as key=value. Can be specified multiple times.
			`))
			r.Flags.Var(&r.remove, "remove-label", text.Doc(`
				A label key to remove. Can be specified multiple times.
			`))
			r.Flags.BoolVar(&r.clear, "clear-labels", false, "Remove all labels before applying -label.")
			return r
		},
	}
}

type jobsUpdateRun struct {
	jobRun
	set    stringmapflag.Value
	remove stringlistflag.Flag
	clear  bool
}

func (r *jobsUpdateRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

// newLabels returns the labels the job should have after the update.
func (r *jobsUpdateRun) newLabels(cur map[string]string) map[string]string {
	out := make(map[string]string, len(cur)+len(r.set))
	if !r.clear {
		for k, v := range cur {
			out[k] = v
		}
	}
	removed := stringset.NewFromSlice(r.remove...)
	for k := range out {
		if removed.Has(k) {
			delete(out, k)
		}
	}
	for k, v := range r.set {
		out[k] = v
	}
	return out
}

func (r *jobsUpdateRun) run(ctx context.Context, args []string) error {
	if err := r.validate(dataprocAPI); err != nil {
		return err
	}
	if err := checkJobIDs(ctx, args); err != nil {
		return err
	}
	if err := checkArgs(args, 1, 1); err != nil {
		return err
	}
	if len(r.set) == 0 && len(r.remove) == 0 && !r.clear {
		return newUserError("nothing to update")
	}
	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()

	id := args[0]
	cur, err := c.GetJob(ctx, r.getRequest(id))
	if err != nil {
		return errors.Annotate(err, "getting job %q", id).Err()
	}
	req := &jobs.UpdateRequest{
		ProjectID:  r.project,
		Region:     r.region,
		JobID:      id,
		Job:        &jobs.Job{Labels: r.newLabels(cur.Labels)},
		UpdateMask: []string{"labels"},
	}
	err = validationError(ctx, func(vctx *validation.Context) {
		jobs.ValidateUpdateRequest(vctx, req)
	})
	if err != nil {
		return err
	}
	job, err := c.UpdateJob(ctx, req.ToProto())
	if err != nil {
		return errors.Annotate(err, "updating job %q", id).Err()
	}
	pr := newPrinter(r.out(), r.json)
	pr.Job(job)
	return pr.err
}

////////////////////////////////////////////////////////////////////////////////

func cmdJobsCancel(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `jobs-cancel [flags] JOB_ID [JOB_ID...]`,
		ShortDesc: "cancels Dataproc jobs",
		LongDesc: text.Doc(`
			Starts cancellation of Dataproc jobs. Cancellation is asynchronous;
			use -wait to wait until the jobs stop.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &jobsCancelRun{}
			r.registerJobFlags(p)
			r.Flags.BoolVar(&r.wait, "wait", false, "Wait for the jobs to stop.")
			return r
		},
	}
}

type jobsCancelRun struct {
	jobRun
	waitFlags
}

func (r *jobsCancelRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

func (r *jobsCancelRun) run(ctx context.Context, args []string) error {
	if err := r.validate(dataprocAPI); err != nil {
		return err
	}
	if err := checkJobIDs(ctx, args); err != nil {
		return err
	}
	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()

	got, err := forEachJob(ctx, args, func(ctx context.Context, id string) (*dataprocpb.Job, error) {
		req := (&jobs.CancelRequest{ProjectID: r.project, Region: r.region, JobID: id}).ToProto()
		job, err := c.CancelJob(ctx, req)
		if err != nil {
			return nil, errors.Annotate(err, "cancelling job %q", id).Err()
		}
		logging.Infof(ctx, "Job %q is %s", id, jobs.State(job.GetStatus().GetState()))
		return job, nil
	})

	var cancelled []string
	var ok []*dataprocpb.Job
	for i, job := range got {
		if job != nil {
			cancelled = append(cancelled, args[i])
			ok = append(ok, job)
		}
	}
	merr := appendErr(nil, err)
	switch {
	case len(ok) == 0:
	case r.wait:
		merr = appendErr(merr, r.waitAll(ctx, c, cancelled, jobs.StateCancelled))
	default:
		pr := newPrinter(r.out(), r.json)
		pr.Jobs(ok)
		merr = appendErr(merr, pr.err)
	}
	return merr.AsError()
}

////////////////////////////////////////////////////////////////////////////////

func cmdJobsDelete(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `jobs-delete [flags] JOB_ID [JOB_ID...]`,
		ShortDesc: "deletes Dataproc jobs",
		LongDesc: text.Doc(`
			Deletes finished Dataproc jobs. Active jobs must be cancelled first.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &jobsDeleteRun{}
			r.registerJobFlags(p)
			return r
		},
	}
}

type jobsDeleteRun struct {
	jobRun
}

func (r *jobsDeleteRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

func (r *jobsDeleteRun) run(ctx context.Context, args []string) error {
	if err := r.validate(dataprocAPI); err != nil {
		return err
	}
	if err := checkJobIDs(ctx, args); err != nil {
		return err
	}
	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()

	_, err = forEachJob(ctx, args, func(ctx context.Context, id string) (*dataprocpb.Job, error) {
		req := (&jobs.DeleteRequest{ProjectID: r.project, Region: r.region, JobID: id}).ToProto()
		if _, err := c.DeleteJob(ctx, req); err != nil {
			return nil, errors.Annotate(err, "deleting job %q", id).Err()
		}
		logging.Infof(ctx, "Deleted job %q", id)
		return nil, nil
	})
	return err
}

////////////////////////////////////////////////////////////////////////////////

func cmdJobsWait(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `jobs-wait [flags] JOB_ID [JOB_ID...]`,
		ShortDesc: "waits for Dataproc jobs to finish",
		LongDesc: text.Doc(`
			Waits for Dataproc jobs to finish and prints them.

			Exits with a non-zero code unless all jobs finished in state DONE.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &jobsWaitRun{}
			r.registerJobFlags(p)
			return r
		},
	}
}

type jobsWaitRun struct {
	jobRun
}

func (r *jobsWaitRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

func (r *jobsWaitRun) run(ctx context.Context, args []string) error {
	if err := r.validate(dataprocAPI); err != nil {
		return err
	}
	if err := checkJobIDs(ctx, args); err != nil {
		return err
	}
	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()
	return r.waitAll(ctx, c, args, jobs.StateDone)
}
