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
	"flag"
	"sort"
	"strings"

	"cloud.google.com/go/logging/apiv2/loggingpb"
	"github.com/maruel/subcommands"
	"google.golang.org/api/iterator"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"go.chromium.org/luci/common/data/text"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/flag/stringmapflag"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/config/validation"

	"github.com/cloudapis-go/cloudapis/logging/configsvc"
)

// sinkRun is the base of all sinks-* subcommands.
type sinkRun struct {
	baseCommandRun
	parentFlag string
	parent     configsvc.Parent
}

func (r *sinkRun) registerSinkFlags(p Params) {
	r.RegisterGlobalFlags(p, loggingAPI)
	r.Flags.StringVar(&r.parentFlag, "parent", "", text.Doc(`
		Resource owning the sinks, e.g. "organizations/123". Defaults to
		"projects/<-project>".
	`))
}

func (r *sinkRun) validateSinkFlags() error {
	if err := r.validate(loggingAPI); err != nil {
		return err
	}
	parent := r.parentFlag
	if parent == "" {
		if r.project == "" {
			return newUserError("either -project or -parent is required")
		}
		parent = "projects/" + r.project
	}
	var err error
	if r.parent, err = configsvc.ParseParent(parent); err != nil {
		return userError{err}
	}
	return nil
}

// sinkName resolves a positional argument to a full sink name. Full names are
// accepted as is.
func (r *sinkRun) sinkName(arg string) (string, error) {
	if strings.Contains(arg, "/") {
		if _, err := configsvc.ParseSinkName(arg); err != nil {
			return "", userError{err}
		}
		return arg, nil
	}
	if err := configsvc.ValidateSinkID(arg); err != nil {
		return "", userError{err}
	}
	return configsvc.SinkName(r.parent, arg), nil
}

func (r *sinkRun) client(ctx context.Context) (configsvc.Client, func(), error) {
	conn, closer, err := r.dial(ctx)
	if err != nil {
		return nil, nil, err
	}
	return configsvc.NewClient(conn), closer, nil
}

////////////////////////////////////////////////////////////////////////////////

func cmdSinksList(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `sinks-list [flags]`,
		ShortDesc: "lists log sinks",
		LongDesc: text.Doc(`
			Lists log sinks owned by a project, organization, folder or billing
			account.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &sinksListRun{}
			r.registerSinkFlags(p)
			r.Flags.IntVar(&r.pageSize, "page-size", 0, "Number of sinks to fetch per request.")
			r.Flags.IntVar(&r.limit, "n", 0, "Maximum number of sinks to print. 0 means no limit.")
			return r
		},
	}
}

type sinksListRun struct {
	sinkRun
	pageSize int
	limit    int
}

func (r *sinksListRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

func (r *sinksListRun) run(ctx context.Context, args []string) error {
	if err := r.validateSinkFlags(); err != nil {
		return err
	}
	if err := checkArgs(args, 0, 0); err != nil {
		return err
	}
	if r.pageSize < 0 || r.limit < 0 {
		return newUserError("-page-size and -n must be non-negative")
	}
	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()

	it := configsvc.ListAllSinks(ctx, c, &loggingpb.ListSinksRequest{
		Parent:   r.parent.String(),
		PageSize: int32(r.pageSize),
	})
	var sinks []*loggingpb.LogSink
	for r.limit == 0 || len(sinks) < r.limit {
		s, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}
		sinks = append(sinks, s)
	}
	logging.Debugf(ctx, "Fetched %s", plural(len(sinks), "sink"))

	pr := newPrinter(r.out(), r.json)
	pr.Sinks(sinks)
	return pr.err
}

////////////////////////////////////////////////////////////////////////////////

func cmdSinksGet(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `sinks-get [flags] SINK_ID [SINK_ID...]`,
		ShortDesc: "prints log sinks",
		LongDesc: text.Doc(`
			Prints log sinks.

			SINK_ID is either a sink ID relative to -parent or a full sink name,
			e.g. "projects/my-project/sinks/my-sink".
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &sinksGetRun{}
			r.registerSinkFlags(p)
			return r
		},
	}
}

type sinksGetRun struct {
	sinkRun
}

func (r *sinksGetRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

func (r *sinksGetRun) run(ctx context.Context, args []string) error {
	if err := r.validateSinkFlags(); err != nil {
		return err
	}
	if err := checkArgs(args, 1, -1); err != nil {
		return err
	}
	names := make([]string, len(args))
	for i, arg := range args {
		var err error
		if names[i], err = r.sinkName(arg); err != nil {
			return err
		}
	}
	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()

	pr := newPrinter(r.out(), r.json)
	for _, name := range names {
		sink, err := c.GetSink(ctx, &loggingpb.GetSinkRequest{SinkName: name})
		if err != nil {
			return errors.Annotate(err, "getting %s", name).Err()
		}
		pr.Sink(sink)
	}
	return pr.err
}

////////////////////////////////////////////////////////////////////////////////

// sinkFields are the flags describing a sink. They are shared by sinks-create
// and sinks-update.
type sinkFields struct {
	destination     string
	filter          string
	description     string
	disabled        bool
	includeChildren bool
	exclusions      stringmapflag.Value
	bigQueryTables  bool
	uniqueWriter    bool
}

// flagFields maps flag names to the sink fields they set.
var flagFields = map[string]string{
	"destination":            "destination",
	"filter":                 "filter",
	"description":            "description",
	"disabled":               "disabled",
	"include-children":       "include_children",
	"exclusion":              "exclusions",
	"use-partitioned-tables": "bigquery_options",
}

func (f *sinkFields) register(fs *flag.FlagSet) {
	fs.StringVar(&f.destination, "destination", "", text.Doc(`
		Export destination, e.g.
		"storage.googleapis.com/my-bucket" or
		"pubsub.googleapis.com/projects/my-project/topics/my-topic".
	`))
	fs.StringVar(&f.filter, "filter", "", "Logging query selecting exported entries.")
	fs.StringVar(&f.description, "description", "", "Sink description.")
	fs.BoolVar(&f.disabled, "disabled", false, "Create the sink disabled.")
	fs.BoolVar(&f.includeChildren, "include-children", false, text.Doc(`
		Export entries of child resources too. Only applies to organization
		and folder sinks.
	`))
	fs.Var(&f.exclusions, "exclusion", text.Doc(`
		An exclusion as name=filter. Can be specified multiple times.
	`))
	fs.BoolVar(&f.bigQueryTables, "use-partitioned-tables", false, text.Doc(`
		Export to date partitioned BigQuery tables.
	`))
	fs.BoolVar(&f.uniqueWriter, "unique-writer-identity", true, text.Doc(`
		Give the sink its own service account instead of the shared
		Cloud Logging identity. Cannot be changed from true to false.
	`))
}

func (f *sinkFields) sink(id string) *loggingpb.LogSink {
	s := &loggingpb.LogSink{
		Name:            id,
		Destination:     f.destination,
		Filter:          f.filter,
		Description:     f.description,
		Disabled:        f.disabled,
		IncludeChildren: f.includeChildren,
	}
	names := make([]string, 0, len(f.exclusions))
	for name := range f.exclusions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Exclusions = append(s.Exclusions, &loggingpb.LogExclusion{Name: name, Filter: f.exclusions[name]})
	}
	if f.bigQueryTables {
		s.Options = &loggingpb.LogSink_BigqueryOptions{
			BigqueryOptions: &loggingpb.BigQueryOptions{UsePartitionedTables: true},
		}
	}
	return s
}

// validationError runs a validation callback and returns its error, if any.
func validationError(ctx context.Context, cb func(*validation.Context)) error {
	vctx := &validation.Context{Context: ctx}
	cb(vctx)
	if err := vctx.Finalize(); err != nil {
		return userError{err}
	}
	return nil
}

func cmdSinksCreate(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `sinks-create [flags] SINK_ID`,
		ShortDesc: "creates a log sink",
		LongDesc: text.Doc(`
			Creates a log sink exporting entries to a Cloud Storage bucket,
			a BigQuery dataset, a Pub/Sub topic or a log bucket.

			The destination must grant write access to the sink's writer
			identity, which is printed on success.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &sinksCreateRun{}
			r.registerSinkFlags(p)
			r.fields.register(&r.Flags)
			return r
		},
	}
}

type sinksCreateRun struct {
	sinkRun
	fields sinkFields
}

func (r *sinksCreateRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

func (r *sinksCreateRun) run(ctx context.Context, args []string) error {
	if err := r.validateSinkFlags(); err != nil {
		return err
	}
	if err := checkArgs(args, 1, 1); err != nil {
		return err
	}
	req := &loggingpb.CreateSinkRequest{
		Parent:               r.parent.String(),
		Sink:                 r.fields.sink(args[0]),
		UniqueWriterIdentity: r.fields.uniqueWriter,
	}
	err := validationError(ctx, func(vctx *validation.Context) {
		configsvc.ValidateCreateRequest(vctx, req)
	})
	if err != nil {
		return err
	}

	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()

	sink, err := c.CreateSink(ctx, req)
	if err != nil {
		return errors.Annotate(err, "creating sink %q", args[0]).Err()
	}
	logging.Infof(ctx, "Created %s; grant %s write access to %s", sink.Name, sink.WriterIdentity, sink.Destination)
	pr := newPrinter(r.out(), r.json)
	pr.Sink(sink)
	return pr.err
}

////////////////////////////////////////////////////////////////////////////////

func cmdSinksUpdate(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `sinks-update [flags] SINK_ID`,
		ShortDesc: "updates a log sink",
		LongDesc: text.Doc(`
			Updates a log sink.

			Only the fields whose flags are given are changed. For example,
			"sinks-update -disabled=false my-sink" enables the sink and leaves
			everything else as is.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &sinksUpdateRun{}
			r.registerSinkFlags(p)
			r.fields.register(&r.Flags)
			return r
		},
	}
}

type sinksUpdateRun struct {
	sinkRun
	fields sinkFields
}

func (r *sinksUpdateRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

// updateMask lists the sink fields whose flags were set explicitly.
func (r *sinksUpdateRun) updateMask() *fieldmaskpb.FieldMask {
	mask := &fieldmaskpb.FieldMask{}
	r.Flags.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			mask.Paths = append(mask.Paths, field)
		}
	})
	sort.Strings(mask.Paths)
	return mask
}

func (r *sinksUpdateRun) run(ctx context.Context, args []string) error {
	if err := r.validateSinkFlags(); err != nil {
		return err
	}
	if err := checkArgs(args, 1, 1); err != nil {
		return err
	}
	name, err := r.sinkName(args[0])
	if err != nil {
		return err
	}
	mask := r.updateMask()
	if len(mask.Paths) == 0 {
		return newUserError("nothing to update")
	}

	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()

	// The service validates the whole sink, so start from the current one.
	cur, err := c.GetSink(ctx, &loggingpb.GetSinkRequest{SinkName: name})
	if err != nil {
		return errors.Annotate(err, "getting %s", name).Err()
	}
	sink := r.fields.sink(cur.Name)
	if err := configsvc.ApplyUpdate(cur, sink, mask); err != nil {
		return err
	}
	req := &loggingpb.UpdateSinkRequest{
		SinkName:             name,
		Sink:                 cur,
		UpdateMask:           mask,
		UniqueWriterIdentity: r.fields.uniqueWriter,
	}
	err = validationError(ctx, func(vctx *validation.Context) {
		configsvc.ValidateUpdateRequest(vctx, req)
	})
	if err != nil {
		return err
	}

	updated, err := c.UpdateSink(ctx, req)
	if err != nil {
		return errors.Annotate(err, "updating %s", name).Err()
	}
	logging.Infof(ctx, "Updated %s of %s", strings.Join(mask.Paths, ", "), name)
	pr := newPrinter(r.out(), r.json)
	pr.Sink(updated)
	return pr.err
}

////////////////////////////////////////////////////////////////////////////////

func cmdSinksDelete(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `sinks-delete [flags] SINK_ID [SINK_ID...]`,
		ShortDesc: "deletes log sinks",
		LongDesc: text.Doc(`
			Deletes log sinks. The writer identities of deleted sinks are
			deleted as well.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &sinksDeleteRun{}
			r.registerSinkFlags(p)
			return r
		},
	}
}

type sinksDeleteRun struct {
	sinkRun
}

func (r *sinksDeleteRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

func (r *sinksDeleteRun) run(ctx context.Context, args []string) error {
	if err := r.validateSinkFlags(); err != nil {
		return err
	}
	if err := checkArgs(args, 1, -1); err != nil {
		return err
	}
	names := make([]string, len(args))
	for i, arg := range args {
		var err error
		if names[i], err = r.sinkName(arg); err != nil {
			return err
		}
	}
	c, closer, err := r.client(ctx)
	if err != nil {
		return err
	}
	defer closer()

	var merr errors.MultiError
	for _, name := range names {
		if _, err := c.DeleteSink(ctx, &loggingpb.DeleteSinkRequest{SinkName: name}); err != nil {
			merr = append(merr, errors.Annotate(err, "deleting %s", name).Err())
			continue
		}
		logging.Infof(ctx, "Deleted %s", name)
	}
	return merr.AsError()
}
