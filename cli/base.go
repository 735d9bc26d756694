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
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/maruel/subcommands"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/api/option"
	gtransport "google.golang.org/api/transport/grpc"
	"google.golang.org/grpc"

	"go.chromium.org/luci/auth"
	"go.chromium.org/luci/auth/client/authcli"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/data/text"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/lhttp"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/grpc/grpcmon"
	"go.chromium.org/luci/grpc/prpc"

	"github.com/cloudapis-go/cloudapis/internal/config"
	"github.com/cloudapis-go/cloudapis/internal/rpcerr"
)

// CloudPlatformScope is the OAuth scope needed by the Logging and Dataproc
// APIs.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

type userError struct {
	error
}

// newUserError marks errors caused by bad command line input.
func newUserError(format string, args ...any) error {
	return userError{errors.Reason(format, args...).Err()}
}

// api selects which service a command talks to.
type api int

const (
	loggingAPI api = iota
	dataprocAPI
)

type baseCommandRun struct {
	subcommands.CommandRunBase

	params    Params
	logCfg    logging.Config
	authFlags authcli.Flags

	host      string
	transport string
	adc       bool
	json      bool
	project   string
	region    string
}

func (r *baseCommandRun) RegisterGlobalFlags(p Params, which api) {
	r.params = p
	r.logCfg = logging.Config{Level: logging.Info}
	r.logCfg.AddFlags(&r.Flags)
	r.authFlags.Register(&r.Flags, p.Auth)

	d := p.Defaults
	r.Flags.StringVar(&r.project, "project", d.Project, text.Doc(`
		Cloud project ID. Defaults to $CLOUDAPIS_PROJECT.
	`))
	host := d.LoggingHost
	if which == dataprocAPI {
		r.Flags.StringVar(&r.region, "region", d.Region, text.Doc(`
			Dataproc region, e.g. us-central1. Defaults to $CLOUDAPIS_REGION.
		`))
		host = ""
	}
	r.Flags.StringVar(&r.host, "host", host, text.Doc(`
		Host of the service. Defaults to the production endpoint; Dataproc
		endpoints are regional.
	`))
	r.Flags.StringVar(&r.transport, "transport", d.Transport, text.Doc(`
		RPC transport: "grpc" or "prpc". pRPC is only spoken by LUCI-based
		emulators.
	`))
	r.Flags.BoolVar(&r.adc, "adc", false, text.Doc(`
		Use Application Default Credentials instead of the LUCI auth flags.
		Only applies to the gRPC transport.
	`))
	r.Flags.BoolVar(&r.json, "json", false, "Print results as JSON.")
}

// validate checks the common flags. Must be called first in Run.
func (r *baseCommandRun) validate(which api) error {
	if which == dataprocAPI {
		if r.project == "" {
			return newUserError("-project is required")
		}
		if r.region == "" {
			return newUserError("-region is required")
		}
		if r.host == "" {
			r.host = r.params.Defaults.DataprocHostFor(r.region)
		}
	}
	if r.host == "" || strings.ContainsRune(r.host, '/') {
		return newUserError("invalid host %q", r.host)
	}
	if err := config.ValidateTransport(r.transport); err != nil {
		return userError{err}
	}
	return nil
}

func (r *baseCommandRun) context(a subcommands.Application, env subcommands.Env) context.Context {
	return r.logCfg.Set(cli.GetContext(a, r, env))
}

func (r *baseCommandRun) authenticator(ctx context.Context) (*auth.Authenticator, error) {
	opts, err := r.authFlags.Options()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(opts.Scopes, CloudPlatformScope) {
		opts.Scopes = append(opts.Scopes, CloudPlatformScope)
	}
	return auth.NewAuthenticator(ctx, auth.SilentLogin, opts), nil
}

// dial connects to the selected host with the selected transport.
//
// Local hosts are assumed to be emulators: they are reached over plaintext
// without credentials.
func (r *baseCommandRun) dial(ctx context.Context) (grpc.ClientConnInterface, func(), error) {
	local := lhttp.IsLocalHost(r.host)
	if r.transport == config.TransportPRPC {
		httpClient := http.DefaultClient
		if !local {
			a, err := r.authenticator(ctx)
			if err != nil {
				return nil, nil, err
			}
			if httpClient, err = a.Client(); err != nil {
				return nil, nil, err
			}
		}
		opts := prpc.DefaultOptions()
		opts.Insecure = local
		if r.params.UserAgent != "" {
			opts.UserAgent = r.params.UserAgent
		}
		return &prpc.Client{C: httpClient, Host: r.host, Options: opts}, func() {}, nil
	}

	opts := []option.ClientOption{
		option.WithEndpoint(r.host),
		option.WithUserAgent(r.params.UserAgent),
		option.WithGRPCDialOption(grpc.WithStatsHandler(&grpcmon.ClientRPCStatsMonitor{})),
		option.WithGRPCDialOption(grpc.WithStatsHandler(otelgrpc.NewClientHandler())),
	}
	var conn *grpc.ClientConn
	var err error
	switch {
	case local:
		conn, err = gtransport.DialInsecure(ctx, append(opts, option.WithoutAuthentication())...)
	case r.adc:
		conn, err = gtransport.Dial(ctx, append(opts, option.WithScopes(CloudPlatformScope))...)
	default:
		a, aerr := r.authenticator(ctx)
		if aerr != nil {
			return nil, nil, aerr
		}
		creds, cerr := a.PerRPCCredentials()
		if cerr != nil {
			return nil, nil, cerr
		}
		opts = append(opts,
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithPerRPCCredentials(creds)))
		conn, err = gtransport.Dial(ctx, opts...)
	}
	if err != nil {
		return nil, nil, errors.Annotate(err, "dialing %s", r.host).Err()
	}
	logging.Debugf(ctx, "Connected to %s over gRPC", r.host)
	return conn, func() { conn.Close() }, nil
}

func (r *baseCommandRun) out() io.Writer {
	return r.params.out()
}

// done prints the error, if any, and returns the exit code.
func (r *baseCommandRun) done(ctx context.Context, err error) int {
	return exitCode(ctx, err)
}

func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return 0
	}
	if errors.As(err, new(userError)) {
		logging.Errorf(ctx, "%s", err)
		logging.Errorf(ctx, "Run with -help for usage.")
		return 1
	}
	var merr errors.MultiError
	if !errors.As(err, &merr) {
		merr = errors.MultiError{err}
	}
	for _, err := range merr {
		logging.Errorf(ctx, "%s", err)
		for _, line := range rpcerr.Details(err) {
			logging.Errorf(ctx, "  %s", line)
		}
	}
	return 1
}

// checkArgs validates the number of positional arguments. max < 0 means no
// upper bound.
func checkArgs(args []string, min, max int) error {
	switch {
	case len(args) < min:
		return newUserError("expected at least %d positional argument(s), got %d", min, len(args))
	case max >= 0 && len(args) > max:
		return newUserError("expected at most %d positional argument(s), got %d", max, len(args))
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
