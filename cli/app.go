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

// Package cli implements the cloudapis command line client for Cloud Logging
// sinks and Cloud Dataproc jobs.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/auth"
	"go.chromium.org/luci/auth/client/authcli"
	"go.chromium.org/luci/client/versioncli"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/flag/fixflagpos"
	"go.chromium.org/luci/common/logging/gologger"

	"github.com/cloudapis-go/cloudapis/internal/config"
)

// Version is the version of the cloudapis CLI.
const Version = "0.3.0"

// Params is the parameters for the cloudapis CLI client.
type Params struct {
	Auth      auth.Options
	Defaults  config.Defaults
	UserAgent string
	// Out receives command results. Defaults to os.Stdout.
	Out io.Writer
	// Log receives log messages. Defaults to os.Stderr.
	Log io.Writer
}

func (p *Params) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stdout
}

// application creates the application and configures its subcommands.
func application(p Params) *cli.Application {
	logOut := p.Log
	if logOut == nil {
		logOut = os.Stderr
	}
	logCfg := gologger.LoggerConfig{Out: logOut}

	return &cli.Application{
		Name:  "cloudapis",
		Title: "A CLI client for Cloud Logging sinks and Cloud Dataproc jobs.",
		Context: func(ctx context.Context) context.Context {
			return logCfg.Use(ctx)
		},
		Commands: []*subcommands.Command{
			cmdSinksList(p),
			cmdSinksGet(p),
			cmdSinksCreate(p),
			cmdSinksUpdate(p),
			cmdSinksDelete(p),

			{}, // a separator
			cmdJobsSubmit(p),
			cmdJobsGet(p),
			cmdJobsList(p),
			cmdJobsUpdate(p),
			cmdJobsCancel(p),
			cmdJobsDelete(p),
			cmdJobsWait(p),

			{}, // a separator
			cmdDescribe(p),
			cmdLint(p),

			{}, // a separator
			authcli.SubcommandLogin(p.Auth, "auth-login", false),
			authcli.SubcommandLogout(p.Auth, "auth-logout", false),
			authcli.SubcommandInfo(p.Auth, "auth-info", false),

			{}, // a separator
			versioncli.CmdVersion(Version),
			subcommands.CmdHelp,
		},
	}
}

// Main is the main function of the cloudapis application.
func Main(p Params, args []string) int {
	return subcommands.Run(application(p), fixflagpos.FixSubcommands(args))
}
