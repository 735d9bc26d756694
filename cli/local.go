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
	"encoding/json"
	"fmt"
	"sort"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/data/text"
	"go.chromium.org/luci/common/logging"

	"github.com/cloudapis-go/cloudapis/dataproc/jobs"
	"github.com/cloudapis-go/cloudapis/internal/schemalint"
	"github.com/cloudapis-go/cloudapis/rpcdesc"
)

// localRun is the base of subcommands that make no RPCs.
type localRun struct {
	subcommands.CommandRunBase
	params Params
	logCfg logging.Config
}

func (r *localRun) registerLocalFlags(p Params) {
	r.params = p
	r.logCfg = logging.Config{Level: logging.Info}
	r.logCfg.AddFlags(&r.Flags)
}

func (r *localRun) context(a subcommands.Application, env subcommands.Env) context.Context {
	return r.logCfg.Set(cli.GetContext(a, r, env))
}

func (r *localRun) done(ctx context.Context, err error) int {
	return exitCode(ctx, err)
}

////////////////////////////////////////////////////////////////////////////////

func cmdDescribe(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `describe [flags] [SERVICE...]`,
		ShortDesc: "prints RPC tables and enums",
		LongDesc: text.Doc(`
			Prints the methods of the known RPC services with their request and
			response messages, followed by the Dataproc job enums.

			SERVICE is a full service name, e.g. google.logging.v2.ConfigServiceV2.
			All services are printed by default.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &describeRun{}
			r.registerLocalFlags(p)
			r.Flags.BoolVar(&r.json, "json", false, "Print as JSON.")
			r.Flags.BoolVar(&r.enums, "enums", true, "Print the Dataproc job enums too.")
			return r
		},
	}
}

type describeRun struct {
	localRun
	json  bool
	enums bool
}

// serviceDesc is the JSON form of a service table.
type serviceDesc struct {
	Name    string       `json:"name"`
	File    string       `json:"file"`
	Methods []methodDesc `json:"methods"`
}

type methodDesc struct {
	Name     string `json:"name"`
	Request  string `json:"request"`
	Response string `json:"response"`
}

type enumDesc struct {
	Name   string           `json:"name"`
	Values map[int32]string `json:"values"`
}

func (r *describeRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	return r.done(ctx, r.run(ctx, args))
}

func (r *describeRun) services(names []string) ([]*rpcdesc.Service, error) {
	if len(names) == 0 {
		return rpcdesc.Services(), nil
	}
	out := make([]*rpcdesc.Service, len(names))
	for i, name := range names {
		if out[i] = rpcdesc.Get(name); out[i] == nil {
			return nil, newUserError("unknown service %q", name)
		}
	}
	return out, nil
}

func describe(svc *rpcdesc.Service) serviceDesc {
	d := serviceDesc{Name: svc.Name, File: svc.File}
	for i := range svc.Methods {
		m := &svc.Methods[i]
		d.Methods = append(d.Methods, methodDesc{
			Name:     m.Name,
			Request:  string(m.RequestName()),
			Response: string(m.ResponseName()),
		})
	}
	return d
}

func (r *describeRun) run(ctx context.Context, args []string) error {
	svcs, err := r.services(args)
	if err != nil {
		return err
	}
	descs := make([]serviceDesc, len(svcs))
	for i, svc := range svcs {
		descs[i] = describe(svc)
	}
	var enums []enumDesc
	if r.enums {
		for _, e := range jobs.Enums() {
			enums = append(enums, enumDesc{Name: e.FullName, Values: e.Values})
		}
	}

	w := r.params.out()
	if r.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Services []serviceDesc `json:"services"`
			Enums    []enumDesc    `json:"enums,omitempty"`
		}{descs, enums})
	}

	pr := newPrinter(w, false)
	for _, d := range descs {
		pr.printf("service %s (%s)\n", d.Name, d.File)
		for _, m := range d.Methods {
			pr.printf("  rpc %s(%s) returns (%s)\n", m.Name, m.Request, m.Response)
		}
	}
	for _, e := range enums {
		pr.printf("enum %s\n", e.Name)
		nums := make([]int32, 0, len(e.Values))
		for n := range e.Values {
			nums = append(nums, n)
		}
		sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
		for _, n := range nums {
			pr.printf("  %s = %d\n", e.Values[n], n)
		}
	}
	return pr.err
}

////////////////////////////////////////////////////////////////////////////////

func cmdLint(p Params) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `lint [flags]`,
		ShortDesc: "checks the built-in schemas against the protobuf descriptors",
		LongDesc: text.Doc(`
			Checks the RPC tables and the Dataproc job model against the
			protobuf descriptors linked into the binary. Mismatches are
			printed and make the command fail.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &lintRun{}
			r.registerLocalFlags(p)
			return r
		},
	}
}

type lintRun struct {
	localRun
}

func (r *lintRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := r.context(a, env)
	if err := checkArgs(args, 0, 0); err != nil {
		return r.done(ctx, err)
	}
	err := schemalint.Run(ctx)
	if err == nil {
		fmt.Fprintf(r.params.out(), "%s OK\n", plural(len(schemalint.Services), "service"))
	}
	return r.done(ctx, err)
}
