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

// Command cloudapis manages Cloud Logging sinks and Cloud Dataproc jobs.
package main

import (
	"fmt"
	"os"

	"go.chromium.org/luci/auth"

	"github.com/cloudapis-go/cloudapis/cli"
	"github.com/cloudapis-go/cloudapis/internal/config"
)

func main() {
	defaults, err := config.Load(os.Getenv(config.EnvFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cloudapis: %s\n", err)
		os.Exit(1)
	}
	p := cli.Params{
		Auth:      auth.Options{Scopes: []string{cli.CloudPlatformScope}},
		Defaults:  *defaults,
		UserAgent: "cloudapis/" + cli.Version,
	}
	os.Exit(cli.Main(p, os.Args[1:]))
}
