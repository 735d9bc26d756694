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

// Package config resolves CLI defaults from the environment and an optional
// .env file.
package config

import (
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"go.chromium.org/luci/common/errors"
)

// Environment variables read by Load.
const (
	EnvProject      = "CLOUDAPIS_PROJECT"
	EnvRegion       = "CLOUDAPIS_REGION"
	EnvLoggingHost  = "CLOUDAPIS_LOGGING_HOST"
	EnvDataprocHost = "CLOUDAPIS_DATAPROC_HOST"
	EnvTransport    = "CLOUDAPIS_TRANSPORT"
)

// EnvFile names the .env file to read instead of DefaultEnvFile.
const EnvFile = "CLOUDAPIS_ENV_FILE"

// DefaultEnvFile is read by Load when no file is given. It's fine for it to
// be missing.
const DefaultEnvFile = ".env"

// DefaultLoggingHost is the Cloud Logging API endpoint.
const DefaultLoggingHost = "logging.googleapis.com:443"

// Transports are the supported RPC transports.
const (
	TransportGRPC = "grpc"
	TransportPRPC = "prpc"
)

// Defaults are values CLI flags fall back to.
type Defaults struct {
	Project     string
	Region      string
	LoggingHost string
	// DataprocHost overrides the regional Dataproc endpoint if set.
	DataprocHost string
	Transport    string
}

// DataprocHostFor returns the Dataproc endpoint serving the region.
//
// Dataproc endpoints are regional: "<region>-dataproc.googleapis.com:443".
// The "global" region and an empty region use the global endpoint.
func (d *Defaults) DataprocHostFor(region string) string {
	if d.DataprocHost != "" {
		return d.DataprocHost
	}
	if region == "" || region == "global" {
		return "dataproc.googleapis.com:443"
	}
	return region + "-dataproc.googleapis.com:443"
}

// Load reads defaults from the process environment, falling back to values
// from envFile. An empty envFile means DefaultEnvFile, which may be absent.
func Load(envFile string) (*Defaults, error) {
	return load(envFile, os.LookupEnv)
}

func load(envFile string, lookup func(string) (string, bool)) (*Defaults, error) {
	optional := envFile == ""
	if optional {
		envFile = DefaultEnvFile
	}
	fileEnv, err := godotenv.Read(envFile)
	switch {
	case errors.Is(err, fs.ErrNotExist) && optional:
		fileEnv = nil
	case err != nil:
		return nil, errors.Annotate(err, "reading %s", envFile).Err()
	}

	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		if v := fileEnv[key]; v != "" {
			return v
		}
		return def
	}
	d := &Defaults{
		Project:      get(EnvProject, ""),
		Region:       get(EnvRegion, ""),
		LoggingHost:  get(EnvLoggingHost, DefaultLoggingHost),
		DataprocHost: get(EnvDataprocHost, ""),
		Transport:    get(EnvTransport, TransportGRPC),
	}
	if err := ValidateTransport(d.Transport); err != nil {
		return nil, errors.Annotate(err, "%s", EnvTransport).Err()
	}
	return d, nil
}

// ValidateTransport checks a transport name.
func ValidateTransport(t string) error {
	switch t {
	case TransportGRPC, TransportPRPC:
		return nil
	}
	return errors.Reason("unknown transport %q, want %q or %q", t, TransportGRPC, TransportPRPC).Err()
}
