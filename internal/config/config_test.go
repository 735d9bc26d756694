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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.chromium.org/luci/common/testing/ftt"
	"go.chromium.org/luci/common/testing/truth/assert"
	"go.chromium.org/luci/common/testing/truth/should"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	ftt.Run("Load", t, func(t *ftt.Test) {
		dir := t.TempDir()
		envFile := filepath.Join(dir, "test.env")
		assert.Loosely(t, os.WriteFile(envFile, []byte(
			"CLOUDAPIS_PROJECT=file-project\n"+
				"CLOUDAPIS_REGION=europe-west1\n"+
				"# comment\n"+
				"CLOUDAPIS_TRANSPORT=prpc\n"), 0600), should.BeNil)

		env := map[string]string{}
		lookup := func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		}

		t.Run("File values", func(t *ftt.Test) {
			d, err := load(envFile, lookup)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, d, should.Match(&Defaults{
				Project:     "file-project",
				Region:      "europe-west1",
				LoggingHost: DefaultLoggingHost,
				Transport:   TransportPRPC,
			}))
			assert.Loosely(t, d.DataprocHostFor(d.Region), should.Equal("europe-west1-dataproc.googleapis.com:443"))
		})

		t.Run("Environment wins", func(t *ftt.Test) {
			env[EnvProject] = "env-project"
			env[EnvDataprocHost] = "localhost:8080"
			d, err := load(envFile, lookup)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, d.Project, should.Equal("env-project"))
			assert.Loosely(t, d.DataprocHostFor("us-east1"), should.Equal("localhost:8080"))
		})

		t.Run("Missing default file is fine", func(t *ftt.Test) {
			d, err := load("", func(string) (string, bool) { return "", false })
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, d.Transport, should.Equal(TransportGRPC))
			assert.Loosely(t, d.DataprocHostFor(""), should.Equal("dataproc.googleapis.com:443"))
			assert.Loosely(t, d.DataprocHostFor("global"), should.Equal("dataproc.googleapis.com:443"))
		})

		t.Run("Missing explicit file is not", func(t *ftt.Test) {
			_, err := load(filepath.Join(dir, "nope.env"), lookup)
			assert.Loosely(t, err, should.ErrLike("reading"))
		})

		t.Run("Bad transport", func(t *ftt.Test) {
			env[EnvTransport] = "carrier-pigeon"
			_, err := load(envFile, lookup)
			assert.Loosely(t, err, should.ErrLike(`unknown transport "carrier-pigeon"`))
		})
	})
}
