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

package schemalint

import (
	"context"
	"testing"

	"google.golang.org/protobuf/reflect/protoregistry"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/common/logging/memlogger"
	"go.chromium.org/luci/common/testing/ftt"
	"go.chromium.org/luci/common/testing/truth/assert"
	"go.chromium.org/luci/common/testing/truth/should"

	"github.com/cloudapis-go/cloudapis/dataproc/jobs"
	"github.com/cloudapis-go/cloudapis/rpcdesc"
)

func TestLint(t *testing.T) {
	t.Parallel()

	ftt.Run("Lint", t, func(t *ftt.Test) {
		ctx := memlogger.Use(context.Background())
		logs := logging.Get(ctx).(*memlogger.MemLogger)

		t.Run("The shipped model is consistent", func(t *ftt.Test) {
			assert.Loosely(t, Run(ctx), should.BeNil)
		})

		t.Run("Reports renamed and unknown values", func(t *ftt.Test) {
			l := &Linter{Enums: []jobs.EnumInfo{{
				FullName: "google.cloud.dataproc.v1.JobStatus.Substate",
				Values:   map[int32]string{0: "UNSPECIFIED", 1: "SENT", 7: "LOST"},
			}}}
			err := l.Run(ctx)
			merr, ok := err.(errors.MultiError)
			assert.Loosely(t, ok, should.BeTrue)
			assert.Loosely(t, merr, should.HaveLength(2))
			assert.Loosely(t, merr[0], should.ErrLike("value 1 is SENT in the model, SUBMITTED in the descriptor"))
			assert.Loosely(t, merr[1], should.ErrLike("value 7 (LOST) is not declared"))

			var warned bool
			for _, m := range logs.Messages() {
				if m.Level == logging.Warning {
					warned = true
				}
			}
			assert.Loosely(t, warned, should.BeTrue)
		})

		t.Run("Reports gaps in job states", func(t *ftt.Test) {
			values := map[int32]string{}
			for n, name := range jobs.Enums()[0].Values {
				values[n] = name
			}
			delete(values, 4)
			l := &Linter{Enums: []jobs.EnumInfo{{FullName: "google.cloud.dataproc.v1.JobStatus.State", Values: values}}}
			err := l.Run(ctx)
			assert.Loosely(t, err, should.ErrLike("9 values, want 10"))
			assert.Loosely(t, err.(errors.MultiError), should.HaveLength(2))
		})

		t.Run("Reports missing descriptors", func(t *ftt.Test) {
			l := &Linter{
				Files:    &protoregistry.Files{},
				Enums:    jobs.Enums()[:1],
				Services: []*rpcdesc.Service{rpcdesc.Services()[0]},
			}
			merr := l.Run(ctx).(errors.MultiError)
			assert.Loosely(t, merr, should.HaveLength(3))
			assert.Loosely(t, merr[0], should.ErrLike("enum google.cloud.dataproc.v1.JobStatus.State"))
			assert.Loosely(t, merr[1], should.ErrLike("message google.cloud.dataproc.v1.Job"))
			assert.Loosely(t, merr[2], should.ErrLike("looking up"))
		})
	})
}
