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

package jobs

import (
	"testing"

	"go.chromium.org/luci/common/testing/ftt"
	"go.chromium.org/luci/common/testing/truth/assert"
	"go.chromium.org/luci/common/testing/truth/should"
)

func TestEnums(t *testing.T) {
	t.Parallel()

	ftt.Run("State", t, func(t *ftt.Test) {
		t.Run("values are contiguous", func(t *ftt.Test) {
			for i, s := range States() {
				assert.Loosely(t, int32(s), should.Equal(int32(i)))
			}
			assert.Loosely(t, States(), should.HaveLength(10))
		})

		t.Run("String and Parse", func(t *ftt.Test) {
			assert.Loosely(t, StateCancelPending.String(), should.Equal("CANCEL_PENDING"))
			assert.Loosely(t, State(42).String(), should.Equal("google.cloud.dataproc.v1.JobStatus.State(42)"))
			for _, s := range States() {
				parsed, err := ParseState(s.String())
				assert.Loosely(t, err, should.BeNil)
				assert.Loosely(t, parsed, should.Equal(s))
			}
			_, err := ParseState("FINISHED")
			assert.Loosely(t, err, should.ErrLike(`unknown google.cloud.dataproc.v1.JobStatus.State value "FINISHED"`))
		})

		t.Run("Active and Terminal", func(t *ftt.Test) {
			active := []State{StatePending, StateRunning, StateCancelPending, StateCancelStarted, StateSetupDone, StateAttemptFailure}
			for _, s := range active {
				assert.Loosely(t, s.Active(), should.BeTrue)
				assert.Loosely(t, s.Terminal(), should.BeFalse)
			}
			for _, s := range []State{StateCancelled, StateDone, StateError} {
				assert.Loosely(t, s.Active(), should.BeFalse)
				assert.Loosely(t, s.Terminal(), should.BeTrue)
			}
			assert.Loosely(t, StateUnspecified.Active(), should.BeFalse)
			assert.Loosely(t, StateUnspecified.Terminal(), should.BeFalse)
			assert.Loosely(t, State(42).Active(), should.BeFalse)
		})
	})

	ftt.Run("StateMatcher", t, func(t *ftt.Test) {
		for _, s := range States() {
			assert.Loosely(t, MatchAll.Matches(s), should.BeTrue)
			assert.Loosely(t, MatchActive.Matches(s), should.Equal(s.Active()))
			assert.Loosely(t, MatchNonActive.Matches(s), should.Equal(s.Terminal()))
		}
		m, err := ParseStateMatcher("NON_ACTIVE")
		assert.Loosely(t, err, should.BeNil)
		assert.Loosely(t, m, should.Equal(MatchNonActive))
	})

	ftt.Run("Substate", t, func(t *ftt.Test) {
		assert.Loosely(t, Substates(), should.HaveLength(4))
		assert.Loosely(t, SubstateQueued.AppliesTo(StateRunning), should.BeTrue)
		assert.Loosely(t, SubstateQueued.AppliesTo(StatePending), should.BeFalse)
		assert.Loosely(t, SubstateStaleStatus.AppliesTo(StateDone), should.BeFalse)
		assert.Loosely(t, SubstateUnspecified.AppliesTo(StateDone), should.BeTrue)
		s, err := ParseSubstate("STALE_STATUS")
		assert.Loosely(t, err, should.BeNil)
		assert.Loosely(t, s, should.Equal(SubstateStaleStatus))
	})

	ftt.Run("Level", t, func(t *ftt.Test) {
		assert.Loosely(t, Levels(), should.HaveLength(9))
		assert.Loosely(t, LevelInfo.Enables(LevelWarn), should.BeTrue)
		assert.Loosely(t, LevelInfo.Enables(LevelInfo), should.BeTrue)
		assert.Loosely(t, LevelInfo.Enables(LevelDebug), should.BeFalse)
		assert.Loosely(t, LevelAll.Enables(LevelTrace), should.BeTrue)
		assert.Loosely(t, LevelOff.Enables(LevelFatal), should.BeFalse)
		assert.Loosely(t, LevelUnspecified.Enables(LevelInfo), should.BeTrue)
		assert.Loosely(t, LevelUnspecified.Enables(LevelDebug), should.BeFalse)
		assert.Loosely(t, LevelDebug.Enables(LevelOff), should.BeFalse)
	})

	ftt.Run("YarnState", t, func(t *ftt.Test) {
		s, err := ParseYarnState("NEW_SAVING")
		assert.Loosely(t, err, should.BeNil)
		assert.Loosely(t, s, should.Equal(YarnNewSaving))
		assert.Loosely(t, YarnKilled.String(), should.Equal("KILLED"))
	})

	ftt.Run("Enums", t, func(t *ftt.Test) {
		infos := Enums()
		assert.Loosely(t, infos, should.HaveLength(5))
		assert.Loosely(t, infos[0].FullName, should.Equal("google.cloud.dataproc.v1.JobStatus.State"))
		assert.Loosely(t, infos[0].Values[9], should.Equal("ATTEMPT_FAILURE"))
	})
}
