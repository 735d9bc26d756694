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
	"fmt"
	"sort"

	"go.chromium.org/luci/common/errors"
)

// enumTable maps enum values to their protobuf value names.
type enumTable[E ~int32] struct {
	// fullName is the full protobuf name of the enum.
	fullName string
	names    map[E]string
}

func (t *enumTable[E]) name(v E) string {
	if n, ok := t.names[v]; ok {
		return n
	}
	return fmt.Sprintf("%s(%d)", t.fullName, int32(v))
}

func (t *enumTable[E]) parse(s string) (E, error) {
	for v, n := range t.names {
		if n == s {
			return v, nil
		}
	}
	return 0, errors.Reason("unknown %s value %q", t.fullName, s).Err()
}

func (t *enumTable[E]) values() []E {
	out := make([]E, 0, len(t.names))
	for v := range t.names {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t *enumTable[E]) info() EnumInfo {
	values := make(map[int32]string, len(t.names))
	for v, n := range t.names {
		values[int32(v)] = n
	}
	return EnumInfo{FullName: t.fullName, Values: values}
}

// EnumInfo describes one of the model's enums in protobuf terms.
type EnumInfo struct {
	// FullName is the protobuf name, e.g. "google.cloud.dataproc.v1.JobStatus.State".
	FullName string
	// Values maps numbers to value names.
	Values map[int32]string
}

// Enums describes every enum declared by the model.
func Enums() []EnumInfo {
	return []EnumInfo{
		stateTable.info(),
		substateTable.info(),
		levelTable.info(),
		matcherTable.info(),
		yarnStateTable.info(),
	}
}

// State is the overall state of a job.
//
// The lifecycle is PENDING → (SETUP_DONE) → RUNNING, then either DONE, ERROR,
// or CANCEL_PENDING → CANCEL_STARTED → CANCELLED. ATTEMPT_FAILURE is reported
// between attempts of restartable jobs.
type State int32

const (
	// StateUnspecified means the job state is unknown.
	StateUnspecified State = 0
	// StatePending means the job has been submitted, but is not yet running.
	StatePending State = 1
	// StateRunning means the job is running on the cluster.
	StateRunning State = 2
	// StateCancelPending means a CancelJob request has been received, but is
	// pending.
	StateCancelPending State = 3
	// StateCancelled means the job cancellation was successful.
	StateCancelled State = 4
	// StateDone means the job has completed successfully.
	StateDone State = 5
	// StateError means the job has completed, but encountered an error.
	StateError State = 6
	// StateCancelStarted means transient in-flight resources have been
	// canceled, and the request to cancel the running job has been issued to
	// the cluster.
	StateCancelStarted State = 7
	// StateSetupDone means the job has been received by the service and
	// completed initial setup; it will soon be submitted to the cluster.
	StateSetupDone State = 8
	// StateAttemptFailure means a job attempt has failed. The details field
	// contains failure details for this attempt. Applies to restartable jobs
	// only.
	StateAttemptFailure State = 9
)

var stateTable = enumTable[State]{
	fullName: "google.cloud.dataproc.v1.JobStatus.State",
	names: map[State]string{
		StateUnspecified:    "STATE_UNSPECIFIED",
		StatePending:        "PENDING",
		StateRunning:        "RUNNING",
		StateCancelPending:  "CANCEL_PENDING",
		StateCancelled:      "CANCELLED",
		StateDone:           "DONE",
		StateError:          "ERROR",
		StateCancelStarted:  "CANCEL_STARTED",
		StateSetupDone:      "SETUP_DONE",
		StateAttemptFailure: "ATTEMPT_FAILURE",
	},
}

func (s State) String() string { return stateTable.name(s) }

// ParseState parses a state name such as "RUNNING".
func ParseState(s string) (State, error) { return stateTable.parse(s) }

// States returns all declared states in numeric order.
func States() []State { return stateTable.values() }

// Terminal is true for states a job never leaves: CANCELLED, DONE and ERROR.
func (s State) Terminal() bool {
	switch s {
	case StateCancelled, StateDone, StateError:
		return true
	}
	return false
}

// Active is true for declared, non-terminal states.
func (s State) Active() bool {
	return s != StateUnspecified && !s.Terminal() && stateTable.names[s] != ""
}

// Substate refines the RUNNING state with agent-reported status.
type Substate int32

const (
	// SubstateUnspecified is the substate of jobs that are not running.
	SubstateUnspecified Substate = 0
	// SubstateSubmitted means the job is submitted to the agent.
	SubstateSubmitted Substate = 1
	// SubstateQueued means the job has been received and is awaiting
	// execution (it may be waiting for a condition to be met). The status
	// details hold the reason for the delay.
	SubstateQueued Substate = 2
	// SubstateStaleStatus means the agent-reported status is out of date,
	// which may be caused by a loss of communication between the agent and
	// Dataproc. If the agent does not send a timely update, the job will fail.
	SubstateStaleStatus Substate = 3
)

var substateTable = enumTable[Substate]{
	fullName: "google.cloud.dataproc.v1.JobStatus.Substate",
	names: map[Substate]string{
		SubstateUnspecified: "UNSPECIFIED",
		SubstateSubmitted:   "SUBMITTED",
		SubstateQueued:      "QUEUED",
		SubstateStaleStatus: "STALE_STATUS",
	},
}

func (s Substate) String() string { return substateTable.name(s) }

// ParseSubstate parses a substate name such as "QUEUED".
func ParseSubstate(s string) (Substate, error) { return substateTable.parse(s) }

// Substates returns all declared substates in numeric order.
func Substates() []Substate { return substateTable.values() }

// AppliesTo reports whether the substate can accompany the given state.
//
// Every specific substate applies to RUNNING only.
func (s Substate) AppliesTo(state State) bool {
	return s == SubstateUnspecified || state == StateRunning
}

// Level is a Log4j level for job execution, ordered from most to least
// verbose.
//
// When running an Apache Hive job, Dataproc configures the Hive client to an
// equivalent verbosity level.
type Level int32

const (
	// LevelUnspecified means the default level for log4j.
	LevelUnspecified Level = 0
	LevelAll         Level = 1
	LevelTrace       Level = 2
	LevelDebug       Level = 3
	LevelInfo        Level = 4
	LevelWarn        Level = 5
	LevelError       Level = 6
	LevelFatal       Level = 7
	// LevelOff turns log4j off.
	LevelOff Level = 8
)

// DefaultLevel is what LevelUnspecified means in practice.
const DefaultLevel = LevelInfo

var levelTable = enumTable[Level]{
	fullName: "google.cloud.dataproc.v1.LoggingConfig.Level",
	names: map[Level]string{
		LevelUnspecified: "LEVEL_UNSPECIFIED",
		LevelAll:         "ALL",
		LevelTrace:       "TRACE",
		LevelDebug:       "DEBUG",
		LevelInfo:        "INFO",
		LevelWarn:        "WARN",
		LevelError:       "ERROR",
		LevelFatal:       "FATAL",
		LevelOff:         "OFF",
	},
}

func (l Level) String() string { return levelTable.name(l) }

// ParseLevel parses a level name such as "DEBUG".
func ParseLevel(s string) (Level, error) { return levelTable.parse(s) }

// Levels returns all declared levels in numeric order.
func Levels() []Level { return levelTable.values() }

// Enables reports whether a logger configured at level l emits messages of
// level msg.
func (l Level) Enables(msg Level) bool {
	if l == LevelUnspecified {
		l = DefaultLevel
	}
	if l == LevelOff || msg <= LevelAll || msg >= LevelOff {
		return false
	}
	return msg >= l
}

// StateMatcher selects categories of job states in ListJobs.
type StateMatcher int32

const (
	// MatchAll matches all jobs, regardless of state.
	MatchAll StateMatcher = 0
	// MatchActive matches jobs in non-terminal states.
	MatchActive StateMatcher = 1
	// MatchNonActive matches jobs in terminal states: CANCELLED, DONE or
	// ERROR.
	MatchNonActive StateMatcher = 2
)

var matcherTable = enumTable[StateMatcher]{
	fullName: "google.cloud.dataproc.v1.ListJobsRequest.JobStateMatcher",
	names: map[StateMatcher]string{
		MatchAll:       "ALL",
		MatchActive:    "ACTIVE",
		MatchNonActive: "NON_ACTIVE",
	},
}

func (m StateMatcher) String() string { return matcherTable.name(m) }

// ParseStateMatcher parses "ALL", "ACTIVE" or "NON_ACTIVE".
func ParseStateMatcher(s string) (StateMatcher, error) { return matcherTable.parse(s) }

// Matches reports whether a job in the given state is selected.
func (m StateMatcher) Matches(s State) bool {
	switch m {
	case MatchActive:
		return s.Active()
	case MatchNonActive:
		return s.Terminal()
	default:
		return true
	}
}

// YarnState is the state of a YARN application, corresponding to
// YarnProtos.YarnApplicationStateProto.
type YarnState int32

const (
	YarnStateUnspecified YarnState = 0
	YarnNew              YarnState = 1
	YarnNewSaving        YarnState = 2
	YarnSubmitted        YarnState = 3
	YarnAccepted         YarnState = 4
	YarnRunning          YarnState = 5
	YarnFinished         YarnState = 6
	YarnFailed           YarnState = 7
	YarnKilled           YarnState = 8
)

var yarnStateTable = enumTable[YarnState]{
	fullName: "google.cloud.dataproc.v1.YarnApplication.State",
	names: map[YarnState]string{
		YarnStateUnspecified: "STATE_UNSPECIFIED",
		YarnNew:              "NEW",
		YarnNewSaving:        "NEW_SAVING",
		YarnSubmitted:        "SUBMITTED",
		YarnAccepted:         "ACCEPTED",
		YarnRunning:          "RUNNING",
		YarnFinished:         "FINISHED",
		YarnFailed:           "FAILED",
		YarnKilled:           "KILLED",
	},
}

func (s YarnState) String() string { return yarnStateTable.name(s) }

// ParseYarnState parses a YARN application state name.
func ParseYarnState(s string) (YarnState, error) { return yarnStateTable.parse(s) }
