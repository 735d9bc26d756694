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

// Package schemalint cross-checks the Go models and RPC tables against the
// published protobuf descriptors.
package schemalint

import (
	"context"
	"sort"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/cloudapis-go/cloudapis/dataproc/jobcontroller"
	"github.com/cloudapis-go/cloudapis/dataproc/jobs"
	"github.com/cloudapis-go/cloudapis/logging/configsvc"
	"github.com/cloudapis-go/cloudapis/rpcdesc"
)

// Services are linted by default. Listing them here also links their tables
// and descriptors into any binary that runs the lint.
var Services = []*rpcdesc.Service{&configsvc.Service, &jobcontroller.Service}

// jobMessage is the descriptor name of the Dataproc job resource.
const jobMessage = "google.cloud.dataproc.v1.Job"

// variantFields maps model variant kinds to fields of the job's type_job
// oneof.
var variantFields = map[jobs.VariantKind]protoreflect.Name{
	jobs.KindHadoop:   "hadoop_job",
	jobs.KindSpark:    "spark_job",
	jobs.KindPySpark:  "pyspark_job",
	jobs.KindHive:     "hive_job",
	jobs.KindPig:      "pig_job",
	jobs.KindSparkSQL: "spark_sql_job",
}

// Linter runs the checks against a descriptor registry.
type Linter struct {
	// Files resolves descriptors. Nil means protoregistry.GlobalFiles.
	Files *protoregistry.Files
	// Enums are the model enums to check. Nil means jobs.Enums().
	Enums []jobs.EnumInfo
	// Services are the RPC tables to check. Nil means Services.
	Services []*rpcdesc.Service
}

// Run lints with the defaults.
func Run(ctx context.Context) error {
	return (&Linter{}).Run(ctx)
}

// Run returns an errors.MultiError with one entry per finding, or nil.
func (l *Linter) Run(ctx context.Context) error {
	files := l.Files
	if files == nil {
		files = protoregistry.GlobalFiles
	}
	enums := l.Enums
	if enums == nil {
		enums = jobs.Enums()
	}
	services := l.Services
	if services == nil {
		services = Services
	}

	var merr errors.MultiError
	for _, e := range enums {
		merr = append(merr, checkEnum(ctx, files, e)...)
	}
	merr = append(merr, checkStates(enums)...)
	merr = append(merr, checkVariants(files)...)
	for _, svc := range services {
		if err := svc.CheckIn(files); err != nil {
			merr = append(merr, errors.Annotate(err, "service %s", svc.Name).Err())
		}
	}
	logging.Debugf(ctx, "schemalint: %d enums, %d services, %d findings", len(enums), len(services), len(merr))
	return merr.AsError()
}

// checkEnum verifies every model value exists in the descriptor with the same
// name. Descriptor values the model lacks are logged, not reported.
func checkEnum(ctx context.Context, files *protoregistry.Files, e jobs.EnumInfo) (out errors.MultiError) {
	d, err := files.FindDescriptorByName(protoreflect.FullName(e.FullName))
	if err != nil {
		return errors.MultiError{errors.Annotate(err, "enum %s", e.FullName).Err()}
	}
	ed, ok := d.(protoreflect.EnumDescriptor)
	if !ok {
		return errors.MultiError{errors.Reason("%s is not an enum", e.FullName).Err()}
	}

	for _, n := range sortedNumbers(e.Values) {
		vd := ed.Values().ByNumber(protoreflect.EnumNumber(n))
		switch {
		case vd == nil:
			out = append(out, errors.Reason("%s: value %d (%s) is not declared by the descriptor", e.FullName, n, e.Values[n]).Err())
		case string(vd.Name()) != e.Values[n]:
			out = append(out, errors.Reason("%s: value %d is %s in the model, %s in the descriptor", e.FullName, n, e.Values[n], vd.Name()).Err())
		}
	}
	values := ed.Values()
	for i := 0; i < values.Len(); i++ {
		vd := values.Get(i)
		if _, ok := e.Values[int32(vd.Number())]; !ok {
			logging.Warningf(ctx, "%s: descriptor value %s = %d is not modeled", e.FullName, vd.Name(), vd.Number())
		}
	}
	return out
}

// checkStates verifies job states are exactly 0..9.
func checkStates(enums []jobs.EnumInfo) (out errors.MultiError) {
	const stateEnum = "google.cloud.dataproc.v1.JobStatus.State"
	for _, e := range enums {
		if e.FullName != stateEnum {
			continue
		}
		nums := sortedNumbers(e.Values)
		if len(nums) != 10 {
			out = append(out, errors.Reason("%s: %d values, want 10", stateEnum, len(nums)).Err())
		}
		for i, n := range nums {
			if n != int32(i) {
				out = append(out, errors.Reason("%s: values are not contiguous from 0, got %d at position %d", stateEnum, n, i).Err())
				break
			}
		}
	}
	return out
}

// checkVariants verifies every model variant is a member of the job's type_job
// oneof.
func checkVariants(files *protoregistry.Files) (out errors.MultiError) {
	d, err := files.FindDescriptorByName(jobMessage)
	if err != nil {
		return errors.MultiError{errors.Annotate(err, "message %s", jobMessage).Err()}
	}
	md, ok := d.(protoreflect.MessageDescriptor)
	if !ok {
		return errors.MultiError{errors.Reason("%s is not a message", jobMessage).Err()}
	}
	oneof := md.Oneofs().ByName("type_job")
	if oneof == nil {
		return errors.MultiError{errors.Reason("%s has no type_job oneof", jobMessage).Err()}
	}
	for _, kind := range jobs.Kinds() {
		name := variantFields[kind]
		if fd := oneof.Fields().ByName(name); fd == nil {
			out = append(out, errors.Reason("%s: variant %s has no type_job field %s", jobMessage, kind, name).Err())
		}
	}
	return out
}

func sortedNumbers(m map[int32]string) []int32 {
	out := make([]int32, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
