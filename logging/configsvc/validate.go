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

package configsvc

import (
	"strings"

	"cloud.google.com/go/logging/apiv2/loggingpb"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"go.chromium.org/luci/common/data/stringset"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/config/validation"
)

// Destinations are the URI prefixes a sink can export to.
var Destinations = []string{
	"storage.googleapis.com/",
	"bigquery.googleapis.com/",
	"pubsub.googleapis.com/",
	"logging.googleapis.com/",
}

// DefaultUpdateMask lists the fields UpdateSink replaces when the request has
// no update mask.
var DefaultUpdateMask = []string{"destination", "filter", "include_children"}

var updatableFields = stringset.NewFromSlice(
	"bigquery_options",
	"description",
	"destination",
	"disabled",
	"exclusions",
	"filter",
	"include_children",
	"output_version_format",
)

// ValidateSink checks the client-settable fields of a sink.
//
// These are the rules the service enforces; checking them locally is optional.
func ValidateSink(ctx *validation.Context, sink *loggingpb.LogSink) {
	ctx.Enter("sink")
	defer ctx.Exit()

	if sink == nil {
		ctx.Errorf("missing")
		return
	}
	if err := ValidateSinkID(sink.Name); err != nil {
		ctx.Enter("name")
		ctx.Error(err)
		ctx.Exit()
	}
	validateDestination(ctx, sink.Destination)
	for i, ex := range sink.Exclusions {
		ctx.Enter("exclusions[%d]", i)
		if ex.GetName() == "" {
			ctx.Errorf("name is required")
		}
		if ex.GetFilter() == "" {
			ctx.Errorf("filter is required")
		}
		ctx.Exit()
	}
}

func validateDestination(ctx *validation.Context, dest string) {
	ctx.Enter("destination")
	defer ctx.Exit()

	if dest == "" {
		ctx.Errorf("required")
		return
	}
	for _, prefix := range Destinations {
		if rest, ok := strings.CutPrefix(dest, prefix); ok {
			if rest == "" {
				ctx.Errorf("%q names no resource", dest)
			}
			return
		}
	}
	ctx.Errorf("%q: unsupported destination, want one of %s", dest, strings.Join(Destinations, ", "))
}

// ValidateCreateRequest checks a CreateSink request.
func ValidateCreateRequest(ctx *validation.Context, req *loggingpb.CreateSinkRequest) {
	if _, err := ParseParent(req.GetParent()); err != nil {
		ctx.Enter("parent")
		ctx.Error(err)
		ctx.Exit()
	}
	ValidateSink(ctx, req.GetSink())
}

// ValidateUpdateRequest checks an UpdateSink request.
func ValidateUpdateRequest(ctx *validation.Context, req *loggingpb.UpdateSinkRequest) {
	ref, err := ParseSinkName(req.GetSinkName())
	if err != nil {
		ctx.Enter("sink_name")
		ctx.Error(err)
		ctx.Exit()
	}
	ValidateSink(ctx, req.GetSink())
	if err == nil && req.GetSink() != nil && req.Sink.Name != ref.ID {
		ctx.Errorf("sink.name %q does not match sink_name %q", req.Sink.Name, req.SinkName)
	}
	ctx.Enter("update_mask")
	for _, path := range req.GetUpdateMask().GetPaths() {
		if !updatableFields.Has(path) {
			ctx.Errorf("field %q cannot be updated", path)
		}
	}
	ctx.Exit()
}

// ApplyUpdate copies the fields named by mask from src to dst.
//
// An empty mask means DefaultUpdateMask.
func ApplyUpdate(dst, src *loggingpb.LogSink, mask *fieldmaskpb.FieldMask) error {
	paths := mask.GetPaths()
	if len(paths) == 0 {
		paths = DefaultUpdateMask
	}
	for _, path := range paths {
		switch path {
		case "destination":
			dst.Destination = src.Destination
		case "filter":
			dst.Filter = src.Filter
		case "include_children":
			dst.IncludeChildren = src.IncludeChildren
		case "description":
			dst.Description = src.Description
		case "disabled":
			dst.Disabled = src.Disabled
		case "exclusions":
			dst.Exclusions = src.Exclusions
		case "output_version_format":
			dst.OutputVersionFormat = src.OutputVersionFormat
		case "bigquery_options":
			dst.Options = src.Options
		default:
			return errors.Reason("field %q cannot be updated", path).Err()
		}
	}
	return nil
}
