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

// Package rpcerr converts between validation findings and gRPC statuses with
// google.rpc error details.
package rpcerr

import (
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/config/validation"
	"go.chromium.org/luci/grpc/grpcutil"
)

// InvalidArgument converts a validation error into an InvalidArgument status
// carrying one BadRequest field violation per finding.
func InvalidArgument(err error) error {
	br := &errdetails.BadRequest{}
	var verr *validation.Error
	if errors.As(err, &verr) {
		for _, e := range verr.Errors {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Description: e.Error(),
			})
		}
	}
	st, detailErr := status.New(codes.InvalidArgument, err.Error()).WithDetails(br)
	if detailErr != nil {
		return grpcutil.Errf(codes.InvalidArgument, "%s", err)
	}
	return st.Err()
}

// FailedPrecondition returns a FailedPrecondition status with a
// PreconditionFailure detail of the given type and subject.
func FailedPrecondition(kind, subject, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	st, err := status.New(codes.FailedPrecondition, msg).WithDetails(&errdetails.PreconditionFailure{
		Violations: []*errdetails.PreconditionFailure_Violation{
			{Type: kind, Subject: subject, Description: msg},
		},
	})
	if err != nil {
		return grpcutil.Errf(codes.FailedPrecondition, "%s", msg)
	}
	return st.Err()
}

// Details renders the error details attached to a gRPC status error, one
// line per item. Returns nil for errors without details.
func Details(err error) []string {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return nil
	}
	var out []string
	for _, d := range st.Details() {
		switch d := d.(type) {
		case *errdetails.BadRequest:
			for _, v := range d.GetFieldViolations() {
				if v.GetField() != "" {
					out = append(out, fmt.Sprintf("bad request: %s: %s", v.GetField(), v.GetDescription()))
				} else {
					out = append(out, "bad request: "+v.GetDescription())
				}
			}
		case *errdetails.PreconditionFailure:
			for _, v := range d.GetViolations() {
				out = append(out, fmt.Sprintf("precondition failed: %s %s: %s", v.GetType(), v.GetSubject(), v.GetDescription()))
			}
		case *errdetails.ErrorInfo:
			out = append(out, fmt.Sprintf("error info: %s (%s)", d.GetReason(), d.GetDomain()))
		case *errdetails.RetryInfo:
			out = append(out, fmt.Sprintf("retry after %s", d.GetRetryDelay().AsDuration()))
		case *errdetails.Help:
			for _, l := range d.GetLinks() {
				out = append(out, fmt.Sprintf("help: %s %s", l.GetDescription(), l.GetUrl()))
			}
		case *errdetails.LocalizedMessage:
			out = append(out, d.GetMessage())
		case error:
			out = append(out, fmt.Sprintf("undecodable detail: %s", d))
		}
	}
	return out
}
