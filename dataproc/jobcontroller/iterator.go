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

package jobcontroller

import (
	"context"

	"cloud.google.com/go/dataproc/v2/apiv1/dataprocpb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
)

// JobIterator iterates over jobs returned by ListJobs, fetching pages as
// needed.
type JobIterator struct {
	items    []*dataprocpb.Job
	pageInfo *iterator.PageInfo
	nextFunc func() error

	// Response is the raw response of the most recent page fetch.
	Response *dataprocpb.ListJobsResponse
}

// ListAllJobs returns an iterator over all jobs matching req.
func ListAllJobs(ctx context.Context, c Client, req *dataprocpb.ListJobsRequest, opts ...grpc.CallOption) *JobIterator {
	req = proto.Clone(req).(*dataprocpb.ListJobsRequest)
	it := &JobIterator{}
	fetch := func(pageSize int, pageToken string) (string, error) {
		if pageSize > 0 {
			req.PageSize = int32(pageSize)
		}
		req.PageToken = pageToken
		resp, err := c.ListJobs(ctx, req, opts...)
		if err != nil {
			return "", err
		}
		it.Response = resp
		it.items = append(it.items, resp.GetJobs()...)
		return resp.GetNextPageToken(), nil
	}
	bufLen := func() int { return len(it.items) }
	takeBuf := func() any {
		b := it.items
		it.items = nil
		return b
	}
	it.pageInfo, it.nextFunc = iterator.NewPageInfo(fetch, bufLen, takeBuf)
	it.pageInfo.MaxSize = int(req.GetPageSize())
	it.pageInfo.Token = req.GetPageToken()
	return it
}

// PageInfo supports pagination.
func (it *JobIterator) PageInfo() *iterator.PageInfo { return it.pageInfo }

// Next returns the next job, or iterator.Done.
func (it *JobIterator) Next() (*dataprocpb.Job, error) {
	if err := it.nextFunc(); err != nil {
		return nil, err
	}
	item := it.items[0]
	it.items = it.items[1:]
	return item, nil
}

// All drains the iterator.
func (it *JobIterator) All() ([]*dataprocpb.Job, error) {
	var out []*dataprocpb.Job
	for {
		switch job, err := it.Next(); {
		case err == iterator.Done:
			return out, nil
		case err != nil:
			return nil, err
		default:
			out = append(out, job)
		}
	}
}
