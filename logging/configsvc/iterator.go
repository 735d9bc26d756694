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
	"context"

	"cloud.google.com/go/logging/apiv2/loggingpb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
)

// SinkIterator iterates over sinks returned by ListSinks, fetching pages as
// needed.
type SinkIterator struct {
	items    []*loggingpb.LogSink
	pageInfo *iterator.PageInfo
	nextFunc func() error

	// Response is the raw response of the most recent page fetch.
	Response *loggingpb.ListSinksResponse
}

// ListAllSinks returns an iterator over all sinks under req.Parent.
//
// req.PageSize and req.PageToken seed the iteration; the iterator's PageInfo
// can override them before the first call to Next.
func ListAllSinks(ctx context.Context, c Client, req *loggingpb.ListSinksRequest, opts ...grpc.CallOption) *SinkIterator {
	req = proto.Clone(req).(*loggingpb.ListSinksRequest)
	it := &SinkIterator{}
	fetch := func(pageSize int, pageToken string) (string, error) {
		if pageSize > 0 {
			req.PageSize = int32(pageSize)
		}
		req.PageToken = pageToken
		resp, err := c.ListSinks(ctx, req, opts...)
		if err != nil {
			return "", err
		}
		it.Response = resp
		it.items = append(it.items, resp.GetSinks()...)
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

// PageInfo supports pagination. See the google.golang.org/api/iterator
// package for details.
func (it *SinkIterator) PageInfo() *iterator.PageInfo { return it.pageInfo }

// Next returns the next sink. Its second return value is iterator.Done if
// there are no more results.
func (it *SinkIterator) Next() (*loggingpb.LogSink, error) {
	if err := it.nextFunc(); err != nil {
		return nil, err
	}
	item := it.items[0]
	it.items = it.items[1:]
	return item, nil
}

// All drains the iterator.
func (it *SinkIterator) All() ([]*loggingpb.LogSink, error) {
	var out []*loggingpb.LogSink
	for {
		switch sink, err := it.Next(); {
		case err == iterator.Done:
			return out, nil
		case err != nil:
			return nil, err
		default:
			out = append(out, sink)
		}
	}
}
