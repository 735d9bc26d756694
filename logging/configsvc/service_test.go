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
	"net"
	"net/http/httptest"
	"net/url"
	"testing"

	"cloud.google.com/go/logging/apiv2/loggingpb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"go.chromium.org/luci/common/testing/ftt"
	"go.chromium.org/luci/common/testing/truth/assert"
	"go.chromium.org/luci/common/testing/truth/should"
	"go.chromium.org/luci/grpc/prpc"
	"go.chromium.org/luci/server/router"

	"github.com/cloudapis-go/cloudapis/rpcdesc"
)

// stubServer answers every call from canned values.
type stubServer struct {
	UnimplementedServer

	sinks []*loggingpb.LogSink
}

func (s *stubServer) GetSink(ctx context.Context, req *loggingpb.GetSinkRequest) (*loggingpb.LogSink, error) {
	for _, sink := range s.sinks {
		if "projects/p/sinks/"+sink.Name == req.SinkName {
			return sink, nil
		}
	}
	return nil, status.Errorf(codes.NotFound, "no sink %s", req.SinkName)
}

func (s *stubServer) ListSinks(ctx context.Context, req *loggingpb.ListSinksRequest) (*loggingpb.ListSinksResponse, error) {
	// Page size 1, token is the index of the next sink.
	idx := 0
	if req.PageToken != "" {
		idx = int(req.PageToken[0] - '0')
	}
	resp := &loggingpb.ListSinksResponse{}
	if idx < len(s.sinks) {
		resp.Sinks = []*loggingpb.LogSink{s.sinks[idx]}
	}
	if idx+1 < len(s.sinks) {
		resp.NextPageToken = string(rune('0' + idx + 1))
	}
	return resp, nil
}

func (s *stubServer) DeleteSink(ctx context.Context, req *loggingpb.DeleteSinkRequest) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func grpcClient(t testing.TB, srv Server) Client {
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterServer(s, srv)
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	assert.Loosely(t, err, should.BeNil)
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn)
}

func prpcClient(t testing.TB, srv Server) Client {
	s := &prpc.Server{}
	RegisterServer(s, srv)
	r := router.New()
	s.InstallHandlers(r, router.NewMiddlewareChain())
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	u, err := url.Parse(ts.URL)
	assert.Loosely(t, err, should.BeNil)
	opts := prpc.DefaultOptions()
	opts.Insecure = true
	return NewClient(&prpc.Client{C: ts.Client(), Host: u.Host, Options: opts})
}

func TestServiceTable(t *testing.T) {
	t.Parallel()

	ftt.Run("ConfigServiceV2 table", t, func(t *ftt.Test) {
		t.Run("Is well formed", func(t *ftt.Test) {
			assert.Loosely(t, Service.Validate(), should.BeNil)
		})

		t.Run("Declares the five sink methods", func(t *ftt.Test) {
			assert.Loosely(t, Service.Name, should.Equal("google.logging.v2.ConfigServiceV2"))
			assert.Loosely(t, Service.MethodNames(), should.Match([]string{
				"ListSinks", "GetSink", "CreateSink", "UpdateSink", "DeleteSink",
			}))
		})

		t.Run("Matches the published descriptor", func(t *ftt.Test) {
			assert.Loosely(t, Service.CheckRegistered(), should.BeNil)
		})

		t.Run("Is registered", func(t *ftt.Test) {
			assert.Loosely(t, rpcdesc.Get(ServiceName), should.Equal(&Service))
		})

		t.Run("DeleteSink returns Empty", func(t *ftt.Test) {
			m, ok := Service.Lookup("DeleteSink")
			assert.Loosely(t, ok, should.BeTrue)
			assert.Loosely(t, string(m.ResponseName()), should.Equal("google.protobuf.Empty"))
		})
	})
}

func TestClient(t *testing.T) {
	t.Parallel()

	transports := map[string]func(testing.TB, Server) Client{
		"gRPC": grpcClient,
		"pRPC": prpcClient,
	}

	for name, mk := range transports {
		ftt.Run(name, t, func(t *ftt.Test) {
			ctx := context.Background()
			srv := &stubServer{sinks: []*loggingpb.LogSink{
				{Name: "a", Destination: "storage.googleapis.com/a"},
				{Name: "b", Destination: "pubsub.googleapis.com/projects/p/topics/b"},
				{Name: "c", Destination: "bigquery.googleapis.com/projects/p/datasets/c"},
			}}
			c := mk(t, srv)

			t.Run("GetSink", func(t *ftt.Test) {
				sink, err := c.GetSink(ctx, &loggingpb.GetSinkRequest{SinkName: "projects/p/sinks/b"})
				assert.Loosely(t, err, should.BeNil)
				assert.Loosely(t, sink.Destination, should.Equal("pubsub.googleapis.com/projects/p/topics/b"))
			})

			t.Run("Errors pass through", func(t *ftt.Test) {
				_, err := c.GetSink(ctx, &loggingpb.GetSinkRequest{SinkName: "projects/p/sinks/zzz"})
				assert.Loosely(t, status.Code(err), should.Equal(codes.NotFound))
			})

			t.Run("Unimplemented methods", func(t *ftt.Test) {
				_, err := c.CreateSink(ctx, &loggingpb.CreateSinkRequest{})
				assert.Loosely(t, status.Code(err), should.Equal(codes.Unimplemented))
			})

			t.Run("DeleteSink", func(t *ftt.Test) {
				_, err := c.DeleteSink(ctx, &loggingpb.DeleteSinkRequest{SinkName: "projects/p/sinks/a"})
				assert.Loosely(t, err, should.BeNil)
			})

			t.Run("ListAllSinks follows page tokens", func(t *ftt.Test) {
				sinks, err := ListAllSinks(ctx, c, &loggingpb.ListSinksRequest{Parent: "projects/p"}).All()
				assert.Loosely(t, err, should.BeNil)
				var names []string
				for _, s := range sinks {
					names = append(names, s.Name)
				}
				assert.Loosely(t, names, should.Match([]string{"a", "b", "c"}))
			})
		})
	}
}

func TestSinkIterator(t *testing.T) {
	t.Parallel()

	ftt.Run("Iterator", t, func(t *ftt.Test) {
		ctx := context.Background()
		c := grpcClient(t, &stubServer{sinks: []*loggingpb.LogSink{{Name: "a"}, {Name: "b"}}})

		it := ListAllSinks(ctx, c, &loggingpb.ListSinksRequest{Parent: "projects/p"})
		first, err := it.Next()
		assert.Loosely(t, err, should.BeNil)
		assert.Loosely(t, first.Name, should.Equal("a"))
		assert.Loosely(t, it.Response.NextPageToken, should.Equal("1"))

		second, err := it.Next()
		assert.Loosely(t, err, should.BeNil)
		assert.Loosely(t, second.Name, should.Equal("b"))

		_, err = it.Next()
		assert.Loosely(t, err, should.Equal(iterator.Done))
	})

	ftt.Run("Errors stop iteration", t, func(t *ftt.Test) {
		ctx := context.Background()
		c := grpcClient(t, &UnimplementedServer{})
		_, err := ListAllSinks(ctx, c, &loggingpb.ListSinksRequest{Parent: "projects/p"}).All()
		assert.Loosely(t, status.Code(err), should.Equal(codes.Unimplemented))
	})
}
