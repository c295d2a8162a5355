package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/watt-toolkit/osrv/request"
	"github.com/watt-toolkit/osrv/response"
)

type stubTransport struct {
	bound bool
	dispatch DispatchFunc
}

func (s *stubTransport) Bind(ctx context.Context, dispatch DispatchFunc) (Capabilities, error) {
	s.bound = true
	s.dispatch = dispatch
	return Capabilities{HTTP1: true}, nil
}

func (s *stubTransport) Close(ctx context.Context, force bool) error { return nil }

func TestStubSatisfiesTransportInterface(t *testing.T) {
	var tr Transport = &stubTransport{}
	caps, err := tr.Bind(context.Background(), func(ctx context.Context, req *request.Request) *response.Response {
		return response.Empty(200)
	})
	assert.NoError(t, err)
	assert.True(t, caps.HTTP1)
	assert.NoError(t, tr.Close(context.Background(), false))
}
