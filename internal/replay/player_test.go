package replay

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTransport replays a fixed sequence of chunks, then reports io.EOF.
type fakeTransport struct {
	mu     sync.Mutex
	chunks [][]byte
	opened bool
	closed bool
}

func (f *fakeTransport) Open(ctx context.Context) error {
	f.opened = true
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func (f *fakeTransport) Read(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.chunks) == 0 {
		return nil, io.EOF
	}
	chunk := f.chunks[0]
	f.chunks = f.chunks[1:]
	return chunk, nil
}

type nopSink struct{}

func (nopSink) WriteLine(string) {}

func TestPlayer_RunFeedsChunksUntilEOF(t *testing.T) {
	transport := &fakeTransport{
		chunks: [][]byte{
			{0x1B, 0x40},
			{'H', 'i', 0x0A},
		},
	}

	p := NewPlayer(transport, nopSink{}, zap.NewNop())
	err := p.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, transport.opened)
	assert.True(t, transport.closed)
}

func TestPlayer_RunPropagatesOpenError(t *testing.T) {
	transport := &erroringOpenTransport{}
	p := NewPlayer(transport, nopSink{}, zap.NewNop())

	err := p.Run(context.Background())
	assert.Error(t, err)
}

type erroringOpenTransport struct{}

func (erroringOpenTransport) Open(ctx context.Context) error  { return assert.AnError }
func (erroringOpenTransport) Close() error                    { return nil }
func (erroringOpenTransport) Read(ctx context.Context) ([]byte, error) { return nil, io.EOF }
