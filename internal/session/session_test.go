package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/btb36/escpos-emulator/internal/config"
)

var testDecoderCfg = &config.DecoderConfig{TextEncoding: "gbk"}

func TestSession_FeedWithoutStore(t *testing.T) {
	s := New(context.Background(), "127.0.0.1:1234", nil, nil, zap.NewNop(), testDecoderCfg)
	require.NotNil(t, s)

	input := []byte{0x1B, 0x40, 'H', 'i', 0x0A}
	responses, hadCommand := s.Feed(input)

	assert.True(t, hadCommand)
	assert.Empty(t, responses)

	s.Close()
}

func TestSession_FeedMalformedStillTracked(t *testing.T) {
	s := New(context.Background(), "127.0.0.1:1234", nil, nil, zap.NewNop(), testDecoderCfg)

	_, hadCommand := s.Feed([]byte{0x1B, 0xFF})
	assert.False(t, hadCommand)

	s.Close()
}

func TestManager_CreateGetRemove(t *testing.T) {
	m := NewManager(nil, zap.NewNop(), testDecoderCfg)

	s := m.Create(context.Background(), "10.0.0.1:9000", nil)
	require.NotNil(t, s)

	got, ok := m.Get(s.ID)
	assert.True(t, ok)
	assert.Equal(t, s.ID, got.ID)

	m.Remove(s.ID)
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager(nil, zap.NewNop(), testDecoderCfg)
	_, ok := m.Get(uuid.UUID{})
	assert.False(t, ok)
}
