package replay

import (
	"context"
	"errors"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/btb36/escpos-emulator/internal/escpos"
)

// Player drives a single escpos.Decoder from a Transport until the
// transport closes or the context is cancelled, logging decoded
// commands/responses to stdout via the decoder's own sink.
type Player struct {
	transport Transport
	decoder   *escpos.Decoder
	logger    *zap.Logger
}

// NewPlayer builds a Player feeding sink through a fresh decoder.
func NewPlayer(transport Transport, sink escpos.LineSink, logger *zap.Logger) *Player {
	return &Player{
		transport: transport,
		decoder:   escpos.New(sink),
		logger:    logger,
	}
}

// Run opens the transport and feeds every chunk it produces to the
// decoder until ctx is cancelled or the transport reports EOF/closed.
func (p *Player) Run(ctx context.Context) error {
	if err := p.transport.Open(ctx); err != nil {
		return err
	}
	defer p.transport.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, err := p.transport.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				p.logger.Info("replay transport closed")
				return nil
			}
			return err
		}

		if len(chunk) == 0 {
			continue
		}

		commands, responses := p.decoder.Feed(chunk)
		p.logger.Debug("fed chunk",
			zap.Int("bytes", len(chunk)),
			zap.Int("commands", len(commands)),
			zap.Int("responses", len(responses)),
		)
	}
}
