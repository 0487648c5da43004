// Package replay implements the non-HTTP transports cmd/replay drives a
// Decoder from: a TCP socket or a real serial link, read in whatever
// chunks the underlying transport hands back, with no artificial
// re-buffering — those chunk boundaries are exactly the packetisation
// Decoder.Feed is built to tolerate.
package replay

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// Transport is the minimal byte-stream source cmd/replay needs, a
// narrowed form of the teacher's protocol.DeviceProtocol limited to the
// read side replay actually exercises.
type Transport interface {
	Open(ctx context.Context) error
	Close() error
	// Read blocks until at least one byte is available, the transport is
	// closed, or (for SerialTransport) the read timeout elapses, in which
	// case it returns an empty chunk. A chunk is returned as delivered,
	// without padding or combining it with any other read.
	Read(ctx context.Context) ([]byte, error)
}

// TCPTransport reads a byte stream from a TCP connection.
type TCPTransport struct {
	addr    string
	timeout time.Duration
	logger  *zap.Logger
	conn    net.Conn
}

// NewTCPTransport creates a TCP transport for addr (host:port).
func NewTCPTransport(addr string, timeout time.Duration, logger *zap.Logger) *TCPTransport {
	return &TCPTransport{addr: addr, timeout: timeout, logger: logger.With(zap.String("transport", "tcp"), zap.String("addr", addr))}
}

// Open dials the TCP address.
func (t *TCPTransport) Open(ctx context.Context) error {
	dialer := &net.Dialer{Timeout: t.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.addr, err)
	}
	t.conn = conn
	t.logger.Info("tcp transport connected")
	return nil
}

// Close closes the TCP connection.
func (t *TCPTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}

// Read returns the next chunk the socket delivers.
func (t *TCPTransport) Read(ctx context.Context) ([]byte, error) {
	buf := make([]byte, 4096)
	if deadline, ok := ctx.Deadline(); ok {
		t.conn.SetReadDeadline(deadline)
	}
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// SerialTransport reads a byte stream from a real serial port, via
// go.bug.st/serial, the same library the teacher's protocol.SerialConnection
// uses.
type SerialTransport struct {
	port     string
	baudRate int
	timeout  time.Duration
	logger   *zap.Logger
	conn     serial.Port
}

// NewSerialTransport creates a serial transport for the named port.
func NewSerialTransport(port string, baudRate int, timeout time.Duration, logger *zap.Logger) *SerialTransport {
	return &SerialTransport{
		port:     port,
		baudRate: baudRate,
		timeout:  timeout,
		logger:   logger.With(zap.String("transport", "serial"), zap.String("port", port)),
	}
}

// Open opens the serial port at the configured baud rate, 8N1.
func (t *SerialTransport) Open(ctx context.Context) error {
	mode := &serial.Mode{
		BaudRate: t.baudRate,
		DataBits: 8,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}
	port, err := serial.Open(t.port, mode)
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", t.port, err)
	}
	if err := port.SetReadTimeout(t.timeout); err != nil {
		port.Close()
		return fmt.Errorf("set read timeout: %w", err)
	}
	t.conn = port
	t.logger.Info("serial transport opened", zap.Int("baud_rate", t.baudRate))
	return nil
}

// Close closes the serial port.
func (t *SerialTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}

// Read returns the next chunk the port delivers, or an empty slice on a
// read-timeout tick (go.bug.st/serial returns n=0, err=nil on timeout
// rather than io.EOF).
func (t *SerialTransport) Read(ctx context.Context) ([]byte, error) {
	buf := make([]byte, 4096)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
