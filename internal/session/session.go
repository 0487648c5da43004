// Package session owns one escpos.Decoder per logical client connection
// and fans its audit trail out to the file/console sink and the audit
// store, keyed by a generated session ID.
package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/btb36/escpos-emulator/internal/audit"
	"github.com/btb36/escpos-emulator/internal/auditstore"
	"github.com/btb36/escpos-emulator/internal/config"
	"github.com/btb36/escpos-emulator/internal/escpos"
	"github.com/btb36/escpos-emulator/internal/utils"
)

// Session pairs one escpos.Decoder with the identity and audit plumbing a
// connected client needs.
type Session struct {
	ID         uuid.UUID
	RemoteAddr string
	StartedAt  time.Time

	decoder     *escpos.Decoder
	lineSink    *audit.FileConsoleSink
	store       *auditstore.Repository
	logger      *zap.Logger
	sessionLog  *utils.SessionLogger
	seq         int64
	ctx         context.Context
}

// storeLineSink is the decoder's sink when a session has no file/console
// sink configured; structured audit records are written from Feed using
// the typed Command/response values instead, not by re-parsing formatted
// lines, so there is nothing for this sink to do.
type storeLineSink struct{}

func (storeLineSink) WriteLine(string) {}

// New constructs a Session: allocates a UUID, builds the decoder with the
// given file+console audit sink (a no-op sink when lineSinkCfg is nil) and
// the options in decoderCfg, and (best-effort) records the session's start
// in the audit store.
func New(ctx context.Context, remoteAddr string, lineSinkCfg *audit.FileConsoleSink, store *auditstore.Repository, logger *zap.Logger, decoderCfg *config.DecoderConfig) *Session {
	id := uuid.New()

	sessionLog := utils.NewSessionLogger(logger, id.String(), remoteAddr)

	s := &Session{
		ID:         id,
		RemoteAddr: remoteAddr,
		StartedAt:  time.Now(),
		lineSink:   lineSinkCfg,
		store:      store,
		logger:     logger,
		sessionLog: sessionLog,
		ctx:        ctx,
	}

	sink := escpos.LineSink(storeLineSink{})
	if lineSinkCfg != nil {
		sink = lineSinkCfg
	}
	s.decoder = escpos.New(sink,
		escpos.WithMaxCarryOverBytes(decoderCfg.MaxCarryOverBytes),
		escpos.WithTextEncoding(decoderCfg.TextEncoding),
	)

	if store != nil {
		if err := store.CreateSession(ctx, &auditstore.Session{
			ID:         id,
			StartedAt:  s.StartedAt,
			RemoteAddr: remoteAddr,
		}); err != nil {
			logger.Warn("failed to persist session start", zap.Error(err), zap.String("session_id", id.String()))
			sessionLog.LogConnection("open", false, err)
		} else {
			sessionLog.LogConnection("open", true, nil)
		}
	} else {
		sessionLog.LogConnection("open", true, nil)
	}

	return s
}

// Feed decodes one burst of transport bytes, persists structured audit
// records for the packet and every command/response it produced, and
// returns the responses the caller must write back to the transport plus
// whether at least one non-MALFORMED command was decoded — the caller
// needs that to decide whether an empty response list still earns the
// default ACK, per spec.md's caller contract. Database write failures are
// logged and swallowed; they never interrupt decoding.
func (s *Session) Feed(data []byte) (responses [][]byte, hadCommand bool) {
	feedLog := utils.NewFeedLogger(s.logger, s.ID.String())
	feedLog.Start(zap.Int("bytes", len(data)))

	commands, responses := s.decoder.Feed(data)
	feedLog.Success(zap.Int("commands", len(commands)), zap.Int("responses", len(responses)))

	for _, cmd := range commands {
		if !strings.HasPrefix(cmd.Mnemonic, escpos.MalformedMnemonic) {
			hadCommand = true
		}
	}

	if s.store != nil {
		s.persistPacket(data)
		for _, cmd := range commands {
			s.persistCommand(cmd)
		}
		for _, resp := range responses {
			s.persistResponse(resp)
		}
	}

	return responses, hadCommand
}

func (s *Session) nextSeq() int64 {
	return atomic.AddInt64(&s.seq, 1)
}

func (s *Session) persistPacket(data []byte) {
	rec := &auditstore.Record{
		SessionID:  s.ID,
		Seq:        s.nextSeq(),
		Kind:       auditstore.KindPacket,
		OccurredAt: time.Now(),
		RawHex:     hexSummary(data),
	}
	if err := s.store.AppendRecord(s.ctx, rec); err != nil {
		s.logger.Warn("failed to persist packet record", zap.Error(err))
	}
}

func (s *Session) persistCommand(cmd escpos.Command) {
	rec := &auditstore.Record{
		SessionID:     s.ID,
		Seq:           s.nextSeq(),
		Kind:          auditstore.KindCommand,
		OccurredAt:    cmd.Timestamp,
		Mnemonic:      cmd.Mnemonic,
		DisplayName:   cmd.DisplayName,
		ParamsSummary: cmd.Params,
		RawHex:        hexSummary(cmd.Raw),
	}
	if err := s.store.AppendRecord(s.ctx, rec); err != nil {
		s.logger.Warn("failed to persist command record", zap.Error(err))
	}
}

func (s *Session) persistResponse(resp []byte) {
	rec := &auditstore.Record{
		SessionID:  s.ID,
		Seq:        s.nextSeq(),
		Kind:       auditstore.KindResponse,
		OccurredAt: time.Now(),
		RawHex:     hexSummary(resp),
	}
	if err := s.store.AppendRecord(s.ctx, rec); err != nil {
		s.logger.Warn("failed to persist response record", zap.Error(err))
	}
}

// Close ends the session's record in the audit store and flushes the line
// sink.
func (s *Session) Close() {
	if s.store != nil {
		if err := s.store.EndSession(s.ctx, s.ID); err != nil {
			s.logger.Warn("failed to end session", zap.Error(err), zap.String("session_id", s.ID.String()))
			s.sessionLog.LogConnection("close", false, err)
		} else {
			s.sessionLog.LogConnection("close", true, nil)
		}
	} else {
		s.sessionLog.LogConnection("close", true, nil)
	}
	if s.lineSink != nil {
		_ = s.lineSink.Close()
	}
}

func hexSummary(data []byte) string {
	const max = 256
	if len(data) > max {
		data = data[:max]
	}
	return escpos.HexDump(data)
}

// Manager owns every live Session, keyed by ID.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[uuid.UUID]*Session
	store      *auditstore.Repository
	logger     *zap.Logger
	decoderCfg *config.DecoderConfig
}

// NewManager constructs an empty Manager. decoderCfg is applied to every
// session's Decoder.
func NewManager(store *auditstore.Repository, logger *zap.Logger, decoderCfg *config.DecoderConfig) *Manager {
	return &Manager{
		sessions:   make(map[uuid.UUID]*Session),
		store:      store,
		logger:     logger,
		decoderCfg: decoderCfg,
	}
}

// Create starts a new session and registers it.
func (m *Manager) Create(ctx context.Context, remoteAddr string, lineSink *audit.FileConsoleSink) *Session {
	s := New(ctx, remoteAddr, lineSink, m.store, m.logger, m.decoderCfg)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a live session by ID.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove tears a session down and evicts it, per spec.md's reset-on-
// disconnect contract.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}
