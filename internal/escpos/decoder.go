package escpos

import (
	"fmt"
	"time"
)

// LineSink is the minimal contract the audit emitter requires of a sink:
// accept a formatted line in call order. Flushing discipline, fan-out to
// multiple destinations, and persistence are the sink's concern, not the
// decoder's.
type LineSink interface {
	WriteLine(line string)
}

type nopSink struct{}

func (nopSink) WriteLine(string) {}

// Decoder is a streaming ESC/POS parser. One instance belongs to exactly
// one logical client session; carry-over, the text accumulator, and parser
// state persist across Feed calls for the session's lifetime and are only
// cleared by Reset.
type Decoder struct {
	sink LineSink

	state   parserState
	buf     []byte // bytes fed but not yet classified into the in-flight command
	textAcc []byte // text bytes collected in Idle, not yet bound to a TEXT command

	asbEnabled byte

	maxCarryOver int
	textEncoding string

	now func() time.Time
}

// Option configures optional Decoder behavior at construction time.
type Option func(*Decoder)

// WithMaxCarryOverBytes bounds how much unresolved partial-command state
// (the in-flight command's pending bytes plus whatever Feed has not yet
// classified) the decoder holds across Feed calls. Once exceeded, the
// carried bytes are emitted as a single MALFORMED command and the decoder
// resyncs to Idle rather than growing the buffer without bound. Zero (the
// default) means unbounded.
func WithMaxCarryOverBytes(n int) Option {
	return func(d *Decoder) { d.maxCarryOver = n }
}

// WithTextEncoding selects the primary non-ASCII text codec decodeText
// tries before falling back to UTF-8 then Latin-1. Supported values are
// "gbk" (the default) and "big5"; any other value behaves like "gbk".
func WithTextEncoding(encoding string) Option {
	return func(d *Decoder) { d.textEncoding = encoding }
}

// New constructs a Decoder bound to sink and writes a startup record to it.
// A nil sink is replaced with a no-op, so a Decoder is always safe to feed
// even before a real sink is wired up (e.g. in unit tests).
func New(sink LineSink, opts ...Option) *Decoder {
	if sink == nil {
		sink = nopSink{}
	}
	d := &Decoder{
		sink:         sink,
		state:        newIdleState(),
		now:          time.Now,
		textEncoding: "gbk",
	}
	for _, opt := range opts {
		opt(d)
	}
	d.sink.WriteLine("--- ESC/POS 解碼器啟動 ---")
	return d
}

// Reset discards carry-over, the text accumulator, and parser state. The
// next Feed call begins as though from a freshly constructed Decoder.
func (d *Decoder) Reset() {
	d.state = newIdleState()
	d.buf = nil
	d.textAcc = nil
	d.asbEnabled = 0
}

// CarryOver returns the bytes currently held across the parser state and
// the unclassified input buffer — every byte consumed since the last
// emitted command or text flush. Exposed for the cross-packet invariant
// tests; callers driving the BLE transport never need it.
func (d *Decoder) CarryOver() []byte {
	out := make([]byte, 0, len(d.state.pending)+len(d.buf)+len(d.textAcc))
	out = append(out, d.textAcc...)
	out = append(out, d.state.pending...)
	out = append(out, d.buf...)
	return out
}

// Feed consumes one burst of transport bytes and returns every command
// that finished decoding plus every response that must be sent back, both
// in the order their final byte was consumed. Feed is total: it returns
// normally for any input, including empty bursts and malformed streams.
func (d *Decoder) Feed(data []byte) ([]Command, [][]byte) {
	d.sink.WriteLine(formatPacketLine(data))

	d.buf = append(d.buf, data...)

	var commands []Command
	var responses [][]byte

	d.enforceCarryOverCap(&commands)

	for len(d.buf) > 0 {
		if !d.step(&commands, &responses) {
			break
		}
	}

	return commands, responses
}

// enforceCarryOverCap resyncs to Idle if the in-flight command's pending
// bytes plus the not-yet-classified buffer exceed maxCarryOver, per
// WithMaxCarryOverBytes. A no-op when maxCarryOver is zero (unbounded).
func (d *Decoder) enforceCarryOverCap(commands *[]Command) {
	if d.maxCarryOver <= 0 {
		return
	}
	total := len(d.state.pending) + len(d.buf)
	if total <= d.maxCarryOver {
		return
	}
	d.flushText(commands)
	raw := append(append([]byte{}, d.state.pending...), d.buf...)
	d.buf = nil
	cmd := d.makeCmd(fmt.Sprintf("%s (%s)", MalformedMnemonic, hexDump(raw)), "超出暫存上限，重新同步至待命狀態", "", raw)
	d.emitCommand(commands, cmd)
	d.state = newIdleState()
}

func (d *Decoder) step(commands *[]Command, responses *[][]byte) bool {
	switch d.state.kind {
	case stateIdle:
		return d.parseIdle(commands)
	case stateEscPrefix:
		return d.parseEscPrefix(commands, responses)
	case stateGsPrefix:
		return d.parseGsPrefix(commands, responses)
	case stateDlePrefix:
		return d.parseDlePrefix(commands)
	case stateFsPrefix:
		return d.parseFsPrefix(commands)
	case stateFixedParam:
		return d.parseFixedParam(commands, responses)
	case stateVariableParam:
		return d.parseVariableParam(commands, responses)
	default:
		d.state = newIdleState()
		return true
	}
}

// --- Idle ---

func (d *Decoder) parseIdle(commands *[]Command) bool {
	b := d.buf[0]

	switch b {
	case 0x1B:
		d.flushText(commands)
		d.buf = d.buf[1:]
		d.state = parserState{kind: stateEscPrefix, pending: []byte{b}}
		return true
	case 0x1D:
		d.flushText(commands)
		d.buf = d.buf[1:]
		d.state = parserState{kind: stateGsPrefix, pending: []byte{b}}
		return true
	case 0x10:
		d.flushText(commands)
		d.buf = d.buf[1:]
		d.state = parserState{kind: stateDlePrefix, pending: []byte{b}}
		return true
	case 0x1C:
		d.flushText(commands)
		d.buf = d.buf[1:]
		d.state = parserState{kind: stateFsPrefix, pending: []byte{b}}
		return true
	}

	if entry, ok := controlChars[b]; ok {
		d.flushText(commands)
		d.buf = d.buf[1:]
		cmd := d.makeCmd(entry.mnemonic, entry.displayName, "", []byte{b})
		d.emitCommand(commands, cmd)
		return true
	}

	return d.parseText()
}

// parseText collects a run of non-control, non-prefix bytes into the text
// accumulator without emitting anything; the accumulator is only flushed
// to a TEXT command when a boundary byte is actually seen, possibly in a
// later Feed call, so that a text run split across transport fragments
// becomes a single TEXT command rather than one per fragment.
func (d *Decoder) parseText() bool {
	n := 0
	for n < len(d.buf) {
		b := d.buf[n]
		if b == 0x1B || b == 0x1D || b == 0x10 || b == 0x1C {
			break
		}
		if _, ok := controlChars[b]; ok {
			break
		}
		n++
	}
	if n == 0 {
		return false
	}
	d.textAcc = append(d.textAcc, d.buf[:n]...)
	d.buf = d.buf[n:]
	return true
}

// flushText emits the pending text accumulator, if any, as a TEXT command.
func (d *Decoder) flushText(commands *[]Command) {
	if len(d.textAcc) == 0 {
		return
	}
	raw := d.textAcc
	d.textAcc = nil
	text := d.decodeText(raw)
	cmd := d.makeCmd("TEXT", "", fmt.Sprintf("%q", text), raw)
	d.emitCommand(commands, cmd)
}

// --- ESC prefix ---

func (d *Decoder) parseEscPrefix(commands *[]Command, responses *[][]byte) bool {
	if len(d.buf) == 0 {
		return false
	}
	b := d.buf[0]

	switch b {
	case 0x2A: // ESC * — bit-image mode, variable length
		d.consumeByte()
		d.state.mnemonic = "ESC *"
		d.state.displayName = "選擇位元映像模式"
		d.state.kind = stateVariableParam
		d.state.phase = phaseEscStarHeader
		return true
	case 0x44: // ESC D — horizontal tab positions, NUL-terminated
		d.consumeByte()
		d.state.mnemonic = "ESC D"
		d.state.displayName = "設定水平定位"
		d.state.kind = stateVariableParam
		d.state.phase = phaseEscDTabs
		d.state.varCollected = nil
		return true
	}

	if entry, ok := escCommands[b]; ok {
		d.consumeByte()
		if entry.fixedLen == 0 {
			raw := append([]byte{}, d.state.pending...)
			cmd := d.makeCmd(entry.mnemonic, entry.displayName, "", raw)
			d.emitWithResponse(commands, responses, cmd)
			d.state = newIdleState()
			return true
		}
		d.state.mnemonic = entry.mnemonic
		d.state.displayName = entry.displayName
		d.state.fixedNeeded = entry.fixedLen
		d.state.kind = stateFixedParam
		return true
	}

	// unknown ESC opcode
	d.consumeByte()
	d.emitMalformed(commands, "未知 ESC 指令")
	return true
}

// --- GS prefix ---

func (d *Decoder) parseGsPrefix(commands *[]Command, responses *[][]byte) bool {
	if len(d.buf) == 0 {
		return false
	}
	b := d.buf[0]

	switch b {
	case 0x56: // GS V — cut, mode-dependent length
		d.consumeByte()
		d.state.mnemonic = "GS V"
		d.state.displayName = "選擇切紙模式"
		d.state.kind = stateVariableParam
		d.state.phase = phaseGsVMode
		return true

	case 0x76: // GS v — only "GS v 0" (raster image) is recognised
		if len(d.buf) < 2 {
			return false
		}
		if d.buf[1] == 0x30 {
			d.consumeByte()
			d.consumeByte()
			d.state.mnemonic = "GS v 0"
			d.state.displayName = "列印光柵點陣圖"
			d.state.kind = stateVariableParam
			d.state.phase = phaseGsV0Header
			return true
		}
		d.consumeByte()
		d.emitMalformed(commands, "未知 GS v 指令")
		return true

	case 0x28: // GS ( — "GS ( L" is the only named extension; others are generic
		if len(d.buf) < 2 {
			return false
		}
		sub := d.buf[1]
		d.consumeByte()
		d.consumeByte()
		if sub == 0x4C {
			d.state.mnemonic = "GS ( L"
			d.state.displayName = "擴充圖形功能"
		} else {
			d.state.mnemonic = fmt.Sprintf("GS ( %c", sub)
			d.state.displayName = "擴充功能"
		}
		d.state.kind = stateVariableParam
		d.state.phase = phaseGsParenLHeader
		return true

	case 0x6B: // GS k — barcode, Format A/B
		d.consumeByte()
		d.state.mnemonic = "GS k"
		d.state.displayName = "列印條碼"
		d.state.kind = stateVariableParam
		d.state.phase = phaseGsKType
		return true
	}

	if entry, ok := gsCommands[b]; ok {
		d.consumeByte()
		if entry.fixedLen == 0 {
			raw := append([]byte{}, d.state.pending...)
			cmd := d.makeCmd(entry.mnemonic, entry.displayName, "", raw)
			d.emitCommand(commands, cmd)
			d.state = newIdleState()
			return true
		}
		d.state.mnemonic = entry.mnemonic
		d.state.displayName = entry.displayName
		d.state.fixedNeeded = entry.fixedLen
		d.state.kind = stateFixedParam
		return true
	}

	// unknown GS opcode
	d.consumeByte()
	d.emitMalformed(commands, "未知 GS 指令")
	return true
}

// --- DLE prefix ---

func (d *Decoder) parseDlePrefix(commands *[]Command) bool {
	if len(d.buf) == 0 {
		return false
	}
	b := d.buf[0]

	if entry, ok := dleCommands[b]; ok {
		d.consumeByte()
		d.state.mnemonic = entry.mnemonic
		d.state.displayName = entry.displayName
		d.state.fixedNeeded = entry.fixedLen
		d.state.kind = stateFixedParam
		return true
	}

	d.consumeByte()
	d.emitMalformed(commands, "未知 DLE 指令")
	return true
}

// --- FS prefix ---

func (d *Decoder) parseFsPrefix(commands *[]Command) bool {
	if len(d.buf) == 0 {
		return false
	}
	b := d.buf[0]

	if entry, ok := fsCommands[b]; ok {
		d.consumeByte()
		if entry.fixedLen == 0 {
			raw := append([]byte{}, d.state.pending...)
			cmd := d.makeCmd(entry.mnemonic, entry.displayName, "", raw)
			d.emitCommand(commands, cmd)
			d.state = newIdleState()
			return true
		}
		d.state.mnemonic = entry.mnemonic
		d.state.displayName = entry.displayName
		d.state.fixedNeeded = entry.fixedLen
		d.state.kind = stateFixedParam
		return true
	}

	d.consumeByte()
	d.emitMalformed(commands, "未知 FS 指令")
	return true
}

// --- Fixed-length parameters ---

func (d *Decoder) parseFixedParam(commands *[]Command, responses *[][]byte) bool {
	if len(d.buf) < d.state.fixedNeeded {
		return false
	}
	params := append([]byte{}, d.buf[:d.state.fixedNeeded]...)
	d.buf = d.buf[d.state.fixedNeeded:]
	d.state.pending = append(d.state.pending, params...)

	raw := append([]byte{}, d.state.pending...)
	desc := describeParams(d.state.mnemonic, params)
	cmd := d.makeCmd(d.state.mnemonic, d.state.displayName, desc, raw)

	if d.state.mnemonic == "GS a" && len(params) > 0 {
		d.asbEnabled = params[0]
		d.sink.WriteLine(fmt.Sprintf("RSP  ASB 設定更新: n=0x%02X", d.asbEnabled))
		*commands = append(*commands, cmd)
		d.logCommand(cmd)
	} else {
		d.emitWithResponse(commands, responses, cmd)
	}

	d.state = newIdleState()
	return true
}

// --- Variable-length parameters ---

func (d *Decoder) parseVariableParam(commands *[]Command, responses *[][]byte) bool {
	switch d.state.phase {

	case phaseEscStarHeader:
		if len(d.buf) < 3 {
			return false
		}
		m, nL, nH := d.buf[0], d.buf[1], d.buf[2]
		d.consumeBytes(3)
		n := int(nL) + int(nH)*256
		var dataLen int
		switch m {
		case 0, 1:
			dataLen = n
		case 32, 33:
			dataLen = n * 3
		default:
			dataLen = 0
		}
		if m != 0 && m != 1 && m != 32 && m != 33 {
			d.emitMalformed(commands, "位元映像模式參數錯誤")
			return true
		}
		d.state.varDataLen = dataLen
		d.state.varMode = int(m)
		d.state.varExtra = n
		d.state.phase = phaseEscStarData
		return true

	case phaseEscStarData:
		if len(d.buf) < d.state.varDataLen {
			return false
		}
		data := d.consumeBytes(d.state.varDataLen)
		raw := append([]byte{}, d.state.pending...)
		params := fmt.Sprintf("m=%d, 寬=%d 點, 資料=%d bytes", d.state.varMode, d.state.varExtra, len(data))
		cmd := d.makeCmd("ESC *", "選擇位元映像模式", params, raw)
		d.emitCommand(commands, cmd)
		d.state = newIdleState()
		return true

	case phaseEscDTabs:
		for len(d.buf) > 0 {
			b := d.buf[0]
			d.consumeByte()
			if b == 0x00 {
				raw := append([]byte{}, d.state.pending...)
				params := "清除定位"
				if len(d.state.varCollected) > 0 {
					params = "定位: " + joinInts(d.state.varCollected)
				}
				cmd := d.makeCmd("ESC D", "設定水平定位", params, raw)
				d.emitCommand(commands, cmd)
				d.state = newIdleState()
				return true
			}
			d.state.varCollected = append(d.state.varCollected, b)
		}
		return false

	case phaseGsVMode:
		if len(d.buf) == 0 {
			return false
		}
		m := d.buf[0]
		d.consumeByte()
		switch m {
		case 65, 66:
			d.state.varMode = int(m)
			d.state.phase = phaseGsVExtra
			return true
		case 0, 1, 48, 49:
			raw := append([]byte{}, d.state.pending...)
			cmd := d.makeCmd("GS V", "選擇切紙模式", cutModeDescription(int(m)), raw)
			d.emitCommand(commands, cmd)
			d.state = newIdleState()
			return true
		default:
			d.emitMalformed(commands, "切紙模式參數錯誤")
			return true
		}

	case phaseGsVExtra:
		if len(d.buf) == 0 {
			return false
		}
		n := d.buf[0]
		d.consumeByte()
		raw := append([]byte{}, d.state.pending...)
		params := fmt.Sprintf("%s, 進紙 n=%d", cutModeDescription(d.state.varMode), n)
		cmd := d.makeCmd("GS V", "選擇切紙模式", params, raw)
		d.emitCommand(commands, cmd)
		d.state = newIdleState()
		return true

	case phaseGsV0Header:
		if len(d.buf) < 5 {
			return false
		}
		m, xL, xH, yL, yH := d.buf[0], d.buf[1], d.buf[2], d.buf[3], d.buf[4]
		d.consumeBytes(5)
		x := int(xL) + int(xH)*256
		y := int(yL) + int(yH)*256
		d.state.varDataLen = x * y
		d.state.varExtra = x
		d.state.varExtra2 = y
		d.state.varMode = int(m)
		d.state.phase = phaseGsV0Data
		return true

	case phaseGsV0Data:
		if len(d.buf) < d.state.varDataLen {
			return false
		}
		data := d.consumeBytes(d.state.varDataLen)
		raw := append([]byte{}, d.state.pending...)
		params := fmt.Sprintf("m=%d, 寬=%d 點, 高=%d 點, 資料=%d bytes",
			d.state.varMode, d.state.varExtra*8, d.state.varExtra2, len(data))
		cmd := d.makeCmd("GS v 0", "列印光柵點陣圖", params, raw)
		d.emitCommand(commands, cmd)
		d.state = newIdleState()
		return true

	case phaseGsParenLHeader:
		if len(d.buf) < 2 {
			return false
		}
		pL, pH := d.buf[0], d.buf[1]
		d.consumeBytes(2)
		d.state.varDataLen = int(pL) + int(pH)*256
		d.state.phase = phaseGsParenLData
		return true

	case phaseGsParenLData:
		if len(d.buf) < d.state.varDataLen {
			return false
		}
		data := d.consumeBytes(d.state.varDataLen)
		raw := append([]byte{}, d.state.pending...)
		params := fmt.Sprintf("資料=%d bytes", len(data))
		cmd := d.makeCmd(d.state.mnemonic, d.state.displayName, params, raw)
		d.emitCommand(commands, cmd)
		d.state = newIdleState()
		return true

	case phaseGsKType:
		if len(d.buf) == 0 {
			return false
		}
		m := d.buf[0]
		d.consumeByte()
		d.state.varMode = int(m)
		if m <= 6 {
			d.state.phase = phaseGsKFormatA
			d.state.varCollected = nil
			return true
		}
		d.state.phase = phaseGsKFormatBLen
		return true

	case phaseGsKFormatA:
		for len(d.buf) > 0 {
			b := d.buf[0]
			d.consumeByte()
			if b == 0x00 {
				raw := append([]byte{}, d.state.pending...)
				params := fmt.Sprintf("類型=%d, 資料=%q", d.state.varMode, string(d.state.varCollected))
				cmd := d.makeCmd("GS k", "列印條碼", params, raw)
				d.emitCommand(commands, cmd)
				d.state = newIdleState()
				return true
			}
			d.state.varCollected = append(d.state.varCollected, b)
		}
		return false

	case phaseGsKFormatBLen:
		if len(d.buf) == 0 {
			return false
		}
		n := d.buf[0]
		d.consumeByte()
		d.state.varDataLen = int(n)
		d.state.phase = phaseGsKFormatBData
		return true

	case phaseGsKFormatBData:
		if len(d.buf) < d.state.varDataLen {
			return false
		}
		data := d.consumeBytes(d.state.varDataLen)
		raw := append([]byte{}, d.state.pending...)
		params := fmt.Sprintf("類型=%d, 資料=%q", d.state.varMode, string(data))
		cmd := d.makeCmd("GS k", "列印條碼", params, raw)
		d.emitCommand(commands, cmd)
		d.state = newIdleState()
		return true
	}

	d.state = newIdleState()
	return true
}

// --- helpers ---

// consumeByte moves one byte from buf to the in-flight command's pending
// bytes and returns it.
func (d *Decoder) consumeByte() byte {
	b := d.buf[0]
	d.buf = d.buf[1:]
	d.state.pending = append(d.state.pending, b)
	return b
}

// consumeBytes moves n bytes from buf to pending and returns a copy of
// them.
func (d *Decoder) consumeBytes(n int) []byte {
	chunk := append([]byte{}, d.buf[:n]...)
	d.buf = d.buf[n:]
	d.state.pending = append(d.state.pending, chunk...)
	return chunk
}

func (d *Decoder) makeCmd(mnemonic, displayName, params string, raw []byte) Command {
	return Command{
		Timestamp:   d.now(),
		Mnemonic:    mnemonic,
		DisplayName: displayName,
		Params:      params,
		Raw:         raw,
	}
}

// emitMalformed closes out the in-flight command as a MALFORMED record
// carrying every byte consumed by the failed attempt, per displayName, and
// resets to Idle. MALFORMED commands never produce a response.
func (d *Decoder) emitMalformed(commands *[]Command, displayName string) {
	raw := append([]byte{}, d.state.pending...)
	cmd := d.makeCmd(fmt.Sprintf("%s (%s)", MalformedMnemonic, hexDump(raw)), displayName, "", raw)
	d.emitCommand(commands, cmd)
	d.state = newIdleState()
}

func (d *Decoder) emitCommand(commands *[]Command, cmd Command) {
	*commands = append(*commands, cmd)
	d.logCommand(cmd)
}

func (d *Decoder) emitWithResponse(commands *[]Command, responses *[][]byte, cmd Command) {
	d.emitCommand(commands, cmd)
	if resp := generateResponse(cmd); resp != nil {
		*responses = append(*responses, resp.data)
		d.logResponse(resp.data, resp.description)
	}
}

func (d *Decoder) logCommand(cmd Command) {
	d.sink.WriteLine(formatCommandLine(cmd))
}

func (d *Decoder) logResponse(data []byte, description string) {
	d.sink.WriteLine(formatResponseLine(data, description))
}

func cutModeDescription(m int) string {
	if name, ok := cutModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("模式 %d", m)
}

func joinInts(bs []byte) string {
	out := ""
	for i, b := range bs {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d", b)
	}
	return out
}
