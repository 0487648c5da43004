package escpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures every line written to it, for tests that want to
// assert on the audit trail rather than just the returned commands.
type recordingSink struct {
	lines []string
}

func (r *recordingSink) WriteLine(line string) {
	r.lines = append(r.lines, line)
}

func newTestDecoder() *Decoder {
	return New(&recordingSink{})
}

func mnemonics(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Mnemonic
	}
	return out
}

// S1 — basic print: init, align, print-mode, text, then line feed.
func TestDecoder_S1_BasicPrint(t *testing.T) {
	d := newTestDecoder()
	input := []byte{0x1B, 0x40, 0x1B, 0x61, 0x01, 0x1B, 0x21, 0x00, 'H', 'e', 'l', 'l', 'o', 0x0A}

	cmds, resps := d.Feed(input)

	require.Len(t, cmds, 5)
	assert.Equal(t, []string{"ESC @", "ESC a", "ESC !", "TEXT", "LF"}, mnemonics(cmds))
	assert.Equal(t, `"Hello"`, cmds[3].Params)
	assert.Empty(t, resps)
	assert.Empty(t, d.CarryOver())
}

// S2 — status query: DLE EOT with n=1 (online, no error) replies 0x16.
func TestDecoder_S2_StatusQuery(t *testing.T) {
	d := newTestDecoder()
	cmds, resps := d.Feed([]byte{0x10, 0x04, 0x01})

	require.Len(t, cmds, 1)
	assert.Equal(t, "DLE EOT", cmds[0].Mnemonic)
	require.Len(t, resps, 1)
	assert.Equal(t, []byte{0x16}, resps[0])
}

// S3 — model query: GS I with n=1 replies with the printer model string.
func TestDecoder_S3_ModelQuery(t *testing.T) {
	d := newTestDecoder()
	cmds, resps := d.Feed([]byte{0x1D, 0x49, 0x01})

	require.Len(t, cmds, 1)
	assert.Equal(t, "GS I", cmds[0].Mnemonic)
	require.Len(t, resps, 1)
	assert.Equal(t, []byte("BT-B36"), resps[0])
}

// S4 — fragmentation: ESC @ split across two feeds must not be emitted
// until the second byte arrives, and carry-over must be empty afterward.
func TestDecoder_S4_Fragmentation(t *testing.T) {
	d := newTestDecoder()

	cmds1, resps1 := d.Feed([]byte{0x1B})
	assert.Empty(t, cmds1)
	assert.Empty(t, resps1)
	assert.Equal(t, []byte{0x1B}, d.CarryOver())

	cmds2, resps2 := d.Feed([]byte{0x40})
	require.Len(t, cmds2, 1)
	assert.Equal(t, "ESC @", cmds2[0].Mnemonic)
	assert.Empty(t, resps2)
	assert.Empty(t, d.CarryOver())
}

// S5 — mixed burst: init, status query, model query all in one call, in
// order, with responses collected in the same order their commands decoded.
func TestDecoder_S5_MixedBurst(t *testing.T) {
	d := newTestDecoder()
	input := []byte{0x1B, 0x40, 0x10, 0x04, 0x04, 0x1D, 0x49, 0x03}

	cmds, resps := d.Feed(input)

	require.Len(t, cmds, 3)
	assert.Equal(t, []string{"ESC @", "DLE EOT", "GS I"}, mnemonics(cmds))
	require.Len(t, resps, 2)
	assert.Equal(t, []byte{0x12}, resps[0])
	assert.Equal(t, []byte("0.1.3"), resps[1])
}

// S6 — unknown opcode: an ESC byte followed by an opcode absent from the
// table becomes a single MALFORMED command, and decoding resumes cleanly.
func TestDecoder_S6_UnknownOpcode(t *testing.T) {
	d := newTestDecoder()
	cmds, resps := d.Feed([]byte{0x1B, 0xFF})

	require.Len(t, cmds, 1)
	assert.Contains(t, cmds[0].Mnemonic, MalformedMnemonic)
	assert.Equal(t, []byte{0x1B, 0xFF}, cmds[0].Raw)
	assert.Empty(t, resps)
}

// Feeding the same stream one byte at a time must produce exactly the same
// commands and responses as feeding it in a single burst. This is the
// cross-packet fragmentation guarantee the whole carry-over design exists
// to uphold.
func TestDecoder_ByteAtATimeMatchesSingleBurst(t *testing.T) {
	input := []byte{
		0x1B, 0x40, // ESC @
		0x1D, 0x21, 0x11, // GS ! n=0x11
		0x1B, 0x61, 0x01, // ESC a n=1
		'H', 'i', 0x0A, // TEXT "Hi" + LF
		0x10, 0x04, 0x02, // DLE EOT n=2
		0x1D, 0x76, 0x30, 0x00, 0x01, 0x00, 0x01, 0x00, 0xFF, // GS v 0, 1 byte wide, 1 row
		0x1B, 0xFE, // unknown ESC opcode
	}

	burst := newTestDecoder()
	burstCmds, burstResps := burst.Feed(input)

	fragmented := newTestDecoder()
	var fragCmds []Command
	var fragResps [][]byte
	for _, b := range input {
		cmds, resps := fragmented.Feed([]byte{b})
		fragCmds = append(fragCmds, cmds...)
		fragResps = append(fragResps, resps...)
	}

	require.Equal(t, len(burstCmds), len(fragCmds))
	for i := range burstCmds {
		assert.Equal(t, burstCmds[i].Mnemonic, fragCmds[i].Mnemonic, "command %d mnemonic", i)
		assert.Equal(t, burstCmds[i].Raw, fragCmds[i].Raw, "command %d raw", i)
		assert.Equal(t, burstCmds[i].Params, fragCmds[i].Params, "command %d params", i)
	}
	assert.Equal(t, burstResps, fragResps)
	assert.Empty(t, burst.CarryOver())
	assert.Empty(t, fragmented.CarryOver())
}

// A run of text split across two feed calls, with no control byte in
// between, must still merge into a single TEXT command once the boundary
// byte finally arrives.
func TestDecoder_TextAccumulatorSurvivesAcrossFeeds(t *testing.T) {
	d := newTestDecoder()

	cmds1, _ := d.Feed([]byte("Hel"))
	assert.Empty(t, cmds1)

	cmds2, _ := d.Feed([]byte("lo"))
	assert.Empty(t, cmds2)

	cmds3, _ := d.Feed([]byte{0x0A})
	require.Len(t, cmds3, 2)
	assert.Equal(t, "TEXT", cmds3[0].Mnemonic)
	assert.Equal(t, `"Hello"`, cmds3[0].Params)
	assert.Equal(t, "LF", cmds3[1].Mnemonic)
}

// GS V with an out-of-range mode byte is malformed rather than silently
// accepted.
func TestDecoder_MalformedCutMode(t *testing.T) {
	d := newTestDecoder()
	cmds, resps := d.Feed([]byte{0x1D, 0x56, 0x7F})

	require.Len(t, cmds, 1)
	assert.Contains(t, cmds[0].Mnemonic, MalformedMnemonic)
	assert.Empty(t, resps)
}

// ESC * with an out-of-range mode byte is malformed; the three header bytes
// are captured and decoding resumes at the very next byte.
func TestDecoder_MalformedBitImageMode(t *testing.T) {
	d := newTestDecoder()
	cmds, _ := d.Feed([]byte{0x1B, 0x2A, 0x05, 0x01, 0x00, 'X', 0x0A})

	require.Len(t, cmds, 3)
	assert.Contains(t, cmds[0].Mnemonic, MalformedMnemonic)
	assert.Equal(t, []byte{0x1B, 0x2A, 0x05, 0x01, 0x00}, cmds[0].Raw)
	assert.Equal(t, "TEXT", cmds[1].Mnemonic)
	assert.Equal(t, "LF", cmds[2].Mnemonic)
}

// An empty feed is a no-op: no commands, no responses, no panic.
func TestDecoder_EmptyFeed(t *testing.T) {
	d := newTestDecoder()
	cmds, resps := d.Feed(nil)
	assert.Empty(t, cmds)
	assert.Empty(t, resps)
}

// A barcode in Format A (type <= 6, NUL-terminated data) decodes as one
// command whose raw bytes include the terminator.
func TestDecoder_BarcodeFormatA(t *testing.T) {
	d := newTestDecoder()
	cmds, _ := d.Feed([]byte{0x1D, 0x6B, 0x02, '1', '2', '3', 0x00})

	require.Len(t, cmds, 1)
	assert.Equal(t, "GS k", cmds[0].Mnemonic)
	assert.Equal(t, []byte{0x1D, 0x6B, 0x02, '1', '2', '3', 0x00}, cmds[0].Raw)
}

// A barcode in Format B (type > 6, length-prefixed data) decodes as one
// command once the declared number of data bytes has arrived.
func TestDecoder_BarcodeFormatB(t *testing.T) {
	d := newTestDecoder()
	cmds, _ := d.Feed([]byte{0x1D, 0x6B, 0x49, 0x03, '1', '2', '3'})

	require.Len(t, cmds, 1)
	assert.Equal(t, "GS k", cmds[0].Mnemonic)
	assert.Equal(t, 7, len(cmds[0].Raw))
}

// Reset clears carry-over and the text accumulator so a fresh session can
// reuse the same Decoder.
func TestDecoder_Reset(t *testing.T) {
	d := newTestDecoder()
	d.Feed([]byte{0x1B})
	require.NotEmpty(t, d.CarryOver())

	d.Reset()
	assert.Empty(t, d.CarryOver())

	cmds, _ := d.Feed([]byte{0x40})
	assert.Empty(t, cmds) // 0x40 alone in Idle is plain text, not a command
}
