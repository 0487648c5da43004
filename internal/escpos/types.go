// Package escpos implements a streaming ESC/POS command decoder and
// status-query response generator for the BT-B36 printer emulator.
package escpos

import "time"

// Command is one decoded ESC/POS instruction or one run of accumulated text.
type Command struct {
	Timestamp   time.Time
	Mnemonic    string
	DisplayName string
	Params      string
	Raw         []byte
}

// MalformedMnemonic is the prefix every malformed-command mnemonic carries,
// so callers can recognise them without string-matching the whole value.
const MalformedMnemonic = "MALFORMED"

// stateKind tags the variant currently held by parserState. Only the fields
// relevant to the active kind are meaningful; this mirrors a sum type in a
// language that has one, at the cost of an explicit discriminant.
type stateKind int

const (
	stateIdle stateKind = iota
	stateEscPrefix
	stateGsPrefix
	stateDlePrefix
	stateFsPrefix
	stateFixedParam
	stateVariableParam
)

// variablePhase identifies which variable-length command is in flight and
// how far through its own sub-protocol it has progressed. Several command
// policies (bit-image headers, raster headers, barcode Format A/B) need more
// than one phase to reach a length they can commit to.
type variablePhase int

const (
	phaseNone variablePhase = iota
	phaseEscStarHeader
	phaseEscStarData
	phaseEscDTabs
	phaseGsVMode
	phaseGsVExtra
	phaseGsV0Header
	phaseGsV0Data
	phaseGsParenLHeader
	phaseGsParenLData
	phaseGsKType
	phaseGsKFormatA
	phaseGsKFormatBLen
	phaseGsKFormatBData
)

// parserState is the tagged union described by the decoder's design: a
// discriminant plus per-variant payload fields. Fields below FixedParam are
// only valid when kind is stateFixedParam; fields below VariableParam only
// when kind is stateVariableParam.
type parserState struct {
	kind stateKind

	// pending carries every byte already consumed for the command in
	// flight (prefix, opcode and parameter bytes); it becomes the command's
	// Raw when the command is emitted.
	pending []byte

	mnemonic    string
	displayName string

	// FixedParam
	fixedNeeded int

	// VariableParam
	phase        variablePhase
	varCollected []byte // sentinel-terminated collection (ESC D, GS k Format A)
	varDataLen   int    // remaining/total raster or length-prefixed data length
	varMode      int    // first policy parameter (m), reused by several phases
	varExtra     int    // second policy parameter (n/x/y), reused by several phases
	varExtra2    int
}

func newIdleState() parserState {
	return parserState{kind: stateIdle}
}
