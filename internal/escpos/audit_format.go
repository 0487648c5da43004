package escpos

import "fmt"

// maxHexDisplay caps how many raw bytes a CMD or RSP audit line shows
// inline; a raster or barcode payload can run to tens of kilobytes and would
// otherwise flood the log with no diagnostic benefit. PKT lines are not
// capped and always carry the full burst.
const maxHexDisplay = 32

func displayHex(raw []byte) string {
	if len(raw) <= maxHexDisplay {
		return hexDump(raw)
	}
	return hexDump(raw[:maxHexDisplay]) + " ..."
}

// formatPacketLine renders one "PKT" audit record: a raw transport burst as
// it arrived, before any decoding.
func formatPacketLine(data []byte) string {
	return fmt.Sprintf("PKT  received %d bytes: %s", len(data), hexDump(data))
}

// formatCommandLine renders one "CMD" audit record for a fully decoded
// command, including its human-readable display name and parameter summary.
func formatCommandLine(cmd Command) string {
	return fmt.Sprintf("CMD  %-12s %-25s %s | %s",
		cmd.Mnemonic, cmd.DisplayName, cmd.Params, displayHex(cmd.Raw))
}

// formatResponseLine renders one "RSP" audit record for a reply the
// decoder queued back to the transport.
func formatResponseLine(data []byte, description string) string {
	return fmt.Sprintf("RSP  → response %s | %s", description, displayHex(data))
}
