package escpos

import "fmt"

// describeParams renders a human-readable parameter summary for a
// fixed-length command, the way the audit trail wants it. It never fails;
// an unrecognised mnemonic or parameter value falls back to a plain hex
// dump or a "n=<value>" form.
func describeParams(mnemonic string, params []byte) string {
	if len(params) == 0 {
		return ""
	}

	switch mnemonic {
	case "ESC !":
		n := int(params[0])
		return fmt.Sprintf("n=0x%02X (%s)", n, describePrintMode(n))

	case "ESC a":
		n := int(params[0])
		if name, ok := alignmentNames[n]; ok {
			return fmt.Sprintf("n=%d (%s)", n, name)
		}
		return fmt.Sprintf("n=%d (未知 %d)", n, n)

	case "ESC d":
		return fmt.Sprintf("n=%d 行", params[0])

	case "ESC E":
		return enabledDisabled(params[0])

	case "ESC J":
		return fmt.Sprintf("n=%d 點", params[0])

	case "ESC 3":
		return fmt.Sprintf("n=%d 點", params[0])

	case "ESC -":
		n := int(params[0])
		if name, ok := underlineModeNames[n]; ok {
			return name
		}
		return fmt.Sprintf("n=%d", n)

	case "ESC M":
		n := int(params[0])
		if name, ok := fontNames[n]; ok {
			return name
		}
		return fmt.Sprintf("n=%d", n)

	case "ESC $":
		pos := int(params[0]) + int(params[1])*256
		return fmt.Sprintf("位置=%d", pos)

	case "ESC t":
		return fmt.Sprintf("碼頁=%d", params[0])

	case "ESC R":
		n := int(params[0])
		if name, ok := internationalCharsetNames[n]; ok {
			return name
		}
		return fmt.Sprintf("n=%d", n)

	case "ESC v":
		return ""

	case "ESC p":
		return fmt.Sprintf("m=%d, t1=%d", params[0], params[1])

	case "DLE EOT":
		n := int(params[0])
		if name, ok := dleEotParamNames[n]; ok {
			return fmt.Sprintf("n=%d (%s)", n, name)
		}
		return fmt.Sprintf("n=%d (未知 %d)", n, n)

	case "DLE DC4":
		return fmt.Sprintf("fn=%d, m=%d, t=%d", params[0], params[1], params[2])

	case "DLE ENQ":
		return fmt.Sprintf("n=%d", params[0])

	case "GS !":
		n := int(params[0])
		w := (n >> 4) + 1
		h := (n & 0x0F) + 1
		return fmt.Sprintf("n=0x%02X (寬%d倍, 高%d倍)", n, w, h)

	case "GS B":
		return enabledDisabled(params[0])

	case "GS H":
		n := int(params[0])
		if name, ok := hriPositionNames[n]; ok {
			return name
		}
		return fmt.Sprintf("n=%d", n)

	case "GS h":
		return fmt.Sprintf("高度=%d 點", params[0])

	case "GS w":
		return fmt.Sprintf("寬度=%d", params[0])

	case "GS f":
		n := int(params[0])
		if name, ok := fontNames[n]; ok {
			return name
		}
		return fmt.Sprintf("n=%d", n)

	case "GS a":
		return fmt.Sprintf("n=0x%02X", params[0])

	case "GS L":
		return fmt.Sprintf("左邊界=%d", int(params[0])+int(params[1])*256)

	case "GS W":
		return fmt.Sprintf("寬度=%d", int(params[0])+int(params[1])*256)

	case "GS r":
		n := int(params[0])
		if name, ok := gsRParamNames[n]; ok {
			return fmt.Sprintf("n=%d (%s)", n, name)
		}
		return fmt.Sprintf("n=%d (未知 %d)", n, n)

	case "GS I":
		n := int(params[0])
		if name, ok := gsIParamNames[n]; ok {
			return fmt.Sprintf("n=%d (%s)", n, name)
		}
		return fmt.Sprintf("n=%d (未知 %d)", n, n)

	case "FS !":
		return fmt.Sprintf("n=0x%02X", params[0])

	case "FS -":
		return enabledDisabled(params[0])

	case "FS p":
		return fmt.Sprintf("n=%d, m=%d", params[0], params[1])

	case "ESC V":
		return fmt.Sprintf("n=%d", params[0])

	case "ESC r":
		return fmt.Sprintf("n=%d", params[0])

	case "ESC B":
		return enabledDisabled(params[0])

	case "ESC G":
		return enabledDisabled(params[0])

	case "ESC {":
		return enabledDisabled(params[0])

	case "ESC c":
		return fmt.Sprintf("n=%d", params[0])
	}

	return hexDump(params)
}

func enabledDisabled(n byte) string {
	if n&1 != 0 {
		return "啟用"
	}
	return "停用"
}

// describePrintMode renders the bitmask used by ESC ! as a comma-separated
// list of the modes it turns on.
func describePrintMode(n int) string {
	if n == 0 {
		return "Font A"
	}
	var parts []string
	for _, b := range printModeBits {
		if n&b.bit != 0 {
			parts = append(parts, b.name)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("0x%02x", n)
	}
	joined := parts[0]
	for _, p := range parts[1:] {
		joined += ", " + p
	}
	return joined
}
