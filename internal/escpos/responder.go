package escpos

import "github.com/btb36/escpos-emulator/pkg/btb36"

// responseDescription pairs a response payload with the human-readable
// reason logged alongside it.
type responseDescription struct {
	data        []byte
	description string
}

// generateResponse is the pure function from one decoded command to the
// response it should provoke, or nil when the command does not warrant
// one. The caller (Decoder.Feed) is responsible for appending the response
// to its output list and for logging it; this function only decides
// content.
//
// GS a is a special case: it never produces a response byte string, but it
// does carry a side effect (enabling/disabling ASB) that the caller applies
// separately — generateResponse itself stays pure.
func generateResponse(cmd Command) *responseDescription {
	if cmd.Mnemonic == "ESC v" {
		return &responseDescription{[]byte{0x00}, "紙張感測器正常"}
	}

	if len(cmd.Raw) < 3 {
		return nil
	}

	n := int(cmd.Raw[2])

	switch cmd.Mnemonic {
	case "DLE EOT":
		switch n {
		case 1:
			return &responseDescription{[]byte{0x16}, "在線、無錯誤"}
		case 2:
			return &responseDescription{[]byte{0x12}, "離線狀態正常"}
		case 3:
			return &responseDescription{[]byte{0x12}, "無錯誤"}
		case 4:
			return &responseDescription{[]byte{0x12}, "紙張充足"}
		}

	case "GS I":
		switch n {
		case 1:
			return &responseDescription{[]byte(btb36.ModelName), "印表機型號"}
		case 2:
			return &responseDescription{[]byte{0x02}, "印表機類型"}
		case 3:
			return &responseDescription{[]byte(btb36.FirmwareVersion), "韌體版本"}
		}

	case "GS r":
		switch n {
		case 1:
			return &responseDescription{[]byte{0x00}, "紙張狀態正常"}
		case 2:
			return &responseDescription{[]byte{0x00}, "錢箱狀態"}
		}
	}

	return nil
}
