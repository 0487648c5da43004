// Package btb36 holds the BLE identity constants the emulator presents to
// a client: the GATT service/characteristic UUIDs and the advertised
// local name a real BT-B36 receipt printer uses. These constrain what a
// peripheral-side caller of internal/escpos must implement; the decoder
// itself has no BLE dependency.
package btb36

const (
	// AdvertisedName is the local name a BT-B36 printer advertises.
	AdvertisedName = "BT-B36"

	// ServiceUUID is the primary GATT service UUID.
	ServiceUUID = "0000ff00-0000-1000-8000-00805f9b34fb"

	// WriteCharacteristicUUID is the characteristic a client writes ESC/POS
	// command bytes to.
	WriteCharacteristicUUID = "0000ff02-0000-1000-8000-00805f9b34fb"

	// NotifyCharacteristicUUID is the characteristic status responses and
	// the default ACK are delivered on.
	NotifyCharacteristicUUID = "0000ff01-0000-1000-8000-00805f9b34fb"

	// DefaultACK is sent on the notify characteristic when a write produced
	// no scripted response but decoded at least one non-MALFORMED command.
	DefaultACK = byte(0x00)

	// ModelName is the value GS I n=1 reports.
	ModelName = "BT-B36"

	// FirmwareVersion is the value GS I n=3 reports.
	FirmwareVersion = "0.1.3"
)
