// internal/model/printer.go
package model

// ConnectionStatus represents the printer connection state machine.
// It is process-local state: it is never persisted and resets to
// DISCONNECTED whenever the manager is constructed.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "DISCONNECTED"
	StatusConnecting   ConnectionStatus = "CONNECTING"
	StatusConnected    ConnectionStatus = "CONNECTED"
	StatusError        ConnectionStatus = "ERROR"
)

// TransportKind represents how the agent reaches a printer
type TransportKind string

const (
	TransportBluetooth TransportKind = "BLUETOOTH"
	TransportSerial    TransportKind = "SERIAL"
	TransportWeb       TransportKind = "WEB"
)

// PrinterDevice identifies a discovered or saved printer. Address is the
// stable identity key: equality checks, saved-printer matching and scan
// de-duplication all compare addresses, never names.
type PrinterDevice struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// SameAddress reports whether two devices refer to the same printer
func (d PrinterDevice) SameAddress(other PrinterDevice) bool {
	return d.Address == other.Address
}
