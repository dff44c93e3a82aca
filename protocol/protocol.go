package protocol

import (
	"encoding/json"
)

const ProtocolVersion = 1

const (
	MsgHello   = "hello"
	MsgInput   = "input"
	MsgDevices = "devices"
	MsgWelcome = "welcome"
	MsgState   = "state"
	MsgError   = "error"
)

// Rates are per second. The browser renders at display refresh, so the sim
// ticks and broadcasts at the same rate; pad discovery is polled slowly.
const (
	SimTickHz      = 60
	ClientInputHz  = 60
	BroadcastHz    = 60
	DeviceReportHz = 1
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
