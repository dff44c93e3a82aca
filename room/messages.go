package room

import (
	"errors"

	"drivesim/protocol"
)

var (
	ErrSessionOccupied = errors.New("session already has a driver")
	ErrDriverGone      = errors.New("driver connection failed while joining")
)

type Conn interface {
	Send([]byte) error
	Close() error
}

// Join: issued once after hello parsed
type Join struct {
	Conn  Conn
	Name  string
	Reply chan<- JoinResult
}

type JoinResult struct {
	SessionID string
	Err       error
}

// Input: latest keys and pad sample from the page; last one wins
type Input struct {
	Input protocol.Input
}

// Devices: the page's pad list, about once a second
type Devices struct {
	Pads []protocol.PadInfo
}

// Leave: issued on disconnect
type Leave struct{}
