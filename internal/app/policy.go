package app

import "github.com/dkeye/tunequiz/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	Disconnect
)

// Policy decides what happens to a connection whose send queue is full.
type Policy interface {
	OnBackPressure(conn core.ConnID, ev core.Event) BackpressureAction
}

// SimplePolicy disconnects slow consumers; they resync on reconnect.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(core.ConnID, core.Event) BackpressureAction {
	return Disconnect
}

// LenientPolicy drops the frame and keeps the connection.
type LenientPolicy struct{}

func (LenientPolicy) OnBackPressure(core.ConnID, core.Event) BackpressureAction {
	return DropFrame
}

// PolicyByName maps a config value to a policy; unknown names disconnect.
func PolicyByName(name string) Policy {
	if name == "drop" {
		return LenientPolicy{}
	}
	return SimplePolicy{}
}
