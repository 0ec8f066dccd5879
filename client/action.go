// File: client/action.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import "github.com/momentics/hioload-irc/api"

// Action is work handed to the reactor goroutine through a Handle.
// The set of actions is closed.
type Action interface {
	isAction()
}

// SendRawAction sends Msg on Session.
type SendRawAction struct {
	Session SessionID
	Msg     api.Message
}

func (SendRawAction) isAction() {}
