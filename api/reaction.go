// File: api/reaction.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reaction is the declarative effect a handler returns for one received item.

package api

// Reaction is a closed union: None, SendRaw or Many.
type Reaction interface {
	isReaction()
}

// None requests no effect.
type None struct{}

// SendRaw queues one message on the originating session.
type SendRaw struct {
	Msg Message
}

// Many applies each element in order.
type Many []Reaction

func (None) isReaction()    {}
func (SendRaw) isReaction() {}
func (Many) isReaction()    {}

// NoReaction is a convenience value for handlers with nothing to say.
var NoReaction Reaction = None{}

// Reply builds a Reaction sending every msg in order.
func Reply(msgs ...Message) Reaction {
	switch len(msgs) {
	case 0:
		return None{}
	case 1:
		return SendRaw{Msg: msgs[0]}
	}
	out := make(Many, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, SendRaw{Msg: m})
	}
	return out
}

// Flatten expands r into the ordered list of messages it sends.
func Flatten(r Reaction) []Message {
	var out []Message
	var walk func(Reaction)
	walk = func(r Reaction) {
		switch v := r.(type) {
		case SendRaw:
			if v.Msg != nil {
				out = append(out, v.Msg)
			}
		case Many:
			for _, sub := range v {
				walk(sub)
			}
		}
	}
	walk(r)
	return out
}
