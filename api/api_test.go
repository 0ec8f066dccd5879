package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type rawMessage string

func (m rawMessage) Bytes() []byte   { return []byte(m) }
func (m rawMessage) Command() string { return string(m) }
func (m rawMessage) String() string  { return string(m) }

func TestReply(t *testing.T) {
	assert.Equal(t, None{}, Reply())
	assert.Equal(t, SendRaw{Msg: rawMessage("A")}, Reply(rawMessage("A")))
	assert.Equal(t, Many{SendRaw{Msg: rawMessage("A")}, SendRaw{Msg: rawMessage("B")}},
		Reply(rawMessage("A"), rawMessage("B")))
}

func TestFlattenKeepsOrder(t *testing.T) {
	r := Many{
		SendRaw{Msg: rawMessage("A")},
		None{},
		Many{SendRaw{Msg: rawMessage("B")}, Many{SendRaw{Msg: rawMessage("C")}}},
		SendRaw{},
		SendRaw{Msg: rawMessage("D")},
	}
	assert.Equal(t, []Message{rawMessage("A"), rawMessage("B"), rawMessage("C"), rawMessage("D")}, Flatten(r))
	assert.Empty(t, Flatten(NoReaction))
	assert.Empty(t, Flatten(nil))
}

func TestErrorUnwrapsCodeAndCause(t *testing.T) {
	cause := errors.New("queue out of sync")
	err := NewError(ErrCodeInternal, "discard failed").
		WithContext("session", 3).
		WithCause(cause)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "discard failed: queue out of sync")
	assert.Contains(t, err.Error(), "session:3")

	var apiErr *Error
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "internal", apiErr.Code.String())
}

func TestErrorWithoutContext(t *testing.T) {
	err := &Error{Code: ErrCodeOK, Message: "plain"}
	assert.Equal(t, "plain", err.Error())
	assert.Empty(t, err.Unwrap())
}
