//go:build linux

package session_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-irc/codec"
	"github.com/momentics/hioload-irc/connection"
	"github.com/momentics/hioload-irc/fake"
	"github.com/momentics/hioload-irc/session"
)

const ioTimeout = 5 * time.Second

func dial(t *testing.T) (connection.GenericConnection, *fake.Conn) {
	t.Helper()
	srv, err := fake.NewServer(nil)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()
	p, err := connection.DialPlaintext(ctx, srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	peer, err := srv.Accept(ioTimeout)
	require.NoError(t, err)
	return connection.FromPlaintext(p), peer
}

func TestStartSendsHandshakeWithDefaults(t *testing.T) {
	conn, peer := dial(t)

	s, err := session.New().Connection(conn).Nickname("gopher").Start()
	require.NoError(t, err)
	assert.Equal(t, "gopher", s.Nickname())
	assert.Equal(t, "gopher", s.Username())
	assert.Equal(t, session.DefaultRealname, s.Realname())
	assert.Empty(t, s.TakeBacklog())

	lines, err := peer.ReadLines(2, ioTimeout)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"NICK gopher",
		"USER gopher 8 * :" + session.DefaultRealname,
	}, lines)
}

func TestStartSendsPasswordFirst(t *testing.T) {
	conn, peer := dial(t)

	_, err := session.New().
		Connection(conn).
		Nickname("nick").
		Username("user").
		Realname("Real Person").
		Password("hunter2").
		Start()
	require.NoError(t, err)

	lines, err := peer.ReadLines(3, ioTimeout)
	require.NoError(t, err)
	assert.Equal(t, []string{"PASS hunter2", "NICK nick", "USER user 8 * :Real Person"}, lines)
}

// fillSocket sends filler lines until the connection pushes back and
// returns how many were accepted.
func fillSocket(t *testing.T, conn connection.GenericConnection) int {
	t.Helper()
	pad := strings.Repeat("x", 400)
	for i := 0; i < 200000; i++ {
		err := conn.Send(codec.MustParse("PRIVMSG #fill :" + strconv.Itoa(i) + " " + pad))
		if connection.IsTransient(err) {
			return i
		}
		require.NoError(t, err)
	}
	t.Fatal("socket never pushed back")
	return 0
}

func TestStartKeepsBlockedHandshakeInBacklog(t *testing.T) {
	conn, _ := dial(t)
	fillSocket(t, conn)

	s, err := session.New().Connection(conn).Nickname("gopher").Password("hunter2").Start()
	require.NoError(t, err)

	var lines []string
	for _, msg := range s.TakeBacklog() {
		lines = append(lines, msg.String())
	}
	assert.Equal(t, []string{
		"PASS hunter2",
		"NICK gopher",
		"USER gopher 8 * :" + session.DefaultRealname,
	}, lines)
	assert.Empty(t, s.TakeBacklog(), "backlog is handed out once")
}

func TestStartRequiresFields(t *testing.T) {
	_, err := session.New().Nickname("n").Start()
	assert.ErrorIs(t, err, session.ErrMissingConnection)

	_, err = session.New().Connection(connection.GenericConnection{}).Nickname("n").Start()
	assert.ErrorIs(t, err, session.ErrMissingConnection)

	conn, _ := dial(t)
	_, err = session.New().Connection(conn).Start()
	assert.ErrorIs(t, err, session.ErrMissingNickname)
}

func TestStartRejectsInvalidIdentity(t *testing.T) {
	conn, _ := dial(t)

	_, err := session.New().Connection(conn).Nickname("two words").Start()
	assert.ErrorIs(t, err, session.ErrInvalidIdentity)

	_, err = session.New().Connection(conn).Nickname("ok").Realname("line\r\nQUIT").Start()
	assert.ErrorIs(t, err, session.ErrInvalidIdentity)
}

func TestDefaultRealnameMentionsVersion(t *testing.T) {
	assert.Contains(t, session.DefaultRealname, "Connected with <")
	assert.Contains(t, session.DefaultRealname, " v")
}
