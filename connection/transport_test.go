//go:build linux

package connection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-irc/api"
	"github.com/momentics/hioload-irc/codec"
	"github.com/momentics/hioload-irc/fake"
)

const ioTimeout = 5 * time.Second

// receiveEventually polls Receive until a message or a non-transient error arrives.
func receiveEventually(t *testing.T, c Connection) (api.Message, error) {
	t.Helper()
	deadline := time.Now().Add(ioTimeout)
	for time.Now().Before(deadline) {
		msg, err := c.Receive()
		if err != nil && IsTransient(err) {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		return msg, err
	}
	t.Fatal("no message received")
	return nil, nil
}

func TestPlaintextRoundTrip(t *testing.T) {
	srv, err := fake.NewServer(nil)
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()
	p, err := DialPlaintext(ctx, srv.Addr())
	require.NoError(t, err)
	defer p.Close()

	peer, err := srv.Accept(ioTimeout)
	require.NoError(t, err)

	_, err = p.Receive()
	assert.True(t, IsTransient(err), "nothing sent yet, got %v", err)

	require.NoError(t, p.Send(codec.MustParse("NICK tester")))
	line, err := peer.ReadLine(ioTimeout)
	require.NoError(t, err)
	assert.Equal(t, "NICK tester", line)

	require.NoError(t, peer.WriteLine(":irc.test 001 tester :Welcome"))
	msg, err := receiveEventually(t, p)
	require.NoError(t, err)
	assert.Equal(t, "001", msg.Command())

	addr, err := p.PeerAddr()
	require.NoError(t, err)
	assert.Equal(t, srv.Addr(), addr.String())

	fd, err := p.Fd()
	require.NoError(t, err)
	assert.Greater(t, fd, 0)
}

func TestPlaintextEOFIsNoMessage(t *testing.T) {
	srv, err := fake.NewServer(nil)
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()
	p, err := DialPlaintext(ctx, srv.Addr())
	require.NoError(t, err)
	defer p.Close()

	peer, err := srv.Accept(ioTimeout)
	require.NoError(t, err)
	require.NoError(t, peer.WriteRaw("PING :last\r\n"))
	require.NoError(t, peer.Close())

	msg, err := receiveEventually(t, p)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "PING", msg.Command())

	msg, err = receiveEventually(t, p)
	assert.NoError(t, err)
	assert.Nil(t, msg)
}

func TestTLSRoundTrip(t *testing.T) {
	serverCfg, clientCfg, err := fake.SelfSignedTLS()
	require.NoError(t, err)
	srv, err := fake.NewServer(serverCfg)
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()
	c, err := DialTLS(ctx, srv.Addr(), clientCfg)
	require.NoError(t, err)
	defer c.Close()

	peer, err := srv.Accept(ioTimeout)
	require.NoError(t, err)

	require.NoError(t, c.Send(codec.MustParse("USER bot 8 * :Real Name")))
	line, err := peer.ReadLine(ioTimeout)
	require.NoError(t, err)
	assert.Equal(t, "USER bot 8 * :Real Name", line)

	require.NoError(t, peer.WriteLine("PING :a"))
	require.NoError(t, peer.WriteLine("PING :b"))

	first, err := receiveEventually(t, c)
	require.NoError(t, err)
	second, err := receiveEventually(t, c)
	require.NoError(t, err)
	assert.Equal(t, "PING :a", string(first.Bytes()))
	assert.Equal(t, "PING :b", string(second.Bytes()))

	assert.NotZero(t, c.ConnectionState().Version)
}

func TestTLSHandshakeFailsOnUntrustedCert(t *testing.T) {
	serverCfg, _, err := fake.SelfSignedTLS()
	require.NoError(t, err)
	_, otherClient, err := fake.SelfSignedTLS()
	require.NoError(t, err)

	srv, err := fake.NewServer(serverCfg)
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()
	_, err = DialTLS(ctx, srv.Addr(), otherClient)
	assert.Error(t, err)
}

func TestGenericConnectionDispatch(t *testing.T) {
	var zero GenericConnection
	assert.Equal(t, KindNone, zero.Kind())
	assert.ErrorIs(t, zero.Send(codec.MustParse("PING")), ErrNoTransport)
	_, err := zero.Receive()
	assert.ErrorIs(t, err, ErrNoTransport)
	_, err = zero.Fd()
	assert.ErrorIs(t, err, ErrNoTransport)

	srv, err := fake.NewServer(nil)
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()
	p, err := DialPlaintext(ctx, srv.Addr())
	require.NoError(t, err)

	g := FromPlaintext(p)
	defer g.Close()
	assert.Equal(t, KindPlaintext, g.Kind())
	assert.Equal(t, "plaintext", g.Kind().String())

	peer, err := srv.Accept(ioTimeout)
	require.NoError(t, err)
	require.NoError(t, g.Send(codec.MustParse("JOIN #go")))
	line, err := peer.ReadLine(ioTimeout)
	require.NoError(t, err)
	assert.Equal(t, "JOIN #go", line)
}
