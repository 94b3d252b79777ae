// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package server

import (
	"net"
	"testing"
	"time"

	"github.com/pion/logging"
	"github.com/pion/transport/v3/vnet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webrtcstun/stun/stun"
)

// buildVNet wires a server net behind a WAN router and a peer net behind a
// NATting LAN router, so a response the server writes actually crosses a
// (virtual) network to a socket this test can read back from.
func buildVNet(t *testing.T) (*vnet.Router, *vnet.Net, *vnet.Net) {
	t.Helper()

	loggerFactory := logging.NewDefaultLoggerFactory()

	wan, err := vnet.NewRouter(&vnet.RouterConfig{
		CIDR:          "0.0.0.0/0",
		LoggerFactory: loggerFactory,
	})
	require.NoError(t, err)

	serverNet, err := vnet.NewNet(&vnet.NetConfig{StaticIP: "1.2.3.4"})
	require.NoError(t, err)
	require.NoError(t, wan.AddNet(serverNet))

	lan, err := vnet.NewRouter(&vnet.RouterConfig{
		StaticIP:      "5.6.7.8",
		CIDR:          "192.168.0.0/24",
		LoggerFactory: loggerFactory,
	})
	require.NoError(t, err)

	peerNet, err := vnet.NewNet(&vnet.NetConfig{})
	require.NoError(t, err)
	require.NoError(t, lan.AddNet(peerNet))
	require.NoError(t, wan.AddRouter(lan))
	require.NoError(t, wan.Start())

	return wan, serverNet, peerNet
}

// roundTrip sends b to dst over peerConn and returns whatever comes back
// within the timeout, decoded as a STUN response.
func roundTrip(t *testing.T, peerConn net.PacketConn, dst net.Addr, b []byte) *stun.Response {
	t.Helper()

	_, err := peerConn.WriteTo(b, dst)
	require.NoError(t, err)

	require.NoError(t, peerConn.SetReadDeadline(time.Now().Add(2*time.Second)))

	buf := make([]byte, 1500)
	n, _, err := peerConn.ReadFrom(buf)
	require.NoError(t, err)
	require.True(t, stun.IsMessage(buf[:n], false))

	resp, err := stun.Parse(append([]byte(nil), buf[:n]...))
	require.NoError(t, err)

	return resp
}

func TestServerBindingReflectsPeerAddress(t *testing.T) {
	wan, serverNet, peerNet := buildVNet(t)
	defer wan.Stop() //nolint:errcheck

	serverConn, err := serverNet.ListenPacket("udp4", "1.2.3.4:3478")
	require.NoError(t, err)

	s, err := New(Config{Conn: serverConn})
	require.NoError(t, err)
	go func() {
		_ = s.ListenAndServe()
	}()
	defer s.Close() //nolint:errcheck

	peerConn, err := peerNet.ListenPacket("udp4", "0.0.0.0:0")
	require.NoError(t, err)
	defer peerConn.Close() //nolint:errcheck

	req := stun.NewRequest()
	req.SetType(stun.NewType(stun.MethodBinding, stun.ClassRequest))
	b, err := req.Encode()
	require.NoError(t, err)

	resp := roundTrip(t, peerConn, &net.UDPAddr{IP: net.ParseIP("1.2.3.4"), Port: 3478}, b)

	assert.Equal(t, stun.ClassSuccessResponse, resp.Class())
	assert.Equal(t, stun.MethodBinding, resp.Method())
	assert.Equal(t, req.TransactionID(), resp.TransactionID())

	var xor stun.XORMappedAddress
	require.NoError(t, xor.GetFrom(resp))
	assert.Equal(t, "5.6.7.8", xor.IP.String())
}

func TestServerRejectsNonRequestClass(t *testing.T) {
	wan, serverNet, peerNet := buildVNet(t)
	defer wan.Stop() //nolint:errcheck

	serverConn, err := serverNet.ListenPacket("udp4", "1.2.3.4:3478")
	require.NoError(t, err)

	s, err := New(Config{Conn: serverConn})
	require.NoError(t, err)
	go func() {
		_ = s.ListenAndServe()
	}()
	defer s.Close() //nolint:errcheck

	peerConn, err := peerNet.ListenPacket("udp4", "0.0.0.0:0")
	require.NoError(t, err)
	defer peerConn.Close() //nolint:errcheck

	req := stun.NewRequest()
	req.SetType(stun.NewType(stun.MethodBinding, stun.ClassIndication))
	b, err := req.Encode()
	require.NoError(t, err)

	_, err = peerConn.WriteTo(b, &net.UDPAddr{IP: net.ParseIP("1.2.3.4"), Port: 3478})
	require.NoError(t, err)

	require.NoError(t, peerConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	buf := make([]byte, 1500)
	_, _, err = peerConn.ReadFrom(buf)
	assert.Error(t, err, "indication must not draw any reply")
}

func TestServerUnauthenticatedBindingChallenged(t *testing.T) {
	wan, serverNet, peerNet := buildVNet(t)
	defer wan.Stop() //nolint:errcheck

	serverConn, err := serverNet.ListenPacket("udp4", "1.2.3.4:3478")
	require.NoError(t, err)

	users := map[string][]byte{
		"alice": GenerateAuthKey("alice", "example.org", "secret"),
	}

	s, err := New(Config{
		Conn:  serverConn,
		Realm: "example.org",
		AuthHandler: func(username, realm string, _ net.Addr) ([]byte, bool) {
			key, ok := users[username]

			return key, ok
		},
	})
	require.NoError(t, err)
	go func() {
		_ = s.ListenAndServe()
	}()
	defer s.Close() //nolint:errcheck

	peerConn, err := peerNet.ListenPacket("udp4", "0.0.0.0:0")
	require.NoError(t, err)
	defer peerConn.Close() //nolint:errcheck

	req := stun.NewRequest()
	req.SetType(stun.NewType(stun.MethodBinding, stun.ClassRequest))
	b, err := req.Encode()
	require.NoError(t, err)

	resp := roundTrip(t, peerConn, &net.UDPAddr{IP: net.ParseIP("1.2.3.4"), Port: 3478}, b)

	assert.Equal(t, stun.ClassErrorResponse, resp.Class())

	var ec stun.ErrorCodeAttribute
	require.NoError(t, ec.GetFrom(resp))
	assert.Equal(t, stun.CodeUnauthorized, ec.Code)

	var realm stun.Realm
	require.NoError(t, realm.GetFrom(resp))
	assert.Equal(t, "example.org", string(realm))

	var nonce stun.Nonce
	require.NoError(t, nonce.GetFrom(resp))
	assert.NotEmpty(t, string(nonce))
}

func TestServerAuthenticatedBindingSigned(t *testing.T) {
	wan, serverNet, peerNet := buildVNet(t)
	defer wan.Stop() //nolint:errcheck

	serverConn, err := serverNet.ListenPacket("udp4", "1.2.3.4:3478")
	require.NoError(t, err)

	key := GenerateAuthKey("alice", "example.org", "secret")
	users := map[string][]byte{"alice": key}

	s, err := New(Config{
		Conn:  serverConn,
		Realm: "example.org",
		AuthHandler: func(username, realm string, _ net.Addr) ([]byte, bool) {
			k, ok := users[username]

			return k, ok
		},
	})
	require.NoError(t, err)
	go func() {
		_ = s.ListenAndServe()
	}()
	defer s.Close() //nolint:errcheck

	peerConn, err := peerNet.ListenPacket("udp4", "0.0.0.0:0")
	require.NoError(t, err)
	defer peerConn.Close() //nolint:errcheck
	serverAddr := &net.UDPAddr{IP: net.ParseIP("1.2.3.4"), Port: 3478}

	// First pass draws the 401 challenge and its NONCE/REALM.
	first := stun.NewRequest()
	first.SetType(stun.NewType(stun.MethodBinding, stun.ClassRequest))
	b, err := first.Encode()
	require.NoError(t, err)

	challenge := roundTrip(t, peerConn, serverAddr, b)
	require.Equal(t, stun.ClassErrorResponse, challenge.Class())

	var nonce stun.Nonce
	require.NoError(t, nonce.GetFrom(challenge))

	// Second pass carries the credentials and must come back authenticated
	// and integrity-protected.
	second := stun.NewRequest()
	second.SetType(stun.NewType(stun.MethodBinding, stun.ClassRequest))
	require.NoError(t, second.Add(stun.Username("alice")))
	require.NoError(t, second.Add(stun.Realm("example.org")))
	require.NoError(t, second.Add(nonce))
	require.NoError(t, second.Add(stun.MessageIntegrity(key)))
	b, err = second.Encode()
	require.NoError(t, err)

	resp := roundTrip(t, peerConn, serverAddr, b)

	assert.Equal(t, stun.ClassSuccessResponse, resp.Class())
	assert.True(t, resp.Contains(stun.AttrMessageIntegrity))
	assert.NoError(t, stun.MessageIntegrity(key).Check(resp))

	var xor stun.XORMappedAddress
	require.NoError(t, xor.GetFrom(resp))
	assert.Equal(t, "5.6.7.8", xor.IP.String())
}
