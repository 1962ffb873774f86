// Copyright (C) 2018-2025 Qora Developers.
// This file is part of go-qora
//
// go-qora is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-qora is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-qora.  If not, see <https://www.gnu.org/licenses/>.

package network

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/logging"
	"github.com/qoranode/go-qora/protocol"
)

func newTestNetwork() *Network {
	cfg := config.Local{ListenAddress: "127.0.0.1:0", MaxPeers: 8}
	return NewNetwork(cfg, config.Mainnet, logging.TestingLog(io.Discard))
}

func TestNetworkRequestResponse(t *testing.T) {
	a := newTestNetwork()
	b := newTestNetwork()

	b.RegisterHandler(protocol.GetSignaturesMsg, func(p *Peer, m Message) {
		p.Send(m.Response(EncodeSignatures([]crypto.Signature{{1}}), protocol.SignaturesMsg))
	})

	heights := make(chan basics.Height, 1)
	b.RegisterHandler(protocol.HeightMsg, func(p *Peer, m Message) {
		if h, err := DecodeHeight(m.Payload); err == nil {
			heights <- h
		}
	})

	require.NoError(t, a.Start())
	require.NoError(t, b.Start())
	defer a.Stop()
	defer b.Stop()

	require.NoError(t, a.Connect(b.listener.Addr().String()))
	require.Eventually(t, func() bool {
		return len(a.Peers()) == 1 && len(b.Peers()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	// A request is answered on the same connection with the same id.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := a.Peers()[0].Request(ctx, Message{
		Type:    protocol.GetSignaturesMsg,
		Payload: EncodeSignature(crypto.Signature{9}),
	})
	require.NoError(t, err)
	require.Equal(t, protocol.SignaturesMsg, resp.Type)
	sigs, err := DecodeSignatures(resp.Payload)
	require.NoError(t, err)
	require.Len(t, sigs, 1)

	// Broadcasts reach the peer's registered handler.
	a.Broadcast(Message{Type: protocol.HeightMsg, Payload: EncodeHeight(42)}, nil)
	select {
	case h := <-heights:
		require.Equal(t, basics.Height(42), h)
	case <-time.After(5 * time.Second):
		t.Fatal("broadcast never arrived")
	}
}

func TestNetworkDropsSelfConnection(t *testing.T) {
	a := newTestNetwork()
	require.NoError(t, a.Start())
	defer a.Stop()

	// Dialing our own listener is detected by the node id exchange and both
	// ends of the loop are dropped.
	require.NoError(t, a.Connect(a.listener.Addr().String()))
	require.Eventually(t, func() bool {
		return len(a.Peers()) == 0
	}, 5*time.Second, 10*time.Millisecond)
}
