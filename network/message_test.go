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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/protocol"
)

var testMagic = config.Mainnet.NetworkMagic

func roundTrip(t *testing.T, m Message) Message {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, testMagic, m))
	back, err := ReadMessage(&buf, testMagic)
	require.NoError(t, err)
	return back
}

func TestMessageFrameRoundTrip(t *testing.T) {
	// A plain broadcast message.
	m := Message{Type: protocol.BlockMsg, Payload: []byte("block bytes")}
	require.Equal(t, m, roundTrip(t, m))

	// A request with an id.
	m = Message{Type: protocol.GetBlockMsg, HasID: true, ID: 42, Payload: []byte{1, 2, 3}}
	require.Equal(t, m, roundTrip(t, m))

	// An empty payload carries no checksum and decodes to nil.
	m = Message{Type: protocol.GetPeersMsg, HasID: true, ID: 7}
	require.Equal(t, m, roundTrip(t, m))
}

func TestMessageResponseKeepsID(t *testing.T) {
	req := Message{Type: protocol.GetSignaturesMsg, HasID: true, ID: 9}
	resp := req.Response(EncodeSignatures(nil), protocol.SignaturesMsg)
	require.True(t, resp.HasID)
	require.Equal(t, req.ID, resp.ID)
	require.Equal(t, protocol.SignaturesMsg, resp.Type)
}

func TestMessageChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, testMagic, Message{Type: protocol.BlockMsg, Payload: []byte("payload")}))

	// Flip one payload bit; the frame must be rejected, not repaired.
	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0x01
	_, err := ReadMessage(bytes.NewReader(raw), testMagic)
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestMessageBadMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, testMagic, Message{Type: protocol.PingMsg}))
	_, err := ReadMessage(&buf, config.Testnet.NetworkMagic)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestMessageMalformedFrames(t *testing.T) {
	// A hasId byte other than 0 or 1.
	enc := protocol.NewEncoder(16)
	enc.Fixed(testMagic[:])
	enc.Int32(int32(protocol.PingMsg))
	enc.Byte(2)
	_, err := ReadMessage(bytes.NewReader(enc.Bytes()), testMagic)
	require.Error(t, err)

	// A declared payload length beyond the cap.
	enc = protocol.NewEncoder(16)
	enc.Fixed(testMagic[:])
	enc.Int32(int32(protocol.BlockMsg))
	enc.Byte(0)
	enc.Int32(MaxPayloadLength + 1)
	_, err = ReadMessage(bytes.NewReader(enc.Bytes()), testMagic)
	require.Error(t, err)

	// A negative declared length.
	enc = protocol.NewEncoder(16)
	enc.Fixed(testMagic[:])
	enc.Int32(int32(protocol.BlockMsg))
	enc.Byte(0)
	enc.Int32(-1)
	_, err = ReadMessage(bytes.NewReader(enc.Bytes()), testMagic)
	require.Error(t, err)

	// A frame cut off mid-payload.
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, testMagic, Message{Type: protocol.BlockMsg, Payload: []byte("payload")}))
	_, err = ReadMessage(bytes.NewReader(buf.Bytes()[:buf.Len()-2]), testMagic)
	require.Error(t, err)
}

func TestPayloadCodecs(t *testing.T) {
	h, err := DecodeHeight(EncodeHeight(12345))
	require.NoError(t, err)
	require.Equal(t, basics.Height(12345), h)
	_, err = DecodeHeight([]byte{1, 2})
	require.Error(t, err)
	_, err = DecodeHeight(append(EncodeHeight(1), 0))
	require.Error(t, err)

	sig := crypto.Signature{1, 2, 3}
	back, err := DecodeSignature(EncodeSignature(sig))
	require.NoError(t, err)
	require.Equal(t, sig, back)
	_, err = DecodeSignature(make([]byte, crypto.SignatureSize-1))
	require.Error(t, err)

	sigs := []crypto.Signature{{1}, {2}, {3}}
	backSigs, err := DecodeSignatures(EncodeSignatures(sigs))
	require.NoError(t, err)
	require.Equal(t, sigs, backSigs)
	empty, err := DecodeSignatures(EncodeSignatures(nil))
	require.NoError(t, err)
	require.Empty(t, empty)

	// A hostile count over a short body fails without allocating.
	enc := protocol.NewEncoder(4)
	enc.Int32(1 << 24)
	_, err = DecodeSignatures(enc.Bytes())
	require.Error(t, err)

	addrs := []string{"10.0.0.1:9084", "peer.example.com:9084"}
	backAddrs, err := DecodePeers(EncodePeers(addrs))
	require.NoError(t, err)
	require.Equal(t, addrs, backAddrs)

	v := Version{Version: "go-qora/1.0", Height: 77}
	backV, err := DecodeVersion(EncodeVersion(v))
	require.NoError(t, err)
	require.Equal(t, v, backV)

	id := [NodeIDLength]byte{9, 8, 7}
	backID, err := DecodeNodeID(EncodeNodeID(id))
	require.NoError(t, err)
	require.Equal(t, id, backID)
	_, err = DecodeNodeID([]byte{1})
	require.Error(t, err)
}
