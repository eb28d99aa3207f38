// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortPacket is returned by Decode for truncated packets.
var ErrShortPacket = errors.New("udp: short packet")

// Packet is a decoded envelope packet.
type Packet struct {
	Seq       uint32
	Timestamp int64
	Upper     []float32
	Lower     []float32
}

// Decode parses a packet produced by UDPPublisher.
func Decode(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, ErrShortPacket
	}
	p := Packet{
		Seq:       binary.BigEndian.Uint32(b[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(b[4:12])),
	}
	n := int(binary.BigEndian.Uint16(b[12:14]))
	body := b[HeaderSize:]
	if len(body) != 8*n {
		return Packet{}, fmt.Errorf("%w: %d points need %d bytes, got %d", ErrShortPacket, n, 8*n, len(body))
	}

	p.Upper = make([]float32, n)
	p.Lower = make([]float32, n)
	for i := range n {
		p.Upper[i] = math.Float32frombits(binary.BigEndian.Uint32(body[4*i:]))
		p.Lower[i] = math.Float32frombits(binary.BigEndian.Uint32(body[4*(n+i):]))
	}
	return p, nil
}
