package vesc

import (
	"encoding/binary"
	"errors"
	"math"
)

// Command IDs understood by the motor controller.
const (
	CommSetRPM      byte = 8
	CommSetServoPos byte = 12
	CommAlive       byte = 30
)

const (
	startShort byte = 0x02
	startLong  byte = 0x03
	stop       byte = 0x03
)

// ErrBadFrame is returned when decoding something that isn't a
// complete, valid frame.
var ErrBadFrame = errors.New("bad vesc frame")

// crc16 is CRC-16/XMODEM: polynomial 0x1021, initial value 0.
func crc16(b []byte) uint16 {
	var crc uint16
	for _, c := range b {
		crc ^= uint16(c) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Frame wraps a payload for the wire: start byte, length, payload,
// checksum, stop byte.  Payloads of 256 bytes and up use the long
// form with a two byte length.
func Frame(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+6)
	if len(payload) < 256 {
		out = append(out, startShort, byte(len(payload)))
	} else {
		out = append(out, startLong)
		out = binary.BigEndian.AppendUint16(out, uint16(len(payload)))
	}
	out = append(out, payload...)
	out = binary.BigEndian.AppendUint16(out, crc16(payload))
	return append(out, stop)
}

// Unframe checks a frame and returns its payload.
func Unframe(b []byte) ([]byte, error) {
	var hdr, n int
	switch {
	case len(b) >= 2 && b[0] == startShort:
		hdr, n = 2, int(b[1])
	case len(b) >= 3 && b[0] == startLong:
		hdr, n = 3, int(binary.BigEndian.Uint16(b[1:3]))
	default:
		return nil, ErrBadFrame
	}
	if len(b) != hdr+n+3 || b[len(b)-1] != stop {
		return nil, ErrBadFrame
	}
	payload := b[hdr : hdr+n]
	if binary.BigEndian.Uint16(b[hdr+n:]) != crc16(payload) {
		return nil, ErrBadFrame
	}
	return payload, nil
}

// EncodeRPM builds the frame that sets the motor's electrical RPM.
func EncodeRPM(rpm int) []byte {
	p := []byte{CommSetRPM}
	p = binary.BigEndian.AppendUint32(p, uint32(int32(rpm)))
	return Frame(p)
}

// EncodeServoPos builds the frame that moves the steering servo.  The
// position is sent in thousandths.
func EncodeServoPos(pos float64) []byte {
	v := int16(max(math.MinInt16, min(math.MaxInt16, pos*1000)))
	p := []byte{CommSetServoPos}
	p = binary.BigEndian.AppendUint16(p, uint16(v))
	return Frame(p)
}

// EncodeAlive builds the heartbeat frame that keeps the controller
// from timing out and stopping the motor.
func EncodeAlive() []byte {
	return Frame([]byte{CommAlive})
}
