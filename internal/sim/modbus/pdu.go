// internal/sim/modbus/pdu.go
package modbus

import (
	"encoding/binary"

	"github.com/tamzrod/bms-telemetry/internal/sim"
)

// Function codes served by the simulator.
const (
	fcReadHoldingRegisters   = 0x03
	fcWriteSingleRegister    = 0x06
	fcWriteMultipleRegisters = 0x10
	fcEncapsulatedInterface  = 0x2B
)

// Exception codes per the Modbus application protocol.
const (
	exIllegalFunction    = 0x01
	exIllegalDataAddress = 0x02
	exIllegalDataValue   = 0x03
)

const (
	mbapHeaderLen = 7
	maxADULen     = 260

	maxReadQuantity  = 125
	maxWriteQuantity = 123

	meiReadDeviceID = 0x0E

	// Regular identification stream plus individual object access.
	conformityLevel = 0x82
)

type handler struct {
	store    *sim.Block
	identity Identity
}

// handle maps one request PDU to one response PDU. Malformed or
// unsupported requests come back as exception responses; the stream
// stays usable.
func (h *handler) handle(pdu []byte) []byte {
	fc := pdu[0]
	switch fc {
	case fcReadHoldingRegisters:
		return h.readHolding(pdu)
	case fcWriteSingleRegister:
		return h.writeSingle(pdu)
	case fcWriteMultipleRegisters:
		return h.writeMultiple(pdu)
	case fcEncapsulatedInterface:
		return h.readDeviceID(pdu)
	default:
		return exception(fc, exIllegalFunction)
	}
}

func exception(fc, code byte) []byte {
	return []byte{fc | 0x80, code}
}

func (h *handler) readHolding(pdu []byte) []byte {
	if len(pdu) != 5 {
		return exception(pdu[0], exIllegalDataValue)
	}
	addr := binary.BigEndian.Uint16(pdu[1:3])
	qty := binary.BigEndian.Uint16(pdu[3:5])
	if qty < 1 || qty > maxReadQuantity {
		return exception(pdu[0], exIllegalDataValue)
	}
	if !h.store.Covers(addr, qty) {
		return exception(pdu[0], exIllegalDataAddress)
	}

	regs, err := h.store.ReadRegs(addr, qty)
	if err != nil {
		return exception(pdu[0], exIllegalDataAddress)
	}
	resp := make([]byte, 2+2*len(regs))
	resp[0] = pdu[0]
	resp[1] = byte(2 * len(regs))
	for i, r := range regs {
		binary.BigEndian.PutUint16(resp[2+2*i:], r)
	}
	return resp
}

func (h *handler) writeSingle(pdu []byte) []byte {
	if len(pdu) != 5 {
		return exception(pdu[0], exIllegalDataValue)
	}
	addr := binary.BigEndian.Uint16(pdu[1:3])
	value := binary.BigEndian.Uint16(pdu[3:5])
	if !h.store.Covers(addr, 1) {
		return exception(pdu[0], exIllegalDataAddress)
	}
	if err := h.store.Set(addr, value); err != nil {
		return exception(pdu[0], exIllegalDataAddress)
	}

	// The response echoes the request.
	out := make([]byte, len(pdu))
	copy(out, pdu)
	return out
}

func (h *handler) writeMultiple(pdu []byte) []byte {
	if len(pdu) < 6 {
		return exception(pdu[0], exIllegalDataValue)
	}
	addr := binary.BigEndian.Uint16(pdu[1:3])
	qty := binary.BigEndian.Uint16(pdu[3:5])
	byteCount := int(pdu[5])
	if qty < 1 || qty > maxWriteQuantity || byteCount != 2*int(qty) || len(pdu) != 6+byteCount {
		return exception(pdu[0], exIllegalDataValue)
	}
	if !h.store.Covers(addr, qty) {
		return exception(pdu[0], exIllegalDataAddress)
	}

	for i := 0; i < int(qty); i++ {
		v := binary.BigEndian.Uint16(pdu[6+2*i:])
		if err := h.store.Set(addr+uint16(i), v); err != nil {
			return exception(pdu[0], exIllegalDataAddress)
		}
	}
	resp := make([]byte, 5)
	resp[0] = pdu[0]
	binary.BigEndian.PutUint16(resp[1:3], addr)
	binary.BigEndian.PutUint16(resp[3:5], qty)
	return resp
}

func (h *handler) readDeviceID(pdu []byte) []byte {
	if len(pdu) < 2 || pdu[1] != meiReadDeviceID {
		return exception(pdu[0], exIllegalFunction)
	}
	if len(pdu) != 4 {
		return exception(pdu[0], exIllegalDataValue)
	}
	readCode := pdu[2]
	objectID := pdu[3]

	var objects []identityObject
	switch readCode {
	case 0x01:
		objects = h.identity.basic()
	case 0x02, 0x03:
		objects = h.identity.regular()
	case 0x04:
		obj, ok := h.identity.object(objectID)
		if !ok {
			return exception(pdu[0], exIllegalDataAddress)
		}
		objects = []identityObject{obj}
	default:
		return exception(pdu[0], exIllegalDataValue)
	}

	// The whole catalog fits one response, so stream reads restart
	// from the first object and "more follows" is never set.
	resp := []byte{pdu[0], meiReadDeviceID, readCode, conformityLevel, 0x00, 0x00, byte(len(objects))}
	for _, obj := range objects {
		resp = append(resp, obj.id, byte(len(obj.value)))
		resp = append(resp, obj.value...)
	}
	return resp
}
