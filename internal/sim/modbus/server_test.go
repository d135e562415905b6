// internal/sim/modbus/server_test.go
package modbus

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	gomodbus "github.com/goburrow/modbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/bms-telemetry/internal/sim"
)

func startTestServer(t *testing.T) (*Server, *sim.Block) {
	t.Helper()
	b := sim.NewBlock(16)
	require.NoError(t, b.Seed(sim.DefaultSeed(1001, 1200)))

	s, err := NewServer(Config{Listen: "127.0.0.1:0", Identity: DefaultIdentity()}, b)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, b
}

func dialTestServer(t *testing.T, s *Server) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", s.Addr(), 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// roundTrip frames pdu, sends it and returns the response unit id and
// PDU, checking the MBAP echo on the way.
func roundTrip(t *testing.T, conn net.Conn, tid uint16, unit byte, pdu []byte) (byte, []byte) {
	t.Helper()
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))

	adu := make([]byte, mbapHeaderLen+len(pdu))
	binary.BigEndian.PutUint16(adu[0:2], tid)
	binary.BigEndian.PutUint16(adu[4:6], uint16(len(pdu)+1))
	adu[6] = unit
	copy(adu[mbapHeaderLen:], pdu)
	_, err := conn.Write(adu)
	require.NoError(t, err)

	var head [mbapHeaderLen]byte
	_, err = io.ReadFull(conn, head[:])
	require.NoError(t, err)
	assert.Equal(t, tid, binary.BigEndian.Uint16(head[0:2]), "transaction id echo")
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(head[2:4]), "protocol id")

	length := binary.BigEndian.Uint16(head[4:6])
	require.GreaterOrEqual(t, length, uint16(2))
	body := make([]byte, length-1)
	_, err = io.ReadFull(conn, body)
	require.NoError(t, err)
	return head[6], body
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(Config{}, sim.NewBlock(16))
	assert.Error(t, err)

	_, err = NewServer(Config{Listen: "127.0.0.1:0"}, nil)
	assert.Error(t, err)
}

func TestServer_ReadRegisters(t *testing.T) {
	s, _ := startTestServer(t)
	conn := dialTestServer(t, s)

	unit, resp := roundTrip(t, conn, 1, 0x01, readReq(0, 10))
	assert.Equal(t, byte(0x01), unit)
	require.Len(t, resp, 22)
	assert.Equal(t, byte(fcReadHoldingRegisters), resp[0])

	regs := make([]uint16, 10)
	for i := range regs {
		regs[i] = binary.BigEndian.Uint16(resp[2+2*i:])
	}
	assert.Equal(t, []uint16{1001, 1, 1200, 2300, 500, 550, 700, 1200, 0, 0}, regs)
}

func TestServer_WriteThenReadBack(t *testing.T) {
	s, b := startTestServer(t)
	conn := dialTestServer(t, s)

	// Three transactions on one connection.
	_, resp := roundTrip(t, conn, 1, 1, writeSingleReq(7, 1800))
	assert.Equal(t, writeSingleReq(7, 1800), resp)

	_, resp = roundTrip(t, conn, 2, 1, writeMultipleReq(5, []uint16{601, 702}))
	assert.Equal(t, []byte{0x10, 0x00, 0x05, 0x00, 0x02}, resp)

	_, resp = roundTrip(t, conn, 3, 1, readReq(5, 3))
	require.Len(t, resp, 8)
	assert.Equal(t, uint16(601), binary.BigEndian.Uint16(resp[2:4]))
	assert.Equal(t, uint16(702), binary.BigEndian.Uint16(resp[4:6]))
	assert.Equal(t, uint16(1800), binary.BigEndian.Uint16(resp[6:8]))

	v, err := b.Get(7)
	require.NoError(t, err)
	assert.Equal(t, uint16(1800), v)
}

func TestServer_EchoesTransactionAndUnit(t *testing.T) {
	s, _ := startTestServer(t)
	conn := dialTestServer(t, s)

	unit, _ := roundTrip(t, conn, 0xABCD, 0x11, readReq(0, 1))
	assert.Equal(t, byte(0x11), unit)
}

func TestServer_ExceptionOverWire(t *testing.T) {
	s, _ := startTestServer(t)
	conn := dialTestServer(t, s)

	_, resp := roundTrip(t, conn, 7, 1, readReq(12, 8))
	assert.Equal(t, []byte{0x83, exIllegalDataAddress}, resp)

	// The connection survives the exception.
	_, resp = roundTrip(t, conn, 8, 1, readReq(0, 1))
	assert.Equal(t, byte(fcReadHoldingRegisters), resp[0])
}

func TestServer_DeviceIdentificationOverWire(t *testing.T) {
	s, _ := startTestServer(t)
	conn := dialTestServer(t, s)

	_, resp := roundTrip(t, conn, 9, 1, []byte{0x2B, 0x0E, 0x01, 0x00})
	_, objects := parseIdentityResponse(t, resp)
	assert.Equal(t, "DemoCorp", objects[objVendorName])
}

func TestServer_GoburrowClientCompat(t *testing.T) {
	s, b := startTestServer(t)

	h := gomodbus.NewTCPClientHandler(s.Addr())
	h.Timeout = 2 * time.Second
	h.SlaveId = 1
	defer h.Close()
	client := gomodbus.NewClient(h)

	raw, err := client.ReadHoldingRegisters(0, 10)
	require.NoError(t, err)
	require.Len(t, raw, 20)
	assert.Equal(t, uint16(1001), binary.BigEndian.Uint16(raw[0:2]))

	_, err = client.WriteSingleRegister(7, 1500)
	require.NoError(t, err)
	v, err := b.Get(7)
	require.NoError(t, err)
	assert.Equal(t, uint16(1500), v)

	_, err = client.ReadHoldingRegisters(100, 5)
	require.Error(t, err)
	me, ok := err.(*gomodbus.ModbusError)
	require.True(t, ok, "expected a modbus exception, got %v", err)
	assert.Equal(t, byte(exIllegalDataAddress), me.ExceptionCode)
}

func TestServer_BadProtocolIDDropsConnection(t *testing.T) {
	s, _ := startTestServer(t)
	conn := dialTestServer(t, s)

	pdu := readReq(0, 1)
	adu := make([]byte, mbapHeaderLen+len(pdu))
	binary.BigEndian.PutUint16(adu[0:2], 1)
	binary.BigEndian.PutUint16(adu[2:4], 1) // not Modbus
	binary.BigEndian.PutUint16(adu[4:6], uint16(len(pdu)+1))
	adu[6] = 1
	copy(adu[mbapHeaderLen:], pdu)
	_, err := conn.Write(adu)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Read(make([]byte, 1))
	assert.Equal(t, io.EOF, err)
}

func TestServer_CloseUnblocksClient(t *testing.T) {
	s, _ := startTestServer(t)
	conn := dialTestServer(t, s)
	roundTrip(t, conn, 1, 1, readReq(0, 1))

	require.NoError(t, s.Close())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := conn.Read(make([]byte, 1))
	assert.Error(t, err)
}
