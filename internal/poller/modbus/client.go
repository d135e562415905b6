// internal/poller/modbus/client.go
package modbus

import (
	"net"
	"time"

	"github.com/goburrow/modbus"
	"github.com/juju/errors"
)

// Client reads the telemetry block over Modbus TCP.
// It implements poller.Transport. The connection is established lazily
// on the first read and reused while healthy; any error tears it down
// so the next poll redials cleanly.
type Client struct {
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// Config is minimal transport config.
type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
}

// New creates a Modbus TCP client. No connection is made here: the
// device may come up after the poller, and the first read dials.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus client: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Close closes the TCP connection if one is open.
func (c *Client) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

// ReadHoldingRegisters performs one FC 3 read and unpacks the payload.
func (c *Client) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	raw, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		// Discard the connection on any failure; a half-dead socket
		// must not poison the next cycle.
		_ = c.handler.Close()
		return nil, classify(err)
	}
	if len(raw) != int(qty)*2 {
		_ = c.handler.Close()
		return nil, errors.Errorf("modbus client: response has %d bytes, want %d", len(raw), int(qty)*2)
	}
	return unpackRegisters(raw), nil
}

// classify maps transport errors into the error families the poll loop
// logs. Device exceptions pass through with their code text intact.
func classify(err error) error {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return errors.NewTimeout(err, "modbus read timed out")
	}
	return errors.Annotate(err, "modbus read")
}

// ---- helpers (pure geometry) ----

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
