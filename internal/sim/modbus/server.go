// internal/sim/modbus/server.go

// Package modbus implements the Modbus TCP server side of the
// simulator: MBAP framing plus the small function-code surface a
// telemetry poller exercises. goburrow/modbus only speaks the client
// role, so the server frames by hand.
package modbus

import (
	"encoding/binary"
	"io"
	"log"
	"net"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"

	"github.com/tamzrod/bms-telemetry/internal/sim"
)

type Config struct {
	Listen   string
	Identity Identity
}

// Server accepts Modbus TCP clients and answers them from one shared
// register block. It is single-device: requests are honored whatever
// unit id they carry, and the response echoes it back.
type Server struct {
	ln    net.Listener
	alive *alive.Alive
	pdus  handler
}

// NewServer binds the listen address and starts serving.
func NewServer(cfg Config, store *sim.Block) (*Server, error) {
	if cfg.Listen == "" {
		return nil, errors.New("sim modbus: listen address required")
	}
	if store == nil {
		return nil, errors.New("sim modbus: register block required")
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, errors.Annotatef(err, "listen %s", cfg.Listen)
	}

	s := &Server{
		ln:    ln,
		alive: alive.NewAlive(),
		pdus:  handler{store: store, identity: cfg.Identity},
	}
	s.alive.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr is the bound listen address, useful after listening on ":0".
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Close stops accepting, disconnects clients and waits for the
// connection goroutines to finish.
func (s *Server) Close() error {
	s.alive.Stop()
	err := s.ln.Close()
	s.alive.Wait()
	return errors.Annotate(err, "close listener")
}

func (s *Server) acceptLoop() {
	defer s.alive.Done()
	for {
		conn, err := s.ln.Accept()
		if !s.alive.IsRunning() {
			if err == nil {
				_ = conn.Close()
			}
			return
		}
		if err != nil {
			log.Printf("simulator: accept: %v", err)
			s.alive.Stop()
			return
		}

		if !s.alive.Add(1) {
			_ = conn.Close()
			return
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.alive.Done()
	defer conn.Close()

	// Unblock the read loop when the server stops.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-s.alive.StopChan():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		f, err := readFrame(conn)
		if err != nil {
			if err != io.EOF && s.alive.IsRunning() {
				log.Printf("simulator: conn %s: %v", conn.RemoteAddr(), err)
			}
			return
		}
		f.pdu = s.pdus.handle(f.pdu)
		if err := writeFrame(conn, f); err != nil {
			if s.alive.IsRunning() {
				log.Printf("simulator: conn %s: %v", conn.RemoteAddr(), err)
			}
			return
		}
	}
}

// ---- MBAP framing ----

// frame is one ADU minus the fixed MBAP fields the server reconstructs
// on the way out: the transaction id and unit id ride through, the
// protocol id is always zero and the length is derived.
type frame struct {
	tid  uint16
	unit byte
	pdu  []byte
}

func readFrame(r io.Reader) (frame, error) {
	var head [mbapHeaderLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		// io.EOF here is a clean close between frames.
		return frame{}, err
	}

	tid := binary.BigEndian.Uint16(head[0:2])
	pid := binary.BigEndian.Uint16(head[2:4])
	length := binary.BigEndian.Uint16(head[4:6])
	if pid != 0 {
		return frame{}, errors.Errorf("bad protocol id %d", pid)
	}
	// length counts the unit id plus the PDU.
	if length < 2 || int(length) > maxADULen-6 {
		return frame{}, errors.Errorf("bad frame length %d", length)
	}

	pdu := make([]byte, length-1)
	if _, err := io.ReadFull(r, pdu); err != nil {
		return frame{}, errors.Annotate(err, "read frame body")
	}
	return frame{tid: tid, unit: head[6], pdu: pdu}, nil
}

func writeFrame(w io.Writer, f frame) error {
	adu := make([]byte, mbapHeaderLen+len(f.pdu))
	binary.BigEndian.PutUint16(adu[0:2], f.tid)
	binary.BigEndian.PutUint16(adu[4:6], uint16(len(f.pdu)+1))
	adu[6] = f.unit
	copy(adu[mbapHeaderLen:], f.pdu)

	_, err := w.Write(adu)
	return errors.Annotate(err, "write frame")
}
