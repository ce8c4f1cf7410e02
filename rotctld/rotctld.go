// Package rotctld serves the subset of the hamlib rotctld protocol the
// bridge supports. See the PROTOCOL section of
// https://hamlib.sourceforge.net/html/rotctld.1.html.
package rotctld

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"

	"github.com/w1xm/ptz_interface/internal/metrics"
	"github.com/w1xm/ptz_interface/rotator"
)

// Server accepts rotctld connections and drives a rotator. The head is
// a single logical target, so only one client is served at a time; an
// explicit one-slot semaphore makes later connections wait rather than
// relying on the listen backlog.
type Server struct {
	r     rotator.Rotator
	mount rotator.Mount
	sem   chan struct{}
}

func NewServer(r rotator.Rotator, mount rotator.Mount) *Server {
	return &Server{
		r:     r,
		mount: mount,
		sem:   make(chan struct{}, 1),
	}
}

// Listen binds addr and serves until ctx is canceled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("rotctld listening on %v", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		log.Print("shutdown; closing rotctld socket")
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("failed to accept: %v", err)
			continue
		}
		go func() {
			select {
			case s.sem <- struct{}{}:
			case <-ctx.Done():
				conn.Close()
				return
			}
			defer func() { <-s.sem }()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	log.Printf("accepted connection from %v", conn.RemoteAddr())
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		s.dispatch(parse(scanner.Text()), conn)
	}
	if err := scanner.Err(); err != nil {
		log.Printf("reading from %v: %v", conn.RemoteAddr(), err)
	}
	log.Printf("client %v disconnected", conn.RemoteAddr())
}

type commandKind int

const (
	cmdNone commandKind = iota
	cmdGetPos
	cmdSetPos
	cmdStop
	cmdPark
	cmdUnknown
)

// command is one parsed protocol line. az and el are only meaningful
// for cmdSetPos.
type command struct {
	kind   commandKind
	az, el float64
}

// parse tokenizes one line into a command. Both the single-character
// and the \long_form spellings are accepted; anything else, including
// a recognized command with the wrong arity or non-numeric arguments,
// comes back as cmdUnknown.
func parse(line string) command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{kind: cmdNone}
	}
	switch fields[0] {
	case "p", `\get_pos`:
		if len(fields) == 1 {
			return command{kind: cmdGetPos}
		}
	case "P", `\set_pos`:
		if len(fields) != 3 {
			break
		}
		az, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			break
		}
		el, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			break
		}
		return command{kind: cmdSetPos, az: az, el: el}
	case "S", `\stop`:
		if len(fields) == 1 {
			return command{kind: cmdStop}
		}
	case "K", `\park`:
		if len(fields) == 1 {
			return command{kind: cmdPark}
		}
	}
	return command{kind: cmdUnknown}
}

func (c command) name() string {
	switch c.kind {
	case cmdGetPos:
		return "get_pos"
	case cmdSetPos:
		return "set_pos"
	case cmdStop:
		return "stop"
	case cmdPark:
		return "park"
	}
	return "unknown"
}

// dispatch interprets one command and writes its reply. Empty lines
// get no reply at all.
func (s *Server) dispatch(cmd command, conn net.Conn) {
	if cmd.kind == cmdNone {
		return
	}
	rprt := 0
	switch cmd.kind {
	case cmdGetPos:
		pan, tilt := s.r.PanTilt()
		az, el := s.mount.ToAzEl(pan, tilt)
		fmt.Fprintf(conn, "%.6f\n%.6f\n", az, el)
		metrics.Commands.WithLabelValues(cmd.name(), "ok").Inc()
		return
	case cmdSetPos:
		pan, tilt := s.mount.ToPanTilt(cmd.az, cmd.el)
		s.r.SetTargetPanTilt(pan, tilt)
	case cmdStop:
		s.r.Stop()
	case cmdPark:
		s.r.Park()
	default:
		rprt = -1
	}
	result := "ok"
	if rprt != 0 {
		result = "error"
	}
	metrics.Commands.WithLabelValues(cmd.name(), result).Inc()
	fmt.Fprintf(conn, "RPRT %d\n", rprt)
}
