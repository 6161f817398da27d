// Package serve implements a streaming NDJSON classification server: one
// JSON request per input line, one JSON response per output line.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/praetorian-inc/uaparser/pkg/devicetype"
	"github.com/praetorian-inc/uaparser/pkg/store"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

// Version is the server protocol version
const Version = "1.0.0"

// Parser classifies user agents. *engine.Store satisfies it.
type Parser interface {
	Parse(ua string) types.UserAgent
	RuleCount() int
}

// Server manages the streaming classifier
type Server struct {
	parser  Parser
	store   store.Store
	logger  *slog.Logger
	encoder *json.Encoder
	decoder *json.Decoder
}

// Option configures a Server.
type Option func(*Server)

// WithStore records every parsed user agent as a sighting in st.
func WithStore(st store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithLogger sets the logger for store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new streaming server
func NewServer(p Parser, in io.Reader, out io.Writer, opts ...Option) *Server {
	s := &Server{
		parser:  p,
		logger:  slog.New(slog.DiscardHandler),
		encoder: json.NewEncoder(out),
		decoder: json.NewDecoder(bufio.NewReader(in)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the server main loop
func (s *Server) Run(ctx context.Context) error {
	// Send ready signal
	s.sendReady()

	// Use buffered channels for incoming requests
	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Process requests until stdin closes or context cancels
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// Drain any pending requests before handling EOF
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(ctx, req) {
						return nil
					}
				default:
					// No more pending requests
					if err == io.EOF {
						return nil
					}
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(ctx, req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	switch req.Type {
	case "parse":
		s.handleParse(ctx, req.Payload)
	case "parse_batch":
		s.handleParseBatch(ctx, req.Payload)
	case "device_type":
		s.handleDeviceType(req.Payload)
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	s.send("ready", ReadyData{Version: Version, Rules: s.parser.RuleCount()})
}

func (s *Server) handleParse(ctx context.Context, payload json.RawMessage) {
	var p ParsePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("parse", err.Error())
		return
	}
	s.send("parse", s.classify(ctx, p.UserAgent))
}

func (s *Server) handleParseBatch(ctx context.Context, payload json.RawMessage) {
	var p ParseBatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("parse_batch", err.Error())
		return
	}

	data := ParseBatchData{Results: make([]ParseData, 0, len(p.UserAgents))}
	for _, ua := range p.UserAgents {
		data.Results = append(data.Results, s.classify(ctx, ua))
	}
	s.send("parse_batch", data)
}

func (s *Server) handleDeviceType(payload json.RawMessage) {
	var p ParsePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("device_type", err.Error())
		return
	}
	s.send("device_type", DeviceTypeData{DeviceType: devicetype.Classify(p.UserAgent)})
}

func (s *Server) classify(ctx context.Context, ua string) ParseData {
	parsed := s.parser.Parse(ua)
	dt := devicetype.Classify(ua)
	if s.store != nil {
		r := types.NewResult(ua, parsed, dt, time.Now().UTC())
		if err := s.store.Record(ctx, r); err != nil {
			s.logger.Warn("failed to record sighting", "error", err)
		}
	}
	return ParseData{
		UserAgent:  ua,
		Browser:    parsed.Browser,
		OS:         parsed.OS,
		Device:     parsed.Device,
		DeviceType: dt,
	}
}

func (s *Server) send(reqType string, v any) {
	data, _ := json.Marshal(v)
	s.encoder.Encode(Response{
		Success: true,
		Type:    reqType,
		Data:    data,
	})
}

func (s *Server) sendError(reqType, msg string) {
	s.encoder.Encode(Response{
		Success: false,
		Type:    reqType,
		Error:   msg,
	})
}
