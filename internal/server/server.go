package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/goalhorn/internal/detection"
	"github.com/ironsheep/goalhorn/internal/imaging"
	"github.com/ironsheep/goalhorn/internal/ocr"
	"github.com/ironsheep/goalhorn/internal/pipeline"
	"github.com/ironsheep/goalhorn/internal/teams"
)

// Version is reported in the initialize handshake.
var Version = "0.1.0"

// Recognizer is the OCR engine used by the image tools. *ocr.Tesseract
// satisfies it.
type Recognizer interface {
	ocr.Recognizer
	Info() ocr.Info
}

// WordRecognizer is implemented by engines that report word boxes.
type WordRecognizer interface {
	RecognizeWords(ctx context.Context, raster *imaging.BinaryRaster) ([]ocr.Word, error)
}

// Options wires the server to the rest of goalhorn. Every field is
// optional; tools whose dependency is missing return an error.
type Options struct {
	Preprocessor *imaging.Preprocessor
	Classifiers  *detection.ClassifierSet
	Recognizer   Recognizer
	Teams        teams.Lookup
	Status       func() pipeline.Status
	Logger       *slog.Logger

	// HomeTeam and AwayTeam are the default team names for detect tools.
	HomeTeam string
	AwayTeam string
}

// Server handles MCP protocol communication
type Server struct {
	cache       *imaging.ImageCache
	pre         *imaging.Preprocessor
	classifiers *detection.ClassifierSet
	recognizer  Recognizer
	teams       teams.Lookup
	status      func() pipeline.Status
	logger      *slog.Logger
	homeTeam    string
	awayTeam    string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(opts Options) *Server {
	s := &Server{
		cache:       imaging.NewImageCache(),
		pre:         opts.Preprocessor,
		classifiers: opts.Classifiers,
		recognizer:  opts.Recognizer,
		teams:       opts.Teams,
		status:      opts.Status,
		logger:      opts.Logger,
		homeTeam:    opts.HomeTeam,
		awayTeam:    opts.AwayTeam,
	}
	if s.pre == nil {
		s.pre = imaging.NewPreprocessor(imaging.Options{})
	}
	if s.classifiers == nil {
		s.classifiers = detection.NewClassifierSet(detection.DefaultCatalog())
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve handles newline-delimited JSON-RPC requests from in until EOF.
func (s *Server) Serve(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.Debug("mcp request", "method", req.Method)
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "goalhorn",
				"version": Version,
			},
		},
	}
}
