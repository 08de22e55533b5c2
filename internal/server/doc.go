// Package server implements the MCP (Model Context Protocol) server for goalhorn.
//
// The server lets an MCP client tune and debug detection without running the
// live pipeline: classify text, run the full OCR chain on a saved screenshot,
// inspect the binary raster the engine sees, and pick a capture region.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to stderr; stdout carries only protocol messages.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Detection:
//   - detect_text: Classify overlay text
//   - detect_image: Preprocess, recognize and classify a screenshot
//
// Preprocessing:
//   - preprocess_image: Binary raster as base64 PNG
//
// Region setup:
//   - region_preview: Draw the capture region on a screenshot
//   - suggest_regions: Find banner-like areas
//
// OCR:
//   - ocr_words: Words with bounding boxes
//   - ocr_info: Engine version and settings
//
// Teams and pipeline:
//   - team_match: Check a fragment against a stored team
//   - pipeline_status: Live pipeline state and latency
//
// Tools whose dependency was not supplied in Options (OCR engine, team
// database, running pipeline) fail with a descriptive error.
//
// # Image Caching
//
// Screenshots are cached by path and reused across tool calls for the
// lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.Options{Recognizer: tess})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
