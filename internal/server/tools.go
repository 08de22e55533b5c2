package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema shared by every tool that reads a screenshot.
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to a screenshot (PNG, JPEG or GIF)",
	}
}

// regionProperty describes an optional capture region.
func regionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x":      map[string]interface{}{"type": "integer", "minimum": 0},
			"y":      map[string]interface{}{"type": "integer", "minimum": 0},
			"width":  map[string]interface{}{"type": "integer", "minimum": 1},
			"height": map[string]interface{}{"type": "integer", "minimum": 1},
		},
		"required": []string{"x", "y", "width", "height"},
	}
}

func teamProperties(props map[string]interface{}) map[string]interface{} {
	props["home_team"] = map[string]interface{}{
		"type":        "string",
		"description": "Home team name as shown in overlays. Defaults to the configured home team",
	}
	props["away_team"] = map[string]interface{}{
		"type":        "string",
		"description": "Away team name as shown in overlays. Defaults to the configured away team",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Detection
		{
			Name:        "detect_text",
			Description: "Classify overlay text as a goal, kickoff or match end event. Returns the detection result with confidence, team and score.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": teamProperties(map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Recognized overlay text, e.g. \"GOAL FOR ARSENAL\" or \"Full Time 3-1\"",
					},
					"languages": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Phrase languages to match (english, spanish, portuguese, french, german, italian or ISO codes). Defaults to the server's languages",
					},
				}),
				"required": []string{"text"},
			},
		},
		{
			Name:        "detect_image",
			Description: "Run the full detection chain on a screenshot: preprocess, OCR and classify. Fallback extraction strategies are tried in order until one yields an event.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": teamProperties(map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Capture region within the screenshot. Defaults to the whole image"),
					"all_strategies": map[string]interface{}{
						"type":        "boolean",
						"description": "Recognize every strategy instead of stopping at the first event. Default false",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},

		// Preprocessing
		{
			Name:        "preprocess_image",
			Description: "Convert a screenshot region into the binary raster the OCR engine sees. Returns a base64 PNG plus the threshold used.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Region to preprocess. Defaults to the whole image"),
					"threshold": map[string]interface{}{
						"type":        "integer",
						"minimum":     0,
						"maximum":     255,
						"description": "Manual threshold. Omit for Otsu's automatic threshold",
					},
					"denoise": map[string]interface{}{
						"type":        "boolean",
						"description": "Apply a morphological opening after binarization",
					},
					"strategy": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"primary", "channel-red", "channel-green", "channel-blue", "sobel"},
						"description": "Extraction strategy. Default primary",
					},
				},
				"required": []string{"path"},
			},
		},

		// Region setup
		{
			Name:        "region_preview",
			Description: "Draw the capture region on a full screenshot to check that overlay text falls inside it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Capture region in screenshot coordinates"),
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Coordinate grid spacing in pixels, 0 disables. Default 100",
						"default":     100,
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as #RRGGBB. Default #FF0000",
						"default":     "#FF0000",
					},
				},
				"required": []string{"path", "region"},
			},
		},
		{
			Name:        "suggest_regions",
			Description: "Find areas of a full screenshot that look like overlay banners, as candidate capture regions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Minimum confidence (0-1). Default 0.5",
						"default":     0.5,
					},
					"max_results": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum regions to return. Default 10",
						"default":     10,
					},
				},
				"required": []string{"path"},
			},
		},

		// OCR
		{
			Name:        "ocr_words",
			Description: "Recognize words with bounding boxes in a preprocessed screenshot region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Region to recognize. Defaults to the whole image"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ocr_info",
			Description: "Report the OCR engine version, languages and settings.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Teams
		{
			Name:        "team_match",
			Description: "Check whether an OCR fragment names a team from the team database, using normalized exact or token-subset matching.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"league": map[string]interface{}{
						"type":        "string",
						"description": "League key, e.g. \"epl\"",
					},
					"key": map[string]interface{}{
						"type":        "string",
						"description": "Team key within the league, e.g. \"man-utd\"",
					},
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Detected team fragment, e.g. \"MAN UNITED FC\"",
					},
				},
				"required": []string{"league", "key", "text"},
			},
		},

		// Pipeline
		{
			Name:        "pipeline_status",
			Description: "Report the live detection pipeline state, last event and tick latency statistics.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
