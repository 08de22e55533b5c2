package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/goalhorn/internal/capture"
	"github.com/ironsheep/goalhorn/internal/detection"
	"github.com/ironsheep/goalhorn/internal/imaging"
	"github.com/ironsheep/goalhorn/internal/ocr"
)

// toolTimeout bounds a single OCR-backed tool call.
const toolTimeout = 30 * time.Second

var (
	errNoRecognizer = errors.New("OCR engine not configured (is Tesseract installed?)")
	errNoTeams      = errors.New("team database not configured")
	errNoPipeline   = errors.New("no detection pipeline is running in this process")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "detect_text", "detect_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	// Detection
	case "detect_text":
		return s.handleDetectText(args)
	case "detect_image":
		return s.handleDetectImage(args)

	// Preprocessing
	case "preprocess_image":
		return s.handlePreprocessImage(args)

	// Region setup
	case "region_preview":
		return s.handleRegionPreview(args)
	case "suggest_regions":
		return s.handleSuggestRegions(args)

	// OCR
	case "ocr_words":
		return s.handleOCRWords(args)
	case "ocr_info":
		return s.handleOCRInfo()

	// Teams
	case "team_match":
		return s.handleTeamMatch(args)

	// Pipeline
	case "pipeline_status":
		return s.handlePipelineStatus()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadRegion loads a screenshot and crops it to region when one is given.
func (s *Server) loadRegion(path string, region *capture.CaptureRegion) (*image.RGBA, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return img, nil
	}
	if err := region.Validate(img.Bounds()); err != nil {
		return nil, err
	}
	return imaging.CropRGBA(img, region.Rect())
}

func (s *Server) detectionContext(text, home, away string) detection.DetectionContext {
	if home == "" {
		home = s.homeTeam
	}
	if away == "" {
		away = s.awayTeam
	}
	return detection.DetectionContext{
		Text:      text,
		Timestamp: time.Now(),
		HomeTeam:  home,
		AwayTeam:  away,
	}
}

// === Detection Handlers ===

type detectTextArgs struct {
	Text      string   `json:"text"`
	Languages []string `json:"languages"`
	HomeTeam  string   `json:"home_team"`
	AwayTeam  string   `json:"away_team"`
}

// DetectTextResult is returned by detect_text.
type DetectTextResult struct {
	Result     detection.Result `json:"result"`
	Summary    string           `json:"summary"`
	Classifier string           `json:"classifier,omitempty"`
	Text       string           `json:"text"`
}

func (s *Server) handleDetectText(args json.RawMessage) (interface{}, error) {
	var a detectTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	set := s.classifiers
	if len(a.Languages) > 0 {
		langs := make([]detection.Language, 0, len(a.Languages))
		for _, name := range a.Languages {
			lang, err := detection.ParseLanguage(name)
			if err != nil {
				return nil, err
			}
			langs = append(langs, lang)
		}
		set = detection.NewClassifierSet(detection.DefaultCatalog(), langs...)
	}

	text := ocr.Normalize(a.Text)
	result, name := set.Detect(s.detectionContext(text, a.HomeTeam, a.AwayTeam))
	return &DetectTextResult{Result: result, Summary: result.String(), Classifier: name, Text: text}, nil
}

type detectImageArgs struct {
	Path          string                 `json:"path"`
	Region        *capture.CaptureRegion `json:"region"`
	HomeTeam      string                 `json:"home_team"`
	AwayTeam      string                 `json:"away_team"`
	AllStrategies bool                   `json:"all_strategies"`
}

// StrategyAttempt records what one extraction strategy produced.
type StrategyAttempt struct {
	Strategy   string           `json:"strategy"`
	Text       string           `json:"text"`
	Result     detection.Result `json:"result"`
	Classifier string           `json:"classifier,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// DetectImageResult is returned by detect_image. The top-level fields
// describe the first strategy that produced an event.
type DetectImageResult struct {
	Result     detection.Result  `json:"result"`
	Summary    string            `json:"summary"`
	Classifier string            `json:"classifier,omitempty"`
	Strategy   string            `json:"strategy,omitempty"`
	Text       string            `json:"text,omitempty"`
	Attempts   []StrategyAttempt `json:"attempts"`
	ElapsedMS  int64             `json:"elapsed_ms"`
}

func (s *Server) handleDetectImage(args json.RawMessage) (interface{}, error) {
	var a detectImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.recognizer == nil {
		return nil, errNoRecognizer
	}
	img, err := s.loadRegion(a.Path, a.Region)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()

	start := time.Now()
	res := &DetectImageResult{Result: detection.NoMatch()}
	for _, strategy := range s.pre.Strategies() {
		attempt := StrategyAttempt{Strategy: strategy.Name, Result: detection.NoMatch()}
		text, err := s.recognizer.Recognize(ctx, strategy.Apply(img))
		if err != nil {
			var initErr *ocr.InitError
			if errors.As(err, &initErr) || ctx.Err() != nil {
				return nil, err
			}
			attempt.Error = err.Error()
			res.Attempts = append(res.Attempts, attempt)
			continue
		}

		attempt.Text = ocr.Normalize(text)
		if attempt.Text != "" {
			attempt.Result, attempt.Classifier = s.classifiers.Detect(s.detectionContext(attempt.Text, a.HomeTeam, a.AwayTeam))
		}
		res.Attempts = append(res.Attempts, attempt)

		if attempt.Result.IsMatch() && !res.Result.IsMatch() {
			res.Result, res.Classifier = attempt.Result, attempt.Classifier
			res.Strategy, res.Text = attempt.Strategy, attempt.Text
			if !a.AllStrategies {
				break
			}
		}
	}
	res.Summary = res.Result.String()
	res.ElapsedMS = time.Since(start).Milliseconds()
	return res, nil
}

// === Preprocessing Handlers ===

type preprocessImageArgs struct {
	Path      string                 `json:"path"`
	Region    *capture.CaptureRegion `json:"region"`
	Threshold *int                   `json:"threshold"`
	Denoise   bool                   `json:"denoise"`
	Strategy  string                 `json:"strategy"`
}

// PreprocessImageResult is returned by preprocess_image.
type PreprocessImageResult struct {
	Strategy    string `json:"strategy"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Threshold   *uint8 `json:"threshold,omitempty"`
	Automatic   bool   `json:"automatic"`
	Inverted    bool   `json:"inverted"`
	Denoised    bool   `json:"denoised"`
	WhitePixels int    `json:"white_pixels"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handlePreprocessImage(args json.RawMessage) (interface{}, error) {
	var a preprocessImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Strategy == "" {
		a.Strategy = imaging.StrategyPrimary
	}

	opts := imaging.Options{Denoise: a.Denoise}
	if a.Threshold != nil {
		if *a.Threshold < 0 || *a.Threshold > 255 {
			return nil, fmt.Errorf("threshold %d out of range 0-255", *a.Threshold)
		}
		t := uint8(*a.Threshold)
		opts.Threshold = &t
	}
	pre := imaging.NewPreprocessor(opts)

	img, err := s.loadRegion(a.Path, a.Region)
	if err != nil {
		return nil, err
	}

	res := &PreprocessImageResult{Strategy: a.Strategy, MimeType: "image/png"}
	var raster *imaging.BinaryRaster
	if a.Strategy == imaging.StrategyPrimary {
		detail := pre.PreprocessDetailed(img)
		raster = detail.Raster
		th := detail.Threshold
		res.Threshold = &th
		res.Automatic, res.Inverted, res.Denoised = detail.Automatic, detail.Inverted, detail.Denoised
	} else {
		for _, st := range pre.Strategies() {
			if st.Name == a.Strategy {
				raster = st.Apply(img)
				break
			}
		}
		if raster == nil {
			return nil, fmt.Errorf("unknown strategy: %s", a.Strategy)
		}
	}

	data, err := raster.EncodePNG()
	if err != nil {
		return nil, err
	}
	res.Width, res.Height = raster.Width, raster.Height
	res.WhitePixels = raster.WhiteCount()
	res.ImageBase64 = base64.StdEncoding.EncodeToString(data)
	return res, nil
}

// === Region Setup Handlers ===

type regionPreviewArgs struct {
	Path        string                `json:"path"`
	Region      capture.CaptureRegion `json:"region"`
	GridSpacing *int                  `json:"grid_spacing"`
	Color       string                `json:"color"`
}

func (s *Server) handleRegionPreview(args json.RawMessage) (interface{}, error) {
	var a regionPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	grid := 100
	if a.GridSpacing != nil {
		grid = *a.GridSpacing
	}
	if a.Color == "" {
		a.Color = "#FF0000"
	}
	img, err := s.loadRegion(a.Path, nil)
	if err != nil {
		return nil, err
	}
	return imaging.RegionPreview(img, a.Region.Rect(), grid, a.Color)
}

type suggestRegionsArgs struct {
	Path          string   `json:"path"`
	MinConfidence *float64 `json:"min_confidence"`
	MaxResults    int      `json:"max_results"`
}

// RegionSuggestion is a candidate capture region.
type RegionSuggestion struct {
	Region     capture.CaptureRegion `json:"region"`
	Spec       string                `json:"spec"`
	Confidence float64               `json:"confidence"`
}

// SuggestRegionsResult is returned by suggest_regions.
type SuggestRegionsResult struct {
	Width   int                `json:"width"`
	Height  int                `json:"height"`
	Regions []RegionSuggestion `json:"regions"`
	Count   int                `json:"count"`
}

func (s *Server) handleSuggestRegions(args json.RawMessage) (interface{}, error) {
	var a suggestRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	minConf := 0.5
	if a.MinConfidence != nil {
		minConf = *a.MinConfidence
	}
	if a.MaxResults <= 0 {
		a.MaxResults = 10
	}
	img, err := s.loadRegion(a.Path, nil)
	if err != nil {
		return nil, err
	}

	found := detection.SuggestRegions(img, minConf)
	if len(found) > a.MaxResults {
		found = found[:a.MaxResults]
	}
	res := &SuggestRegionsResult{
		Width:   img.Bounds().Dx(),
		Height:  img.Bounds().Dy(),
		Regions: make([]RegionSuggestion, 0, len(found)),
	}
	for _, r := range found {
		region := capture.CaptureRegion{
			X:      uint32(r.Bounds.Min.X),
			Y:      uint32(r.Bounds.Min.Y),
			Width:  uint32(r.Bounds.Dx()),
			Height: uint32(r.Bounds.Dy()),
		}
		res.Regions = append(res.Regions, RegionSuggestion{Region: region, Spec: region.String(), Confidence: r.Confidence})
	}
	res.Count = len(res.Regions)
	return res, nil
}

// === OCR Handlers ===

type ocrWordsArgs struct {
	Path   string                 `json:"path"`
	Region *capture.CaptureRegion `json:"region"`
}

// OCRWordsResult is returned by ocr_words.
type OCRWordsResult struct {
	Words []ocr.Word `json:"words"`
	Text  string     `json:"text"`
	Count int        `json:"count"`
}

func (s *Server) handleOCRWords(args json.RawMessage) (interface{}, error) {
	var a ocrWordsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	wr, ok := s.recognizer.(WordRecognizer)
	if !ok {
		return nil, errNoRecognizer
	}
	img, err := s.loadRegion(a.Path, a.Region)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()
	words, err := wr.RecognizeWords(ctx, s.pre.Preprocess(img))
	if err != nil {
		return nil, err
	}

	res := &OCRWordsResult{Words: words, Count: len(words)}
	if res.Words == nil {
		res.Words = []ocr.Word{}
	}
	for i, w := range words {
		if i > 0 {
			res.Text += " "
		}
		res.Text += w.Text
	}
	return res, nil
}

func (s *Server) handleOCRInfo() (interface{}, error) {
	if s.recognizer == nil {
		return nil, errNoRecognizer
	}
	return s.recognizer.Info(), nil
}

// === Team Handlers ===

type teamMatchArgs struct {
	League string `json:"league"`
	Key    string `json:"key"`
	Text   string `json:"text"`
}

// TeamMatchResult is returned by team_match.
type TeamMatchResult struct {
	Found       bool     `json:"found"`
	DisplayName string   `json:"display_name,omitempty"`
	Variations  []string `json:"variations,omitempty"`
	Normalized  string   `json:"normalized"`
	Matched     bool     `json:"matched"`
}

func (s *Server) handleTeamMatch(args json.RawMessage) (interface{}, error) {
	var a teamMatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.teams == nil {
		return nil, errNoTeams
	}
	profile, ok, err := s.teams.FindTeam(a.League, a.Key)
	if err != nil {
		return nil, err
	}

	res := &TeamMatchResult{Found: ok, Normalized: detection.NormalizeTeamName(a.Text)}
	if !ok {
		return res, nil
	}
	res.DisplayName = profile.DisplayName
	res.Variations = profile.Variations
	res.Matched = detection.NewTeamMatcher(profile).Matches(a.Text)
	return res, nil
}

// === Pipeline Handlers ===

func (s *Server) handlePipelineStatus() (interface{}, error) {
	if s.status == nil {
		return nil, errNoPipeline
	}
	return s.status(), nil
}
