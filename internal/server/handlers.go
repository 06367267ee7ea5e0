package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/image-delimit/internal/batch"
	"github.com/ironsheep/image-delimit/internal/classify"
	"github.com/ironsheep/image-delimit/internal/config"
	"github.com/ironsheep/image-delimit/internal/imaging"
	"github.com/ironsheep/image-delimit/internal/sink"
	"github.com/ironsheep/image-delimit/internal/source"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_classify", "images_group").
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
	switch name {
	// Color Operations
	case "color_parse":
		return s.handleColorParse(args)
	case "color_distance":
		return s.handleColorDistance(args)

	// Classification
	case "image_sample_points":
		return s.handleImageSamplePoints(args)
	case "image_classify":
		return s.handleImageClassify(args)

	// Grouping
	case "images_group":
		return s.handleImagesGroup(args)
	case "groups_save":
		return s.handleGroupsSave(args)

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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// classificationArgs are the optional overrides of the server configuration.
type classificationArgs struct {
	BlankColor *string  `json:"blank_color,omitempty"`
	Threshold  *float64 `json:"threshold,omitempty"`
}

// apply returns the server configuration with the overrides applied.
func (a classificationArgs) apply(cfg config.Config) (config.Config, error) {
	if a.BlankColor != nil {
		cfg.DelimiterColor = *a.BlankColor
	}
	if a.Threshold != nil {
		cfg.ColorThreshold = *a.Threshold
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// === Color Operation Handlers ===

type colorParseArgs struct {
	Hex      string `json:"hex"`
	Fallback string `json:"fallback,omitempty"`
}

// ColorParseResult is the resolved color of a hex string.
type ColorParseResult struct {
	Input    string        `json:"input"`
	Hex      string        `json:"hex"`
	RGB      imaging.Color `json:"rgb"`
	Fallback bool          `json:"fallback"` // True if the input was malformed
}

func (s *Server) handleColorParse(args json.RawMessage) (interface{}, error) {
	var a colorParseArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	fallback := imaging.White
	if a.Fallback != "" {
		fallback = imaging.HexToColor(a.Fallback)
	}

	c := imaging.ParseHexColorOr(a.Hex, fallback)
	return &ColorParseResult{Input: a.Hex, Hex: c.Hex(), RGB: c, Fallback: !imaging.IsHexColor(a.Hex)}, nil
}

type colorDistanceArgs struct {
	Color1 string `json:"color1"`
	Color2 string `json:"color2"`
}

// ColorDistanceResult holds both distance metrics between two colors.
type ColorDistanceResult struct {
	Color1      imaging.Color `json:"color1"`
	Color2      imaging.Color `json:"color2"`
	Euclidean   float64       `json:"euclidean"`
	MeanAbsDiff float64       `json:"mean_abs_diff"`
}

func (s *Server) handleColorDistance(args json.RawMessage) (interface{}, error) {
	var a colorDistanceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c1 := imaging.HexToColor(a.Color1)
	c2 := imaging.HexToColor(a.Color2)
	return &ColorDistanceResult{
		Color1:      c1,
		Color2:      c2,
		Euclidean:   imaging.Distance(c1, c2),
		MeanAbsDiff: imaging.MeanAbsDiff(c1, c2),
	}, nil
}

// === Classification Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

// SampledPoint is a sample point with the color read there.
type SampledPoint struct {
	X     int           `json:"x"`
	Y     int           `json:"y"`
	Color imaging.Color `json:"color"`
	Hex   string        `json:"hex"`
}

// SamplePointsResult lists the points the classifier reads from an image.
type SamplePointsResult struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Points []SampledPoint `json:"points"`
}

func (s *Server) handleImageSamplePoints(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	w, h := img.Width(), img.Height()
	fixed := classify.SamplePoints(w, h)
	points := fixed[:]
	if pointsFor := s.cfg.Classifier().Points; pointsFor != nil {
		points = pointsFor(w, h)
	}

	result := &SamplePointsResult{Width: w, Height: h}
	for _, p := range points {
		c := img.SamplePixel(p.X, p.Y)
		result.Points = append(result.Points, SampledPoint{X: p.X, Y: p.Y, Color: c, Hex: c.Hex()})
	}
	return result, nil
}

type imageClassifyArgs struct {
	Path string `json:"path"`
	classificationArgs
}

// ClassifyResult is the blank decision for one image.
type ClassifyResult struct {
	Path       string  `json:"path"`
	Blank      bool    `json:"blank"`
	Score      float64 `json:"score"`
	BlankColor string  `json:"blank_color"`
	Threshold  float64 `json:"threshold"`
}

func (s *Server) handleImageClassify(args json.RawMessage) (interface{}, error) {
	var a imageClassifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, err := a.apply(s.cfg)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	cls := cfg.Classification()
	blank, score := cfg.Classifier().Classify(img)
	return &ClassifyResult{
		Path:       a.Path,
		Blank:      blank,
		Score:      score,
		BlankColor: cls.BlankColor.Hex(),
		Threshold:  cls.Threshold,
	}, nil
}

// === Grouping Handlers ===

type imagesGroupArgs struct {
	Input string   `json:"input,omitempty"`
	Paths []string `json:"paths,omitempty"`
	classificationArgs
}

func (s *Server) handleImagesGroup(args json.RawMessage) (interface{}, error) {
	var a imagesGroupArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, err := a.apply(s.cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	runner := batch.NewRunner(cfg, s.cache, s.logger)

	switch {
	case len(a.Paths) > 0:
		items, err := source.LoadFiles(ctx, a.Paths, s.cache, cfg.DecodeWorkers())
		if err != nil {
			return nil, err
		}
		return runner.Process(ctx, items, nil)
	case a.Input != "":
		return runner.Run(ctx, a.Input, nil)
	default:
		return nil, fmt.Errorf("either input or paths is required")
	}
}

type groupsSaveArgs struct {
	Input         string  `json:"input"`
	Output        string  `json:"output"`
	NamingScheme  *string `json:"naming_scheme,omitempty"`
	CreateFolders *bool   `json:"create_folders,omitempty"`
	Move          *bool   `json:"move,omitempty"`
	DryRun        bool    `json:"dry_run,omitempty"`
	classificationArgs
}

func (s *Server) handleGroupsSave(args json.RawMessage) (interface{}, error) {
	var a groupsSaveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Input == "" || a.Output == "" {
		return nil, fmt.Errorf("input and output are required")
	}

	cfg := s.cfg
	if a.NamingScheme != nil {
		cfg.NamingScheme = *a.NamingScheme
	}
	if a.CreateFolders != nil {
		cfg.CreateFolders = *a.CreateFolders
	}
	if a.Move != nil {
		cfg.Move = *a.Move
	}
	cfg, err := a.apply(cfg)
	if err != nil {
		return nil, err
	}

	var out sink.Sink = &sink.FolderSink{
		Root:          a.Output,
		Scheme:        cfg.NamingScheme,
		CreateFolders: cfg.CreateFolders,
		Move:          cfg.Move,
		Logger:        s.logger,
	}
	if a.DryRun {
		out = sink.DryRun{Root: a.Output, Scheme: cfg.NamingScheme, CreateFolders: cfg.CreateFolders}
	}

	runner := batch.NewRunner(cfg, s.cache, s.logger)
	return runner.Run(context.Background(), a.Input, out)
}
