package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// classificationProperties are the optional per-call overrides shared by the
// classification and grouping tools.
func classificationProperties(props map[string]interface{}) map[string]interface{} {
	props["blank_color"] = map[string]interface{}{
		"type":        "string",
		"description": "Delimiter color as #RRGGBB. Malformed values fall back to white. Defaults to the server configuration.",
	}
	props["threshold"] = map[string]interface{}{
		"type":        "number",
		"minimum":     0,
		"description": "Largest averaged mean absolute channel difference (0-255) still counted as blank. Defaults to the server configuration.",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Color Operations
		{
			Name:        "color_parse",
			Description: "Resolve a hex color string (#RRGGBB, '#' optional) to RGB. Malformed input resolves to the fallback color instead of failing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex": map[string]interface{}{
						"type":        "string",
						"description": "Color to parse, e.g. #FFFFFF",
					},
					"fallback": map[string]interface{}{
						"type":        "string",
						"description": "Color used when hex is malformed. Default #FFFFFF",
					},
				},
				"required": []string{"hex"},
			},
		},
		{
			Name:        "color_distance",
			Description: "Compare two hex colors. Returns the Euclidean RGB distance and the mean absolute channel difference used for blank classification.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"color1": map[string]interface{}{"type": "string", "description": "First color (#RRGGBB)"},
					"color2": map[string]interface{}{"type": "string", "description": "Second color (#RRGGBB)"},
				},
				"required": []string{"color1", "color2"},
			},
		},

		// Classification
		{
			Name:        "image_sample_points",
			Description: "Show the pixel coordinates and colors the blank classifier reads from an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_classify",
			Description: "Decide whether an image is a blank delimiter page. Returns the decision and the averaged color difference score.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": classificationProperties(map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				}),
				"required": []string{"path"},
			},
		},

		// Grouping
		{
			Name:        "images_group",
			Description: "Split an ordered batch into groups separated by blank delimiter pages. Give either an input (directory, PDF or image) or an explicit ordered list of paths.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": classificationProperties(map[string]interface{}{
					"input": map[string]interface{}{
						"type":        "string",
						"description": "Directory of images (sorted by name), a scanned PDF, or a single image",
					},
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Explicit image paths in document order. Used instead of input.",
					},
				}),
			},
		},
		{
			Name:        "groups_save",
			Description: "Split a batch on blank delimiter pages and copy (or move) each group into the output directory, named {scheme}{group}-image{index}.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": classificationProperties(map[string]interface{}{
					"input": map[string]interface{}{
						"type":        "string",
						"description": "Directory of images, a scanned PDF, or a single image",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Directory to write the groups into",
					},
					"naming_scheme": map[string]interface{}{
						"type":        "string",
						"description": "Name prefix for folders and files. Defaults to the server configuration.",
					},
					"create_folders": map[string]interface{}{
						"type":        "boolean",
						"description": "Put each group in its own folder. Defaults to the server configuration.",
					},
					"move": map[string]interface{}{
						"type":        "boolean",
						"description": "Move files instead of copying them. Defaults to the server configuration.",
					},
					"dry_run": map[string]interface{}{
						"type":        "boolean",
						"description": "Only report the planned placements",
						"default":     false,
					},
				}),
				"required": []string{"input", "output"},
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
