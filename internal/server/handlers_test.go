package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ironsheep/image-delimit/internal/batch"
)

// createTestImageFile writes a solid-color PNG into dir and returns its path.
func createTestImageFile(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool runs a tools/call request and decodes the JSON text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name, "arguments": args}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Params: paramsJSON})
	if resp.Error != nil || out == nil {
		return resp
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
	return resp
}

func TestHandleToolsCall_ColorParse(t *testing.T) {
	s := New()

	tests := []struct {
		name         string
		args         map[string]interface{}
		wantHex      string
		wantFallback bool
	}{
		{"valid", map[string]interface{}{"hex": "#ff8040"}, "#FF8040", false},
		{"no hash", map[string]interface{}{"hex": "000000"}, "#000000", false},
		{"malformed", map[string]interface{}{"hex": "not-a-color"}, "#FFFFFF", true},
		{"custom fallback", map[string]interface{}{"hex": "#12", "fallback": "#000000"}, "#000000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ColorParseResult
			if resp := callTool(t, s, "color_parse", tt.args, &got); resp.Error != nil {
				t.Fatalf("Unexpected error: %v", resp.Error)
			}
			if got.Hex != tt.wantHex || got.Fallback != tt.wantFallback {
				t.Errorf("got %+v, want hex %s fallback %v", got, tt.wantHex, tt.wantFallback)
			}
		})
	}
}

func TestHandleToolsCall_ColorDistance(t *testing.T) {
	var got ColorDistanceResult
	resp := callTool(t, New(), "color_distance", map[string]interface{}{
		"color1": "#000000",
		"color2": "#FFFFFF",
	}, &got)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	if math.Abs(got.Euclidean-441.67) > 0.01 {
		t.Errorf("Euclidean = %v, want ~441.67", got.Euclidean)
	}
	if got.MeanAbsDiff != 255 {
		t.Errorf("MeanAbsDiff = %v, want 255", got.MeanAbsDiff)
	}
}

func TestHandleToolsCall_ImageSamplePoints(t *testing.T) {
	path := createTestImageFile(t, t.TempDir(), "page.png", 100, 60, color.RGBA{10, 20, 30, 255})

	var got SamplePointsResult
	if resp := callTool(t, New(), "image_sample_points", map[string]interface{}{"path": path}, &got); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	if got.Width != 100 || got.Height != 60 || len(got.Points) != 3 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Points[0].X != 50 || got.Points[0].Y != 30 {
		t.Errorf("first point = (%d,%d), want center (50,30)", got.Points[0].X, got.Points[0].Y)
	}
	if got.Points[2].Hex != "#0A141E" {
		t.Errorf("sampled hex = %s, want #0A141E", got.Points[2].Hex)
	}
}

func TestHandleToolsCall_ImageClassify(t *testing.T) {
	dir := t.TempDir()
	white := createTestImageFile(t, dir, "white.png", 50, 50, color.White)
	offWhite := createTestImageFile(t, dir, "off.png", 50, 50, color.RGBA{235, 235, 235, 255})
	s := New()

	tests := []struct {
		name      string
		args      map[string]interface{}
		wantBlank bool
	}{
		{"white page", map[string]interface{}{"path": white}, true},
		{"off-white at default threshold", map[string]interface{}{"path": offWhite}, false},
		{"off-white with threshold override", map[string]interface{}{"path": offWhite, "threshold": 20}, true},
		{"white page against black", map[string]interface{}{"path": white, "blank_color": "#000000"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ClassifyResult
			if resp := callTool(t, s, "image_classify", tt.args, &got); resp.Error != nil {
				t.Fatalf("Unexpected error: %v", resp.Error)
			}
			if got.Blank != tt.wantBlank {
				t.Errorf("Blank = %v, want %v (score %v)", got.Blank, tt.wantBlank, got.Score)
			}
		})
	}

	resp := callTool(t, s, "image_classify", map[string]interface{}{"path": white, "threshold": -1}, nil)
	if resp.Error == nil {
		t.Error("negative threshold should be rejected")
	}
}

func TestHandleToolsCall_ImagesGroup(t *testing.T) {
	dir := t.TempDir()
	ink := color.RGBA{0, 0, 80, 255}
	a := createTestImageFile(t, dir, "1.png", 30, 40, ink)
	b := createTestImageFile(t, dir, "2.png", 30, 40, color.White)
	c := createTestImageFile(t, dir, "3.png", 30, 40, ink)
	s := New()

	var fromDir batch.Report
	if resp := callTool(t, s, "images_group", map[string]interface{}{"input": dir}, &fromDir); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if want := [][]string{{"1.png"}, {"3.png"}}; !reflect.DeepEqual(fromDir.Groups, want) {
		t.Errorf("Groups = %v, want %v", fromDir.Groups, want)
	}

	// An explicit order overrides name order
	var fromPaths batch.Report
	args := map[string]interface{}{"paths": []string{c, a, b}}
	if resp := callTool(t, s, "images_group", args, &fromPaths); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if want := [][]string{{"3.png", "1.png"}}; !reflect.DeepEqual(fromPaths.Groups, want) {
		t.Errorf("Groups = %v, want %v", fromPaths.Groups, want)
	}

	if resp := callTool(t, s, "images_group", map[string]interface{}{}, nil); resp.Error == nil {
		t.Error("images_group without input should fail")
	}
}

func TestHandleToolsCall_ImagesGroup_RewrittenFile(t *testing.T) {
	dir := t.TempDir()
	ink := color.RGBA{20, 20, 20, 255}
	createTestImageFile(t, dir, "scan1.png", 30, 40, ink)
	second := createTestImageFile(t, dir, "scan2.png", 30, 40, color.White)
	createTestImageFile(t, dir, "scan3.png", 30, 40, ink)
	s := New()

	var before batch.Report
	if resp := callTool(t, s, "images_group", map[string]interface{}{"input": dir}, &before); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if before.Blanks != 1 || len(before.Groups) != 2 {
		t.Fatalf("first batch: groups %v blanks %d", before.Groups, before.Blanks)
	}

	// The next batch reuses the file name for a content page
	createTestImageFile(t, dir, "scan2.png", 30, 40, ink)
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(second, later, later); err != nil {
		t.Fatalf("failed to touch file: %v", err)
	}

	var after batch.Report
	if resp := callTool(t, s, "images_group", map[string]interface{}{"input": dir}, &after); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	want := [][]string{{"scan1.png", "scan2.png", "scan3.png"}}
	if after.Blanks != 0 || !reflect.DeepEqual(after.Groups, want) {
		t.Errorf("second batch: groups %v blanks %d, want %v with no blanks", after.Groups, after.Blanks, want)
	}
}

func TestHandleToolsCall_GroupsSave(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	ink := color.RGBA{60, 0, 0, 255}
	createTestImageFile(t, in, "a.png", 20, 20, ink)
	createTestImageFile(t, in, "b.png", 20, 20, color.White)
	createTestImageFile(t, in, "c.png", 20, 20, ink)
	s := New()

	var dry batch.Report
	args := map[string]interface{}{"input": in, "output": out, "naming_scheme": "scan", "dry_run": true}
	if resp := callTool(t, s, "groups_save", args, &dry); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if len(dry.Placements) != 2 {
		t.Fatalf("dry run placements = %d, want 2", len(dry.Placements))
	}
	if _, err := os.Stat(filepath.Join(out, "scan1")); !os.IsNotExist(err) {
		t.Error("dry run must not create folders")
	}

	var saved batch.Report
	args["dry_run"] = false
	if resp := callTool(t, s, "groups_save", args, &saved); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	for _, rel := range []string{"scan1/scan1-image1.png", "scan2/scan2-image1.png"} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}

	// Saving again would overwrite
	if resp := callTool(t, s, "groups_save", args, nil); resp.Error == nil {
		t.Error("second save should fail instead of overwriting")
	}

	if resp := callTool(t, s, "groups_save", map[string]interface{}{"input": in}, nil); resp.Error == nil {
		t.Error("groups_save without output should fail")
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	resp := callTool(t, New(), "image_crop", map[string]interface{}{}, nil)
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("expected tool execution error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	resp := New().handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Params: json.RawMessage(`[1,2]`)})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected invalid params error, got %+v", resp.Error)
	}
}
