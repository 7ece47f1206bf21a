package server

import (
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/vision-nodes-mcp/internal/geometry"
)

// writeImage saves img under dir and returns the path.
func writeImage(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to save test image: %v", err)
	}
	return path
}

// rectangleImage is a black w x h image with a white filled rectangle.
func rectangleImage(w, h int, r image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img
}

func discImage(w, h, cx, cy, r int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatal(err)
	}
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// toolText decodes the JSON text content of a successful tool call into v.
func toolText(t *testing.T, resp *MCPResponse, v interface{}) []map[string]interface{} {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) == 0 {
		t.Fatal("Result should carry content")
	}
	if content[0]["type"] != "text" {
		t.Fatalf("first content item type: got %v", content[0]["type"])
	}
	if v != nil {
		if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
			t.Fatalf("text content is not JSON: %v", err)
		}
	}
	return content
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := newTestServer()
	dir := t.TempDir()
	imgPath := writeImage(t, dir, "src.png", imaging.New(60, 40, color.NRGBA{128, 64, 32, 255}))

	toolTests := []struct {
		name      string
		args      map[string]interface{}
		wantImage bool
	}{
		{"image_load", nil, false},
		{"vision_width", nil, false},
		{"vision_height", nil, false},
		{"vision_convert_gray", nil, true},
		{"vision_roi", map[string]interface{}{"max_x": 10, "max_y": 10}, true},
		{"vision_threshold_binary_inv", nil, true},
		{"vision_morphology_close", nil, true},
		{"vision_morphology_erode", map[string]interface{}{"kernel_size": 3}, true},
		{"vision_morphology_dilate", nil, true},
		{"vision_canny", nil, true},
		{"vision_sobel", nil, true},
		{"vision_laplacian", nil, true},
		{"vision_smooth_gaussian", nil, true},
		{"vision_pixel_points", nil, false},
		{"vision_find_contour_lines", nil, true},
		{"vision_hough_circles", nil, true},
	}

	for _, tt := range toolTests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]interface{}{"path": imgPath}
			for k, v := range tt.args {
				args[k] = v
			}
			content := toolText(t, callTool(t, s, tt.name, args), nil)

			hasImage := len(content) == 2 && content[1]["type"] == "image"
			if hasImage != tt.wantImage {
				t.Errorf("image content: got %v, want %v", hasImage, tt.wantImage)
			}
			if hasImage && content[1]["mimeType"] != "image/png" {
				t.Errorf("image mimeType: got %v", content[1]["mimeType"])
			}
		})
	}
}

func TestHandleToolsCall_EmptyPath(t *testing.T) {
	s := newTestServer()
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			resp := callTool(t, s, tool.Name, map[string]interface{}{"path": ""})
			if resp.Error == nil {
				t.Fatal("expected an error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("code: got %d, want -32000", resp.Error.Code)
			}
			if data, _ := resp.Error.Data.(string); !strings.Contains(data, "invalid image") {
				t.Errorf("data: got %q", data)
			}
		})
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := newTestServer()

	t.Run("missing file", func(t *testing.T) {
		resp := callTool(t, s, "vision_width", map[string]interface{}{"path": "/nonexistent/image.png"})
		if resp.Error == nil || resp.Error.Code != -32000 {
			t.Errorf("got %+v, want a -32000 error", resp.Error)
		}
	})

	t.Run("unknown tool", func(t *testing.T) {
		resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{})
		if resp.Error == nil || !strings.Contains(resp.Error.Data.(string), "unknown tool") {
			t.Errorf("got %+v, want an unknown tool error", resp.Error)
		}
	})

	t.Run("invalid params", func(t *testing.T) {
		resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: json.RawMessage(`"nope"`)})
		if resp.Error == nil || resp.Error.Code != -32602 {
			t.Errorf("got %+v, want a -32602 error", resp.Error)
		}
	})

	t.Run("bad argument types", func(t *testing.T) {
		_, err := s.executeTool("vision_roi", json.RawMessage(`{"path":"x.png","min_x":"zero"}`))
		if err == nil {
			t.Error("executeTool should fail for a string coordinate")
		}
	})
}

func TestHandleToolsCall_WidthHeight(t *testing.T) {
	s := newTestServer()
	path := writeImage(t, t.TempDir(), "dims.png", imaging.New(123, 45, color.White))

	var w struct{ Width int }
	toolText(t, callTool(t, s, "vision_width", map[string]interface{}{"path": path}), &w)
	if w.Width != 123 {
		t.Errorf("width: got %d, want 123", w.Width)
	}

	var h struct{ Height int }
	toolText(t, callTool(t, s, "vision_height", map[string]interface{}{"path": path}), &h)
	if h.Height != 45 {
		t.Errorf("height: got %d, want 45", h.Height)
	}
}

func TestHandleToolsCall_ExplicitZeroArguments(t *testing.T) {
	s := newTestServer()
	path := writeImage(t, t.TempDir(), "src.png", imaging.New(20, 20, color.White))

	// x_order 0 with the default y_order 0 is rejected, which shows the
	// explicit zero replaced the default of 1.
	resp := callTool(t, s, "vision_sobel", map[string]interface{}{"path": path, "x_order": 0})
	if resp.Error == nil || !strings.Contains(resp.Error.Data.(string), "invalid parameter") {
		t.Errorf("got %+v, want an invalid parameter error", resp.Error)
	}

	var roi struct{ Width, Height int }
	toolText(t, callTool(t, s, "vision_roi", map[string]interface{}{
		"path": path, "min_x": 0, "min_y": 0, "max_x": 20, "max_y": 5,
	}), &roi)
	if roi.Width != 20 || roi.Height != 5 {
		t.Errorf("roi: got %dx%d, want 20x5", roi.Width, roi.Height)
	}
}

func TestHandleToolsCall_ROIOutOfBounds(t *testing.T) {
	s := newTestServer()
	path := writeImage(t, t.TempDir(), "src.png", imaging.New(20, 10, color.White))

	resp := callTool(t, s, "vision_roi", map[string]interface{}{"path": path, "max_x": 21, "max_y": 5})
	if resp.Error == nil || !strings.Contains(resp.Error.Data.(string), "cannot be more than image width") {
		t.Errorf("got %+v, want a width bounds error", resp.Error)
	}
}

func TestHandleToolsCall_OutputPathChaining(t *testing.T) {
	s := newTestServer()
	dir := t.TempDir()
	src := writeImage(t, dir, "src.png", rectangleImage(50, 40, image.Rect(10, 10, 30, 30)))
	out := filepath.Join(dir, "out.png")

	var gray struct{ Path string }
	toolText(t, callTool(t, s, "vision_convert_gray", map[string]interface{}{"path": src, "output_path": out}), &gray)
	if gray.Path != out {
		t.Errorf("path: got %q, want %q", gray.Path, out)
	}

	var w struct{ Width int }
	toolText(t, callTool(t, s, "vision_width", map[string]interface{}{"path": out}), &w)
	if w.Width != 50 {
		t.Fatalf("width of chained output: got %d, want 50", w.Width)
	}

	// Overwriting a cached path must not serve the stale image.
	toolText(t, callTool(t, s, "vision_roi", map[string]interface{}{
		"path": out, "max_x": 8, "max_y": 8, "output_path": out,
	}), nil)
	toolText(t, callTool(t, s, "vision_width", map[string]interface{}{"path": out}), &w)
	if w.Width != 8 {
		t.Errorf("width after overwrite: got %d, want 8", w.Width)
	}
}

func TestHandleToolsCall_FindContourLines(t *testing.T) {
	s := newTestServer()
	dir := t.TempDir()
	src := writeImage(t, dir, "rect.png", rectangleImage(100, 80, image.Rect(20, 20, 70, 50)))
	geomPath := filepath.Join(dir, "contours.cbor")

	var res struct {
		Width        int
		Lines        []geometry.Line
		Polygons     []geometry.Polygon
		GeometryPath string `json:"geometry_path"`
	}
	toolText(t, callTool(t, s, "vision_find_contour_lines", map[string]interface{}{
		"path": src, "geometry_path": geomPath,
	}), &res)

	if res.Width != 100 {
		t.Errorf("canvas width: got %d", res.Width)
	}
	if len(res.Polygons) != 1 || len(res.Lines) != 4 {
		t.Fatalf("got %d polygons and %d lines, want 1 and 4", len(res.Polygons), len(res.Lines))
	}
	if res.GeometryPath != geomPath {
		t.Errorf("geometry_path: got %q", res.GeometryPath)
	}

	f, err := os.Open(geomPath)
	if err != nil {
		t.Fatalf("geometry file not written: %v", err)
	}
	defer f.Close()
	coll, err := geometry.ReadCBOR(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(coll.Polygons) != 1 || len(coll.Lines) != 4 {
		t.Errorf("CBOR collection: %d polygons, %d lines", len(coll.Polygons), len(coll.Lines))
	}
}

func TestHandleToolsCall_HoughCircles(t *testing.T) {
	s := newTestServer()
	src := writeImage(t, t.TempDir(), "disc.png", discImage(100, 100, 50, 50, 20))

	var res struct {
		Circles []geometry.Circle
	}
	toolText(t, callTool(t, s, "vision_hough_circles", map[string]interface{}{
		"path": src, "param2": 10, "min_radius": 15, "max_radius": 25,
	}), &res)

	if len(res.Circles) == 0 {
		t.Fatal("no circles found")
	}
	c := res.Circles[0]
	if c.Center.X < 47 || c.Center.X > 53 || c.Center.Y < 47 || c.Center.Y > 53 {
		t.Errorf("center: got (%g,%g), want about (50,50)", c.Center.X, c.Center.Y)
	}
	if c.Radius < 17 || c.Radius > 23 {
		t.Errorf("radius: got %g, want about 20", c.Radius)
	}
}

func TestHandleToolsCall_PixelPoints(t *testing.T) {
	s := newTestServer()
	dir := t.TempDir()
	src := writeImage(t, dir, "tiny.png", imaging.New(3, 2, color.NRGBA{255, 0, 0, 255}))
	geomPath := filepath.Join(dir, "points.cbor")

	var res struct {
		Count  int
		Points []struct {
			X, Y float64
			Hex  string
		}
	}
	toolText(t, callTool(t, s, "vision_pixel_points", map[string]interface{}{
		"path": src, "geometry_path": geomPath,
	}), &res)

	if res.Count != 6 || len(res.Points) != 6 {
		t.Fatalf("got %d points, want 6", len(res.Points))
	}
	if res.Points[5].X != 2 || res.Points[5].Y != 1 || res.Points[5].Hex != "#ff0000" {
		t.Errorf("last point: %+v", res.Points[5])
	}
	if _, err := os.Stat(geomPath); err != nil {
		t.Errorf("geometry file not written: %v", err)
	}
}
