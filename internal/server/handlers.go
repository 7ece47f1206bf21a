package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/vision-nodes-mcp/internal/geometry"
	"github.com/ironsheep/vision-nodes-mcp/internal/imaging"
	"github.com/ironsheep/vision-nodes-mcp/internal/vision"
)

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for omitted parameters
//  3. Loads the source image from cache
//  4. Calls the matching vision.Processor operation
//  5. Encodes image results and optionally writes them to disk
//
// Parameters:
//   - name: The tool name from tools/call, as listed by GetToolDefinitions.
//   - args: The raw "arguments" object. Empty means all defaults.
//
// Returns:
//   - interface{}: The handler's result struct, marshalled to JSON by the caller.
//   - error: Non-nil for an unknown tool, malformed arguments, a missing or
//     unreadable image, or a rejected parameter. The caller reports it as a
//     tool failure with the error text as data.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Image information
	case "image_load":
		return s.handleImageLoad(args)
	case "vision_width":
		return s.handleWidth(args)
	case "vision_height":
		return s.handleHeight(args)

	// Color and regions
	case "vision_convert_gray":
		return s.handleConvertGray(args)
	case "vision_roi":
		return s.handleROI(args)
	case "vision_threshold_binary_inv":
		return s.handleThresholdBinaryInv(args)

	// Morphology
	case "vision_morphology_close":
		return s.handleMorphology(args, s.proc.MorphologyClose)
	case "vision_morphology_erode":
		return s.handleMorphology(args, s.proc.MorphologyErode)
	case "vision_morphology_dilate":
		return s.handleMorphology(args, s.proc.MorphologyDilate)

	// Filters
	case "vision_canny":
		return s.handleCanny(args)
	case "vision_sobel":
		return s.handleSobel(args)
	case "vision_laplacian":
		return s.handleLaplacian(args)
	case "vision_smooth_gaussian":
		return s.handleSmoothGaussian(args)

	// Geometry
	case "vision_pixel_points":
		return s.handlePixelPoints(args)
	case "vision_find_contour_lines":
		return s.handleFindContourLines(args)
	case "vision_hough_circles":
		return s.handleHoughCircles(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// sourceArgs are shared by every tool that reads an image.
type sourceArgs struct {
	Path string `json:"path"`
}

// imageArgs are shared by every tool that produces an image.
type imageArgs struct {
	sourceArgs
	OutputPath string `json:"output_path"`
}

// encode turns an operation's image into a tool result. When the image is
// written to disk, any cached copy of that path is dropped so the next tool
// reading it sees the new pixels.
func (s *Server) encode(img image.Image, outputPath string) (*imaging.ImageResult, error) {
	res, err := imaging.EncodeResult(img, outputPath)
	if err != nil {
		return nil, err
	}
	if outputPath != "" {
		s.cache.Evict(outputPath)
	}
	return res, nil
}

func saveGeometry(c *geometry.Collection, path string) error {
	if path == "" {
		return nil
	}
	return c.SaveCBOR(path)
}

// === Image Information Handlers ===

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type widthResult struct {
	Width int `json:"width"`
}

type heightResult struct {
	Height int `json:"height"`
}

func (s *Server) handleWidth(args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	w, err := s.proc.Width(img)
	if err != nil {
		return nil, err
	}
	return &widthResult{Width: w}, nil
}

func (s *Server) handleHeight(args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	h, err := s.proc.Height(img)
	if err != nil {
		return nil, err
	}
	return &heightResult{Height: h}, nil
}

// === Color and Region Handlers ===

func (s *Server) handleConvertGray(args json.RawMessage) (interface{}, error) {
	var a imageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := s.proc.ConvertGray(img)
	if err != nil {
		return nil, err
	}
	return s.encode(out, a.OutputPath)
}

type roiArgs struct {
	imageArgs
	MinX *int `json:"min_x"`
	MinY *int `json:"min_y"`
	MaxX *int `json:"max_x"`
	MaxY *int `json:"max_y"`
}

// handleROI crops to the half-open rectangle [min_x,max_x) x [min_y,max_y).
// Bounds are checked against the source size before cropping; an explicit 0 is
// honored, an omitted bound falls back to the node default.
func (s *Server) handleROI(args json.RawMessage) (interface{}, error) {
	var a roiArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := s.proc.ROI(img, intOr(a.MinX, 0), intOr(a.MinY, 0), intOr(a.MaxX, 1), intOr(a.MaxY, 1))
	if err != nil {
		return nil, err
	}
	return s.encode(out, a.OutputPath)
}

type thresholdArgs struct {
	imageArgs
	Threshold *float64 `json:"threshold"`
	MaxValue  *float64 `json:"max_value"`
}

// handleThresholdBinaryInv converts to gray and maps pixels above threshold to
// 0 and the rest to max_value. Defaults are threshold 233 and max_value 255.
func (s *Server) handleThresholdBinaryInv(args json.RawMessage) (interface{}, error) {
	var a thresholdArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := s.proc.ThresholdBinaryInv(img, floatOr(a.Threshold, 233), floatOr(a.MaxValue, 255))
	if err != nil {
		return nil, err
	}
	return s.encode(out, a.OutputPath)
}

// === Morphology Handlers ===

type morphologyArgs struct {
	imageArgs
	KernelSize *int `json:"kernel_size"`
}

// handleMorphology serves erode, dilate and close. op is the bound Processor
// method; kernel_size defaults to 10.
func (s *Server) handleMorphology(args json.RawMessage, op func(image.Image, int) (image.Image, error)) (interface{}, error) {
	var a morphologyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := op(img, intOr(a.KernelSize, 10))
	if err != nil {
		return nil, err
	}
	return s.encode(out, a.OutputPath)
}

// === Filter Handlers ===

type cannyArgs struct {
	imageArgs
	EdgeThreshold *float64 `json:"edge_threshold"`
	LinkThreshold *float64 `json:"link_threshold"`
	ApertureSize  *int     `json:"aperture_size"`
	L2Gradient    *bool    `json:"l2_gradient"`
}

func (s *Server) handleCanny(args json.RawMessage) (interface{}, error) {
	var a cannyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	def := vision.DefaultCannyParams()
	out, err := s.proc.Canny(img, vision.CannyParams{
		EdgeThreshold: floatOr(a.EdgeThreshold, def.EdgeThreshold),
		LinkThreshold: floatOr(a.LinkThreshold, def.LinkThreshold),
		ApertureSize:  intOr(a.ApertureSize, def.ApertureSize),
		L2Gradient:    boolOr(a.L2Gradient, def.L2Gradient),
	})
	if err != nil {
		return nil, err
	}
	return s.encode(out, a.OutputPath)
}

type sobelArgs struct {
	imageArgs
	XOrder       *int `json:"x_order"`
	YOrder       *int `json:"y_order"`
	ApertureSize *int `json:"aperture_size"`
}

func (s *Server) handleSobel(args json.RawMessage) (interface{}, error) {
	var a sobelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	def := vision.DefaultSobelParams()
	out, err := s.proc.Sobel(img, vision.SobelParams{
		XOrder:       intOr(a.XOrder, def.XOrder),
		YOrder:       intOr(a.YOrder, def.YOrder),
		ApertureSize: intOr(a.ApertureSize, def.ApertureSize),
	})
	if err != nil {
		return nil, err
	}
	return s.encode(out, a.OutputPath)
}

type laplacianArgs struct {
	imageArgs
	ApertureSize *int `json:"aperture_size"`
}

func (s *Server) handleLaplacian(args json.RawMessage) (interface{}, error) {
	var a laplacianArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := s.proc.Laplacian(img, intOr(a.ApertureSize, 3))
	if err != nil {
		return nil, err
	}
	return s.encode(out, a.OutputPath)
}

type gaussianArgs struct {
	imageArgs
	KernelSize *int     `json:"kernel_size"`
	Sigma1     *float64 `json:"sigma1"`
	Sigma2     *float64 `json:"sigma2"`
}

func (s *Server) handleSmoothGaussian(args json.RawMessage) (interface{}, error) {
	var a gaussianArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	def := vision.DefaultGaussianParams()
	out, err := s.proc.SmoothGaussian(img, vision.GaussianParams{
		KernelSize: intOr(a.KernelSize, def.KernelSize),
		Sigma1:     floatOr(a.Sigma1, def.Sigma1),
		Sigma2:     floatOr(a.Sigma2, def.Sigma2),
	})
	if err != nil {
		return nil, err
	}
	return s.encode(out, a.OutputPath)
}

// === Geometry Handlers ===

type pixelPointsArgs struct {
	sourceArgs
	GeometryPath string `json:"geometry_path"`
}

type pixelPointsResult struct {
	Count        int                     `json:"count"`
	Points       []geometry.ColoredPoint `json:"points"`
	GeometryPath string                  `json:"geometry_path,omitempty"`
}

// handlePixelPoints returns one colored point per pixel, row by row. When
// geometry_path is set the points are also written there as CBOR.
func (s *Server) handlePixelPoints(args json.RawMessage) (interface{}, error) {
	var a pixelPointsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	points, err := s.proc.PixelPoints(img)
	if err != nil {
		return nil, err
	}
	if err := saveGeometry(&geometry.Collection{Points: points}, a.GeometryPath); err != nil {
		return nil, err
	}
	return &pixelPointsResult{Count: len(points), Points: points, GeometryPath: a.GeometryPath}, nil
}

type geometryImageArgs struct {
	imageArgs
	GeometryPath string `json:"geometry_path"`
}

type contourLinesResult struct {
	*imaging.ImageResult
	Lines        []geometry.Line    `json:"lines"`
	Polygons     []geometry.Polygon `json:"polygons"`
	GeometryPath string             `json:"geometry_path,omitempty"`
}

// handleFindContourLines returns the contour canvas as an image plus the
// approximated polygons and their edges.
//
// Returns:
//   - *contourLinesResult: The encoded canvas, lines and polygons. Empty results
//     are [] rather than null.
//   - error: Non-nil if the image cannot be loaded, or if writing output_path or
//     geometry_path fails.
func (s *Server) handleFindContourLines(args json.RawMessage) (interface{}, error) {
	var a geometryImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	found, err := s.proc.FindContourLines(img)
	if err != nil {
		return nil, err
	}
	if err := saveGeometry(found.Collection(), a.GeometryPath); err != nil {
		return nil, err
	}
	res, err := s.encode(found.Canvas, a.OutputPath)
	if err != nil {
		return nil, err
	}
	return &contourLinesResult{
		ImageResult:  res,
		Lines:        nonNil(found.Lines),
		Polygons:     nonNil(found.Polygons),
		GeometryPath: a.GeometryPath,
	}, nil
}

type houghArgs struct {
	geometryImageArgs
	DP        *float64 `json:"dp"`
	MinDist   *float64 `json:"min_dist"`
	Param1    *float64 `json:"param1"`
	Param2    *float64 `json:"param2"`
	MinRadius *int     `json:"min_radius"`
	MaxRadius *int     `json:"max_radius"`
}

type houghCirclesResult struct {
	*imaging.ImageResult
	Circles      []geometry.Circle `json:"circles"`
	GeometryPath string            `json:"geometry_path,omitempty"`
}

// handleHoughCircles detects circles, strongest first, and returns them with a
// canvas showing each one. Omitted parameters take vision.DefaultHoughParams;
// max_radius 0 means the larger image side.
func (s *Server) handleHoughCircles(args json.RawMessage) (interface{}, error) {
	var a houghArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	def := vision.DefaultHoughParams()
	found, err := s.proc.HoughCircles(img, vision.HoughParams{
		DP:        floatOr(a.DP, def.DP),
		MinDist:   floatOr(a.MinDist, def.MinDist),
		Param1:    floatOr(a.Param1, def.Param1),
		Param2:    floatOr(a.Param2, def.Param2),
		MinRadius: intOr(a.MinRadius, def.MinRadius),
		MaxRadius: intOr(a.MaxRadius, def.MaxRadius),
	})
	if err != nil {
		return nil, err
	}
	if err := saveGeometry(found.Collection(), a.GeometryPath); err != nil {
		return nil, err
	}
	res, err := s.encode(found.Canvas, a.OutputPath)
	if err != nil {
		return nil, err
	}
	return &houghCirclesResult{
		ImageResult:  res,
		Circles:      nonNil(found.Circles),
		GeometryPath: a.GeometryPath,
	}, nil
}

// nonNil makes empty results marshal as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
