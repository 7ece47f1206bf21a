package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Path to the source image file",
	}
}

func outputPathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Optional path to also save the result image to. The format follows the extension (.png, .jpg, .gif, .bmp, .tif)",
	}
}

func geometryPathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Optional path to save the detected geometry to as CBOR",
	}
}

func numberProperty(kind, description string, def interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":        kind,
		"description": description,
		"default":     def,
	}
}

// schema builds an object schema that requires path. Extra properties are
// merged in.
func schema(props map[string]interface{}) map[string]interface{} {
	all := map[string]interface{}{"path": pathProperty()}
	for k, v := range props {
		all[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": all,
		"required":   []string{"path"},
	}
}

// imageSchema is schema plus output_path.
func imageSchema(props map[string]interface{}) map[string]interface{} {
	if props == nil {
		props = map[string]interface{}{}
	}
	props["output_path"] = outputPathProperty()
	return schema(props)
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	morphKernel := func() map[string]interface{} {
		return map[string]interface{}{
			"kernel_size": numberProperty("integer", "Side of the square structuring element, at least 1", 10),
		}
	}

	return []Tool{
		// Image information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, color depth and file size.",
			InputSchema: schema(nil),
		},
		{
			Name:        "vision_width",
			Description: "Return the width of an image in pixels.",
			InputSchema: schema(nil),
		},
		{
			Name:        "vision_height",
			Description: "Return the height of an image in pixels.",
			InputSchema: schema(nil),
		},

		// Color and regions
		{
			Name:        "vision_convert_gray",
			Description: "Convert an image to single-channel 8-bit gray using luma weights 0.299, 0.587, 0.114.",
			InputSchema: imageSchema(nil),
		},
		{
			Name:        "vision_roi",
			Description: "Crop the region [min_x,max_x) x [min_y,max_y). Fails if the region exceeds the image or has negative minimums.",
			InputSchema: imageSchema(map[string]interface{}{
				"min_x": numberProperty("integer", "Left edge, inclusive", 0),
				"min_y": numberProperty("integer", "Top edge, inclusive", 0),
				"max_x": numberProperty("integer", "Right edge, exclusive", 1),
				"max_y": numberProperty("integer", "Bottom edge, exclusive", 1),
			}),
		},
		{
			Name:        "vision_threshold_binary_inv",
			Description: "Convert to gray, then set pixels above threshold to 0 and all others to max_value.",
			InputSchema: imageSchema(map[string]interface{}{
				"threshold": numberProperty("number", "Threshold value", 233),
				"max_value": numberProperty("number", "Value for pixels at or below the threshold, 0-255", 255),
			}),
		},

		// Morphology
		{
			Name:        "vision_morphology_close",
			Description: "Morphological closing (dilate then erode). Fills small dark gaps.",
			InputSchema: imageSchema(morphKernel()),
		},
		{
			Name:        "vision_morphology_erode",
			Description: "Morphological erosion. Shrinks bright regions.",
			InputSchema: imageSchema(morphKernel()),
		},
		{
			Name:        "vision_morphology_dilate",
			Description: "Morphological dilation. Grows bright regions.",
			InputSchema: imageSchema(morphKernel()),
		},

		// Filters
		{
			Name:        "vision_canny",
			Description: "Canny edge detection on the gray image. Returns a binary edge image (edges are 255).",
			InputSchema: imageSchema(map[string]interface{}{
				"edge_threshold": numberProperty("number", "First hysteresis threshold", 20),
				"link_threshold": numberProperty("number", "Second hysteresis threshold", 50),
				"aperture_size":  numberProperty("integer", "Sobel aperture: 3, 5 or 7", 3),
				"l2_gradient":    numberProperty("boolean", "Use the L2 gradient norm instead of L1", true),
			}),
		},
		{
			Name:        "vision_sobel",
			Description: "Sobel derivative. Negative responses saturate to 0.",
			InputSchema: imageSchema(map[string]interface{}{
				"x_order":       numberProperty("integer", "Order of the x derivative", 1),
				"y_order":       numberProperty("integer", "Order of the y derivative", 0),
				"aperture_size": numberProperty("integer", "Kernel size: 1, 3, 5 or 7", 3),
			}),
		},
		{
			Name:        "vision_laplacian",
			Description: "Laplacian (sum of second derivatives). Negative responses saturate to 0.",
			InputSchema: imageSchema(map[string]interface{}{
				"aperture_size": numberProperty("integer", "Kernel size: 1, 3, 5 or 7", 3),
			}),
		},
		{
			Name:        "vision_smooth_gaussian",
			Description: "Gaussian smoothing.",
			InputSchema: imageSchema(map[string]interface{}{
				"kernel_size": numberProperty("integer", "Odd kernel size, at least 1", 3),
				"sigma1":      numberProperty("number", "Horizontal sigma, or 0 to derive it from the kernel size", 1),
				"sigma2":      numberProperty("number", "Vertical sigma", 1),
			}),
		},

		// Geometry
		{
			Name:        "vision_pixel_points",
			Description: "Return one point per pixel in row-major order, each with its pixel color.",
			InputSchema: schema(map[string]interface{}{
				"geometry_path": geometryPathProperty(),
			}),
		},
		{
			Name:        "vision_find_contour_lines",
			Description: "Trace every contour of the gray image, approximate each as a polygon and return the polygon edges as lines, plus an image of the contours.",
			InputSchema: imageSchema(map[string]interface{}{
				"geometry_path": geometryPathProperty(),
			}),
		},
		{
			Name:        "vision_hough_circles",
			Description: "Detect circles with the gradient Hough transform and return them with an image of the circles.",
			InputSchema: imageSchema(map[string]interface{}{
				"dp":            numberProperty("number", "Inverse accumulator resolution", 1),
				"min_dist":      numberProperty("number", "Minimum distance between centers", 20),
				"param1":        numberProperty("number", "Upper Canny threshold", 50),
				"param2":        numberProperty("number", "Accumulator threshold for centers", 30),
				"min_radius":    numberProperty("integer", "Smallest radius", 0),
				"max_radius":    numberProperty("integer", "Largest radius, 0 for the larger image side", 0),
				"geometry_path": geometryPathProperty(),
			}),
		},
	}
}
