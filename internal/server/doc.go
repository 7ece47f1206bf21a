// Package server implements the MCP (Model Context Protocol) tool host for the
// vision nodes.
//
// Each node of the vision library is exposed as one MCP tool. The MCP client
// plays the role of a visual-programming host: it wires tools together by
// passing the output_path of one call as the path of the next.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over one of two transports:
//   - stdio (default): one request per line on stdin, one response per line
//     on stdout. Logs go to stderr.
//   - websocket: one request per text frame on /ws, one response frame back.
//     /healthz answers "ok". Every connection is a session with its own UUID,
//     logged as the "session" field.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image information:
//   - image_load, vision_width, vision_height
//
// Color and regions:
//   - vision_convert_gray, vision_roi, vision_threshold_binary_inv
//
// Morphology:
//   - vision_morphology_close, vision_morphology_erode, vision_morphology_dilate
//
// Filters:
//   - vision_canny, vision_sobel, vision_laplacian, vision_smooth_gaussian
//
// Geometry:
//   - vision_pixel_points, vision_find_contour_lines, vision_hough_circles
//
// Every tool requires path. Tools that produce an image accept output_path
// and return the image both as base64 in the JSON text and as an MCP image
// content item. Geometry tools accept geometry_path and write their points,
// lines, polygons or circles there as CBOR.
//
// Omitted numeric arguments take the node defaults; an explicit 0 is kept.
//
// # Image Caching
//
// Source images are decoded once and cached by path. Writing a result to
// output_path evicts that path so later reads see the new file.
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
//	proc := vision.NewProcessor(vision.NewNativeEngine())
//	srv := server.New(proc, server.Options{Logger: logger})
//	if err := srv.Run(); err != nil {
//	    logger.Fatal(err)
//	}
package server
