// Package server implements the MCP (Model Context Protocol) server for
// splitting scanned batches on blank delimiter pages.
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods: initialize, tools/list, tools/call, ping.
//
// # Available Tools
//
// Color Operations:
//   - color_parse: Resolve a hex string to RGB (malformed input falls back to white)
//   - color_distance: Euclidean and mean absolute channel distance between two colors
//
// Classification:
//   - image_sample_points: Show the sample points and colors read from an image
//   - image_classify: Decide whether an image is a blank delimiter page
//
// Grouping:
//   - images_group: Split a directory, PDF or list of files into groups
//   - groups_save: Split and copy/move the groups into an output directory
//
// Tool arguments that are omitted fall back to the configuration the server was
// started with.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data.
package server
