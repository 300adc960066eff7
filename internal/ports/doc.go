// Package ports finds the port declarations in a service configuration
// template and assigns each environment a block of ports that does not
// overlap any other registered environment.
//
// # Extraction
//
// Extract scans the template line by line. Bracketed headers such as
// [db.pooler] move the section cursor; any assignment whose key contains
// "port" (case-insensitive) and whose value is an unsigned integer becomes an
// ExtractedPort. Offsets are relative to the lowest port found:
//
//	[api]
//	port = 54321        -> {Key: "port", Section: "api", Value: 54321, Offset: 0}
//	[db]
//	port = 54322        -> {Key: "port", Section: "db", Value: 54322, Offset: 1}
//	shadow_port = 54320 -> {Key: "shadow_port", Section: "db", Value: 54320, ...}
//
// # Allocation
//
// AllocateBase walks candidates startBase, startBase+blockSize, ... and
// returns the first whose half-open range [c, c+blockSize) does not overlap
// any occupied range. Gaps smaller than a full block are never probed.
// BuildPortMap then maps every original port to newBase+offset.
package ports
