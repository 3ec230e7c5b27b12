// Package server is the thin HTTP orchestration surface: request
// binding and validation at the edge, engines behind narrow
// interfaces, structured errors mapped to JSON responses by
// middleware.
package server
