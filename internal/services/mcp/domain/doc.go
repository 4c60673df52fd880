// Package domain translates MCP tool calls into CampTrack operations.
//
// Each tool has an input struct, a result struct and a handler built from one
// of the service interfaces below. Dates travel as YYYY-MM-DD strings and
// instants as RFC3339 strings.
package domain
