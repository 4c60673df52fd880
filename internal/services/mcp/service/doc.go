// Package service wires the MCP transport to the CampTrack service.
//
// It knows how to register tools and run MCP over stdio; the meaning of each
// tool lives in the domain package.
package service
