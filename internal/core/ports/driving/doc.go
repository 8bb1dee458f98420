// Package driving declares what the CLI and the MCP server may ask of the
// core: run the documentation and audit pipeline, browse run history and
// read or change settings.
//
// The services package implements every interface here.
package driving
