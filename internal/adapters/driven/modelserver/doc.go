// Package modelserver provides the MCP client adapter for the semantic model
// server.
//
// The model server is an MCP server exposing connection, measure and database
// tools. Every request is wrapped as {"request": {...}} and every reply is a
// single text content holding a JSON envelope:
//
//	{"success": true, "message": "...", "data": {...}}
//
// A Session serialises its tool calls; the server handles one request at a
// time per connection.
package modelserver
