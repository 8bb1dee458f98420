// Package services holds the documentation and audit pipeline.
//
// The pipeline runs in a single flow: connect to the model server, document
// the undocumented measures one at a time, export the definition tree, then
// diff, back up and commit it. Every collaborator is injected as a driven
// port, so tests run the whole pipeline against in-memory fakes.
package services
