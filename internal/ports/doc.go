// Package ports defines the interfaces that connect the connguard command to
// its infrastructure adapters.
//
// # Port Interfaces
//
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//   - [DocumentStore]: writes period documents to the backend
//   - [DraftStore]: reads and writes the local draft
//   - [Publisher]: publishes connectivity events to a message broker
//
// Adapters under internal/adapters implement these interfaces; tests swap
// in hand-written fakes.
package ports
