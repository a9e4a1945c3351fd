// Package lifecycle provides the run-state machine behind connguard.Manager.
//
// A Machine validates Start/Stop transitions and tracks the background
// workers (heartbeat loop, network prober) so shutdown can wait for them
// with a bound.
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Stopping, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Starting
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package lifecycle
