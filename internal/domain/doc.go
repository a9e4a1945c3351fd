// Package domain contains the entities shared by the connguard adapters.
//
// # Entities
//
//   - [Draft]: the locally edited document of one accounting period
//   - [Document]: the row written to the backend for a period
//   - [Event]: a connectivity notification published to other services
//
// Entities have no dependencies on HTTP, the file system or logging.
package domain
