// Package driving defines the interfaces through which the outside world
// drives the core (primary/inbound ports).
//
// CLI commands and watch-mode adapters call these interfaces; core
// services implement them.
//
// # Import Rules
//
//   - Can Import: domain and ports/driven packages only
//   - Cannot Import: Any adapter package
package driving
