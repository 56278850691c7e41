// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (profile.go, action.go, gesture.go, ports.go, errors.go) hold the
// shared types and the contracts of the external collaborators (renderer, notification
// sink, profile source, scheduler). No engine logic lives here.
package domain
