// Package deck holds the ordered profile deck, its bounded rewind history and the
// photo cursor of the top card.
//
// Nothing in this package is safe for concurrent use. It is owned by a single
// session loop goroutine.
package deck
