// Package dispatch turns classified intents into deck mutations, renderer
// instructions and notifications.
//
// Swipe actions are serialized by the animation lock. State changes happen
// synchronously when an action commits, before its exit animation starts.
package dispatch
