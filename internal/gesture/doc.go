// Package gesture classifies raw pointer input on the top card into discrete intents.
//
// A Classifier runs two sub-machines: a drag machine (idle, dragging, committed or
// cancelled) and a tap machine that upgrades two close taps into a double-tap.
// Deferred work goes through a domain.Scheduler so that it runs on the owning loop.
package gesture
