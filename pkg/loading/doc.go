// Package loading tracks named async readiness dependencies and aggregates
// them into a single progress/phase view. Components register dependencies
// (with priority, phase, required flag and optional timeout), report loading
// transitions, and any number of subscribers observe the derived state.
//
// The tracker is an explicitly constructed instance with its own lifecycle:
// create it at startup, Close it at shutdown. Mutation plus subscriber
// notification is serialized, so no two updates interleave their effects.
package loading
