// Package chat holds the conversation orchestrator.
//
// A Session owns the active provider and the conversation history. Each turn
// resolves the @file references of the user input, loads the referenced
// files, merges them into a single user message, and replays the whole
// history to the provider. Switching providers replaces the provider and
// clears the history.
//
// Turns are strictly sequential. Backend failures never abort a turn: they
// come back as "Error:" replies and are appended to the history like any
// other answer.
package chat
