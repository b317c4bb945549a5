// Package cli implements the interactive front end of llm-code: a line
// editing REPL with @file completion, slash commands and markdown rendering
// of the assistant replies.
//
// The REPL only talks to the conversation through the Session interface,
// which *chat.Session satisfies.
package cli
