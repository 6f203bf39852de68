// Package model defines the domain types for the Tablefolk API.
//
// Types here mirror the documents stored in SurrealDB: accounts, the
// per-direction relationship edges between them, notifications, discussions
// and their messages, scheduled game sessions, shops and space renters.
// Request types carry Validate methods returning field-level errors;
// errors.go defines the RFC 9457 Problem Details responses shared by all
// handlers.
package model
