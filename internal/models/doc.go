// Package models defines domain entities and persistence interfaces for lbsync.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing Letterboxd data and run output
//   - [Film] : Catalog film with its opaque Letterboxd ID
//   - [List] : List metadata (the name is echoed back on update)
//   - [EntriesPage] : One cursor page of list membership
//   - [Delta] : The add/remove sets computed by reconciliation
//   - [SyncReport] : Summary rendered by the formatter and the TUI
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [SyncRun] : History of reconciliation runs with counters and status
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
