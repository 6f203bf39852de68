// Package repository implements data access for Tablefolk on top of
// SurrealDB. Repositories are thin wrappers around SurrealQL queries:
// they translate between model types and the driver's loosely typed
// results, and surface database sentinel errors for the service layer
// to interpret. Multi-record changes that must land together (paired
// relationship edges, message plus thread preview) go through
// database.AtomicBatch.
package repository
