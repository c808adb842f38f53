// Package storage implements quantmind's content-addressed, file-backed
// storage engine. Four categories of data live under one base directory:
// raw source files, structured knowledge records, vector embeddings, and
// operational extras. Each indexed category pairs a directory of flat files
// with a JSON index (kept under extra/) that maps item IDs to locations for
// O(1) lookup; the engine reconciles index and filesystem lazily, so
// external tampering costs one corrected lookup rather than a crash or
// silent data loss.
//
// There are no cross-category transactions. The single category-crossing
// behavior is ProcessKnowledge, which stores a knowledge record and then
// fetches its referenced raw artifact if one is declared and absent; the
// two steps succeed or fail independently.
package storage
