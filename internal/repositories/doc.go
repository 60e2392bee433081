// Package repositories implements SQLite persistence for locally-cached votes.
//
// The vote store is the durability fallback for records that could not reach
// the tracking endpoint: append-only, unbounded, no deduplication. Records are
// stored as their wire JSON alongside indexed columns for inspection, so a
// read-back reproduces the submitted artifact field for field.
package repositories
