// Package pipeline runs a single scrape: permission check, store open, page
// fetch, block extraction, and persistence with a throttle between blocks.
//
// Each block passes through its own error boundary. A failure while extracting
// or inserting one block is recorded in its BlockResult and the run moves on;
// only permission denial, store-open and fetch failures abort the run.
package pipeline
