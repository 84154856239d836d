// Package memory provides process-local implementations of the store
// interfaces. A unit of work holds the store's write lock for its whole
// duration and restores the previous state if it fails, so transactions are
// fully serialized. It backs the test suites and the "memory" store driver.
package memory
