// Package tasks runs catalog jobs in the background, one at a time and in
// submission order, and keeps a registry of their lifecycle.
//
// A Runner owns its registry. Callers submit a Job, get a Task snapshot back
// immediately and poll Get or List for progress. Finished tasks stay in the
// registry until ClearCompleted removes them.
package tasks
