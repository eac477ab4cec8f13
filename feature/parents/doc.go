// Package parents audits process-instance records for dangling parent references.
//
// Child process instances exported by the workflow engine carry the key of the element
// instance that spawned them. This package checks, for one partition and above a given
// import position, that every such parent key exists in the application's read model,
// and reports the keys that do not.
//
// # Components
//
//   - Adapter: builds the record and read-model queries for core/reconcile.
//   - Service: runs the engine, logs page progress and publishes reports.
//   - Publish: stores a JSON report under reports/parents/<run-id>.json in object storage.
package parents
