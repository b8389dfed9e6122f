// Package lifecycle holds the decisions of the registration lifecycle: the
// registration window of a camp, whether a submission may be admitted, which
// statuses occupy capacity and which status changes are legal. Everything
// here is pure; applying the decisions to storage is the registrar's job.
package lifecycle
