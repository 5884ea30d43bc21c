// Package pipeline publishes the result of a harvest run through a sequence
// of steps: archiving, printing, writing a report file and exporting the
// word counts.
//
// Each step receives the run report and may annotate it (the archive step
// sets the run ID, which later steps print). Steps are independent outputs,
// so a pipeline can be told to keep going after a failed step and return
// every error at the end.
package pipeline
