package core

import "time"

// Recorder receives operational events from the Service. The metrics
// package provides the Prometheus implementation.
type Recorder interface {
	IngestSucceeded(format Format, rows int, elapsed time.Duration)
	IngestFailed(kind ErrorKind)
	ViewRendered(matched int, elapsed time.Duration)
	DatasetEvicted(reason string)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) IngestSucceeded(Format, int, time.Duration) {}
func (NopRecorder) IngestFailed(ErrorKind)                     {}
func (NopRecorder) ViewRendered(int, time.Duration)            {}
func (NopRecorder) DatasetEvicted(string)                      {}
