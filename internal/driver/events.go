package driver

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageLoad is the IR decoding stage.
	StageLoad Stage = "load"
	// StageValidate is the structural validation stage.
	StageValidate Stage = "validate"
	// StageVerify is the ownership verification stage.
	StageVerify Stage = "verify"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is currently being processed.
	StatusWorking Status = "working"
	// StatusDone indicates processing finished.
	StatusDone Status = "done"
	// StatusError indicates processing failed.
	StatusError Status = "error"
	// StatusCached indicates the result was served from the disk cache.
	StatusCached Status = "cached"
)

// Event reports progress for one file moving through the pipeline.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use; workers report from separate goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}
