package pipeline

import "github.com/dtnitsch/lm-corpus/pkg/mapreduce"

// Message is the unit carried on the transfer channel between workers and
// the aggregator. It is either a PartialCount or a Termination.
type Message interface {
	isMessage()
}

// PartialCount is a batch of word count increments from one worker.
// An empty Counts is a legitimate batch (e.g. a shard with no words) and is
// never mistaken for the end of the stream.
type PartialCount struct {
	Counts        mapreduce.Counts
	BytesConsumed uint64
}

// Termination tells the aggregator that every worker has finished.
// The orchestrator sends exactly one.
type Termination struct{}

func (PartialCount) isMessage() {}
func (Termination) isMessage()  {}
