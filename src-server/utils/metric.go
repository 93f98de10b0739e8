package utils

// Channels feeding the prometheus collectors in the metric package. Sends
// never block: if nothing is collecting, the sample is dropped.
type Metric struct {
	SubmitLatency   chan float64
	SubmitOutcome   chan string
	DatabaseWrite   chan float64
	DiscordAnnounce chan float64
}

func NewMetric() *Metric {
	return &Metric{
		SubmitLatency:   make(chan float64, 16),
		SubmitOutcome:   make(chan string, 16),
		DatabaseWrite:   make(chan float64, 16),
		DiscordAnnounce: make(chan float64, 16),
	}
}

func Observe[T any](ch chan T, value T) {
	select {
	case ch <- value:
	default:
	}
}
