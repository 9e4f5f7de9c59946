package classifier

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/juruen/digitpad/log"
	"github.com/juruen/digitpad/sample"
)

// LabeledSample is one training example of a batch
type LabeledSample struct {
	Name   string
	Sample sample.Sample
	Label  sample.Label
}

// BatchResult is the outcome of one batch item, in input order
type BatchResult struct {
	Name string
	Ack  *TrainAck
	Err  error
}

// TrainBatch sends every item with at most concurrency requests in flight.
// Failures are reported per item; the batch itself only fails when ctx is done.
func (c *Client) TrainBatch(ctx context.Context, items []LabeledSample, concurrency int64) ([]BatchResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]BatchResult, len(items))
	sem := semaphore.NewWeighted(concurrency)
	for i, item := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Trace.Printf("Failed to acquire semaphore: %v", err)
			return nil, err
		}
		go func(i int, item LabeledSample) {
			defer sem.Release(1)
			ack, err := c.Train(ctx, item.Sample, item.Label)
			if err != nil {
				log.Trace.Printf("Can't train %s: %v", item.Name, err)
			}
			results[i] = BatchResult{Name: item.Name, Ack: ack, Err: err}
		}(i, item)
	}

	// Wait for all goroutines to finish
	if err := sem.Acquire(ctx, concurrency); err != nil {
		log.Trace.Printf("Failed to acquire semaphore: %v", err)
		return nil, err
	}
	sem.Release(concurrency)

	return results, nil
}
