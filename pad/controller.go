// Package pad glues the drawing surface to the classifier. Requests capture
// the sample on the calling goroutine, run concurrently, and report back
// through outcomes applied on the event loop.
package pad

import (
	"context"

	"github.com/juruen/digitpad/canvas"
	"github.com/juruen/digitpad/classifier"
	"github.com/juruen/digitpad/log"
	"github.com/juruen/digitpad/sample"
)

// Classifier is the remote side as seen by the pad
type Classifier interface {
	Predict(ctx context.Context, s sample.Sample) (*classifier.Prediction, error)
	Train(ctx context.Context, s sample.Sample, label sample.Label) (*classifier.TrainAck, error)
	TrainAll(ctx context.Context, epochs int) (*classifier.TrainAllAck, error)
}

// Kind of request an outcome belongs to
type Kind int

const (
	KindPredict Kind = iota
	KindTrain
	KindTrainAll
)

func (k Kind) String() string {
	switch k {
	case KindTrain:
		return "train"
	case KindTrainAll:
		return "train_all"
	default:
		return "predict"
	}
}

// Outcome is the finished result of one request
type Outcome struct {
	Kind       Kind
	Prediction *classifier.Prediction
	Train      *classifier.TrainAck
	TrainAll   *classifier.TrainAllAck
	Err        error
}

// Text is the result line for the outcome.
func (o Outcome) Text() string {
	switch {
	case o.Err != nil:
		return classifier.FormatError(o.Err)
	case o.Prediction != nil:
		return classifier.FormatPrediction(o.Prediction)
	case o.Train != nil:
		return classifier.FormatTrain(o.Train)
	case o.TrainAll != nil:
		return classifier.FormatTrainAll(o.TrainAll)
	}
	return ""
}

const (
	StatusPredicting = "Predicting…"
	StatusTraining   = "Sending training sample…"
	StatusTrainAll   = "Training over stored samples…"
)

// Controller owns the status and result lines shown next to the surface.
// Its methods, like the surface's, must be called from the event loop.
type Controller struct {
	surface  *canvas.Surface
	client   Classifier
	epochs   int
	outcomes chan Outcome

	status string
	result string
}

// New wires a controller to surface. Clearing the surface clears the result line.
func New(surface *canvas.Surface, client Classifier, epochs int) *Controller {
	if epochs <= 0 {
		epochs = classifier.DefaultEpochs
	}
	c := &Controller{
		surface:  surface,
		client:   client,
		epochs:   epochs,
		outcomes: make(chan Outcome, 16),
	}
	surface.OnClear(func() {
		c.result = ""
	})
	return c
}

// SetEpochs changes the epochs sent by later TrainAll calls. Values below 1
// are ignored.
func (c *Controller) SetEpochs(n int) {
	if n > 0 {
		c.epochs = n
	}
}

func (c *Controller) Epochs() int {
	return c.epochs
}

func (c *Controller) Status() string {
	return c.status
}

func (c *Controller) Result() string {
	return c.result
}

// Sample computes the current sample from the surface.
func (c *Controller) Sample() sample.Sample {
	return sample.FromImage(c.surface.Raster())
}

// Predict sends the drawing as it is now.
func (c *Controller) Predict(ctx context.Context) {
	s := c.Sample()
	c.status = StatusPredicting
	go func() {
		p, err := c.client.Predict(ctx, s)
		c.deliver(Outcome{Kind: KindPredict, Prediction: p, Err: err})
	}()
}

// Train validates labelText and, when valid, sends the drawing with it.
// An invalid label only updates the result line.
func (c *Controller) Train(ctx context.Context, labelText string) error {
	label, err := sample.ParseLabel(labelText)
	if err != nil {
		c.result = classifier.ValidationMessage
		return err
	}

	s := c.Sample()
	c.status = StatusTraining
	go func() {
		ack, err := c.client.Train(ctx, s, label)
		c.deliver(Outcome{Kind: KindTrain, Train: ack, Err: err})
	}()
	return nil
}

// TrainAll asks for a training run over the stored samples.
func (c *Controller) TrainAll(ctx context.Context) {
	c.status = StatusTrainAll
	epochs := c.epochs
	go func() {
		ack, err := c.client.TrainAll(ctx, epochs)
		c.deliver(Outcome{Kind: KindTrainAll, TrainAll: ack, Err: err})
	}()
}

func (c *Controller) deliver(o Outcome) {
	if o.Err != nil {
		log.Warning.Printf("%s failed: %v", o.Kind, o.Err)
	}
	c.outcomes <- o
}

// Poll applies every finished outcome without blocking and returns them.
func (c *Controller) Poll() []Outcome {
	var done []Outcome
	for {
		select {
		case o := <-c.outcomes:
			c.apply(o)
			done = append(done, o)
		default:
			return done
		}
	}
}

// Next waits for the next finished outcome and applies it.
func (c *Controller) Next(ctx context.Context) (Outcome, error) {
	select {
	case o := <-c.outcomes:
		c.apply(o)
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (c *Controller) apply(o Outcome) {
	c.result = o.Text()
	c.status = ""
}
