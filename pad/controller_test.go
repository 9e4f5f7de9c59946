package pad

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juruen/digitpad/canvas"
	"github.com/juruen/digitpad/classifier"
	"github.com/juruen/digitpad/sample"
)

type fakeClassifier struct {
	mu       sync.Mutex
	samples  []sample.Sample
	labels   []sample.Label
	epochs   []int
	release  chan struct{}
	predicts int
}

func (f *fakeClassifier) wait() {
	if f.release != nil {
		<-f.release
	}
}

func (f *fakeClassifier) Predict(ctx context.Context, s sample.Sample) (*classifier.Prediction, error) {
	f.mu.Lock()
	f.samples = append(f.samples, s)
	f.predicts++
	f.mu.Unlock()
	f.wait()
	return &classifier.Prediction{Digit: 3, Confidence: 0.75}, nil
}

func (f *fakeClassifier) Train(ctx context.Context, s sample.Sample, label sample.Label) (*classifier.TrainAck, error) {
	f.mu.Lock()
	f.samples = append(f.samples, s)
	f.labels = append(f.labels, label)
	f.mu.Unlock()
	f.wait()
	count := len(f.labels)
	return &classifier.TrainAck{Message: "Sample stored", Count: &count}, nil
}

func (f *fakeClassifier) TrainAll(ctx context.Context, epochs int) (*classifier.TrainAllAck, error) {
	f.mu.Lock()
	f.epochs = append(f.epochs, epochs)
	f.mu.Unlock()
	f.wait()
	return &classifier.TrainAllAck{Message: "Training complete", Epochs: epochs, AvgEpochLoss: 0.5, Samples: 2}, nil
}

func (f *fakeClassifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.samples) + len(f.epochs)
}

func newTestPad(client Classifier) (*Controller, *canvas.Surface, *canvas.Feed) {
	surface := canvas.New(&canvas.StaticViewport{Width: 280, Height: 280, Ratio: 1})
	feed := &canvas.Feed{}
	surface.Attach(feed)
	return New(surface, client, 0), surface, feed
}

func next(t *testing.T, c *Controller) Outcome {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	o, err := c.Next(ctx)
	require.NoError(t, err)
	return o
}

func TestPredictBlankDrawing(t *testing.T) {
	fake := &fakeClassifier{}
	c, _, _ := newTestPad(fake)

	c.Predict(context.Background())
	assert.Equal(t, StatusPredicting, c.Status())

	o := next(t, c)
	assert.Equal(t, KindPredict, o.Kind)
	assert.Equal(t, "Prediction: 3  (confidence: 75.0%)", c.Result())
	assert.Empty(t, c.Status())

	require.Len(t, fake.samples, 1)
	assert.Equal(t, sample.Sample{}, fake.samples[0])
}

func TestTrainInvalidLabelSendsNothing(t *testing.T) {
	fake := &fakeClassifier{}
	c, _, feed := newTestPad(fake)
	feed.Stroke(canvas.MouseEvent{ClientX: 10, ClientY: 10}, canvas.MouseEvent{ClientX: 100, ClientY: 100})

	for _, input := range []string{"10", "-1", "2.5", "x", ""} {
		err := c.Train(context.Background(), input)
		var verr *sample.ValidationError
		assert.True(t, errors.As(err, &verr), input)
		assert.Equal(t, classifier.ValidationMessage, c.Result())
	}

	assert.Empty(t, c.Poll())
	assert.Equal(t, 0, fake.calls())
}

func TestTrainAndTrainAll(t *testing.T) {
	fake := &fakeClassifier{}
	c, _, _ := newTestPad(fake)

	require.NoError(t, c.Train(context.Background(), " 7 "))
	assert.Equal(t, StatusTraining, c.Status())
	o := next(t, c)
	assert.Equal(t, KindTrain, o.Kind)
	assert.Equal(t, "Sample stored  samples=1", c.Result())
	assert.Equal(t, []sample.Label{7}, fake.labels)

	c.TrainAll(context.Background())
	assert.Equal(t, StatusTrainAll, c.Status())
	next(t, c)
	assert.Equal(t, "Training complete  epochs=10  avgLoss=0.500  samples=2", c.Result())
	assert.Equal(t, []int{classifier.DefaultEpochs}, fake.epochs)
}

func TestSampleIsCapturedAtSubmission(t *testing.T) {
	fake := &fakeClassifier{release: make(chan struct{})}
	c, surface, feed := newTestPad(fake)

	c.Predict(context.Background())

	// keep drawing while the request is in flight
	feed.Stroke(canvas.MouseEvent{ClientX: 10, ClientY: 10}, canvas.MouseEvent{ClientX: 200, ClientY: 200})
	assert.False(t, sample.FromImage(surface.Raster()).IsBlank())

	close(fake.release)
	next(t, c)

	require.Len(t, fake.samples, 1)
	assert.True(t, fake.samples[0].IsBlank())
}

func TestConcurrentRequestsAreIndependent(t *testing.T) {
	fake := &fakeClassifier{}
	c, _, feed := newTestPad(fake)

	c.Predict(context.Background())
	feed.Stroke(canvas.MouseEvent{ClientX: 10, ClientY: 10}, canvas.MouseEvent{ClientX: 200, ClientY: 200})
	c.Predict(context.Background())

	next(t, c)
	next(t, c)

	require.Len(t, fake.samples, 2)
	blank := 0
	for _, s := range fake.samples {
		if s.IsBlank() {
			blank++
		}
	}
	assert.Equal(t, 1, blank)
}

func TestClearEmptiesResult(t *testing.T) {
	fake := &fakeClassifier{}
	c, surface, _ := newTestPad(fake)

	c.Predict(context.Background())
	next(t, c)
	require.NotEmpty(t, c.Result())

	surface.Clear()
	assert.Empty(t, c.Result())
}

func TestPollAppliesFinishedOutcomes(t *testing.T) {
	fake := &fakeClassifier{}
	c, _, _ := newTestPad(fake)

	c.Predict(context.Background())
	var done []Outcome
	assert.Eventually(t, func() bool {
		done = append(done, c.Poll()...)
		return len(done) == 1
	}, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, "Prediction: 3  (confidence: 75.0%)", c.Result())
}

func TestServerErrorLeavesSurfaceUsable(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"digit":4,"confidence":0.5}`)
	}))
	defer srv.Close()

	c, surface, feed := newTestPad(classifier.NewClient(srv.URL))
	feed.Stroke(canvas.MouseEvent{ClientX: 50, ClientY: 50}, canvas.MouseEvent{ClientX: 120, ClientY: 200})
	before := append([]byte(nil), surface.Composite().Pix...)

	c.Predict(context.Background())
	o := next(t, c)

	var serr *classifier.ServerError
	require.True(t, errors.As(o.Err, &serr))
	assert.Equal(t, 500, serr.StatusCode)
	assert.Equal(t, "Error: HTTP 500", c.Result())
	assert.True(t, bytes.Equal(before, surface.Composite().Pix))

	// the surface keeps working
	feed.Stroke(canvas.MouseEvent{ClientX: 200, ClientY: 20}, canvas.MouseEvent{ClientX: 260, ClientY: 60})
	surface.Clear()
	assert.True(t, sample.FromImage(surface.Raster()).IsBlank())

	c.Predict(context.Background())
	o = next(t, c)
	require.NoError(t, o.Err)
	assert.Equal(t, 4, o.Prediction.Digit)
}

func TestSetEpochs(t *testing.T) {
	fake := &fakeClassifier{}
	c, _, _ := newTestPad(fake)

	c.SetEpochs(0)
	assert.Equal(t, classifier.DefaultEpochs, c.Epochs())
	c.SetEpochs(3)
	c.TrainAll(context.Background())
	next(t, c)
	assert.Equal(t, []int{3}, fake.epochs)
}

func TestLabelInput(t *testing.T) {
	var l LabelInput
	l.Backspace()
	assert.Equal(t, "", l.String())

	for _, r := range "123456" {
		l.Type(r)
	}
	assert.Equal(t, "1234", l.String())

	l.Backspace()
	assert.Equal(t, "123", l.String())

	l.Reset()
	l.Type('7')
	assert.Equal(t, "7", l.String())
}
