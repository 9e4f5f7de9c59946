package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juruen/digitpad/auth"
	"github.com/juruen/digitpad/sample"
)

type recorder struct {
	mu       sync.Mutex
	calls    int
	paths    []string
	bodies   []map[string]interface{}
	headers  []http.Header
	status   int
	response string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	r.paths = append(r.paths, req.URL.Path)
	r.headers = append(r.headers, req.Header.Clone())
	var body map[string]interface{}
	json.NewDecoder(req.Body).Decode(&body)
	r.bodies = append(r.bodies, body)

	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, r.response)
}

func newTestClient(t *testing.T, rec *recorder, opts ...Option) *Client {
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", opts...)
}

func inkedSample() sample.Sample {
	var s sample.Sample
	s[0] = 0.5
	s[sample.Size-1] = 1
	return s
}

func TestPredict(t *testing.T) {
	rec := &recorder{response: `{"digit":7,"confidence":0.92,"probs":[0.005,0.03,0.005,0.005,0.005,0.005,0.005,0.92,0.005,0.02]}`}
	c := newTestClient(t, rec)

	p, err := c.Predict(context.Background(), inkedSample())
	require.NoError(t, err)
	assert.Equal(t, 7, p.Digit)
	assert.Equal(t, 0.92, p.Confidence)
	assert.Len(t, p.Probs, 10)

	require.Equal(t, 1, rec.calls)
	assert.Equal(t, PredictPath, rec.paths[0])
	assert.Equal(t, "application/json", rec.headers[0].Get("Content-Type"))
	assert.NotEmpty(t, rec.headers[0].Get("X-Request-Id"))
	assert.Empty(t, rec.headers[0].Get("Authorization"))

	image, ok := rec.bodies[0]["image"].([]interface{})
	require.True(t, ok)
	assert.Len(t, image, sample.Size)
	assert.Equal(t, 0.5, image[0])
	assert.Equal(t, 1.0, image[sample.Size-1])

	assert.Equal(t, "Prediction: 7  (92.0%)  |  top-3 7:92.0%  1:3.0%  9:2.0%", FormatPrediction(p))
}

func TestPredictWithoutProbs(t *testing.T) {
	rec := &recorder{response: `{"digit":1,"confidence":0.51}`}
	c := newTestClient(t, rec)

	p, err := c.Predict(context.Background(), sample.Sample{})
	require.NoError(t, err)
	assert.Nil(t, p.Probs)
	assert.Equal(t, "Prediction: 1  (confidence: 51.0%)", FormatPrediction(p))
}

func TestPredictServerError(t *testing.T) {
	rec := &recorder{status: http.StatusInternalServerError, response: `{"error":"boom"}`}
	c := newTestClient(t, rec)

	_, err := c.Predict(context.Background(), inkedSample())
	var serr *ServerError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 500, serr.StatusCode)
	assert.Equal(t, `{"error":"boom"}`, serr.Body)
	assert.Equal(t, "Error: HTTP 500", FormatError(err))
}

func TestPredictResponseShape(t *testing.T) {
	for _, body := range []string{
		`not json`,
		`{}`,
		`{"digit":3}`,
		`{"digit":12,"confidence":0.5}`,
		`{"digit":3,"confidence":1.5}`,
		`{"digit":3,"confidence":0.5,"probs":[0.5,0.5]}`,
		`null`,
	} {
		rec := &recorder{response: body}
		c := newTestClient(t, rec)

		_, err := c.Predict(context.Background(), inkedSample())
		var shape *ResponseShapeError
		assert.True(t, errors.As(err, &shape), body)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url)
	_, err := c.Predict(context.Background(), inkedSample())
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "predict", terr.Op)
}

func TestTrain(t *testing.T) {
	rec := &recorder{response: `{"message":"Sample stored","loss":0.1234,"count":3}`}
	c := newTestClient(t, rec)

	label, err := sample.ParseLabel("4")
	require.NoError(t, err)

	ack, err := c.Train(context.Background(), inkedSample(), label)
	require.NoError(t, err)
	assert.Equal(t, "Sample stored  loss=0.123  samples=3", FormatTrain(ack))

	assert.Equal(t, TrainPath, rec.paths[0])
	assert.Equal(t, 4.0, rec.bodies[0]["label"])
}

func TestTrainMinimalAck(t *testing.T) {
	rec := &recorder{response: `{}`}
	c := newTestClient(t, rec)

	ack, err := c.Train(context.Background(), inkedSample(), sample.Label(0))
	require.NoError(t, err)
	assert.Equal(t, "Training sample stored.", FormatTrain(ack))
}

func TestTrainRejectsInvalidLabel(t *testing.T) {
	rec := &recorder{response: `{}`}
	c := newTestClient(t, rec)

	for _, l := range []sample.Label{-1, 10, 42} {
		_, err := c.Train(context.Background(), inkedSample(), l)
		var verr *sample.ValidationError
		assert.True(t, errors.As(err, &verr))
	}
	assert.Equal(t, 0, rec.calls)
}

func TestTrainAll(t *testing.T) {
	rec := &recorder{response: `{"message":"Training complete","epochs":10,"avg_epoch_loss":0.4567,"samples":25}`}
	c := newTestClient(t, rec)

	ack, err := c.TrainAll(context.Background(), DefaultEpochs)
	require.NoError(t, err)
	assert.Equal(t, "Training complete  epochs=10  avgLoss=0.457  samples=25", FormatTrainAll(ack))
	assert.Equal(t, TrainAllPath, rec.paths[0])
	assert.Equal(t, 10.0, rec.bodies[0]["epochs"])
}

func TestTrainAllResponseShape(t *testing.T) {
	rec := &recorder{response: `{"message":"ok","epochs":10}`}
	c := newTestClient(t, rec)

	_, err := c.TrainAll(context.Background(), 10)
	var shape *ResponseShapeError
	assert.True(t, errors.As(err, &shape))
}

func TestAuthHeader(t *testing.T) {
	rec := &recorder{response: `{"digit":1,"confidence":0.6}`}
	c := newTestClient(t, rec, WithAuthSecret("s3cret"))

	_, err := c.Predict(context.Background(), inkedSample())
	require.NoError(t, err)

	token, err := auth.FromHeader(rec.headers[0].Get("Authorization"))
	require.NoError(t, err)
	assert.NoError(t, auth.Verify("s3cret", token))
}

func TestResolveBaseURL(t *testing.T) {
	assert.Equal(t, "http://api.example", ResolveBaseURL("http://api.example/", "http://origin"))
	assert.Equal(t, "http://origin", ResolveBaseURL("", "http://origin/"))
	assert.Equal(t, "http://origin", ResolveBaseURL("  ", "http://origin"))
	assert.Equal(t, "http://origin", NewClient("http://origin//").BaseURL())
}

func TestTopK(t *testing.T) {
	top := TopK([]float64{0.1, 0.3, 0.3, 0.05, 0.25}, 3)
	assert.Equal(t, []Ranked{{1, 0.3}, {2, 0.3}, {4, 0.25}}, top)

	assert.Len(t, TopK([]float64{0.5, 0.5}, 3), 2)
}

func TestTrainBatch(t *testing.T) {
	var inFlight, maxInFlight int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)

		var req TrainRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Label == 5 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"message":"Sample stored"}`)
	}))
	defer srv.Close()

	var items []LabeledSample
	for i := 0; i < 10; i++ {
		items = append(items, LabeledSample{Name: fmt.Sprintf("item%d", i), Label: sample.Label(i)})
	}

	c := NewClient(srv.URL)
	results, err := c.TrainBatch(context.Background(), items, 3)
	require.NoError(t, err)
	require.Len(t, results, 10)

	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("item%d", i), r.Name)
		if i == 5 {
			var serr *ServerError
			assert.True(t, errors.As(r.Err, &serr))
			continue
		}
		assert.NoError(t, r.Err)
		assert.Equal(t, "Sample stored", r.Ack.Message)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(3))
}
