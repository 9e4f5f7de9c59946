// Package server is a reference implementation of the classifier HTTP API
// the pad talks to.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sync"

	"github.com/juruen/digitpad/auth"
	"github.com/juruen/digitpad/classifier"
	"github.com/juruen/digitpad/log"
	"github.com/juruen/digitpad/model"
	"github.com/juruen/digitpad/sample"
	"github.com/juruen/digitpad/store"
)

const (
	DefaultEpochs = 10
	MaxEpochs     = 100
)

type ApiServer struct {
	store      store.Store
	authSecret string
	rng        *rand.Rand

	mu  sync.Mutex // guards net and rng
	net *model.MLP
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Option func(*ApiServer)

// WithAuthSecret requires a valid bearer token on every /api/ route.
func WithAuthSecret(secret string) Option {
	return func(s *ApiServer) {
		s.authSecret = secret
	}
}

// WithSeed fixes the shuffling of train_all.
func WithSeed(seed int64) Option {
	return func(s *ApiServer) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

func NewApiServer(st store.Store, net *model.MLP, opts ...Option) *ApiServer {
	s := &ApiServer{
		store: st,
		net:   net,
		rng:   rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes of the API.
func (s *ApiServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle(classifier.PredictPath, s.protect(s.handlePredict))
	mux.Handle(classifier.TrainPath, s.protect(s.handleTrain))
	mux.Handle(classifier.TrainAllPath, s.protect(s.handleTrainAll))

	// Root endpoint with API documentation
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
	<title>digitpad classifier API</title>
</head>
<body>
	<h1>digitpad classifier API</h1>
	<h2>Endpoints:</h2>
	<ul>
		<li>GET /health - Status and number of stored samples</li>
		<li>POST /api/predict - Classify a 784 value image</li>
		<li>POST /api/train - Store a labelled image and take one training step</li>
		<li>POST /api/train_all - Train over every stored sample</li>
	</ul>
</body>
</html>
		`)
	})

	return withCORS(mux)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *ApiServer) protect(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authSecret != "" {
			token, err := auth.FromHeader(r.Header.Get("Authorization"))
			if err == nil {
				err = auth.Verify(s.authSecret, token)
			}
			if err != nil {
				s.writeError(w, http.StatusUnauthorized, err)
				return
			}
		}
		log.Trace.Printf("%s %s (request %s)", r.Method, r.URL.Path, r.Header.Get("X-Request-Id"))
		h(w, r)
	})
}

func (s *ApiServer) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}

func (s *ApiServer) writeSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// GET /health
func (s *ApiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	count, err := s.store.Count(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeSuccess(w, map[string]interface{}{"status": "ok", "training_samples": count})
}

// imageRequest accepts any JSON values so that bad input can be reported
// precisely instead of failing the whole decode.
type imageRequest struct {
	Image []interface{} `json:"image"`
	Label *json.Number  `json:"label"`
}

func parseImage(values []interface{}) (sample.Sample, error) {
	var s sample.Sample
	if len(values) != sample.Size {
		return s, fmt.Errorf("image must be a 28x28 flattened list of length %d", sample.Size)
	}
	for i, v := range values {
		n, ok := v.(json.Number)
		if !ok {
			return s, fmt.Errorf("image values must be numeric")
		}
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return s, fmt.Errorf("image values must be numeric")
		}
		s[i] = math.Min(1, math.Max(0, f))
	}
	return s, nil
}

func parseLabel(n *json.Number) (sample.Label, error) {
	if n == nil {
		return 0, fmt.Errorf("label must be an integer 0-9")
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("label must be an integer 0-9")
	}
	l, err := sample.NewLabel(int(v))
	if err != nil {
		return 0, fmt.Errorf("label must be an integer 0-9")
	}
	return l, nil
}

func decodeImageRequest(r *http.Request) (imageRequest, error) {
	var req imageRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid JSON body: %v", err)
	}
	return req, nil
}

// POST /api/predict
func (s *ApiServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeImageRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	img, err := parseImage(req.Image)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	probs, err := s.net.Probabilities(img.Slice())
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	top := classifier.TopK(probs, 1)[0]
	s.writeSuccess(w, classifier.PredictResponse{
		Digit:      &top.Class,
		Confidence: &top.Prob,
		Probs:      probs,
	})
}

// POST /api/train
func (s *ApiServer) handleTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeImageRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	img, err := parseImage(req.Image)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	label, err := parseLabel(req.Label)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	_, count, err := s.store.Add(r.Context(), img, label)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to store sample: %v", err))
		return
	}

	s.mu.Lock()
	loss, err := s.net.TrainStep(img.Slice(), int(label))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeSuccess(w, classifier.TrainResponse{
		Message: "Sample stored",
		Loss:    &loss,
		Count:   &count,
	})
}

// POST /api/train_all
func (s *ApiServer) handleTrainAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Epochs *int `json:"epochs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %v", err))
		return
	}
	epochs := DefaultEpochs
	if req.Epochs != nil {
		epochs = *req.Epochs
	}
	if epochs < 1 || epochs > MaxEpochs {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("epochs must be between 1 and %d", MaxEpochs))
		return
	}

	records, err := s.store.All(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to load samples: %v", err))
		return
	}
	if len(records) == 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("no training samples stored"))
		return
	}

	avg, err := s.trainEpochs(r.Context(), records, epochs)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	message := "Training complete"
	samples := len(records)
	s.writeSuccess(w, classifier.TrainAllResponse{
		Message:      &message,
		Epochs:       &epochs,
		AvgEpochLoss: &avg,
		Samples:      &samples,
	})
}

// trainEpochs runs SGD over records, shuffled each epoch, and returns the
// mean over epochs of the mean sample loss.
func (s *ApiServer) trainEpochs(ctx context.Context, records []store.Record, epochs int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for e := 0; e < epochs; e++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		s.rng.Shuffle(len(records), func(i, j int) { records[i], records[j] = records[j], records[i] })

		var epochLoss float64
		for _, rec := range records {
			loss, err := s.net.TrainStep(rec.Image.Slice(), int(rec.Label))
			if err != nil {
				return 0, err
			}
			epochLoss += loss
		}
		mean := epochLoss / float64(len(records))
		log.Trace.Printf("epoch %d/%d: loss %.4f", e+1, epochs, mean)
		total += mean
	}
	return total / float64(epochs), nil
}
