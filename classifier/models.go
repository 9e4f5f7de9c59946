package classifier

// Wire models of the classifier HTTP API. Optional response fields are
// pointers so a missing field can be told apart from a zero value.

// PredictRequest is the body of POST /api/predict
type PredictRequest struct {
	Image []float64 `json:"image"`
}

// PredictResponse is the body returned by /api/predict
type PredictResponse struct {
	Digit      *int      `json:"digit"`
	Confidence *float64  `json:"confidence"`
	Probs      []float64 `json:"probs,omitempty"`
}

// TrainRequest is the body of POST /api/train
type TrainRequest struct {
	Image []float64 `json:"image"`
	Label int       `json:"label"`
}

// TrainResponse is the body returned by /api/train
type TrainResponse struct {
	Message string   `json:"message,omitempty"`
	Loss    *float64 `json:"loss,omitempty"`
	Count   *int     `json:"count,omitempty"`
}

// TrainAllRequest is the body of POST /api/train_all
type TrainAllRequest struct {
	Epochs int `json:"epochs"`
}

// TrainAllResponse is the body returned by /api/train_all
type TrainAllResponse struct {
	Message      *string  `json:"message"`
	Epochs       *int     `json:"epochs"`
	AvgEpochLoss *float64 `json:"avg_epoch_loss"`
	Samples      *int     `json:"samples"`
}

// Prediction is a validated predict result
type Prediction struct {
	Digit      int
	Confidence float64
	// Probs holds one probability per class when the server sends them
	Probs []float64
}

// TrainAck acknowledges one stored training sample
type TrainAck struct {
	Message string
	Loss    *float64
	Count   *int
}

// TrainAllAck reports a batch training run over the stored samples
type TrainAllAck struct {
	Message      string
	Epochs       int
	AvgEpochLoss float64
	Samples      int
}
