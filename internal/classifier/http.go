package classifier

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	sharederrors "github.com/securecode-ai/securecode/pkg/shared/errors"
)

// HTTPService talks to an external model inference server exposing
// POST /predict. The server loads the pretrained multi-label model; this
// client only carries the request/response shapes.
type HTTPService struct {
	httpc  *resty.Client
	logger hclog.Logger
}

type predictRequest struct {
	Code      string  `json:"code"`
	Threshold float64 `json:"threshold"`
}

type predictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// NewHTTPService creates a classifier client on top of a configured resty
// client. baseURL points at the inference server root.
func NewHTTPService(httpc *resty.Client, baseURL string, logger hclog.Logger) *HTTPService {
	httpc.SetBaseURL(baseURL)
	return &HTTPService{
		httpc:  httpc,
		logger: logger,
	}
}

// Predict sends the code to the inference server and returns the scored
// categories above threshold.
func (s *HTTPService) Predict(ctx context.Context, code string, threshold float64) ([]Prediction, error) {
	var result predictResponse
	resp, err := s.httpc.R().
		SetContext(ctx).
		SetBody(predictRequest{Code: code, Threshold: threshold}).
		SetResult(&result).
		Post("/predict")
	if err != nil {
		return nil, sharederrors.NewClassifierError("predict request failed", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, sharederrors.NewClassifierError(
			"unexpected status "+resp.Status(), nil)
	}

	s.logger.Debug("classifier prediction", "categories", len(result.Predictions))
	return result.Predictions, nil
}

// Available always reports true for a configured HTTP service; transient
// reachability problems surface as Predict errors instead.
func (s *HTTPService) Available() bool {
	return true
}
