// Package classifier wraps the remote prediction service. The service is an
// opaque collaborator: it takes a feature record and answers with a binary
// surge classification, or a wait-time estimate for the individual
// prediction endpoint. Any response that does not match the expected shape
// is treated as a call failure by the callers.
package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// SurgeFeatures is the feature record sent for one hourly bucket.
type SurgeFeatures struct {
	VisitDate           string `json:"visit_date"`
	DayOfWeek           string `json:"day_of_week"`
	AvailableBeds       int    `json:"available_beds"`
	UrgencyLevel        string `json:"urgency_level"`
	Season              string `json:"season"`
	LocalEvent          int    `json:"local_event"`
	NurseToPatientRatio int    `json:"nurse_to_patient_ratio"`
}

// SurgeResult is the classifier's answer for one bucket.
type SurgeResult struct {
	Prediction     *float64 `json:"prediction"`
	Label          string   `json:"surcharge"`
	Recommendation string   `json:"recommendations,omitempty"`
}

// WaitResult is the wait-time predictor's answer.
type WaitResult struct {
	Prediction *float64 `json:"prediction"`
}

type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

// PredictSurge classifies one hourly bucket as surge (1) or normal (0).
// A non-2xx status, a missing prediction field or a value other than 0/1
// all come back as errors so the caller can apply its own fallback.
func (c *Client) PredictSurge(ctx context.Context, features SurgeFeatures) (int, error) {
	var result SurgeResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(features).
		SetResult(&result).
		Post("/predict_surcharge")
	if err != nil {
		return 0, fmt.Errorf("call classifier: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("classifier returned status %d", resp.StatusCode())
	}
	if result.Prediction == nil {
		return 0, fmt.Errorf("classifier response missing prediction")
	}
	v := int(*result.Prediction)
	if float64(v) != *result.Prediction || (v != 0 && v != 1) {
		return 0, fmt.Errorf("classifier prediction out of range: %v", *result.Prediction)
	}
	return v, nil
}

// PredictWait estimates the wait time in minutes for one patient. The
// feature vector order is fixed: urgency level, nurse-to-patient ratio,
// specialist availability, registration delay, time to professional,
// bed availability percent.
func (c *Client) PredictWait(ctx context.Context, features []float64) (float64, error) {
	var result WaitResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string][]float64{"features": features}).
		SetResult(&result).
		Post("/predict")
	if err != nil {
		return 0, fmt.Errorf("call predictor: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("predictor returned status %d", resp.StatusCode())
	}
	if result.Prediction == nil {
		return 0, fmt.Errorf("predictor response missing prediction")
	}
	return *result.Prediction, nil
}
