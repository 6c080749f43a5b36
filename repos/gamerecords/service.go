package gamerecords

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
)

// Service is the read-only client for the external game-record verification
// API. The engine only ever supplies the finalized, locked draft record; it
// never interprets or stores the verdicts itself.
type Service struct {
	baseURL    string
	httpClient *http.Client
}

// NewService creates a new verification client from the environment.
func NewService() *Service {
	return &Service{
		baseURL:    os.Getenv("RECORDS_API_URL"),
		httpClient: &http.Client{},
	}
}

// FetchOutcomes asks the verification service for the per-sub-match outcomes
// of a completed draft.
func (s *Service) FetchOutcomes(ctx context.Context, request OutcomeRequest) (*OutcomeResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	apiURL := fmt.Sprintf("%s/records/outcomes", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-secret", os.Getenv("RECORDS_API_KEY"))

	response, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verification service returned %d", response.StatusCode)
	}

	var outcomes OutcomeResponse
	if err := json.NewDecoder(response.Body).Decode(&outcomes); err != nil {
		return nil, fmt.Errorf("failed to parse verification response: %w", err)
	}
	return &outcomes, nil
}
