// Package gcsbridge publishes mission intents to the ground control
// station bridge. The bridge either accepts the intent for upload to the
// drone or rejects it, in which case the mission submission fails as a
// whole.
package gcsbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"skycourier/internal/core/domain/model/mission"
	"skycourier/internal/pkg/errs"

	"github.com/labstack/gommon/log"
)

const defaultTimeout = 10 * time.Second

// Publisher sends mission intents to the bridge over HTTP.
type Publisher struct {
	baseURL    string
	httpClient *http.Client
}

// NewPublisher creates a bridge publisher for the given base URL.
func NewPublisher(baseURL string) (*Publisher, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	return &Publisher{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// PublishMissionIntent posts the intent to the bridge. Any response other
// than 2xx counts as a rejection.
func (p *Publisher) PublishMissionIntent(ctx context.Context, intent mission.Intent) error {
	if err := intent.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(intent)
	if err != nil {
		return err
	}

	url := p.baseURL + "/api/v1/missions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mission publish: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errs.NewPreconditionFailedError(
			fmt.Sprintf("mission %s rejected by ground control bridge: status %d",
				intent.IntentID, resp.StatusCode))
	}
	return nil
}

// NoopPublisher accepts every intent without talking to a bridge. Used in
// environments without ground control connectivity.
type NoopPublisher struct{}

// PublishMissionIntent logs the intent and reports success.
func (NoopPublisher) PublishMissionIntent(_ context.Context, intent mission.Intent) error {
	log.Infof("mission intent accepted (noop bridge): %s", intent)
	return nil
}
