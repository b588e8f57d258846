// Package audit records signup events outside the activity store.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mergington-activities/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// document is the indexed shape of a signup event.
type document struct {
	Timestamp    time.Time `json:"@timestamp"`
	EventType    string    `json:"event_type"`
	SignupID     string    `json:"signup_id"`
	ActivityName string    `json:"activity_name"`
	Email        string    `json:"email"`
	Position     int       `json:"position"`
}

// ElasticsearchSink indexes one document per signup, keyed by the signup id so a retried
// hook call overwrites instead of duplicating.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSink(client *elasticsearch.Client, index string) *ElasticsearchSink {
	return &ElasticsearchSink{client: client, index: index}
}

func (s *ElasticsearchSink) Name() string {
	return "elasticsearch-audit"
}

func (s *ElasticsearchSink) OnSignup(ctx context.Context, event models.SignupEvent) error {
	body, err := json.Marshal(document{
		Timestamp:    event.SignedUpAt,
		EventType:    "activity_signup",
		SignupID:     event.ID,
		ActivityName: event.ActivityName,
		Email:        event.Email,
		Position:     event.Position,
	})
	if err != nil {
		return fmt.Errorf("encode audit document: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithDocumentID(event.ID),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index signup event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index signup event: %s", res.Status())
	}
	return nil
}
