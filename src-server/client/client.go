package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"devevents/src-server/model"

	"github.com/technoweenie/multipartstreamer"
)

var ErrMalformedResponse = errors.New("malformed response body")

// Payload is one event creation request, already in wire shape.
type Payload struct {
	// scalar fields as (name, value) pairs
	Fields [][2]string
	Image  model.ImageFile
	Tags   []string
	// flattened "<time> - <topic>" entries
	Agenda []string
}

// Response is the JSON body the events endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RejectedError is returned when the endpoint answers with a non-2xx status.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("event rejected with status %d: %s", e.StatusCode, e.Message)
}

type EventsClient struct {
	endpoint   string
	httpClient *http.Client
}

// New returns a client posting to endpoint. timeout bounds a whole request;
// zero means no limit.
func New(endpoint string, timeout time.Duration) *EventsClient {
	return &EventsClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *EventsClient) Endpoint() string {
	return c.endpoint
}

// Create posts payload as a multipart form. Non-2xx answers come back as
// *RejectedError; a body that isn't the expected JSON yields
// ErrMalformedResponse.
func (c *EventsClient) Create(ctx context.Context, payload Payload) (*Response, error) {
	streamer, err := Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("(*EventsClient).Create: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("(*EventsClient).Create: %w", err)
	}
	streamer.SetupRequest(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("(*EventsClient).Create: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("(*EventsClient).Create: can't read body: %w", err)
	}
	respBody := new(Response)
	if err := json.Unmarshal(body, respBody); err != nil {
		return nil, fmt.Errorf("(*EventsClient).Create: %w: %w", ErrMalformedResponse, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := respBody.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return respBody, &RejectedError{StatusCode: resp.StatusCode, Message: message}
	}
	return respBody, nil
}

// Encode lays payload out as a multipart body: the scalar fields, tags and
// agenda as JSON string arrays, then the image part.
func Encode(payload Payload) (*multipartstreamer.MultipartStreamer, error) {
	tags := payload.Tags
	if tags == nil {
		tags = []string{}
	}
	agenda := payload.Agenda
	if agenda == nil {
		agenda = []string{}
	}
	tagsJson, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("can't marshal tags: %w", err)
	}
	agendaJson, err := json.Marshal(agenda)
	if err != nil {
		return nil, fmt.Errorf("can't marshal agenda: %w", err)
	}

	fields := make(map[string]string, len(payload.Fields)+2)
	for _, field := range payload.Fields {
		fields[field[0]] = field[1]
	}
	fields["tags"] = string(tagsJson)
	fields["agenda"] = string(agendaJson)

	streamer := multipartstreamer.New()
	if err := streamer.WriteFields(fields); err != nil {
		return nil, fmt.Errorf("can't write fields: %w", err)
	}
	filename := payload.Image.Name
	if filename == "" {
		filename = "image"
	}
	if err := streamer.WriteReader(
		"image", filename, payload.Image.Size(), bytes.NewReader(payload.Image.Data),
	); err != nil {
		return nil, fmt.Errorf("can't write image: %w", err)
	}
	return streamer, nil
}
