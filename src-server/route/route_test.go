package route

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"devevents/src-server/client"
	"devevents/src-server/model"
	"devevents/src-server/utils"
)

var pngData = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

func newTestServer(t *testing.T) (*utils.AppState, *httptest.Server) {
	t.Helper()
	cfg := utils.DefaultConfig()
	cfg.SetDatabasePath(":memory:")
	cfg.SetImageDir(t.TempDir())
	as, err := utils.NewAppState(cfg)
	if err != nil {
		t.Fatal(err)
	}

	muxer := http.NewServeMux()
	Events(muxer, as)
	Ical(muxer, as)
	Form(muxer, as)
	server := httptest.NewServer(LogMiddleware(muxer))
	as.Client = client.New(server.URL+"/api/events", 5*time.Second)

	t.Cleanup(func() {
		server.Close()
		as.GracefulShutdown()
	})
	return as, server
}

func doJSON(t *testing.T, method, url string, reqBody any, respBody any) int {
	t.Helper()
	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if respBody != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			t.Fatalf("%s %s: can't decode response: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func uploadImage(t *testing.T, url, name string, data []byte) (int, formRespBody) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body formRespBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, body
}

func testPayload(title string) client.Payload {
	d := model.NewDraftEvent()
	d.Title = title
	d.Mode = model.EVENT_MODE_HYBRID
	d.Date = "2026-11-02"
	d.Time = "18:30"
	d.Tags = []string{"go"}
	d.Agenda = []model.AgendaItem{{Time: "18:30", Topic: "Intro"}}
	return client.Payload{
		Fields: d.Fields(),
		Image:  model.ImageFile{Name: "cover.png", Data: pngData},
		Tags:   d.Tags,
		Agenda: d.FlattenAgenda(),
	}
}

func TestCreateEvent(t *testing.T) {
	as, server := newTestServer(t)
	c := client.New(server.URL+"/api/events", 5*time.Second)

	resp, err := c.Create(context.Background(), testPayload("Go Meetup"))
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Errorf("success = false, message %q", resp.Message)
	}

	_, err = c.Create(context.Background(), testPayload("  go meetup "))
	var rejected *client.RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("duplicate title: got %v, want a rejection", err)
	}
	if rejected.StatusCode != http.StatusConflict {
		t.Errorf("duplicate title: status %d, want 409", rejected.StatusCode)
	}

	var events []model.Event
	if status := doJSON(t, http.MethodGet, server.URL+"/api/events", nil, &events); status != http.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	event := events[0]
	if event.Mode != model.EVENT_MODE_HYBRID {
		t.Errorf("mode = %q", event.Mode)
	}
	if len(event.Agenda) != 1 || event.Agenda[0] != "18:30 - Intro" {
		t.Errorf("agenda = %q", event.Agenda)
	}
	if event.StartsAtUnixUTC != time.Date(2026, 11, 2, 18, 30, 0, 0, time.UTC).Unix() {
		t.Errorf("starts at %d", event.StartsAtUnixUTC)
	}
	if !strings.HasPrefix(event.ImagePath, as.Config.GetImageDir()) || !strings.HasSuffix(event.ImagePath, ".png") {
		t.Errorf("image path = %q", event.ImagePath)
	}
	stored, err := os.ReadFile(event.ImagePath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(stored, pngData) {
		t.Error("stored image differs from the upload")
	}
}

func TestCreateEventValidation(t *testing.T) {
	_, server := newTestServer(t)
	c := client.New(server.URL+"/api/events", 5*time.Second)

	withField := func(name, value string) client.Payload {
		p := testPayload("Validation")
		for i := range p.Fields {
			if p.Fields[i][0] == name {
				p.Fields[i][1] = value
			}
		}
		return p
	}
	testCases := map[string]client.Payload{
		"blank title":  withField("title", "   "),
		"unknown mode": withField("mode", "underwater"),
		"not an image": func() client.Payload {
			p := testPayload("Validation")
			p.Image = model.ImageFile{Name: "notes.txt", Data: []byte("plain text")}
			return p
		}(),
		"empty image": func() client.Payload {
			p := testPayload("Validation")
			p.Image = model.ImageFile{Name: "empty.png"}
			return p
		}(),
	}
	for name, payload := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Create(context.Background(), payload)
			var rejected *client.RejectedError
			if !errors.As(err, &rejected) {
				t.Fatalf("got %v, want a rejection", err)
			}
			if rejected.StatusCode != http.StatusBadRequest {
				t.Errorf("status %d, want 400", rejected.StatusCode)
			}
		})
	}
}

func TestFormSessionFlow(t *testing.T) {
	as, server := newTestServer(t)

	var state formRespBody
	if status := doJSON(t, http.MethodPost, server.URL+"/form", nil, &state); status != http.StatusCreated {
		t.Fatalf("create: status %d", status)
	}
	if state.Draft.Mode != model.EVENT_MODE_OFFLINE || state.Phase != "idle" {
		t.Fatalf("fresh session: %+v", state)
	}
	base := server.URL + "/form/" + state.ID

	for field, value := range map[string]string{
		"title": "Gophers Night",
		"date":  "2026-11-02",
		"time":  "18:30",
		"mode":  "online",
	} {
		if status := doJSON(t, http.MethodPut, base+"/fields/"+field, map[string]string{"value": value}, &state); status != http.StatusOK {
			t.Fatalf("set %s: status %d", field, status)
		}
	}
	if status := doJSON(t, http.MethodPut, base+"/fields/nope", map[string]string{"value": "x"}, nil); status != http.StatusBadRequest {
		t.Errorf("unknown field: status %d, want 400", status)
	}

	doJSON(t, http.MethodPost, base+"/tags", map[string]string{"value": " go "}, &state)
	doJSON(t, http.MethodPost, base+"/tags", map[string]string{"value": "go"}, &state)
	if len(state.Draft.Tags) != 1 || state.Draft.Tags[0] != "go" {
		t.Errorf("tags = %q", state.Draft.Tags)
	}

	doJSON(t, http.MethodPost, base+"/agenda", nil, &state)
	doJSON(t, http.MethodPut, base+"/agenda/0/topic", map[string]string{"value": "Lightning talks"}, &state)
	doJSON(t, http.MethodPut, base+"/agenda/7/topic", map[string]string{"value": "ignored"}, &state)
	if len(state.Draft.Agenda) != 1 || state.Draft.Agenda[0].Topic != "Lightning talks" {
		t.Errorf("agenda = %+v", state.Draft.Agenda)
	}

	status, state := uploadImage(t, base+"/image?wait=true", "cover.png", pngData)
	if status != http.StatusOK {
		t.Fatalf("image: status %d", status)
	}
	if state.Draft.ImageName != "cover.png" || !strings.HasPrefix(state.Draft.ImagePreview, "data:image/png;base64,") {
		t.Errorf("image not previewed: %q %q", state.Draft.ImageName, state.Draft.ImagePreview)
	}

	if status := doJSON(t, http.MethodPost, base+"/submit", nil, &state); status != http.StatusOK {
		t.Fatalf("submit: status %d, message %q", status, state.Message)
	}
	if state.Outcome != "success" || state.Message != "✅ Event created successfully!" {
		t.Errorf("after submit: %+v", state)
	}
	if state.Draft.Title != "" || len(state.Draft.Tags) != 0 || state.Draft.ImageName != "" {
		t.Errorf("draft not reset: %+v", state.Draft)
	}

	resp, err := http.Get(server.URL + "/api/events.ics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	feed, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(feed), "SUMMARY:Gophers Night\r\n") {
		t.Errorf("feed doesn't list the event:\n%s", feed)
	}

	if status := doJSON(t, http.MethodDelete, base, nil, nil); status != http.StatusNoContent {
		t.Errorf("delete: status %d", status)
	}
	if as.FormSessionCount() != 0 {
		t.Errorf("%d sessions left", as.FormSessionCount())
	}
}

func TestFormSubmitFailures(t *testing.T) {
	_, server := newTestServer(t)

	var state formRespBody
	doJSON(t, http.MethodPost, server.URL+"/form", nil, &state)
	base := server.URL + "/form/" + state.ID

	if status := doJSON(t, http.MethodPost, base+"/submit", nil, &state); status != http.StatusUnprocessableEntity {
		t.Errorf("no image: status %d, want 422", status)
	}
	if state.Message != "⚠️ Please select an image." {
		t.Errorf("no image: message %q", state.Message)
	}

	// a blank title is refused by the events endpoint
	uploadImage(t, base+"/image", "cover.png", pngData)
	if status := doJSON(t, http.MethodPost, base+"/submit", nil, &state); status != http.StatusUnprocessableEntity {
		t.Errorf("rejected: status %d, want 422", status)
	}
	if state.Message != "❌ Failed: Title is required" {
		t.Errorf("rejected: message %q", state.Message)
	}
	if state.Draft.ImageName != "cover.png" {
		t.Error("rejected submission cleared the draft")
	}
}

func TestFormUnknownSession(t *testing.T) {
	_, server := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/form/missing"},
		{http.MethodDelete, "/form/missing"},
		{http.MethodPost, "/form/missing/submit"},
		{http.MethodPost, "/form/missing/tags"},
	} {
		if status := doJSON(t, tc.method, server.URL+tc.path, nil, nil); status != http.StatusNotFound {
			t.Errorf("%s %s: status %d, want 404", tc.method, tc.path, status)
		}
	}
}

func TestFormOptions(t *testing.T) {
	_, server := newTestServer(t)
	var body struct {
		Modes []struct {
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"modes"`
	}
	doJSON(t, http.MethodGet, server.URL+"/form/options", nil, &body)
	if len(body.Modes) != 3 || body.Modes[2].Value != "hybrid" || body.Modes[2].Label != "Hybrid" {
		t.Errorf("modes = %+v", body.Modes)
	}
}

func TestImageSizeLimit(t *testing.T) {
	_, server := newTestServer(t)

	var state formRespBody
	doJSON(t, http.MethodPost, server.URL+"/form", nil, &state)
	base := server.URL + "/form/" + state.ID

	oversized := append(append([]byte{}, pngData...), make([]byte, maxUploadBytes+1-len(pngData))...)
	status, body := uploadImage(t, base+"/image", "huge.png", oversized)
	if status != http.StatusRequestEntityTooLarge {
		t.Errorf("form upload: status %d, want 413", status)
	}
	if body.Message != "Image must be at most 10 MB" {
		t.Errorf("form upload: message %q", body.Message)
	}
	doJSON(t, http.MethodGet, base, nil, &state)
	if state.Draft.ImageName != "" {
		t.Error("oversized image was selected")
	}

	c := client.New(server.URL+"/api/events", 5*time.Second)
	payload := testPayload("Huge cover")
	payload.Image = model.ImageFile{Name: "huge.png", Data: oversized}
	_, err := c.Create(context.Background(), payload)
	var rejected *client.RejectedError
	if !errors.As(err, &rejected) || rejected.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("events endpoint: got %v, want a 413 rejection", err)
	}
}
