package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"devevents/src-server/model"
	"devevents/src-server/preview"
	"devevents/src-server/utils"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	maxUploadBytes = 10 << 20
	// room for the multipart framing and the other fields
	maxBodyBytes = maxUploadBytes + 1<<20
)

var errImageTooLarge = errors.New("image is larger than 10 MB")

func bodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// Events serves the endpoint form sessions submit to, plus a listing.
func Events(muxer *http.ServeMux, as *utils.AppState) {
	type CreateEventRespBody struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		Event   *model.Event `json:"event,omitempty"`
	}

	muxer.HandleFunc("POST /api/events", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			if bodyTooLarge(err) {
				writeMessage(w, http.StatusRequestEntityTooLarge, "Image must be at most 10 MB")
				return
			}
			writeMessage(w, http.StatusBadRequest, "Invalid multipart body")
			return
		}
		defer r.MultipartForm.RemoveAll()

		// #region - parse fields
		eventModel := &model.Event{
			ID:          uuid.NewString(),
			Title:       strings.TrimSpace(r.FormValue("title")),
			Mode:        model.EventMode(strings.TrimSpace(r.FormValue("mode"))),
			Description: r.FormValue("description"),
			Organizer:   r.FormValue("organizer"),
			Audience:    r.FormValue("audience"),
			Time:        r.FormValue("time"),
			Venue:       r.FormValue("venue"),
			Overview:    r.FormValue("overview"),
			Location:    r.FormValue("location"),
			Date:        r.FormValue("date"),
		}
		if eventModel.Title == "" {
			writeMessage(w, http.StatusBadRequest, "Title is required")
			return
		}
		if !eventModel.Mode.Valid() {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Invalid mode %q", eventModel.Mode))
			return
		}
		for name, dst := range map[string]*[]string{
			"tags":   &eventModel.Tags,
			"agenda": &eventModel.Agenda,
		} {
			raw := r.FormValue(name)
			if raw == "" {
				*dst = []string{}
				continue
			}
			if err := json.Unmarshal([]byte(raw), dst); err != nil {
				writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Field %s must be a JSON array of strings", name))
				return
			}
		}
		// #endregion

		// #region - store image
		imagePath, err := saveImage(r, as.Config.GetImageDir())
		switch {
		case errors.Is(err, http.ErrMissingFile):
			writeMessage(w, http.StatusBadRequest, "Image is required")
			return
		case errors.Is(err, errImageTooLarge):
			writeMessage(w, http.StatusRequestEntityTooLarge, "Image must be at most 10 MB")
			return
		case errors.Is(err, preview.ErrEmptyFile), errors.Is(err, preview.ErrNotImage):
			writeMessage(w, http.StatusBadRequest, "Image must be a non-empty image file")
			return
		case err != nil:
			slog.Error("can't store image", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Can't store image")
			return
		}
		eventModel.ImagePath = imagePath
		// #endregion

		if startsAt, err := utils.StartsAt(as.When, eventModel.Date, eventModel.Time,
			as.Config.GetLocation(), time.Now()); err == nil {
			eventModel.StartsAtUnixUTC = startsAt.UTC().Unix()
		} else {
			slog.Debug("can't work out when the event starts", "title", eventModel.Title, "error", err)
		}

		start := time.Now()
		err = as.BunDB.RunInTx(r.Context(), nil, func(ctx context.Context, tx bun.Tx) error {
			return eventModel.Insert(ctx, tx)
		})
		utils.Observe(as.MetricChans.DatabaseWrite, float64(time.Since(start).Microseconds()))
		switch {
		case errors.Is(err, model.ErrDuplicateTitle):
			writeMessage(w, http.StatusConflict, "An event with this title already exists")
			return
		case err != nil:
			slog.Error("can't insert event", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Can't save event")
			return
		}

		slog.Info("event created", "id", eventModel.ID, "title", eventModel.Title)
		writeJSON(w, http.StatusCreated, CreateEventRespBody{
			Success: true,
			Message: "Event created",
			Event:   eventModel,
		})
	})

	muxer.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		eventModels := make([]model.Event, 0)
		if err := as.BunDB.NewSelect().
			Model(&eventModels).
			Order("created_at DESC").
			Scan(r.Context()); err != nil {
			slog.Error("can't list events", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Can't get events")
			return
		}
		writeJSON(w, http.StatusOK, eventModels)
	})
}

// saveImage stores the "image" part under dir, named by its content hash so
// the same picture uploaded twice is kept once.
func saveImage(r *http.Request, dir string) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return "", err
	}
	defer file.Close()
	if header.Size > maxUploadBytes {
		return "", errImageTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("saveImage: %w", err)
	}
	if len(data) == 0 {
		return "", preview.ErrEmptyFile
	}
	image := model.ImageFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	mediaType, err := preview.MediaType(image)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("saveImage: %w", err)
	}
	path := filepath.Join(dir, utils.GetFileHash(data)+ext)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("saveImage: %w", err)
	}
	return path, nil
}
