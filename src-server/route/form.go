package route

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"devevents/src-server/client"
	"devevents/src-server/form"
	"devevents/src-server/model"
	"devevents/src-server/utils"
)

type draftRespBody struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Organizer    string             `json:"organizer"`
	Audience     string             `json:"audience"`
	Mode         model.EventMode    `json:"mode"`
	Time         string             `json:"time"`
	Venue        string             `json:"venue"`
	Overview     string             `json:"overview"`
	Location     string             `json:"location"`
	Date         string             `json:"date"`
	Tags         []string           `json:"tags"`
	Agenda       []model.AgendaItem `json:"agenda"`
	ImageName    string             `json:"imageName"`
	ImagePreview string             `json:"imagePreview"`
}

type formRespBody struct {
	ID      string        `json:"id"`
	Draft   draftRespBody `json:"draft"`
	Phase   string        `json:"phase"`
	Outcome string        `json:"outcome"`
	Message string        `json:"message"`
	Loading bool          `json:"loading"`
}

func newFormRespBody(id string, s form.Snapshot) formRespBody {
	d := s.Draft
	body := formRespBody{
		ID: id,
		Draft: draftRespBody{
			Title:        d.Title,
			Description:  d.Description,
			Organizer:    d.Organizer,
			Audience:     d.Audience,
			Mode:         d.Mode,
			Time:         d.Time,
			Venue:        d.Venue,
			Overview:     d.Overview,
			Location:     d.Location,
			Date:         d.Date,
			Tags:         d.Tags,
			Agenda:       d.Agenda,
			ImagePreview: d.ImagePreview,
		},
		Phase:   s.Phase.String(),
		Outcome: s.Outcome.String(),
		Message: s.Message,
		Loading: s.Loading(),
	}
	if d.Image != nil {
		body.Draft.ImageName = d.Image.Name
	}
	return body
}

// Form exposes form sessions over HTTP. Every mutating call answers with the
// session's state after the change.
func Form(muxer *http.ServeMux, as *utils.AppState) {
	type ValueReqBody struct {
		Value string `json:"value"`
	}

	type ModeOption struct {
		Value model.EventMode `json:"value"`
		Label string          `json:"label"`
	}

	// withSession resolves {id} and writes the resulting state afterwards
	withSession := func(next func(w http.ResponseWriter, r *http.Request, s *form.Session) bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id := r.PathValue("id")
			session, ok := as.GetFormSession(id)
			if !ok {
				writeMessage(w, http.StatusNotFound, "Form session not found")
				return
			}
			if next(w, r, session) {
				writeJSON(w, http.StatusOK, newFormRespBody(id, session.Snapshot()))
			}
		}
	}

	decodeValue := func(w http.ResponseWriter, r *http.Request) (string, bool) {
		var reqBody ValueReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil && !errors.Is(err, io.EOF) {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return "", false
		}
		return reqBody.Value, true
	}

	pathIndex := func(w http.ResponseWriter, r *http.Request) (int, bool) {
		index, err := strconv.Atoi(r.PathValue("index"))
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Index must be an integer")
			return 0, false
		}
		return index, true
	}

	muxer.HandleFunc("GET /form/options", func(w http.ResponseWriter, r *http.Request) {
		options := make([]ModeOption, len(model.EventModes))
		for i, mode := range model.EventModes {
			options[i] = ModeOption{Value: mode, Label: utils.ModeLabel(mode)}
		}
		writeJSON(w, http.StatusOK, map[string]any{"modes": options})
	})

	muxer.HandleFunc("POST /form", func(w http.ResponseWriter, r *http.Request) {
		info := as.NewFormSession()
		writeJSON(w, http.StatusCreated, newFormRespBody(info.ID, info.Session.Snapshot()))
	})

	muxer.HandleFunc("GET /form/{id}", withSession(
		func(w http.ResponseWriter, r *http.Request, s *form.Session) bool {
			return true
		}))

	muxer.HandleFunc("DELETE /form/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !as.RemoveFormSession(r.PathValue("id")) {
			writeMessage(w, http.StatusNotFound, "Form session not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	muxer.HandleFunc("PUT /form/{id}/fields/{field}", withSession(
		func(w http.ResponseWriter, r *http.Request, s *form.Session) bool {
			value, ok := decodeValue(w, r)
			if !ok {
				return false
			}
			if err := s.SetField(r.PathValue("field"), value); err != nil {
				writeMessage(w, http.StatusBadRequest, err.Error())
				return false
			}
			return true
		}))

	// #region - tags
	muxer.HandleFunc("POST /form/{id}/tags", withSession(
		func(w http.ResponseWriter, r *http.Request, s *form.Session) bool {
			value, ok := decodeValue(w, r)
			if !ok {
				return false
			}
			s.AddTag(value)
			return true
		}))

	muxer.HandleFunc("DELETE /form/{id}/tags/{index}", withSession(
		func(w http.ResponseWriter, r *http.Request, s *form.Session) bool {
			index, ok := pathIndex(w, r)
			if !ok {
				return false
			}
			s.RemoveTag(index)
			return true
		}))
	// #endregion

	// #region - agenda
	muxer.HandleFunc("POST /form/{id}/agenda", withSession(
		func(w http.ResponseWriter, r *http.Request, s *form.Session) bool {
			s.AddAgendaItem()
			return true
		}))

	muxer.HandleFunc("DELETE /form/{id}/agenda/{index}", withSession(
		func(w http.ResponseWriter, r *http.Request, s *form.Session) bool {
			index, ok := pathIndex(w, r)
			if !ok {
				return false
			}
			s.RemoveAgendaItem(index)
			return true
		}))

	muxer.HandleFunc("PUT /form/{id}/agenda/{index}/{field}", withSession(
		func(w http.ResponseWriter, r *http.Request, s *form.Session) bool {
			index, ok := pathIndex(w, r)
			if !ok {
				return false
			}
			value, ok := decodeValue(w, r)
			if !ok {
				return false
			}
			s.UpdateAgendaItem(index, r.PathValue("field"), value)
			return true
		}))
	// #endregion

	muxer.HandleFunc("POST /form/{id}/image", withSession(
		func(w http.ResponseWriter, r *http.Request, s *form.Session) bool {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			file, header, err := r.FormFile("image")
			switch {
			case bodyTooLarge(err):
				writeMessage(w, http.StatusRequestEntityTooLarge, "Image must be at most 10 MB")
				return false
			case err != nil:
				writeMessage(w, http.StatusBadRequest, "Missing image part")
				return false
			}
			defer file.Close()
			if header.Size > maxUploadBytes {
				writeMessage(w, http.StatusRequestEntityTooLarge, "Image must be at most 10 MB")
				return false
			}
			data, err := io.ReadAll(file)
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "Can't read image")
				return false
			}
			s.SelectImage(model.ImageFile{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
			// the preview shows up in a later GET unless the caller waits
			if r.URL.Query().Get("wait") == "true" {
				s.WaitImage()
			}
			return true
		}))

	muxer.HandleFunc("POST /form/{id}/submit", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		session, ok := as.GetFormSession(id)
		if !ok {
			writeMessage(w, http.StatusNotFound, "Form session not found")
			return
		}
		err := session.Submit(r.Context())
		var rejected *client.RejectedError
		status := http.StatusOK
		switch {
		case err == nil:
		case errors.Is(err, form.ErrSubmitInFlight):
			writeMessage(w, http.StatusConflict, "A submission is already in flight")
			return
		case errors.Is(err, form.ErrImageRequired), errors.As(err, &rejected):
			status = http.StatusUnprocessableEntity
		default:
			slog.Debug("submission failed", "form_session", id, "error", err)
			status = http.StatusBadGateway
		}
		writeJSON(w, status, newFormRespBody(id, session.Snapshot()))
	})
}
