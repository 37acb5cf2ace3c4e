package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/poiesic/auditorium/core"
)

type createRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createRoomResponse struct {
	RoomID core.ID `json:"roomId"`
}

type roomResponse struct {
	ID             core.ID   `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	QuestionsCount int       `json:"questionsCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	QuestionID core.ID `json:"questionId"`
	Answer     *string `json:"answer"`
}

type questionResponse struct {
	ID        core.ID   `json:"id"`
	Question  string    `json:"question"`
	Answer    *string   `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}

type uploadResponse struct {
	ChunkID core.ID `json:"chunkId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.service.ListRooms(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, roomResponse{
			ID:             room.ID,
			Name:           room.Name,
			Description:    room.Description,
			QuestionsCount: room.QuestionsCount,
			CreatedAt:      room.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	room, err := s.service.CreateRoom(r.Context(), req.Name, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createRoomResponse{RoomID: room.ID})
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.service.ListQuestions(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := make([]questionResponse, 0, len(questions))
	for _, q := range questions {
		resp = append(resp, questionResponse{
			ID:        q.ID,
			Question:  q.Question,
			Answer:    q.Answer,
			CreatedAt: q.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := s.service.Ask(r.Context(), chi.URLParam(r, "roomId"), req.Question)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, askResponse{QuestionID: q.ID, Answer: q.Answer})
}

func (s *Server) handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	audio, mimeType, err := readAudioPart(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	chunkID, err := s.service.Ingest(r.Context(), chi.URLParam(r, "roomId"), audio, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{ChunkID: chunkID})
}

// readAudioPart reads the "file" field of a multipart upload. A request
// without one is a validation error.
func readAudioPart(r *http.Request) ([]byte, string, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w: %w", core.ErrValidation, core.ErrEmptyAudio, err)
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, "", fmt.Errorf("%w: %w: no file field", core.ErrValidation, core.ErrEmptyAudio)
		}
		if err != nil {
			return nil, "", uploadError(err)
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		audio, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, "", uploadError(err)
		}
		mimeType := part.Header.Get("Content-Type")
		if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
			mimeType = mediaType
		}
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = http.DetectContentType(audio)
		}
		return audio, mimeType, nil
	}
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: audio exceeds %d bytes", core.ErrValidation, tooLarge.Limit)
	}
	return fmt.Errorf("%w: malformed upload: %w", core.ErrValidation, err)
}

func decodeJSON(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("%w: unsupported content type %q", core.ErrValidation, ct)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %w", core.ErrValidation, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
