package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/poiesic/auditorium"
	"github.com/poiesic/auditorium/ai/mock"
	"github.com/poiesic/auditorium/core"
	"github.com/poiesic/auditorium/storage"
	"github.com/poiesic/auditorium/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService returns canned errors for the error mapping tests.
type fakeService struct {
	err       error
	lastMime  string
	lastAudio []byte
}

func (f *fakeService) CreateRoom(ctx context.Context, name, description string) (*core.Room, error) {
	return nil, f.err
}

func (f *fakeService) ListRooms(ctx context.Context) ([]*core.RoomSummary, error) {
	return nil, f.err
}

func (f *fakeService) ListQuestions(ctx context.Context, roomID string) ([]*core.Question, error) {
	return nil, f.err
}

func (f *fakeService) Ask(ctx context.Context, roomID string, question string) (*core.Question, error) {
	return nil, f.err
}

func (f *fakeService) Ingest(ctx context.Context, roomID string, audio []byte, mimeType string) (core.ID, error) {
	f.lastAudio = audio
	f.lastMime = mimeType
	if f.err != nil {
		return "", f.err
	}
	return core.NewID(), nil
}

func newTestServer(t *testing.T) (*httptest.Server, *mock.MockProvider) {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "futebol") {
			return []float32{0, 1, 0}, nil
		}
		return []float32{1, 0, 0}, nil
	}

	svc, err := auditorium.New(store, provider)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	srv, err := New(svc)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, provider
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func uploadAudio(t *testing.T, url string, field string, audio []byte, contentType string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="aula.webm"`, field))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(audio)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(nil)
	assert.Equal(t, ErrServiceRequired, err)
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body bytes.Buffer
	body.ReadFrom(resp.Body)
	assert.Equal(t, "OK", body.String())
}

func TestRoomsAndQuestionsFlow(t *testing.T) {
	ts, provider := newTestServer(t)

	resp := postJSON(t, ts.URL+"/rooms", map[string]string{"name": "Geografia", "description": "Clima"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[createRoomResponse](t, resp)
	require.NotEmpty(t, created.RoomID)
	roomURL := ts.URL + "/rooms/" + created.RoomID.String()

	resp = uploadAudio(t, roomURL+"/audio", "file", []byte("o ceu e azul por causa do espalhamento"), "audio/webm;codecs=opus")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	uploaded := decode[uploadResponse](t, resp)
	assert.NotEmpty(t, uploaded.ChunkID)

	resp = postJSON(t, roomURL+"/questions", map[string]string{"question": "Por que o ceu e azul?"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	answered := decode[askResponse](t, resp)
	require.NotNil(t, answered.Answer)
	assert.Equal(t, []string{"o ceu e azul por causa do espalhamento"},
		provider.GetMockSynthesizer().LastPassages())

	// Orthogonal question: nothing passes the threshold.
	resp = postJSON(t, roomURL+"/questions", map[string]string{"question": "Quem ganhou o futebol?"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	unanswered := decode[map[string]any](t, resp)
	assert.Contains(t, unanswered, "answer")
	assert.Nil(t, unanswered["answer"], "answer is serialized as null")

	resp, err := http.Get(roomURL + "/questions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	questions := decode[[]questionResponse](t, resp)
	require.Len(t, questions, 2)
	assert.Equal(t, "Quem ganhou o futebol?", questions[0].Question, "newest first")

	resp, err = http.Get(ts.URL + "/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	rooms := decode[[]roomResponse](t, resp)
	require.Len(t, rooms, 1)
	assert.Equal(t, 2, rooms[0].QuestionsCount)
	assert.Equal(t, "Geografia", rooms[0].Name)
}

func TestUploadAudio_Validation(t *testing.T) {
	ts, provider := newTestServer(t)
	resp := postJSON(t, ts.URL+"/rooms", map[string]string{"name": "Historia"})
	room := decode[createRoomResponse](t, resp)
	audioURL := ts.URL + "/rooms/" + room.RoomID.String() + "/audio"

	t.Run("missing file field", func(t *testing.T) {
		resp := uploadAudio(t, audioURL, "other", []byte("x"), "audio/webm")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty file", func(t *testing.T) {
		resp := uploadAudio(t, audioURL, "file", nil, "audio/webm")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not multipart", func(t *testing.T) {
		resp := postJSON(t, audioURL, map[string]string{"file": "x"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	assert.Zero(t, provider.GetMockTranscriber().CallCount(), "no service is called for invalid input")
}

func TestUploadAudio_TooLarge(t *testing.T) {
	svc := &fakeService{}
	srv, err := New(svc, WithMaxUploadBytes(64))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := uploadAudio(t, ts.URL+"/rooms/"+core.NewID().String()+"/audio", "file", bytes.Repeat([]byte("a"), 1024), "audio/wav")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, svc.lastAudio)
}

func TestUploadAudio_MimeType(t *testing.T) {
	svc := &fakeService{}
	srv, err := New(svc)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := uploadAudio(t, ts.URL+"/rooms/"+core.NewID().String()+"/audio", "file", []byte("audio"), "audio/webm; codecs=opus")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "audio/webm", svc.lastMime)
	assert.Equal(t, []byte("audio"), svc.lastAudio)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", fmt.Errorf("%w: bad", core.ErrValidation), http.StatusBadRequest, "validation"},
		{"transcription", fmt.Errorf("%w: down", core.ErrTranscription), http.StatusBadGateway, "transcription"},
		{"embedding", fmt.Errorf("%w: down", core.ErrEmbedding), http.StatusBadGateway, "embedding"},
		{"synthesis", fmt.Errorf("%w: down", core.ErrSynthesis), http.StatusBadGateway, "synthesis"},
		{"unknown room", fmt.Errorf("%w: %w", core.ErrPersistence, storage.ErrNotFound), http.StatusNotFound, "not_found"},
		{"persistence", fmt.Errorf("%w: conn refused", core.ErrPersistence), http.StatusInternalServerError, "persistence"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, err := New(&fakeService{err: tt.err})
			require.NoError(t, err)

			body := strings.NewReader(`{"question":"x"}`)
			req := httptest.NewRequest(http.MethodPost, "/rooms/"+core.NewID().String()+"/questions", body)
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var resp errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.kind, resp.Kind)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, resp.Error, "conn refused")
			}
		})
	}
}

func TestCreateRoom_InvalidBody(t *testing.T) {
	srv, err := New(&fakeService{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	srv, err := New(&fakeService{}, WithCORSOrigins("http://localhost:5173"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/rooms", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/rooms", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListenAndServe_Shutdown(t *testing.T) {
	srv, err := New(&fakeService{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
