package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/deckgen/internal/domain/model"
	httpx "github.com/target/deckgen/internal/http"
	"github.com/target/deckgen/internal/mocks"
	"github.com/target/deckgen/internal/service"
)

type apiHarness struct {
	jobs    *mocks.MockJobStore
	queue   *mocks.MockWorkQueue
	usage   *mocks.MockUsageCounter
	catalog *mocks.MockPresentationRepository
	storage *mocks.MockPublisher
	llm     *mocks.MockTextGenerator
	handler http.Handler
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &apiHarness{
		jobs:    mocks.NewMockJobStore(ctrl),
		queue:   mocks.NewMockWorkQueue(ctrl),
		usage:   mocks.NewMockUsageCounter(ctrl),
		catalog: mocks.NewMockPresentationRepository(ctrl),
		storage: mocks.NewMockPublisher(ctrl),
		llm:     mocks.NewMockTextGenerator(ctrl),
	}
	svc := service.MustNewPresentationService(service.PresentationServiceOptions{
		Stores: service.PresentationStores{
			Jobs: h.jobs, Queue: h.queue, Usage: h.usage, Catalog: h.catalog, Storage: h.storage,
		},
		Limits:    service.DefaultLimits(),
		KeyPrefix: "presentations",
		LLM:       h.llm,
		Now:       func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	h.handler = httpx.NewRouter(httpx.RouterServices{
		Presentations: svc,
		Readiness: map[string]httpx.ReadinessCheck{
			"redis": func(context.Context) error { return nil },
		},
	})
	return h
}

func (h *apiHarness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("queues job", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)
		h.usage.EXPECT().Count(gomock.Any(), "u-42", gomock.Any()).Return(int64(1), nil)
		h.jobs.EXPECT().MarkQueued(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		h.catalog.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
		h.queue.EXPECT().Push(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, task *model.Task) error {
			assert.Equal(t, 6, task.SlideCount)
			assert.Equal(t, "web", task.ClientID)
			return nil
		})

		rec := h.do(t, http.MethodPost, "/api/v1/generate",
			`{"selected_topic":"Supply Chain Resilience","user_id":"u-42","client_id":"web","preferences":{"slide_count":6}}`)
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
		body := decodeBody(t, rec)
		assert.Equal(t, "queued", body["status"])
		assert.NotEmpty(t, body["presentation_id"])
		assert.NotEmpty(t, rec.Header().Get(httpx.RequestIDHeader))
	})

	t.Run("daily limit is 429", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)
		h.usage.EXPECT().Count(gomock.Any(), "u-42", gomock.Any()).Return(int64(5), nil)

		rec := h.do(t, http.MethodPost, "/api/v1/generate",
			`{"selected_topic":"Supply Chain Resilience","user_id":"u-42"}`)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "rate_limited", decodeBody(t, rec)["error"])
	})

	t.Run("short topic is 400", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)
		rec := h.do(t, http.MethodPost, "/api/v1/generate", `{"selected_topic":"AI","user_id":"u-42"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "topic", decodeBody(t, rec)["field"])
	})

	t.Run("unknown field is 400", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)
		rec := h.do(t, http.MethodPost, "/api/v1/generate", `{"topic":"Supply Chain Resilience"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_json", decodeBody(t, rec)["error"])
	})

	t.Run("queue outage is 503", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)
		h.usage.EXPECT().Count(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
		h.jobs.EXPECT().MarkQueued(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		h.catalog.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
		h.queue.EXPECT().Push(gomock.Any(), gomock.Any()).Return(errors.New("dial tcp: refused"))
		h.jobs.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
		h.catalog.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(true, nil)

		rec := h.do(t, http.MethodPost, "/api/v1/generate",
			`{"selected_topic":"Supply Chain Resilience","user_id":"u-42"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.NotContains(t, rec.Body.String(), "refused")
	})
}

func TestStatus(t *testing.T) {
	t.Parallel()

	t.Run("completed includes url", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)
		h.jobs.EXPECT().Get(gomock.Any(), "job-1").Return(&model.JobView{
			ID: "job-1", Status: model.JobStatusCompleted,
			Result: &model.JobResult{DownloadURL: "https://cdn.example/presentations/job-1.pptx", SlideCount: 12},
		}, nil)

		rec := h.do(t, http.MethodGet, "/api/v1/status/job-1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, "https://cdn.example/presentations/job-1.pptx", body["download_url"])
		assert.EqualValues(t, 12, body["slide_count"])
	})

	t.Run("failed includes error", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)
		h.jobs.EXPECT().Get(gomock.Any(), "job-2").Return(&model.JobView{
			ID: "job-2", Status: model.JobStatusFailed, Error: "failed to publish presentation",
		}, nil)

		rec := h.do(t, http.MethodGet, "/api/v1/status/job-2", "")
		body := decodeBody(t, rec)
		assert.Equal(t, "failed", body["status"])
		assert.Equal(t, "failed to publish presentation", body["error"])
		assert.NotContains(t, body, "download_url")
	})

	t.Run("unknown is 404", func(t *testing.T) {
		t.Parallel()
		h := newAPIHarness(t)
		h.jobs.EXPECT().Get(gomock.Any(), "nope").Return(nil, model.ErrJobNotFound)

		rec := h.do(t, http.MethodGet, "/api/v1/status/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDownload(t *testing.T) {
	t.Parallel()
	h := newAPIHarness(t)
	h.jobs.EXPECT().Get(gomock.Any(), "job-1").Return(&model.JobView{
		ID: "job-1", Status: model.JobStatusCompleted,
		Result: &model.JobResult{StorageKey: "presentations/job-1.pptx"},
	}, nil)
	h.storage.EXPECT().Open(gomock.Any(), "presentations/job-1.pptx").
		Return(io.NopCloser(strings.NewReader("PK\x03\x04deck")), nil)

	rec := h.do(t, http.MethodGet, "/api/v1/download/job-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=presentation_job-1.pptx`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK\x03\x04deck", rec.Body.String())
}

func TestUserStatsAndList(t *testing.T) {
	t.Parallel()
	h := newAPIHarness(t)
	h.usage.EXPECT().Count(gomock.Any(), "u-7", gomock.Any()).Return(int64(2), nil)
	h.catalog.EXPECT().ListByUser(gomock.Any(), "u-7", 200).Return([]*model.Presentation{
		{ID: "p1", UserID: "u-7", Status: model.JobStatusCompleted},
	}, nil)

	rec := h.do(t, http.MethodGet, "/api/v1/user/u-7/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)
	assert.EqualValues(t, 2, stats["presentations_today"])
	assert.EqualValues(t, 5, stats["daily_limit"])
	assert.EqualValues(t, 3, stats["remaining"])

	rec = h.do(t, http.MethodGet, "/api/v1/presentations/u-7?limit=1000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0]["presentation_id"])
}

func TestDeleteIsIdempotent(t *testing.T) {
	t.Parallel()
	h := newAPIHarness(t)
	h.jobs.EXPECT().Get(gomock.Any(), "ghost").Return(nil, model.ErrJobNotFound)
	h.catalog.EXPECT().GetByID(gomock.Any(), "ghost").Return(nil, errors.New("not found"))
	h.storage.EXPECT().Delete(gomock.Any(), "presentations/ghost.pptx").Return(nil)
	h.jobs.EXPECT().Delete(gomock.Any(), "ghost").Return(nil)
	h.catalog.EXPECT().Delete(gomock.Any(), "ghost").Return(false, nil)

	rec := h.do(t, http.MethodDelete, "/api/v1/presentation/ghost", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Presentation deleted successfully", decodeBody(t, rec)["message"])
}

func TestSuggestions(t *testing.T) {
	t.Parallel()
	h := newAPIHarness(t)
	h.llm.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return("1. Zero Trust Basics\n2. Identity First Security\n", nil)

	rec := h.do(t, http.MethodPost, "/api/v1/suggestions", `{"topic":"network security","industry":"finance"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestions":["Zero Trust Basics","Identity First Security"]}`, rec.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Parallel()
	handler := httpx.NewRouter(httpx.RouterServices{
		Readiness: map[string]httpx.ReadinessCheck{
			"redis":    func(context.Context) error { return nil },
			"postgres": func(context.Context) error { return errors.New("down") },
		},
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"redis":"ok","postgres":"unavailable"}`, rec.Body.String())
}
