package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/target/deckgen/internal/content"
	"github.com/target/deckgen/internal/core"
	"github.com/target/deckgen/internal/domain/model"
	apperrors "github.com/target/deckgen/internal/errors"
	"github.com/target/deckgen/internal/storage"
)

// Limits bounds what a single request may ask for.
type Limits struct {
	DailyLimit        int // 0 disables the per-day check
	MinTopicLength    int
	MinSlideCount     int
	MaxSlideCount     int
	DefaultSlideCount int
}

// DefaultLimits returns the standard request limits.
func DefaultLimits() Limits {
	return Limits{DailyLimit: 5, MinTopicLength: 10, MinSlideCount: 3, MaxSlideCount: 20, DefaultSlideCount: 10}
}

// PresentationStores groups the state the front-end reads and writes.
type PresentationStores struct {
	Jobs    core.JobStore               // Required
	Queue   core.WorkQueue              // Required
	Usage   core.UsageCounter           // Required
	Catalog core.PresentationRepository // Optional: listing is unavailable when nil
	Storage core.Publisher              // Required for download and delete
}

// PresentationServiceOptions groups dependencies for PresentationService.
type PresentationServiceOptions struct {
	Stores          PresentationStores
	Limits          Limits
	KeyPrefix       string                       // storage key prefix for published decks
	LLM             core.TextGenerator           // Optional: suggestions are unavailable when nil
	SuggestConfig   content.SuggestConfig        // Optional
	SuggestionCache *core.SuggestionCacheService // Optional
	Logger          *slog.Logger
	Now             func() time.Time
}

// PresentationService implements the request front-end: enqueueing work,
// reporting status and serving finished decks.
type PresentationService struct {
	jobs      core.JobStore
	queue     core.WorkQueue
	usage     core.UsageCounter
	catalog   core.PresentationRepository
	storage   core.Publisher
	limits    Limits
	keyPrefix string
	llm       core.TextGenerator
	suggest   content.SuggestConfig
	cache     *core.SuggestionCacheService
	logger    *slog.Logger
	now       func() time.Time
}

// NewPresentationService constructs a PresentationService.
func NewPresentationService(opts PresentationServiceOptions) (*PresentationService, error) {
	st := opts.Stores
	switch {
	case st.Jobs == nil:
		return nil, errors.New("JobStore is required")
	case st.Queue == nil:
		return nil, errors.New("WorkQueue is required")
	case st.Usage == nil:
		return nil, errors.New("UsageCounter is required")
	case st.Storage == nil:
		return nil, errors.New("Publisher is required")
	}

	limits := opts.Limits
	def := DefaultLimits()
	if limits.MinTopicLength <= 0 {
		limits.MinTopicLength = def.MinTopicLength
	}
	if limits.MinSlideCount <= 0 {
		limits.MinSlideCount = def.MinSlideCount
	}
	if limits.MaxSlideCount < limits.MinSlideCount {
		limits.MaxSlideCount = max(def.MaxSlideCount, limits.MinSlideCount)
	}
	if limits.DefaultSlideCount < limits.MinSlideCount || limits.DefaultSlideCount > limits.MaxSlideCount {
		limits.DefaultSlideCount = min(max(def.DefaultSlideCount, limits.MinSlideCount), limits.MaxSlideCount)
	}

	suggest := opts.SuggestConfig
	if suggest.Model == "" {
		suggest = content.DefaultSuggestConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &PresentationService{
		jobs:      st.Jobs,
		queue:     st.Queue,
		usage:     st.Usage,
		catalog:   st.Catalog,
		storage:   st.Storage,
		limits:    limits,
		keyPrefix: opts.KeyPrefix,
		llm:       opts.LLM,
		suggest:   suggest,
		cache:     opts.SuggestionCache,
		logger:    logger.With("component", "presentation_service"),
		now:       now,
	}, nil
}

// MustNewPresentationService constructs a PresentationService and panics on error.
func MustNewPresentationService(opts PresentationServiceOptions) *PresentationService {
	svc, err := NewPresentationService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Limits returns the effective request limits.
func (s *PresentationService) Limits() Limits { return s.limits }

// GenerateRequest is a request to build a new deck.
type GenerateRequest struct {
	Topic      string
	SlideCount int // 0 selects the default
	UserID     string
	ClientID   string
}

func (s *PresentationService) validate(req *GenerateRequest) error {
	req.Topic = strings.TrimSpace(req.Topic)
	req.UserID = strings.TrimSpace(req.UserID)
	req.ClientID = strings.TrimSpace(req.ClientID)

	if utf8.RuneCountInString(req.Topic) < s.limits.MinTopicLength {
		return apperrors.ValidationField("topic",
			fmt.Sprintf("topic must be at least %d characters", s.limits.MinTopicLength))
	}
	if req.UserID == "" {
		return apperrors.ValidationField("user_id", "user_id is required")
	}
	if req.SlideCount == 0 {
		req.SlideCount = s.limits.DefaultSlideCount
	}
	if req.SlideCount < s.limits.MinSlideCount || req.SlideCount > s.limits.MaxSlideCount {
		return apperrors.ValidationField("slide_count",
			fmt.Sprintf("slide_count must be between %d and %d", s.limits.MinSlideCount, s.limits.MaxSlideCount))
	}
	return nil
}

// Enqueue validates req, checks the user's daily allowance, records the job as
// queued and hands it to the worker pool.
func (s *PresentationService) Enqueue(ctx context.Context, req GenerateRequest) (*model.JobView, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if s.limits.DailyLimit > 0 {
		used, err := s.usage.Count(ctx, req.UserID, now)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "usage counter unavailable")
		}
		if used >= int64(s.limits.DailyLimit) {
			return nil, apperrors.Wrap(model.ErrDailyLimitReached, apperrors.ErrCodeRateLimited,
				fmt.Sprintf("daily limit of %d presentations reached", s.limits.DailyLimit))
		}
	}

	task := &model.Task{
		ID:         uuid.NewString(),
		JobID:      uuid.NewString(),
		Topic:      req.Topic,
		SlideCount: req.SlideCount,
		UserID:     req.UserID,
		ClientID:   req.ClientID,
		EnqueuedAt: now,
	}

	// Queued must be written before the push so a fast worker's processing
	// status is never overwritten.
	if err := s.jobs.MarkQueued(ctx, task.JobID, task.ID); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "job store unavailable")
	}
	if s.catalog != nil {
		if err := s.catalog.Upsert(ctx, &model.Presentation{
			ID: task.JobID, UserID: task.UserID, ClientID: task.ClientID,
			Topic: task.Topic, SlideCount: task.SlideCount,
			Status: model.JobStatusQueued, CreatedAt: now,
		}); err != nil {
			s.logger.WarnContext(ctx, "record queued presentation", "job_id", task.JobID, "error", err)
		}
	}
	if err := s.queue.Push(ctx, task); err != nil {
		if derr := s.jobs.Delete(ctx, task.JobID); derr != nil {
			s.logger.ErrorContext(ctx, "roll back queued job", "job_id", task.JobID, "error", derr)
		}
		s.deleteCatalog(ctx, task.JobID)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "work queue unavailable")
	}

	s.logger.InfoContext(ctx, "presentation queued",
		"job_id", task.JobID, "user_id", task.UserID, "slide_count", task.SlideCount)
	return &model.JobView{ID: task.JobID, Status: model.JobStatusQueued, TaskRef: task.ID}, nil
}

// Status returns the current state of a job.
func (s *PresentationService) Status(ctx context.Context, id string) (*model.JobView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.ValidationField("presentation_id", "presentation_id is required")
	}
	view, err := s.jobs.Get(ctx, id)
	if errors.Is(err, model.ErrJobNotFound) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "presentation not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "job store unavailable")
	}
	return view, nil
}

// Delete removes a job's status keys, its stored deck and its catalog row.
// Unknown ids are not an error.
//
// The job store marks the id deleted before the deck is removed, so a worker
// still running an attempt fails its final write and discards what it uploaded.
// When storage fails the catalog row is kept and Delete can be retried.
func (s *PresentationService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.ValidationField("presentation_id", "presentation_id is required")
	}

	key := s.storageKey(ctx, id)
	if err := s.jobs.Delete(ctx, id); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "job store unavailable")
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "storage unavailable")
	}
	s.deleteCatalog(ctx, id)
	s.logger.InfoContext(ctx, "presentation deleted", "job_id", id)
	return nil
}

// storageKey prefers the key recorded with the result and falls back to the
// deterministic key for id.
func (s *PresentationService) storageKey(ctx context.Context, id string) string {
	if view, err := s.jobs.Get(ctx, id); err == nil && view.Result != nil && view.Result.StorageKey != "" {
		return view.Result.StorageKey
	}
	if s.catalog != nil {
		if p, err := s.catalog.GetByID(ctx, id); err == nil && p.StorageKey != nil && *p.StorageKey != "" {
			return *p.StorageKey
		}
	}
	return storage.ObjectKey(s.keyPrefix, id)
}

func (s *PresentationService) deleteCatalog(ctx context.Context, id string) {
	if s.catalog == nil {
		return
	}
	if _, err := s.catalog.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "delete presentation record", "job_id", id, "error", err)
	}
}

// UserStats reports today's usage for userID.
func (s *PresentationService) UserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.ValidationField("user_id", "user_id is required")
	}
	used, err := s.usage.Count(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "usage counter unavailable")
	}
	return &model.UserStats{
		UserID:             userID,
		PresentationsToday: used,
		DailyLimit:         s.limits.DailyLimit,
		Remaining:          max(0, int64(s.limits.DailyLimit)-used),
	}, nil
}

// ListForUser returns the user's presentations, newest first. Rows that are
// not terminal in the catalog take their status from the job store.
func (s *PresentationService) ListForUser(ctx context.Context, userID string, limit int) ([]*model.Presentation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.ValidationField("user_id", "user_id is required")
	}
	if s.catalog == nil {
		return nil, &apperrors.AppError{Code: apperrors.ErrCodeUnavailable, Message: "presentation catalog not configured"}
	}
	list, err := s.catalog.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "presentation catalog unavailable")
	}
	for _, p := range list {
		if p.Status.Terminal() {
			continue
		}
		if view, err := s.jobs.Get(ctx, p.ID); err == nil {
			p.Status = view.Status
		}
	}
	return list, nil
}

// SuggestionRequest asks for related presentation topics.
type SuggestionRequest struct {
	Topic    string
	Industry string
	Audience string
}

// Suggestions returns up to five topic ideas, served from cache when possible.
func (s *PresentationService) Suggestions(ctx context.Context, req SuggestionRequest) ([]string, error) {
	q := core.SuggestionQuery{
		Topic:    strings.TrimSpace(req.Topic),
		Industry: strings.TrimSpace(req.Industry),
		Audience: strings.TrimSpace(req.Audience),
	}
	if q.Topic == "" {
		return nil, apperrors.ValidationField("topic", "topic is required")
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, q); err != nil {
			s.logger.WarnContext(ctx, "suggestion cache read", "error", err)
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	out, err := content.Suggest(ctx, s.llm, s.suggest, q.Topic, q.Industry, q.Audience)
	if errors.Is(err, content.ErrSuggestionsUnavailable) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "topic suggestions are not configured")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "failed to generate suggestions")
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, q, out); err != nil {
			s.logger.WarnContext(ctx, "suggestion cache write", "error", err)
		}
	}
	return out, nil
}

// Download is an open stream to a finished deck.
type Download struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
}

// Download opens the stored deck of a completed job.
func (s *PresentationService) Download(ctx context.Context, id string) (*Download, error) {
	view, err := s.Status(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.Status != model.JobStatusCompleted || view.Result == nil {
		return nil, apperrors.NotFound("presentation is not ready")
	}

	key := view.Result.StorageKey
	if key == "" {
		key = storage.ObjectKey(s.keyPrefix, view.ID)
	}
	body, err := s.storage.Open(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "presentation file not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "storage unavailable")
	}
	return &Download{
		Body:        body,
		Filename:    "presentation_" + view.ID + ".pptx",
		ContentType: storage.ContentTypePPTX,
	}, nil
}
