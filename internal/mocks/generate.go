// Package mocks provides gomock implementations of the deck generation ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockJobStore(ctrl)
//	store.EXPECT().MarkProcessing(gomock.Any(), "job-1").Return(nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_store_mock.go github.com/target/deckgen/internal/core JobStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=work_queue_mock.go github.com/target/deckgen/internal/core WorkQueue
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=usage_counter_mock.go github.com/target/deckgen/internal/core UsageCounter
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=presentation_repository_mock.go github.com/target/deckgen/internal/core PresentationRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=text_generator_mock.go github.com/target/deckgen/internal/core TextGenerator
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=image_provider_mock.go github.com/target/deckgen/internal/core ImageProvider
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=publisher_mock.go github.com/target/deckgen/internal/core Publisher
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/target/deckgen/internal/core CacheRepository

// Pipeline stage seams owned by the job runner.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=content_generator_mock.go github.com/target/deckgen/internal/adapters/jobrunner ContentGenerator
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=deck_assembler_mock.go github.com/target/deckgen/internal/adapters/jobrunner DeckAssembler
