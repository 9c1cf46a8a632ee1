package service

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// UseCaseEvent describes one finished service call. Fields carries the
// outcome counters of the call (updated, skipped, applied, ...).
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
	Fields    map[string]any
}

func (e UseCaseEvent) Success() bool { return e.Err == nil }

// Skipped reports the number of entities the call could not process.
func (e UseCaseEvent) Skipped() int {
	n, _ := e.Fields["skipped"].(int)
	return n
}

type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// NewLogUseCaseObserver logs events as text lines on w.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return NewSlogUseCaseObserver(slog.New(slog.NewTextHandler(w, nil)))
}

// NewSlogUseCaseObserver logs events through logger. Failed calls log at
// ERROR, calls that skipped entities at WARN.
func NewSlogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return slogObserver{logger: logger}
}

type slogObserver struct {
	logger *slog.Logger
}

func (o slogObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := []slog.Attr{
		slog.String("use_case", event.Name),
		slog.Int64("duration_ms", event.Duration.Milliseconds()),
		slog.Bool("success", event.Success()),
	}
	// Sorted so the same outcome always produces the same line.
	for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
		attrs = append(attrs, slog.Any(k, event.Fields[k]))
	}

	level := slog.LevelInfo
	switch {
	case event.Err != nil:
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	case event.Skipped() > 0:
		level = slog.LevelWarn
	}
	o.logger.LogAttrs(ctx, level, "use case finished", attrs...)
}

// fanOut delivers every event to each observer in order.
type fanOut []UseCaseObserver

func (f fanOut) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, obs := range f {
		obs.ObserveUseCase(ctx, event)
	}
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	var live fanOut
	for _, obs := range observers {
		if obs != nil {
			live = append(live, obs)
		}
	}
	switch len(live) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return live[0]
	}
	return live
}

// observe reports one finished use case. Defer it with a pointer to the
// named error result so the outcome is read after the body returns.
func observe(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, fields map[string]any, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Err:       err,
		Fields:    fields,
	})
}
