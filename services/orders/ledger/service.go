// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ledger runs the read-modify-write cycle that appends one order
// record to an order document and regenerates its views.
package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/OrderRecords/pkg/logging"
	"github.com/AleutianAI/OrderRecords/services/orders/dates"
	"github.com/AleutianAI/OrderRecords/services/orders/document"
	"github.com/AleutianAI/OrderRecords/services/orders/records"
	"github.com/AleutianAI/OrderRecords/services/orders/sprint"
	"github.com/AleutianAI/OrderRecords/services/orders/views"
)

// SuccessMessage is returned with every stored record.
const SuccessMessage = "Order ID saved successfully"

// DefaultFileName is the document kept in each target directory.
const DefaultFileName = "order-records.xlsx"

// Store results reported to the Observer.
const (
	ResultStored       = "stored"
	ResultInvalid      = "invalid"
	ResultStorageError = "storage_error"
)

var tracer = otel.Tracer("github.com/AleutianAI/OrderRecords/services/orders/ledger")

// =============================================================================
// Collaborators
// =============================================================================

// DocumentStore loads and persists whole documents.
//
// Save must be all-or-nothing: after a failed Save the previous file, if
// any, is unchanged.
type DocumentStore interface {
	Load(ctx context.Context, path string) (*document.Document, bool, error)
	Save(ctx context.Context, path string, doc *document.Document) error
}

// Observer receives per-request measurements.
type Observer interface {
	ObserveStore(result string, elapsed time.Duration)
	ObserveParse(skipped int)
	ObserveSchedule(lastNumber int, regenerated bool)
}

type nopObserver struct{}

func (nopObserver) ObserveStore(string, time.Duration) {}
func (nopObserver) ObserveParse(int)                   {}
func (nopObserver) ObserveSchedule(int, bool)          {}

// =============================================================================
// Types
// =============================================================================

// Request asks for one order to be appended.
type Request struct {
	// OrderID is required; surrounding whitespace is trimmed.
	OrderID string
	// DirectoryPath is the folder holding the document; created if missing.
	DirectoryPath string
	// Environment is required; trimmed and otherwise stored as given.
	Environment string
	// Date is yyyy-MM-dd after trimming, or blank for today.
	Date string
	// RequestID is attached to log lines when set.
	RequestID string
}

// Response describes a stored record.
type Response struct {
	Message  string
	FilePath string
	OrderID  string
	StoredAt time.Time

	// Entries is the number of records in the document after the store.
	Entries int
	// LastWindow is the number of the last schedule window.
	LastWindow int
	// Regenerated reports whether the schedule was rebuilt.
	Regenerated bool
}

// Config configures a Service.
type Config struct {
	// FileName is the document's name inside the target directory.
	FileName string
	// Views names the three rendered views.
	Views views.Names
	// Calendar defines window numbering and schedule extent.
	Calendar sprint.Calendar
	// SerializeWrites orders concurrent writers to the same document.
	SerializeWrites bool
	// Now supplies "today"; time.Now when nil.
	Now func() time.Time
}

// DefaultConfig returns the configuration matching existing documents.
func DefaultConfig() Config {
	return Config{
		FileName:        DefaultFileName,
		Views:           views.DefaultNames(),
		Calendar:        sprint.DefaultCalendar(),
		SerializeWrites: true,
	}
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithObserver sets the metrics sink.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// Service appends order records to documents.
//
// # Thread Safety
//
// Safe for concurrent use. With SerializeWrites, requests for the same
// document are applied one at a time; otherwise concurrent writers to one
// document race and the last rename wins.
type Service struct {
	cfg      Config
	store    DocumentStore
	renderer views.Renderer
	locks    *pathLocks
	logger   *logging.Logger
	observer Observer
}

// New creates a Service.
//
// # Inputs
//
//   - cfg: Service configuration. The calendar is validated.
//   - store: Document persistence.
//   - opts: Optional logger and observer.
//
// # Outputs
//
//   - *Service: Ready to use.
//   - error: Non-nil when cfg is invalid or store is nil.
func New(cfg Config, store DocumentStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if strings.TrimSpace(cfg.FileName) == "" {
		return nil, ErrEmptyFileName
	}
	if err := cfg.Calendar.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calendar: %w", err)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Service{
		cfg:      cfg,
		store:    store,
		renderer: views.Renderer{Names: cfg.Views, Calendar: cfg.Calendar},
		locks:    newPathLocks(),
		logger:   logging.Nop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Calendar returns the service's window calendar.
func (s *Service) Calendar() sprint.Calendar {
	return s.cfg.Calendar
}

// Today returns the current calendar date.
func (s *Service) Today() time.Time {
	return dates.Of(s.cfg.Now())
}

// StoreOrderRecord appends req to the document in req.DirectoryPath.
//
// # Description
//
// The request date is checked before anything touches the filesystem, so
// a malformed date never creates a directory or a file. The document is
// then loaded (or started empty), every existing row is parsed, the new
// entry is merged, the schedule is extended to cover the later of the
// latest stored date and today, and all three views are rendered and
// saved in one atomic replace.
//
// # Outputs
//
//   - *Response: The stored record.
//   - error: Wraps ErrInvalidRequest or ErrInvalidDate for malformed input,
//     or is a *StorageError for filesystem and document failures.
func (s *Service) StoreOrderRecord(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "ledger.StoreOrderRecord",
		trace.WithAttributes(attribute.String("order.id", strings.TrimSpace(req.OrderID))),
	)
	defer span.End()

	resp, err := s.apply(ctx, req)
	result := ResultStored
	switch {
	case err == nil:
	case IsStorage(err):
		result = ResultStorageError
	default:
		result = ResultInvalid
	}
	s.observer.ObserveStore(result, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.path", resp.FilePath),
		attribute.String("order.stored_at", dates.Format(resp.StoredAt)),
		attribute.Int("order.entries", resp.Entries),
		attribute.Bool("schedule.regenerated", resp.Regenerated),
	)
	return resp, nil
}

func (s *Service) apply(ctx context.Context, req Request) (*Response, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: orderId is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.DirectoryPath) == "" {
		return nil, fmt.Errorf("%w: directoryPath is required", ErrInvalidRequest)
	}
	env := strings.TrimSpace(req.Environment)
	if env == "" {
		return nil, fmt.Errorf("%w: env is required", ErrInvalidRequest)
	}
	today := s.Today()
	storedAt, err := s.resolveDate(req.Date, today)
	if err != nil {
		return nil, err
	}

	dir, err := resolveDirectory(req.DirectoryPath)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, s.cfg.FileName)

	logger := s.logger.With("order_id", orderID, "path", path)
	if req.RequestID != "" {
		logger = logger.With("request_id", req.RequestID)
	}

	if s.cfg.SerializeWrites {
		release, err := s.locks.acquire(ctx, path)
		if err != nil {
			return nil, &StorageError{Op: OpLock, Path: path, Err: err}
		}
		defer release()
	}

	doc, existed, err := s.store.Load(ctx, path)
	if err != nil {
		logger.Error("load failed", "error", err)
		return nil, &StorageError{Op: OpLoad, Path: path, Err: err}
	}

	idx, stats := records.Parse(doc, s.cfg.Views.Sources()...)
	s.observer.ObserveParse(stats.Skipped)
	if stats.Skipped > 0 {
		logger.Debug("skipped unreadable rows", "source", stats.Source, "skipped", stats.Skipped)
	}

	merged := records.Merge(idx, records.NewEntry(orderID, env), storedAt)
	latest, _ := merged.Latest()
	coverage := dates.Later(latest, today)

	sched, regenerated := s.cfg.Calendar.Ensure(views.ReadSchedule(doc, s.cfg.Views.Schedule), coverage)
	s.observer.ObserveSchedule(sched.LastNumber(), regenerated)

	out := s.renderer.Render(doc, merged, sched)
	if err := s.store.Save(ctx, path, out); err != nil {
		logger.Error("save failed", "error", err)
		return nil, &StorageError{Op: OpSave, Path: path, Err: err}
	}

	logger.Info("order stored",
		"stored_at", dates.Format(storedAt),
		"existed", existed,
		"entries", merged.Len(),
		"dates", merged.DateCount(),
		"last_window", sched.LastNumber(),
		"regenerated", regenerated,
	)
	return &Response{
		Message:     SuccessMessage,
		FilePath:    path,
		OrderID:     orderID,
		StoredAt:    storedAt,
		Entries:     merged.Len(),
		LastWindow:  sched.LastNumber(),
		Regenerated: regenerated,
	}, nil
}

// resolveDate parses a yyyy-MM-dd date, trimmed, or falls back to today
// when it is blank.
func (s *Service) resolveDate(raw string, today time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return today, nil
	}
	d, err := dates.Parse(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return d, nil
}

// resolveDirectory returns the absolute, cleaned form of dir, creating it
// when missing.
func resolveDirectory(dir string) (string, error) {
	abs, err := filepath.Abs(strings.TrimSpace(dir))
	if err != nil {
		return "", &StorageError{Op: OpResolveDirectory, Path: dir, Err: err}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", &StorageError{Op: OpResolveDirectory, Path: abs, Err: err}
	}
	return abs, nil
}
