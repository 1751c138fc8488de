// Package ledger keeps point deltas per participant and derives totals,
// history and rankings from them. Writes are serialised per actor.
package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"points/internal/store"
)

// Store is the persistence the ledger needs.
type Store interface {
	ApplyOperation(ctx context.Context, op store.Operation, entries []store.HistoryEntry) error
	CancelLatest(ctx context.Context, actor uuid.UUID) (store.OperationSummary, error)
	RestoreLatest(ctx context.Context, actor uuid.UUID) (store.OperationSummary, error)
	History(ctx context.Context, participant uuid.UUID) ([]store.HistoryEntry, error)
	ActiveEntries(ctx context.Context) ([]store.HistoryEntry, error)
	ListParticipants(ctx context.Context) ([]store.Participant, error)
}

type Applied struct {
	OperationID int64
	Affected    int
	Delta       int64
}

type Reverted struct {
	OperationID int64
	Affected    int
	Delta       int64
}

type HistoryPoint struct {
	OperationID int64
	Timestamp   time.Time
	Delta       int64
}

type Standing struct {
	Participant store.Participant
	Total       decimal.Decimal
	Rank        int
}

type RankOptions struct {
	ExcludeOperators bool
}

type Ledger struct {
	store   Store
	logger  *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer
	now     func() time.Time

	stripes [actorStripes]sync.Mutex
}

// actorStripes bounds the lock table; actors sharing a stripe serialise
// with each other.
const actorStripes = 64

type Option func(*Ledger)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(l *Ledger) { l.tracer = tracer }
}

// WithClock sets the source of history timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(s Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  s,
		logger: zap.NewNop(),
		tracer: otel.Tracer("points/ledger"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) lockActor(actor uuid.UUID) func() {
	m := &l.stripes[xxhash.Sum64(actor[:])%actorStripes]
	m.Lock()
	return m.Unlock
}

// observe starts a span and returns the function that closes it and
// records metrics.
func (l *Ledger) observe(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := l.tracer.Start(ctx, "ledger."+operation, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		l.metrics.record(operation, err, time.Since(start))
	}
}

// Apply records delta for every target under one operation id, after
// purging the actor's cancelled operations. An empty target list writes
// nothing.
func (l *Ledger) Apply(ctx context.Context, actor uuid.UUID, opID int64, targets []store.Participant, delta int64) (applied Applied, err error) {
	ctx, done := l.observe(ctx, "apply",
		attribute.String("actor", actor.String()),
		attribute.Int64("operation_id", opID),
		attribute.Int("targets", len(targets)),
	)
	defer func() { done(err) }()

	applied = Applied{OperationID: opID, Delta: delta}
	if len(targets) == 0 {
		return applied, nil
	}

	unlock := l.lockActor(actor)
	defer unlock()

	now := l.now()
	entries := make([]store.HistoryEntry, 0, len(targets))
	for _, p := range targets {
		entries = append(entries, store.HistoryEntry{
			OperationID:   opID,
			ParticipantID: p.ID,
			Delta:         delta,
			Timestamp:     now,
		})
	}

	op := store.Operation{ID: opID, ActorID: actor}
	if err := l.store.ApplyOperation(ctx, op, entries); err != nil {
		if errors.Is(err, store.ErrDuplicateOperation) {
			return Applied{}, err
		}
		return Applied{}, &StorageError{Op: "apply", Err: err}
	}

	applied.Affected = len(entries)
	l.metrics.addEntries(len(entries))
	l.logger.Info("applied operation",
		zap.Stringer("actor", actor),
		zap.Int64("operation_id", opID),
		zap.Int("affected", applied.Affected),
		zap.Int64("delta", delta),
	)
	return applied, nil
}

// Undo cancels the actor's latest operation that is still in effect.
func (l *Ledger) Undo(ctx context.Context, actor uuid.UUID) (Reverted, error) {
	return l.flip(ctx, "undo", actor, l.store.CancelLatest, ErrNoOperationToUndo)
}

// Redo restores the actor's most recently cancelled operation.
func (l *Ledger) Redo(ctx context.Context, actor uuid.UUID) (Reverted, error) {
	return l.flip(ctx, "redo", actor, l.store.RestoreLatest, ErrNoOperationToRedo)
}

func (l *Ledger) flip(
	ctx context.Context,
	operation string,
	actor uuid.UUID,
	fn func(context.Context, uuid.UUID) (store.OperationSummary, error),
	notFound error,
) (reverted Reverted, err error) {
	ctx, done := l.observe(ctx, operation, attribute.String("actor", actor.String()))
	defer func() { done(err) }()

	unlock := l.lockActor(actor)
	defer unlock()

	summary, err := fn(ctx, actor)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Reverted{}, notFound
		}
		return Reverted{}, &StorageError{Op: operation, Err: err}
	}

	l.logger.Info(operation+" operation",
		zap.Stringer("actor", actor),
		zap.Int64("operation_id", summary.OperationID),
		zap.Int("affected", summary.Affected),
	)
	return Reverted{OperationID: summary.OperationID, Affected: summary.Affected, Delta: summary.Delta}, nil
}

// TotalOf sums the participant's entries that are in effect.
func (l *Ledger) TotalOf(ctx context.Context, participant uuid.UUID) (total decimal.Decimal, err error) {
	ctx, done := l.observe(ctx, "total", attribute.String("participant", participant.String()))
	defer func() { done(err) }()

	entries, err := l.store.History(ctx, participant)
	if err != nil {
		return decimal.Zero, &StorageError{Op: "total", Err: err}
	}
	return sum(entries), nil
}

// HistoryOf lists the participant's entries in effect, oldest first.
func (l *Ledger) HistoryOf(ctx context.Context, participant uuid.UUID) (points []HistoryPoint, err error) {
	ctx, done := l.observe(ctx, "history", attribute.String("participant", participant.String()))
	defer func() { done(err) }()

	entries, err := l.store.History(ctx, participant)
	if err != nil {
		return nil, &StorageError{Op: "history", Err: err}
	}

	points = make([]HistoryPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, HistoryPoint{OperationID: e.OperationID, Timestamp: e.Timestamp, Delta: e.Delta})
	}
	return points, nil
}

// Rank orders registered participants by total, highest first. Equal
// totals keep registration order.
func (l *Ledger) Rank(ctx context.Context, opts RankOptions) (standings []Standing, err error) {
	ctx, done := l.observe(ctx, "rank", attribute.Bool("exclude_operators", opts.ExcludeOperators))
	defer func() { done(err) }()

	participants, err := l.store.ListParticipants(ctx)
	if err != nil {
		return nil, &StorageError{Op: "rank", Err: err}
	}
	entries, err := l.store.ActiveEntries(ctx)
	if err != nil {
		return nil, &StorageError{Op: "rank", Err: err}
	}

	totals := make(map[uuid.UUID]decimal.Decimal, len(participants))
	for _, e := range entries {
		totals[e.ParticipantID] = totals[e.ParticipantID].Add(decimal.NewFromInt(e.Delta))
	}

	standings = make([]Standing, 0, len(participants))
	for _, p := range participants {
		if opts.ExcludeOperators && p.Operator {
			continue
		}
		standings = append(standings, Standing{Participant: p, Total: totals[p.ID]})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Total.GreaterThan(standings[j].Total)
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}

func sum(entries []store.HistoryEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromInt(e.Delta))
	}
	return total
}
