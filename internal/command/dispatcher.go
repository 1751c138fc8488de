// Package command turns raw command arguments into selector resolution,
// ledger calls and catalog messages.
package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"points/internal/ledger"
	"points/internal/messages"
	"points/internal/roster"
	"points/internal/selector"
	"points/internal/store"
)

// Verbs lists the admin verbs in completion order.
var Verbs = []string{"add", "sub", "broadcast", "test", "help", "undo", "redo", "reload"}

// Sender is whoever issued the command. Admin unlocks every verb; other
// senders only see their own points.
type Sender struct {
	ID    uuid.UUID
	Name  string
	Admin bool
}

// Reply is what a command produced. Lines go to the sender and Broadcast to
// everyone. Err is set when the command failed; Lines then hold the
// failure message.
type Reply struct {
	Lines     []string
	Broadcast []string
	Err       error
}

type Config struct {
	// MinPoint is exclusive.
	MinPoint         int64
	BroadcastTop     int
	ExcludeOperators bool
	TimeFormat       string
	Location         *time.Location
}

// CatalogLoader builds a fresh message catalog; reload calls it again.
type CatalogLoader func() (*messages.Catalog, error)

type Dispatcher struct {
	roster  roster.Source
	ledger  *ledger.Ledger
	load    CatalogLoader
	catalog atomic.Pointer[messages.Catalog]
	ids     IDSource
	logger  *zap.Logger
	cfg     Config
}

type Option func(*Dispatcher)

func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

func WithIDSource(ids IDSource) Option {
	return func(d *Dispatcher) { d.ids = ids }
}

func NewDispatcher(src roster.Source, l *ledger.Ledger, load CatalogLoader, cfg Config, opts ...Option) (*Dispatcher, error) {
	if cfg.BroadcastTop <= 0 {
		cfg.BroadcastTop = 5
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "01/02 15:04"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	d := &Dispatcher{
		roster: src,
		ledger: l,
		load:   load,
		ids:    NewClockIDs(),
		logger: zap.NewNop(),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(d)
	}

	catalog, err := load()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	d.catalog.Store(catalog)
	return d, nil
}

func (d *Dispatcher) Catalog() *messages.Catalog { return d.catalog.Load() }

// Roster loads the current participant roster.
func (d *Dispatcher) Roster(ctx context.Context) (*roster.Roster, error) {
	return roster.Load(ctx, d.roster)
}

// SenderNamed builds a sender for a registered participant. Operators are
// admins. An unknown name yields a sender that every command rejects.
func (d *Dispatcher) SenderNamed(ctx context.Context, name string) (Sender, error) {
	r, err := d.Roster(ctx)
	if err != nil {
		return Sender{}, err
	}
	p, ok := r.Lookup(name)
	if !ok {
		return Sender{Name: name}, nil
	}
	return Sender{ID: p.ID, Name: p.Name, Admin: p.Operator}, nil
}

// Execute runs one command. Failures are reported in the reply, never
// returned.
func (d *Dispatcher) Execute(ctx context.Context, sender Sender, args []string) Reply {
	reply, err := d.execute(ctx, sender, args)
	if err == nil {
		return reply
	}

	msgErr, expected := classify(err)
	if !expected {
		d.logger.Error("command failed",
			zap.String("sender", sender.Name),
			zap.Strings("args", args),
			zap.Error(err),
		)
	} else {
		d.logger.Debug("command rejected",
			zap.String("sender", sender.Name),
			zap.String("reason", msgErr.key),
			zap.Error(err),
		)
	}
	catalog := d.catalog.Load()
	return Reply{
		Lines: []string{catalog.Render("&c" + messages.Substitute(catalog.Raw(msgErr.key), msgErr.args...))},
		Err:   err,
	}
}

func (d *Dispatcher) execute(ctx context.Context, sender Sender, args []string) (Reply, error) {
	r, err := d.Roster(ctx)
	if err != nil {
		return Reply{}, err
	}
	if _, ok := r.Get(sender.ID); !ok {
		return Reply{}, fail("command.error.illegal_sender")
	}

	if len(args) == 0 || !sender.Admin {
		return d.showHistory(ctx, sender)
	}

	switch args[0] {
	case "add":
		return d.applyPoints(ctx, sender, r, args, 1)
	case "sub":
		return d.applyPoints(ctx, sender, r, args, -1)
	case "broadcast":
		return d.broadcast(ctx, sender, args)
	case "test":
		return d.test(r, args)
	case "help":
		return d.reply(d.catalog.Load().Format("command.help")), nil
	case "reload":
		return d.reload()
	case "undo":
		return d.undo(ctx, sender)
	case "redo":
		return d.redo(ctx, sender)
	default:
		return Reply{}, fmt.Errorf("%q: %w", args[0], errUnknownVerb)
	}
}

func (d *Dispatcher) reply(lines ...string) Reply {
	return Reply{Lines: lines}
}

func (d *Dispatcher) applyPoints(ctx context.Context, sender Sender, r *roster.Roster, args []string, sign int64) (Reply, error) {
	if len(args) < 2 {
		return Reply{}, fail("command.error.need_specification_point")
	}
	point, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return Reply{}, &messageError{key: "command.error.need_specification_point", err: err}
	}
	if point <= d.cfg.MinPoint {
		return Reply{}, fail("command.error.point_below_min", d.cfg.MinPoint)
	}
	if len(args) < 3 {
		return Reply{}, fail("command.error.need_specification_selector")
	}

	set, err := selector.Resolve(args[2:], r.Context())
	if err != nil {
		return Reply{}, err
	}

	targets := set.Members()
	if _, err := d.apply(ctx, sender.ID, targets, sign*point); err != nil {
		return Reply{}, err
	}

	key := "command.add.success"
	if sign < 0 {
		key = "command.sub.success"
	}
	return d.reply(d.catalog.Load().Format(key, point, strings.Join(set.Names(), ","))), nil
}

// apply retries once with a fresh id when the first id is already taken.
func (d *Dispatcher) apply(ctx context.Context, actor uuid.UUID, targets []store.Participant, delta int64) (ledger.Applied, error) {
	applied, err := d.ledger.Apply(ctx, actor, d.ids.Next(), targets, delta)
	if errors.Is(err, ledger.ErrDuplicateOperation) {
		d.logger.Warn("operation id taken, retrying", zap.Stringer("actor", actor))
		applied, err = d.ledger.Apply(ctx, actor, d.ids.Next(), targets, delta)
	}
	return applied, err
}

func (d *Dispatcher) test(r *roster.Roster, args []string) (Reply, error) {
	if len(args) < 2 {
		return Reply{}, fail("command.error.need_specification_selector")
	}
	set, err := selector.Resolve(args[1:], r.Context())
	if err != nil {
		return Reply{}, err
	}
	return d.reply(d.catalog.Load().Format("command.test.result", strings.Join(set.Names(), " "))), nil
}

func (d *Dispatcher) reload() (Reply, error) {
	catalog, err := d.load()
	if err != nil {
		return Reply{}, fmt.Errorf("reloading catalog: %w", err)
	}
	d.catalog.Store(catalog)
	return d.reply(catalog.Format("command.reload.success")), nil
}

func (d *Dispatcher) undo(ctx context.Context, sender Sender) (Reply, error) {
	reverted, err := d.ledger.Undo(ctx, sender.ID)
	if err != nil {
		return Reply{}, err
	}
	return d.reply(d.catalog.Load().Format("command.undo.success", reverted.Affected, reverted.Delta)), nil
}

func (d *Dispatcher) redo(ctx context.Context, sender Sender) (Reply, error) {
	reverted, err := d.ledger.Redo(ctx, sender.ID)
	if err != nil {
		return Reply{}, err
	}
	return d.reply(d.catalog.Load().Format("command.redo.success", reverted.Affected, reverted.Delta)), nil
}
