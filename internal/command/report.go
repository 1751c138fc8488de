package command

import (
	"context"
	"strconv"

	"points/internal/ledger"
	"points/internal/messages"
)

// showHistory lists the sender's own entries and total.
func (d *Dispatcher) showHistory(ctx context.Context, sender Sender) (Reply, error) {
	history, err := d.ledger.HistoryOf(ctx, sender.ID)
	if err != nil {
		return Reply{}, err
	}
	total, err := d.ledger.TotalOf(ctx, sender.ID)
	if err != nil {
		return Reply{}, err
	}

	catalog := d.catalog.Load()
	lines := []string{
		catalog.Format("point.history.header"),
		catalog.Format("point.history.separator"),
	}
	if len(history) == 0 {
		lines = append(lines, catalog.Format("point.history.history_not_found"))
	}
	for _, h := range history {
		lines = append(lines, catalog.Render(d.historyLine(h)))
	}
	lines = append(lines, catalog.Format("point.history.total", total.String()))
	return Reply{Lines: lines}, nil
}

func (d *Dispatcher) historyLine(h ledger.HistoryPoint) string {
	catalog := d.catalog.Load()
	amount := catalog.Raw("point.history.plus_prefix") + "+" + strconv.FormatInt(h.Delta, 10)
	if h.Delta < 0 {
		amount = catalog.Raw("point.history.minus_prefix") + strconv.FormatInt(h.Delta, 10)
	}
	stamp := h.Timestamp.In(d.cfg.Location).Format(d.cfg.TimeFormat)
	return catalog.Raw("point.history.color_prefix") + stamp + ": " + amount
}

// broadcast announces the top of the ranking to everyone and tells the
// sender where they placed. "broadcast true" leaves operators out.
func (d *Dispatcher) broadcast(ctx context.Context, sender Sender, args []string) (Reply, error) {
	withoutOp := d.cfg.ExcludeOperators
	if len(args) > 1 {
		if v, err := strconv.ParseBool(args[1]); err == nil {
			withoutOp = v
		}
	}

	standings, err := d.ledger.Rank(ctx, ledger.RankOptions{ExcludeOperators: withoutOp})
	if err != nil {
		return Reply{}, err
	}

	catalog := d.catalog.Load()
	reply := Reply{Broadcast: make([]string, 0, d.cfg.BroadcastTop)}
	for _, s := range standings {
		if s.Rank > d.cfg.BroadcastTop {
			break
		}
		color, _ := catalog.Lookup("point.broadcast." + strconv.Itoa(s.Rank) + "_color")
		line := color + messages.Substitute(catalog.Raw("point.broadcast.line"), s.Rank, s.Participant.Name, s.Total.String())
		reply.Broadcast = append(reply.Broadcast, catalog.Render(line))
	}

	for _, s := range standings {
		if s.Participant.ID != sender.ID {
			continue
		}
		reply.Lines = append(reply.Lines,
			catalog.Format("point.broadcast.separator"),
			catalog.Format("point.broadcast.your_rank_is", s.Participant.Name, s.Rank, s.Total.String()),
		)
	}
	return reply, nil
}
