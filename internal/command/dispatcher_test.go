package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"points/internal/ledger"
	"points/internal/messages"
	"points/internal/store"
	"points/internal/store/memory"
)

type seqIDs struct {
	ids []int64
	i   int
}

func (s *seqIDs) Next() int64 {
	id := s.ids[s.i]
	if s.i < len(s.ids)-1 {
		s.i++
	}
	return id
}

type fixture struct {
	store      *memory.Store
	ledger     *ledger.Ledger
	dispatcher *Dispatcher
	admin      Sender
	alice      Sender
	people     map[string]store.Participant
}

func newFixture(t *testing.T, ids IDSource) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	people := map[string]store.Participant{
		"Admin": {ID: uuid.New(), Name: "Admin", Operator: true},
		"Alice": {ID: uuid.New(), Name: "Alice", Team: "red", Tags: []string{"vip"}},
		"Bob":   {ID: uuid.New(), Name: "Bob", Team: "red"},
		"Carol": {ID: uuid.New(), Name: "Carol", Team: "blue", Tags: []string{"vip", "banned"}},
	}
	for _, name := range []string{"Admin", "Alice", "Bob", "Carol"} {
		if err := s.UpsertParticipant(ctx, people[name]); err != nil {
			t.Fatalf("registering %s: %v", name, err)
		}
	}

	clock := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	l := ledger.New(s, ledger.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	if ids == nil {
		ids = NewClockIDs()
	}
	d, err := NewDispatcher(s, l,
		func() (*messages.Catalog, error) { return messages.Default(messages.Plain), nil },
		Config{Location: time.UTC},
		WithIDSource(ids),
	)
	if err != nil {
		t.Fatalf("creating dispatcher: %v", err)
	}

	admin, err := d.SenderNamed(ctx, "Admin")
	if err != nil {
		t.Fatalf("resolving admin: %v", err)
	}
	alice, err := d.SenderNamed(ctx, "Alice")
	if err != nil {
		t.Fatalf("resolving alice: %v", err)
	}

	return &fixture{store: s, ledger: l, dispatcher: d, admin: admin, alice: alice, people: people}
}

func (f *fixture) run(t *testing.T, sender Sender, args ...string) Reply {
	t.Helper()
	return f.dispatcher.Execute(context.Background(), sender, args)
}

func (f *fixture) total(t *testing.T, name string) int64 {
	t.Helper()
	total, err := f.ledger.TotalOf(context.Background(), f.people[name].ID)
	if err != nil {
		t.Fatalf("total of %s: %v", name, err)
	}
	return total.IntPart()
}

func expectLines(t *testing.T, reply Reply, expected ...string) {
	t.Helper()
	if diff := cmp.Diff(expected, reply.Lines); diff != "" {
		t.Fatalf("reply mismatch (-want +got):\n%s", diff)
	}
}

func TestSenderNamed(t *testing.T) {
	f := newFixture(t, nil)
	if !f.admin.Admin {
		t.Fatal("expected operator to be admin")
	}
	if f.alice.Admin {
		t.Fatal("expected Alice not to be admin")
	}

	stranger, err := f.dispatcher.SenderNamed(context.Background(), "Stranger")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	reply := f.run(t, stranger, "help")
	expectLines(t, reply, "Only registered participants can run this command.")
	if reply.Err == nil {
		t.Fatal("expected reply error")
	}
}

func TestExecute_AddSub(t *testing.T) {
	f := newFixture(t, nil)

	reply := f.run(t, f.admin, "add", "10", "teams:red")
	expectLines(t, reply, "Added 10 points to: Alice,Bob")
	if reply.Err != nil {
		t.Fatalf("expected no error, got %v", reply.Err)
	}

	reply = f.run(t, f.admin, "sub", "3", "players:all", "tags-filter:vip,!banned")
	expectLines(t, reply, "Removed 3 points from: Alice")

	if got := f.total(t, "Alice"); got != 7 {
		t.Fatalf("expected Alice at 7, got %d", got)
	}
	if got := f.total(t, "Bob"); got != 10 {
		t.Fatalf("expected Bob at 10, got %d", got)
	}
	if got := f.total(t, "Carol"); got != 0 {
		t.Fatalf("expected Carol at 0, got %d", got)
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{name: "missing amount", args: []string{"add"}, expected: "Specify the number of points as a whole number."},
		{name: "bad amount", args: []string{"add", "ten", "players:all"}, expected: "Specify the number of points as a whole number."},
		{name: "amount at minimum", args: []string{"sub", "0", "players:all"}, expected: "Points must be greater than 0."},
		{name: "negative amount", args: []string{"add", "-4", "players:all"}, expected: "Points must be greater than 0."},
		{name: "missing selector", args: []string{"add", "5"}, expected: "Specify at least one selector, e.g. players:all"},
		{name: "test without selector", args: []string{"test"}, expected: "Specify at least one selector, e.g. players:all"},
		{name: "unknown player", args: []string{"add", "5", "players:Zed"}, expected: "Player Zed was not found."},
		{name: "unknown team", args: []string{"add", "5", "teams-filter:green"}, expected: "Team green was not found."},
		{name: "unknown category", args: []string{"add", "5", "bogus:x"}, expected: "Invalid selector: bogus:x"},
		{name: "bad syntax", args: []string{"test", "players"}, expected: "Invalid selector: players"},
		{name: "unknown verb", args: []string{"frobnicate"}, expected: "Invalid arguments. See /points help."},
		{name: "nothing to undo", args: []string{"undo"}, expected: "There is no operation to undo."},
		{name: "nothing to redo", args: []string{"redo"}, expected: "There is no operation to redo."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			reply := f.run(t, f.admin, tt.args...)
			expectLines(t, reply, tt.expected)
			if reply.Err == nil {
				t.Fatal("expected reply error")
			}
			if got := f.total(t, "Alice"); got != 0 {
				t.Fatalf("expected no points written, got %d", got)
			}
		})
	}
}

func TestExecute_UndoRedo(t *testing.T) {
	f := newFixture(t, nil)

	f.run(t, f.admin, "add", "10", "teams:red")
	reply := f.run(t, f.admin, "undo")
	expectLines(t, reply, "Undid the last operation: 2 entries of 10 points.")
	if got := f.total(t, "Bob"); got != 0 {
		t.Fatalf("expected Bob at 0 after undo, got %d", got)
	}

	reply = f.run(t, f.admin, "redo")
	expectLines(t, reply, "Redid the last operation: 2 entries of 10 points.")
	if got := f.total(t, "Bob"); got != 10 {
		t.Fatalf("expected Bob at 10 after redo, got %d", got)
	}
}

func TestExecute_RetriesDuplicateID(t *testing.T) {
	f := newFixture(t, &seqIDs{ids: []int64{1, 1, 2}})

	f.run(t, f.admin, "add", "1", "players:Alice")
	reply := f.run(t, f.admin, "add", "2", "players:Alice")
	if reply.Err != nil {
		t.Fatalf("expected retry to succeed, got %v", reply.Err)
	}
	if got := f.total(t, "Alice"); got != 3 {
		t.Fatalf("expected Alice at 3, got %d", got)
	}
}

func TestExecute_History(t *testing.T) {
	f := newFixture(t, nil)

	expectLines(t, f.run(t, f.alice),
		"Point history",
		"----------------------------",
		"No history yet.",
		"Total: 0 points",
	)

	f.run(t, f.admin, "add", "10", "players:Alice")
	f.run(t, f.admin, "sub", "4", "players:Alice")

	expected := []string{
		"Point history",
		"----------------------------",
		"05/01 09:31: +10",
		"05/01 09:32: -4",
		"Total: 6 points",
	}
	expectLines(t, f.run(t, f.alice), expected...)

	// Non-admins always get their own history.
	reply := f.run(t, f.alice, "add", "100", "players:Alice")
	expectLines(t, reply, expected...)
}

func TestExecute_Broadcast(t *testing.T) {
	f := newFixture(t, nil)
	f.run(t, f.admin, "add", "10", "players:Alice")
	f.run(t, f.admin, "add", "20", "players:Bob")
	f.run(t, f.admin, "add", "5", "players:Admin")

	reply := f.run(t, f.admin, "broadcast")
	expectedBroadcast := []string{
		"1. Bob: 20 Point",
		"2. Alice: 10 Point",
		"3. Admin: 5 Point",
		"4. Carol: 0 Point",
	}
	if diff := cmp.Diff(expectedBroadcast, reply.Broadcast); diff != "" {
		t.Fatalf("broadcast mismatch (-want +got):\n%s", diff)
	}
	expectLines(t, reply, "----------------------------", "Admin, you placed #3 with 5 points.")

	reply = f.run(t, f.admin, "broadcast", "true")
	expectedBroadcast = []string{
		"1. Bob: 20 Point",
		"2. Alice: 10 Point",
		"3. Carol: 0 Point",
	}
	if diff := cmp.Diff(expectedBroadcast, reply.Broadcast); diff != "" {
		t.Fatalf("broadcast without operators mismatch (-want +got):\n%s", diff)
	}
	if len(reply.Lines) != 0 {
		t.Fatalf("expected no personal line for an excluded operator, got %v", reply.Lines)
	}
}

func TestExecute_Test(t *testing.T) {
	f := newFixture(t, nil)
	expectLines(t, f.run(t, f.admin, "test", "players:all", "teams-filter:red"), "Selected: Alice Bob")
	if got := f.total(t, "Alice"); got != 0 {
		t.Fatalf("expected dry run to write nothing, got %d", got)
	}
}

func TestExecute_Reload(t *testing.T) {
	f := newFixture(t, nil)
	loads := 0
	f.dispatcher.load = func() (*messages.Catalog, error) {
		loads++
		if loads > 1 {
			return nil, errors.New("file vanished")
		}
		return messages.Parse([]byte("command:\n  reload:\n    success: fresh\n  test:\n    result: \"picked %0\"\n"), messages.Plain)
	}

	expectLines(t, f.run(t, f.admin, "reload"), "fresh")
	expectLines(t, f.run(t, f.admin, "test", "players:Bob"), "picked Bob")

	reply := f.run(t, f.admin, "reload")
	if reply.Err == nil {
		t.Fatal("expected reload failure")
	}
	expectLines(t, reply, "not found message that match this translation key: command.error.unexpected_error")
}

func TestClockIDs(t *testing.T) {
	fixed := time.UnixMilli(5000)
	ids := &ClockIDs{now: func() time.Time { return fixed }}

	first, second := ids.Next(), ids.Next()
	if first != 5000 || second != 5001 {
		t.Fatalf("expected 5000 then 5001, got %d then %d", first, second)
	}
}
