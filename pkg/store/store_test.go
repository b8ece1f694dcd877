package store

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/tasklist/pkg/task"
)

func rendered(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.String()
	}
	return out
}

func descriptions(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Description
	}
	return out
}

func assertDescriptions(t *testing.T, got []task.Task, want ...string) {
	t.Helper()
	d := descriptions(got)
	if strings.Join(d, "|") != strings.Join(want, "|") {
		t.Fatalf("Expected tasks %q, got %q", want, d)
	}
}

func mustDue(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := task.ParseDue(s)
	if err != nil {
		t.Fatalf("ParseDue(%q): %v", s, err)
	}
	return d
}

func TestAddThenListAll(t *testing.T) {
	s := New()
	s.Add(task.New("A"))
	assertDescriptions(t, s.All(), "A")

	s.Add(task.New("B"))
	s.Add(task.New("C"))
	assertDescriptions(t, s.All(), "A", "B", "C")
}

func TestAddIgnoresNilAndDuplicates(t *testing.T) {
	s := New()
	a := task.New("A")
	s.Add(nil)
	s.Add(a)
	s.Add(a)
	assertDescriptions(t, s.All(), "A")

	s.Undo()
	if s.CanUndo() {
		t.Error("Expected a single history entry for a single insertion")
	}
}

func TestAddAssignsMissingID(t *testing.T) {
	s := New()
	s.Add(&task.Task{Description: "literal"})
	got, ok := s.Find("literal")
	if !ok || got.ID == "" {
		t.Fatalf("Expected stored task with an ID, got %+v (found=%v)", got, ok)
	}
}

func TestMarkCompletedMovesTaskToCompletedView(t *testing.T) {
	s := New()
	s.Add(task.New("X"))
	s.Add(task.New("Y"))
	s.MarkCompleted("X")

	assertDescriptions(t, s.Completed(), "X")
	assertDescriptions(t, s.Pending(), "Y")
}

func TestMarkCompletedAndDeleteUseFirstMatch(t *testing.T) {
	s := New()
	first := task.New("dup")
	second := task.New("dup")
	s.Add(first)
	s.Add(second)

	s.MarkCompleted("dup")
	all := s.All()
	if !all[0].Completed || all[1].Completed {
		t.Fatalf("Expected only the first duplicate completed, got %q", rendered(all))
	}

	s.Delete("dup")
	all = s.All()
	if len(all) != 1 || all[0].ID != second.ID {
		t.Fatalf("Expected only the second duplicate to remain, got %+v", all)
	}
}

func TestMissingDescriptionIsNoop(t *testing.T) {
	s := New()
	s.Add(task.New("A"))
	s.MarkCompleted("missing")
	s.Delete("missing")

	assertDescriptions(t, s.All(), "A")
	s.Undo()
	if s.CanUndo() {
		t.Error("No-op operations must not record history")
	}
}

func TestUndoRedoOnEmptyHistoryIsNoop(t *testing.T) {
	for _, mode := range []Mode{ModeLegacy, ModeReversible} {
		t.Run(string(mode), func(t *testing.T) {
			s := New(WithMode(mode))
			s.Undo()
			s.Redo()
			if len(s.All()) != 0 || s.CanUndo() || s.CanRedo() {
				t.Fatal("Expected empty store to stay empty")
			}

			s.Add(task.New("A"))
			s.Redo()
			assertDescriptions(t, s.All(), "A")
			if !s.CanUndo() || s.CanRedo() {
				t.Fatal("Redo with empty redo history changed the history")
			}
		})
	}
}

func TestScenarioRender(t *testing.T) {
	s := New()
	s.Add(task.New("Buy milk"))
	s.Add(task.New("Pay rent", task.WithDue(mustDue(t, "01-01-2030"))))
	s.MarkCompleted("Buy milk")

	got := rendered(s.All())
	want := []string{"Buy milk - Completed", "Pay rent - Pending, Due: 01-01-2030"}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestLegacyDeleteIsNotUndoable(t *testing.T) {
	s := New()
	s.Add(task.New("A"))
	s.Delete("A")
	if len(s.All()) != 0 {
		t.Fatal("Expected empty list after delete")
	}

	s.Undo()
	if len(s.All()) != 0 {
		t.Fatalf("Legacy undo of delete must not restore the task, got %q", rendered(s.All()))
	}
	if s.CanRedo() {
		t.Error("Legacy undo of delete must not create a redo entry")
	}
}

func TestLegacyUndoCompletionRemovesTask(t *testing.T) {
	s := New()
	s.Add(task.New("A"))
	s.MarkCompleted("A")
	s.Undo()

	if len(s.All()) != 0 {
		t.Fatalf("Legacy undo of completion removes the task, got %q", rendered(s.All()))
	}
}

func TestLegacyRedoAppendsAtEnd(t *testing.T) {
	s := New()
	s.Add(task.New("A"))
	s.Add(task.New("B"))
	s.MarkCompleted("A")

	s.Undo()
	assertDescriptions(t, s.All(), "B")

	s.Redo()
	assertDescriptions(t, s.All(), "B", "A")
	if got, _ := s.Find("A"); !got.Completed {
		t.Error("Redo should bring back the task as it was, completed")
	}
}

func TestLegacyRedoNeverDuplicatesTask(t *testing.T) {
	s := New()
	s.Add(task.New("A"))
	s.MarkCompleted("A")
	s.Undo()
	s.Undo()
	s.Redo()
	s.Redo()

	assertDescriptions(t, s.All(), "A")
}

func TestLegacyNewActionKeepsRedoHistory(t *testing.T) {
	s := New()
	s.Add(task.New("A"))
	s.Undo()
	s.Add(task.New("B"))
	if !s.CanRedo() {
		t.Fatal("Legacy history keeps the redo stack across new actions")
	}
	s.Redo()
	assertDescriptions(t, s.All(), "B", "A")
}

func TestHistoryStacksStayDisjoint(t *testing.T) {
	for _, mode := range []Mode{ModeLegacy, ModeReversible} {
		t.Run(string(mode), func(t *testing.T) {
			s := New(WithMode(mode))
			s.Add(task.New("A"))
			s.Add(task.New("B"))
			s.MarkCompleted("A")
			s.Delete("B")
			steps := []func(){s.Undo, s.Undo, s.Redo, s.Undo, s.Undo, s.Undo, s.Redo, s.Redo, s.Redo}
			for i, step := range steps {
				step()
				seen := make(map[*task.Task]map[action]bool)
				for _, st := range []stack{s.undo, s.redo} {
					for _, e := range st {
						if seen[e.task] == nil {
							seen[e.task] = make(map[action]bool)
						}
						if seen[e.task][e.action] {
							t.Fatalf("step %d: %s entry for %q present twice", i, e.action, e.task.Description)
						}
						seen[e.task][e.action] = true
					}
				}
			}
		})
	}
}

func TestCompletedAndPendingPartitionAll(t *testing.T) {
	for _, mode := range []Mode{ModeLegacy, ModeReversible} {
		t.Run(string(mode), func(t *testing.T) {
			s := New(WithMode(mode))
			ops := []func(){
				func() { s.Add(task.New("A")) },
				func() { s.Add(task.New("B")) },
				func() { s.MarkCompleted("A") },
				s.Undo,
				func() { s.Add(task.New("C")) },
				func() { s.MarkCompleted("C") },
				func() { s.Delete("B") },
				s.Undo,
				s.Redo,
				s.Undo,
				s.Undo,
				s.Redo,
			}
			for i, op := range ops {
				op()
				all := s.All()
				completed := s.Completed()
				pending := s.Pending()
				if len(completed)+len(pending) != len(all) {
					t.Fatalf("step %d: %d completed + %d pending != %d total", i, len(completed), len(pending), len(all))
				}
				ids := make(map[string]bool)
				for _, tk := range append(completed, pending...) {
					ids[tk.ID] = true
				}
				for _, tk := range all {
					if !ids[tk.ID] {
						t.Fatalf("step %d: %q missing from completed/pending views", i, tk.Description)
					}
				}
			}
		})
	}
}

func TestReversibleUndoAddRedoRestoresPosition(t *testing.T) {
	s := New(WithMode(ModeReversible))
	s.Add(task.New("A"))
	s.Add(task.New("B"))
	s.Undo()
	s.Undo()
	if len(s.All()) != 0 {
		t.Fatalf("Expected empty list, got %q", rendered(s.All()))
	}
	s.Redo()
	s.Redo()
	assertDescriptions(t, s.All(), "A", "B")
}

func TestReversibleUndoCompletionRestoresFlag(t *testing.T) {
	s := New(WithMode(ModeReversible))
	s.Add(task.New("A"))
	s.MarkCompleted("A")
	s.Undo()

	got, ok := s.Find("A")
	if !ok {
		t.Fatal("Reversible undo of completion must keep the task")
	}
	if got.Completed {
		t.Error("Expected task back to pending")
	}

	s.Redo()
	if got, _ := s.Find("A"); !got.Completed {
		t.Error("Expected redo to complete the task again")
	}
}

func TestReversibleUndoCompletionOfCompletedTaskKeepsItCompleted(t *testing.T) {
	s := New(WithMode(ModeReversible))
	s.Add(task.New("A", task.WithCompleted(true)))
	s.MarkCompleted("A")
	s.Undo()
	if got, _ := s.Find("A"); !got.Completed {
		t.Error("Undo must restore the previous flag, which was completed")
	}
}

func TestReversibleUndoDeleteRestoresPosition(t *testing.T) {
	s := New(WithMode(ModeReversible))
	s.Add(task.New("A"))
	s.Add(task.New("B"))
	s.Add(task.New("C"))
	s.Delete("B")
	assertDescriptions(t, s.All(), "A", "C")

	s.Undo()
	assertDescriptions(t, s.All(), "A", "B", "C")

	s.Redo()
	assertDescriptions(t, s.All(), "A", "C")
}

func TestReversibleNewActionClearsRedo(t *testing.T) {
	s := New(WithMode(ModeReversible))
	s.Add(task.New("A"))
	s.Undo()
	s.Add(task.New("B"))
	if s.CanRedo() {
		t.Fatal("Expected redo history cleared by a new action")
	}
	assertDescriptions(t, s.All(), "B")
}

func TestViewsReturnCopies(t *testing.T) {
	s := New()
	s.Add(task.New("A"))
	all := s.All()
	all[0].Completed = true
	all[0].Description = "mutated"

	assertDescriptions(t, s.All(), "A")
	if len(s.Completed()) != 0 {
		t.Error("Mutating a view must not change the store")
	}
}

func TestOverdue(t *testing.T) {
	s := New()
	now := time.Date(2030, 1, 2, 12, 0, 0, 0, time.UTC)
	s.Add(task.New("late", task.WithDue(mustDue(t, "01-01-2030"))))
	s.Add(task.New("today", task.WithDue(mustDue(t, "02-01-2030"))))
	s.Add(task.New("late but done", task.WithDue(mustDue(t, "31-12-2029"))))
	s.Add(task.New("undated"))
	s.MarkCompleted("late but done")

	assertDescriptions(t, s.Overdue(now), "late")
}

func TestActivityLogLines(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := New(WithLogger(logger))

	s.Add(task.New("A"))
	s.MarkCompleted("A")
	s.Undo()
	s.Redo()
	s.Delete("A")
	s.Undo()

	out := buf.String()
	for _, want := range []string{
		`msg="Task added" description=A`,
		`msg="Task marked as completed" description=A`,
		`msg="Undo completed"`,
		`msg="Redo completed"`,
		`msg="Task deleted" description=A`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %q, got:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "Undo completed"); n != 1 {
		t.Errorf("Legacy undo of a delete must not log; got %d undo lines", n)
	}
}

func TestListenerReceivesChanges(t *testing.T) {
	var got []string
	l := ListenerFunc(func(c Change) {
		got = append(got, c.Kind.String()+":"+c.Task.Description)
	})
	s := New(WithMode(ModeReversible), WithListener(l))

	s.Add(task.New("A"))
	s.MarkCompleted("A")
	s.Delete("A")
	s.Undo()
	s.Undo()
	s.Undo()

	want := []string{
		"inserted:A",
		"updated:A",
		"removed:A",
		"inserted:A",
		"updated:A",
		"removed:A",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected changes %q, got %q", want, got)
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{"": ModeLegacy, "legacy": ModeLegacy, "reversible": ModeReversible}
	for in, want := range tests {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("git"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
