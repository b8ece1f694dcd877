// Package shell implements the interactive to-do menu on top of the store.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/harrisonrobin/tasklist/pkg/store"
	"github.com/harrisonrobin/tasklist/pkg/task"
)

const menu = `
To-Do List Manager
1. Add Task
2. Mark Completed
3. Delete Task
4. Undo
5. Redo
6. Show All Tasks
7. Show Completed Tasks
8. Show Pending Tasks
9. Exit
o. Show Overdue Tasks
`

// Shell reads menu choices from in and writes prompts and listings to out.
type Shell struct {
	store  *store.Store
	in     *bufio.Reader
	out    io.Writer
	logger *slog.Logger
	now    func() time.Time
}

// New returns a shell over st. A nil logger discards.
func New(st *store.Store, in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Shell{
		store:  st,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
		now:    time.Now,
	}
}

// errQuit ends the loop normally.
var errQuit = errors.New("quit")

// Run loops until the user exits, input ends or ctx is cancelled.
func (sh *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(sh.out, menu)
		choice, err := sh.prompt("Enter your choice: ")
		if err != nil {
			return ignoreQuit(err)
		}
		if err := sh.dispatch(strings.TrimSpace(choice)); err != nil {
			return ignoreQuit(err)
		}
	}
}

func ignoreQuit(err error) error {
	if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (sh *Shell) dispatch(choice string) error {
	switch choice {
	case "1":
		return sh.add()
	case "2":
		return sh.complete()
	case "3":
		return sh.delete()
	case "4":
		if !sh.store.CanUndo() {
			sh.println("Nothing to undo.")
			return nil
		}
		sh.store.Undo()
		sh.println("Undo completed!")
	case "5":
		if !sh.store.CanRedo() {
			sh.println("Nothing to redo.")
			return nil
		}
		sh.store.Redo()
		sh.println("Redo completed!")
	case "6":
		sh.display("All Tasks", sh.store.All())
	case "7":
		sh.display("Completed Tasks", sh.store.Completed())
	case "8":
		sh.display("Pending Tasks", sh.store.Pending())
	case "o", "O":
		sh.display("Overdue Tasks", sh.store.Overdue(sh.now()))
	case "9":
		return errQuit
	default:
		sh.println("Invalid choice. Please try again.")
		sh.logger.Warn("Invalid choice entered", "choice", choice)
	}
	return nil
}

func (sh *Shell) add() error {
	description, err := sh.prompt("Enter task description: ")
	if err != nil {
		return err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		sh.println("Task description cannot be empty.")
		return nil
	}

	var due time.Time
	for {
		text, err := sh.prompt("Enter due date (DD-MM-YYYY, leave blank if none): ")
		if err != nil {
			return err
		}
		due, err = task.ParseDue(text)
		if err == nil {
			break
		}
		sh.println("Invalid date format. Please enter the date in DD-MM-YYYY format.")
	}

	var opts []task.Option
	if !due.IsZero() {
		opts = append(opts, task.WithDue(due))
	}
	sh.store.Add(task.New(description, opts...))
	sh.println("Task added successfully!")
	return nil
}

func (sh *Shell) complete() error {
	description, err := sh.prompt("Enter task description to mark as completed: ")
	if err != nil {
		return err
	}
	description = strings.TrimSpace(description)
	if !contains(sh.store.Pending(), description) {
		sh.println("Task not found in the pending tasks list.")
		return nil
	}
	sh.store.MarkCompleted(description)
	sh.println("Task marked as completed!")
	return nil
}

func (sh *Shell) delete() error {
	description, err := sh.prompt("Enter task description to delete: ")
	if err != nil {
		return err
	}
	description = strings.TrimSpace(description)
	if _, ok := sh.store.Find(description); !ok {
		sh.println("Task not found in the task list.")
		return nil
	}
	sh.store.Delete(description)
	sh.println("Task deleted!")
	return nil
}

func contains(tasks []task.Task, description string) bool {
	for _, t := range tasks {
		if t.Description == description {
			return true
		}
	}
	return false
}

func (sh *Shell) display(title string, tasks []task.Task) {
	fmt.Fprintf(sh.out, "\n%s:\n", title)
	if len(tasks) == 0 {
		sh.println("No tasks found.")
		return
	}
	for i, t := range tasks {
		fmt.Fprintf(sh.out, "%d. %s\n", i+1, t)
	}
}

// prompt writes label and returns the next input line without its line
// ending, or io.EOF once input is exhausted. Lines may be of any length.
func (sh *Shell) prompt(label string) (string, error) {
	fmt.Fprint(sh.out, label)
	line, err := sh.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		if line == "" {
			return "", io.EOF
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (sh *Shell) println(s string) {
	fmt.Fprintln(sh.out, s)
}
