// Command lifeos is the command-line front end: capture into the inbox,
// triage it and work through today's lists straight against the database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"lifeos/internal/config"
	"lifeos/internal/db"
	"lifeos/internal/logger"
	"lifeos/pkg/display"
	"lifeos/pkg/inbox"
	"lifeos/pkg/planner"
	"lifeos/pkg/reference"
	"lifeos/pkg/task"
	"lifeos/pkg/triage"
)

type app struct {
	triage  *triage.Service
	planner *planner.Planner
	items   *inbox.PgStore
	tasks   *task.PgStore
	refs    *reference.PgStore
}

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	if err := run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(1)
		}
		fatal("%v", err)
	}
}

// run executes one command. Resources it opens are released before it
// returns, including on error.
func run(ctx context.Context, cmd string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lg := logger.New(cfg.Log)

	if cmd == "init" {
		if err := db.Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Println(`{"status":"ok","message":"schema up to date"}`)
		return nil
	}

	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	a := &app{
		items: inbox.NewPgStore(pool),
		tasks: task.NewPgStore(pool),
		refs:  reference.NewPgStore(pool),
	}
	a.triage = triage.NewService(lg, a.items, a.tasks, a.refs, db.NewTxManager(pool))
	a.planner = planner.New(a.tasks, lg)

	return a.dispatch(ctx, os.Stdout, cmd, args)
}

func (a *app) dispatch(ctx context.Context, w io.Writer, cmd string, args []string) error {
	flags := parseFlags(args)

	switch cmd {
	case "capture":
		text := strings.Join(positional(args), " ")
		it, err := a.triage.Capture(ctx, text)
		if err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		return printJSON(w, it)

	case "inbox":
		items, err := a.triage.Inbox(ctx)
		if err != nil {
			return fmt.Errorf("list inbox: %w", err)
		}
		return output(w, flags, items, func(w io.Writer) { printShortItems(w, items) })

	case "task":
		id, err := idArg(args, "lifeos task <item-id> --kind=frog|tadpole [--est=minutes]")
		if err != nil {
			return err
		}
		t, err := a.triage.ToTask(ctx, id, task.Kind(flags["kind"]), intFlag(flags, "est", 0))
		if err != nil {
			return fmt.Errorf("convert to task: %w", err)
		}
		return printJSON(w, t)

	case "ref":
		id, err := idArg(args, "lifeos ref <item-id>")
		if err != nil {
			return err
		}
		n, err := a.triage.ToReference(ctx, id)
		if err != nil {
			return fmt.Errorf("convert to reference: %w", err)
		}
		return printJSON(w, n)

	case "trash":
		id, err := idArg(args, "lifeos trash <item-id>")
		if err != nil {
			return err
		}
		if err := a.triage.Discard(ctx, id); err != nil {
			return fmt.Errorf("discard: %w", err)
		}
		fmt.Fprintln(w, `{"status":"ok"}`)
		return nil

	case "today":
		var (
			lists *planner.Lists
			err   error
		)
		if d, ok := flags["date"]; ok {
			lists, err = a.planner.ForDate(ctx, d)
		} else {
			lists, err = a.planner.Today(ctx)
		}
		if err != nil {
			return fmt.Errorf("today: %w", err)
		}
		return output(w, flags, lists, func(w io.Writer) { printShortLists(w, lists) })

	case "done":
		id, err := idArg(args, "lifeos done <task-id>")
		if err != nil {
			return err
		}
		if err := a.planner.Complete(ctx, id); err != nil {
			return fmt.Errorf("done: %w", err)
		}
		fmt.Fprintln(w, `{"status":"ok"}`)
		return nil

	case "snooze":
		id, err := idArg(args, "lifeos snooze <task-id>")
		if err != nil {
			return err
		}
		if err := a.planner.Snooze(ctx, id); err != nil {
			return fmt.Errorf("snooze: %w", err)
		}
		fmt.Fprintln(w, `{"status":"ok"}`)
		return nil

	case "tasks":
		f := task.Filter{Status: task.Status(flags["status"]), Limit: intFlag(flags, "limit", 20)}
		if k := flags["kind"]; k != "" {
			kind, err := task.ParseKind(k)
			if err != nil {
				return err
			}
			f.Kind = kind
		}
		tasks, err := a.tasks.List(ctx, f)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		return output(w, flags, tasks, func(w io.Writer) { printShortTasks(w, tasks) })

	case "refs":
		notes, err := a.triage.References(ctx)
		if err != nil {
			return fmt.Errorf("list references: %w", err)
		}
		return output(w, flags, notes, func(w io.Writer) { printShortNotes(w, notes) })

	case "status":
		st, err := status(ctx, a.items, a.tasks, a.refs)
		if err != nil {
			return err
		}
		return printJSON(w, st)

	default:
		return errUsage
	}
}

type counter interface {
	Count(ctx context.Context) (int, error)
}

type taskCounter interface {
	Count(ctx context.Context, status task.Status) (int, error)
}

// status collects the inbox, open task and reference counts. Any storage
// error fails the whole command.
func status(ctx context.Context, items counter, tasks taskCounter, refs counter) (map[string]int, error) {
	inboxCount, err := items.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	openTasks, err := tasks.Count(ctx, task.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	refCount, err := refs.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	return map[string]int{
		"inbox":      inboxCount,
		"open_tasks": openTasks,
		"references": refCount,
	}, nil
}

// parseFlags parses --key=value and --flag style args into a map.
func parseFlags(args []string) map[string]string {
	flags := make(map[string]string)
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		arg = strings.TrimPrefix(arg, "--")
		if k, v, ok := strings.Cut(arg, "="); ok {
			flags[k] = v
		} else {
			flags[arg] = ""
		}
	}
	return flags
}

// positional returns the args that are not flags.
func positional(args []string) []string {
	var out []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			out = append(out, arg)
		}
	}
	return out
}

func intFlag(flags map[string]string, key string, defaultVal int) int {
	if v, ok := flags[key]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseID(args []string) (int64, error) {
	pos := positional(args)
	if len(pos) == 0 {
		return 0, fmt.Errorf("missing id")
	}
	id, err := strconv.ParseInt(pos[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", pos[0])
	}
	return id, nil
}

func idArg(args []string, usageLine string) (int64, error) {
	id, err := parseID(args)
	if err != nil {
		return 0, fmt.Errorf("%w\nUsage: %s", err, usageLine)
	}
	return id, nil
}

// output writes v as JSON, YAML or short lines depending on --format.
func output(w io.Writer, flags map[string]string, v any, short func(io.Writer)) error {
	switch flags["format"] {
	case "short":
		short(w)
		return nil
	case "yaml":
		return printYAML(w, v)
	default:
		return printJSON(w, v)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// printYAML round-trips through JSON so the keys match the API's field names.
func printYAML(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	var generic any
	if err := yaml.Unmarshal(b, &generic); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	return enc.Close()
}

// truncStr keeps at most n runes of s.
func truncStr(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func printShortItems(w io.Writer, items []inbox.Item) {
	for _, it := range items {
		fmt.Fprintf(w, "%-6d  %-12s  %s\n", it.ID, display.Time(it.CreatedAt), truncStr(it.Text, 60))
	}
}

func printShortTasks(w io.Writer, tasks []task.Task) {
	for _, t := range tasks {
		fmt.Fprintf(w, "%-6d  %-7s  %-4s  %s\n", t.ID, t.Kind, t.Status, truncStr(t.Title, 60))
	}
}

func printShortLists(w io.Writer, l *planner.Lists) {
	fmt.Fprintf(w, "%s\n", l.Date)
	fmt.Fprintln(w, "frogs:")
	printShortTasks(w, l.Frogs)
	fmt.Fprintln(w, "tadpoles:")
	printShortTasks(w, l.Tadpoles)
}

func printShortNotes(w io.Writer, notes []reference.Note) {
	for _, n := range notes {
		fmt.Fprintf(w, "%-6d  %-12s  %s\n", n.ID, display.Time(n.CreatedAt), truncStr(n.Text, 60))
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lifeos: "+format+"\n", args...)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: lifeos <command>

Commands:
  init       Apply database migrations
  capture    Capture text into the inbox
  inbox      List inbox items [--format=json|yaml|short]
  task       Convert an inbox item to a task (<id> --kind=frog|tadpole [--est=minutes])
  ref        Convert an inbox item to a reference note (<id>)
  trash      Discard an inbox item (<id>)
  today      Show today's frogs and tadpoles [--date=YYYY-MM-DD]
  done       Mark a task done (<id>)
  snooze     Snooze a task until tomorrow (<id>)
  tasks      List tasks [--status=open|done] [--kind=frog|tadpole] [--limit=N]
  refs       List reference notes
  status     Show counts`)
}
