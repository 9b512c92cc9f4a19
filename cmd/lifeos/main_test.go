package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeos/pkg/planner"
	"lifeos/pkg/task"
)

func TestParseFlags(t *testing.T) {
	flags := parseFlags([]string{"12", "--kind=frog", "--est=30", "--verbose", "--note=a=b"})
	assert.Equal(t, map[string]string{"kind": "frog", "est": "30", "verbose": "", "note": "a=b"}, flags)
}

func TestPositional(t *testing.T) {
	assert.Equal(t, []string{"Call", "dentist"}, positional([]string{"Call", "--format=short", "dentist"}))
	assert.Nil(t, positional([]string{"--x"}))
}

func TestIntFlag(t *testing.T) {
	flags := map[string]string{"est": "45", "bad": "x", "empty": ""}
	assert.Equal(t, 45, intFlag(flags, "est", 0))
	assert.Equal(t, 7, intFlag(flags, "bad", 7))
	assert.Equal(t, 7, intFlag(flags, "empty", 7))
	assert.Equal(t, 7, intFlag(flags, "missing", 7))
}

func TestParseID(t *testing.T) {
	id, err := parseID([]string{"--kind=frog", "42"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, args := range [][]string{nil, {"abc"}, {"0"}, {"-3"}} {
		_, err := parseID(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestPrintShortLists(t *testing.T) {
	var buf bytes.Buffer
	printShortLists(&buf, &planner.Lists{
		Date:     "2026-10-19",
		Frogs:    []task.Task{{ID: 3, Title: "Call dentist", Kind: task.KindFrog, Status: task.StatusOpen, CreatedAt: time.Now()}},
		Tadpoles: []task.Task{},
	})
	out := buf.String()
	assert.Contains(t, out, "2026-10-19")
	assert.Contains(t, out, "Call dentist")
	assert.Contains(t, out, "frog")
}

func TestTruncStrKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "abc", truncStr("abc", 5))
	assert.Equal(t, "ab", truncStr("abcdef", 2))
	assert.Equal(t, "Zahnarzt ü", truncStr("Zahnarzt über", 10))
	assert.Equal(t, "", truncStr("ü", 0))
}

func TestPrintShortTasksMultibyteTitle(t *testing.T) {
	title := strings.Repeat("a", 59) + "ü Zahnarzt anrufen"
	var buf bytes.Buffer
	printShortTasks(&buf, []task.Task{{ID: 1, Title: title, Kind: task.KindFrog, Status: task.StatusOpen}})

	out := buf.String()
	assert.True(t, utf8.ValidString(out), "output is not valid UTF-8: %q", out)
	assert.Contains(t, out, strings.Repeat("a", 59)+"ü\n")
}

type stubCounter struct {
	n   int
	err error
}

func (c stubCounter) Count(context.Context) (int, error) { return c.n, c.err }

type stubTaskCounter struct {
	n   int
	err error
}

func (c stubTaskCounter) Count(context.Context, task.Status) (int, error) { return c.n, c.err }

func TestStatus(t *testing.T) {
	st, err := status(context.Background(), stubCounter{n: 2}, stubTaskCounter{n: 4}, stubCounter{n: 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"inbox": 2, "open_tasks": 4, "references": 1}, st)
}

func TestStatusReportsStorageErrors(t *testing.T) {
	down := errors.New("connection refused")
	cases := []struct {
		name  string
		items counter
		tasks taskCounter
		refs  counter
	}{
		{"inbox", stubCounter{err: down}, stubTaskCounter{}, stubCounter{}},
		{"tasks", stubCounter{}, stubTaskCounter{err: down}, stubCounter{}},
		{"references", stubCounter{}, stubTaskCounter{}, stubCounter{err: down}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, err := status(context.Background(), tc.items, tc.tasks, tc.refs)
			assert.ErrorIs(t, err, down)
			assert.Nil(t, st)
		})
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	var buf bytes.Buffer
	err := (&app{}).dispatch(context.Background(), &buf, "frobnicate", nil)
	assert.ErrorIs(t, err, errUsage)
	assert.Empty(t, buf.String())
}

func TestDispatchBadIDReturnsError(t *testing.T) {
	var buf bytes.Buffer
	err := (&app{}).dispatch(context.Background(), &buf, "done", []string{"abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Usage: lifeos done")
}
