/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package printers

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
)

type textWriter struct {
	w *tabwriter.Writer
}

func newTextWriter(w io.Writer) *textWriter {
	return &textWriter{w: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (t *textWriter) line(format string, args ...any) {
	lo.Must1(fmt.Fprintf(t.w, format+"\n", args...))
}

func (t *textWriter) newline() {
	lo.Must1(fmt.Fprintln(t.w))
}

// header writes a tab-separated header row with uppercase column names.
func (t *textWriter) header(columns ...string) {
	t.row(lo.ToAnySlice(lo.Map(columns, func(c string, _ int) string { return strings.ToUpper(c) }))...)
}

func (t *textWriter) row(values ...any) {
	cells := lo.Map(values, func(v any, _ int) string { return fmt.Sprint(v) })
	lo.Must1(fmt.Fprintln(t.w, strings.Join(cells, "\t")))
}

func (t *textWriter) flush() error {
	return t.w.Flush()
}
