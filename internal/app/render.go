package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"gitnote/internal/note"
)

// Renderer prints command results. Colours are used only when the output
// is a terminal.
type Renderer struct {
	w      io.Writer
	styled bool
	line   lipgloss.Style
	body   lipgloss.Style
	path   lipgloss.Style
}

// NewRenderer creates a Renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return newRenderer(w, styled)
}

func newRenderer(w io.Writer, styled bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		w:      w,
		styled: styled,
		line:   lr.NewStyle().Foreground(lipgloss.Color("3")),
		body:   lr.NewStyle().Foreground(lipgloss.Color("1")),
		path:   lr.NewStyle().Bold(true),
	}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

// Annotated prints every line of the current content, numbered from 1,
// with its note (if any) after the row. Continuation lines of a multi-line
// note are aligned under its first line.
func (r *Renderer) Annotated(a *note.Annotated) error {
	for i, row := range a.Content.Lines() {
		number := strconv.Itoa(i + 1)
		prefix := r.style(r.line, number) + " " + row + " "

		m := a.Note.Find(i)
		if m == nil {
			if _, err := fmt.Fprintln(r.w, strings.TrimSuffix(prefix, " ")); err != nil {
				return err
			}
			continue
		}

		bodyLines := strings.Split(m.Body, "\n")
		if _, err := fmt.Fprintln(r.w, prefix+r.style(r.body, bodyLines[0])); err != nil {
			return err
		}
		padding := strings.Repeat(" ", lipgloss.Width(number+" "+row+" "))
		for _, extra := range bodyLines[1:] {
			if _, err := fmt.Fprintln(r.w, padding+r.style(r.body, extra)); err != nil {
				return err
			}
		}
	}
	return nil
}

// JSON prints the resolved record in its storage format, indented.
func (r *Renderer) JSON(record *note.Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding notes: %w", err)
	}
	_, err = fmt.Fprintln(r.w, string(data))
	return err
}

// Update prints a watched file's header followed by its annotated content.
func (r *Renderer) Update(u Update) error {
	if _, err := fmt.Fprintf(r.w, "==> %s <==\n", r.style(r.path, u.Reference)); err != nil {
		return err
	}
	return r.Annotated(u.Annotated)
}

// Listings prints one "<count>\t<path>" line per stored record.
func (r *Renderer) Listings(listings []Listing) error {
	for _, l := range listings {
		if _, err := fmt.Fprintf(r.w, "%d\t%s\n", l.Notes, r.style(r.path, l.Reference)); err != nil {
			return err
		}
	}
	return nil
}

// Success prints a one-line confirmation such as
// "Successfully added comment for `src/a.go` in range `3`".
func (r *Renderer) Success(verb, rel string, line int) error {
	_, err := fmt.Fprintf(r.w, "Successfully %s comment for `%s` in range `%d`\n", verb, rel, line)
	return err
}
