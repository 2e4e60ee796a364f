// Package cli contains the apex/log handler writing to the terminal.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

// Default is the [*Handler] writing to the standard error.
var Default = New(os.Stderr)

// style is how we print the entries of a given level.
type style struct {
	color  *color.Color
	symbol string
}

var styles = map[log.Level]style{
	log.DebugLevel: {color.New(color.FgWhite), "•"},
	log.InfoLevel:  {color.New(color.FgBlue), "•"},
	log.WarnLevel:  {color.New(color.FgYellow), "!"},
	log.ErrorLevel: {color.New(color.FgRed), "⨯"},
	log.FatalLevel: {color.New(color.FgRed, color.Bold), "⨯"},
}

// hiddenFields contains the fields we never print.
var hiddenFields = map[string]bool{
	"source": true,
	"type":   true,
}

// Handler is an apex/log handler for interactive use. An entry whose
// "type" field is "table" is printed as a box containing its fields.
type Handler struct {
	mu sync.Mutex

	// Writer is where we write the entries.
	Writer io.Writer

	// Padding is the indentation of each line.
	Padding int
}

var _ log.Handler = &Handler{}

// New creates a new [*Handler] writing to w.
func New(w io.Writer) *Handler {
	if f, ok := w.(*os.File); ok {
		w = colorable.NewColorable(f)
	}
	return &Handler{Writer: w, Padding: 3}
}

// HandleLog implements log.Handler.
func (h *Handler) HandleLog(e *log.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if kind, _ := e.Fields["type"].(string); kind == "table" {
		return logTable(h.Writer, e)
	}
	return h.logLine(e)
}

// logLine prints the entry on a single line.
func (h *Handler) logLine(e *log.Entry) error {
	st, found := styles[e.Level]
	if !found {
		st = styles[log.InfoLevel]
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", h.Padding))
	sb.WriteString(st.color.Sprint(st.symbol))
	sb.WriteString(" ")
	sb.WriteString(st.color.Sprintf("%-25s", e.Message))
	for _, name := range e.Fields.Names() {
		if hiddenFields[name] {
			continue
		}
		fmt.Fprintf(&sb, " %s=%v", st.color.Sprint(name), e.Fields.Get(name))
	}
	sb.WriteString("\n")
	_, err := io.WriteString(h.Writer, sb.String())
	return err
}
