package cli

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/apex/log"
	"github.com/fatih/color"
)

// ansiEscape matches the SGR sequences emitted by fatih/color.
var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// printedLength counts the runes that actually reach the terminal.
func printedLength(s string) int {
	return utf8.RuneCountInString(ansiEscape.ReplaceAllString(s, ""))
}

// rightPad pads str with spaces up to the given printed length.
func rightPad(str string, length int) string {
	count := printedLength(str)
	if count >= length {
		return str
	}
	return str + strings.Repeat(" ", length-count)
}

// logTable prints the message, if any, followed by the fields in a box.
func logTable(w io.Writer, e *log.Entry) error {
	key := color.New(color.FgBlue)
	var rows []string
	for _, name := range e.Fields.Names() {
		if hiddenFields[name] {
			continue
		}
		rows = append(rows, fmt.Sprintf("%s: %v", key.Sprint(name), e.Fields.Get(name)))
	}

	width := printedLength(e.Message)
	for _, row := range rows {
		width = max(width, printedLength(row))
	}
	rule := strings.Repeat("━", width+2)

	var sb strings.Builder
	sb.WriteString("┏" + rule + "┓\n")
	if e.Message != "" {
		sb.WriteString("┃ " + rightPad(e.Message, width) + " ┃\n")
		sb.WriteString("┣" + rule + "┫\n")
	}
	for _, row := range rows {
		sb.WriteString("┃ " + rightPad(row, width) + " ┃\n")
	}
	sb.WriteString("┗" + rule + "┛\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
