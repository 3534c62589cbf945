// Package text is the built-in text plugin: case changes, line operations
// and buffer statistics, registered through the Registrar.
package text

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"editcmd/internal/command"
	"editcmd/internal/registrar"
)

// Owner prefixes every command of the plugin.
const Owner = "Text"

// Register defines the plugin commands on r.
func Register(r *registrar.Registrar) error {
	b := r.For(Owner)

	caseErr := b.UserCommands("Case", func() {
		b.Key("Global/Ctrl+U")
		b.Menu("Text/Case")
		b.Inputs(command.InputSelectedText, command.InputWord)
		b.Output(command.OutputReplaceInput)
		b.Def("upcase", upcase)

		b.Key("Global/Ctrl+Shift+U")
		b.Menu("Text/Case")
		b.Inputs(command.InputSelectedText, command.InputWord)
		b.Output(command.OutputReplaceInput)
		b.Def("downcase", downcase)

		b.Menu("Text/Case")
		b.Inputs(command.InputSelectedText, command.InputWord)
		b.Output(command.OutputReplaceInput)
		b.Def("toggle_case", func(ctx context.Context) (string, error) {
			return toggleCase(ctx, b)
		})
	})

	linesErr := b.UserCommands("Lines", func() {
		b.Menu("Text/Lines")
		b.Inputs(command.InputSelectedText, command.InputDocument)
		b.Output(command.OutputReplaceInput)
		b.Def("sort_lines", sortLines)

		b.Key("Global/Ctrl+D")
		b.Menu("Text/Lines")
		b.Input(command.InputLine)
		b.Output(command.OutputInsertAfterInput)
		b.Def("duplicate_line", duplicateLine)
	})

	infoErr := b.UserCommands("Info", func() {
		b.Menu("Text/Info")
		b.Inputs(command.InputSelectedText, command.InputDocument)
		b.Output(command.OutputShowAsToolTip)
		b.Def("word_count", wordCount)

		b.Menu("Text/Info")
		b.Input(command.InputDocument)
		b.Output(command.OutputShowAsHTML)
		b.Def("preview", preview)

		b.Input(command.InputDocument)
		b.Output(command.OutputCreateNewDocument)
		b.Def("copy_to_new", func(ctx context.Context) (string, error) {
			return command.Input(ctx), nil
		})
	})

	return errors.Join(caseErr, linesErr, infoErr)
}

func upcase(ctx context.Context) (string, error) {
	return strings.ToUpper(command.Input(ctx)), nil
}

func downcase(ctx context.Context) (string, error) {
	return strings.ToLower(command.Input(ctx)), nil
}

// toggleCase downcases input that is entirely upper case and upcases
// anything else, by calling the sibling commands.
func toggleCase(ctx context.Context, b *registrar.Builder) (string, error) {
	in := command.Input(ctx)
	if in != "" && in == strings.ToUpper(in) && in != strings.ToLower(in) {
		return b.Call(ctx, "downcase")
	}
	return b.Call(ctx, "upcase")
}

func sortLines(ctx context.Context) (string, error) {
	in := command.Input(ctx)
	if in == "" {
		return "", nil
	}
	trailing := strings.HasSuffix(in, "\n")
	lines := strings.Split(strings.TrimSuffix(in, "\n"), "\n")
	sort.Strings(lines)
	out := strings.Join(lines, "\n")
	if trailing {
		out += "\n"
	}
	return out, nil
}

func duplicateLine(ctx context.Context) (string, error) {
	line := command.Input(ctx)
	tab, ok := command.Text(ctx)
	if !ok {
		return "", command.ErrNoTextSurface
	}
	if tab.CursorLine() < tab.LineCount()-1 {
		return line + "\n", nil
	}
	return line, nil
}

func wordCount(ctx context.Context) (string, error) {
	in := command.Input(ctx)
	lines := 0
	if in != "" {
		lines = strings.Count(strings.TrimSuffix(in, "\n"), "\n") + 1
	}
	words := len(strings.FieldsFunc(in, unicode.IsSpace))
	return fmt.Sprintf("%d lines, %d words, %d characters", lines, words, utf8.RuneCountInString(in)), nil
}

func preview(ctx context.Context) (string, error) {
	return "<pre>" + html.EscapeString(command.Input(ctx)) + "</pre>", nil
}
