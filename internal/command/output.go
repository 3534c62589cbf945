package command

import (
	"fmt"

	"editcmd/internal/logging"
	"editcmd/internal/surface"
)

// OutputPrefix is prepended to the command name when naming output surfaces.
const OutputPrefix = "output: "

// DirectOutput applies content to the editor according to kind. Kinds that
// edit the active buffer return ErrNoTextSurface when it is not a text surface.
func (b *Base) DirectOutput(ws surface.Workspace, kind OutputKind, content string) error {
	logging.CommandsDebug("output %s for %s (%d bytes)", kind, b.Name, len(content))

	switch kind {
	case OutputDiscard:
		return nil
	case OutputCreateNewDocument:
		if ws == nil {
			return ErrNoWorkspace
		}
		tab := ws.NewTextSurface()
		tab.SetName(OutputPrefix + b.Name)
		tab.Replace(content)
		tab.Focus()
		return nil
	case OutputShowAsHTML:
		if ws == nil {
			return ErrNoWorkspace
		}
		tab := ws.NewHTMLSurface(content)
		tab.SetName(OutputPrefix + b.Name)
		tab.Focus()
		return nil
	}

	tab, ok := ActiveText(ws)
	if !ok {
		return fmt.Errorf("%w: output %s", ErrNoTextSurface, kind)
	}

	switch kind {
	case OutputReplaceDocument:
		tab.Replace(content)
	case OutputReplaceLine:
		tab.ReplaceLine(content)
	case OutputReplaceSelectedText:
		tab.ReplaceSelection(content)
	case OutputInsertAsText:
		tab.InsertAtCursor(content)
	case OutputInsertAsSnippet:
		tab.InsertAsSnippet(content)
	case OutputShowAsToolTip:
		tab.TooltipAtCursor(content)
	case OutputAfterSelectedText:
		end := tab.CursorOffset()
		if tab.Selected() {
			_, end = tab.SelectionBounds()
		}
		tab.Insert(end, content)
	case OutputReplaceInput:
		b.replaceInput(tab, content, b.ValidInputKind(ws))
	case OutputInsertAfterInput:
		b.insertAfterInput(tab, content, b.ValidInputKind(ws))
	default:
		return fmt.Errorf("%w: %d", ErrUnknownOutputKind, int(kind))
	}
	return nil
}

func (b *Base) replaceInput(tab surface.Text, content string, kind InputKind) {
	switch kind {
	case InputSelectedText:
		tab.ReplaceSelection(content)
	case InputLine:
		tab.ReplaceLine(content)
	case InputDocument:
		tab.Replace(content)
	case InputWord:
		if s, e, ok := WordSpan(tab.Text(), tab.CursorOffset()); ok {
			tab.Delete(s, e)
			tab.Insert(s, content)
		}
	case InputCharacter:
		s := tab.CursorOffset()
		if v, ok := characterAt(tab.Text(), s); ok {
			tab.Delete(s, s+len(v))
			tab.Insert(s, content)
		}
	case InputScope:
		scoped, ok := tab.(surface.Scoped)
		if !ok {
			return
		}
		if scope, ok := scoped.CurrentScope(); ok {
			tab.Delete(scope.Start, scope.End)
			tab.Insert(scope.Start, content)
		}
	default:
		logging.CommandsDebug("replace_input: nothing to replace for input %s in %s", kind, b.Name)
	}
}

func (b *Base) insertAfterInput(tab surface.Text, content string, kind InputKind) {
	switch kind {
	case InputSelectedText:
		_, e := tab.SelectionBounds()
		tab.Insert(e, content)
		tab.Select(e, e+len(content))
	case InputLine:
		line := tab.CursorLine()
		if line == tab.LineCount()-1 {
			tab.Insert(tab.LineEnd(line), "\n"+content)
		} else {
			tab.Insert(tab.LineStart(line+1), content)
		}
	case InputDocument:
		tab.Insert(len(tab.Text()), content)
	default:
		logging.CommandsDebug("insert_after_input: no insertion point for input %s in %s", kind, b.Name)
	}
}
