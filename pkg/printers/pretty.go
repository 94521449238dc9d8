// Package printers renders a standardized snapshot to the terminal. This is
// the renderFromSIDS collaborator; it never touches flags or actor data.
package printers

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
)

type PrettyPrint struct {
	// ShowKeys prints each element's key next to it, which is how a GM
	// finds the argument for the toggle command.
	ShowKeys bool
}

func (pp *PrettyPrint) Statblock(sb *statblock.Statblock) {
	if sb == nil {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprintln(color.Output, "nothing to inspect")
		return
	}

	title := color.New(color.Bold, color.Underline)
	if sb.TitleHidden {
		_, _ = title.Fprint(color.Output, sb.Title)
		_, _ = color.New(color.Faint).Fprintln(color.Output, "  ✘ hidden from players")
	} else {
		_, _ = title.Fprintln(color.Output, sb.Title)
	}

	for _, sec := range sb.Sections {
		pp.section(sec)
	}
}

func (pp *PrettyPrint) section(sec statblock.Section) {
	head := color.New(color.Bold)
	faint := color.New(color.Faint)

	_, _ = fmt.Fprintln(color.Output, "")
	if sec.Label != "" {
		_, _ = head.Fprint(color.Output, sec.Label)
		if sec.Hidden {
			_, _ = faint.Fprint(color.Output, "  ✘ hidden")
		}
		if pp.ShowKeys && !sec.Key.IsZero() {
			_, _ = faint.Fprintf(color.Output, "  [%s]", sec.Key)
		}
		_, _ = fmt.Fprintln(color.Output, "")
	}

	if len(sec.Rows) > 0 {
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, r := range sec.Rows {
			tbl.AddRow(pp.cells(r.Key, r.Label, r.Value, r.Hidden)...)
		}
		_, _ = fmt.Fprintln(color.Output, tbl)
	}

	for _, cat := range sec.Categories {
		_, _ = faint.Fprint(color.Output, cat.Label)
		if cat.Hidden {
			_, _ = faint.Fprint(color.Output, "  ✘ hidden")
		}
		if pp.ShowKeys {
			_, _ = faint.Fprintf(color.Output, "  [%s]", cat.Key)
		}
		_, _ = fmt.Fprintln(color.Output, "")

		if len(cat.Tags) > 0 {
			tbl := uitable.New()
			tbl.Separator = "  "
			for _, t := range cat.Tags {
				tbl.AddRow(pp.cells(t.Key, t.Label, "", t.Hidden)...)
			}
			_, _ = fmt.Fprintln(color.Output, tbl)
		}
	}
}

func (pp *PrettyPrint) cells(key statblock.Key, label, value string, hidden bool) []interface{} {
	mark := " "
	if hidden {
		mark = "✘"
	}
	cells := []interface{}{mark, label}
	if value != "" {
		cells = append(cells, value)
	}
	if pp.ShowKeys {
		cells = append(cells, "["+key.String()+"]")
	}
	return cells
}

// Systems prints the registered ruleset ids, marking the active one.
func (pp *PrettyPrint) Systems(active string, ids []string) {
	if len(ids) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(color.Output, " none")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, id := range ids {
		mark := " "
		if id == active {
			mark = "*"
		}
		tbl.AddRow(mark, id)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}
