package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/cabewaldrop/statuspage/internal/dom"
	"github.com/cabewaldrop/statuspage/internal/render"
)

// squareGlyphs stands in for the colored squares of a version cell.
var squareGlyphs = map[string]string{
	"":                   "=",
	render.ClassOutdated: "o",
	render.ClassMissing:  "x",
	render.ClassObsolete: "+",
	render.ClassIgnored:  ".",
}

var squareColors = map[string]*color.Color{
	"":                   color.New(color.FgGreen),
	render.ClassOutdated: color.New(color.FgBlue),
	render.ClassMissing:  color.New(color.FgRed, color.Bold),
	render.ClassObsolete: color.New(color.FgYellow),
	render.ClassIgnored:  color.New(color.FgHiBlack),
}

var headerColor = color.New(color.Bold, color.Underline)

// textCell is a cell's plain text, used for alignment, and its colored
// rendering.
type textCell struct {
	plain   string
	colored string
}

func plainCell(s string) textCell { return textCell{plain: s, colored: s} }

func versionCell(classes []string) textCell {
	var plain, colored strings.Builder
	for _, c := range classes {
		glyph, ok := squareGlyphs[c]
		if !ok {
			glyph = "?"
		}
		plain.WriteString(glyph)
		if col, ok := squareColors[c]; ok {
			colored.WriteString(col.Sprint(glyph))
		} else {
			colored.WriteString(glyph)
		}
	}
	return textCell{plain: plain.String(), colored: colored.String()}
}

// writeViewText prints the visible rows as an aligned table. Metadata
// columns show their text; version columns show one glyph per repository.
func writeViewText(w io.Writer, doc *dom.Document, meta int) error {
	var table [][]textCell
	var header []textCell
	for _, t := range doc.HeaderTitles() {
		header = append(header, plainCell(t))
	}

	for _, tr := range doc.TableRows() {
		var row []textCell
		for pos := 1; ; pos++ {
			td := dom.Cell(tr, pos)
			if td == nil {
				break
			}
			if pos > meta {
				row = append(row, versionCell(dom.LinkClasses(td)))
			} else {
				row = append(row, plainCell(strings.TrimSpace(dom.Text(td))))
			}
		}
		table = append(table, row)
	}

	widths := columnWidths(header, table)
	if err := writeTextRow(w, header, widths, headerColor); err != nil {
		return err
	}
	for _, row := range table {
		if err := writeTextRow(w, row, widths, nil); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d rows, %s\n", len(table), doc.URL())
	return err
}

func columnWidths(header []textCell, rows [][]textCell) []int {
	var widths []int
	grow := func(row []textCell) {
		for i, c := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := runewidth.StringWidth(c.plain); n > widths[i] {
				widths[i] = n
			}
		}
	}
	grow(header)
	for _, r := range rows {
		grow(r)
	}
	return widths
}

func writeTextRow(w io.Writer, row []textCell, widths []int, style *color.Color) error {
	var b strings.Builder
	for i, c := range row {
		if i > 0 {
			b.WriteString("  ")
		}
		text := c.colored
		if style != nil {
			text = style.Sprint(c.plain)
		}
		b.WriteString(text)
		if i < len(row)-1 {
			pad := widths[i] - runewidth.StringWidth(c.plain)
			b.WriteString(strings.Repeat(" ", max(pad, 0)))
		}
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
