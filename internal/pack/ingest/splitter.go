// Package ingest turns raw tabular files, OCR text blocks, and review files
// into Pack entities.
package ingest

import (
	"strconv"
	"strings"

	"github.com/mhollis/packworth/internal/pack/config"
)

// Table is one logical table detected inside a sheet grid.
type Table struct {
	Header []string
	Rows   [][]string
	// RowNumbers holds the 1-based sheet row of each data row, parallel to Rows.
	RowNumbers []int
	// NameHint is the single-cell title row captured immediately before the
	// table's header, if any.
	NameHint    string
	IsReference bool
}

// Splitter detects independently-headered logical tables within a grid of
// cells. The grid must already have merged ranges expanded so that every
// covered cell holds the top-left value.
type Splitter struct {
	cfg         config.Splitter
	refPatterns []string
}

// NewSplitter builds a Splitter from the ingestion config.
func NewSplitter(cfg *config.Ingestion) *Splitter {
	patterns := make([]string, 0, len(cfg.ReferenceHandling.SheetNamePatterns))
	for _, p := range cfg.ReferenceHandling.SheetNamePatterns {
		patterns = append(patterns, strings.ToLower(p))
	}
	return &Splitter{cfg: cfg.Splitter, refPatterns: patterns}
}

type splitState int

const (
	seekingHeader splitState = iota
	inTable
)

// Split scans the grid top to bottom and returns the logical tables found,
// in sheet order. Tables with no data rows are discarded.
func (s *Splitter) Split(sheetName string, grid [][]string) []Table {
	var tables []Table

	state := seekingHeader
	var header []string
	var body [][]string
	var rowNumbers []int
	var nameHint string
	blankRun := 0

	flush := func() {
		if header != nil && len(body) > 0 {
			tables = append(tables, Table{
				Header:      namedHeader(header),
				Rows:        body,
				RowNumbers:  rowNumbers,
				NameHint:    nameHint,
				IsReference: s.isReference(sheetName, nameHint),
			})
		}
		header = nil
		body = nil
		rowNumbers = nil
		nameHint = ""
		blankRun = 0
	}

	for i, row := range grid {
		switch state {
		case seekingHeader:
			filled := nonEmptyCells(row)
			if len(filled) == 0 {
				continue
			}
			if len(filled) == 1 && !isNumeric(filled[0]) {
				nameHint = strings.TrimSpace(filled[0])
				continue
			}
			if s.headerScore(row) >= s.cfg.HeaderScoreThreshold {
				header = row
				state = inTable
				blankRun = 0
			}
		case inTable:
			if len(nonEmptyCells(row)) == 0 {
				blankRun++
				if blankRun >= s.cfg.BlankRunThreshold {
					flush()
					state = seekingHeader
				}
				continue
			}
			if s.headerScore(row) >= s.cfg.HeaderScoreThreshold {
				// A new header starts the next table without a separator.
				flush()
				header = row
				state = inTable
				continue
			}
			blankRun = 0
			body = append(body, row)
			rowNumbers = append(rowNumbers, i+1)
		}
	}
	if state == inTable {
		flush()
	}
	return tables
}

// headerScore counts cells whose lowercased text contains any header keyword.
func (s *Splitter) headerScore(row []string) int {
	score := 0
	for _, cell := range row {
		text := strings.ToLower(strings.TrimSpace(cell))
		if text == "" {
			continue
		}
		for _, kw := range s.cfg.HeaderKeywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
	}
	return score
}

// isReference matches the sheet name or captured name hint against the
// configured reference patterns (case-insensitive substring).
func (s *Splitter) isReference(sheetName, nameHint string) bool {
	for _, value := range []string{sheetName, nameHint} {
		if value == "" {
			continue
		}
		low := strings.ToLower(value)
		for _, pat := range s.refPatterns {
			if strings.Contains(low, pat) {
				return true
			}
		}
	}
	return false
}

// namedHeader substitutes col_N for blank header cells by position.
func namedHeader(header []string) []string {
	named := make([]string, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			named[i] = "col_" + strconv.Itoa(i+1)
		} else {
			named[i] = h
		}
	}
	return named
}

func nonEmptyCells(row []string) []string {
	var filled []string
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			filled = append(filled, cell)
		}
	}
	return filled
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
