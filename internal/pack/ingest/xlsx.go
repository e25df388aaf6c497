package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mhollis/packworth/internal/pack/config"
	"github.com/mhollis/packworth/pkg/packs"
)

// ParseXLSX ingests every sheet of an Excel workbook. Sheets whose name
// contains "instruction" are skipped before splitting. Embedded images are
// written under imagesDir and associated with items by anchor row.
func ParseXLSX(path, imagesDir string, cfg *config.Ingestion, log *slog.Logger) ([]*packs.Pack, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	splitter := NewSplitter(cfg)
	stem := fileStem(path)
	var all []*packs.Pack

	for _, sheet := range f.GetSheetList() {
		if strings.Contains(strings.ToLower(sheet), "instruction") {
			continue
		}
		grid, err := sheetGrid(f, sheet)
		if err != nil {
			log.Warn("skipping unreadable sheet", "file", filepath.Base(path), "sheet", sheet, "error", err)
			continue
		}
		prefix := fmt.Sprintf("%s_%s", stem, packs.Slug(sheet))
		imageMap := extractImages(f, sheet, imagesDir, prefix, log)

		for idx, table := range splitter.Split(sheet, grid) {
			defaultName := table.NameHint
			if defaultName == "" {
				defaultName = fmt.Sprintf("%s-%s-table-%d", stem, packs.Slug(sheet), idx+1)
			}
			rows := Normalize(table, defaultName, cfg.DefaultCurrency)
			src := Source{File: path, Stem: stem, Sheet: sheet}
			all = append(all, Assemble(rows, src, imageMap, table.IsReference)...)
		}
	}
	return all, nil
}

// sheetGrid reads the sheet into a rectangular grid with merged ranges
// expanded so every covered cell holds the top-left value.
func sheetGrid(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	grid := make([][]string, len(rows))
	for i, row := range rows {
		grid[i] = make([]string, width)
		copy(grid[i], row)
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return grid, nil
	}
	for _, mc := range merges {
		value := mc.GetCellValue()
		startCol, startRow, err1 := excelize.CellNameToCoordinates(mc.GetStartAxis())
		endCol, endRow, err2 := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err1 != nil || err2 != nil {
			continue
		}
		for r := startRow; r <= endRow && r <= len(grid); r++ {
			for c := startCol; c <= endCol && c <= width; c++ {
				if grid[r-1][c-1] == "" {
					grid[r-1][c-1] = value
				}
			}
		}
	}
	return grid, nil
}

// extractImages saves embedded pictures and returns a map of 1-based anchor
// row to saved file path. Extraction failures are logged and skipped, never
// fatal.
func extractImages(f *excelize.File, sheet, imagesDir, prefix string, log *slog.Logger) map[int]string {
	imageMap := map[int]string{}
	cells, err := f.GetPictureCells(sheet)
	if err != nil || len(cells) == 0 {
		return imageMap
	}
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		log.Warn("could not create image directory", "dir", imagesDir, "error", err)
		return imageMap
	}
	count := 0
	for _, cell := range cells {
		pics, err := f.GetPictures(sheet, cell)
		if err != nil || len(pics) == 0 {
			log.Warn("could not extract image", "sheet", sheet, "cell", cell, "error", err)
			continue
		}
		_, row, err := excelize.CellNameToCoordinates(cell)
		if err != nil {
			continue
		}
		count++
		ext := pics[0].Extension
		if ext == "" {
			ext = ".png"
		}
		name := filepath.Join(imagesDir, fmt.Sprintf("%s_img_%d%s", prefix, count, ext))
		if err := os.WriteFile(name, pics[0].File, 0o644); err != nil {
			log.Warn("could not write image", "path", name, "error", err)
			continue
		}
		imageMap[row] = name
	}
	return imageMap
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
