package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return DataExt(filename) == ".xlsx"
}

func (xlsxLoader) Load(path string, opt Options) (*table.Table, error) {
	var (
		f   *excelize.File
		err error
	)
	if _, ext := SplitCompression(path); ext != "" {
		data, rerr := readAll(path)
		if rerr != nil {
			return nil, &FileLoadError{Path: path, Reason: "read failed", Err: rerr}
		}
		f, err = excelize.OpenReader(bytes.NewReader(data))
	} else {
		f, err = excelize.OpenFile(path)
	}
	if err != nil {
		return nil, &FileLoadError{Path: path, Reason: "open workbook", Err: err}
	}
	defer func() { _ = f.Close() }()

	sheet, err := pickSheet(f.GetSheetList(), opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, &FileLoadError{Path: path, Reason: "select sheet", Err: err}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &FileLoadError{Path: path, Reason: fmt.Sprintf("read sheet %s", sheet), Err: err}
	}
	// leading blank rows are common above the header
	for len(rows) > 0 && isBlankRecord(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, &FileLoadError{Path: path, Reason: fmt.Sprintf("sheet %s is empty", sheet), Err: ErrEmptyFile}
	}
	t, err := buildTable(path, rows[0], rows[1:], opt)
	if err != nil {
		return nil, err
	}
	if opt.SheetName != "" || opt.SheetIndex > 1 {
		t.Name = fmt.Sprintf("%s (sheet: %s)", filepath.Base(path), sheet)
	}
	return t, nil
}

// pickSheet resolves a sheet by case-insensitive name, else by 1-based index.
func pickSheet(sheets []string, name string, index int) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", name, strings.Join(sheets, ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range (1-%d)", index, len(sheets))
	}
	return sheets[index-1], nil
}
