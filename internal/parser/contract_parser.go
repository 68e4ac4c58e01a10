package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"contracthierarchy/internal/model"
)

// Options 解析参数
type Options struct {
	Sheet   string             // 指定 Sheet；为空时自动识别
	Aliases map[Field][]string // 追加的列名别名
}

// ContractParser 合同清单解析器
type ContractParser struct {
	opts       Options
	mapper     *FieldMapper
	recognizer *SheetRecognizer
}

// NewContractParser 创建解析器
func NewContractParser(opts Options) *ContractParser {
	mapper := NewFieldMapper(opts.Aliases)
	return &ContractParser{
		opts:       opts,
		mapper:     mapper,
		recognizer: NewSheetRecognizer(mapper),
	}
}

// SupportedExtension 是否为支持的输入格式
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// ParseFile 按扩展名解析文件
func (p *ContractParser) ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return p.Parse(f, filepath.Base(path))
}

// Parse 解析输入流，filename 仅用于判断格式与报告
func (p *ContractParser) Parse(r io.Reader, filename string) (*ParseResult, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		wb, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer func() { _ = wb.Close() }()
		return p.ParseWorkbook(wb, filename)
	case ".csv":
		return p.ParseCSV(r, filename)
	}
	return nil, fmt.Errorf("%w: %q (want .xlsx, .xlsm or .csv)", ErrUnsupportedFormat, filepath.Ext(filename))
}

// ParseWorkbook 解析 Excel 工作簿
func (p *ContractParser) ParseWorkbook(wb *excelize.File, filename string) (*ParseResult, error) {
	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	date1904 := false
	if props, err := wb.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	cache := make(map[string][][]string, len(sheets))
	var readErr error
	rowsOf := func(name string) [][]string {
		if rows, ok := cache[name]; ok {
			return rows
		}
		// 原始值：日期列保留 Excel 序列数，避免受单元格格式影响
		rows, err := wb.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil && readErr == nil {
			readErr = fmt.Errorf("read sheet %q: %w", name, err)
		}
		cache[name] = rows
		return rows
	}

	var rec SheetRecognitionResult
	if p.opts.Sheet != "" {
		if !slices.Contains(sheets, p.opts.Sheet) {
			return nil, fmt.Errorf("sheet %q not found (available: %s)", p.opts.Sheet, strings.Join(sheets, ", "))
		}
		rec = p.recognizer.Recognize(p.opts.Sheet, rowsOf(p.opts.Sheet))
	} else {
		rec, _ = p.recognizer.RecognizeBest(sheets, rowsOf)
		if rec.SheetName == "" {
			rec.SheetName = sheets[0]
			rec.HeaderRow = -1
		}
	}
	if readErr != nil {
		return nil, readErr
	}
	return p.parseRows(filename, rec, rowsOf(rec.SheetName), date1904)
}

// ParseCSV 解析 CSV（首个非空表头行按同样规则识别）
func (p *ContractParser) ParseCSV(r io.Reader, filename string) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	rec := p.recognizer.Recognize("", rows)
	return p.parseRows(filename, rec, rows, false)
}

func (p *ContractParser) parseRows(filename string, rec SheetRecognitionResult, rows [][]string, date1904 bool) (*ParseResult, error) {
	headerRow := rec.HeaderRow
	var headers []string
	if headerRow >= 0 {
		headers = rec.Headers
	} else if len(rows) > 0 {
		headerRow = 0
		headers = rows[0]
	}

	mappings := p.mapper.MapColumns(headers)
	if missing := MissingRequired(mappings); len(missing) > 0 {
		return nil, &SchemaError{
			SheetName:   rec.SheetName,
			Missing:     missing,
			Headers:     headers,
			Suggestions: p.mapper.Suggest(headers, mappings, missing),
		}
	}

	result := &ParseResult{
		Filename:   filename,
		SheetName:  rec.SheetName,
		HeaderRow:  headerRow,
		Confidence: rec.Confidence,
	}
	_, result.HasAribaSupplierName = mappings[FieldAribaSupplierName]
	_, result.HasWorkspaceID = mappings[FieldWorkspaceID]
	_, result.HasEffectiveDate = mappings[FieldEffectiveDate]

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		cell := func(f Field) string {
			fm, ok := mappings[f]
			if !ok || fm.ColumnIndex >= len(row) {
				return ""
			}
			return CleanCell(row[fm.ColumnIndex])
		}

		empty := true
		for f := range mappings {
			if cell(f) != "" {
				empty = false
				break
			}
		}
		if empty {
			result.SkippedRows++
			continue
		}

		record := &model.ContractRecord{
			Index:             len(result.Records),
			RowNo:             i + 1,
			ID:                cell(FieldContractID),
			Name:              cell(FieldFileName),
			ContractType:      cell(FieldContractType),
			Supplier:          cell(FieldSupplier),
			AribaSupplierName: cell(FieldAribaSupplierName),
			WorkspaceID:       cell(FieldWorkspaceID),
			LinkText:          cell(FieldLinkText),
			SourceSheet:       rec.SheetName,
		}
		if raw := cell(FieldEffectiveDate); raw != "" {
			d, err := ParseDate(raw, date1904)
			if err != nil {
				result.Warnings = append(result.Warnings, ParseError{
					Row:    i + 1,
					Column: mappings[FieldEffectiveDate].ColumnName,
					Value:  raw,
					Reason: err.Error(),
				})
			} else {
				record.EffectiveDate = &d
			}
		}
		result.Records = append(result.Records, record)
	}

	return result, nil
}
