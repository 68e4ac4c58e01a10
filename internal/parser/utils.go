package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// NormalizeColumnName 规范化列名：去除空白与标点，统一小写
// "Supplier Legal Entity (Contracts)" -> "supplierlegalentitycontracts"
func NormalizeColumnName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

var nullLike = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"n/a":  {},
	"#n/a": {},
}

// IsNullLike 表格导出工具常见的空值占位（nan/none/null/n/a）
func IsNullLike(value string) bool {
	_, ok := nullLike[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// CleanCell 去除首尾空白；空值占位视为空
func CleanCell(value string) string {
	value = strings.TrimSpace(value)
	if IsNullLike(value) {
		return ""
	}
	return value
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"02-Jan-06",
}

// Excel 序列日期的合理范围：1900-01-01 .. 9999-12-31
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// ParseDate 解析生效日期，支持 Excel 序列日期与常见文本格式
func ParseDate(value string, date1904 bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial < minExcelSerial || serial > maxExcelSerial {
			return time.Time{}, fmt.Errorf("excel serial %v out of range", serial)
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, fmt.Errorf("excel serial: %w", err)
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
