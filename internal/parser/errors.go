package parser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchema 缺少必填列
	ErrSchema = errors.New("input schema error")
	// ErrUnsupportedFormat 不支持的文件格式
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

// SchemaError 必填列缺失，本次运行不做任何处理
type SchemaError struct {
	SheetName   string
	Missing     []Field
	Headers     []string
	Suggestions map[Field][]string // 字段 -> 可能是拼写有误的列名
}

func (e *SchemaError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		names = append(names, fmt.Sprintf("%q", f.DisplayName()))
	}
	msg := fmt.Sprintf("missing required column(s) %s", strings.Join(names, ", "))
	if e.SheetName != "" {
		msg += fmt.Sprintf(" in sheet %q", e.SheetName)
	}
	var hints []string
	for _, f := range e.Missing {
		if s := e.Suggestions[f]; len(s) > 0 {
			hints = append(hints, fmt.Sprintf("%s: did you mean %q?", f.DisplayName(), s[0]))
		}
	}
	if len(hints) > 0 {
		msg += " (" + strings.Join(hints, "; ") + ")"
	}
	return msg
}

// Unwrap 使 errors.Is(err, ErrSchema) 成立
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// MissingNames 缺失列的展示名
func (e *SchemaError) MissingNames() []string {
	out := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		out = append(out, f.DisplayName())
	}
	return out
}

// ParseError 单元格无法解析：字段按缺失处理，运行继续
type ParseError struct {
	Row    int    `json:"row" yaml:"row"`
	Column string `json:"column" yaml:"column"`
	Value  string `json:"value" yaml:"value"`
	Reason string `json:"reason" yaml:"reason"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d column %q: cannot parse %q: %s", e.Row, e.Column, e.Value, e.Reason)
}
