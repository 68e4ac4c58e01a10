package importer

import (
	"errors"

	"contracthierarchy/internal/parser"
)

var (
	// ErrUnhandled 运行中出现未预期的失败（含 panic）
	ErrUnhandled = errors.New("unhandled failure")
	// ErrOutput 写出结果失败
	ErrOutput = errors.New("write output failed")
	// ErrOutputIsInput 输出路径与输入文件相同
	ErrOutputIsInput = errors.New("output path is the input file")
)

// Code 错误分类，用于 API 返回与 CLI 退出码
type Code string

const (
	CodeNone      Code = ""
	CodeSchema    Code = "schema"
	CodeInput     Code = "input"
	CodeOutput    Code = "output"
	CodeUnhandled Code = "unhandled"
)

// ErrorCode 将错误归类。仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func ErrorCode(err error) Code {
	if err == nil {
		return CodeNone
	}
	if errors.Is(err, ErrUnhandled) {
		return CodeUnhandled
	}
	if errors.Is(err, parser.ErrSchema) {
		return CodeSchema
	}
	if errors.Is(err, ErrOutput) {
		return CodeOutput
	}
	// 其余为输入问题：格式不支持、文件不存在、工作簿损坏、CSV 格式错误等
	return CodeInput
}
