package hierarchy

import (
	"fmt"
	"strings"
)

// SortKey 分组与输出的排序口径
type SortKey string

const (
	SortByFile          SortKey = "file"           // 保持输入顺序
	SortByEffectiveDate SortKey = "effective_date" // 按生效日期升序，无日期的排在最后
)

// DefaultRootTypeMarkers 默认的主协议合同类型关键字
var DefaultRootTypeMarkers = []string{
	"MSA",
	"Master Services Agreement",
	"Master Service Agreement",
	"Service Agreement",
	"Technology Agreement",
	"Product and Service Agreement",
}

// Options 分类器参数
type Options struct {
	RootTypeMarkers       []string
	MinFragmentLength     int
	MaxNumericTokenDigits int
	SortKey               SortKey
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	markers := make([]string, len(DefaultRootTypeMarkers))
	copy(markers, DefaultRootTypeMarkers)
	return Options{
		RootTypeMarkers:       markers,
		MinFragmentLength:     4,
		MaxNumericTokenDigits: 6,
		SortKey:               SortByFile,
	}
}

// Validate 校验参数
func (o Options) Validate() error {
	if o.MinFragmentLength < 1 {
		return fmt.Errorf("min fragment length must be >= 1, got %d", o.MinFragmentLength)
	}
	if o.MaxNumericTokenDigits < 0 {
		return fmt.Errorf("max numeric token digits must be >= 0, got %d", o.MaxNumericTokenDigits)
	}
	hasMarker := false
	for _, m := range o.RootTypeMarkers {
		if strings.TrimSpace(m) != "" {
			hasMarker = true
			break
		}
	}
	if !hasMarker {
		return fmt.Errorf("root type markers must not be empty")
	}
	if _, err := ParseSortKey(string(o.SortKey)); err != nil {
		return err
	}
	return nil
}

// ParseSortKey 解析排序口径，空值视为 file
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByFile:
		return SortByFile, nil
	case SortByEffectiveDate, "date", "effective-date":
		return SortByEffectiveDate, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want %q or %q)", s, SortByFile, SortByEffectiveDate)
}
