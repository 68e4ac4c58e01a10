package parser

// MaxHeaderScanRows 表头候选行的扫描范围
const MaxHeaderScanRows = 10

// MinConfidence 视为合同清单所需的最低置信度
const MinConfidence = 0.5

// SheetRecognizer 合同清单 Sheet 与表头行识别器
type SheetRecognizer struct {
	mapper *FieldMapper
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer(mapper *FieldMapper) *SheetRecognizer {
	if mapper == nil {
		mapper = NewFieldMapper(nil)
	}
	return &SheetRecognizer{mapper: mapper}
}

// Recognize 在前若干行中寻找表头：置信度为命中的必填字段比例，取最高者（相同取靠前的行）
func (r *SheetRecognizer) Recognize(sheetName string, rows [][]string) SheetRecognitionResult {
	best := SheetRecognitionResult{SheetName: sheetName, HeaderRow: -1}
	limit := len(rows)
	if limit > MaxHeaderScanRows {
		limit = MaxHeaderScanRows
	}
	for i := 0; i < limit; i++ {
		conf := r.score(rows[i])
		if conf > best.Confidence {
			best.Confidence = conf
			best.HeaderRow = i
			best.Headers = rows[i]
		}
	}
	return best
}

// RecognizeBest 在多个 Sheet 中选出最像合同清单的一个（相同取靠前的 Sheet）
func (r *SheetRecognizer) RecognizeBest(sheets []string, rowsOf func(string) [][]string) (SheetRecognitionResult, bool) {
	var best SheetRecognitionResult
	found := false
	for _, name := range sheets {
		res := r.Recognize(name, rowsOf(name))
		if res.HeaderRow < 0 {
			continue
		}
		if !found || res.Confidence > best.Confidence {
			best = res
			found = true
		}
	}
	return best, found && best.Confidence >= MinConfidence
}

func (r *SheetRecognizer) score(row []string) float64 {
	mappings := r.mapper.MapColumns(row)
	hit := 0
	for _, f := range RequiredFields {
		if _, ok := mappings[f]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(RequiredFields))
}
