package processor

import (
	"github.com/go-gota/gota/dataframe"

	"DelayInsight/src/utils"
)

// ValidationReport 数据校验结果
type ValidationReport struct {
	MissingColumns []string       // 数据中缺少的必需列，保持配置顺序
	MissingValues  map[string]int // 已存在的必需列中缺失值的数量，只收录大于0的项
	IsValid        bool           // 必需列全部存在且无缺失值
}

// Validate 检查数据是否包含required中的全部列，并统计各必需列的缺失值数量。
// 缺失值指NA元素或纯空白字符串；缺列或存在缺失值都会使校验失败。
func Validate(df dataframe.DataFrame, required []string) ValidationReport {
	report := ValidationReport{
		MissingValues: make(map[string]int, len(required)),
	}

	report.MissingColumns = utils.MissingColumns(df, required)
	for _, col := range required {
		if !utils.HasColumn(df, col) {
			continue
		}
		if cnt := utils.CountMissing(df.Col(col)); cnt > 0 {
			report.MissingValues[col] = cnt
		}
	}
	report.IsValid = len(report.MissingColumns) == 0 && len(report.MissingValues) == 0
	return report
}
