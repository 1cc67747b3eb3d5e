// dfutil.go
package utils

import (
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// IsMissing 判断元素是否缺失：NA 或纯空白字符串均视为缺失
func IsMissing(el series.Element) bool {
	return el.IsNA() || strings.TrimSpace(el.String()) == ""
}

// CountMissing 统计一列中缺失值的数量
func CountMissing(s series.Series) int {
	count := 0
	for i := 0; i < s.Len(); i++ {
		if IsMissing(s.Elem(i)) {
			count++
		}
	}
	return count
}

// MissingColumns 返回required中数据缺少的列，保持输入顺序
func MissingColumns(df dataframe.DataFrame, required []string) []string {
	var missing []string
	for _, col := range required {
		if !HasColumn(df, col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// SumSkipNA 对一列求和，缺失值与无法解析为数值的值一律跳过
func SumSkipNA(s series.Series) float64 {
	var sum float64
	for i := 0; i < s.Len(); i++ {
		el := s.Elem(i)
		if IsMissing(el) {
			continue
		}
		v := el.Float()
		if math.IsNaN(v) {
			continue
		}
		sum += v
	}
	return sum
}

