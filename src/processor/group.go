// group.go
package processor

import (
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"DelayInsight/src/utils"
)

// rowGroup 一个分组：keys为各键列取值，rows为该组的行下标
type rowGroup struct {
	keys []string
	rows []int
}

// groupRows 按键列取值对行分组，组的顺序为键在数据中的首次出现顺序
func groupRows(df dataframe.DataFrame, keyCols ...string) []rowGroup {
	cols := make([]series.Series, len(keyCols))
	for i, c := range keyCols {
		cols[i] = df.Col(c)
	}

	index := make(map[string]int)
	var groups []rowGroup
	for i := 0; i < df.Nrow(); i++ {
		parts := make([]string, len(cols))
		for j, s := range cols {
			parts[j] = s.Elem(i).String()
		}
		key := strings.Join(parts, "\x1f")

		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, rowGroup{keys: parts})
		}
		groups[gi].rows = append(groups[gi].rows, i)
	}
	return groups
}

// sumRows 对指定行下标求和，缺失值与无法解析的值一律跳过
func sumRows(s series.Series, rows []int) float64 {
	var sum float64
	for _, i := range rows {
		el := s.Elem(i)
		if utils.IsMissing(el) {
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

// numericColumns 返回数值类型的列名(保持原列顺序)，排除exclude中的列
func numericColumns(df dataframe.DataFrame, exclude ...string) []string {
	names := df.Names()
	types := df.Types()

	var cols []string
	for i, name := range names {
		if utils.Contains(exclude, name) {
			continue
		}
		if types[i] == series.Int || types[i] == series.Float {
			cols = append(cols, name)
		}
	}
	return cols
}

// notMissing 供Filter使用：保留非缺失元素所在的行
func notMissing(el series.Element) bool {
	return !utils.IsMissing(el)
}
