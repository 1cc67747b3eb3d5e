package processor

import (
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"DelayInsight/src/utils"
)

const (
	// DelayTypeCol 延误明细长表中的原因类型列名
	DelayTypeCol = "Delay Type"
	// MinutesCol 延误明细长表中的分钟数列名
	MinutesCol = "Minutes"
)

// MeltDelays 将宽表的延误原因列熔化为长表 [月份, Delay Type, Minutes]。
// 每行对应一个(月份, 原因)组合，分钟数为该月该原因的合计；
// 月份按数值升序排列，每个月份内原因保持传入顺序。月份缺失的行不参与汇总。
func MeltDelays(df dataframe.DataFrame, monthCol string, causes []string) (dataframe.DataFrame, error) {
	if monthCol == "" {
		monthCol = "month"
	}
	if len(causes) == 0 {
		causes = DefaultDelayCauses()
	}

	if df.Nrow() == 0 {
		return emptyMelt(monthCol), nil
	}

	if missing := utils.MissingColumns(df, append([]string{monthCol}, causes...)); len(missing) > 0 {
		return dataframe.DataFrame{}, &MissingColumnError{Columns: missing}
	}

	clean := df.Filter(dataframe.F{
		Colname:    monthCol,
		Comparator: series.CompFunc,
		Comparando: notMissing,
	})
	if clean.Nrow() == 0 {
		return emptyMelt(monthCol), nil
	}

	groups := groupRows(clean, monthCol)
	sort.SliceStable(groups, func(a, b int) bool {
		return lessMonth(groups[a].keys[0], groups[b].keys[0])
	})

	colSeries := make(map[string]series.Series, len(causes))
	for _, c := range causes {
		colSeries[c] = clean.Col(c)
	}

	total := len(groups) * len(causes)
	months := make([]string, 0, total)
	kinds := make([]string, 0, total)
	minutes := make([]float64, 0, total)
	for _, g := range groups {
		for _, c := range causes {
			months = append(months, g.keys[0])
			kinds = append(kinds, c)
			minutes = append(minutes, sumRows(colSeries[c], g.rows))
		}
	}

	return dataframe.New(
		series.New(months, series.String, monthCol),
		series.New(kinds, series.String, DelayTypeCol),
		series.New(minutes, series.Float, MinutesCol),
	), nil
}

// lessMonth 月份比较：可解析为数字时按数值比较，否则按字符串比较
func lessMonth(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}

func emptyMelt(monthCol string) dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{}, series.String, monthCol),
		series.New([]string{}, series.String, DelayTypeCol),
		series.New([]float64{}, series.Float, MinutesCol),
	)
}
