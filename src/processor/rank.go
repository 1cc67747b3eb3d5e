package processor

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"DelayInsight/src/utils"
)

const (
	// TotalDelayCol 排行结果中的总延误列名
	TotalDelayCol = "total_delay"
	// DefaultTopN 排行榜默认条目数
	DefaultTopN = 10
)

// DefaultDelayCauses 返回BTS准点率数据的五类延误原因列
func DefaultDelayCauses() []string {
	return []string{
		"carrier_delay",
		"weather_delay",
		"nas_delay",
		"security_delay",
		"late_aircraft_delay",
	}
}

// RankOptions 排行操作的列绑定
type RankOptions struct {
	EntityCodeCol    string   // 实体代码列，如carrier
	EntityNameCol    string   // 实体名称列，如carrier_name
	DisplayFactorCol string   // 图表折线展示的量值列，如arr_flights；数据中不存在时跳过
	DelayCauseCols   []string // 参与总延误计算的原因列
	TopN             int      // 排行条目数，<=0时取DefaultTopN
}

func (o RankOptions) withDefaults() RankOptions {
	if o.EntityCodeCol == "" {
		o.EntityCodeCol = "carrier"
	}
	if o.EntityNameCol == "" {
		o.EntityNameCol = "carrier_name"
	}
	if o.DisplayFactorCol == "" {
		o.DisplayFactorCol = "arr_flights"
	}
	if len(o.DelayCauseCols) == 0 {
		o.DelayCauseCols = DefaultDelayCauses()
	}
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	return o
}

// RankByDelay 按实体对延误数据分组汇总，按总延误降序取前N名。
// 结果为新DataFrame：实体两列、各数值列的分组和、以及重新计算的total_delay列；
// 入参不会被修改。总延误相等时保持实体在输入中的首次出现顺序。
// 实体列或原因列不存在时返回*MissingColumnError；空数据返回带结构的空结果。
func RankByDelay(df dataframe.DataFrame, opt RankOptions) (dataframe.DataFrame, error) {
	opt = opt.withDefaults()

	if df.Nrow() == 0 {
		return emptyRanking(opt), nil
	}

	required := append([]string{opt.EntityCodeCol, opt.EntityNameCol}, opt.DelayCauseCols...)
	if missing := utils.MissingColumns(df, required); len(missing) > 0 {
		return dataframe.DataFrame{}, &MissingColumnError{Columns: missing}
	}

	// 分组键缺失的行不参与排行
	clean := df.Filter(dataframe.F{
		Colname:    opt.EntityCodeCol,
		Comparator: series.CompFunc,
		Comparando: notMissing,
	}).Filter(dataframe.F{
		Colname:    opt.EntityNameCol,
		Comparator: series.CompFunc,
		Comparando: notMissing,
	})
	if clean.Nrow() == 0 {
		return emptyRanking(opt), nil
	}

	groups := groupRows(clean, opt.EntityCodeCol, opt.EntityNameCol)

	// 所有数值列都参与分组求和；原因列即使被推断为字符串类型也要参与
	numCols := numericColumns(clean, opt.EntityCodeCol, opt.EntityNameCol, TotalDelayCol)
	for _, c := range opt.DelayCauseCols {
		if !utils.Contains(numCols, c) {
			numCols = append(numCols, c)
		}
	}
	if c := opt.DisplayFactorCol; utils.HasColumn(clean, c) && !utils.Contains(numCols, c) {
		numCols = append(numCols, c)
	}

	colSeries := make(map[string]series.Series, len(numCols))
	for _, c := range numCols {
		colSeries[c] = clean.Col(c)
	}

	n := len(groups)
	codes := make([]string, n)
	names := make([]string, n)
	totals := make([]float64, n)
	sums := make(map[string][]float64, len(numCols))
	for _, c := range numCols {
		sums[c] = make([]float64, n)
	}

	for gi, g := range groups {
		codes[gi] = g.keys[0]
		names[gi] = g.keys[1]
		for _, c := range numCols {
			sums[c][gi] = sumRows(colSeries[c], g.rows)
		}
		for _, c := range opt.DelayCauseCols {
			totals[gi] += sums[c][gi]
		}
	}

	// 按总延误降序，相等时保持首次出现顺序
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return totals[order[a]] > totals[order[b]]
	})
	if len(order) > opt.TopN {
		order = order[:opt.TopN]
	}

	outCodes := make([]string, len(order))
	outNames := make([]string, len(order))
	outTotals := make([]float64, len(order))
	for i, gi := range order {
		outCodes[i] = codes[gi]
		outNames[i] = names[gi]
		outTotals[i] = totals[gi]
	}

	out := []series.Series{
		series.New(outCodes, series.String, opt.EntityCodeCol),
		series.New(outNames, series.String, opt.EntityNameCol),
	}
	for _, c := range numCols {
		vals := make([]float64, len(order))
		for i, gi := range order {
			vals[i] = sums[c][gi]
		}
		out = append(out, series.New(vals, series.Float, c))
	}
	out = append(out, series.New(outTotals, series.Float, TotalDelayCol))

	return dataframe.New(out...), nil
}

// emptyRanking 返回与排行结果同构的空DataFrame
func emptyRanking(opt RankOptions) dataframe.DataFrame {
	ss := []series.Series{
		series.New([]string{}, series.String, opt.EntityCodeCol),
		series.New([]string{}, series.String, opt.EntityNameCol),
	}
	for _, c := range opt.DelayCauseCols {
		ss = append(ss, series.New([]float64{}, series.Float, c))
	}
	ss = append(ss, series.New([]float64{}, series.Float, TotalDelayCol))
	return dataframe.New(ss...)
}
