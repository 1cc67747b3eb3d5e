// breakdown.go
package chart

import (
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-gota/gota/dataframe"

	"DelayInsight/src/config"
	"DelayInsight/src/utils"
)

// NewDelayBreakdown 月度延误原因分组柱状图。
//
// 输入为长表：X为月份列，Y为分钟数列，Color为原因类型列，
// 每种原因一个系列。表为空或分钟数合计为0时返回无数据占位图而不是错误。
func NewDelayBreakdown(melted dataframe.DataFrame, ch Channels, style config.ChartStyle, title string) (Renderable, error) {
	if melted.Nrow() == 0 {
		return noDataPlaceholder(), nil
	}
	if err := requireColumns(melted, ch.X, ch.Y, ch.Color); err != nil {
		return nil, err
	}

	minutes := melted.Col(ch.Y).Float()
	var total float64
	for _, v := range minutes {
		if !math.IsNaN(v) {
			total += v
		}
	}
	if total == 0 {
		return noDataPlaceholder(), nil
	}

	months := uniqueOrdered(melted.Col(ch.X).Records())
	kinds := uniqueOrdered(melted.Col(ch.Color).Records())

	// (月份,原因) -> 分钟数
	monthRecs := melted.Col(ch.X).Records()
	kindRecs := melted.Col(ch.Color).Records()
	lookup := make(map[string]float64, melted.Nrow())
	for i := range minutes {
		lookup[monthRecs[i]+"\x1f"+kindRecs[i]] = minutes[i]
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  style.ComboWidth,
			Height: style.ComboHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Right: "5%", Top: "5%"}),
	)
	bar.SetXAxis(months)
	for _, kind := range kinds {
		data := make([]opts.BarData, len(months))
		for i, m := range months {
			data[i] = opts.BarData{Value: lookup[m+"\x1f"+kind]}
		}
		bar.AddSeries(utils.HumanizeColumn(kind), data)
	}
	return bar, nil
}

// noDataPlaceholder 原型在空数据时展示的占位文本图
func noDataPlaceholder() Renderable {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "800px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "No delay data available",
			Subtitle: "for this airline / airport",
			Left:     "center",
			Top:      "middle",
		}),
	)
	return bar
}
