// combo.go
package chart

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-gota/gota/dataframe"

	"DelayInsight/src/config"
	"DelayInsight/src/utils"
)

// NewDelayCombo 排行榜组合图：总延误柱状图叠加量值折线。
//
// 通道约定：X为实体代码列，Y为总延误列，Y2为折线量值列(排行结果中
// 不存在时只画柱)，Hover的前两列拼为条目名称进入悬浮提示。
func NewDelayCombo(ranked dataframe.DataFrame, ch Channels, style config.ChartStyle, title string) (Renderable, error) {
	if err := requireColumns(ranked, ch.X, ch.Y); err != nil {
		return nil, err
	}

	xLabels := ranked.Col(ch.X).Records()
	names := hoverLabels(ranked, ch)

	yVals := ranked.Col(ch.Y).Float()
	barData := make([]opts.BarData, len(yVals))
	for i, v := range yVals {
		barData[i] = opts.BarData{Name: names[i], Value: v}
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
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Show: true, Rotate: float64(style.XRotate), Interval: "0"},
		}),
	)
	bar.SetXAxis(xLabels).AddSeries("Total Delay", barData,
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:   style.BarColor,
			Opacity: style.BarOpacity,
		}),
	)

	if ch.Y2 != "" && utils.HasColumn(ranked, ch.Y2) {
		y2Vals := ranked.Col(ch.Y2).Float()
		lineData := make([]opts.LineData, len(y2Vals))
		for i, v := range y2Vals {
			lineData[i] = opts.LineData{Name: names[i], Value: v, Symbol: "circle", SymbolSize: 8}
		}

		line := charts.NewLine()
		line.SetXAxis(xLabels).AddSeries(utils.HumanizeColumn(ch.Y2), lineData,
			charts.WithLineStyleOpts(opts.LineStyle{
				Color: style.LineColor,
				Width: style.LineWidth,
			}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: true}),
		)
		bar.Overlap(line)
	}

	return bar, nil
}
