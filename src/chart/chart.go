// chart.go
package chart

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"

	"DelayInsight/src/processor"
	"DelayInsight/src/utils"
)

// Renderable 装配完成的图表对象，调用方只依赖渲染能力
type Renderable interface {
	Render(w io.Writer) error
}

// Channels 可视化通道到列名的映射；装配器按通道取列，不关心数据来源
type Channels struct {
	X     string   // 横轴列(地理图为经度列)
	Y     string   // 纵轴列(地理图为纬度列)
	Y2    string   // 叠加折线的纵轴列，可为空
	Color string   // 颜色通道列
	Size  string   // 大小通道列
	Hover []string // 悬浮提示展示的列
}

// ComboTitle 排行组合图标题，如 "Top 10 Airline — Total Delay vs Arr Flights"
func ComboTitle(topN int, entity, factorCol string) string {
	return fmt.Sprintf("Top %d %s — Total Delay vs %s", topN, entity, utils.HumanizeColumn(factorCol))
}

// requireColumns 校验通道绑定的列都存在，空列名跳过
func requireColumns(df dataframe.DataFrame, cols ...string) error {
	seen := make(map[string]bool, len(cols))
	var want []string
	for _, c := range cols {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		want = append(want, c)
	}
	if missing := utils.MissingColumns(df, want); len(missing) > 0 {
		return &processor.MissingColumnError{Columns: missing}
	}
	return nil
}

// hoverLabels 组装悬浮提示名称：两个悬浮列时拼为 "名称 (代码)"
func hoverLabels(df dataframe.DataFrame, ch Channels) []string {
	switch {
	case len(ch.Hover) >= 2 && utils.HasColumn(df, ch.Hover[0]) && utils.HasColumn(df, ch.Hover[1]):
		names := df.Col(ch.Hover[0]).Records()
		codes := df.Col(ch.Hover[1]).Records()
		out := make([]string, len(names))
		for i := range names {
			out[i] = fmt.Sprintf("%s (%s)", names[i], codes[i])
		}
		return out
	case len(ch.Hover) == 1 && utils.HasColumn(df, ch.Hover[0]):
		return df.Col(ch.Hover[0]).Records()
	default:
		return df.Col(ch.X).Records()
	}
}

// uniqueOrdered 去重并保持首次出现顺序
func uniqueOrdered(vals []string) []string {
	seen := make(map[string]bool, len(vals))
	var out []string
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
