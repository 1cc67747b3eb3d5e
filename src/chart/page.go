// page.go
package chart

import (
	"github.com/go-echarts/go-echarts/v2/components"
)

// NewPage 把多张图表拼成一页，便于整页落盘或浏览。
// 非图表类的Renderable(如汇总卡片)由面板模板单独嵌入，这里跳过。
func NewPage(items ...Renderable) Renderable {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	for _, it := range items {
		if c, ok := it.(components.Charter); ok {
			page.AddCharts(c)
		}
	}
	return page
}
