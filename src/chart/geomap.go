// geomap.go
package chart

import (
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/go-gota/gota/dataframe"

	"DelayInsight/src/config"
)

// NewGeoHeatmap 地图热力层：各场站的平均延误按坐标铺成热力图。
// 通道约定：X为经度列，Y为纬度列，Color为量值列，Hover首列为场站名。
func NewGeoHeatmap(geo dataframe.DataFrame, ch Channels, style config.ChartStyle, title string) (Renderable, error) {
	data, min, max, err := geoSeriesData(geo, ch)
	if err != nil {
		return nil, err
	}

	chart := newGeoBase(style, title, min, max, 0)
	chart.AddSeries("Average Delay", types.ChartHeatMap, data)
	return chart, nil
}

// NewGeoPoints 地图涟漪散点层，对应原型里的机场散点。
// 量值到点大小的映射走视觉映射的symbolSize(上限为尺寸系数)，涟漪倍率取尺寸偏移量。
func NewGeoPoints(geo dataframe.DataFrame, ch Channels, style config.ChartStyle, title string) (Renderable, error) {
	data, min, max, err := geoSeriesData(geo, ch)
	if err != nil {
		return nil, err
	}

	chart := newGeoBase(style, title, min, max, float32(style.SizeFactor))
	chart.AddSeries("Average Delay", types.ChartEffectScatter, data,
		charts.WithRippleEffectOpts(opts.RippleEffect{
			Period:    4,
			Scale:     float32(style.SizeOffset),
			BrushType: "stroke",
		}),
		charts.WithItemStyleOpts(opts.ItemStyle{Opacity: style.PointOpacity}),
	)
	return chart, nil
}

// geoSeriesData 把地理表转成[经度,纬度,量值]三元组，跳过没有坐标的场站，
// 同时返回量值范围供视觉映射使用
func geoSeriesData(geo dataframe.DataFrame, ch Channels) ([]opts.GeoData, float64, float64, error) {
	nameCol := ch.X
	if len(ch.Hover) > 0 {
		nameCol = ch.Hover[0]
	}
	if err := requireColumns(geo, ch.X, ch.Y, ch.Color, nameCol); err != nil {
		return nil, 0, 0, err
	}

	lngs := geo.Col(ch.X).Float()
	lats := geo.Col(ch.Y).Float()
	vals := geo.Col(ch.Color).Float()
	names := geo.Col(nameCol).Records()

	var data []opts.GeoData
	min, max := math.Inf(1), math.Inf(-1)
	for i := range vals {
		if math.IsNaN(lngs[i]) || math.IsNaN(lats[i]) || math.IsNaN(vals[i]) {
			continue
		}
		if vals[i] < min {
			min = vals[i]
		}
		if vals[i] > max {
			max = vals[i]
		}
		data = append(data, opts.GeoData{
			Name:  names[i],
			Value: []interface{}{lngs[i], lats[i], vals[i]},
		})
	}
	if len(data) == 0 {
		min, max = 0, 0
	}
	return data, min, max, nil
}

func newGeoBase(style config.ChartStyle, title string, min, max float64, symbolSize float32) *charts.Geo {
	chart := charts.NewGeo()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  style.GeoWidth,
			Height: style.GeoHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithGeoComponentOpts(opts.GeoComponent{Map: "world"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Formatter: "{b}: {c}"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        float32(min),
			Max:        float32(max),
			Text:       []string{"Avg Delay (Minutes)", ""},
			InRange: &opts.VisualMapInRange{
				Color:      style.GeoColors,
				SymbolSize: symbolSize,
			},
		}),
	)
	return chart
}
