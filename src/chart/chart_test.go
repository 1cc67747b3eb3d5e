package chart

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DelayInsight/src/config"
	"DelayInsight/src/processor"
)

func testStyle() config.ChartStyle {
	return (&config.DataConfig{}).Style()
}

// renderToString 渲染图表并返回HTML文本
func renderToString(t *testing.T, r Renderable) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))
	return buf.String()
}

func rankedFixture() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"DL", "AA"}, series.String, "carrier"),
		series.New([]string{"Delta Air Lines", "American Airlines"}, series.String, "carrier_name"),
		series.New([]float64{2000, 1500}, series.Float, "arr_flights"),
		series.New([]float64{365, 305}, series.Float, "total_delay"),
	)
}

func rankedChannels() Channels {
	return Channels{
		X:     "carrier",
		Y:     "total_delay",
		Y2:    "arr_flights",
		Hover: []string{"carrier_name", "carrier"},
	}
}

func TestNewDelayCombo(t *testing.T) {
	t.Run("柱线叠加", func(t *testing.T) {
		title := ComboTitle(10, "Airline", "arr_flights")
		combo, err := NewDelayCombo(rankedFixture(), rankedChannels(), testStyle(), title)
		require.NoError(t, err)

		html := renderToString(t, combo)
		assert.Contains(t, html, "Top 10 Airline — Total Delay vs Arr Flights")
		assert.Contains(t, html, "Total Delay")
		assert.Contains(t, html, "Arr Flights") // 折线系列名
		assert.Contains(t, html, "Delta Air Lines (DL)")
		assert.Contains(t, html, "365")
		assert.Contains(t, html, "2000")
	})

	t.Run("量值列不存在时只画柱", func(t *testing.T) {
		ranked := rankedFixture().Drop("arr_flights")
		combo, err := NewDelayCombo(ranked, rankedChannels(), testStyle(), "t")
		require.NoError(t, err)

		html := renderToString(t, combo)
		assert.Contains(t, html, "Total Delay")
		assert.NotContains(t, html, "Arr Flights")
	})

	t.Run("装配不修改入参表", func(t *testing.T) {
		ranked := rankedFixture()
		before := ranked.Records()

		_, err := NewDelayCombo(ranked, rankedChannels(), testStyle(), "t")
		require.NoError(t, err)
		assert.Equal(t, before, ranked.Records())
	})

	t.Run("通道列缺失时报错", func(t *testing.T) {
		_, err := NewDelayCombo(rankedFixture().Drop("total_delay"), rankedChannels(), testStyle(), "t")
		require.Error(t, err)

		var missingErr *processor.MissingColumnError
		require.True(t, errors.As(err, &missingErr))
		assert.Equal(t, []string{"total_delay"}, missingErr.Columns)
	})
}

func geoFixture() dataframe.DataFrame {
	return dataframe.LoadRecords([][]string{
		{"airport", "avg_delay_cause", "longitude", "latitude"},
		{"JFK", "72", "-73.7781", "40.6413"},
		{"LGA", "21", "-73.8740", "40.7769"},
		{"ORD", "33", "NA", "NA"},
	})
}

func geoChannels() Channels {
	return Channels{
		X:     "longitude",
		Y:     "latitude",
		Color: "avg_delay_cause",
		Size:  "avg_delay_cause",
		Hover: []string{"airport"},
	}
}

func TestGeoCharts(t *testing.T) {
	t.Run("热力层", func(t *testing.T) {
		heat, err := NewGeoHeatmap(geoFixture(), geoChannels(), testStyle(), "Average Delay by Airport")
		require.NoError(t, err)

		html := renderToString(t, heat)
		assert.Contains(t, html, "heatmap")
		assert.Contains(t, html, "world")
		assert.Contains(t, html, "JFK")
		assert.Contains(t, html, "Average Delay by Airport")
	})

	t.Run("涟漪散点层", func(t *testing.T) {
		points, err := NewGeoPoints(geoFixture(), geoChannels(), testStyle(), "Average Delay by Airport")
		require.NoError(t, err)

		html := renderToString(t, points)
		assert.Contains(t, html, "effectScatter")
		assert.Contains(t, html, "LGA")
	})

	t.Run("没有坐标的场站被跳过", func(t *testing.T) {
		points, err := NewGeoPoints(geoFixture(), geoChannels(), testStyle(), "t")
		require.NoError(t, err)

		html := renderToString(t, points)
		assert.NotContains(t, html, "ORD")
	})

	t.Run("坐标列缺失时报错", func(t *testing.T) {
		_, err := NewGeoHeatmap(geoFixture().Drop("latitude"), geoChannels(), testStyle(), "t")
		require.Error(t, err)

		var missingErr *processor.MissingColumnError
		require.True(t, errors.As(err, &missingErr))
		assert.Equal(t, []string{"latitude"}, missingErr.Columns)
	})
}

func meltedFixture() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"6", "6", "7", "7"}, series.String, "month"),
		series.New([]string{"carrier_delay", "weather_delay", "carrier_delay", "weather_delay"},
			series.String, "Delay Type"),
		series.New([]float64{240, 30, 160, 45}, series.Float, "Minutes"),
	)
}

func meltedChannels() Channels {
	return Channels{X: "month", Y: "Minutes", Color: "Delay Type"}
}

func TestNewDelayBreakdown(t *testing.T) {
	t.Run("按原因分组的柱状图", func(t *testing.T) {
		breakdown, err := NewDelayBreakdown(meltedFixture(), meltedChannels(), testStyle(), "Delay Breakdown")
		require.NoError(t, err)

		html := renderToString(t, breakdown)
		assert.Contains(t, html, "Carrier Delay")
		assert.Contains(t, html, "Weather Delay")
		assert.Contains(t, html, "240")
		assert.NotContains(t, html, "No delay data available")
	})

	t.Run("空表返回占位图", func(t *testing.T) {
		empty := dataframe.New(
			series.New([]string{}, series.String, "month"),
			series.New([]string{}, series.String, "Delay Type"),
			series.New([]float64{}, series.Float, "Minutes"),
		)
		breakdown, err := NewDelayBreakdown(empty, meltedChannels(), testStyle(), "t")
		require.NoError(t, err)

		html := renderToString(t, breakdown)
		assert.Contains(t, html, "No delay data available")
		assert.Contains(t, html, "for this airline / airport")
	})

	t.Run("分钟数全为零返回占位图", func(t *testing.T) {
		zero := dataframe.New(
			series.New([]string{"6", "7"}, series.String, "month"),
			series.New([]string{"carrier_delay", "carrier_delay"}, series.String, "Delay Type"),
			series.New([]float64{0, 0}, series.Float, "Minutes"),
		)
		breakdown, err := NewDelayBreakdown(zero, meltedChannels(), testStyle(), "t")
		require.NoError(t, err)
		assert.Contains(t, renderToString(t, breakdown), "No delay data available")
	})

	t.Run("分钟数列缺失时报错", func(t *testing.T) {
		_, err := NewDelayBreakdown(meltedFixture().Drop("Minutes"), meltedChannels(), testStyle(), "t")
		require.Error(t, err)

		var missingErr *processor.MissingColumnError
		require.True(t, errors.As(err, &missingErr))
		assert.Equal(t, []string{"Minutes"}, missingErr.Columns)
	})
}

func TestSummaryCards(t *testing.T) {
	cards := SummaryCards(processor.Summary{
		Airport:   "John F Kennedy International",
		Year:      2023,
		Month:     6,
		Cancelled: 20,
		Diverted:  4,
	})

	html := renderToString(t, cards)
	assert.Contains(t, html, "Flight Summary for <b>John F Kennedy International</b>")
	assert.Contains(t, html, "Cancelled Flights: <b>20</b>")
	assert.Contains(t, html, "Diverted Flights: <b>4</b>")
}

func TestNewPage(t *testing.T) {
	combo, err := NewDelayCombo(rankedFixture(), rankedChannels(), testStyle(), "combo")
	require.NoError(t, err)
	points, err := NewGeoPoints(geoFixture(), geoChannels(), testStyle(), "geo")
	require.NoError(t, err)

	page := NewPage(combo, points, SummaryCards(processor.Summary{}))
	html := renderToString(t, page)
	assert.Contains(t, html, "Delta Air Lines (DL)")
	assert.Contains(t, html, "JFK")
}
