package processor

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareGeo(t *testing.T) {
	t.Run("按场站汇总并连接坐标", func(t *testing.T) {
		got, err := PrepareGeo(sampleDelays(), sampleCoords(), GeoOptions{})
		require.NoError(t, err)

		assert.Equal(t, []string{
			"airport",
			"carrier_delay", "weather_delay", "nas_delay", "security_delay", "late_aircraft_delay",
			AvgDelayCol, "longitude", "latitude",
		}, got.Names())

		// 场站按首次出现顺序排列
		assert.Equal(t, []string{"JFK", "LGA", "ORD", "ATL"}, got.Col("airport").Records())
		assert.Equal(t, []float64{72, 21, 33, 41}, got.Col(AvgDelayCol).Float())
		assert.Equal(t, []float64{180, 60, 70, 90}, got.Col("carrier_delay").Float())

		// JFK取坐标表首行
		assert.InDelta(t, -73.7781, got.Col("longitude").Elem(0).Float(), 1e-9)
		assert.InDelta(t, 40.6413, got.Col("latitude").Elem(0).Float(), 1e-9)
	})

	t.Run("坐标表重复代码不放大行数", func(t *testing.T) {
		got, err := PrepareGeo(sampleDelays(), sampleCoords(), GeoOptions{})
		require.NoError(t, err)
		assert.Equal(t, 4, got.Nrow())
	})

	t.Run("无坐标的场站经纬度为NaN", func(t *testing.T) {
		got, err := PrepareGeo(sampleDelays(), sampleCoords(), GeoOptions{})
		require.NoError(t, err)

		lng := got.Col("longitude")
		lat := got.Col("latitude")
		for _, i := range []int{2, 3} { // ORD、ATL不在坐标表中
			assert.True(t, math.IsNaN(lng.Elem(i).Float()))
			assert.True(t, math.IsNaN(lat.Elem(i).Float()))
		}
	})

	t.Run("场站缺失的行不参与汇总", func(t *testing.T) {
		df := dataframe.LoadRecords([][]string{
			{"airport", "carrier_delay", "weather_delay", "nas_delay", "security_delay", "late_aircraft_delay"},
			{"JFK", "10", "0", "0", "0", "0"},
			{"NA", "99", "0", "0", "0", "0"},
		})
		got, err := PrepareGeo(df, sampleCoords(), GeoOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, got.Nrow())
		assert.Equal(t, []float64{10}, got.Col("carrier_delay").Float())
	})

	t.Run("空数据返回带结构的空结果", func(t *testing.T) {
		got, err := PrepareGeo(emptySubset(), sampleCoords(), GeoOptions{})
		require.NoError(t, err)
		assert.Equal(t, 0, got.Nrow())
		assert.Equal(t, []string{
			"airport",
			"carrier_delay", "weather_delay", "nas_delay", "security_delay", "late_aircraft_delay",
			AvgDelayCol, "longitude", "latitude",
		}, got.Names())
	})

	t.Run("延误数据缺列时报错", func(t *testing.T) {
		df := sampleDelays().Drop("airport")
		_, err := PrepareGeo(df, sampleCoords(), GeoOptions{})
		require.Error(t, err)

		var missingErr *MissingColumnError
		require.True(t, errors.As(err, &missingErr))
		assert.Equal(t, []string{"airport"}, missingErr.Columns)
	})

	t.Run("坐标表缺列时报错", func(t *testing.T) {
		coords := sampleCoords().Drop("latitude")
		_, err := PrepareGeo(sampleDelays(), coords, GeoOptions{})
		require.Error(t, err)

		var missingErr *MissingColumnError
		require.True(t, errors.As(err, &missingErr))
		assert.Equal(t, []string{"latitude"}, missingErr.Columns)
	})
}
