package processor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankByDelay(t *testing.T) {
	t.Run("按总延误降序排列", func(t *testing.T) {
		got, err := RankByDelay(sampleDelays(), RankOptions{})
		require.NoError(t, err)

		assert.Equal(t, []string{"DL", "AA", "UA"}, got.Col("carrier").Records())
		assert.Equal(t, []string{"Delta Air Lines", "American Airlines", "United Air Lines"},
			got.Col("carrier_name").Records())
		assert.Equal(t, []float64{365, 305, 165}, got.Col(TotalDelayCol).Float())
	})

	t.Run("所有数值列参与分组求和", func(t *testing.T) {
		got, err := RankByDelay(sampleDelays(), RankOptions{})
		require.NoError(t, err)

		assert.Equal(t, []string{
			"carrier", "carrier_name",
			"year", "month", "arr_cancelled", "arr_diverted",
			"carrier_delay", "weather_delay", "nas_delay", "security_delay", "late_aircraft_delay",
			TotalDelayCol,
		}, got.Names())

		// DL在首位：取消10次、改航2次；NA的天气延误按0计
		assert.Equal(t, []float64{10, 16, 9}, got.Col("arr_cancelled").Float())
		assert.Equal(t, []float64{25, 20, 30}, got.Col("weather_delay").Float())
	})

	t.Run("总延误相等时保持首次出现顺序", func(t *testing.T) {
		df := dataframe.LoadRecords([][]string{
			{"carrier", "carrier_name", "carrier_delay"},
			{"CC", "Charlie Air", "50"},
			{"BB", "Bravo Air", "50"},
			{"AA", "Alpha Air", "50"},
		})
		got, err := RankByDelay(df, RankOptions{DelayCauseCols: []string{"carrier_delay"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"CC", "BB", "AA"}, got.Col("carrier").Records())
	})

	t.Run("TopN截断排行长度", func(t *testing.T) {
		got, err := RankByDelay(sampleDelays(), RankOptions{TopN: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, got.Nrow())
		assert.Equal(t, []string{"DL", "AA"}, got.Col("carrier").Records())
	})

	t.Run("默认取前十名", func(t *testing.T) {
		records := [][]string{{"carrier", "carrier_name", "carrier_delay"}}
		for i := 0; i < 12; i++ {
			code := fmt.Sprintf("C%02d", i)
			records = append(records, []string{code, "Carrier " + code, fmt.Sprintf("%d", (12-i)*10)})
		}
		got, err := RankByDelay(dataframe.LoadRecords(records), RankOptions{DelayCauseCols: []string{"carrier_delay"}})
		require.NoError(t, err)
		assert.Equal(t, DefaultTopN, got.Nrow())
		assert.Equal(t, "C00", got.Col("carrier").Elem(0).String())
	})

	t.Run("已有的total_delay列被重算", func(t *testing.T) {
		df := sampleDelays().Mutate(
			series.New([]int{9999, 9999, 9999, 9999, 9999}, series.Int, TotalDelayCol),
		)
		got, err := RankByDelay(df, RankOptions{})
		require.NoError(t, err)

		assert.Equal(t, []float64{365, 305, 165}, got.Col(TotalDelayCol).Float())

		count := 0
		for _, name := range got.Names() {
			if name == TotalDelayCol {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("空数据返回带结构的空结果", func(t *testing.T) {
		for _, df := range []dataframe.DataFrame{emptySubset(), {}} {
			got, err := RankByDelay(df, RankOptions{})
			require.NoError(t, err)
			assert.Equal(t, 0, got.Nrow())
			assert.Equal(t, []string{
				"carrier", "carrier_name",
				"carrier_delay", "weather_delay", "nas_delay", "security_delay", "late_aircraft_delay",
				TotalDelayCol,
			}, got.Names())
		}
	})

	t.Run("实体列缺失时报错", func(t *testing.T) {
		df := sampleDelays().Drop("carrier_name")
		_, err := RankByDelay(df, RankOptions{})
		require.Error(t, err)

		var missingErr *MissingColumnError
		require.True(t, errors.As(err, &missingErr))
		assert.Equal(t, []string{"carrier_name"}, missingErr.Columns)
	})

	t.Run("分组键缺失的行不参与排行", func(t *testing.T) {
		df := dataframe.LoadRecords([][]string{
			{"carrier", "carrier_name", "carrier_delay"},
			{"AA", "Alpha Air", "10"},
			{"NA", "Ghost Air", "99"},
			{"AA", "Alpha Air", "5"},
		})
		got, err := RankByDelay(df, RankOptions{DelayCauseCols: []string{"carrier_delay"}})
		require.NoError(t, err)
		assert.Equal(t, 1, got.Nrow())
		assert.Equal(t, []float64{15}, got.Col(TotalDelayCol).Float())
	})

	t.Run("量值列参与分组求和", func(t *testing.T) {
		df := dataframe.LoadRecords([][]string{
			{"carrier", "carrier_name", "arr_flights", "carrier_delay"},
			{"AA", "Alpha Air", "100", "10"},
			{"AA", "Alpha Air", "50", "5"},
		})
		got, err := RankByDelay(df, RankOptions{DelayCauseCols: []string{"carrier_delay"}})
		require.NoError(t, err)
		assert.Equal(t, []float64{150}, got.Col("arr_flights").Float())
		// 量值列不计入总延误
		assert.Equal(t, []float64{15}, got.Col(TotalDelayCol).Float())
	})

	t.Run("重复执行结果一致", func(t *testing.T) {
		first, err := RankByDelay(sampleDelays(), RankOptions{})
		require.NoError(t, err)
		second, err := RankByDelay(sampleDelays(), RankOptions{})
		require.NoError(t, err)
		assert.Equal(t, first.Records(), second.Records())
	})

	t.Run("入参不被修改", func(t *testing.T) {
		df := sampleDelays()
		before := df.Records()
		_, err := RankByDelay(df, RankOptions{})
		require.NoError(t, err)
		assert.Equal(t, before, df.Records())
	})
}
