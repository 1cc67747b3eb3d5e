package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DelayInsight/src/config"
)

func periodFixture() dataframe.DataFrame {
	return dataframe.LoadRecords([][]string{
		{"year", "month", "airport_name"},
		{"2022", "12", "LaGuardia"},
		{"2023", "6", "John F Kennedy International"},
		{"2023", "7", "Chicago O'Hare International"},
		{"2023", "NA", "Hartsfield-Jackson Atlanta International"},
	})
}

func TestLatestPeriod(t *testing.T) {
	t.Run("取最新年月", func(t *testing.T) {
		year, month := latestPeriod(periodFixture(), "year", "month")
		assert.Equal(t, 2023, year)
		assert.Equal(t, 7, month)
	})

	t.Run("缺失行不参与比较", func(t *testing.T) {
		df := dataframe.LoadRecords([][]string{
			{"year", "month"},
			{"2024", "NA"},
			{"2023", "6"},
		})
		year, month := latestPeriod(df, "year", "month")
		assert.Equal(t, 2023, year)
		assert.Equal(t, 6, month)
	})

	t.Run("列不存在时返回零值", func(t *testing.T) {
		year, month := latestPeriod(periodFixture(), "no_such", "month")
		assert.Equal(t, 0, year)
		assert.Equal(t, 0, month)
	})
}

func TestFirstAirport(t *testing.T) {
	t.Run("字典序第一个", func(t *testing.T) {
		assert.Equal(t, "Chicago O'Hare International",
			firstAirport(periodFixture(), "airport_name"))
	})

	t.Run("列不存在时为空", func(t *testing.T) {
		assert.Equal(t, "", firstAirport(periodFixture(), "no_such"))
	})
}

func TestInitialDataFile(t *testing.T) {
	t.Run("优先使用配置的数据文件", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "given.csv")
		require.NoError(t, os.WriteFile(path, []byte("year\n2023\n"), 0644))

		cfg := &config.Config{DataFile: path}
		got, err := initialDataFile(cfg, dir)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("配置的文件不可用时报错", func(t *testing.T) {
		cfg := &config.Config{DataFile: filepath.Join(t.TempDir(), "missing.csv")}
		_, err := initialDataFile(cfg, t.TempDir())
		require.Error(t, err)
	})

	t.Run("未配置时扫描目录取最新", func(t *testing.T) {
		dir := t.TempDir()
		older := filepath.Join(dir, "delay_2023_05.csv")
		newer := filepath.Join(dir, "delay_2023_06.csv")
		require.NoError(t, os.WriteFile(older, []byte("a"), 0644))
		require.NoError(t, os.WriteFile(newer, []byte("b"), 0644))
		past := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(older, past, past))

		cfg := &config.Config{FileKeyword: "delay"}
		got, err := initialDataFile(cfg, dir)
		require.NoError(t, err)
		assert.Equal(t, newer, got)
	})
}
