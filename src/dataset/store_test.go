package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DelayInsight/src/config"
	"DelayInsight/src/storage"
)

const storeCSV = `year,month,carrier,carrier_name,airport,carrier_delay
2023,6,AA,American Airlines,JFK,100
2023,6,DL,Delta Air Lines,JFK,80
2022,7,UA,United Air Lines,ORD,70
`

const coordsCSV = `IATA Code,longitude,latitude
JFK,-73.7781,40.6413
ORD,-87.9073,41.9742
`

func newTestStore(t *testing.T) (*Store, *storage.Logger, string) {
	t.Helper()
	dir := t.TempDir()

	logger, err := storage.NewLogger(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	cfg := &config.Config{}
	dcfg := &config.DataConfig{
		RequiredColumns: []string{"year", "month", "carrier", "carrier_delay"},
	}
	return NewStore(cfg, dcfg), logger, dir
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestStoreRefreshData(t *testing.T) {
	t.Run("合格数据被接受", func(t *testing.T) {
		store, logger, dir := newTestStore(t)
		path := writeFixture(t, dir, "delays.csv", storeCSV)

		require.NoError(t, store.RefreshData(path, logger))
		assert.Equal(t, 3, store.Data().Nrow())
	})

	t.Run("缺少必需列时保留旧数据", func(t *testing.T) {
		store, logger, dir := newTestStore(t)
		good := writeFixture(t, dir, "delays.csv", storeCSV)
		require.NoError(t, store.RefreshData(good, logger))

		bad := writeFixture(t, dir, "bad.csv", "year,month\n2023,6\n")
		err := store.RefreshData(bad, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "缺少必需列")
		assert.Equal(t, 3, store.Data().Nrow())
	})

	t.Run("应用配置的行筛选", func(t *testing.T) {
		store, logger, dir := newTestStore(t)
		store.dcfg.FilterExpr = "year == 2023"
		path := writeFixture(t, dir, "delays.csv", storeCSV)

		require.NoError(t, store.RefreshData(path, logger))
		assert.Equal(t, 2, store.Data().Nrow())
	})

	t.Run("文件不存在时报错", func(t *testing.T) {
		store, logger, dir := newTestStore(t)
		err := store.RefreshData(filepath.Join(dir, "no-such.csv"), logger)
		assert.Error(t, err)
	})
}

func TestStoreRefreshCoords(t *testing.T) {
	t.Run("合格坐标被接受", func(t *testing.T) {
		store, logger, dir := newTestStore(t)
		path := writeFixture(t, dir, "coords.csv", coordsCSV)

		require.NoError(t, store.RefreshCoords(path, logger))
		assert.Equal(t, 2, store.Coords().Nrow())
	})

	t.Run("缺少经纬度列时保留旧数据", func(t *testing.T) {
		store, logger, dir := newTestStore(t)
		good := writeFixture(t, dir, "coords.csv", coordsCSV)
		require.NoError(t, store.RefreshCoords(good, logger))

		bad := writeFixture(t, dir, "bad.csv", "IATA Code,longitude\nJFK,-73.7781\n")
		err := store.RefreshCoords(bad, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "latitude")
		assert.Equal(t, 2, store.Coords().Nrow())
	})
}
