// store.go
package dataset

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"DelayInsight/src/config"
	"DelayInsight/src/processor"
	"DelayInsight/src/storage"
	"DelayInsight/src/utils"
)

// Store 数据快照仓库：延误数据与机场坐标各一张表。
// 刷新校验不通过时保留旧快照，分析端读到的始终是最近一次合格的数据。
type Store struct {
	cfg  *config.Config
	dcfg *config.DataConfig

	data   *Table
	coords *Table
}

func NewStore(cfg *config.Config, dcfg *config.DataConfig) *Store {
	return &Store{
		cfg:    cfg,
		dcfg:   dcfg,
		data:   NewTable(),
		coords: NewTable(),
	}
}

// Data 延误数据快照
func (s *Store) Data() dataframe.DataFrame {
	return s.data.Snapshot()
}

// Coords 机场坐标快照
func (s *Store) Coords() dataframe.DataFrame {
	return s.coords.Snapshot()
}

// RefreshData 从文件重新加载延误数据。
// 第一步：按扩展名加载文件；
// 第二步：应用配置的行筛选表达式；
// 第三步：校验必需列，不通过时保留旧数据并返回错误，
// 存在缺失值的列以警告记入日志但不阻止刷新。
func (s *Store) RefreshData(path string, logger *storage.Logger) error {
	df, err := LoadFile(path, s.cfg.SheetName, s.cfg.HeaderRow)
	if err != nil {
		return err
	}

	if expr := s.dcfg.FilterExpr; expr != "" {
		df, err = FilterRows(df, expr)
		if err != nil {
			return err
		}
	}

	// 缺列整批拒绝；必需列里的缺失值只告警，不阻止刷新
	report := processor.Validate(df, s.dcfg.RequiredColumns)
	if len(report.MissingColumns) > 0 {
		return fmt.Errorf("数据校验失败，保留旧数据: 缺少必需列 %s",
			strings.Join(report.MissingColumns, ", "))
	}
	for _, col := range s.dcfg.RequiredColumns {
		if cnt := report.MissingValues[col]; cnt > 0 {
			logger.Warning(fmt.Sprintf("列 %s 存在 %d 个缺失值", col, cnt))
		}
	}

	s.data.Set(df)
	logger.Info(fmt.Sprintf("延误数据已刷新: %s (%d行)", path, df.Nrow()))
	return nil
}

// RefreshCoords 重新加载机场坐标表，缺少连接或经纬度列时保留旧数据
func (s *Store) RefreshCoords(path string, logger *storage.Logger) error {
	df, err := LoadFile(path, "", 0)
	if err != nil {
		return err
	}

	join, lng, lat := s.dcfg.Geo.CoordsJoinCol, s.dcfg.Geo.LongitudeCol, s.dcfg.Geo.LatitudeCol
	if join == "" {
		join = "IATA Code"
	}
	if lng == "" {
		lng = "longitude"
	}
	if lat == "" {
		lat = "latitude"
	}
	if missing := utils.MissingColumns(df, []string{join, lng, lat}); len(missing) > 0 {
		return fmt.Errorf("坐标表校验失败，保留旧数据: 缺少列 %s", strings.Join(missing, ", "))
	}

	s.coords.Set(df)
	logger.Info(fmt.Sprintf("坐标数据已刷新: %s (%d行)", path, df.Nrow()))
	return nil
}
