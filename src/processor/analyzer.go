package processor

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"

	"DelayInsight/src/config"
)

// Analyzer 将数据配置中的列绑定应用到各项延误分析操作
type Analyzer struct {
	dcfg *config.DataConfig
}

func NewAnalyzer(dcfg *config.DataConfig) *Analyzer {
	return &Analyzer{dcfg: dcfg}
}

// Validate 按配置的必需列校验数据
func (a *Analyzer) Validate(df dataframe.DataFrame) ValidationReport {
	return Validate(df, a.dcfg.RequiredColumns)
}

// SummaryOptions 从数据配置组装汇总统计的列绑定，未配置的项填默认列名
func (a *Analyzer) SummaryOptions() SummaryOptions {
	return SummaryOptions{
		YearCol:      a.dcfg.GetSummaryCol("year"),
		MonthCol:     a.dcfg.GetSummaryCol("month"),
		AirportCol:   a.dcfg.GetSummaryCol("airport"),
		CancelledCol: a.dcfg.GetSummaryCol("cancelled"),
		DivertedCol:  a.dcfg.GetSummaryCol("diverted"),
	}.withDefaults()
}

func (a *Analyzer) Summarize(df dataframe.DataFrame, year int, airport string, month int) Summary {
	return Summarize(df, year, airport, month, a.SummaryOptions())
}

// RankOptions 组装指定实体种类的排行列绑定
func (a *Analyzer) RankOptions(kind string) (RankOptions, error) {
	entity, ok := a.dcfg.GetEntity(kind)
	if !ok {
		return RankOptions{}, fmt.Errorf("未配置的排行实体: %s", kind)
	}
	return RankOptions{
		EntityCodeCol:    entity.CodeCol,
		EntityNameCol:    entity.NameCol,
		DisplayFactorCol: a.dcfg.DisplayFactor,
		DelayCauseCols:   a.dcfg.DelayCauses,
		TopN:             a.dcfg.TopN,
	}.withDefaults(), nil
}

func (a *Analyzer) Rank(df dataframe.DataFrame, kind string) (dataframe.DataFrame, error) {
	opt, err := a.RankOptions(kind)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return RankByDelay(df, opt)
}

// GeoOptions 从数据配置组装地理汇总的列绑定，未配置的项填默认列名
func (a *Analyzer) GeoOptions() GeoOptions {
	return GeoOptions{
		LocationCol:    a.dcfg.Geo.LocationCol,
		DelayCauseCols: a.dcfg.DelayCauses,
		CoordsJoinCol:  a.dcfg.Geo.CoordsJoinCol,
		LongitudeCol:   a.dcfg.Geo.LongitudeCol,
		LatitudeCol:    a.dcfg.Geo.LatitudeCol,
	}.withDefaults()
}

func (a *Analyzer) Geo(df, coords dataframe.DataFrame) (dataframe.DataFrame, error) {
	return PrepareGeo(df, coords, a.GeoOptions())
}

// Breakdown 组装按月延误原因长表
func (a *Analyzer) Breakdown(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	return MeltDelays(df, a.dcfg.GetSummaryCol("month"), a.dcfg.DelayCauses)
}
