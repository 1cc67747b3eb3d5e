package processor

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"DelayInsight/src/utils"
)

// AvgDelayCol 地理汇总结果中的平均延误列名
const AvgDelayCol = "avg_delay_cause"

// GeoOptions 地理汇总的列绑定
type GeoOptions struct {
	LocationCol    string   // 延误数据中的场站代码列
	DelayCauseCols []string // 参与汇总的原因列
	CoordsJoinCol  string   // 坐标表中的场站代码列
	LongitudeCol   string
	LatitudeCol    string
}

func (o GeoOptions) withDefaults() GeoOptions {
	if o.LocationCol == "" {
		o.LocationCol = "airport"
	}
	if len(o.DelayCauseCols) == 0 {
		o.DelayCauseCols = DefaultDelayCauses()
	}
	if o.CoordsJoinCol == "" {
		o.CoordsJoinCol = "IATA Code"
	}
	if o.LongitudeCol == "" {
		o.LongitudeCol = "longitude"
	}
	if o.LatitudeCol == "" {
		o.LatitudeCol = "latitude"
	}
	return o
}

// PrepareGeo 按场站汇总各延误原因并连接坐标表，产出地理可视化用的数据。
// 输出列依次为：场站列、各原因列的分组和、avg_delay_cause(各原因和的均值)、经度列、纬度列。
// 场站顺序为输入中的首次出现顺序；坐标表重复的场站代码只保留首行，保证行数不被连接放大；
// 没有坐标的场站经纬度为NaN。场站缺失的行不参与汇总。
func PrepareGeo(df, coords dataframe.DataFrame, opt GeoOptions) (dataframe.DataFrame, error) {
	opt = opt.withDefaults()

	if df.Nrow() == 0 {
		return emptyGeo(opt), nil
	}

	missing := utils.MissingColumns(df, append([]string{opt.LocationCol}, opt.DelayCauseCols...))
	missing = append(missing, utils.MissingColumns(coords, []string{opt.CoordsJoinCol, opt.LongitudeCol, opt.LatitudeCol})...)
	if len(missing) > 0 {
		return dataframe.DataFrame{}, &MissingColumnError{Columns: missing}
	}

	clean := df.Filter(dataframe.F{
		Colname:    opt.LocationCol,
		Comparator: series.CompFunc,
		Comparando: notMissing,
	})
	if clean.Nrow() == 0 {
		return emptyGeo(opt), nil
	}

	groups := groupRows(clean, opt.LocationCol)

	colSeries := make(map[string]series.Series, len(opt.DelayCauseCols))
	for _, c := range opt.DelayCauseCols {
		colSeries[c] = clean.Col(c)
	}

	n := len(groups)
	locs := make([]string, n)
	avgs := make([]float64, n)
	sums := make(map[string][]float64, len(opt.DelayCauseCols))
	for _, c := range opt.DelayCauseCols {
		sums[c] = make([]float64, n)
	}

	perCause := make([]float64, len(opt.DelayCauseCols))
	for gi, g := range groups {
		locs[gi] = g.keys[0]
		for ci, c := range opt.DelayCauseCols {
			v := sumRows(colSeries[c], g.rows)
			sums[c][gi] = v
			perCause[ci] = v
		}
		avgs[gi] = stat.Mean(perCause, nil)
	}

	ss := []series.Series{series.New(locs, series.String, opt.LocationCol)}
	for _, c := range opt.DelayCauseCols {
		ss = append(ss, series.New(sums[c], series.Float, c))
	}
	ss = append(ss, series.New(avgs, series.Float, AvgDelayCol))
	grouped := dataframe.New(ss...)

	return grouped.LeftJoin(dedupeCoords(coords, opt), opt.LocationCol), nil
}

// dedupeCoords 取坐标表的场站、经度、纬度三列，按场站代码去重(保留首行)，
// 并把场站代码列重命名为延误数据中的场站列名以便连接
func dedupeCoords(coords dataframe.DataFrame, opt GeoOptions) dataframe.DataFrame {
	sel := coords.Select([]string{opt.CoordsJoinCol, opt.LongitudeCol, opt.LatitudeCol})

	joinCol := sel.Col(opt.CoordsJoinCol)
	seen := make(map[string]bool, sel.Nrow())
	keep := make([]int, 0, sel.Nrow())
	for i := 0; i < sel.Nrow(); i++ {
		k := joinCol.Elem(i).String()
		if seen[k] {
			continue
		}
		seen[k] = true
		keep = append(keep, i)
	}
	if len(keep) < sel.Nrow() {
		sel = sel.Subset(keep)
	}

	if opt.CoordsJoinCol != opt.LocationCol {
		sel = sel.Rename(opt.LocationCol, opt.CoordsJoinCol)
	}
	return sel
}

// emptyGeo 返回与地理汇总结果同构的空DataFrame
func emptyGeo(opt GeoOptions) dataframe.DataFrame {
	ss := []series.Series{series.New([]string{}, series.String, opt.LocationCol)}
	for _, c := range opt.DelayCauseCols {
		ss = append(ss, series.New([]float64{}, series.Float, c))
	}
	ss = append(ss,
		series.New([]float64{}, series.Float, AvgDelayCol),
		series.New([]float64{}, series.Float, opt.LongitudeCol),
		series.New([]float64{}, series.Float, opt.LatitudeCol),
	)
	return dataframe.New(ss...)
}
