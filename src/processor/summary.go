package processor

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"DelayInsight/src/utils"
)

// SummaryOptions 汇总统计的列绑定，零值字段取BTS准点率数据的默认列名
type SummaryOptions struct {
	YearCol      string
	MonthCol     string
	AirportCol   string
	CancelledCol string
	DivertedCol  string
}

func (o SummaryOptions) withDefaults() SummaryOptions {
	if o.YearCol == "" {
		o.YearCol = "year"
	}
	if o.MonthCol == "" {
		o.MonthCol = "month"
	}
	if o.AirportCol == "" {
		o.AirportCol = "airport_name"
	}
	if o.CancelledCol == "" {
		o.CancelledCol = "arr_cancelled"
	}
	if o.DivertedCol == "" {
		o.DivertedCol = "arr_diverted"
	}
	return o
}

// Summary 某机场某年某月的取消/备降架次汇总
type Summary struct {
	Airport   string
	Year      int
	Month     int
	Cancelled int
	Diverted  int
}

// Summarize 筛选指定年份、机场、月份的行并汇总取消与备降架次。
// 没有匹配行或绑定列不存在时返回零值汇总，求和时跳过缺失值。
func Summarize(df dataframe.DataFrame, year int, airport string, month int, opt SummaryOptions) Summary {
	opt = opt.withDefaults()
	out := Summary{Airport: airport, Year: year, Month: month}

	required := []string{opt.YearCol, opt.MonthCol, opt.AirportCol, opt.CancelledCol, opt.DivertedCol}
	if len(utils.MissingColumns(df, required)) > 0 {
		return out
	}

	filtered := df.FilterAggregation(
		dataframe.And,
		dataframe.F{Colname: opt.YearCol, Comparator: series.Eq, Comparando: year},
		dataframe.F{Colname: opt.AirportCol, Comparator: series.Eq, Comparando: airport},
		dataframe.F{Colname: opt.MonthCol, Comparator: series.Eq, Comparando: month},
	)
	if filtered.Error() != nil || filtered.Nrow() == 0 {
		return out
	}

	out.Cancelled = int(utils.SumSkipNA(filtered.Col(opt.CancelledCol)))
	out.Diverted = int(utils.SumSkipNA(filtered.Col(opt.DivertedCol)))
	return out
}
