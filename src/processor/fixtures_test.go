package processor

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// sampleDelays 构造BTS准点率数据样例，覆盖多机场多月份与NA值
func sampleDelays() dataframe.DataFrame {
	return dataframe.LoadRecords([][]string{
		{"year", "month", "carrier", "carrier_name", "airport", "airport_name", "arr_cancelled", "arr_diverted", "carrier_delay", "weather_delay", "nas_delay", "security_delay", "late_aircraft_delay"},
		{"2023", "6", "AA", "American Airlines", "JFK", "John F Kennedy International", "12", "3", "100", "20", "30", "0", "50"},
		{"2023", "6", "DL", "Delta Air Lines", "JFK", "John F Kennedy International", "8", "1", "80", "10", "25", "5", "40"},
		{"2023", "6", "AA", "American Airlines", "LGA", "LaGuardia", "4", "0", "60", "NA", "15", "0", "30"},
		{"2023", "7", "UA", "United Air Lines", "ORD", "Chicago O'Hare International", "9", "2", "70", "30", "20", "0", "45"},
		{"2023", "7", "DL", "Delta Air Lines", "ATL", "Hartsfield-Jackson Atlanta International", "2", "1", "90", "15", "35", "10", "55"},
	})
}

// sampleCoords 机场坐标表样例，含重复的场站代码
func sampleCoords() dataframe.DataFrame {
	return dataframe.LoadRecords([][]string{
		{"IATA Code", "longitude", "latitude"},
		{"JFK", "-73.7781", "40.6413"},
		{"JFK", "-73.0000", "40.0000"},
		{"LGA", "-73.8740", "40.7769"},
	})
}

// emptySubset 通过过滤不存在的年份得到保留结构的空DataFrame
func emptySubset() dataframe.DataFrame {
	df := sampleDelays()
	return df.Filter(dataframe.F{Colname: "year", Comparator: series.Eq, Comparando: 1900})
}
