// filter.go
package dataset

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/hashicorp/go-bexpr"
)

// FilterRows 按布尔表达式筛选行，如 "year == 2023 and arr_flights != 0"。
// 表达式中的字段名为列名；expr为空时原样返回。
func FilterRows(df dataframe.DataFrame, expr string) (dataframe.DataFrame, error) {
	if expr == "" {
		return df, nil
	}

	eval, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("筛选表达式无效: %w", err)
	}

	rows := df.Maps()
	keep := make([]int, 0, len(rows))
	for i, row := range rows {
		ok, err := eval.Evaluate(row)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("筛选表达式求值失败(第%d行): %w", i+1, err)
		}
		if ok {
			keep = append(keep, i)
		}
	}

	if len(keep) == df.Nrow() {
		return df, nil
	}
	return df.Subset(keep), nil
}
