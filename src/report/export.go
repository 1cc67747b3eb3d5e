// export.go
package report

import (
	"path/filepath"

	"github.com/go-gota/gota/dataframe"

	"DelayInsight/src/utils"
)

// ExportTable 把结果表同时导出为xlsx与csv，返回写出的文件路径
func ExportTable(df dataframe.DataFrame, dir, name string) ([]string, error) {
	xlsxPath := filepath.Join(dir, name+".xlsx")
	if err := utils.SaveToExcel(df, xlsxPath); err != nil {
		return nil, err
	}

	csvPath := filepath.Join(dir, name+".csv")
	if err := utils.SaveToCSV(df, csvPath); err != nil {
		return nil, err
	}
	return []string{xlsxPath, csvPath}, nil
}
