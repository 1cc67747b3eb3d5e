// load.go
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
)

// nanValues 在gota默认标记的基础上增加空字符串，
// 避免数值列因空单元格被推断为字符串类型
func nanValues() []string {
	return []string{"NA", "NaN", "<nil>", ""}
}

// LoadCSV 读取CSV文件为DataFrame，首行为列名，列类型自动推断
func LoadCSV(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("打开CSV文件失败: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues()),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("解析CSV文件失败: %w", df.Err)
	}
	return df, nil
}

// LoadXLSX 读取Excel工作表为DataFrame。
//
// 参数:
//   - path: xlsx文件路径
//   - sheetName: 工作表名，为空时取第一个工作表
//   - headerRow: 标题行下标(从0开始)，其后的行为数据行
func LoadXLSX(path, sheetName string, headerRow int) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("打开Excel文件失败: %w", err)
	}

	sheet, err := pickSheet(xlFile, sheetName)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return sheetToDataFrame(sheet, headerRow)
}

// LoadFile 按扩展名选择加载方式，支持.csv与.xlsx
func LoadFile(path, sheetName string, headerRow int) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx":
		return LoadXLSX(path, sheetName, headerRow)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("不支持的文件类型: %s", filepath.Ext(path))
	}
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("excel文件中没有工作表")
	}
	if name == "" {
		return f.Sheets[0], nil
	}
	sheet, ok := f.Sheet[name]
	if !ok {
		return nil, fmt.Errorf("工作表不存在: %s", name)
	}
	return sheet, nil
}

// sheetToDataFrame 将xlsx.Sheet按标题行切分转换为dataframe.DataFrame
func sheetToDataFrame(sheet *xlsx.Sheet, headerRow int) (dataframe.DataFrame, error) {
	if headerRow < 0 {
		headerRow = 0
	}
	if len(sheet.Rows) <= headerRow {
		return dataframe.DataFrame{}, fmt.Errorf("工作表行数不足，标题行%d不存在", headerRow)
	}

	// 标题单元格两侧的空白会导致列名匹配失败，统一去除
	var headers []string
	for _, cell := range sheet.Rows[headerRow].Cells {
		headers = append(headers, strings.TrimSpace(cell.Value))
	}

	records := [][]string{headers}
	for _, row := range sheet.Rows[headerRow+1:] {
		rec := make([]string, len(headers))
		for i, cell := range row.Cells {
			if i < len(headers) {
				rec[i] = cell.Value
			}
		}
		records = append(records, rec)
	}

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues()),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("转换工作表失败: %w", df.Err)
	}
	return df, nil
}
