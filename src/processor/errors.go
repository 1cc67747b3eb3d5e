package processor

import (
	"fmt"
	"strings"
)

// MissingColumnError 表示操作所需的列在数据中不存在
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("数据缺少必需列: %s", strings.Join(e.Columns, ", "))
}
