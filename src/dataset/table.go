// table.go
package dataset

import (
	"sync"

	"github.com/go-gota/gota/dataframe"
)

// Table 并发安全的DataFrame容器，刷新协程写入、分析协程读取
type Table struct {
	mu sync.RWMutex
	df dataframe.DataFrame
}

func NewTable() *Table {
	return &Table{}
}

// Set 整表替换当前数据
func (t *Table) Set(df dataframe.DataFrame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.df = df
}

// Snapshot 返回当前数据的副本，调用方可自由使用而不影响后续刷新
func (t *Table) Snapshot() dataframe.DataFrame {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.df.Copy()
}

// Nrow 当前数据行数
func (t *Table) Nrow() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.df.Nrow()
}
