package dataset

import (
	"sync"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
)

func smallFrame(rows ...[]string) dataframe.DataFrame {
	records := [][]string{{"airport", "carrier_delay"}}
	records = append(records, rows...)
	return dataframe.LoadRecords(records)
}

func TestTable(t *testing.T) {
	t.Run("快照与替换", func(t *testing.T) {
		tab := NewTable()
		assert.Equal(t, 0, tab.Nrow())

		tab.Set(smallFrame([]string{"JFK", "10"}, []string{"LGA", "20"}))
		snap := tab.Snapshot()
		assert.Equal(t, 2, snap.Nrow())

		// 替换后此前取得的快照不受影响
		tab.Set(smallFrame([]string{"ORD", "30"}))
		assert.Equal(t, 1, tab.Nrow())
		assert.Equal(t, 2, snap.Nrow())
	})

	t.Run("并发读写", func(t *testing.T) {
		tab := NewTable()
		tab.Set(smallFrame([]string{"JFK", "10"}))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				tab.Set(smallFrame([]string{"LGA", "20"}))
			}()
			go func() {
				defer wg.Done()
				_ = tab.Snapshot()
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, tab.Nrow())
	})
}
