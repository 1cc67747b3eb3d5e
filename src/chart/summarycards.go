// summarycards.go
package chart

import (
	"html/template"
	"io"

	"DelayInsight/src/processor"
)

var summaryTpl = template.Must(template.New("summary").Parse(`<div class="summary-cards">
  <h3>Flight Summary for <b>{{.Airport}}</b></h3>
  <h4>Year: <b>{{.Year}}</b>, Month: <b>{{.Month}}</b></h4>
  <h3>Cancelled Flights: <b>{{.Cancelled}}</b></h3>
  <h3>Diverted Flights: <b>{{.Diverted}}</b></h3>
</div>
`))

type summaryCards struct {
	s processor.Summary
}

// SummaryCards 航班取消/备降汇总卡片，与图表一样以Renderable嵌入面板页
func SummaryCards(s processor.Summary) Renderable {
	return summaryCards{s: s}
}

func (c summaryCards) Render(w io.Writer) error {
	return summaryTpl.Execute(w, c.s)
}
