// dashboard.go
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"DelayInsight/src/chart"
	"DelayInsight/src/processor"
)

// NamedChart 面板上的一张图及其展示名
type NamedChart struct {
	Name  string
	Chart chart.Renderable
}

// View 一期面板的全部内容
type View struct {
	Title     string
	Generated time.Time
	Summary   processor.Summary
	Report    processor.ValidationReport
	Charts    []NamedChart
}

// Builder 把面板写进输出目录，每期一个快照目录
type Builder struct {
	OutputDir string
}

func NewBuilder(outputDir string) *Builder {
	return &Builder{OutputDir: outputDir}
}

var indexTpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 24px; }
.summary-cards { border: 1px solid #ddd; border-radius: 6px; padding: 8px 16px; max-width: 480px; }
.warn { color: #b3261e; margin: 8px 0; }
iframe { border: none; width: 100%; height: 1600px; margin-top: 16px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated at {{.Generated}}</p>
{{.Summary}}
{{if .Report.MissingColumns}}<p class="warn">Missing columns: {{range .Report.MissingColumns}}<code>{{.}}</code> {{end}}</p>{{end}}
{{range $col, $cnt := .Report.MissingValues}}<p class="warn">Column <code>{{$col}}</code> has {{$cnt}} missing values</p>
{{end}}
<ul>
{{range .Charts}}<li><a href="{{.File}}">{{.Name}}</a></li>
{{end}}</ul>
<iframe src="charts.html"></iframe>
</body>
</html>
`))

type chartLink struct {
	Name string
	File string
}

type indexData struct {
	Title     string
	Generated string
	Summary   template.HTML
	Report    processor.ValidationReport
	Charts    []chartLink
}

// Build 渲染一期面板快照并返回快照目录路径。
// 目录名带时间戳与uuid后缀，重复构建互不覆盖；
// 目录内为每张图一个页面、整页拼图charts.html和入口index.html。
func (b *Builder) Build(view View) (string, error) {
	stamp := view.Generated.Format("20060102-150405")
	dir := filepath.Join(b.OutputDir, fmt.Sprintf("dashboard-%s-%s", stamp, uuid.NewString()[:8]))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建面板目录失败: %w", err)
	}

	links := make([]chartLink, 0, len(view.Charts))
	all := make([]chart.Renderable, 0, len(view.Charts))
	for _, nc := range view.Charts {
		file := slug(nc.Name) + ".html"
		if err := renderToFile(filepath.Join(dir, file), nc.Chart); err != nil {
			return "", fmt.Errorf("渲染图表 %s 失败: %w", nc.Name, err)
		}
		links = append(links, chartLink{Name: nc.Name, File: file})
		all = append(all, nc.Chart)
	}

	if err := renderToFile(filepath.Join(dir, "charts.html"), chart.NewPage(all...)); err != nil {
		return "", fmt.Errorf("渲染拼图页失败: %w", err)
	}

	var summary bytes.Buffer
	if err := chart.SummaryCards(view.Summary).Render(&summary); err != nil {
		return "", fmt.Errorf("渲染汇总卡片失败: %w", err)
	}

	idx, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return "", fmt.Errorf("创建面板首页失败: %w", err)
	}
	defer idx.Close()

	data := indexData{
		Title:     view.Title,
		Generated: view.Generated.Format("2006-01-02 15:04:05"),
		Summary:   template.HTML(summary.String()),
		Report:    view.Report,
		Charts:    links,
	}
	if err := indexTpl.Execute(idx, data); err != nil {
		return "", fmt.Errorf("渲染面板首页失败: %w", err)
	}

	if err := writeLatestRedirect(b.OutputDir, filepath.Base(dir)); err != nil {
		return "", fmt.Errorf("更新最新面板入口失败: %w", err)
	}
	return dir, nil
}

// writeLatestRedirect 在输出目录根部写跳转页，Web根路径始终打开最新一期面板
func writeLatestRedirect(outputDir, snapshot string) error {
	html := fmt.Sprintf(`<!DOCTYPE html>
<meta charset="utf-8">
<meta http-equiv="refresh" content="0; url=%s/index.html">
<a href="%s/index.html">Latest dashboard</a>
`, snapshot, snapshot)
	return os.WriteFile(filepath.Join(outputDir, "index.html"), []byte(html), 0644)
}

func renderToFile(path string, r chart.Renderable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.Render(f)
}

// slug 图表名转文件名：小写、空白转连字符、去掉其余符号
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '-':
			b.WriteRune('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "chart"
	}
	return s
}
