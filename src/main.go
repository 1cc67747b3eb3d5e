package main

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/robfig/cron"

	"DelayInsight/src/chart"
	"DelayInsight/src/config"
	"DelayInsight/src/datapush"
	"DelayInsight/src/dataset"
	"DelayInsight/src/datasource/email"
	"DelayInsight/src/datasource/file"
	"DelayInsight/src/processor"
	"DelayInsight/src/report"
	"DelayInsight/src/storage"
	"DelayInsight/src/utils"
)

func main() {
	jsonFolder := "./config"
	jsonFile := "config.json"
	dataJsonFile := "dataconfig.json"
	cfg, dcfg, err := config.LoadConfig(jsonFolder, jsonFile, dataJsonFile)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 初始化日志系统
	logName := cfg.LogName
	if logName == "" {
		logName = "app.log"
	}
	logger, err := storage.NewLogger(logName)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	dataDir, err := file.EnsureDataDir(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to prepare data dir:", err)
	}

	store := dataset.NewStore(cfg, dcfg)
	analyzer := processor.NewAnalyzer(dcfg)
	builder := report.NewBuilder(cfg.OutputDir)
	pusher := datapush.NewPusher(cfg)

	// 启动时先加载现有数据出一期面板
	if cfg.CoordsFile != "" {
		if err := store.RefreshCoords(cfg.CoordsFile, logger); err != nil {
			logger.Warning("坐标表未就绪: " + err.Error())
		}
	}
	if path, err := initialDataFile(cfg, dataDir); err != nil {
		logger.Warning("未找到延误数据文件: " + err.Error())
	} else if err := store.RefreshData(path, logger); err != nil {
		logger.Error("初始数据加载失败: " + err.Error())
	} else {
		publish(cfg, dcfg, store, analyzer, builder, pusher, logger)
	}

	// 文件监控：新数据落盘即刷新数据并重建面板
	monitor, err := file.NewFileMonitor(dataDir, cfg.FileKeyword)
	if err != nil {
		logger.Error("创建文件监控失败: " + err.Error())
	} else {
		go func() {
			err := monitor.Watch(func(path string) {
				if err := store.RefreshData(path, logger); err != nil {
					logger.Error("数据刷新失败: " + err.Error())
					return
				}
				publish(cfg, dcfg, store, analyzer, builder, pusher, logger)
			})
			if err != nil {
				logger.Error("文件监控退出: " + err.Error())
			}
		}()
	}

	// 邮箱轮询：目标邮件的数据附件落盘后由文件监控接手
	mailbox := email.NewIMAPSource(
		cfg.Email.Server,
		cfg.Email.Username,
		cfg.Email.Password)
	var handler email.Handler = email.NewAttachmentHandler(cfg.Email.TargetSubject, dataDir)

	c := cron.New()
	checkEvery := time.Duration(cfg.Email.CheckInterval)
	if checkEvery <= 0 {
		checkEvery = 10 * time.Minute
	}
	interval := checkEvery.String() // 例如 "5m0s"
	cronSpec := fmt.Sprintf("@every %s", interval)

	err = c.AddFunc(cronSpec, func() {
		logger.CheckRotate(cfg)
		if cfg.Email.Server == "" {
			return
		}
		logger.Info(fmt.Sprintf("开始定时检查(间隔: %v)...", cronSpec))

		newEmail, err := email.FetchLatestReport(mailbox, cfg.Email.TargetSubject, logger)
		if err != nil {
			logger.Error("检查处理邮件失败: " + err.Error())
			return
		}
		if newEmail == nil {
			return
		}

		saved, err := handler.Handle(newEmail, logger)
		if err != nil {
			logger.Error(fmt.Sprintf("处理邮件失败(UID:%d): %v", newEmail.UID, err))
			return
		}
		if len(saved) > 0 {
			logger.Info(fmt.Sprintf("新数据附件%d个已就绪", len(saved)))
		}
	})
	if err != nil {
		logger.Error("创建定时任务失败: " + err.Error())
		return
	}

	c.Start()
	defer c.Stop()

	go startWebUI(cfg.ListenAddr, cfg.OutputDir, logger)

	logger.Info(fmt.Sprintf("延误数据监控服务已启动(检查间隔: %v)，按Ctrl+C退出", interval))
	waitForShutdown(logger, monitor, c)
}

// initialDataFile 确定启动时加载的数据文件：配置了就用配置的，否则扫描数据目录取最新
func initialDataFile(cfg *config.Config, dataDir string) (string, error) {
	if cfg.DataFile != "" {
		if _, err := os.Stat(cfg.DataFile); err != nil {
			return "", fmt.Errorf("配置的数据文件不可用: %w", err)
		}
		return cfg.DataFile, nil
	}
	return file.FindLatestDataFile(dataDir, cfg.FileKeyword)
}

// 同一时间只装配一期面板，文件监控的回调可能并发到达
var publishMu sync.Mutex

// publish 用当前数据装配一期面板：汇总卡片、各实体Top-N排行组合图、
// 机场平均延误地理图、按月原因分解图；随后导出数据表并按配置发通知
func publish(cfg *config.Config, dcfg *config.DataConfig, store *dataset.Store,
	analyzer *processor.Analyzer, builder *report.Builder, pusher *datapush.Pusher,
	logger *storage.Logger) {
	publishMu.Lock()
	defer publishMu.Unlock()

	data := store.Data()
	if data.Nrow() == 0 {
		logger.Warning("没有可用数据，跳过面板构建")
		return
	}

	t1 := time.Now()
	style := dcfg.Style()
	vr := analyzer.Validate(data)

	type export struct {
		name string
		df   dataframe.DataFrame
	}
	var (
		charts  []report.NamedChart
		exports []export
	)

	// 每类实体一张排行组合图
	for _, kind := range dcfg.EntityKinds() {
		opt, err := analyzer.RankOptions(kind)
		if err != nil {
			logger.Error(err.Error())
			continue
		}
		ranked, err := analyzer.Rank(data, kind)
		if err != nil {
			logger.Error(fmt.Sprintf("%s排行失败: %v", kind, err))
			continue
		}
		combo, err := chart.NewDelayCombo(ranked, chart.Channels{
			X:     opt.EntityCodeCol,
			Y:     processor.TotalDelayCol,
			Y2:    opt.DisplayFactorCol,
			Hover: []string{opt.EntityNameCol, opt.EntityCodeCol},
		}, style, chart.ComboTitle(opt.TopN, kind, opt.DisplayFactorCol))
		if err != nil {
			logger.Error(fmt.Sprintf("%s排行图装配失败: %v", kind, err))
			continue
		}
		charts = append(charts, report.NamedChart{Name: kind + " Ranking", Chart: combo})
		exports = append(exports, export{name: kind + " ranking", df: ranked})
	}

	// 机场平均延误地理图，坐标表就绪才画
	coords := store.Coords()
	if coords.Nrow() > 0 {
		gopt := analyzer.GeoOptions()
		geoTable, err := analyzer.Geo(data, coords)
		if err != nil {
			logger.Error("地理汇总失败: " + err.Error())
		} else {
			gch := chart.Channels{
				X:     gopt.LongitudeCol,
				Y:     gopt.LatitudeCol,
				Color: processor.AvgDelayCol,
				Size:  processor.AvgDelayCol,
				Hover: []string{gopt.LocationCol},
			}
			if heat, err := chart.NewGeoHeatmap(geoTable, gch, style, "Average Delay by Airport"); err != nil {
				logger.Error("地理热力图装配失败: " + err.Error())
			} else {
				charts = append(charts, report.NamedChart{Name: "Average Delay Heatmap", Chart: heat})
			}
			if pts, err := chart.NewGeoPoints(geoTable, gch, style, "Average Delay by Airport"); err != nil {
				logger.Error("地理散点图装配失败: " + err.Error())
			} else {
				charts = append(charts, report.NamedChart{Name: "Average Delay Points", Chart: pts})
			}
			exports = append(exports, export{name: "airport geo", df: geoTable})
		}
	}

	// 按月延误原因分解
	sopt := analyzer.SummaryOptions()
	if melted, err := analyzer.Breakdown(data); err != nil {
		logger.Error("按月原因分解失败: " + err.Error())
	} else {
		bd, err := chart.NewDelayBreakdown(melted, chart.Channels{
			X:     sopt.MonthCol,
			Y:     processor.MinutesCol,
			Color: processor.DelayTypeCol,
		}, style, "Delay Breakdown by Month")
		if err != nil {
			logger.Error("分解图装配失败: " + err.Error())
		} else {
			charts = append(charts, report.NamedChart{Name: "Delay Breakdown", Chart: bd})
		}
	}

	// 汇总卡片取最新年月、机场候选里字典序第一个(面板默认选中项)
	year, month := latestPeriod(data, sopt.YearCol, sopt.MonthCol)
	airport := firstAirport(data, sopt.AirportCol)
	summary := analyzer.Summarize(data, year, airport, month)

	view := report.View{
		Title:     "Flight Delay Dashboard",
		Generated: time.Now(),
		Summary:   summary,
		Report:    vr,
		Charts:    charts,
	}
	dir, err := builder.Build(view)
	if err != nil {
		logger.Error("面板构建失败: " + err.Error())
		return
	}
	logger.Info("面板已生成: " + dir)

	var files []string
	for _, e := range exports {
		paths, err := report.ExportTable(e.df, dir, e.name)
		if err != nil {
			logger.Error(fmt.Sprintf("导出 %s 失败: %v", e.name, err))
			continue
		}
		files = append(files, paths...)
	}

	notify(cfg, summary, dir, files, pusher, logger)
	logger.Info(fmt.Sprintf("面板装配耗时: %v", time.Since(t1)))
}

// notify 把新一期面板通知出去：邮件带导出表附件，钉钉发文本加文件
func notify(cfg *config.Config, summary processor.Summary, dir string, files []string,
	pusher *datapush.Pusher, logger *storage.Logger) {
	text := fmt.Sprintf("延误面板已更新: %s\n%s %d-%02d 取消航班 %d，备降航班 %d",
		dir, summary.Airport, summary.Year, summary.Month, summary.Cancelled, summary.Diverted)

	if cfg.SendEmail.Server != "" {
		subject := cfg.SendEmail.Subject
		if subject == "" {
			subject = "DelayInsight 延误分析报告"
		}
		if err := email.SendReport(cfg, subject, text, files); err != nil {
			logger.Error("报告邮件发送失败: " + err.Error())
		} else {
			logger.Info("报告邮件已发送")
		}
	}

	if cfg.DingTalk.AppKey != "" && cfg.DingTalk.UserIDs != "" {
		receivers := strings.Split(cfg.DingTalk.UserIDs, ",")
		if err := pusher.PushReport(text, receivers, files); err != nil {
			logger.Error("钉钉推送失败: " + err.Error())
		} else {
			logger.Info("钉钉推送完成")
		}
	}
}

// latestPeriod 取数据里最新的(年, 月)，跳过缺失行
func latestPeriod(df dataframe.DataFrame, yearCol, monthCol string) (int, int) {
	if !utils.HasColumn(df, yearCol) || !utils.HasColumn(df, monthCol) {
		return 0, 0
	}
	years := df.Col(yearCol).Float()
	months := df.Col(monthCol).Float()

	year, month := 0, 0
	for i := range years {
		y, m := years[i], months[i]
		if math.IsNaN(y) || math.IsNaN(m) {
			continue
		}
		if int(y) > year || (int(y) == year && int(m) > month) {
			year, month = int(y), int(m)
		}
	}
	return year, month
}

// firstAirport 机场候选里字典序第一个
func firstAirport(df dataframe.DataFrame, airportCol string) string {
	if !utils.HasColumn(df, airportCol) {
		return ""
	}
	var names []string
	for _, v := range df.Col(airportCol).Records() {
		if v == "" || v == "NaN" {
			continue
		}
		names = append(names, v)
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return names[0]
}

// startWebUI 启动Web界面：/logs输出实时日志流，其余路径提供面板静态文件
// 参数:
//
//	addr: 监听地址，留空时使用:8080
//	outputDir: 面板输出目录
//	logger: 日志记录器实例，用于订阅日志消息
func startWebUI(addr, outputDir string, logger *storage.Logger) {
	// 注册/logs路由的处理函数
	http.HandleFunc("/logs", func(w http.ResponseWriter, r *http.Request) {
		// 设置响应头
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Transfer-Encoding", "chunked")

		// 创建日志订阅通道
		logChan := logger.Subscribe()
		defer logger.Unsubscribe(logChan)

		// 无限循环，持续接收日志消息
		for {
			select {
			case msg := <-logChan:
				// 将日志消息写入HTTP响应
				if _, err := fmt.Fprintln(w, msg); err != nil {
					// 如果写入失败(如客户端断开连接)，则退出循环
					return
				}
				// 刷新响应缓冲区，确保消息立即发送到客户端
				if f, ok := w.(http.Flusher); ok {
					f.Flush()
				}
			case <-r.Context().Done():
				// 如果客户端断开连接，则退出循环
				return
			}
		}
	})

	http.Handle("/", http.FileServer(http.Dir(outputDir)))

	if addr == "" {
		addr = ":8080"
	}
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Error("Web服务退出: " + err.Error())
	}
}

func waitForShutdown(logger *storage.Logger, monitor *file.FileMonitor, c *cron.Cron) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received signal: " + sig.String() + ", shutting down...")
	if monitor != nil {
		monitor.Close()
	}
	c.Stop()
	logger.Close()
	os.Exit(0)
}
