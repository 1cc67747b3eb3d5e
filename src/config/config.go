package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	Email struct {
		Server        string   `json:"server"`         // 邮件服务器地址
		Username      string   `json:"username"`       // 邮箱用户名
		Password      string   `json:"password"`       // 邮箱密码
		TargetSubject string   `json:"target_subject"` // 需要匹配的邮件主题
		CheckInterval Duration `json:"check_interval"` // 检查新邮件的间隔时间
	} `json:"email"`

	DataDir     string `json:"data_dir"`     // 延误数据文件目录
	DataFile    string `json:"data_file"`    // 指定的延误数据文件，留空时扫描数据目录取最新
	FileKeyword string `json:"file_keyword"` // 数据文件名关键词，目录扫描与文件监控共用
	CoordsFile  string `json:"coords_file"`  // 机场坐标表文件
	SheetName   string `json:"sheet_name"`   // xlsx数据所在工作表
	HeaderRow   int    `json:"header_row"`   // xlsx标题行下标(从0起)
	OutputDir   string `json:"output_dir"`   // 仪表盘与导出文件输出目录
	ListenAddr  string `json:"listen_addr"`  // Web服务监听地址
	LogName     string `json:"log_name"`
	LogMaxSize  string `json:"log_max_size"`

	SendEmail struct {
		Server   string   `json:"server"`   // SMTP服务器地址
		Username string   `json:"username"` // 发件邮箱
		Password string   `json:"password"` // 发件密码/授权码
		To       []string `json:"to"`       // 报告收件人
		Subject  string   `json:"subject"`  // 报告邮件主题
	} `json:"send_email"`

	DingTalk struct {
		AppKey    string `json:"app_key"`
		AppSecret string `json:"app_secret"`
		AgentID   string `json:"agent_id"`
		UserIDs   string `json:"user_ids"`  // 接收人，多个以逗号分隔
		BaseURL   string `json:"base_url"`  // 留空时使用钉钉开放平台默认地址
	} `json:"dingtalk"`
}

// Entity 排行实体的列绑定：display列用于展示，code列用于分组去重
type Entity struct {
	NameCol string `json:"name_col"`
	CodeCol string `json:"code_col"`
}

// ChartStyle 图表装配样式
type ChartStyle struct {
	ComboWidth   string   `json:"combo_width"`
	ComboHeight  string   `json:"combo_height"`
	GeoWidth     string   `json:"geo_width"`
	GeoHeight    string   `json:"geo_height"`
	BarColor     string   `json:"bar_color"`
	BarOpacity   float32  `json:"bar_opacity"`
	LineColor    string   `json:"line_color"`
	LineWidth    float32  `json:"line_width"`
	XRotate      float32  `json:"x_rotate"`
	GeoColors    []string `json:"geo_colors"`    // 由低到高的色带
	PointOpacity float32  `json:"point_opacity"`
	SizeFactor   float64  `json:"size_factor"`
	SizeOffset   float64  `json:"size_offset"`
}

type DataConfig struct {
	RequiredColumns []string          `json:"required_columns"` // 数据刷新时校验的必需列
	Summary         map[string]string `json:"summary"`          // 汇总统计的列绑定
	Entities        map[string]Entity `json:"entities"`         // 排行实体(如Airline/Airport)的列绑定
	DelayCauses     []string          `json:"delay_causes"`     // 延误原因列
	DisplayFactor   string            `json:"display_factor"`   // 排行图折线展示的量值列
	TopN            int               `json:"top_n"`            // 排行榜长度
	FilterExpr      string            `json:"filter_expr"`      // 可选的行筛选表达式
	Geo             struct {
		LocationCol   string `json:"location_col"`
		CoordsJoinCol string `json:"coords_join_col"`
		LongitudeCol  string `json:"longitude_col"`
		LatitudeCol   string `json:"latitude_col"`
	} `json:"geo"`
	Chart ChartStyle `json:"chart"`
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
	mu                 sync.RWMutex
)

func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	var err error
	once.Do(func() {
		instance, dataConfigInstance, err = loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	})
	return instance, dataConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	cfg, dcfg, err := waitForResults(cfgChan, dcfgChan, errChan)
	if err != nil {
		return nil, nil, err
	}

	return cfg, dcfg, nil
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	var dcfg DataConfig
	if err := json.Unmarshal(data, &dcfg); err != nil {
		errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
		return
	}
	resultChan <- &dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
			fmt.Println("Config 配置文件加载完毕")
		case d := <-dcfgChan:
			dcfg = d
			fmt.Println("DataConfig 配置文件加载完毕")
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	// 使用固定格式字符串
	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
// 用于从JSON字符串解析Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
// 用于将Duration序列化为JSON字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (dc *DataConfig) GetSummaryCol(key string) string {
	mu.RLock()
	defer mu.RUnlock()
	return dc.Summary[key]
}

func (dc *DataConfig) SetSummaryCol(key, value string) {
	mu.Lock()
	defer mu.Unlock()
	if dc.Summary == nil {
		dc.Summary = make(map[string]string)
	}
	dc.Summary[key] = value
}

func (dc *DataConfig) GetEntity(kind string) (Entity, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := dc.Entities[kind]
	return e, ok
}

// EntityKinds 返回已配置的实体种类(字典序，保证遍历顺序稳定)
func (dc *DataConfig) EntityKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(dc.Entities))
	for k := range dc.Entities {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Style 返回图表样式，未配置的字段填充默认值
func (dc *DataConfig) Style() ChartStyle {
	mu.RLock()
	st := dc.Chart
	mu.RUnlock()

	if st.ComboWidth == "" {
		st.ComboWidth = "750px"
	}
	if st.ComboHeight == "" {
		st.ComboHeight = "420px"
	}
	if st.GeoWidth == "" {
		st.GeoWidth = "900px"
	}
	if st.GeoHeight == "" {
		st.GeoHeight = "500px"
	}
	if st.BarColor == "" {
		st.BarColor = "blue"
	}
	if st.BarOpacity == 0 {
		st.BarOpacity = 0.7
	}
	if st.LineColor == "" {
		st.LineColor = "red"
	}
	if st.LineWidth == 0 {
		st.LineWidth = 3
	}
	if st.XRotate == 0 {
		st.XRotate = 90
	}
	if len(st.GeoColors) == 0 {
		// Inferno反向色带的五个锚点
		st.GeoColors = []string{"#fcffa4", "#f98e09", "#bc3754", "#57106e", "#000004"}
	}
	if st.PointOpacity == 0 {
		st.PointOpacity = 0.8
	}
	if st.SizeFactor == 0 {
		st.SizeFactor = 20
	}
	if st.SizeOffset == 0 {
		st.SizeOffset = 5
	}
	return st
}
