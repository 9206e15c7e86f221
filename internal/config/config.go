package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Env        string           `mapstructure:"env" yaml:"env"` // 环境: development, production
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	CORS       CORSConfig       `mapstructure:"cors" yaml:"cors"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit" yaml:"rate_limit"`
	Tracing    TracingConfig    `mapstructure:"tracing" yaml:"tracing"`
	TaskSystem TaskSystemConfig `mapstructure:"task_system" yaml:"task_system"`
	Ledger     LedgerConfig     `mapstructure:"ledger" yaml:"ledger"`
	Submission SubmissionConfig `mapstructure:"submission" yaml:"submission"`
	Form       FormConfig       `mapstructure:"form" yaml:"form"`
	Worksheet  WorksheetConfig  `mapstructure:"worksheet" yaml:"worksheet"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" yaml:"port"`
	PublicURL string `mapstructure:"public_url" yaml:"public_url"` // 表单回调使用的外部地址
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" yaml:"driver"` // sqlite, postgres
	Path            string `mapstructure:"path" yaml:"path"`     // sqlite 文件路径
	Host            string `mapstructure:"host" yaml:"host"`
	Port            int    `mapstructure:"port" yaml:"port"`
	User            string `mapstructure:"user" yaml:"user"`
	Password        string `mapstructure:"password" yaml:"password"`
	DBName          string `mapstructure:"dbname" yaml:"dbname"`
	SSLMode         string `mapstructure:"sslmode" yaml:"sslmode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`   // 秒
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time" yaml:"conn_max_idle_time"` // 秒
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age" yaml:"max_age"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // 日志级别: debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // 日志格式: json, text
	Output string `mapstructure:"output" yaml:"output"` // 输出位置: stdout, file, both
	Dir    string `mapstructure:"dir" yaml:"dir"`
}

// RateLimitConfig 提交接口限流配置
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled" yaml:"enabled"`
	RPS     float64 `mapstructure:"rps" yaml:"rps"`
	Burst   int     `mapstructure:"burst" yaml:"burst"`
}

// TracingConfig OpenTelemetry 配置
type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	ServiceName    string `mapstructure:"service_name" yaml:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint" yaml:"jaeger_endpoint"`
}

// TaskSystemConfig 任务系统 API 配置
type TaskSystemConfig struct {
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	AccessToken   string        `mapstructure:"access_token" yaml:"access_token"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	DistanceField string        `mapstructure:"distance_field" yaml:"distance_field"` // 回写总里程的自定义字段名
	TaskLinkURL   string        `mapstructure:"task_link_url" yaml:"task_link_url"`   // 任务链接模板, %s 为任务 ID
}

// LedgerConfig 表格账本 API 配置
type LedgerConfig struct {
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	AccessToken string        `mapstructure:"access_token" yaml:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	WorkspaceID int64         `mapstructure:"workspace_id" yaml:"workspace_id"`
	Mileage     SheetConfig   `mapstructure:"mileage" yaml:"mileage"`
	Worksheet   SheetConfig   `mapstructure:"worksheet" yaml:"worksheet"`
}

// SheetConfig 单个表格的定位与列映射
type SheetConfig struct {
	Folder         string          `mapstructure:"folder" yaml:"folder"`
	Sheet          string          `mapstructure:"sheet" yaml:"sheet"`
	TaskIDColumn   string          `mapstructure:"task_id_column" yaml:"task_id_column"`
	DistanceColumn string          `mapstructure:"distance_column" yaml:"distance_column"`
	Columns        []ColumnMapping `mapstructure:"columns" yaml:"columns"`
}

// ColumnMapping 表单字段 ID 到表格列标题的映射
// 使用列表而不是 map: viper 会把 map 的键转成小写
type ColumnMapping struct {
	Field  string `mapstructure:"field" yaml:"field"`
	Column string `mapstructure:"column" yaml:"column"`
}

// ColumnFor 返回表单字段对应的列标题
func (s SheetConfig) ColumnFor(field string) (string, bool) {
	for _, m := range s.Columns {
		if m.Field == field {
			return m.Column, true
		}
	}
	return "", false
}

// SubmissionConfig 提交队列配置
type SubmissionConfig struct {
	JobTimeout        time.Duration `mapstructure:"job_timeout" yaml:"job_timeout"` // 0 表示不限制
	RequireTravelTime bool          `mapstructure:"require_travel_time" yaml:"require_travel_time"`
	AverageSpeedKMH   float64       `mapstructure:"average_speed_kmh" yaml:"average_speed_kmh"`
	PostStory         bool          `mapstructure:"post_story" yaml:"post_story"`
	StoryTemplate     string        `mapstructure:"story_template" yaml:"story_template"`
}

// FormConfig 表单外观与下拉选项
type FormConfig struct {
	Title          string   `mapstructure:"title" yaml:"title"`
	WorksheetTitle string   `mapstructure:"worksheet_title" yaml:"worksheet_title"`
	Workers        []Option `mapstructure:"workers" yaml:"workers"`
	Plates         []Option `mapstructure:"plates" yaml:"plates"`
	Roles          []Option `mapstructure:"roles" yaml:"roles"`
	ProjectLeads   []Option `mapstructure:"project_leads" yaml:"project_leads"`
}

// Option 下拉/单选选项
type Option struct {
	ID    string `mapstructure:"id" yaml:"id"`
	Label string `mapstructure:"label" yaml:"label"`
}

// WorksheetConfig 外部工单提交后续任务配置
type WorksheetConfig struct {
	FollowUpProjectID string          `mapstructure:"follow_up_project_id" yaml:"follow_up_project_id"`
	FollowUpAssignee  string          `mapstructure:"follow_up_assignee" yaml:"follow_up_assignee"`
	CustomFields      []ColumnMapping `mapstructure:"custom_fields" yaml:"custom_fields"` // 表单字段 -> 自定义字段名; 枚举字段按选项名解析
}

// Load 加载配置,支持配置文件和环境变量
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.ledger-bridge")
		// 忽略配置文件不存在的错误,使用默认值
		_ = v.ReadInConfig()
	}

	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// IsProduction 判断是否为生产环境
func IsProduction(cfg *Config) bool {
	if cfg == nil {
		return false
	}
	return cfg.Env == "production"
}

// Default 返回默认配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// bindEnv 环境变量: APP_ 前缀,并兼容旧部署使用的变量名
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("task_system.access_token", "APP_TASK_SYSTEM_ACCESS_TOKEN", "ASANA_ACCESS_TOKEN")
	_ = v.BindEnv("ledger.access_token", "APP_LEDGER_ACCESS_TOKEN", "SMARTSHEET_ACCESS_TOKEN")
	_ = v.BindEnv("server.port", "APP_SERVER_PORT", "PORT")
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	env := v.GetString("env")
	if env == "" {
		env = os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
		}
	}
	v.SetDefault("env", env)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.public_url", "http://localhost:8000")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "ledger-bridge.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "ledger_bridge")
	v.SetDefault("database.sslmode", "disable")
	if env == "production" {
		v.SetDefault("database.max_idle_conns", 5)
		v.SetDefault("database.max_open_conns", 20)
		v.SetDefault("database.conn_max_lifetime", 3600) // 1 小时
		v.SetDefault("database.conn_max_idle_time", 300) // 5 分钟
	} else {
		v.SetDefault("database.max_idle_conns", 2)
		v.SetDefault("database.max_open_conns", 10)
		v.SetDefault("database.conn_max_lifetime", 3600)
		v.SetDefault("database.conn_max_idle_time", 600)
	}

	v.SetDefault("cors.allowed_origins", []string{"https://app.asana.com"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.max_age", 86400)

	if env == "production" {
		v.SetDefault("log.level", "info")
		v.SetDefault("log.format", "json")
	} else {
		v.SetDefault("log.level", "debug")
		v.SetDefault("log.format", "text")
	}
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.dir", "logs")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 5)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "ledger-bridge")
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")

	v.SetDefault("task_system.base_url", "https://app.asana.com/api/1.0")
	v.SetDefault("task_system.timeout", 15*time.Second)
	v.SetDefault("task_system.distance_field", "Kilométer")
	v.SetDefault("task_system.task_link_url", "https://app.asana.com/0/0/%s")

	v.SetDefault("ledger.base_url", "https://api.smartsheet.com/2.0")
	v.SetDefault("ledger.timeout", 30*time.Second)
	v.SetDefault("ledger.workspace_id", 0)
	v.SetDefault("ledger.mileage.folder", "ASANA Proba")
	v.SetDefault("ledger.mileage.sheet", "Projektköltségek")
	v.SetDefault("ledger.mileage.task_id_column", "ASANA TaskID")
	v.SetDefault("ledger.mileage.distance_column", "Távolság")
	v.SetDefault("ledger.mileage.columns", []map[string]interface{}{
		{"field": "ProjectNumber_SL", "column": "Projektszám"},
		{"field": "ProjectName_SL", "column": "Projektnév"},
		{"field": "AsanaTaskName_SL", "column": "ASANA TaskName"},
		{"field": "Worker_dropdown", "column": "Munkavégző"},
		{"field": "date", "column": "Munkavégzés dátuma"},
		{"field": "Distance_SL", "column": "Távolság"},
		{"field": "Distance_Time_SL", "column": "Beírt útidő (ó)"},
		{"field": "radio_button", "column": "Szerepkör"},
		{"field": "PlateNumber_dropdown", "column": "Rendszám"},
		{"field": "AsanaTaskID_SL", "column": "ASANA TaskID"},
		{"field": "UserID", "column": "UserID"},
		{"field": "AsanaTaskLink", "column": "ASANA TaskLink"},
	})
	v.SetDefault("ledger.worksheet.folder", "ASANA Proba")
	v.SetDefault("ledger.worksheet.sheet", "Külsős munkalap")
	v.SetDefault("ledger.worksheet.columns", []map[string]interface{}{
		{"field": "ProjectNumber_SL", "column": "Projektszám"},
		{"field": "Worker_dropdown", "column": "Munkavégző"},
		{"field": "date", "column": "Munkavégzés dátuma"},
		{"field": "PV_dropdown", "column": "Projektvezető"},
		{"field": "PV_Leiras_ML", "column": "Projektvezető leírása"},
	})

	v.SetDefault("submission.job_timeout", 60*time.Second)
	v.SetDefault("submission.require_travel_time", false)
	v.SetDefault("submission.average_speed_kmh", 70.0)
	v.SetDefault("submission.post_story", false)
	v.SetDefault("submission.story_template", "Kilométer rögzítve: %s km (összesen: %s km)")

	v.SetDefault("form.title", "Kilométer költség")
	v.SetDefault("form.worksheet_title", "Külsős munkalap")
	v.SetDefault("form.workers", []map[string]interface{}{
		{"id": "banyai.gabor@promir.hu", "label": "Bányai Gábor"},
		{"id": "bozoki.robert@promir.hu", "label": "Bozóki Róbert"},
		{"id": "bondar.balazs@promir.hu", "label": "Bondár Balázs"},
		{"id": "deak.adam@promir.hu", "label": "Deák Ádám"},
		{"id": "keller.zoltan@promir.hu", "label": "Keller Zoltán"},
		{"id": "klein.antal@promir.hu", "label": "Klein Antal"},
		{"id": "mendei.arpad@promir.hu", "label": "Mendei Árpád"},
		{"id": "palecska.gabor@promir.hu", "label": "Palecska Gábor"},
		{"id": "sinka.balazs@promir.hu", "label": "Sinka Balázs"},
		{"id": "szancsik.ferenc@promir.hu", "label": "Szancsik Ferenc"},
		{"id": "szepesi.robert@promir.hu", "label": "Szepesi Róbert"},
		{"id": "szollosi.sandor@promir.hu", "label": "Szöllősi Sándor"},
		{"id": "vargatot@promir.hu", "label": "Varga-Tóth István"},
		{"id": "vtadam@promir.hu", "label": "Varga-Tóth Ádám"},
	})
	v.SetDefault("form.plates", []map[string]interface{}{
		{"id": "AEPD-619", "label": "AEPD-619"},
		{"id": "AEDH-132", "label": "AEDH-132"},
		{"id": "AELE-490", "label": "AELE-490"},
		{"id": "MBN-927", "label": "MBN-927"},
		{"id": "MTF-396", "label": "MTF-396"},
		{"id": "NEK-593", "label": "NEK-593"},
		{"id": "NYP-188", "label": "NYP-188"},
		{"id": "PWF-261", "label": "PWF-261"},
		{"id": "RMZ-496", "label": "RMZ-496"},
		{"id": "RSJ-356", "label": "RSJ-356"},
		{"id": "SDS-109", "label": "SDS-109"},
		{"id": "SKV-930", "label": "SKV-930"},
		{"id": "TFG-467", "label": "TFG-467"},
		{"id": "TGK-267", "label": "TGK-267"},
		{"id": "LWF-099", "label": "LWF-099"},
		{"id": "MVU-936", "label": "MVU-936"},
		{"id": "PSG-689", "label": "PSG-689"},
		{"id": "PSG-690", "label": "PSG-690"},
		{"id": "GÉPKOCSI", "label": "GÉPKOCSI"},
		{"id": "UTAS", "label": "UTAS"},
	})
	v.SetDefault("form.roles", []map[string]interface{}{
		{"id": "Alapértelmezett", "label": "Alapértelmezett"},
		{"id": "Programozás", "label": "Programozás"},
		{"id": "PM", "label": "PM"},
		{"id": "Tervezés", "label": "Tervezés"},
		{"id": "Szerelés", "label": "Szerelés"},
		{"id": "Beszerzés", "label": "Beszerzés"},
		{"id": "CRM", "label": "CRM"},
	})

	v.SetDefault("worksheet.follow_up_project_id", "")
	v.SetDefault("worksheet.custom_fields", []map[string]interface{}{
		{"field": "ProjectNumber_SL", "column": "Projektszám"},
		{"field": "PV_dropdown", "column": "Projektvezető"},
	})
}

const redactedValue = "******"

// Redacted 返回隐藏了访问令牌与数据库密码的配置副本
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return redactedValue
	}
	c.TaskSystem.AccessToken = mask(c.TaskSystem.AccessToken)
	c.Ledger.AccessToken = mask(c.Ledger.AccessToken)
	c.Database.Password = mask(c.Database.Password)
	return c
}
