package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Planner     PlannerConfig    `mapstructure:"planner"`
	Generation  GenerationConfig `mapstructure:"generation"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Variety     VarietyConfig    `mapstructure:"variety"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// OpenRouterConfig OpenRouter 配置（外部餐點文字生成器）
type OpenRouterConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// PlannerConfig 週計畫組裝設定
type PlannerConfig struct {
	RepairIterations  int  `mapstructure:"repair_iterations"`   // 修復迴圈上限
	MaxRepeatPerWeek  int  `mapstructure:"max_repeat_per_week"` // 單一餐點每週出現上限
	MinCuisines       int  `mapstructure:"min_cuisines"`        // 每週最少不同菜系數
	MaxUniqueIngr     int  `mapstructure:"max_unique_ingr"`     // 每週不同食材上限
	MaxExoticIngr     int  `mapstructure:"max_exotic_ingr"`     // 每週稀有食材上限
	StrictVariety     bool `mapstructure:"strict_variety"`      // 修復失敗時拒絕而非回傳警告
	MinPoolForVariety int  `mapstructure:"min_pool_for_variety"`
}

// GenerationConfig 生成驗證管線設定
type GenerationConfig struct {
	MaxTries      int           `mapstructure:"max_tries"`       // 單一 slot 重新生成上限
	CallTimeout   time.Duration `mapstructure:"call_timeout"`    // 單次外部呼叫超時
	MacroBandPct  float64       `mapstructure:"macro_band_pct"`  // 熱量容許偏差（±）
	ProteinFloorG float64       `mapstructure:"protein_floor_g"` // 正餐最低蛋白質
}

// CacheConfig 計畫結果快取設定
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// VarietyConfig 跨次變化記憶設定
type VarietyConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	TTL       time.Duration `mapstructure:"ttl"`
	Capacity  int           `mapstructure:"capacity"`
	RedisAddr string        `mapstructure:"redis_addr"` // 留空則使用行程內儲存
}

// QueueConfig 生成器併發佇列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件
	if err := godotenv.Load(); err != nil {
		return nil, err
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	viper.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("variety.redis_addr", "VARIETY_REDIS_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration", "openrouter_api_key:", maskAPIKey(viper.GetString("openrouter.api_key")), "openrouter_model:", viper.GetString("openrouter.model"))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "mealplan-generator")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// OpenRouter 設定
	viper.SetDefault("openrouter.enabled", false)
	viper.SetDefault("openrouter.model", "qwen/qwen2.5-vl-72b-instruct:free")
	viper.SetDefault("openrouter.max_tokens", 1200)
	viper.SetDefault("openrouter.timeout", "60s")

	// 週計畫設定
	viper.SetDefault("planner.repair_iterations", 15)
	viper.SetDefault("planner.max_repeat_per_week", 2)
	viper.SetDefault("planner.min_cuisines", 3)
	viper.SetDefault("planner.max_unique_ingr", 45)
	viper.SetDefault("planner.max_exotic_ingr", 4)
	viper.SetDefault("planner.strict_variety", false)
	viper.SetDefault("planner.min_pool_for_variety", 3)

	// 生成管線設定
	viper.SetDefault("generation.max_tries", 4)
	viper.SetDefault("generation.call_timeout", "20s")
	viper.SetDefault("generation.macro_band_pct", 0.10)
	viper.SetDefault("generation.protein_floor_g", 15)

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "5m")
	viper.SetDefault("cache.cleanup_interval", "1m")

	// 變化記憶設定
	viper.SetDefault("variety.enabled", true)
	viper.SetDefault("variety.ttl", "336h") // 兩週
	viper.SetDefault("variety.capacity", 500)
	viper.SetDefault("variety.redis_addr", "")

	// 隊列設定
	viper.SetDefault("queue.workers", 3)
	viper.SetDefault("queue.max_size", 100)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// dedup window 預設
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證變化記憶設定
	if config.Variety.Enabled {
		if config.Variety.Capacity <= 0 {
			return fmt.Errorf("invalid variety capacity")
		}
		if config.Variety.TTL <= 0 {
			return fmt.Errorf("invalid variety ttl")
		}
	}

	// 驗證隊列設定
	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	// 驗證生成管線設定
	if config.Generation.MaxTries <= 0 {
		return fmt.Errorf("invalid generation max tries")
	}
	if config.Planner.RepairIterations <= 0 {
		return fmt.Errorf("invalid planner repair iterations")
	}

	return nil
}
