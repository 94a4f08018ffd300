package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Collector CollectorConfig
	Catalog   CatalogConfig
	Analysis  AnalysisConfig
	Taxonomy  TaxonomyConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLHours int
}

type CollectorConfig struct {
	BaseURL         string
	ScrollStep      int
	ScrollTolerance int
	ScrollDelayMS   int
	NoNewLimit      int
	NoScrollLimit   int
	MaxIterations   int
	NavTimeoutSec   int
	WaitTimeoutSec  int
	Headless        bool
}

type CatalogConfig struct {
	BaseURL      string
	ItemsPerPage int
	TimeoutSec   int
	UserAgent    string
}

type AnalysisConfig struct {
	LexiconPath     string
	MinKeywordCount int
	MaxSamples      int
	SampleLength    int
}

type TaxonomyConfig struct {
	TriggerPath   string
	ExclusionPath string
	CandidatePath string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/reviewlens")

	viper.SetEnvPrefix("REVIEWLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func (c RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("sqlite.path", "./data/reviewlens.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlHours", 24)

	viper.SetDefault("collector.baseURL", "https://global.oliveyoung.com")
	viper.SetDefault("collector.scrollStep", 1200)
	viper.SetDefault("collector.scrollTolerance", 10)
	viper.SetDefault("collector.scrollDelayMS", 100)
	viper.SetDefault("collector.noNewLimit", 50)
	viper.SetDefault("collector.noScrollLimit", 30)
	viper.SetDefault("collector.maxIterations", 9999)
	viper.SetDefault("collector.navTimeoutSec", 60)
	viper.SetDefault("collector.waitTimeoutSec", 15)
	viper.SetDefault("collector.headless", true)

	viper.SetDefault("catalog.baseURL", "https://www.oliveyoung.co.kr/store/main/getBestList.do")
	viper.SetDefault("catalog.itemsPerPage", 48)
	viper.SetDefault("catalog.timeoutSec", 15)
	viper.SetDefault("catalog.userAgent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	viper.SetDefault("analysis.lexiconPath", "./config/lexicon.json")
	viper.SetDefault("analysis.minKeywordCount", 5)
	viper.SetDefault("analysis.maxSamples", 30)
	viper.SetDefault("analysis.sampleLength", 300)

	viper.SetDefault("taxonomy.triggerPath", "./config/trigger_keywords.json")
	viper.SetDefault("taxonomy.exclusionPath", "./config/exclusion_words.json")
	viper.SetDefault("taxonomy.candidatePath", "./config/candidate_keywords.json")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
