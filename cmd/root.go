package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/secrets"
	"github.com/spigell/hh-screener/internal/server"
	"github.com/spigell/hh-screener/internal/strategy"
)

const (
	app = "hh-screener"
)

type Config struct {
	Job        string                        `mapstructure:"job"`
	Candidates string                        `mapstructure:"candidates"`
	Criteria   *screening.EvaluationCriteria `mapstructure:"criteria"`
	Thresholds *screening.Thresholds         `mapstructure:"thresholds"`
	Keywords   *KeywordsConfig               `mapstructure:"keywords"`
	Scout      *screening.ScoutProfile       `mapstructure:"scout"`
	Batch      *BatchConfig                  `mapstructure:"batch"`
	AI         *AIConfig                     `mapstructure:"ai"`
	Server     *ServerConfig                 `mapstructure:"server"`
}

// KeywordsConfig replaces the built-in keyword tables. Empty entries keep the defaults.
type KeywordsConfig struct {
	Education         []screening.LevelKeyword `mapstructure:"education"`
	EducationFallback float64                  `mapstructure:"education-fallback"`
	MajorCities       []string                 `mapstructure:"major-cities"`
	Teamwork          []string                 `mapstructure:"teamwork"`
}

type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type AIConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Provider  string        `mapstructure:"provider"`
	CacheSize int           `mapstructure:"cache-size"`
	CacheTTL  time.Duration `mapstructure:"cache-ttl"`
	Gemini    *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	MaxRetries   int           `mapstructure:"max-retries"`
	RetryDelay   time.Duration `mapstructure:"retry-delay"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

type ServerConfig struct {
	Addr           string           `mapstructure:"addr"`
	TrustedProxies []string         `mapstructure:"trusted-proxies"`
	RateLimit      server.RateLimit `mapstructure:"rate-limit"`
}

var (
	// Used for flags.
	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-screener scores candidate pools against a job description and ranks them",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults()
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-screener.yaml in current directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "a dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().Bool("json", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	criteria := screening.DefaultCriteria()
	viper.SetDefault("criteria.skills-weight", criteria.SkillsWeight)
	viper.SetDefault("criteria.experience-weight", criteria.ExperienceWeight)
	viper.SetDefault("criteria.education-weight", criteria.EducationWeight)
	viper.SetDefault("criteria.salary-weight", criteria.SalaryWeight)
	viper.SetDefault("criteria.location-weight", criteria.LocationWeight)
	viper.SetDefault("criteria.cultural-fit-weight", criteria.CulturalFitWeight)

	thresholds := screening.DefaultThresholds()
	viper.SetDefault("thresholds.excellent", thresholds.Excellent)
	viper.SetDefault("thresholds.good", thresholds.Good)
	viper.SetDefault("thresholds.acceptable", thresholds.Acceptable)

	scout := screening.DefaultScoutProfile()
	viper.SetDefault("scout.company", scout.Company)
	viper.SetDefault("scout.sender", scout.Sender)

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.cache-size", strategy.DefaultCacheSize)
	viper.SetDefault("ai.cache-ttl", strategy.DefaultCacheTTL)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.rate-limit.requests", 30)
	viper.SetDefault("server.rate-limit.window", time.Minute)
}

func initConfig() {
	// Only commands doing the screening need the config.
	if screenCmd.CalledAs() == "" && serveCmd.CalledAs() == "" {
		return
	}

	if err := secrets.LoadDotEnv(envFile); err != nil {
		log.Fatal(err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// An explicit config file must be readable; the default one is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
