package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// DateLayout is the USGS startDT/endDT format.
const DateLayout = "2006-01-02"

// Config holds all service settings, populated from environment variables.
type Config struct {
	USGSBaseURL     string
	USGSStateCode   string
	USGSStartDate   string
	USGSEndDate     string
	USGSSiteType    string
	USGSParameterCd string
	USGSTimeout     time.Duration

	OutputPath string

	// Kafka sink configuration.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	ScheduleInterval time.Duration
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first if present; real
// environment variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	usgsTimeout, err := parsePositiveDuration("USGS_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	interval, err := time.ParseDuration(sharedcfg.EnvOrDefault("SCHEDULE_INTERVAL", "0s"))
	if err != nil || interval < 0 {
		return nil, errors.New("invalid SCHEDULE_INTERVAL")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		USGSBaseURL:     sharedcfg.EnvOrDefault("USGS_BASE_URL", "https://waterservices.usgs.gov/nwis/iv/"),
		USGSStateCode:   sharedcfg.EnvOrDefault("USGS_STATE_CD", "tx"),
		USGSStartDate:   sharedcfg.EnvOrDefault("USGS_START_DT", "2022-06-21"),
		USGSEndDate:     sharedcfg.EnvOrDefault("USGS_END_DT", "2022-09-22"),
		USGSSiteType:    sharedcfg.EnvOrDefault("USGS_SITE_TYPE", "GW"),
		USGSParameterCd: os.Getenv("USGS_PARAMETER_CD"),
		USGSTimeout:     usgsTimeout,

		OutputPath: sharedcfg.EnvOrDefault("OUTPUT_PATH", "artifacts/results.csv"),

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "groundwater-levels"),
		KafkaEnabled: kafkaEnabled,

		ScheduleInterval: interval,
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.USGSBaseURL == "" {
		return errors.New("USGS_BASE_URL is required")
	}
	if c.USGSStateCode == "" {
		return errors.New("USGS_STATE_CD is required")
	}
	start, err := time.Parse(DateLayout, c.USGSStartDate)
	if err != nil {
		return fmt.Errorf("invalid USGS_START_DT: %w", err)
	}
	end, err := time.Parse(DateLayout, c.USGSEndDate)
	if err != nil {
		return fmt.Errorf("invalid USGS_END_DT: %w", err)
	}
	if end.Before(start) {
		return errors.New("USGS_END_DT is before USGS_START_DT")
	}
	if c.OutputPath == "" {
		return errors.New("OUTPUT_PATH is required")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if c.KafkaEnabled && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required")
	}
	return nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
