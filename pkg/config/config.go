package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Pairs  []string `yaml:"pairs"`
	Signal struct {
		Timeframe       string             `yaml:"timeframe"`
		HistoryBars     int                `yaml:"history_bars"`
		FusionMethod    string             `yaml:"fusion_method"`
		MinConfidence   float64            `yaml:"min_confidence"`
		MinAgreement    float64            `yaml:"min_agreement"`
		Deadband        float64            `yaml:"deadband"`
		Indicators      []string           `yaml:"indicators"`
		Weights         map[string]float64 `yaml:"weights"`
		EMA struct {
			Fast  int `yaml:"fast"`
			Slow  int `yaml:"slow"`
			Trend int `yaml:"trend"`
		} `yaml:"ema"`
		RSI struct {
			Period     int     `yaml:"period"`
			Oversold   float64 `yaml:"oversold"`
			Overbought float64 `yaml:"overbought"`
		} `yaml:"rsi"`
		MACD struct {
			Fast   int `yaml:"fast"`
			Slow   int `yaml:"slow"`
			Signal int `yaml:"signal"`
		} `yaml:"macd"`
		SR struct {
			Lookback     int     `yaml:"lookback"`
			PivotWindow  int     `yaml:"pivot_window"`
			ProximityPct float64 `yaml:"proximity_pct"`
			MinTouches   int     `yaml:"min_touches"`
		} `yaml:"support_resistance"`
	} `yaml:"signal"`
	Risk struct {
		AccountBalance      float64 `yaml:"account_balance"`
		RiskPerTrade        float64 `yaml:"risk_per_trade"`
		ATRMultiplier       float64 `yaml:"atr_multiplier"`
		ATRPeriod           int     `yaml:"atr_period"`
		MinPositionSize     float64 `yaml:"min_position_size"`
		MaxPositionSize     float64 `yaml:"max_position_size"`
		MaxLeverage         float64 `yaml:"max_leverage"`
		StopLossMethod      string  `yaml:"stop_loss_method"`
		StopLossPct         float64 `yaml:"stop_loss_pct"`
		SRBufferPct         float64 `yaml:"sr_buffer_pct"`
		RiskRewardRatio     float64 `yaml:"risk_reward_ratio"`
		MinRiskReward       float64 `yaml:"min_risk_reward"`
		TakeProfitTargets   int     `yaml:"take_profit_targets"`
		UseKelly            bool    `yaml:"use_kelly"`
		KellyFraction       float64 `yaml:"kelly_fraction"`
		MaxKellyFraction    float64 `yaml:"max_kelly_fraction"`
		KellyMinTrades      int     `yaml:"kelly_min_trades"`
		MaxPositionValuePct float64 `yaml:"max_position_value_pct"`
		MaxOpenTrades       int     `yaml:"max_open_trades"`
		MaxDailyLossPct     float64 `yaml:"max_daily_loss_pct"`
		MaxExposurePct      float64 `yaml:"max_exposure_pct"`
	} `yaml:"risk"`
	Position struct {
		EnableDryRun          bool          `yaml:"enable_dry_run"`
		MaxRetries            int           `yaml:"max_retries"`
		RetryBackoff          time.Duration `yaml:"retry_backoff"`
		EnableTrailingStop    bool          `yaml:"enable_trailing_stop"`
		TrailingDistancePct   float64       `yaml:"trailing_distance_pct"`
		TrailingActivationPct float64       `yaml:"trailing_activation_pct"`
	} `yaml:"position"`
	Gateway struct {
		BaseURL      string        `yaml:"base_url"`
		APIKey       string        `yaml:"api_key"`
		APISecret    string        `yaml:"api_secret"`
		Timeout      time.Duration `yaml:"timeout"`
		OrdersPerSec int           `yaml:"orders_per_sec"`
	} `yaml:"gateway"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Queue    struct {
			Name       string        `yaml:"name"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
		} `yaml:"queue"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		TicksTopic   string   `yaml:"ticks_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID  string `yaml:"group_id"`
			MinBytes int    `yaml:"min_bytes"`
			MaxBytes int    `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Cache struct {
		MemoryTTL time.Duration `yaml:"memory_ttl"`
		RedisTTL  time.Duration `yaml:"redis_ttl"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PAIRS"); v != "" {
		c.Pairs = strings.Split(v, ",")
	}
	if v := os.Getenv("GATEWAY_URL"); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := os.Getenv("GATEWAY_API_KEY"); v != "" {
		c.Gateway.APIKey = v
	}
	if v := os.Getenv("GATEWAY_API_SECRET"); v != "" {
		c.Gateway.APISecret = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	s := &c.Signal
	if s.Timeframe == "" {
		s.Timeframe = "1h"
	}
	if s.HistoryBars == 0 {
		s.HistoryBars = 100
	}
	if s.FusionMethod == "" {
		s.FusionMethod = "weighted_average"
	}
	if s.MinConfidence == 0 {
		s.MinConfidence = 0.6
	}
	if s.MinAgreement == 0 {
		s.MinAgreement = 0.6
	}
	if s.Deadband == 0 {
		s.Deadband = 0.1
	}
	if len(s.Indicators) == 0 {
		s.Indicators = []string{"ema", "rsi", "macd", "support_resistance"}
	}
	if len(s.Weights) == 0 {
		s.Weights = map[string]float64{"ema": 1.0, "rsi": 1.0, "macd": 1.0, "support_resistance": 1.0}
	}
	if s.EMA.Fast == 0 {
		s.EMA.Fast, s.EMA.Slow, s.EMA.Trend = 9, 21, 50
	}
	if s.RSI.Period == 0 {
		s.RSI.Period = 14
	}
	if s.RSI.Oversold == 0 {
		s.RSI.Oversold = 30
	}
	if s.RSI.Overbought == 0 {
		s.RSI.Overbought = 70
	}
	if s.MACD.Fast == 0 {
		s.MACD.Fast, s.MACD.Slow, s.MACD.Signal = 12, 26, 9
	}
	if s.SR.Lookback == 0 {
		s.SR.Lookback = 50
	}
	if s.SR.PivotWindow == 0 {
		s.SR.PivotWindow = 5
	}
	if s.SR.ProximityPct == 0 {
		s.SR.ProximityPct = 1.5
	}
	if s.SR.MinTouches == 0 {
		s.SR.MinTouches = 2
	}

	r := &c.Risk
	if r.AccountBalance == 0 {
		r.AccountBalance = 10000
	}
	if r.RiskPerTrade == 0 {
		r.RiskPerTrade = 0.02
	}
	if r.ATRMultiplier == 0 {
		r.ATRMultiplier = 2.0
	}
	if r.ATRPeriod == 0 {
		r.ATRPeriod = 14
	}
	if r.MinPositionSize == 0 {
		r.MinPositionSize = 0.001
	}
	if r.MaxPositionSize == 0 {
		r.MaxPositionSize = 1.0
	}
	if r.MaxLeverage == 0 {
		r.MaxLeverage = 3.0
	}
	if r.StopLossMethod == "" {
		r.StopLossMethod = "atr"
	}
	if r.StopLossPct == 0 {
		r.StopLossPct = 2.0
	}
	if r.SRBufferPct == 0 {
		r.SRBufferPct = 0.5
	}
	if r.RiskRewardRatio == 0 {
		r.RiskRewardRatio = 2.0
	}
	if r.MinRiskReward == 0 {
		r.MinRiskReward = 1.5
	}
	if r.TakeProfitTargets == 0 {
		r.TakeProfitTargets = 2
	}
	if r.KellyFraction == 0 {
		r.KellyFraction = 0.5
	}
	if r.MaxKellyFraction == 0 {
		r.MaxKellyFraction = 0.25
	}
	if r.KellyMinTrades == 0 {
		r.KellyMinTrades = 20
	}
	if r.MaxPositionValuePct == 0 {
		r.MaxPositionValuePct = 20
	}
	if r.MaxOpenTrades == 0 {
		r.MaxOpenTrades = 5
	}
	if r.MaxDailyLossPct == 0 {
		r.MaxDailyLossPct = 5
	}
	if r.MaxExposurePct == 0 {
		r.MaxExposurePct = 50
	}

	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	p := &c.Position
	if p.MaxRetries == 0 {
		p.MaxRetries = 3
	}
	if p.RetryBackoff == 0 {
		p.RetryBackoff = time.Second
	}
	if p.TrailingDistancePct == 0 {
		p.TrailingDistancePct = 2.0
	}
	if p.TrailingActivationPct == 0 {
		p.TrailingActivationPct = 1.0
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Pairs) == 0 {
		return fmt.Errorf("pairs cannot be empty")
	}
	switch c.Signal.FusionMethod {
	case "weighted_average", "majority_vote", "conservative", "aggressive":
	default:
		return fmt.Errorf("signal.fusion_method must be one of weighted_average, majority_vote, conservative, aggressive, got '%s'", c.Signal.FusionMethod)
	}
	switch c.Risk.StopLossMethod {
	case "atr", "fixed_pct", "support_resistance":
	default:
		return fmt.Errorf("risk.stop_loss_method must be one of atr, fixed_pct, support_resistance, got '%s'", c.Risk.StopLossMethod)
	}
	if c.Risk.RiskPerTrade <= 0 || c.Risk.RiskPerTrade > 0.1 {
		return fmt.Errorf("risk.risk_per_trade must be in (0, 0.1], got %v", c.Risk.RiskPerTrade)
	}
	if c.Risk.RiskRewardRatio < c.Risk.MinRiskReward {
		return fmt.Errorf("risk.risk_reward_ratio %v below minimum %v", c.Risk.RiskRewardRatio, c.Risk.MinRiskReward)
	}
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
