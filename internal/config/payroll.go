package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// FeedColumns names the header labels read from the two uploaded feeds.
type FeedColumns struct {
	OrderID     string `mapstructure:"orderIdColumn"`
	OrderNumber string `mapstructure:"orderNumberColumn"`
	Plan        string `mapstructure:"planColumn"`
	Agent       string `mapstructure:"agentColumn"`
	PayoutPlan  string `mapstructure:"payoutPlanColumn"`
	Payout      string `mapstructure:"payoutColumn"`
	InstallDate string `mapstructure:"installDateColumn"`
}

type FeedConfig struct {
	Delimiter   string      `mapstructure:"delimiter"`
	DateLayouts []string    `mapstructure:"dateLayouts"`
	Columns     FeedColumns `mapstructure:"columns"`
}

// PayrollConfig holds the business rules that operators may tune without a deploy.
type PayrollConfig struct {
	OverdueThresholdDays int        `mapstructure:"overdueThresholdDays"`
	Feed                 FeedConfig `mapstructure:"feed"`
}

func DefaultPayrollConfig() PayrollConfig {
	return PayrollConfig{
		OverdueThresholdDays: 90,
		Feed: FeedConfig{
			Delimiter: ",",
			DateLayouts: []string{
				"2006-01-02",
				"2006-01-02 15:04:05",
				"2006-01-02T15:04:05Z07:00",
				"1/2/2006",
				"01/02/2006",
				"1/2/06",
				"1/2/2006 15:04",
				"1/2/2006 3:04:05 PM",
				"Jan 2, 2006",
				"January 2, 2006",
				"2 Jan 2006",
			},
			Columns: FeedColumns{
				OrderID:     "Order Id",
				OrderNumber: "Order Number",
				Plan:        "Internet Speed",
				Agent:       "Agent Seller Information",
				PayoutPlan:  "Plan Name",
				Payout:      "Payout",
				InstallDate: "Day Of",
			},
		},
	}
}

// DelimiterRune returns the configured delimiter, defaulting to a comma.
func (f FeedConfig) DelimiterRune() rune {
	d := f.Delimiter
	if d == `\t` || strings.EqualFold(d, "tab") {
		return '\t'
	}
	for _, r := range d {
		return r
	}
	return ','
}

type PayrollConfigHolder struct {
	current atomic.Value // holds PayrollConfig
}

// NewStaticPayrollConfigHolder wraps a fixed config; used by tests and tools.
func NewStaticPayrollConfigHolder(cfg PayrollConfig) *PayrollConfigHolder {
	holder := &PayrollConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewPayrollConfigHolder(appCfg Config) (*PayrollConfigHolder, error) {
	v := viper.New()

	if appCfg.PayrollConfigPath != "" {
		v.SetConfigFile(appCfg.PayrollConfigPath)
	} else {
		v.SetConfigName("payroll")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/payrollrecon")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PAYROLL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPayrollConfig()
	v.SetDefault("payroll.overdueThresholdDays", defaults.OverdueThresholdDays)
	v.SetDefault("payroll.feed.delimiter", defaults.Feed.Delimiter)
	v.SetDefault("payroll.feed.dateLayouts", defaults.Feed.DateLayouts)
	v.SetDefault("payroll.feed.columns.orderIdColumn", defaults.Feed.Columns.OrderID)
	v.SetDefault("payroll.feed.columns.orderNumberColumn", defaults.Feed.Columns.OrderNumber)
	v.SetDefault("payroll.feed.columns.planColumn", defaults.Feed.Columns.Plan)
	v.SetDefault("payroll.feed.columns.agentColumn", defaults.Feed.Columns.Agent)
	v.SetDefault("payroll.feed.columns.payoutPlanColumn", defaults.Feed.Columns.PayoutPlan)
	v.SetDefault("payroll.feed.columns.payoutColumn", defaults.Feed.Columns.Payout)
	v.SetDefault("payroll.feed.columns.installDateColumn", defaults.Feed.Columns.InstallDate)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read payroll config: %w", err)
		}
		found = false
	}

	var cfg PayrollConfig
	if err := v.UnmarshalKey("payroll", &cfg); err != nil {
		return nil, err
	}
	if err := validatePayrollConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticPayrollConfigHolder(cfg)
	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PayrollConfig
		if err := v.UnmarshalKey("payroll", &updated); err != nil {
			zap.L().Warn("payroll config reload failed", zap.Error(err))
			return
		}
		if err := validatePayrollConfig(updated); err != nil {
			zap.L().Warn("invalid payroll config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		zap.L().Info("payroll config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *PayrollConfigHolder) Get() PayrollConfig {
	return h.current.Load().(PayrollConfig)
}

func validatePayrollConfig(cfg PayrollConfig) error {
	if cfg.OverdueThresholdDays <= 0 {
		return errors.New("payroll.overdueThresholdDays must be positive")
	}
	if len(cfg.Feed.DateLayouts) == 0 {
		return errors.New("payroll.feed.dateLayouts cannot be empty")
	}
	cols := cfg.Feed.Columns
	for name, value := range map[string]string{
		"orderIdColumn":     cols.OrderID,
		"orderNumberColumn": cols.OrderNumber,
		"planColumn":        cols.Plan,
		"agentColumn":       cols.Agent,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("payroll.feed.columns.%s cannot be empty", name)
		}
	}
	return nil
}
