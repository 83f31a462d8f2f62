// Package config loads nidsguard settings from a file, NIDSGUARD_* environment variables
// and built-in defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/hed1ad/nidsguard/pkg/ensemble"
)

// Config represents the top-level configuration
type Config struct {
	Detector DetectorConfig `mapstructure:"detector"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// DetectorConfig holds the ensemble hyperparameters
type DetectorConfig struct {
	K                  int      `mapstructure:"k"`
	NFI                int      `mapstructure:"n_fi"`
	CAttack            float64  `mapstructure:"c_attack"`
	CNormal            float64  `mapstructure:"c_normal"`
	CategoricalColumns []string `mapstructure:"categorical_columns"`
	Trees              int      `mapstructure:"trees"`
	MaxSamples         int      `mapstructure:"max_samples"`
	Seed               int64    `mapstructure:"seed"`
	ImportanceTrees    int      `mapstructure:"importance_trees"`
	BatchSize          int      `mapstructure:"batch_size"`
	NInit              int      `mapstructure:"n_init"`
	MaxIter            int      `mapstructure:"max_iter"`
	Tol                float64  `mapstructure:"tol"`
}

// DatasetConfig describes the labeled CSV used for fitting and evaluation
type DatasetConfig struct {
	Path         string   `mapstructure:"path"`
	LabelColumn  string   `mapstructure:"label_column"`
	DropColumns  []string `mapstructure:"drop_columns"`
	NRows        int      `mapstructure:"nrows"`         // 0 reads every row
	FixImbalance bool     `mapstructure:"fix_imbalance"` // keep nrows/2 rows of each class
	DropInvalid  bool     `mapstructure:"drop_invalid"`  // drop rows with unparsable numeric cells
	TopColumn    string   `mapstructure:"top_column"`
	TopValues    int      `mapstructure:"top_values"` // n most frequent top_column values; 0 keeps all
	TestSize     float64  `mapstructure:"test_size"`
	SplitSeed    int64    `mapstructure:"split_seed"`
}

// LoggingConfig holds logging-specific configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
	File   string `mapstructure:"file"`   // Path to log file
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	// Textfile is written in the node exporter textfile format when the command exits.
	Textfile string `mapstructure:"textfile"`
}

// Load loads the configuration from the specified file and environment.
func Load(configPath string) (*Config, error) {
	return LoadFs(afero.NewOsFs(), configPath)
}

// LoadFs is Load reading the configuration file from fs.
func LoadFs(fs afero.Fs, configPath string) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)

	setDefaultConfig(v)

	v.SetEnvPrefix("NIDSGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug().Str("config_file", configPath).Msg("Loaded configuration file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that are not validated by the ensemble itself.
func (c *Config) Validate() error {
	if c.Dataset.TestSize <= 0 || c.Dataset.TestSize >= 1 {
		return fmt.Errorf("dataset.test_size %v outside (0, 1)", c.Dataset.TestSize)
	}
	if c.Dataset.NRows < 0 {
		return fmt.Errorf("dataset.nrows %d is negative", c.Dataset.NRows)
	}
	if c.Dataset.TopValues > 0 && c.Dataset.TopColumn == "" {
		return fmt.Errorf("dataset.top_values needs dataset.top_column")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not console or json", c.Logging.Format)
	}
	return c.Detector.EnsembleConfig().Validate()
}

// EnsembleConfig maps the detector section onto the ensemble configuration.
func (d DetectorConfig) EnsembleConfig() ensemble.Config {
	return ensemble.Config{
		K:                  d.K,
		NFI:                d.NFI,
		CAttack:            d.CAttack,
		CNormal:            d.CNormal,
		CategoricalColumns: append([]string(nil), d.CategoricalColumns...),
		Trees:              d.Trees,
		MaxSamples:         d.MaxSamples,
		ImportanceTrees:    d.ImportanceTrees,
		BatchSize:          d.BatchSize,
		NInit:              d.NInit,
		MaxIter:            d.MaxIter,
		Tol:                d.Tol,
		Seed:               d.Seed,
	}
}

func setDefaultConfig(v *viper.Viper) {
	def := ensemble.DefaultConfig()

	// Detector defaults
	v.SetDefault("detector.k", def.K)
	v.SetDefault("detector.n_fi", def.NFI)
	v.SetDefault("detector.c_attack", def.CAttack)
	v.SetDefault("detector.c_normal", def.CNormal)
	v.SetDefault("detector.categorical_columns", []string{"proto", "service", "state"})
	v.SetDefault("detector.trees", def.Trees)
	v.SetDefault("detector.max_samples", def.MaxSamples)
	v.SetDefault("detector.seed", def.Seed)
	v.SetDefault("detector.importance_trees", def.ImportanceTrees)
	v.SetDefault("detector.batch_size", def.BatchSize)
	v.SetDefault("detector.n_init", def.NInit)
	v.SetDefault("detector.max_iter", def.MaxIter)
	v.SetDefault("detector.tol", def.Tol)

	// Dataset defaults
	v.SetDefault("dataset.path", "")
	v.SetDefault("dataset.label_column", "Label")
	v.SetDefault("dataset.drop_columns", []string{"srcip", "dstip", "attack_cat"})
	v.SetDefault("dataset.nrows", 0)
	v.SetDefault("dataset.fix_imbalance", false)
	v.SetDefault("dataset.drop_invalid", true)
	v.SetDefault("dataset.top_column", "srcip")
	v.SetDefault("dataset.top_values", 0)
	v.SetDefault("dataset.test_size", 0.3)
	v.SetDefault("dataset.split_seed", 42)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")

	// Metrics defaults
	v.SetDefault("metrics.textfile", "")
}
