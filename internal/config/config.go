package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string       `mapstructure:"log_level"`
	Paths    PathsConfig  `mapstructure:"paths"`
	Train    TrainConfig  `mapstructure:"train"`
	Encode   EncodeConfig `mapstructure:"encode"`
	Server   ServerConfig `mapstructure:"server"`
}

type PathsConfig struct {
	CorpusPath string `mapstructure:"corpus_path"`
	ModelPath  string `mapstructure:"model_path"`
}

type TrainConfig struct {
	VocabSize    int    `mapstructure:"vocab_size"`
	Workers      int    `mapstructure:"workers"`
	Pretokenizer string `mapstructure:"pretokenizer"`
	PerLine      bool   `mapstructure:"per_line"`
}

type EncodeConfig struct {
	UnknownID  int  `mapstructure:"unknown_id"`
	MapUnknown bool `mapstructure:"map_unknown"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	MaxTextBytes    int    `mapstructure:"max_text_bytes"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Paths: PathsConfig{
			CorpusPath: "data/corpus.txt",
			ModelPath:  "models/bpe.json",
		},
		Train: TrainConfig{
			VocabSize:    1024,
			Workers:      0,
			Pretokenizer: "regex",
			PerLine:      false,
		},
		Encode: EncodeConfig{
			UnknownID:  0,
			MapUnknown: false,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			Workers:         2,
			MaxTextBytes:    65536,
			RequestTimeout:  30,
			ShutdownTimeout: 30,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("paths-corpus-path", defaults.Paths.CorpusPath, "Training corpus file or directory")
	fs.String("paths-model-path", defaults.Paths.ModelPath, "Tokenizer model file")
	fs.Int("train-vocab-size", defaults.Train.VocabSize, "Target vocabulary size")
	fs.Int("train-workers", defaults.Train.Workers, "Initial-scan worker count (0 = number of CPUs)")
	fs.String("train-pretokenizer", defaults.Train.Pretokenizer, "Pretokenizer name (whitespace|regex)")
	fs.Bool("train-per-line", defaults.Train.PerLine, "Treat each corpus line as its own document")
	fs.Int("encode-unknown-id", defaults.Encode.UnknownID, "ID substituted for unknown tokens when --encode-map-unknown is set")
	fs.Bool("encode-map-unknown", defaults.Encode.MapUnknown, "Substitute unknown tokens instead of dropping them")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("server-workers", defaults.Server.Workers, "Max concurrent encode requests")
	fs.Int("server-max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request text size in bytes")
	fs.Int("server-request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
	fs.Int("server-shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain period in seconds")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("BPE")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("bpe")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("paths.corpus_path", c.Paths.CorpusPath)
	v.SetDefault("paths.model_path", c.Paths.ModelPath)
	v.SetDefault("train.vocab_size", c.Train.VocabSize)
	v.SetDefault("train.workers", c.Train.Workers)
	v.SetDefault("train.pretokenizer", c.Train.Pretokenizer)
	v.SetDefault("train.per_line", c.Train.PerLine)
	v.SetDefault("encode.unknown_id", c.Encode.UnknownID)
	v.SetDefault("encode.map_unknown", c.Encode.MapUnknown)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("log_level", "log-level")
	v.RegisterAlias("paths.corpus_path", "paths-corpus-path")
	v.RegisterAlias("paths.model_path", "paths-model-path")
	v.RegisterAlias("train.vocab_size", "train-vocab-size")
	v.RegisterAlias("train.workers", "train-workers")
	v.RegisterAlias("train.pretokenizer", "train-pretokenizer")
	v.RegisterAlias("train.per_line", "train-per-line")
	v.RegisterAlias("encode.unknown_id", "encode-unknown-id")
	v.RegisterAlias("encode.map_unknown", "encode-map-unknown")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.workers", "server-workers")
	v.RegisterAlias("server.max_text_bytes", "server-max-text-bytes")
	v.RegisterAlias("server.request_timeout", "server-request-timeout")
	v.RegisterAlias("server.shutdown_timeout", "server-shutdown-timeout")
}
