package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/horses3d/hpost/lib/derive"
	"github.com/horses3d/hpost/lib/logger"
	"github.com/horses3d/hpost/lib/snapio"
	"github.com/horses3d/hpost/lib/store"
)

// Configuration keys. Each can also be set through an environment variable
// named HPOST_ followed by the key in upper case with "." replaced by "_",
// e.g. HPOST_PHYSICS_GAMMA.
const (
	keyLogLevel    = "log.level"
	keyGamma       = "physics.gamma"
	keyGasConstant = "physics.gas_constant"
	keyCacheSize   = "store.cache_size"
	keyMetricsFile = "metrics.file"
	keyByteOrder   = "byte_order"

	envPrefix = "HPOST"

	defaultLogLevel  = "info"
	defaultByteOrder = "native"
	// defaultConfigFile is relative to the home directory.
	defaultConfigFile = ".config/hpost.yaml"
)

// Config holds hpost's settings after defaults, the config file, the
// environment and flags have all been applied.
type Config struct {
	// File is the config file that was read, if any.
	File string

	LogLevel    string
	Gamma       float64
	GasConstant float64
	CacheSize   int
	MetricsFile string
	ByteOrder   string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyLogLevel, defaultLogLevel)
	v.SetDefault(keyGamma, derive.DefaultGamma)
	v.SetDefault(keyGasConstant, derive.DefaultR)
	v.SetDefault(keyCacheSize, store.DefaultCacheSize)
	v.SetDefault(keyMetricsFile, "")
	v.SetDefault(keyByteOrder, defaultByteOrder)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// bindFlags binds configuration keys to the flags with the given names.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("no flag named '%s'", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig reads the config file into v and converts v's settings into a
// Config. An explicitly requested config file must exist; the default one
// is optional.
func loadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	cfg := &Config{}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("The config file %s could not be read: %w",
				cfgFile, err)
		}
		cfg.File = cfgFile
	} else if home, err := homedir.Dir(); err == nil {
		path := filepath.Join(home, defaultConfigFile)
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err == nil {
			cfg.File = path
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("The config file %s could not be read: %w",
				path, err)
		}
	}

	var err error
	if cfg.LogLevel, err = cast.ToStringE(v.Get(keyLogLevel)); err != nil {
		return nil, keyError(keyLogLevel, v, err)
	}
	if cfg.Gamma, err = cast.ToFloat64E(v.Get(keyGamma)); err != nil {
		return nil, keyError(keyGamma, v, err)
	}
	if cfg.GasConstant, err = cast.ToFloat64E(v.Get(keyGasConstant)); err != nil {
		return nil, keyError(keyGasConstant, v, err)
	}
	if cfg.CacheSize, err = cast.ToIntE(v.Get(keyCacheSize)); err != nil {
		return nil, keyError(keyCacheSize, v, err)
	}
	if cfg.MetricsFile, err = cast.ToStringE(v.Get(keyMetricsFile)); err != nil {
		return nil, keyError(keyMetricsFile, v, err)
	}
	if cfg.ByteOrder, err = cast.ToStringE(v.Get(keyByteOrder)); err != nil {
		return nil, keyError(keyByteOrder, v, err)
	}

	return cfg, nil
}

func keyError(key string, v *viper.Viper, err error) error {
	return fmt.Errorf("The configuration value %s = %v has the wrong type: %w",
		key, v.Get(key), err)
}

// Validate checks every setting. It is what the "check" command runs.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := snapio.ParseByteOrder(c.ByteOrder); err != nil {
		return err
	}
	eng := derive.Engine{Gamma: c.Gamma, R: c.GasConstant}
	if err := eng.Validate(); err != nil {
		return err
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%s is set to %d, but it must be zero or larger.",
			keyCacheSize, c.CacheSize)
	}
	return nil
}
