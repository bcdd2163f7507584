package config

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	CQTDir        string `mapstructure:"cqt_dir"        validate:"required"`
	AnnotationDir string `mapstructure:"annotation_dir" validate:"required"`
	AudioDir      string `mapstructure:"audio_dir"`

	DurationSec  float64 `mapstructure:"duration_sec"  validate:"gt=0"`
	WindowFrames int     `mapstructure:"window_frames" validate:"gt=0"`
	Seed         int64   `mapstructure:"seed"`

	ShowProgress bool `mapstructure:"show_progress"`

	LogLevel string `mapstructure:"log_level"`
}

var Conf Config

// Load populates Conf from the environment and an optional .env file. It must
// be called before the dataset is constructed from configuration; callers
// wiring paths programmatically can skip it.
func Load() error {
	return loadEnvConfig(&Conf)
}

func loadEnvConfig(cfg *Config) error {
	viper.AutomaticEnv()
	viper.AllowEmptyEnv(true)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setupDefaults()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	err := viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError

		ok := errors.As(err, &configFileNotFoundError)
		if !ok {
			return err
		}
	}

	err = viper.Unmarshal(cfg)
	if err != nil {
		return err
	}

	err = validator.New().Struct(cfg)
	if err != nil {
		return err
	}

	return nil
}

func setupDefaults() {
	confType := reflect.TypeOf(Conf)
	for i := range confType.NumField() {
		field := confType.Field(i)
		viper.SetDefault(field.Tag.Get("mapstructure"), "")
	}

	viper.SetDefault("AUDIO_DIR", "data/WagnerRing_Public/01_RawData/audio_wav")
	viper.SetDefault("DURATION_SEC", "15")
	viper.SetDefault("WINDOW_FRAMES", "646")
	viper.SetDefault("SEED", "42")
	viper.SetDefault("SHOW_PROGRESS", "true")
	viper.SetDefault("LOG_LEVEL", "INFO")
}
