// Package config loads CLI defaults from a YAML file, a .env file and
// PDFLETTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrConfigNotFound = errors.New("config: 配置文件不存在")
	ErrConfigParse    = errors.New("config: 配置文件解析失败")
	ErrConfigInvalid  = errors.New("config: 配置无效")
	ErrInputTooLarge  = errors.New("config: 输入超过大小上限")
	ErrEmptyInput     = errors.New("config: 输入为空")
)

// 环境变量名
const (
	EnvLang         = "PDFLETTER_LANG"
	EnvFont         = "PDFLETTER_FONT"
	EnvAssetsDir    = "PDFLETTER_ASSETS_DIR"
	EnvOutputDir    = "PDFLETTER_OUTPUT_DIR"
	EnvLogLevel     = "PDFLETTER_LOG_LEVEL"
	EnvLogFormat    = "PDFLETTER_LOG_FORMAT"
	EnvStrictFooter = "PDFLETTER_STRICT_FOOTER"
)

// Config holds the settings shared by every rendered document.
type Config struct {
	Lang         string    `yaml:"lang" validate:"required,min=2,max=8"`
	Font         string    `yaml:"font"`
	AssetsDir    string    `yaml:"assetsDir"`
	OutputDir    string    `yaml:"outputDir"`
	StrictFooter bool      `yaml:"strictFooter"`
	Log          LogConfig `yaml:"log"`
}

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=panic fatal error warn warning info debug trace"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Lang: "de",
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path on top of Default. An empty path returns the defaults.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	if err := UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigParse, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv loads envFile (when it exists) with godotenv and then overrides cfg
// with PDFLETTER_* variables. Variables already set in the environment win over
// the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", ErrConfigParse, envFile, err)
		}
	}
	setString(&c.Lang, EnvLang)
	setString(&c.Font, EnvFont)
	setString(&c.AssetsDir, EnvAssetsDir)
	setString(&c.OutputDir, EnvOutputDir)
	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Log.Format, EnvLogFormat)
	if v, ok := os.LookupEnv(EnvStrictFooter); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q 不是布尔值", ErrConfigInvalid, EnvStrictFooter, v)
		}
		c.StrictFooter = b
	}
	return c.Validate()
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

var validate = validator.New()

// Validate checks the language code and the log settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s 不满足 %s（值 %v）", ErrConfigInvalid, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	return nil
}

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return errors.New("config: nil destination pointer")
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yaml: %w", err)
	}
	return nil
}

// ParseData decodes binding data given as YAML or JSON (JSON is valid YAML).
func ParseData(data []byte) (any, error) {
	var out any
	if err := validateInput(data, &out); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("解析绑定数据失败: %w", err)
	}
	return out, nil
}
