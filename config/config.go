package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"drivesim/device"
)

const (
	EnvAddr             = "DRIVESIM_ADDR"
	EnvLogLevel         = "DRIVESIM_LOG_LEVEL"
	EnvLogFormat        = "DRIVESIM_LOG_FORMAT"
	EnvVariant          = "DRIVESIM_VARIANT"
	EnvVariantsFile     = "DRIVESIM_VARIANTS_FILE"
	EnvDeviceKeywords   = "DRIVESIM_DEVICE_KEYWORDS"
	EnvAllowGenericPads = "DRIVESIM_ALLOW_GENERIC_PADS"
	EnvAllowedOrigins   = "DRIVESIM_ALLOWED_ORIGINS"
)

type Config struct {
	Addr             string
	LogLevel         string
	LogFormat        string
	Variant          string
	VariantsFile     string
	DeviceKeywords   []string
	AllowGenericPads bool
	AllowedOrigins   []string // empty allows any origin
}

func Defaults() Config {
	return Config{
		Addr:             ":8080",
		LogLevel:         "info",
		LogFormat:        "console",
		Variant:          "oval",
		DeviceKeywords:   []string{"g29", "logitech", "driving"},
		AllowGenericPads: true,
	}
}

// InitConfig loads .env files into the environment. A missing file is not an
// error; the returned bool reports whether anything was loaded.
func InitConfig(files ...string) (bool, error) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("load env file: %w", err)
	}
	return true, nil
}

// Load reads the environment over Defaults.
func Load() (Config, error) {
	cfg := Defaults()

	if v, err := GetEnvVariable(EnvAddr); err == nil {
		cfg.Addr = v
	}
	if v, err := GetEnvVariable(EnvLogLevel); err == nil {
		cfg.LogLevel = v
	}
	if v, err := GetEnvVariable(EnvLogFormat); err == nil {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v, err := GetEnvVariable(EnvVariant); err == nil {
		cfg.Variant = v
	}
	if v, err := GetEnvVariable(EnvVariantsFile); err == nil {
		cfg.VariantsFile = v
	}
	if v, err := GetEnvVariable(EnvDeviceKeywords); err == nil {
		cfg.DeviceKeywords = splitList(v)
	}
	if v, err := GetEnvVariable(EnvAllowedOrigins); err == nil {
		cfg.AllowedOrigins = splitList(v)
	}
	if v, err := GetEnvVariable(EnvAllowGenericPads); err == nil {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvAllowGenericPads, err)
		}
		cfg.AllowGenericPads = b
	}

	switch cfg.LogFormat {
	case "console", "json":
	default:
		return Config{}, fmt.Errorf("%s: unsupported format %q", EnvLogFormat, cfg.LogFormat)
	}
	return cfg, nil
}

// DevicePolicy is the pad recognition policy the config describes.
func (c Config) DevicePolicy() device.Policy {
	return device.Policy{
		Keywords:     append([]string(nil), c.DeviceKeywords...),
		AllowGeneric: c.AllowGenericPads,
	}
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := strings.TrimSpace(os.Getenv(v))
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
