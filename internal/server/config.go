package server

import (
	"os"
	"strconv"
)

// Config holds the service configuration, read from the environment.
type Config struct {
	Port            int
	DetectorModel   string // SSD MobileNet frozen graph (.pb), "" disables detection
	DetectorConfig  string // matching .pbtxt
	SegmenterModel  string // DeepLab ONNX model, "" disables semantic segmentation
	MaxUploadMB     int64
	LogLevel        string
	ShutdownTimeout int // seconds
}

// Load reads the configuration from environment variables, with working
// defaults for everything but the model paths.
func Load() *Config {
	return &Config{
		Port:            getEnvAsInt("PORT", 8080),
		DetectorModel:   getEnv("DETECTOR_MODEL", ""),
		DetectorConfig:  getEnv("DETECTOR_CONFIG", ""),
		SegmenterModel:  getEnv("SEGMENTER_MODEL", ""),
		MaxUploadMB:     int64(getEnvAsInt("MAX_UPLOAD_MB", 20)),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
