package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWTSecret string

	// Collections（テーブル名）
	CredsCollectionName  string
	ImagesCollectionName string

	// Images
	ImageUploadDir string
	ImageMaxSize   int64

	// Logging
	LogLevel string

	// Server
	ServerPort string
	StaticDir  string

	// CORS
	CORSAllowedOrigin string
}

// identifierPattern はテーブル名として許可する識別子の形式。
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.CredsCollectionName = getEnvString("CREDS_COLLECTION_NAME", "credentials")
	cfg.ImagesCollectionName = getEnvString("IMAGES_COLLECTION_NAME", "images")
	cfg.ImageUploadDir = getEnvString("IMAGE_UPLOAD_DIR", "uploads")
	cfg.ImageMaxSize = getEnvInt64("IMAGE_MAX_SIZE", 5*1024*1024)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.StaticDir = getEnvString("STATIC_DIR", "public")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	for key, name := range map[string]string{
		"CREDS_COLLECTION_NAME":  cfg.CredsCollectionName,
		"IMAGES_COLLECTION_NAME": cfg.ImagesCollectionName,
	} {
		if !identifierPattern.MatchString(name) {
			return nil, fmt.Errorf("%s must be a valid identifier: %q", key, name)
		}
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}
