package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envFile is the dotenv file read before the environment. Variables already
// set in the process win over the file.
var envFile = ".env"

// parseEnv overlays PORT, JWT_SECRET, JWT_EXPIRES_IN and the FORMVAULT_*
// variables.
func parseEnv(config *Config) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	if port := os.Getenv("PORT"); port != "" {
		config.HTTPAddr = ":" + strings.TrimPrefix(port, ":")
	}
	setString(&config.HTTPAddr, os.Getenv("FORMVAULT_HTTP_ADDR"))
	setString(&config.GRPCAddr, os.Getenv("FORMVAULT_GRPC_ADDR"))
	setString(&config.SecretKey, os.Getenv("JWT_SECRET"))
	setString(&config.ExternalTokenSecret, os.Getenv("EXTERNAL_TOKEN_SECRET"))
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_EXPIRES_IN: %w", err)
		}
		config.TokenTTL = d
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		config.CORSOrigins = splitList(v)
	}
	setString(&config.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&config.SnapshotBackend, os.Getenv("FORMVAULT_SNAPSHOT_BACKEND"))
	setString(&config.SnapshotPath, os.Getenv("FORMVAULT_SNAPSHOT_PATH"))
	setString(&config.SnapshotName, os.Getenv("FORMVAULT_SNAPSHOT_NAME"))
	setString(&config.SnapshotPassphrase, os.Getenv("FORMVAULT_SNAPSHOT_PASSPHRASE"))
	setString(&config.DatabaseDSN, os.Getenv("DATABASE_URL"))
	setString(&config.S3RootUser, os.Getenv("S3_ROOT_USER"))
	setString(&config.S3RootPassword, os.Getenv("S3_ROOT_PASSWORD"))
	setString(&config.S3Bucket, os.Getenv("S3_BUCKET"))
	setString(&config.S3Region, os.Getenv("S3_REGION"))
	setString(&config.S3BaseEndpoint, os.Getenv("S3_BASE_ENDPOINT"))
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
