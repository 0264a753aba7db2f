package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/formvault/internal/flagx"
	"github.com/dmitrijs2005/formvault/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. TokenTTL uses
// timex.Duration so both "12h" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr            string         `json:"http_addr"`
	GRPCAddr            string         `json:"grpc_addr"`
	SecretKey           string         `json:"secret_key"`
	ExternalTokenSecret string         `json:"external_token_secret"`
	TokenTTL            timex.Duration `json:"token_ttl"`
	CORSOrigins         []string       `json:"cors_origins"`
	LogLevel            string         `json:"log_level"`
	SnapshotBackend     string         `json:"snapshot_backend"`
	SnapshotPath        string         `json:"snapshot_path"`
	SnapshotName        string         `json:"snapshot_name"`
	SnapshotPassphrase  string         `json:"snapshot_passphrase"`
	DatabaseDSN         string         `json:"database_dsn"`
	S3RootUser          string         `json:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
}

// parseJSON overlays the file given via -c/-config. Keys missing from the
// file keep their current values.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.ExternalTokenSecret, c.ExternalTokenSecret)
	if c.TokenTTL.Duration > 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SnapshotBackend, c.SnapshotBackend)
	setString(&config.SnapshotPath, c.SnapshotPath)
	setString(&config.SnapshotName, c.SnapshotName)
	setString(&config.SnapshotPassphrase, c.SnapshotPassphrase)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
