package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/formvault/internal/flagx"
)

// knownFlags lists every flag parseFlags owns, including the config file
// flags handled by parseJSON.
var knownFlags = []string{"-a", "-g", "-s", "-t", "-l", "-b", "-f", "-n", "-k", "-d", "-u", "-p", "-bucket", "-region", "-e", "-c", "-config", "--config"}

// KnownFlags returns the global flags so commands can find their positional
// arguments with flagx.Positional.
func KnownFlags() []string {
	return append([]string(nil), knownFlags...)
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":4000")
//	-g string   gRPC bind address (e.g. ":50051")
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-l string   log level (debug|info|warn|error)
//	-b string   snapshot backend (file|sqlite|postgres|s3|memory)
//	-f string   snapshot path
//	-n string   snapshot name / object key
//	-k string   snapshot passphrase
//	-d string   PostgreSQL DSN
//	-u string   S3 root user
//	-p string   S3 root password
//	-bucket     S3 bucket
//	-region     S3 region
//	-e string   S3 base endpoint
//
// Arguments are first filtered with flagx.FilterArgs so sub-commands and
// their own flags never reach this flag set.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags[:15])

	fs := flag.NewFlagSet("formvault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	ttl := fs.Int("t", int(config.TokenTTL.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.SnapshotBackend, "b", config.SnapshotBackend, "snapshot backend")
	fs.StringVar(&config.SnapshotPath, "f", config.SnapshotPath, "snapshot path")
	fs.StringVar(&config.SnapshotName, "n", config.SnapshotName, "snapshot name")
	fs.StringVar(&config.SnapshotPassphrase, "k", config.SnapshotPassphrase, "snapshot passphrase")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *ttl != int(config.TokenTTL.Minutes()) {
		config.TokenTTL = time.Duration(*ttl) * time.Minute
	}
	return nil
}
