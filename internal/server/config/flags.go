package config

import (
	"flag"
	"os"
	"time"

	"github.com/yzt-loan/loanadmin/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   token HMAC secret key
//	-t int      bearer token validity, minutes
//	-m int      failed sign-in attempts before lockout
//	-w int      lockout window, minutes
//	-l int      session / captcha code lifetime, seconds
//	-o string   uploads directory (local file backend)
//	-f string   file backend, "local" or "s3"
//	-u string   S3 user
//	-p string   S3 password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 endpoint (e.g., "http://127.0.0.1:9000/")
//	-n string   super admin username
//	-k string   super admin password
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and then converted to
//     time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-t", "-m", "-w", "-l", "-o", "-f",
		"-u", "-p", "-b", "-g", "-e", "-n", "-k",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidity.Minutes()), "token validity (in minutes)")
	fs.IntVar(&config.MaxLoginAttempts, "m", config.MaxLoginAttempts, "max failed sign-in attempts before lockout")
	lockWindow := fs.Int("w", int(config.LockWindow.Minutes()), "lockout window (in minutes)")
	sessionTTL := fs.Int("l", int(config.SessionTTL.Seconds()), "session lifetime (in seconds)")

	fs.StringVar(&config.UploadDir, "o", config.UploadDir, "uploads directory")
	fs.StringVar(&config.FileBackend, "f", config.FileBackend, "file backend (local or s3)")
	fs.StringVar(&config.S3User, "u", config.S3User, "S3 user")
	fs.StringVar(&config.S3Password, "p", config.S3Password, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3Endpoint, "e", config.S3Endpoint, "S3 endpoint")

	fs.StringVar(&config.SuperAdminUser, "n", config.SuperAdminUser, "super admin username")
	fs.StringVar(&config.SuperAdminPass, "k", config.SuperAdminPass, "super admin password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidity = time.Duration(*tokenValidity) * time.Minute
	config.LockWindow = time.Duration(*lockWindow) * time.Minute
	config.SessionTTL = time.Duration(*sessionTTL) * time.Second
}
