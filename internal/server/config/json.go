package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/yzt-loan/loanadmin/internal/flagx"
	"github.com/yzt-loan/loanadmin/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "2h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr     string         `json:"endpoint_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	TokenValidity    timex.Duration `json:"token_validity"`
	MaxLoginAttempts int            `json:"max_login_attempts"`
	LockWindow       timex.Duration `json:"lock_window"`
	SessionTTL       timex.Duration `json:"session_ttl"`
	UploadDir        string         `json:"upload_dir"`
	FileBackend      string         `json:"file_backend"`
	S3User           string         `json:"s3_user"`
	S3Password       string         `json:"s3_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3Endpoint       string         `json:"s3_endpoint"`
	SuperAdminUser   string         `json:"super_admin_user"`
	SuperAdminPass   string         `json:"super_admin_password"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidity = time.Duration(c.TokenValidity.Duration)
	config.MaxLoginAttempts = c.MaxLoginAttempts
	config.LockWindow = time.Duration(c.LockWindow.Duration)
	config.SessionTTL = time.Duration(c.SessionTTL.Duration)
	config.UploadDir = c.UploadDir
	config.FileBackend = c.FileBackend
	config.S3User = c.S3User
	config.S3Password = c.S3Password
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3Endpoint = c.S3Endpoint
	config.SuperAdminUser = c.SuperAdminUser
	config.SuperAdminPass = c.SuperAdminPass
}
