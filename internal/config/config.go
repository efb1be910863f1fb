package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Required variables are
// enforced by must(); optional ones fall back to sensible defaults so
// a bare development environment still boots.
type Config struct {
	Env          string        // application environment (dev/test/prod)
	Port         string        // HTTP port to listen on
	DBUser       string        // database username
	DBPass       string        // database password (optional)
	DBHost       string        // database host address
	DBPort       string        // database port number
	DBName       string        // database name
	JWTSecret    string        // secret used to sign JWTs
	AccessTTLMin int           // access token time-to-live in minutes
	BcryptCost   int           // bcrypt cost for password hashing
	BackupDir    string        // directory where backup archives are written
	UploadsDir   string        // directory with uploaded files, bundled into backups
	DumpCommand  string        // external database dump tool
	DumpTimeout  time.Duration // how long a dump-tool run may take before it counts as failed
	AMQPURL      string        // RabbitMQ connection string; empty disables publishing
}

// Load reads configuration values from environment variables and
// returns a Config.  Missing required values cause the program to
// exit with a fatal log message.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),
		BackupDir:    envStr("BACKUP_DIR", "backups"),
		UploadsDir:   envStr("UPLOADS_DIR", "uploads"),
		DumpCommand:  envStr("DUMP_COMMAND", "mysqldump"),
		DumpTimeout:  envDur("DUMP_TIMEOUT", 5*time.Minute),
		AMQPURL:      envStr("RABBITMQ_URL", ""),
	}
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
