package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	LogLevel  string
	LogFormat string

	// BudgetYear is the active cycle; initial submission only picks drafts of this year.
	BudgetYear       int
	GateCacheTTLSecs int

	FileStoreDriver string // local | s3
	WorkingDir      string
	ReferenceDir    string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKeyID   string
	S3SecretKey     string
	S3WorkingPrefix string
	S3RefPrefix     string

	MirrorTimeout       time.Duration
	MirrorMaxAttempts   int
	MirrorDrainSchedule string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getduration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if n, err := time.ParseDuration(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads the environment. A .env file in the working directory is
// loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "bankeu"),
		MySQLUser: getenv("MYSQL_USER", "bankeu"),
		MySQLPass: getenv("MYSQL_PASS", "bankeu"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		BudgetYear:       getint("BANKEU_BUDGET_YEAR", time.Now().Year()+1),
		GateCacheTTLSecs: getint("GATE_CACHE_TTL_SECONDS", 30),

		FileStoreDriver: getenv("FILESTORE_DRIVER", "local"),
		WorkingDir:      getenv("WORKING_DIR", "storage/working"),
		ReferenceDir:    getenv("REFERENCE_DIR", "storage/reference"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        getenv("S3_REGION", "ap-southeast-3"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:   os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:     os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3WorkingPrefix: getenv("S3_WORKING_PREFIX", "working"),
		S3RefPrefix:     getenv("S3_REFERENCE_PREFIX", "reference"),

		MirrorTimeout:       getduration("MIRROR_TIMEOUT", 5*time.Second),
		MirrorMaxAttempts:   getint("MIRROR_MAX_ATTEMPTS", 5),
		MirrorDrainSchedule: getenv("MIRROR_DRAIN_SCHEDULE", "@every 1m"),
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.BudgetYear < 2000 {
		return fmt.Errorf("invalid BANKEU_BUDGET_YEAR %d", c.BudgetYear)
	}
	switch c.FileStoreDriver {
	case "local":
		if c.WorkingDir == "" || c.ReferenceDir == "" {
			return errors.New("missing WORKING_DIR/REFERENCE_DIR for local filestore")
		}
		if c.WorkingDir == c.ReferenceDir {
			return errors.New("WORKING_DIR and REFERENCE_DIR must differ")
		}
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("missing S3_BUCKET for s3 filestore")
		}
		if c.S3WorkingPrefix == c.S3RefPrefix {
			return errors.New("S3_WORKING_PREFIX and S3_REFERENCE_PREFIX must differ")
		}
	default:
		return fmt.Errorf("unknown FILESTORE_DRIVER %q", c.FileStoreDriver)
	}
	if c.MirrorTimeout <= 0 {
		return errors.New("MIRROR_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }
func (c *Config) GateCacheTTL() time.Duration   { return time.Duration(c.GateCacheTTLSecs) * time.Second }
