package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations and costs.
type Config struct {
    Env                string // application environment (e.g. "dev", "prod")
    Port               string // HTTP port to listen on
    DBUser             string // database username
    DBPass             string // database password (optional)
    DBHost             string // database host address
    DBPort             string // database port number
    DBName             string // database name
    JWTSecret          string // secret used to sign JWTs
    AccessTTLHours     int    // access token time-to-live in hours
    OTPLength          int    // number of digits in a one-time code
    OTPTTLMin          int    // one-time code time-to-live in minutes
    BcryptCost         int    // bcrypt cost for OTP hashing
    LockLeaseMin       int    // reservation lock lease duration in minutes
    LockRetentionHours int    // how long terminal locks are kept before purge
    SweepSchedule      string // cron spec for the cleanup sweeper
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Lock timing knobs
// default to the production values (30 minute lease, 24 hour retention,
// sweep every 5 minutes) so only the secrets and DB coordinates are
// mandatory.
func Load() Config {
    return Config{
        Env:                must("APP_ENV"),
        Port:               must("APP_PORT"),
        DBUser:             must("DB_USER"),
        DBPass:             os.Getenv("DB_PASS"), // empty allowed
        DBHost:             must("DB_HOST"),
        DBPort:             must("DB_PORT"),
        DBName:             must("DB_NAME"),
        JWTSecret:          must("JWT_SECRET"),
        AccessTTLHours:     intOr("ACCESS_TOKEN_TTL_HOURS", 168), // 7 days
        OTPLength:          intOr("OTP_LENGTH", 4),
        OTPTTLMin:          intOr("OTP_TTL_MIN", 2),
        BcryptCost:         intOr("BCRYPT_COST", 10),
        LockLeaseMin:       intOr("LOCK_LEASE_MIN", 30),
        LockRetentionHours: intOr("LOCK_RETENTION_HOURS", 24),
        SweepSchedule:      strOr("LOCK_SWEEP_SCHEDULE", "*/5 * * * *"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// strOr retrieves an optional string variable with a default.
func strOr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// intOr retrieves an optional integer variable with a default.  Invalid
// values are fatal rather than silently falling back, since a mistyped
// lease duration should never reach production.
func intOr(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, v)
    }
    return n
}
