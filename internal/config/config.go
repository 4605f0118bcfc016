package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses the booking TTL and sweep interval durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for the
// booking timeouts.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	JWTSecret      string        // secret used to verify JWTs
	LockTTL        time.Duration // how long a seat hold lasts before it may be reclaimed
	ReservationTTL time.Duration // how long an ACTIVE reservation lives before the sweeper expires it
	SweepInterval  time.Duration // how often the reservation sweeper ticks
	BasePriceCents int64         // base ticket price in cents, before modifiers
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The booking
// timeouts fall back to sensible defaults when unset.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),      // environment (dev/test/prod)
		Port:           must("APP_PORT"),     // port to bind the HTTP server
		DBUser:         must("DB_USER"),      // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),      // database host
		DBPort:         must("DB_PORT"),      // database port
		DBName:         must("DB_NAME"),      // database name
		JWTSecret:      must("JWT_SECRET"),   // secret used to verify JWTs
		LockTTL:        minutes("SEAT_LOCK_TTL_MIN", 10),
		ReservationTTL: minutes("RESERVATION_TTL_MIN", 10),
		SweepInterval:  envDur("SWEEP_INTERVAL", 30*time.Second),
		BasePriceCents: int64(envInt("BASE_PRICE_CENTS", 1000)),
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

// minutes reads an integer environment variable expressed in minutes and
// returns it as a duration, falling back to def minutes when unset.  A
// malformed or non-positive value is a fatal configuration error.
func minutes(key string, def int) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return time.Duration(def) * time.Minute
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return time.Duration(n) * time.Minute
}
