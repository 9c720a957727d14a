package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers, secrets and URLs, ints for
// durations and costs.  Database variables are optional; when DBHost is
// empty the server keeps registrations in process memory instead of MySQL.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	GatewayKeyID     string // payment gateway API key id (basic auth user)
	GatewayKeySecret string // payment gateway API key secret; also signs checkout callbacks
	GatewayBaseURL   string // base URL of the gateway orders API
	PaymentPageRoom  string // hosted payment page for room bookings (redirect fallback, optional)
	PaymentPageDorm  string // hosted payment page for dormitory bookings (redirect fallback, optional)
	AdminEmail       string // login email for the admin stats endpoints
	AdminPassword    string // admin password; hashed with bcrypt at startup, never stored
	JWTSecret        string // secret used to sign admin JWTs
	AccessTTLMin     int    // admin access token time-to-live in minutes
	BcryptCost       int    // bcrypt cost for the admin password hash
	DBUser           string // database username (optional)
	DBPass           string // database password (optional)
	DBHost           string // database host address (empty -> in-memory store)
	DBPort           string // database port number
	DBName           string // database name
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Gateway credentials
// are required: the server refuses to start in a state where it could not
// verify a payment callback.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),            // environment (dev/test/prod)
		Port:             must("APP_PORT"),           // port to bind the HTTP server
		GatewayKeyID:     must("GATEWAY_KEY_ID"),     // gateway key id
		GatewayKeySecret: must("GATEWAY_KEY_SECRET"), // gateway key secret (HMAC secret)
		GatewayBaseURL:   getenv("GATEWAY_BASE_URL", "https://api.razorpay.com"),
		PaymentPageRoom:  os.Getenv("PAYMENT_PAGE_ROOM_URL"), // hosted page (optional)
		PaymentPageDorm:  os.Getenv("PAYMENT_PAGE_DORM_URL"), // hosted page (optional)
		AdminEmail:       must("ADMIN_EMAIL"),        // admin login email
		AdminPassword:    must("ADMIN_PASSWORD"),     // admin login password
		JWTSecret:        must("JWT_SECRET"),         // secret used for signing JWTs
		AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"), // TTL for admin tokens in minutes
		BcryptCost:       mustInt("BCRYPT_COST"),     // bcrypt cost factor
		DBUser:           os.Getenv("DB_USER"),       // database user (optional)
		DBPass:           os.Getenv("DB_PASS"),       // database password (optional)
		DBHost:           os.Getenv("DB_HOST"),       // database host (optional)
		DBPort:           os.Getenv("DB_PORT"),       // database port (optional)
		DBName:           os.Getenv("DB_NAME"),       // database name (optional)
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// getenv returns the value of key or def when the variable is unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
