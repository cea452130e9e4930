package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings splits list-valued variables
    "time"    // time parses duration-valued variables

    "github.com/avillegasn/agenda-api/internal/model"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations and hours.
type Config struct {
    Env  string // application environment (e.g. "dev", "prod")
    Port string // HTTP port to listen on

    DBUser string // database username
    DBPass string // database password (optional)
    DBHost string // database host address
    DBPort string // database port number
    DBName string // database name

    JWTSecret    string // secret used to sign JWTs
    AccessTTLMin int    // access token time-to-live in minutes

    AdminEmail        string // operator login email
    AdminPasswordHash string // bcrypt hash of the operator password

    GoogleClientID     string // OAuth2 client for the calendar API
    GoogleClientSecret string
    GoogleRefreshToken string // long-lived token granted to the business calendar
    CalendarID         string // calendar bookings are checked and written against

    OperatorEmail string // receives confirmation notices and calendar invites
    ResendAPIKey  string // email provider key (optional; empty disables email)
    MailFrom      string // sender address for outbound email

    Timezone        string // IANA timezone of the business
    WorkStartHour   int    // first bookable hour, 24h clock
    WorkEndHour     int    // bookable window closes at this hour
    SlotMinutes     int    // slot length in minutes
    ProviderTimeout time.Duration // per-call budget for calendar/email providers

    StudentDomains      []string // email domains eligible for the student rate
    InstitutionalDomain string   // domain allowed to book the free offering

    CheckoutURL   string // hosted payment page
    PublicBaseURL string // public base URL for links in outbound email
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Variables with a
// sensible default use getOr()/getIntOr() instead.
func Load() Config {
    return Config{
        Env:  must("APP_ENV"),  // environment (dev/test/prod)
        Port: must("APP_PORT"), // port to bind the HTTP server

        DBUser: must("DB_USER"),      // database user
        DBPass: os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost: must("DB_HOST"),      // database host
        DBPort: must("DB_PORT"),      // database port
        DBName: must("DB_NAME"),      // database name

        JWTSecret:    must("JWT_SECRET"),              // secret used for signing JWTs
        AccessTTLMin: getIntOr("ACCESS_TOKEN_TTL_MIN", 60),

        AdminEmail:        must("ADMIN_EMAIL"),
        AdminPasswordHash: must("ADMIN_PASSWORD_HASH"),

        GoogleClientID:     must("GOOGLE_CLIENT_ID"),
        GoogleClientSecret: must("GOOGLE_CLIENT_SECRET"),
        GoogleRefreshToken: must("GOOGLE_REFRESH_TOKEN"),
        CalendarID:         must("CALENDAR_ID"),

        OperatorEmail: must("OPERATOR_EMAIL"),
        ResendAPIKey:  os.Getenv("RESEND_API_KEY"), // empty disables outbound email
        MailFrom:      getOr("MAIL_FROM", "Agenda <bookings@agenda.example>"),

        Timezone:        getOr("TIMEZONE", "America/Mexico_City"),
        WorkStartHour:   getIntOr("WORK_START_HOUR", 9),
        WorkEndHour:     getIntOr("WORK_END_HOUR", 18),
        SlotMinutes:     getIntOr("SLOT_MINUTES", 30),
        ProviderTimeout: getDurationOr("PROVIDER_TIMEOUT", 5*time.Second),

        StudentDomains:      splitList(os.Getenv("STUDENT_DOMAINS")),
        InstitutionalDomain: must("INSTITUTIONAL_DOMAIN"),

        CheckoutURL:   must("CHECKOUT_URL"),
        PublicBaseURL: must("PUBLIC_BASE_URL"),
    }
}

// Hours bundles the schedule-related settings into the model type the
// availability services consume.
func (c Config) Hours() model.BusinessHours {
    return model.BusinessHours{
        Timezone:    c.Timezone,
        StartHour:   c.WorkStartHour,
        EndHour:     c.WorkEndHour,
        SlotMinutes: c.SlotMinutes,
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

// getOr returns the variable's value or a default when unset or empty.
func getOr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// getIntOr is like getOr but converts the value into an integer.  A
// malformed value is fatal rather than silently replaced by the default.
func getIntOr(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// getDurationOr is like getOr but parses a time.Duration ("5s", "250ms").
func getDurationOr(key string, def time.Duration) time.Duration {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    d, err := time.ParseDuration(s)
    if err != nil {
        log.Fatalf("invalid duration for %s: %q", key, s)
    }
    return d
}

// splitList splits a comma-separated variable into trimmed entries,
// dropping empties.
func splitList(s string) []string {
    var out []string
    for _, part := range strings.Split(s, ",") {
        if part = strings.TrimSpace(part); part != "" {
            out = append(out, part)
        }
    }
    return out
}
