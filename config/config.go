// Package config resolves ETM client settings from flags, environment
// variables and config files. Precedence: flag > env > file > default.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/quintel/etm/internal/pathutil"
)

const (
	ProURL   = "https://engine.energytransitionmodel.com/api/v3"
	BetaURL  = "https://beta.engine.energytransitionmodel.com/api/v3"
	LocalURL = "http://localhost:3000/api/v3"
)

var stableTagRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

type Settings struct {
	APIToken    string
	BaseURL     string
	Environment string

	LocalEngineURL string
	LocalModelURL  string

	ProxyHTTP  string
	ProxyHTTPS string

	CSVSeparator     string
	DecimalSeparator string

	TmpDir string

	Timeout   time.Duration
	Retries   int
	RateLimit float64
}

// LoadDotenv loads config.env from the working directory when present.
// Variables already set in the environment win.
func LoadDotenv() {
	if _, err := os.Stat("config.env"); err == nil {
		_ = godotenv.Load("config.env")
	}
}

// FromViper builds Settings from the global viper instance. The base URL is
// inferred from the environment shorthand when not set explicitly.
func FromViper() Settings {
	return FromReader(viper.GetViper())
}

type reader interface {
	GetString(string) string
	GetInt(string) int
	GetFloat64(string) float64
	GetDuration(string) time.Duration
}

func FromReader(r reader) Settings {
	s := Settings{
		APIToken:         strings.TrimSpace(r.GetString("api_token")),
		BaseURL:          strings.TrimSpace(r.GetString("base_url")),
		Environment:      strings.TrimSpace(r.GetString("environment")),
		LocalEngineURL:   strings.TrimSpace(r.GetString("local_engine_url")),
		LocalModelURL:    strings.TrimSpace(r.GetString("local_model_url")),
		ProxyHTTP:        strings.TrimSpace(r.GetString("proxy.http")),
		ProxyHTTPS:       strings.TrimSpace(r.GetString("proxy.https")),
		CSVSeparator:     r.GetString("csv.separator"),
		DecimalSeparator: r.GetString("csv.decimal_separator"),
		TmpDir:           pathutil.ExpandHomePath(r.GetString("tmp_dir")),
		Timeout:          r.GetDuration("http.timeout"),
		Retries:          r.GetInt("http.retries"),
		RateLimit:        r.GetFloat64("http.rate_limit"),
	}

	if s.BaseURL == "" {
		s.BaseURL = InferBaseURL(s.Environment, s.LocalEngineURL)
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")

	if s.CSVSeparator == "" {
		s.CSVSeparator = ","
	}
	if s.DecimalSeparator == "" {
		s.DecimalSeparator = "."
	}
	return s
}

// InferBaseURL maps the environment shorthand to an engine API base URL.
// Unrecognized values fall back to production.
func InferBaseURL(environment, localEngineURL string) string {
	env := strings.ToLower(strings.TrimSpace(environment))

	switch env {
	case "", "pro", "prod":
		return ProURL
	case "beta", "staging":
		return BetaURL
	case "local", "dev", "development":
		if localEngineURL != "" {
			return strings.TrimRight(localEngineURL, "/")
		}
		return LocalURL
	}

	if stableTagRe.MatchString(env) {
		return fmt.Sprintf("https://%s.engine.energytransitionmodel.com/api/v3", env)
	}

	return ProURL
}

// ValidateToken checks the ETM API token shape: an `etm_` or `etm_beta_`
// prefix followed by a JWT of exactly three dot-separated segments.
func ValidateToken(token string) error {
	var body string
	switch {
	case strings.HasPrefix(token, "etm_beta_"):
		body = strings.TrimPrefix(token, "etm_beta_")
	case strings.HasPrefix(token, "etm_"):
		body = strings.TrimPrefix(token, "etm_")
	default:
		return fmt.Errorf("invalid ETM API token: must start with 'etm_' or 'etm_beta_'")
	}

	if body == "" || !isAlphanumeric(rune(body[0])) {
		return fmt.Errorf("invalid ETM API token: JWT body must start with an alphanumeric character")
	}

	segments := strings.Split(body, ".")
	if len(segments) != 3 {
		return fmt.Errorf("invalid ETM API token: JWT must have exactly three segments separated by '.'")
	}
	for _, seg := range segments {
		if strings.Contains(seg, " ") {
			return fmt.Errorf("invalid ETM API token: JWT segments must not contain spaces")
		}
	}
	return nil
}

func (s Settings) Validate() error {
	if s.APIToken == "" {
		return fmt.Errorf("api_token is required (set ETM_API_TOKEN or api_token in the config file)")
	}
	return ValidateToken(s.APIToken)
}

// TmpPath returns (and creates) the curve cache directory for a scenario.
func (s Settings) TmpPath(sub string) (string, error) {
	dir := s.TmpDir
	if dir == "" {
		dir = pathutil.ExpandHomePath("~/.cache/etm")
	}
	if sub != "" {
		dir = dir + string(os.PathSeparator) + sub
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
