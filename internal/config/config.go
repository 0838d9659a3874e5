package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/authbridge/internal/security/secretbox"
	"github.com/dropDatabas3/authbridge/internal/signon"
	"github.com/dropDatabas3/authbridge/internal/validation"
	"gopkg.in/yaml.v3"
)

// Nombres de provider tal como aparecen en las rutas.
const (
	ProviderGitHub     = "github"
	ProviderPML        = "pml"
	ProviderSeeyonChat = "seeyon-chat"
	ProviderYikong     = "yikong"
)

// ProviderNames en el orden en que se registran.
var ProviderNames = []string{ProviderGitHub, ProviderPML, ProviderSeeyonChat, ProviderYikong}

// envPrefix por provider (GITHUB_CLIENT_ID, SEEYON_CHAT_BASE_URL, ...).
var envPrefix = map[string]string{
	ProviderGitHub:     "GITHUB_",
	ProviderPML:        "PML_",
	ProviderSeeyonChat: "SEEYON_CHAT_",
	ProviderYikong:     "YIKONG_",
}

// Provider es la config de un IdP upstream.
type Provider struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	BaseURL      string   `yaml:"base_url"`
	APIURL       string   `yaml:"api_url"`      // sólo GitHub (Enterprise)
	RedirectURI  string   `yaml:"redirect_uri"` // si vacío => <public_base_url><api_prefix>/oauth/<name>/callback
	Scopes       []string `yaml:"scopes"`

	// AllowedCallbackHosts restringe el callback del caller; vacío = cualquiera http(s).
	AllowedCallbackHosts []string `yaml:"allowed_callback_hosts"`
}

// Configured reports whether client credentials are present.
func (p Provider) Configured() bool {
	return strings.TrimSpace(p.ClientID) != "" && strings.TrimSpace(p.ClientSecret) != ""
}

type Config struct {
	// Bloque app (opcional en YAML).
	App struct {
		// dev | staging | prod
		Env      string `yaml:"app_env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string        `yaml:"addr"`
		APIPrefix          string        `yaml:"api_prefix"`
		PublicBaseURL      string        `yaml:"public_base_url"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Cache struct {
		Kind            string        `yaml:"kind"` // memory
		StateTTL        time.Duration `yaml:"state_ttl"`
		ResourceTTL     time.Duration `yaml:"resource_ttl"`
		IdentityTTL     time.Duration `yaml:"identity_ttl"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
	} `yaml:"cache"`

	JWT struct {
		Secret          string        `yaml:"secret"`
		PreviousSecrets []string      `yaml:"previous_secrets"`
		TTL             time.Duration `yaml:"ttl"`
	} `yaml:"jwt"`

	SignOn struct {
		V5MD5PresharedKey string        `yaml:"v5_md5_preshared_key"`
		FreshnessWindow   time.Duration `yaml:"freshness_window"`
		EmailDomain       string        `yaml:"email_domain"`
	} `yaml:"signon"`

	// ───────── Upstream providers ─────────
	Providers struct {
		HTTPTimeout     time.Duration       `yaml:"http_timeout"`
		UpstreamTimeout time.Duration       `yaml:"upstream_timeout"`
		Entries         map[string]Provider `yaml:"entries"`
	} `yaml:"providers"`
}

// Load lee el YAML (opcional: path vacío o inexistente = sólo defaults + env),
// aplica defaults, overrides por env y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path = strings.TrimSpace(path); path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// sin archivo: env manda
		default:
			return nil, err
		}
	}

	c.applyDefaults()

	// Overrides por env
	c.applyEnvOverrides()

	if err := c.revealSecrets(os.Getenv(secretbox.EnvMasterKey)); err != nil {
		return nil, err
	}

	c.fillRedirectURIs()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":4423"
	}
	if c.Server.APIPrefix == "" {
		c.Server.APIPrefix = "/api"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.StateTTL == 0 {
		c.Cache.StateTTL = 10 * time.Minute
	}
	if c.Cache.ResourceTTL == 0 {
		c.Cache.ResourceTTL = 24 * time.Hour
	}
	if c.Cache.IdentityTTL == 0 {
		c.Cache.IdentityTTL = 10 * time.Minute
	}
	if c.Cache.CleanupInterval == 0 {
		c.Cache.CleanupInterval = time.Minute
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = 720 * time.Hour // 30d
	}
	if c.SignOn.FreshnessWindow == 0 {
		c.SignOn.FreshnessWindow = signon.DefaultWindow
	}
	if c.SignOn.EmailDomain == "" {
		c.SignOn.EmailDomain = "example.com"
	}
	if c.Providers.HTTPTimeout == 0 {
		c.Providers.HTTPTimeout = 10 * time.Second
	}
	if c.Providers.UpstreamTimeout == 0 {
		c.Providers.UpstreamTimeout = 15 * time.Second
	}
	if c.Providers.Entries == nil {
		c.Providers.Entries = map[string]Provider{}
	}
}

// fillRedirectURIs autogenera redirect_uri a partir de public_base_url.
func (c *Config) fillRedirectURIs() {
	base := strings.TrimRight(strings.TrimSpace(c.Server.PublicBaseURL), "/")
	if base == "" {
		return
	}
	for name, p := range c.Providers.Entries {
		if strings.TrimSpace(p.RedirectURI) == "" {
			p.RedirectURI = base + c.prefix() + "/oauth/" + name + "/callback"
			c.Providers.Entries[name] = p
		}
	}
}

func (c *Config) prefix() string {
	p := "/" + strings.Trim(c.Server.APIPrefix, "/")
	if p == "/" {
		return ""
	}
	return p
}

// APIPrefix normalizado: "/api", o "" si se monta en la raíz.
func (c *Config) APIPrefix() string { return c.prefix() }

// IsProd reports whether the app runs in production.
func (c *Config) IsProd() bool {
	e := strings.ToLower(c.App.Env)
	return e == "prod" || e == "production"
}

// Provider devuelve la config de name (zero value si no hay).
func (c *Config) Provider(name string) Provider { return c.Providers.Entries[name] }

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	} else if v, ok := getEnvInt("PORT"); ok {
		c.Server.Addr = ":" + strconv.Itoa(v)
	}
	if v, ok := getEnvStr("API_PREFIX"); ok {
		c.Server.APIPrefix = v
	}
	if v, ok := getEnvStr("PUBLIC_BASE_URL"); ok {
		c.Server.PublicBaseURL = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvDur("SERVER_SHUTDOWN_TIMEOUT"); ok {
		c.Server.ShutdownTimeout = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvDur("STATE_TTL"); ok {
		c.Cache.StateTTL = v
	}
	if v, ok := getEnvDur("RESOURCE_TTL"); ok {
		c.Cache.ResourceTTL = v
	}
	if v, ok := getEnvDur("IDENTITY_CACHE_TTL"); ok {
		c.Cache.IdentityTTL = v
	}
	if v, ok := getEnvDur("CACHE_CLEANUP_INTERVAL"); ok {
		c.Cache.CleanupInterval = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvCSV("JWT_PREVIOUS_SECRETS"); ok {
		c.JWT.PreviousSecrets = v
	}
	if v, ok := getEnvDur("JWT_TTL"); ok {
		c.JWT.TTL = v
	}

	// SIGN-ON
	if v, ok := getEnvStr("V5_MD5_PRESHARED_KEY"); ok {
		c.SignOn.V5MD5PresharedKey = v
	}
	if v, ok := getEnvDur("SIGNON_FRESHNESS_WINDOW"); ok {
		c.SignOn.FreshnessWindow = v
	}
	if v, ok := getEnvStr("SIGNON_EMAIL_DOMAIN"); ok {
		c.SignOn.EmailDomain = v
	}

	// PROVIDERS
	if v, ok := getEnvDur("PROVIDER_HTTP_TIMEOUT"); ok {
		c.Providers.HTTPTimeout = v
	}
	if v, ok := getEnvDur("PROVIDER_UPSTREAM_TIMEOUT"); ok {
		c.Providers.UpstreamTimeout = v
	}
	for _, name := range ProviderNames {
		pre := envPrefix[name]
		p := c.Providers.Entries[name]
		if v, ok := getEnvStr(pre + "CLIENT_ID"); ok {
			p.ClientID = v
		}
		if v, ok := getEnvStr(pre + "CLIENT_SECRET"); ok {
			p.ClientSecret = v
		}
		if v, ok := getEnvStr(pre + "BASE_URL"); ok {
			p.BaseURL = v
		}
		if v, ok := getEnvStr(pre + "API_URL"); ok {
			p.APIURL = v
		}
		if v, ok := getEnvStr(pre + "REDIRECT_URI"); ok {
			p.RedirectURI = v
		}
		if v, ok := getEnvCSV(pre + "SCOPES"); ok {
			p.Scopes = v
		}
		if v, ok := getEnvCSV(pre + "ALLOWED_CALLBACK_HOSTS"); ok {
			p.AllowedCallbackHosts = v
		}
		c.Providers.Entries[name] = p
	}
}

// revealSecrets abre los valores "enc:..." con la clave maestra. Sin clave
// sólo se aceptan secretos en claro.
func (c *Config) revealSecrets(masterKey string) error {
	var box *secretbox.Box
	if strings.TrimSpace(masterKey) != "" {
		b, err := secretbox.New(masterKey)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		box = b
	}

	reveal := func(what string, v *string) error {
		out, err := box.Reveal(*v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", what, err)
		}
		*v = out
		return nil
	}

	if err := reveal("JWT_SECRET", &c.JWT.Secret); err != nil {
		return err
	}
	for i := range c.JWT.PreviousSecrets {
		if err := reveal(fmt.Sprintf("JWT_PREVIOUS_SECRETS[%d]", i), &c.JWT.PreviousSecrets[i]); err != nil {
			return err
		}
	}
	if err := reveal("V5_MD5_PRESHARED_KEY", &c.SignOn.V5MD5PresharedKey); err != nil {
		return err
	}
	for _, name := range ProviderNames {
		p := c.Providers.Entries[name]
		if err := reveal(envPrefix[name]+"CLIENT_SECRET", &p.ClientSecret); err != nil {
			return err
		}
		c.Providers.Entries[name] = p
	}
	return nil
}

// Validate falla cerrado: sin secreto JWT fuerte el servicio no arranca.
// Providers sin credenciales no son error: sus rutas responden 500.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("config: JWT_SECRET must be at least 32 bytes")
	}
	for i, s := range c.JWT.PreviousSecrets {
		if len(s) < 32 {
			return fmt.Errorf("config: JWT_PREVIOUS_SECRETS[%d] must be at least 32 bytes", i)
		}
	}
	if c.Cache.StateTTL < 0 || c.Cache.ResourceTTL < 0 || c.Cache.IdentityTTL < 0 {
		return errors.New("config: cache TTLs must be positive")
	}
	if c.SignOn.FreshnessWindow < 0 {
		return errors.New("config: signon freshness window must be positive")
	}
	// La ventana se puede achicar, nunca ampliar.
	if c.SignOn.FreshnessWindow > signon.DefaultWindow {
		return fmt.Errorf("config: SIGNON_FRESHNESS_WINDOW must not exceed %s", signon.DefaultWindow)
	}
	// En prod las redirect URIs derivadas tienen que ser https.
	if c.IsProd() && c.Server.PublicBaseURL != "" && !strings.HasPrefix(strings.ToLower(c.Server.PublicBaseURL), "https://") {
		return errors.New("config: PUBLIC_BASE_URL must use https in production")
	}
	for name, p := range c.Providers.Entries {
		if _, ok := envPrefix[name]; !ok {
			return fmt.Errorf("config: unknown provider %q", name)
		}
		if err := validation.ValidateScopes(p.Scopes); err != nil {
			return fmt.Errorf("config: provider %s: %w", name, err)
		}
	}
	return nil
}
