package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App            App            `mapstructure:",squash"`
	Server         Server         `mapstructure:",squash"`
	Database       Database       `mapstructure:",squash"`
	Redis          Redis          `mapstructure:",squash"`
	Auth           Auth           `mapstructure:",squash"`
	TokenLifecycle TokenLifecycle `mapstructure:",squash"`
	CampaignSync   CampaignSync   `mapstructure:",squash"`
	Google         Google         `mapstructure:",squash"`
	Facebook       Facebook       `mapstructure:",squash"`
	TikTok         TikTok         `mapstructure:",squash"`
	Amazon         Amazon         `mapstructure:",squash"`
	Kakao          Kakao          `mapstructure:",squash"`
	Naver          Naver          `mapstructure:",squash"`
	Coupang        Coupang        `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
}

type Auth struct {
	CronSecret          string `mapstructure:"cron_secret"`
	StateSecret         string `mapstructure:"oauth_state_secret"`
	RedirectBaseURL     string `mapstructure:"oauth_redirect_base_url"`
	LinkSuccessRedirect string `mapstructure:"oauth_link_success_redirect"`
	LinkFailureRedirect string `mapstructure:"oauth_link_failure_redirect"`
}

type TokenLifecycle struct {
	SafetyMargin    time.Duration `mapstructure:"token_safety_margin"`
	RefreshLockTTL  time.Duration `mapstructure:"token_refresh_lock_ttl"`
	LockWaitTimeout time.Duration `mapstructure:"token_lock_wait_timeout"`
	LockPollEvery   time.Duration `mapstructure:"token_lock_poll_interval"`
}

type CampaignSync struct {
	FullCron          string        `mapstructure:"campaign_sync_full_cron"`
	IncrementalCron   string        `mapstructure:"campaign_sync_incremental_cron"`
	MaxConcurrentJobs int           `mapstructure:"campaign_sync_max_concurrent_jobs"`
	MaxAttempts       int           `mapstructure:"campaign_sync_max_attempts"`
	FullLookbackDays  int           `mapstructure:"campaign_sync_full_lookback_days"`
	BatchDeadline     time.Duration `mapstructure:"campaign_sync_batch_deadline"`
	RetryBackoffFloor time.Duration `mapstructure:"campaign_sync_retry_backoff_floor"`
	Enabled           bool          `mapstructure:"campaign_sync_enabled"`
}

type Google struct {
	ClientID     string `mapstructure:"google_client_id"`
	ClientSecret string `mapstructure:"google_client_secret"`
	APIURL       string `mapstructure:"google_api_url"`
	RevokeURL    string `mapstructure:"google_revoke_url"`
}

type Facebook struct {
	AppID     string `mapstructure:"facebook_app_id"`
	AppSecret string `mapstructure:"facebook_app_secret"`
	BaseURL   string `mapstructure:"facebook_base_url"`
	Version   string `mapstructure:"facebook_version"`
	URL       string `mapstructure:"-"`
}

type TikTok struct {
	AppID   string `mapstructure:"tiktok_app_id"`
	Secret  string `mapstructure:"tiktok_secret"`
	BaseURL string `mapstructure:"tiktok_base_url"`
	AuthURL string `mapstructure:"tiktok_auth_url"`
}

type Amazon struct {
	ClientID     string `mapstructure:"amazon_client_id"`
	ClientSecret string `mapstructure:"amazon_client_secret"`
	AuthURL      string `mapstructure:"amazon_auth_url"`
	TokenURL     string `mapstructure:"amazon_token_url"`
	APIURL       string `mapstructure:"amazon_api_url"`
}

type Kakao struct {
	ClientID     string `mapstructure:"kakao_client_id"`
	ClientSecret string `mapstructure:"kakao_client_secret"`
	AuthURL      string `mapstructure:"kakao_auth_url"`
	TokenURL     string `mapstructure:"kakao_token_url"`
	APIURL       string `mapstructure:"kakao_api_url"`
}

type Naver struct {
	ClientID     string `mapstructure:"naver_client_id"`
	ClientSecret string `mapstructure:"naver_client_secret"`
	AuthURL      string `mapstructure:"naver_auth_url"`
	TokenURL     string `mapstructure:"naver_token_url"`
	APIURL       string `mapstructure:"naver_api_url"`
}

type Coupang struct {
	APIURL string `mapstructure:"coupang_api_url"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/allad")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("CRON_SECRET", "your_cron_secret")
	viper.SetDefault("OAUTH_STATE_SECRET", "your_state_secret")
	viper.SetDefault("OAUTH_REDIRECT_BASE_URL", "http://localhost:8000")
	viper.SetDefault("OAUTH_LINK_SUCCESS_REDIRECT", "http://localhost:3000/settings/connections?linked=1")
	viper.SetDefault("OAUTH_LINK_FAILURE_REDIRECT", "http://localhost:3000/settings/connections?error=1")

	// Margem de segurança de 60s antes da expiração; TTL do lock de refresh
	// de 15s (acima do p99 observado de latência de refresh dos provedores) e
	// espera de 10s para quem perde o lock (~2x a latência esperada)
	viper.SetDefault("TOKEN_SAFETY_MARGIN", "60s")
	viper.SetDefault("TOKEN_REFRESH_LOCK_TTL", "15s")
	viper.SetDefault("TOKEN_LOCK_WAIT_TIMEOUT", "10s")
	viper.SetDefault("TOKEN_LOCK_POLL_INTERVAL", "100ms")

	viper.SetDefault("CAMPAIGN_SYNC_FULL_CRON", "0 3 * * *")         // Todos os dias às 3h da manhã
	viper.SetDefault("CAMPAIGN_SYNC_INCREMENTAL_CRON", "0 * * * *")  // A cada hora
	viper.SetDefault("CAMPAIGN_SYNC_MAX_CONCURRENT_JOBS", 3)
	viper.SetDefault("CAMPAIGN_SYNC_MAX_ATTEMPTS", 3)
	viper.SetDefault("CAMPAIGN_SYNC_FULL_LOOKBACK_DAYS", 90)
	viper.SetDefault("CAMPAIGN_SYNC_BATCH_DEADLINE", "30m")
	viper.SetDefault("CAMPAIGN_SYNC_RETRY_BACKOFF_FLOOR", "5s")
	viper.SetDefault("CAMPAIGN_SYNC_ENABLED", false)

	viper.SetDefault("GOOGLE_CLIENT_ID", "your_client_id")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "your_client_secret")
	viper.SetDefault("GOOGLE_API_URL", "https://googleads.googleapis.com/v16")
	viper.SetDefault("GOOGLE_REVOKE_URL", "https://oauth2.googleapis.com/revoke")

	viper.SetDefault("FACEBOOK_APP_ID", "your_app_id")
	viper.SetDefault("FACEBOOK_APP_SECRET", "your_app_secret")
	viper.SetDefault("FACEBOOK_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("FACEBOOK_VERSION", "v22.0")

	viper.SetDefault("TIKTOK_APP_ID", "your_app_id")
	viper.SetDefault("TIKTOK_SECRET", "your_secret")
	viper.SetDefault("TIKTOK_BASE_URL", "https://business-api.tiktok.com/open_api/v1.3")
	viper.SetDefault("TIKTOK_AUTH_URL", "https://business-api.tiktok.com/portal/auth")

	viper.SetDefault("AMAZON_CLIENT_ID", "your_client_id")
	viper.SetDefault("AMAZON_CLIENT_SECRET", "your_client_secret")
	viper.SetDefault("AMAZON_AUTH_URL", "https://www.amazon.com/ap/oa")
	viper.SetDefault("AMAZON_TOKEN_URL", "https://api.amazon.com/auth/o2/token")
	viper.SetDefault("AMAZON_API_URL", "https://advertising-api.amazon.com")

	viper.SetDefault("KAKAO_CLIENT_ID", "your_client_id")
	viper.SetDefault("KAKAO_CLIENT_SECRET", "your_client_secret")
	viper.SetDefault("KAKAO_AUTH_URL", "https://kauth.kakao.com/oauth/authorize")
	viper.SetDefault("KAKAO_TOKEN_URL", "https://kauth.kakao.com/oauth/token")
	viper.SetDefault("KAKAO_API_URL", "https://apis.moment.kakao.com/openapi/v4")

	viper.SetDefault("NAVER_CLIENT_ID", "your_client_id")
	viper.SetDefault("NAVER_CLIENT_SECRET", "your_client_secret")
	viper.SetDefault("NAVER_AUTH_URL", "https://nid.naver.com/oauth2.0/authorize")
	viper.SetDefault("NAVER_TOKEN_URL", "https://nid.naver.com/oauth2.0/token")
	viper.SetDefault("NAVER_API_URL", "https://api.searchad.naver.com")

	viper.SetDefault("COUPANG_API_URL", "https://advertising-api.coupang.com")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Facebook.URL = fmt.Sprintf("%s/%s", config.Facebook.BaseURL, config.Facebook.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Info("Nenhum arquivo .env encontrado, usando variáveis de ambiente do sistema")
}
