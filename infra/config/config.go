package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProductionBaseURL = "https://pix.api.efipay.com.br"
	SandboxBaseURL    = "https://pix-h.api.efipay.com.br"

	defaultPort              = "3000"
	defaultCertificateFile   = "certificado.p12"
	defaultGatewayTimeoutSec = 30
	defaultChargeTopic       = "pix.charges"
	defaultServiceName       = "pix"
)

// Gateway holds the Efí credentials. It is read once at startup and never
// mutated afterwards.
type Gateway struct {
	ClientID            string
	ClientSecret        string
	PixKey              string
	CertificatePath     string
	CertificatePassword string
	Sandbox             bool
	BaseURL             string
	Timeout             time.Duration
}

type Config struct {
	Port               string
	ServiceName        string
	GinMode            string
	DefaultDescription string
	Gateway            Gateway
	RedisAddr          string
	KafkaBrokers       []string
	KafkaChargeTopic   string
	LokiURL            string
	OTLPEndpoint       string
}

// Load reads the process environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("SERVICE_NAME", defaultServiceName)
	v.SetDefault("EFI_SANDBOX", false)
	v.SetDefault("GATEWAY_TIMEOUT_SECONDS", defaultGatewayTimeoutSec)
	v.SetDefault("KAFKA_CHARGE_TOPIC", defaultChargeTopic)

	certificatePath := v.GetString("EFI_CERTIFICATE_PATH")
	if certificatePath == "" {
		path, err := defaultCertificatePath()
		if err != nil {
			return nil, fmt.Errorf("resolving certificate path: %w", err)
		}
		certificatePath = path
	}

	sandbox := v.GetBool("EFI_SANDBOX")
	baseURL := strings.TrimSuffix(v.GetString("EFI_BASE_URL"), "/")
	if baseURL == "" {
		baseURL = ProductionBaseURL
		if sandbox {
			baseURL = SandboxBaseURL
		}
	}

	timeoutSec := v.GetInt("GATEWAY_TIMEOUT_SECONDS")
	if timeoutSec <= 0 {
		timeoutSec = defaultGatewayTimeoutSec
	}

	return &Config{
		Port:               v.GetString("PORT"),
		ServiceName:        v.GetString("SERVICE_NAME"),
		GinMode:            v.GetString("GIN_MODE"),
		DefaultDescription: v.GetString("PIX_DEFAULT_DESCRIPTION"),
		Gateway: Gateway{
			ClientID:            v.GetString("EFI_CLIENT_ID"),
			ClientSecret:        v.GetString("EFI_CLIENT_SECRET"),
			PixKey:              v.GetString("EFI_PIX_KEY"),
			CertificatePath:     certificatePath,
			CertificatePassword: v.GetString("EFI_CERTIFICATE_PASSWORD"),
			Sandbox:             sandbox,
			BaseURL:             baseURL,
			Timeout:             time.Duration(timeoutSec) * time.Second,
		},
		RedisAddr:        v.GetString("REDIS_ADDR"),
		KafkaBrokers:     splitList(v.GetString("KAFKA_BROKERS")),
		KafkaChargeTopic: v.GetString("KAFKA_CHARGE_TOPIC"),
		LokiURL:          v.GetString("LOKI_URL"),
		OTLPEndpoint:     v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// Validate reports every missing credential at once.
func (g Gateway) Validate() error {
	var errs []error
	if g.ClientID == "" {
		errs = append(errs, errors.New("EFI_CLIENT_ID is required"))
	}
	if g.ClientSecret == "" {
		errs = append(errs, errors.New("EFI_CLIENT_SECRET is required"))
	}
	if g.PixKey == "" {
		errs = append(errs, errors.New("EFI_PIX_KEY is required"))
	}
	return errors.Join(errs...)
}

func defaultCertificatePath() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(executable), defaultCertificateFile), nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
