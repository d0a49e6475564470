package cashfree

import "os"

// Environment variables override the configured options whenever present.
const (
	EnvAppID     = "GATEWAY_APP_ID"
	EnvSecretKey = "GATEWAY_SECRET_KEY"
	EnvSandbox   = "GATEWAY_SANDBOX"
)

// Options is the configuration-object side of credential resolution.
type Options struct {
	AppID     string `mapstructure:"app_id"`
	SecretKey string `mapstructure:"secret_key"`
	Sandbox   bool   `mapstructure:"sandbox"`
}

type credentials struct {
	appID     string
	secretKey string
	sandbox   bool
}

// resolveCredentials produces the effective credential tuple, resolved once
// at provider construction. A set environment variable always wins over the
// corresponding option, including GATEWAY_SANDBOX=false.
func resolveCredentials(opts Options) credentials {
	creds := credentials{
		appID:     opts.AppID,
		secretKey: opts.SecretKey,
		sandbox:   opts.Sandbox,
	}
	if v := os.Getenv(EnvAppID); v != "" {
		creds.appID = v
	}
	if v := os.Getenv(EnvSecretKey); v != "" {
		creds.secretKey = v
	}
	if v := os.Getenv(EnvSandbox); v != "" {
		creds.sandbox = v == "true"
	}
	return creds
}

func (c credentials) complete() bool {
	return c.appID != "" && c.secretKey != ""
}

// maskTail keeps only the last four characters for log output.
func maskTail(s string) string {
	if len(s) <= 4 {
		return "***"
	}
	return "***" + s[len(s)-4:]
}
