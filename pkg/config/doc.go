// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more .env files into the process environment.
//   - Load parses the environment into a struct annotated with `env` tags and
//     caches the result per type, so every component sees the same values.
//   - MustLoad panics on failure, for configuration required at startup.
//
// # Usage
//
//	type StripeConfig struct {
//	    SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
//	    WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
//	}
//
//	var cfg StripeConfig
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Configuration is loaded once in main and passed to constructors. Domain code
// never reads the environment directly.
//
// # Error Handling
//
//   - ErrParsingConfig: the environment could not be parsed into the struct
//   - ErrLoadingEnvFile: a requested .env file could not be read
//   - ErrNilPointer: nil pointer passed to Load
//
// Reset clears the cache between tests.
package config
