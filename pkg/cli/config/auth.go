package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/model/auth"
	"github.com/urfave/cli/v3"
)

// Auth configures verification of session tokens issued by the account service
type Auth struct {
	jwtSecret string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HS256 secret shared with the account service",
			Category:    "Auth",
			Sources:     cli.EnvVars("COUNSELLOR_JWT_SECRET"),
			Destination: &x.jwtSecret,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("jwt_secret", x.jwtSecret != ""),
	)
}

func (x *Auth) Configure() (*auth.Verifier, error) {
	if x.jwtSecret == "" {
		return nil, goerr.New("jwt-secret is required")
	}
	return auth.NewVerifier(x.jwtSecret)
}
