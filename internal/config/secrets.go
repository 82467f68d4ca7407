package config

import (
	"os"
	"strings"

	"github.com/marataitester-blip/psy-color/internal/ports"
)

const (
	EnvTextAPIKey  = "TEXT_API_KEY"
	EnvImageAPIKey = "IMAGE_API_KEY"
)

// EnvSecrets reads provider keys from the process environment on every
// call, so a key set after startup is picked up by the next request.
type EnvSecrets struct{}

func (EnvSecrets) Credentials() ports.Credentials {
	return ports.Credentials{
		TextAPIKey:  strings.TrimSpace(os.Getenv(EnvTextAPIKey)),
		ImageAPIKey: strings.TrimSpace(os.Getenv(EnvImageAPIKey)),
	}
}
