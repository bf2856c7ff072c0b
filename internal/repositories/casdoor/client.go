package casdoor

import (
	"fmt"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/user-admin-service/internal/config"
)

// NewAdminClient builds an identity-service client authorised with the
// service-role credential. It bypasses per-user access rules, so it must only
// be used from server code. Construction does not contact the service.
func NewAdminClient(cfg config.BackendConfig) (*casdoorsdk.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("identity service client: %w", err)
	}

	return casdoorsdk.NewClient(
		cfg.URL,
		cfg.ClientID,
		cfg.ServiceKey,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	), nil
}
