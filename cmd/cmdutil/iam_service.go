package cmdutil

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/uptrace/bun"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/config"
	"github.com/terraconstructs/skillshare/internal/db/bunx"
	"github.com/terraconstructs/skillshare/internal/repository"
	"github.com/terraconstructs/skillshare/internal/services/iam"
)

// IAMServiceOptions controls how the CLI constructs the IAM service.
type IAMServiceOptions struct {
	// EnableAutoSave persists enforcer mutations straight to casbin_rules.
	EnableAutoSave bool
}

// IAMServiceBundle bundles the service with its underlying DB connection and
// enforcer so commands can reuse them.
type IAMServiceBundle struct {
	Service  iam.Service
	Enforcer casbin.IEnforcer
	DB       *bun.DB
}

// Close releases the underlying database connection.
func (b *IAMServiceBundle) Close() {
	if b == nil || b.DB == nil {
		return
	}
	bunx.Close(b.DB)
}

// NewIAMServiceBundle centralizes IAM service construction for CLI commands.
// It wires repositories, initializes Casbin, and returns a ready-to-use service.
func NewIAMServiceBundle(cfg *config.Config, opts IAMServiceOptions) (*IAMServiceBundle, error) {
	db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	enforcer, err := auth.InitEnforcer(db)
	if err != nil {
		bunx.Close(db)
		return nil, fmt.Errorf("failed to initialize casbin enforcer: %w", err)
	}
	enforcer.EnableAutoSave(opts.EnableAutoSave)

	codec, err := auth.NewTokenCodec([]byte(cfg.JWTSecret))
	if err != nil {
		bunx.Close(db)
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	iamService, err := iam.NewIAMService(iam.IAMServiceDependencies{
		Users:   repository.NewBunUserRepository(db),
		Follows: repository.NewBunFollowRepository(db),
		Codec:   codec,
		Policy:  auth.NewPolicy(enforcer),
	}, iam.IAMServiceConfig{Config: cfg})
	if err != nil {
		bunx.Close(db)
		return nil, fmt.Errorf("failed to create IAM service: %w", err)
	}

	return &IAMServiceBundle{
		Service:  iamService,
		Enforcer: enforcer,
		DB:       db,
	}, nil
}
