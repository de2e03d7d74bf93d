// Command token mints access tokens for the HTTP API. Tokens are signed
// with the configured JWT secret, so run it with the server's config.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/infrastructure/auth"
	"github.com/mandibooks/backend/internal/infrastructure/config"
)

func main() {
	var (
		tenant   string
		user     string
		username string
		perms    string
	)
	flag.StringVar(&tenant, "tenant", "", "Tenant ID the token acts for (required)")
	flag.StringVar(&user, "user", "", "User ID (default: a new random ID)")
	flag.StringVar(&username, "username", "", "Display name carried in the token")
	flag.StringVar(&perms, "perms", auth.PermissionBooks, "Comma-separated permissions, e.g. books:write,tenants:manage")
	flag.Parse()

	tenantID, err := uuid.Parse(tenant)
	if err != nil {
		fail("invalid -tenant %q: %v", tenant, err)
	}
	userID := uuid.New()
	if user != "" {
		if userID, err = uuid.Parse(user); err != nil {
			fail("invalid -user %q: %v", user, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fail("failed to load configuration: %v", err)
	}

	token, expiresAt, err := auth.NewJWTService(cfg.JWT).GenerateAccessToken(auth.GenerateTokenInput{
		TenantID:    tenantID,
		UserID:      userID,
		Username:    username,
		Permissions: splitPermissions(perms),
	})
	if err != nil {
		fail("failed to sign token: %v", err)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
}

func splitPermissions(list string) []string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
