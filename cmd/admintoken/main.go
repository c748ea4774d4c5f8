// Command admintoken issues a bearer token for the connector admin API using
// the configured JWT secret.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/erp/shopify-connector/internal/infrastructure/auth"
	"github.com/erp/shopify-connector/internal/infrastructure/config"
)

func main() {
	var (
		subject string
		scopes  string
		ttl     time.Duration
		asJSON  bool
	)
	flag.StringVar(&subject, "subject", "", "Token subject, usually the operator or service name (required)")
	flag.StringVar(&scopes, "scopes", auth.ScopeRead+","+auth.ScopeWrite, "Comma separated scopes")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (default: CONNECTOR_JWT_EXPIRATION)")
	flag.BoolVar(&asJSON, "json", false, "Print the token with its metadata as JSON")
	flag.Parse()

	if subject == "" {
		fmt.Fprintln(os.Stderr, "admintoken: -subject is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "admintoken: load configuration: %v\n", err)
		os.Exit(1)
	}

	issued, err := auth.NewJWTService(cfg.JWT).Issue(subject, splitScopes(scopes), ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "admintoken: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(issued)
		return
	}
	fmt.Println(issued.Token)
}

func splitScopes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
