package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	cl := &client{
		BaseURL:   envOr("FLEETHUB_URL", "http://localhost:8080"),
		Token:     envOr("FLEETHUB_TOKEN", ""),
		OutFormat: envOr("FLEETHUB_OUT", "text"),
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		Out:       out,
	}

	root := &cobra.Command{
		Use:           "hubctl",
		Short:         "CLI admin para el Hub de fleethub",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cl.BaseURL, "url", cl.BaseURL, "URL base del Hub (env FLEETHUB_URL)")
	root.PersistentFlags().StringVar(&cl.Token, "token", cl.Token, "Bearer admin (env FLEETHUB_TOKEN)")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", cl.OutFormat, "Formato de salida: json|text")

	root.AddCommand(newTenantsCmd(cl), newMarketplaceCmd(cl), newFleetCmd(cl), newTokenCmd(cl))
	return root
}

func newTenantsCmd(cl *client) *cobra.Command {
	cmd := &cobra.Command{Use: "tenants", Short: "Operaciones sobre tenants"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Listar tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call(cmd.Context(), http.MethodGet, "/tenants", nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <id|slug>",
		Short: "Ver un tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call(cmd.Context(), http.MethodGet, tenantPath(args[0]), nil)
		},
	})

	var name string
	create := &cobra.Command{
		Use:   "create <slug>",
		Short: "Crear un tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call(cmd.Context(), http.MethodPost, "/tenants", map[string]string{"slug": args[0], "name": name})
		},
	}
	create.Flags().StringVar(&name, "name", "", "Nombre visible (default: slug)")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id|slug>",
		Short: "Eliminar un tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call(cmd.Context(), http.MethodDelete, tenantPath(args[0]), nil)
		},
	})
	return cmd
}

func newMarketplaceCmd(cl *client) *cobra.Command {
	cmd := &cobra.Command{Use: "marketplace", Short: "Catálogo y suscripciones"}

	cmd.AddCommand(&cobra.Command{
		Use:   "modules",
		Short: "Listar el catálogo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call(cmd.Context(), http.MethodGet, "/marketplace/modules", nil)
		},
	})
	for _, op := range []string{"purchase", "unsubscribe"} {
		op := op
		cmd.AddCommand(&cobra.Command{
			Use:   op + " <tenant> <product>",
			Short: op + " de un módulo (product = id o slug)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cl.call(cmd.Context(), http.MethodPost, "/marketplace/"+op,
					map[string]string{"tenantId": args[0], "productId": args[1]})
			},
		})
	}
	return cmd
}

func newFleetCmd(cl *client) *cobra.Command {
	cmd := &cobra.Command{Use: "fleet", Short: "Estado de la flota"}
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Totales online/offline y promedios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call(cmd.Context(), http.MethodGet, "/fleet/stats", nil)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "instances",
		Short: "Estado por instancia",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call(cmd.Context(), http.MethodGet, "/fleet/instances", nil)
		},
	})
	return cmd
}

// newTokenCmd firma un bearer HS256 local para entornos de desarrollo.
func newTokenCmd(cl *client) *cobra.Command {
	var (
		secret  = envOr("ADMIN_JWT_SECRET", "")
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Firmar un bearer admin con el secreto compartido",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret es requerido (o env ADMIN_JWT_SECRET)")
			}
			tok, err := signAdminToken(secret, subject, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cl.Out, tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", secret, "Secreto HS256 (env ADMIN_JWT_SECRET)")
	cmd.Flags().StringVar(&subject, "sub", "hubctl", "Subject del token")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Vigencia")
	return cmd
}

func signAdminToken(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
