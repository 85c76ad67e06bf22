package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frozify/storefront/pkg/config"
	"github.com/frozify/storefront/pkg/env"
)

type appProvider func() (*app, error)

// offline marks commands that never open the local database or call the API.
const offline = "offline"

func newRootCmd(bootstrap bootstrapFunc) *cobra.Command {
	opts := options{}
	var current *app

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Shop the Frozify catalog from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[offline] == "true" {
				return nil
			}
			a, err := bootstrap(cmd.Context(), opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			current = a
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if current == nil {
				return nil
			}
			return current.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", env.Get("FROZIFY_CLI_DB", "frozify-cli.db"), "local SQLite file holding cart, login and city")
	flags.StringVar(&opts.baseURL, "api", env.Get(config.EnvStorefrontBaseURL, "http://localhost:5000/api"), "storefront API base URL")
	flags.StringVar(&opts.recipient, "recipient", env.Get(config.EnvHandoffRecipient, "923704152383"), "WhatsApp number receiving order summaries")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "storefront API timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stdout")

	appFor := func() (*app, error) {
		if current == nil {
			return nil, fmt.Errorf("storefront session not initialised")
		}
		return current, nil
	}

	root.AddCommand(
		newProductsCmd(appFor),
		newCartCmd(appFor),
		newLoginCmd(appFor),
		newRegisterCmd(appFor),
		newLogoutCmd(appFor),
		newWhoamiCmd(appFor),
		newCityCmd(appFor),
		newCheckoutCmd(appFor),
	)
	return root
}
