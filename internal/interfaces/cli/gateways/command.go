package gateways

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/infrastructure/config"
	infraPayment "github.com/fundhive/fundhive/internal/infrastructure/payment"
	"github.com/fundhive/fundhive/internal/interfaces/cli/server"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

var (
	env        string
	filterFlag string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateways",
		Short: "Inspect payment gateways",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List discovered gateways",
		Long:  `Discover built-in gateways, apply manifest overrides and print the resulting catalog.`,
		RunE:  runList,
	}
	list.Flags().StringVarP(&filterFlag, "type", "t", "all", "Gateway type filter (all, online, manual)")

	cmd.AddCommand(list)
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	filter, err := vo.ParseGatewayFilter(filterFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load(server.MapEnvToGinMode(env))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Logger, cfg.Server.Mode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	registry := paymentgateway.NewRegistry(cfg.Gateway, logger.NewLogger().Named("payment.registry"))
	if err := registry.Discover(infraPayment.BuiltinModules(), cfg.Payment.ManifestDir); err != nil {
		return fmt.Errorf("failed to discover payment gateways: %w", err)
	}

	return printCatalog(cmd.OutOrStdout(), registry.List(filter))
}

func printCatalog(out io.Writer, manifests []paymentgateway.Manifest) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tTYPE\tLABEL\tINSTALLED\tENABLED\tFUTURE PAYMENTS\n")
	for _, m := range manifests {
		label := m.Config.Label
		if label == "" {
			label = m.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\t%t\n",
			m.Name, m.Type, label, m.IsInstalled, m.IsEnabled, m.SupportsFuturePayments)
	}
	return w.Flush()
}
