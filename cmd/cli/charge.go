package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/giovaniif/e-commerce/pix/cmd/api"
	"github.com/giovaniif/e-commerce/pix/domain/charge"
	"github.com/giovaniif/e-commerce/pix/infra/config"
	"github.com/giovaniif/e-commerce/pix/infra/logging"
)

func chargeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charge",
		Short: "Create or inspect charges from the terminal",
	}
	cmd.AddCommand(chargeCreateCmd())
	cmd.AddCommand(chargeStatusCmd())
	return cmd
}

func chargeCreateCmd() *cobra.Command {
	var valor, txid, descricao string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an immediate charge and print its QR code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			request := charge.CreateRequest{Valor: charge.NewAmount(valor)}
			if cmd.Flags().Changed("txid") {
				request.Txid = &txid
			}
			if cmd.Flags().Changed("descricao") {
				request.Descricao = &descricao
			}

			deps, err := loadDependencies(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			result, err := deps.Create.Create(cmd.Context(), request)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"txid":         result.Txid,
				"loc_id":       result.LocId,
				"qrcode":       result.QRCode,
				"imagemQrcode": result.ImageQRCode,
			})
		},
	}

	cmd.Flags().StringVar(&valor, "valor", "", "charge amount, e.g. 10.50")
	cmd.Flags().StringVar(&txid, "txid", "", "client transaction id (gateway assigns one when omitted)")
	cmd.Flags().StringVar(&descricao, "descricao", "", "message shown to the payer")
	_ = cmd.MarkFlagRequired("valor")

	return cmd
}

func chargeStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [txid]",
		Short: "Show the gateway status of a charge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := loadDependencies(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			result, err := deps.Status.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := map[string]string{
				"txid":         result.Txid,
				"status":       result.Status,
				"copia_e_cola": result.CopiaECola,
			}
			if result.Valor != "" {
				out["valor"] = result.Valor
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

// loadDependencies logs to stderr so stdout carries only the JSON result.
func loadDependencies(cmd *cobra.Command) (*api.Dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.ServiceName)
	return api.BuildDependencies(cmd.Context(), cfg, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
