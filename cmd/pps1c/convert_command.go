package main

import (
	"fmt"

	"log/slog"

	"github.com/spf13/cobra"

	"pps1c/internal/api"
	"pps1c/internal/config"
	"pps1c/internal/logging"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var convertAll bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "convert [path]",
		Short: "Convert level-1 input to a level-1c product without the daemon",
		Long: "Convert runs the load-derive-write pipeline directly. Pass a directory\n" +
			"holding the HRIT segment files of one SEVIRI repeat cycle, or a single\n" +
			"AVHRR GAC FDR file. With --all, every complete scan in the configured\n" +
			"input directory is converted.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := convertLogger(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if convertAll {
				if len(args) > 0 {
					return fmt.Errorf("--all does not take a path argument")
				}
				result, err := api.ConvertAll(cmd.Context(), cfg, logger)
				if err != nil {
					return err
				}
				if asJSON {
					if err := writeJSON(cmd, result); err != nil {
						return err
					}
				} else {
					for _, converted := range result.Converted {
						fmt.Fprintf(out, "Converted %s -> %s\n", converted.ScanID, converted.OutputFile)
					}
					for _, failed := range result.Failed {
						fmt.Fprintf(out, "Failed %s: %s\n", failed.ScanID, failed.Error)
					}
					fmt.Fprintf(out, "%d converted, %d failed\n", len(result.Converted), len(result.Failed))
				}
				if len(result.Failed) > 0 {
					return fmt.Errorf("%d scans failed to convert", len(result.Failed))
				}
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("provide an input path or use --all")
			}
			result, err := api.Convert(cmd.Context(), cfg, logger, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(out, "Converted %s -> %s\n", result.ScanID, result.OutputFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&convertAll, "all", false, "Convert every complete scan in the input directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func convertLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}
