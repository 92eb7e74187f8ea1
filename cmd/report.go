package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	progressrender "github.com/bnema/shipscan/internal/adapters/render/progress"
	tomlreport "github.com/bnema/shipscan/internal/adapters/report/toml"
)

func newReportCmd(app *app) *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "report <shipment-id>",
		Short: "Show a previously written receipt report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(app.cfg.reportDir, tomlreport.DefaultFileName(args[0]))
			report, err := tomlreport.Read(path)
			if err != nil {
				return err
			}

			view, err := app.renderer(progressrender.Snapshot{
				Shipment:  &report.Shipment,
				State:     report.State,
				Progress:  report.Progress,
				Records:   report.Records,
				Exception: report.Exception,
			}, progressrender.RenderOptions{RecentRecords: recent})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), view)
			return err
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 0, "How many recent scans to show (0 shows all)")

	return cmd
}
