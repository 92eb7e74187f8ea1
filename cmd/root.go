package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shipscan",
		Short:         "shipscan: verify shipment receiving against the warehouse ledger",
		Long:          "shipscan drives scan-verification sessions for incoming shipments: load a shipment code, scan item labels one at a time, and have every item confirmed at-most-once against the authoritative ledger before it counts.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newReceiveCmd(app),
		newServeCmd(app),
		newReportCmd(app),
	)

	return rootCmd
}
