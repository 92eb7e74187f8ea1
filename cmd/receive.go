package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/shipscan/internal/adapters/reader/stream"
	progressrender "github.com/bnema/shipscan/internal/adapters/render/progress"
	tomlreport "github.com/bnema/shipscan/internal/adapters/report/toml"
	"github.com/bnema/shipscan/internal/application"
	"github.com/bnema/shipscan/internal/ports"
)

const exceptionCommand = "!exception"

func newReceiveCmd(app *app) *cobra.Command {
	var actorID string
	var shipmentCode string
	var demo bool
	var noReport bool
	var recent int

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Run a receiving session: load a shipment, then scan item codes from stdin",
		Long:  "receive reads one code per line. The first code (or --shipment) must be a shipment code; every following line is treated as an item label and confirmed against the ledger. A line starting with \"" + exceptionCommand + "\" terminates the batch on the exception path.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReceive(cmd, app, receiveOptions{
				actorID:      actorID,
				shipmentCode: shipmentCode,
				demo:         demo,
				noReport:     noReport,
				recent:       recent,
			})
		},
	}

	cmd.Flags().StringVar(&actorID, "actor", "operator", "Actor identity reported to the ledger")
	cmd.Flags().StringVar(&shipmentCode, "shipment", "", "Shipment code (default: first line of input)")
	cmd.Flags().BoolVar(&demo, "demo", false, "Use the built-in demo ledger instead of the configured one")
	cmd.Flags().BoolVar(&noReport, "no-report", false, "Skip writing the receipt report")
	cmd.Flags().IntVar(&recent, "recent", 5, "How many recent scans to show (0 shows all)")

	return cmd
}

type receiveOptions struct {
	actorID      string
	shipmentCode string
	demo         bool
	noReport     bool
	recent       int
}

func runReceive(cmd *cobra.Command, app *app, opts receiveOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	svc, _, err := app.buildService(opts.demo)
	if err != nil {
		return err
	}

	var codes ports.CodeReader = stream.New(cmd.InOrStdin())
	defer codes.Close()

	shipmentCode := opts.shipmentCode
	if shipmentCode == "" {
		shipmentCode, err = codes.Next(ctx)
		if err != nil {
			return fmt.Errorf("read shipment code: %w", err)
		}
	}

	var load application.LoadResult
	err = runResolveSpinner(ctx, out, func(ctx context.Context) error {
		var loadErr error
		load, loadErr = svc.LoadShipment(ctx, opts.actorID, shipmentCode)
		return loadErr
	})
	if err != nil {
		return fmt.Errorf("load shipment: %w", err)
	}

	shipmentID := load.Shipment.ID
	if err := renderSession(out, app, svc, opts, shipmentID); err != nil {
		return err
	}

	if !load.Completed {
		if err := scanLoop(ctx, out, codes, app, svc, opts, shipmentID); err != nil {
			return err
		}
	}

	return finishSession(out, app, svc, opts, shipmentID)
}

func scanLoop(ctx context.Context, out io.Writer, codes ports.CodeReader, app *app, svc *application.ReceiveService, opts receiveOptions, shipmentID string) error {
	for {
		code, err := codes.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if message, ok := strings.CutPrefix(code, exceptionCommand); ok {
			record, excErr := svc.RaiseException(ctx, opts.actorID, shipmentID, strings.TrimSpace(message))
			if excErr != nil {
				fmt.Fprintf(out, "exception: %v\n", excErr)
				return nil
			}
			fmt.Fprintf(out, "exception raised: %s\n", record.Message)
			return nil
		}

		outcome, err := svc.Scan(ctx, opts.actorID, shipmentID, code)
		if err != nil {
			fmt.Fprintf(out, "scan %s: %v\n", code, err)
			continue
		}

		switch outcome.Status {
		case application.ScanAccepted:
			fmt.Fprintf(out, "accepted %s\n", outcome.Record.Item.ID)
		case application.ScanDuplicate:
			fmt.Fprintf(out, "already scanned, not counted again\n")
		case application.ScanDebounced:
			// Sensor noise; stay quiet like a hand scanner would.
			continue
		case application.ScanRejected:
			fmt.Fprintf(out, "rejected: %s\n", outcome.Reason)
			if outcome.Reason.Retryable() {
				fmt.Fprintln(out, "ledger unreachable, present the label again")
			}
		}

		if err := renderSession(out, app, svc, opts, shipmentID); err != nil {
			return err
		}
		if outcome.Completed {
			return nil
		}
	}
}

func renderSession(out io.Writer, app *app, svc *application.ReceiveService, opts receiveOptions, shipmentID string) error {
	snapshot, err := sessionSnapshot(svc, opts.actorID, shipmentID)
	if err != nil {
		return err
	}

	view, err := app.renderer(snapshot, progressrender.RenderOptions{RecentRecords: opts.recent})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, view)
	return err
}

func finishSession(out io.Writer, app *app, svc *application.ReceiveService, opts receiveOptions, shipmentID string) error {
	snapshot, err := sessionSnapshot(svc, opts.actorID, shipmentID)
	if err != nil {
		return err
	}

	if opts.noReport || !snapshot.State.Terminal() {
		return nil
	}

	path := filepath.Join(app.cfg.reportDir, tomlreport.DefaultFileName(shipmentID))
	err = tomlreport.Write(path, tomlreport.Report{
		Shipment:  *snapshot.Shipment,
		State:     snapshot.State,
		Progress:  snapshot.Progress,
		Records:   snapshot.Records,
		Exception: snapshot.Exception,
		WrittenAt: app.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("write receipt report: %w", err)
	}

	_, err = fmt.Fprintf(out, "receipt report written to %s\n", path)
	return err
}

func sessionSnapshot(svc *application.ReceiveService, actorID, shipmentID string) (progressrender.Snapshot, error) {
	progress, state, err := svc.Progress(actorID, shipmentID)
	if err != nil {
		return progressrender.Snapshot{}, err
	}

	records, err := svc.Records(actorID, shipmentID)
	if err != nil {
		return progressrender.Snapshot{}, err
	}

	exception, err := svc.Exception(actorID, shipmentID)
	if err != nil {
		return progressrender.Snapshot{}, err
	}

	shipment, err := svc.Shipment(actorID, shipmentID)
	if err != nil {
		return progressrender.Snapshot{}, err
	}

	return progressrender.Snapshot{
		Shipment:  &shipment,
		State:     state,
		Progress:  progress,
		Records:   records,
		Exception: exception,
	}, nil
}
