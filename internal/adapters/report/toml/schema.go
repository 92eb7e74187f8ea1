package toml

import (
	"time"

	"github.com/bnema/shipscan/internal/domain"
)

type fileSchema struct {
	Version   int            `toml:"version"`
	Shipment  shipmentSchema `toml:"shipment"`
	Outcome   outcomeSchema  `toml:"outcome"`
	Scans     []scanSchema   `toml:"scans"`
	Exception *excSchema     `toml:"exception,omitempty"`
	WrittenAt time.Time      `toml:"written_at"`
}

type shipmentSchema struct {
	ID            string `toml:"id"`
	Origin        string `toml:"origin,omitempty"`
	BatchID       string `toml:"batch_id,omitempty"`
	ProductName   string `toml:"product_name,omitempty"`
	ExpectedItems int    `toml:"expected_items"`
}

type outcomeSchema struct {
	State      string `toml:"state"`
	Scanned    int    `toml:"scanned"`
	Total      int    `toml:"total"`
	Percentage int    `toml:"percentage"`
	Missing    int    `toml:"missing"`
}

type scanSchema struct {
	ItemID         string    `toml:"item_id"`
	Sequence       int       `toml:"sequence"`
	Receipt        string    `toml:"receipt"`
	LedgerSequence int       `toml:"ledger_sequence"`
	AcceptedAt     time.Time `toml:"accepted_at"`
}

type excSchema struct {
	Message      string    `toml:"message"`
	ScannedCount int       `toml:"scanned_count"`
	MissingCount int       `toml:"missing_count"`
	RaisedAt     time.Time `toml:"raised_at"`
}

func toSchema(report Report) fileSchema {
	file := fileSchema{
		Version: schemaVersion,
		Shipment: shipmentSchema{
			ID:            report.Shipment.ID,
			Origin:        report.Shipment.Origin,
			BatchID:       report.Shipment.BatchID,
			ProductName:   report.Shipment.ProductName,
			ExpectedItems: report.Shipment.ExpectedItems,
		},
		Outcome: outcomeSchema{
			State:      string(report.State),
			Scanned:    report.Progress.Scanned,
			Total:      report.Progress.Total,
			Percentage: report.Progress.Percentage,
			Missing:    report.Progress.Missing,
		},
		WrittenAt: report.WrittenAt,
	}

	file.Scans = make([]scanSchema, 0, len(report.Records))
	for _, rec := range report.Records {
		file.Scans = append(file.Scans, scanSchema{
			ItemID:         rec.Item.ID,
			Sequence:       rec.Item.Sequence,
			Receipt:        rec.Receipt,
			LedgerSequence: rec.LedgerSequence,
			AcceptedAt:     rec.AcceptedAt,
		})
	}

	if report.Exception != nil {
		file.Exception = &excSchema{
			Message:      report.Exception.Message,
			ScannedCount: report.Exception.ScannedCount,
			MissingCount: report.Exception.MissingCount,
			RaisedAt:     report.Exception.RaisedAt,
		}
	}

	return file
}

func fromSchema(file fileSchema) Report {
	report := Report{
		Shipment: domain.ShipmentReference{
			ID:            file.Shipment.ID,
			Origin:        file.Shipment.Origin,
			BatchID:       file.Shipment.BatchID,
			ProductName:   file.Shipment.ProductName,
			ExpectedItems: file.Shipment.ExpectedItems,
		},
		State: domain.SessionState(file.Outcome.State),
		Progress: domain.Progress{
			Scanned:    file.Outcome.Scanned,
			Total:      file.Outcome.Total,
			Percentage: file.Outcome.Percentage,
			Missing:    file.Outcome.Missing,
		},
		WrittenAt: file.WrittenAt,
	}

	report.Records = make([]domain.ScanRecord, 0, len(file.Scans))
	for _, scan := range file.Scans {
		report.Records = append(report.Records, domain.ScanRecord{
			Item:           domain.ItemReference{ID: scan.ItemID, Sequence: scan.Sequence},
			Receipt:        scan.Receipt,
			LedgerSequence: scan.LedgerSequence,
			AcceptedAt:     scan.AcceptedAt,
		})
	}

	if file.Exception != nil {
		report.Exception = &domain.ExceptionRecord{
			Message:      file.Exception.Message,
			ScannedCount: file.Exception.ScannedCount,
			MissingCount: file.Exception.MissingCount,
			RaisedAt:     file.Exception.RaisedAt,
		}
	}

	return report
}
