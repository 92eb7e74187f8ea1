// Package httpserver exposes the receiving workflow over HTTP so that
// scanner gateways without a terminal attached can drive sessions.
package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bnema/shipscan/internal/application"
	"github.com/bnema/shipscan/internal/domain"
)

type Router struct {
	svc *application.ReceiveService
}

func NewRouter(svc *application.ReceiveService) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(requestLogger)
	mux.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1/sessions/{actor}/{shipment}", func(rt chi.Router) {
		rt.Post("/load", r.wrap(r.handleLoad))
		rt.Post("/scans", r.wrap(r.handleScan))
		rt.Post("/exception", r.wrap(r.handleException))
		rt.Get("/progress", r.wrap(r.handleProgress))
		rt.Delete("/", r.wrap(r.handleReset))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, application.ErrNoSession),
				errors.Is(err, domain.ErrShipmentNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, domain.ErrInvalidState):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, domain.ErrEmptyCode),
				errors.Is(err, domain.ErrUnrecognizedCode),
				errors.Is(err, application.ErrWrongCodeKind),
				errors.Is(err, errBadRequest):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

var errBadRequest = errors.New("bad request")

type codeRequest struct {
	Code string `json:"code"`
}

type loadResponse struct {
	Shipment  shipmentJSON `json:"shipment"`
	Progress  progressJSON `json:"progress"`
	Completed bool         `json:"completed"`
}

type scanResponse struct {
	Status    string       `json:"status"`
	Reason    string       `json:"reason,omitempty"`
	Record    *recordJSON  `json:"record,omitempty"`
	Progress  progressJSON `json:"progress"`
	Completed bool         `json:"completed"`
}

type progressResponse struct {
	State    string       `json:"state"`
	Progress progressJSON `json:"progress"`
	Records  []recordJSON `json:"records"`
}

type exceptionRequest struct {
	Message string `json:"message"`
}

type exceptionResponse struct {
	Message      string    `json:"message"`
	ScannedCount int       `json:"scanned_count"`
	MissingCount int       `json:"missing_count"`
	RaisedAt     time.Time `json:"raised_at"`
}

type shipmentJSON struct {
	ID            string `json:"id"`
	Origin        string `json:"origin,omitempty"`
	BatchID       string `json:"batch_id,omitempty"`
	ProductName   string `json:"product_name,omitempty"`
	ExpectedItems int    `json:"expected_items"`
}

type progressJSON struct {
	Scanned    int `json:"scanned"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
	Missing    int `json:"missing"`
}

type recordJSON struct {
	ItemID         string    `json:"item_id"`
	Receipt        string    `json:"receipt"`
	LedgerSequence int       `json:"ledger_sequence"`
	AcceptedAt     time.Time `json:"accepted_at"`
}

// POST /v1/sessions/{actor}/{shipment}/load
// The shipment in the path must match the one named by the scanned code.
func (r *Router) handleLoad(w http.ResponseWriter, req *http.Request) error {
	actor := chi.URLParam(req, "actor")
	shipment := chi.URLParam(req, "shipment")

	var body codeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errBadRequest
	}

	result, err := r.svc.LoadShipment(req.Context(), actor, body.Code)
	if err != nil {
		return err
	}
	if result.Shipment.ID != shipment {
		r.svc.Reset(actor, result.Shipment.ID)
		return fmt.Errorf("%w: code names shipment %s, path names %s", errBadRequest, result.Shipment.ID, shipment)
	}

	return writeJSON(w, loadResponse{
		Shipment:  toShipmentJSON(result.Shipment),
		Progress:  toProgressJSON(result.Progress),
		Completed: result.Completed,
	})
}

// POST /v1/sessions/{actor}/{shipment}/scans
func (r *Router) handleScan(w http.ResponseWriter, req *http.Request) error {
	actor := chi.URLParam(req, "actor")
	shipment := chi.URLParam(req, "shipment")

	var body codeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errBadRequest
	}

	outcome, err := r.svc.Scan(req.Context(), actor, shipment, body.Code)
	if err != nil {
		return err
	}

	resp := scanResponse{
		Status:    string(outcome.Status),
		Reason:    string(outcome.Reason),
		Progress:  toProgressJSON(outcome.Progress),
		Completed: outcome.Completed,
	}
	if outcome.Record != nil {
		record := toRecordJSON(*outcome.Record)
		resp.Record = &record
	}

	return writeJSON(w, resp)
}

// POST /v1/sessions/{actor}/{shipment}/exception
func (r *Router) handleException(w http.ResponseWriter, req *http.Request) error {
	actor := chi.URLParam(req, "actor")
	shipment := chi.URLParam(req, "shipment")

	var body exceptionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return errBadRequest
	}

	record, err := r.svc.RaiseException(req.Context(), actor, shipment, body.Message)
	if err != nil {
		return err
	}

	return writeJSON(w, exceptionResponse{
		Message:      record.Message,
		ScannedCount: record.ScannedCount,
		MissingCount: record.MissingCount,
		RaisedAt:     record.RaisedAt,
	})
}

// GET /v1/sessions/{actor}/{shipment}/progress
func (r *Router) handleProgress(w http.ResponseWriter, req *http.Request) error {
	actor := chi.URLParam(req, "actor")
	shipment := chi.URLParam(req, "shipment")

	progress, state, err := r.svc.Progress(actor, shipment)
	if err != nil {
		return err
	}

	records, err := r.svc.Records(actor, shipment)
	if err != nil {
		return err
	}

	resp := progressResponse{
		State:    string(state),
		Progress: toProgressJSON(progress),
		Records:  make([]recordJSON, 0, len(records)),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, toRecordJSON(rec))
	}

	return writeJSON(w, resp)
}

// DELETE /v1/sessions/{actor}/{shipment}
func (r *Router) handleReset(w http.ResponseWriter, req *http.Request) error {
	actor := chi.URLParam(req, "actor")
	shipment := chi.URLParam(req, "shipment")

	r.svc.Reset(actor, shipment)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

func toShipmentJSON(ref domain.ShipmentReference) shipmentJSON {
	return shipmentJSON{
		ID:            ref.ID,
		Origin:        ref.Origin,
		BatchID:       ref.BatchID,
		ProductName:   ref.ProductName,
		ExpectedItems: ref.ExpectedItems,
	}
}

func toProgressJSON(p domain.Progress) progressJSON {
	return progressJSON{
		Scanned:    p.Scanned,
		Total:      p.Total,
		Percentage: p.Percentage,
		Missing:    p.Missing,
	}
}

func toRecordJSON(rec domain.ScanRecord) recordJSON {
	return recordJSON{
		ItemID:         rec.Item.ID,
		Receipt:        rec.Receipt,
		LedgerSequence: rec.LedgerSequence,
		AcceptedAt:     rec.AcceptedAt,
	}
}
