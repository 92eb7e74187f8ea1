// Package rest is a LedgerClient over the ledger node's JSON API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/shipscan/internal/domain"
	"github.com/bnema/shipscan/internal/ports"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.LedgerClient = (*Client)(nil)

// NewClient builds a client for the ledger node at baseURL. A nil
// httpClient gets a default with a request timeout; callers still bound
// individual confirms with their context.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type shipmentPayload struct {
	ID            string `json:"id"`
	Origin        string `json:"origin"`
	BatchID       string `json:"batch_id"`
	ProductName   string `json:"product_name"`
	ExpectedItems int    `json:"expected_items"`
}

type scanRequest struct {
	ItemRef string `json:"item_ref"`
	ActorID string `json:"actor_id"`
}

type scanResponse struct {
	Accepted bool   `json:"accepted"`
	Receipt  string `json:"receipt,omitempty"`
	Sequence int    `json:"sequence,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type exceptionRequest struct {
	ActorID       string `json:"actor_id"`
	Message       string `json:"message"`
	ScannedCount  int    `json:"scanned_count"`
	ExpectedCount int    `json:"expected_count"`
}

func (c *Client) ResolveShipment(ctx context.Context, ref string) (domain.ShipmentReference, error) {
	endpoint := c.baseURL + "/shipments/" + url.PathEscape(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.ShipmentReference{}, fmt.Errorf("build resolve request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ShipmentReference{}, fmt.Errorf("resolve shipment: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ShipmentReference{}, domain.ErrShipmentNotFound
	case resp.StatusCode != http.StatusOK:
		return domain.ShipmentReference{}, fmt.Errorf("resolve shipment: ledger returned %s", resp.Status)
	}

	var payload shipmentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.ShipmentReference{}, fmt.Errorf("decode shipment payload: %w", err)
	}

	return domain.ShipmentReference{
		ID:            payload.ID,
		Origin:        payload.Origin,
		BatchID:       payload.BatchID,
		ProductName:   payload.ProductName,
		ExpectedItems: payload.ExpectedItems,
	}, nil
}

func (c *Client) VerifyAndConfirm(ctx context.Context, shipmentID, itemRef, actorID string) (ports.ConfirmResult, error) {
	endpoint := c.baseURL + "/shipments/" + url.PathEscape(shipmentID) + "/scans"
	body, err := json.Marshal(scanRequest{ItemRef: itemRef, ActorID: actorID})
	if err != nil {
		return ports.ConfirmResult{}, fmt.Errorf("encode scan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.ConfirmResult{}, fmt.Errorf("build scan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.ConfirmResult{}, fmt.Errorf("confirm scan: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.ConfirmResult{}, fmt.Errorf("confirm scan: ledger returned %s", resp.Status)
	}

	var payload scanResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ports.ConfirmResult{}, fmt.Errorf("decode scan response: %w", err)
	}

	return ports.ConfirmResult{
		Accepted: payload.Accepted,
		Receipt:  payload.Receipt,
		Sequence: payload.Sequence,
		Reason:   domain.RejectReason(payload.Reason),
	}, nil
}

func (c *Client) ReportException(ctx context.Context, report ports.ExceptionReport) error {
	endpoint := c.baseURL + "/shipments/" + url.PathEscape(report.ShipmentID) + "/exceptions"
	body, err := json.Marshal(exceptionRequest{
		ActorID:       report.ActorID,
		Message:       report.Message,
		ScannedCount:  report.ScannedCount,
		ExpectedCount: report.ExpectedCount,
	})
	if err != nil {
		return fmt.Errorf("encode exception report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build exception request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("report exception: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("report exception: ledger returned %s", resp.Status)
	}
	return nil
}
