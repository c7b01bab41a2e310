package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go-reservation-board/internal/converter"
	"go-reservation-board/internal/domain/gateway"
	"go-reservation-board/pkg/outcome"

	"github.com/sirupsen/logrus"
)

const (
	pathModifyReservation = "/api/reservations/modify"
	pathCancelReservation = "/api/reservations/cancel"
	pathReserveTimeSlot   = "/api/reservations/reserve"
)

// HTTPFallback is the plain HTTP path used when the socket cannot
// deliver. It implements gateway.BackendAPI and never panics: transport
// failures come back as a failed Outcome.
type HTTPFallback struct {
	log     *logrus.Logger
	baseURL string
	client  *http.Client
}

func NewHTTPFallback(log *logrus.Logger, baseURL string, client *http.Client) *HTTPFallback {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFallback{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (f *HTTPFallback) ModifyReservation(ctx context.Context, params gateway.ModifyParams) outcome.Outcome {
	return f.post(ctx, pathModifyReservation, converter.ModifyParamsToPayload(params))
}

func (f *HTTPFallback) CancelReservation(ctx context.Context, params gateway.CancelParams) outcome.Outcome {
	payload := map[string]any{
		"id":           params.ID,
		"date":         params.Date,
		"is_localized": params.Localized,
	}
	return f.post(ctx, pathCancelReservation, payload)
}

func (f *HTTPFallback) ReserveTimeSlot(ctx context.Context, params gateway.ReserveParams) outcome.Outcome {
	payload := map[string]any{
		"customer_id": params.CustomerID,
		"date":        params.Date,
		"time":        params.Time,
		"name":        params.Name,
		"type":        int(params.Type),
		"client_ref":  params.ClientRef,
	}
	return f.post(ctx, pathReserveTimeSlot, payload)
}

func (f *HTTPFallback) post(ctx context.Context, path string, payload any) outcome.Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		f.log.Warnf("Failed to encode fallback payload for %s: %+v", path, err)
		return outcome.Fail("Request failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+path, bytes.NewReader(body))
	if err != nil {
		f.log.Warnf("Failed to build fallback request for %s: %+v", path, err)
		return outcome.Fail("Request failed")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warnf("Fallback request to %s failed: %+v", path, err)
		return outcome.Fail("Network error")
	}
	defer resp.Body.Close()

	var result outcome.Outcome
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		f.log.Warnf("Undecodable fallback response from %s: %+v", path, err)
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return outcome.OK("")
		}
		return outcome.Fail("Request failed")
	}

	return result
}
