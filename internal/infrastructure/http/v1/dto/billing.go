// Package dto defines request and response shapes for the v1 API.
package dto

import (
	"time"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalog"
	"tillpoint/internal/domain/draft"
	"tillpoint/internal/domain/invoice"
	"tillpoint/internal/domain/queue"
	"tillpoint/internal/domain/returns"
)

// --- requests ---

type OpenSessionRequest struct {
	Terminal string `json:"terminal"`
	Cashier  string `json:"cashier"`
}

type AddLineRequest struct {
	ItemID string `json:"itemId" binding:"required"`

	// Quantity defaults to 1 when omitted.
	Quantity *int `json:"quantity"`
}

func (r AddLineRequest) Qty() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

type UpdateQuantityRequest struct {
	// Pointer so an explicit zero (remove the line) survives binding.
	Quantity *int `json:"quantity" binding:"required"`
}

type ParkRequest struct {
	Label string `json:"label"`
}

type ManualReturnRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// --- responses ---

type OpenSessionResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

type ItemResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	UnitPrice    string `json:"unitPrice"`
	AvailableQty int    `json:"availableQty"`
}

func FromItem(item catalog.Item) ItemResponse {
	return ItemResponse{
		ID:           item.ID.String(),
		Code:         item.Code,
		Name:         item.Name,
		UnitPrice:    types.Display(item.UnitPrice).String(),
		AvailableQty: item.AvailableQty,
	}
}

type LineResponse struct {
	ItemID      string `json:"itemId"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	OriginalQty int    `json:"originalQty"`
}

func fromLines(lines []draft.Line) []LineResponse {
	out := make([]LineResponse, len(lines))
	for i, l := range lines {
		out[i] = LineResponse{
			ItemID:      l.ItemID.String(),
			UnitPrice:   types.Display(l.UnitPrice).String(),
			Quantity:    l.Quantity,
			OriginalQty: l.OriginalQty,
		}
	}
	return out
}

type TotalsResponse struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

func FromTotals(t draft.Totals) TotalsResponse {
	return TotalsResponse{
		Subtotal: types.Display(t.Subtotal).String(),
		Discount: types.Display(t.Discount).String(),
		Total:    types.Display(t.Total).String(),
	}
}

type DraftResponse struct {
	DraftID       string         `json:"draftId"`
	InvoiceNumber string         `json:"invoiceNumber"`
	Lines         []LineResponse `json:"lines"`
	Totals        TotalsResponse `json:"totals"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func FromDraft(d *draft.Draft, totals draft.Totals) DraftResponse {
	return DraftResponse{
		DraftID:       d.ID.String(),
		InvoiceNumber: d.Number,
		Lines:         fromLines(d.Lines),
		Totals:        FromTotals(totals),
		CreatedAt:     d.CreatedAt,
	}
}

type PendingEntryResponse struct {
	DraftID       string    `json:"draftId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	Label         string    `json:"label"`
	LineCount     int       `json:"lineCount"`
	ParkedAt      time.Time `json:"parkedAt"`
}

func FromPending(entries []*queue.Entry) []PendingEntryResponse {
	out := make([]PendingEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = PendingEntryResponse{
			DraftID:       e.DraftID.String(),
			InvoiceNumber: e.Draft.Number,
			Label:         e.Label,
			LineCount:     len(e.Draft.Lines),
			ParkedAt:      e.ParkedAt,
		}
	}
	return out
}

type InvoiceResponse struct {
	InvoiceNumber string         `json:"invoiceNumber"`
	Lines         []LineResponse `json:"lines"`
	Subtotal      string         `json:"subtotal"`
	Discount      string         `json:"discount"`
	Total         string         `json:"total"`
	Date          time.Time      `json:"date"`
}

func FromInvoice(inv *invoice.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceNumber: inv.Number,
		Lines:         fromLines(inv.Lines),
		Subtotal:      types.Display(inv.Subtotal).String(),
		Discount:      types.Display(inv.Discount).String(),
		Total:         types.Display(inv.Total).String(),
		Date:          inv.Date,
	}
}

type SideEffectResponse struct {
	Kind      string `json:"kind"`
	ItemID    string `json:"itemId,omitempty"`
	Reference string `json:"reference,omitempty"`
	Ok        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

type CommitResponse struct {
	Invoice     InvoiceResponse      `json:"invoice"`
	SideEffects []SideEffectResponse `json:"sideEffects"`
	NextDraft   DraftResponse        `json:"nextDraft"`
}

func FromCommitResult(res *invoice.Result) []SideEffectResponse {
	out := make([]SideEffectResponse, len(res.SideEffects))
	for i, se := range res.SideEffects {
		resp := SideEffectResponse{
			Kind:      string(se.Kind),
			Reference: se.Reference,
			Ok:        !se.Failed(),
		}
		if !id.IsNil(se.ItemID) {
			resp.ItemID = se.ItemID.String()
		}
		if se.Err != nil {
			resp.Error = se.Err.Error()
		}
		out[i] = resp
	}
	return out
}

type ReturnResponse struct {
	ReturnNumber        string    `json:"returnNumber"`
	ItemID              string    `json:"itemId"`
	Quantity            int       `json:"quantity"`
	Value               string    `json:"valueAfterDiscount"`
	Reason              string    `json:"reason"`
	LinkedInvoiceNumber string    `json:"linkedInvoiceNumber,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

func FromReturn(rec returns.Record) ReturnResponse {
	return ReturnResponse{
		ReturnNumber:        rec.Number,
		ItemID:              rec.ItemID.String(),
		Quantity:            rec.Quantity,
		Value:               types.Display(rec.Value).String(),
		Reason:              rec.Reason,
		LinkedInvoiceNumber: rec.LinkedInvoiceNumber,
		CreatedAt:           rec.CreatedAt,
	}
}
