package projections

import (
	"context"
	"log/slog"

	"campdesk/internal/adapters/rpc"
	storebtx "campdesk/internal/adapters/storage/banktransaction"
	storeinvoice "campdesk/internal/adapters/storage/invoice"
	storerequest "campdesk/internal/adapters/storage/request"
	storesession "campdesk/internal/adapters/storage/session"
	"campdesk/internal/application/relation"
	"campdesk/internal/domain/banktransaction"
	"campdesk/internal/domain/invoice"
	"campdesk/internal/domain/request"
	"campdesk/internal/domain/session"
)

// DashboardSessionStore defines the session counts the dashboard needs.
type DashboardSessionStore interface {
	Count(ctx context.Context, filter storesession.ListFilter) (int, error)
}

// DashboardRequestStore defines the request counts the dashboard needs.
type DashboardRequestStore interface {
	Count(ctx context.Context, filter storerequest.ListFilter) (int, error)
}

// DashboardInvoiceStore defines the invoice counts the dashboard needs.
type DashboardInvoiceStore interface {
	Count(ctx context.Context, filter storeinvoice.ListFilter) (int, error)
}

// DashboardTransactionStore defines the transaction counts the dashboard needs.
type DashboardTransactionStore interface {
	Count(ctx context.Context, filter storebtx.ListFilter) (int, error)
}

// DashboardDeps holds dependencies for the dashboard projection.
type DashboardDeps struct {
	SessionStore     DashboardSessionStore
	RequestStore     DashboardRequestStore
	InvoiceStore     DashboardInvoiceStore
	TransactionStore DashboardTransactionStore
	Invoker          rpc.Invoker
}

// RevenueLine is one row of the backend's financial summary.
type RevenueLine struct {
	Label       string
	AmountCents int64
}

// Dashboard aggregates the numbers shown on the landing screen.
type Dashboard struct {
	ActiveSessions        int
	FullSessions          int
	PendingRequests       int
	OutstandingInvoices   int
	OverdueInvoices       int
	UnmatchedTransactions int
	Revenue               []RevenueLine
	RevenueUnavailable    bool // the summary procedure failed; counts still render
}

// QueryGetDashboard gathers operational counts from local stores and the
// revenue summary from the backend. A failing summary procedure degrades to
// counts-only rather than blanking the screen.
func QueryGetDashboard(ctx context.Context, deps DashboardDeps) (Dashboard, error) {
	var d Dashboard
	var err error

	if d.ActiveSessions, err = deps.SessionStore.Count(ctx, storesession.ListFilter{Status: session.StatusActive}); err != nil {
		return d, err
	}
	if d.FullSessions, err = deps.SessionStore.Count(ctx, storesession.ListFilter{Status: session.StatusFull}); err != nil {
		return d, err
	}
	if d.PendingRequests, err = deps.RequestStore.Count(ctx, storerequest.ListFilter{Status: request.StatusPending}); err != nil {
		return d, err
	}
	if d.OutstandingInvoices, err = deps.InvoiceStore.Count(ctx, storeinvoice.ListFilter{Status: invoice.StatusSent}); err != nil {
		return d, err
	}
	if d.OverdueInvoices, err = deps.InvoiceStore.Count(ctx, storeinvoice.ListFilter{Status: invoice.StatusOverdue}); err != nil {
		return d, err
	}
	if d.UnmatchedTransactions, err = deps.TransactionStore.Count(ctx, storebtx.ListFilter{Status: banktransaction.StatusUnmatched}); err != nil {
		return d, err
	}

	if deps.Invoker != nil {
		data, err := deps.Invoker.Invoke(ctx, "financial_summary", nil)
		if err != nil {
			slog.Warn("dashboard_event", "event", "financial_summary_failed", "error", err)
			d.RevenueUnavailable = true
			return d, nil
		}
		d.Revenue = revenueLines(data)
	}
	return d, nil
}

// revenueLines normalizes the summary payload. Each line's category relation
// arrives either as an object or a single-element array depending on the
// backend's join; Unwrap hides that.
func revenueLines(data map[string]any) []RevenueLine {
	items, ok := data["lines"].([]any)
	if !ok {
		return nil
	}
	var lines []RevenueLine
	for _, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var line RevenueLine
		if cat := relation.UnwrapField(row, "category"); cat != nil {
			line.Label, _ = cat["label"].(string)
		}
		if amount, ok := row["amount_cents"].(float64); ok {
			line.AmountCents = int64(amount)
		}
		lines = append(lines, line)
	}
	return lines
}
