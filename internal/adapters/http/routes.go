package web

import "net/http"

// registerRoutes wires every admin screen and action onto the mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleDashboard)
	mux.HandleFunc("/healthz", handleHealthz)

	// Catalog
	mux.HandleFunc("/stages", handleStages)
	mux.HandleFunc("/stages/delete", handleStageDelete)
	mux.HandleFunc("/stages/photo", handleStagePhoto)
	mux.HandleFunc("/stages/export", handleStagesExport)
	mux.HandleFunc("/centers", handleCenters)
	mux.HandleFunc("/centers/delete", handleCenterDelete)
	mux.HandleFunc("/sessions", handleSessions)
	mux.HandleFunc("/sessions/delete", handleSessionDelete)
	mux.HandleFunc("/schools", handleSchools)
	mux.HandleFunc("/schools/delete", handleSchoolDelete)
	mux.HandleFunc("/tariffs", handleTariffs)
	mux.HandleFunc("/tariffs/delete", handleTariffDelete)

	// Billing
	mux.HandleFunc("/invoices", handleInvoices)
	mux.HandleFunc("/invoices/cancel", handleInvoiceCancel)
	mux.HandleFunc("/invoices/export", handleInvoicesExport)
	mux.HandleFunc("/creditnotes", handleCreditNotes)
	mux.HandleFunc("/transactions", handleTransactions)
	mux.HandleFunc("/transactions/match", handleTransactionMatch)
	mux.HandleFunc("/transactions/unmatch", handleTransactionUnmatch)
	mux.HandleFunc("/transactions/ignore", handleTransactionIgnore)
	mux.HandleFunc("/transactions/reconcile", handleAutoReconcile)
	mux.HandleFunc("/transactions/export", handleTransactionsExport)

	// Requests and waiting list
	mux.HandleFunc("/requests", handleRequests)
	mux.HandleFunc("/requests/decide", handleRequestDecide)
	mux.HandleFunc("/requests/delete", handleRequestDelete)
	mux.HandleFunc("/waitlist", handleWaitlist)
	mux.HandleFunc("/waitlist/delete", handleWaitlistDelete)

	// Newsletter
	mux.HandleFunc("/newsletter", handleSubscribers)
	mux.HandleFunc("/newsletter/subscribe", handleSubscribe)
	mux.HandleFunc("/newsletter/unsubscribe", handleUnsubscribe)
	mux.HandleFunc("/newsletter/send", handleNewsletterSend)
	mux.HandleFunc("/newsletter/delete", handleSubscriberDelete)
}
