package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"campdesk/internal/adapters/storage/banktransaction"
	"campdesk/internal/adapters/storage/creditnote"
	"campdesk/internal/adapters/storage/invoice"
	"campdesk/internal/application/exporter"
	"campdesk/internal/application/format"
	"campdesk/internal/application/listutil"
	"campdesk/internal/application/listview"
	"campdesk/internal/application/orchestrators"
	btxDomain "campdesk/internal/domain/banktransaction"
	creditnoteDomain "campdesk/internal/domain/creditnote"
	invoiceDomain "campdesk/internal/domain/invoice"
	"campdesk/internal/domain/payment"
	"campdesk/internal/gateway"
)

// --- Invoices ---

// handleInvoices handles GET (list) and POST (issue) for /invoices.
func handleInvoices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"number", "parent_name", "amount_cents", "due_on", "created_at"},
			[]string{"status", "session_id"},
		)

		state := fetchList(ctx, lp, func(ctx context.Context, q listview.Query) (listview.Result[invoiceDomain.Invoice], error) {
			filter := invoice.ListFilter{
				Limit:     q.PerPage,
				Offset:    (q.Page - 1) * q.PerPage,
				Search:    q.Search,
				Sort:      q.Sort,
				Dir:       q.Dir,
				Status:    q.Filters["status"],
				SessionID: q.Filters["session_id"],
			}
			rows, err := stores.InvoiceStore.List(ctx, filter)
			if err != nil {
				return listview.Result[invoiceDomain.Invoice]{}, err
			}
			total, err := stores.InvoiceStore.Count(ctx, filter)
			if err != nil {
				return listview.Result[invoiceDomain.Invoice]{}, err
			}
			return listview.Result[invoiceDomain.Invoice]{Rows: rows, TotalCount: total}, nil
		})
		if state.Error != "" {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": state.Error})
			return
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "get_invoice_list.html", map[string]any{
				"Invoices":       state.Rows,
				"PageInfo":       state.PageInfo,
				"Sort":           state.Sort,
				"Dir":            state.Dir,
				"Search":         state.Search,
				"Status":         state.Filters["status"],
				"PerPageOptions": listutil.PerPageOptions,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"rows":       state.Rows,
			"totalCount": state.TotalCount,
			"pageInfo":   state.PageInfo,
		})
		return
	}

	if r.Method == "POST" {
		input := orchestrators.IssueInvoiceInput{}
		if isForm(r) {
			if err := parseRequestForm(r); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.ParentName = r.FormValue("ParentName")
			input.ParentEmail = r.FormValue("ParentEmail")
			cents, err := parseCents(r.FormValue("Amount"))
			if err != nil {
				http.Error(w, "Invalid amount", http.StatusBadRequest)
				return
			}
			input.AmountCents = cents
			input.SessionID = r.FormValue("SessionID")
			input.DueInDays, _ = strconv.Atoi(r.FormValue("DueInDays"))
		} else if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		inv, err := orchestrators.ExecuteIssueInvoice(ctx, input, orchestrators.IssueInvoiceDeps{
			InvoiceStore:      stores.InvoiceStore,
			GenerateID:        generateID,
			GenerateReference: payment.NewReference,
			Now:               timeNow,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if isHTMLRequest(r) {
			http.Redirect(w, r, "/invoices", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusCreated, inv)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleInvoiceCancel handles POST /invoices/cancel.
func handleInvoiceCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		ID string `json:"ID"`
	}
	if isForm(r) {
		parseRequestForm(r)
		input.ID = r.FormValue("ID")
	} else if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteCancelInvoice(r.Context(), input.ID, orchestrators.CancelInvoiceDeps{
		InvoiceStore: stores.InvoiceStore,
	})
	if errors.Is(err, gateway.ErrNotFound) {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/invoices", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleInvoicesExport handles GET /invoices/export.
func handleInvoicesExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	lp := listutil.ParseListParams(r.URL.Query(),
		[]string{"number", "due_on", "created_at"},
		[]string{"status"},
	)
	filter := invoice.ListFilter{
		Limit:  lp.PerPage,
		Offset: (lp.Page - 1) * lp.PerPage,
		Search: lp.Search,
		Sort:   lp.Sort,
		Dir:    lp.Dir,
		Status: lp.Filters["status"],
	}
	rows, err := stores.InvoiceStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}

	header := []string{"number", "reference", "parent", "amount", "status", "due_on"}
	export, err := exporter.CSV("invoices", timeNow(), header, exporter.Rows(rows, func(inv invoiceDomain.Invoice) []string {
		return []string{
			inv.Number,
			inv.Reference,
			inv.ParentName,
			format.EUR(inv.AmountCents),
			inv.Status,
			format.ISODate(inv.DueOn),
		}
	}))
	if err != nil {
		internalError(w, err)
		return
	}
	serveExport(w, export)
}

// --- Credit notes ---

// handleCreditNotes handles GET (list) and POST (create) for /creditnotes.
func handleCreditNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"number", "amount_cents", "created_at"},
			[]string{"status", "invoice_id"},
		)

		state := fetchList(ctx, lp, func(ctx context.Context, q listview.Query) (listview.Result[creditnoteDomain.CreditNote], error) {
			filter := creditnote.ListFilter{
				Limit:     q.PerPage,
				Offset:    (q.Page - 1) * q.PerPage,
				Search:    q.Search,
				Sort:      q.Sort,
				Dir:       q.Dir,
				Status:    q.Filters["status"],
				InvoiceID: q.Filters["invoice_id"],
			}
			rows, err := stores.CreditNoteStore.List(ctx, filter)
			if err != nil {
				return listview.Result[creditnoteDomain.CreditNote]{}, err
			}
			total, err := stores.CreditNoteStore.Count(ctx, filter)
			if err != nil {
				return listview.Result[creditnoteDomain.CreditNote]{}, err
			}
			return listview.Result[creditnoteDomain.CreditNote]{Rows: rows, TotalCount: total}, nil
		})
		if state.Error != "" {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": state.Error})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"rows":       state.Rows,
			"totalCount": state.TotalCount,
			"pageInfo":   state.PageInfo,
		})
		return
	}

	if r.Method == "POST" {
		input := orchestrators.CreateCreditNoteInput{}
		if isForm(r) {
			if err := parseRequestForm(r); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.InvoiceID = r.FormValue("InvoiceID")
			cents, err := parseCents(r.FormValue("Amount"))
			if err != nil {
				http.Error(w, "Invalid amount", http.StatusBadRequest)
				return
			}
			input.AmountCents = cents
			input.Reason = r.FormValue("Reason")
		} else if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		note, err := orchestrators.ExecuteCreateCreditNote(ctx, input, orchestrators.CreateCreditNoteDeps{
			CreditNoteStore: stores.CreditNoteStore,
			InvoiceStore:    stores.InvoiceStore,
			GenerateID:      generateID,
			Now:             timeNow,
		})
		if errors.Is(err, gateway.ErrNotFound) {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if isHTMLRequest(r) {
			http.Redirect(w, r, "/creditnotes", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusCreated, note)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// --- Bank transactions ---

// handleTransactions handles GET (list) and POST (record an imported
// statement line) for /transactions.
func handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"booked_on", "amount_cents", "counterparty", "created_at"},
			[]string{"status", "invoice_id"},
		)

		state := fetchList(ctx, lp, func(ctx context.Context, q listview.Query) (listview.Result[btxDomain.Transaction], error) {
			filter := banktransaction.ListFilter{
				Limit:     q.PerPage,
				Offset:    (q.Page - 1) * q.PerPage,
				Search:    q.Search,
				Sort:      q.Sort,
				Dir:       q.Dir,
				Status:    q.Filters["status"],
				InvoiceID: q.Filters["invoice_id"],
			}
			rows, err := stores.TransactionStore.List(ctx, filter)
			if err != nil {
				return listview.Result[btxDomain.Transaction]{}, err
			}
			total, err := stores.TransactionStore.Count(ctx, filter)
			if err != nil {
				return listview.Result[btxDomain.Transaction]{}, err
			}
			return listview.Result[btxDomain.Transaction]{Rows: rows, TotalCount: total}, nil
		})
		if state.Error != "" {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": state.Error})
			return
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "get_transaction_list.html", map[string]any{
				"Transactions":   state.Rows,
				"PageInfo":       state.PageInfo,
				"Sort":           state.Sort,
				"Dir":            state.Dir,
				"Search":         state.Search,
				"Status":         state.Filters["status"],
				"PerPageOptions": listutil.PerPageOptions,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"rows":       state.Rows,
			"totalCount": state.TotalCount,
			"pageInfo":   state.PageInfo,
		})
		return
	}

	if r.Method == "POST" {
		var in struct {
			BookedOn     string `json:"BookedOn"` // YYYY-MM-DD
			AmountCents  int64  `json:"AmountCents"`
			Counterparty string `json:"Counterparty"`
			Reference    string `json:"Reference"`
		}
		if isForm(r) {
			if err := parseRequestForm(r); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			in.BookedOn = r.FormValue("BookedOn")
			cents, err := parseCents(r.FormValue("Amount"))
			if err != nil {
				http.Error(w, "Invalid amount", http.StatusBadRequest)
				return
			}
			in.AmountCents = cents
			in.Counterparty = r.FormValue("Counterparty")
			in.Reference = r.FormValue("Reference")
		} else if err := strictDecode(r, &in); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		tx := btxDomain.Transaction{
			ID:           generateID(),
			BookedOn:     parseDay(in.BookedOn),
			AmountCents:  in.AmountCents,
			Counterparty: in.Counterparty,
			Reference:    in.Reference,
			Status:       btxDomain.StatusUnmatched,
			CreatedAt:    timeNow(),
		}
		if err := stores.TransactionStore.Save(ctx, tx); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// readIDInput reads a single ID from a form or JSON body.
func readIDInput(r *http.Request, field string) string {
	if isForm(r) {
		parseRequestForm(r)
		return r.FormValue(field)
	}
	var input map[string]string
	if err := strictDecode(r, &input); err != nil {
		return ""
	}
	return input[field]
}

// handleTransactionMatch handles POST /transactions/match.
func handleTransactionMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input := orchestrators.MatchTransactionInput{}
	if isForm(r) {
		parseRequestForm(r)
		input.TransactionID = r.FormValue("TransactionID")
		input.InvoiceID = r.FormValue("InvoiceID")
	} else if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteMatchTransaction(r.Context(), input, orchestrators.MatchTransactionDeps{
		TransactionStore: stores.TransactionStore,
		InvoiceStore:     stores.InvoiceStore,
		Now:              timeNow,
	})
	if errors.Is(err, gateway.ErrNotFound) {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTransactionUnmatch handles POST /transactions/unmatch.
func handleTransactionUnmatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := readIDInput(r, "TransactionID")
	err := orchestrators.ExecuteUnmatchTransaction(r.Context(), id, orchestrators.UnmatchTransactionDeps{
		TransactionStore: stores.TransactionStore,
	})
	if errors.Is(err, gateway.ErrNotFound) {
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTransactionIgnore handles POST /transactions/ignore.
func handleTransactionIgnore(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := readIDInput(r, "TransactionID")
	err := orchestrators.ExecuteIgnoreTransaction(r.Context(), id, orchestrators.UnmatchTransactionDeps{
		TransactionStore: stores.TransactionStore,
	})
	if errors.Is(err, gateway.ErrNotFound) {
		http.Error(w, "transaction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAutoReconcile handles POST /transactions/reconcile: scan unmatched
// lines and settle invoices whose structured reference and amount agree.
func handleAutoReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := orchestrators.ExecuteAutoReconcile(r.Context(), orchestrators.AutoReconcileDeps{
		TransactionStore: stores.TransactionStore,
		InvoiceStore:     stores.InvoiceStore,
		Now:              timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleTransactionsExport handles GET /transactions/export.
func handleTransactionsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	lp := listutil.ParseListParams(r.URL.Query(),
		[]string{"booked_on", "amount_cents", "created_at"},
		[]string{"status"},
	)
	filter := banktransaction.ListFilter{
		Limit:  lp.PerPage,
		Offset: (lp.Page - 1) * lp.PerPage,
		Search: lp.Search,
		Sort:   lp.Sort,
		Dir:    lp.Dir,
		Status: lp.Filters["status"],
	}
	rows, err := stores.TransactionStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}

	header := []string{"booked_on", "counterparty", "reference", "amount", "status"}
	export, err := exporter.CSV("transactions", timeNow(), header, exporter.Rows(rows, func(tx btxDomain.Transaction) []string {
		return []string{
			format.ISODate(tx.BookedOn),
			tx.Counterparty,
			tx.Reference,
			format.EUR(tx.AmountCents),
			tx.Status,
		}
	}))
	if err != nil {
		internalError(w, err)
		return
	}
	serveExport(w, export)
}
