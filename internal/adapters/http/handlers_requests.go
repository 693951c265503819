package web

import (
	"context"
	"errors"
	"net/http"

	requeststore "campdesk/internal/adapters/storage/request"
	waitliststore "campdesk/internal/adapters/storage/waitlist"
	"campdesk/internal/application/listutil"
	"campdesk/internal/application/listview"
	"campdesk/internal/application/orchestrators"
	requestDomain "campdesk/internal/domain/request"
	waitlistDomain "campdesk/internal/domain/waitlist"
	"campdesk/internal/gateway"
)

// handleRequests handles GET (list) and POST (record a new parent request)
// for /requests.
func handleRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"child_name", "kind", "status", "created_at"},
			[]string{"kind", "status", "session_id"},
		)

		state := fetchList(ctx, lp, func(ctx context.Context, q listview.Query) (listview.Result[requestDomain.Request], error) {
			filter := requeststore.ListFilter{
				Limit:     q.PerPage,
				Offset:    (q.Page - 1) * q.PerPage,
				Search:    q.Search,
				Sort:      q.Sort,
				Dir:       q.Dir,
				Kind:      q.Filters["kind"],
				Status:    q.Filters["status"],
				SessionID: q.Filters["session_id"],
			}
			rows, err := stores.RequestStore.List(ctx, filter)
			if err != nil {
				return listview.Result[requestDomain.Request]{}, err
			}
			total, err := stores.RequestStore.Count(ctx, filter)
			if err != nil {
				return listview.Result[requestDomain.Request]{}, err
			}
			return listview.Result[requestDomain.Request]{Rows: rows, TotalCount: total}, nil
		})
		if state.Error != "" {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": state.Error})
			return
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "get_request_list.html", map[string]any{
				"Requests":       state.Rows,
				"PageInfo":       state.PageInfo,
				"Sort":           state.Sort,
				"Dir":            state.Dir,
				"Search":         state.Search,
				"Status":         state.Filters["status"],
				"Kind":           state.Filters["kind"],
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
		req := requestDomain.Request{}
		if isForm(r) {
			if err := parseRequestForm(r); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			req.Kind = r.FormValue("Kind")
			req.ChildName = r.FormValue("ChildName")
			req.ParentEmail = r.FormValue("ParentEmail")
			req.SessionID = r.FormValue("SessionID")
			req.Reason = r.FormValue("Reason")
		} else if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		if errs := req.FieldErrors(); len(errs) > 0 {
			writeFieldErrors(w, errs)
			return
		}

		req.ID = generateID()
		req.Status = requestDomain.StatusPending
		req.CreatedAt = timeNow()
		if err := stores.RequestStore.Save(ctx, req); err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			http.Redirect(w, r, "/requests", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusCreated, req)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleRequestDecide handles POST /requests/decide.
func handleRequestDecide(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input := orchestrators.DecideRequestInput{}
	if isForm(r) {
		parseRequestForm(r)
		input.RequestID = r.FormValue("RequestID")
		input.Approve = r.FormValue("Decision") == "approve"
		input.Note = r.FormValue("Note")
	} else if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteDecideRequest(r.Context(), input, orchestrators.DecideRequestDeps{
		RequestStore:  stores.RequestStore,
		SessionStore:  stores.SessionStore,
		WaitlistStore: stores.WaitlistStore,
		Sender:        emailSender,
		Now:           timeNow,
	})
	if errors.Is(err, gateway.ErrNotFound) {
		http.Error(w, "request not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, requestDomain.ErrAlreadyDecided) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/requests", http.StatusSeeOther)
		return
	}
	payload := map[string]any{
		"request":    result.Request,
		"placeFreed": result.PlaceFreed,
		"offeredTo":  result.OfferedTo,
	}
	if result.EmailWarning != "" {
		payload["warning"] = result.EmailWarning
	}
	writeJSON(w, http.StatusOK, payload)
}

// handleWaitlist handles GET (list) and POST (append an entry) for /waitlist.
func handleWaitlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"position", "child_name", "status", "created_at"},
			[]string{"session_id", "status"},
		)

		state := fetchList(ctx, lp, func(ctx context.Context, q listview.Query) (listview.Result[waitlistDomain.Entry], error) {
			filter := waitliststore.ListFilter{
				Limit:     q.PerPage,
				Offset:    (q.Page - 1) * q.PerPage,
				Search:    q.Search,
				Sort:      q.Sort,
				Dir:       q.Dir,
				SessionID: q.Filters["session_id"],
				Status:    q.Filters["status"],
			}
			rows, err := stores.WaitlistStore.List(ctx, filter)
			if err != nil {
				return listview.Result[waitlistDomain.Entry]{}, err
			}
			total, err := stores.WaitlistStore.Count(ctx, filter)
			if err != nil {
				return listview.Result[waitlistDomain.Entry]{}, err
			}
			return listview.Result[waitlistDomain.Entry]{Rows: rows, TotalCount: total}, nil
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
		entry := waitlistDomain.Entry{}
		if isForm(r) {
			if err := parseRequestForm(r); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			entry.SessionID = r.FormValue("SessionID")
			entry.ChildName = r.FormValue("ChildName")
			entry.ParentEmail = r.FormValue("ParentEmail")
		} else if err := strictDecode(r, &entry); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		if errs := entry.FieldErrors(); len(errs) > 0 {
			writeFieldErrors(w, errs)
			return
		}

		position, err := stores.WaitlistStore.NextPosition(ctx, entry.SessionID)
		if err != nil {
			internalError(w, err)
			return
		}
		entry.ID = generateID()
		entry.Position = position
		entry.Status = waitlistDomain.StatusWaiting
		entry.CreatedAt = timeNow()
		if err := stores.WaitlistStore.Save(ctx, entry); err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			http.Redirect(w, r, "/waitlist", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleWaitlistDelete handles POST /waitlist/delete.
func handleWaitlistDelete(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, stores.WaitlistStore.Delete)
}

// handleRequestDelete handles POST /requests/delete.
func handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, stores.RequestStore.Delete)
}
