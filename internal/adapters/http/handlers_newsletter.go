package web

import (
	"context"
	"errors"
	"net/http"

	subscriberstore "campdesk/internal/adapters/storage/subscriber"
	"campdesk/internal/application/listutil"
	"campdesk/internal/application/listview"
	"campdesk/internal/application/orchestrators"
	subscriberDomain "campdesk/internal/domain/subscriber"
	"campdesk/internal/gateway"
)

// handleSubscribers handles GET /newsletter: the subscriber list.
func handleSubscribers(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	lp := listutil.ParseListParams(r.URL.Query(),
		[]string{"email", "name", "status", "subscribed_at"},
		[]string{"status"},
	)

	state := fetchList(r.Context(), lp, func(ctx context.Context, q listview.Query) (listview.Result[subscriberDomain.Subscriber], error) {
		filter := subscriberstore.ListFilter{
			Limit:  q.PerPage,
			Offset: (q.Page - 1) * q.PerPage,
			Search: q.Search,
			Sort:   q.Sort,
			Dir:    q.Dir,
			Status: q.Filters["status"],
		}
		rows, err := stores.SubscriberStore.List(ctx, filter)
		if err != nil {
			return listview.Result[subscriberDomain.Subscriber]{}, err
		}
		total, err := stores.SubscriberStore.Count(ctx, filter)
		if err != nil {
			return listview.Result[subscriberDomain.Subscriber]{}, err
		}
		return listview.Result[subscriberDomain.Subscriber]{Rows: rows, TotalCount: total}, nil
	})
	if state.Error != "" {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": state.Error})
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "get_subscriber_list.html", map[string]any{
			"Subscribers":    state.Rows,
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
}

// handleSubscribe handles POST /newsletter/subscribe.
func handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input := orchestrators.SubscribeInput{}
	if isForm(r) {
		parseRequestForm(r)
		input.Email = r.FormValue("Email")
		input.Name = r.FormValue("Name")
	} else if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	sub, err := orchestrators.ExecuteSubscribe(r.Context(), input, orchestrators.SubscribeDeps{
		SubscriberStore: stores.SubscriberStore,
		GenerateID:      generateID,
		Now:             timeNow,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/newsletter", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// handleUnsubscribe handles POST /newsletter/unsubscribe.
func handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	address := readIDInput(r, "Email")
	err := orchestrators.ExecuteUnsubscribe(r.Context(), address, orchestrators.UnsubscribeDeps{
		SubscriberStore: stores.SubscriberStore,
		Now:             timeNow,
	})
	if errors.Is(err, gateway.ErrNotFound) {
		http.Error(w, "subscriber not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/newsletter", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleNewsletterSend handles POST /newsletter/send: render the markdown
// body and send the campaign to every subscribed address.
func handleNewsletterSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if emailSender == nil {
		http.Error(w, "email delivery is not configured", http.StatusServiceUnavailable)
		return
	}

	input := orchestrators.SendNewsletterInput{}
	if isForm(r) {
		parseRequestForm(r)
		input.Subject = r.FormValue("Subject")
		input.Markdown = r.FormValue("Markdown")
	} else if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteSendNewsletter(r.Context(), input, orchestrators.SendNewsletterDeps{
		SubscriberStore: stores.SubscriberStore,
		Sender:          emailSender,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/newsletter", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSubscriberDelete handles POST /newsletter/delete.
func handleSubscriberDelete(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, stores.SubscriberStore.Delete)
}
