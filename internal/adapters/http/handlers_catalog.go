package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"campdesk/internal/adapters/storage/center"
	"campdesk/internal/adapters/storage/school"
	"campdesk/internal/adapters/storage/session"
	"campdesk/internal/adapters/storage/stage"
	"campdesk/internal/adapters/storage/tariff"
	"campdesk/internal/application/exporter"
	"campdesk/internal/application/forms"
	"campdesk/internal/application/listutil"
	"campdesk/internal/application/listview"
	"campdesk/internal/application/orchestrators"
	"campdesk/internal/application/projections"
	centerDomain "campdesk/internal/domain/center"
	schoolDomain "campdesk/internal/domain/school"
	sessionDomain "campdesk/internal/domain/session"
	stageDomain "campdesk/internal/domain/stage"
	tariffDomain "campdesk/internal/domain/tariff"
	"campdesk/internal/gateway"
)

// maxUploadBytes bounds multipart photo uploads.
const maxUploadBytes = 10 << 20

// fetchList drives one server-rendered page through the list controller:
// filters and search from the query string, an immediate (undebounced)
// fetch, and a state snapshot for rendering.
func fetchList[T any](ctx context.Context, lp listutil.ListParams, fetch listview.Fetcher[T]) listview.State[T] {
	ctrl := listview.NewController(fetch,
		listview.WithDebounce[T](0),
		listview.WithPerPage[T](lp.PerPage),
		listview.WithSort[T](lp.Sort, lp.Dir),
	)
	for key, value := range lp.Filters {
		ctrl.SetFilter(ctx, key, value)
	}
	if lp.Search != "" {
		ctrl.SetSearch(ctx, lp.Search)
	}
	if lp.Page > 1 {
		ctrl.SetPage(ctx, lp.Page)
	}
	ctrl.Refresh(ctx)
	return ctrl.Snapshot()
}

// submitForm runs one create/edit submission through the form controller
// and reports the resulting state.
func submitForm[T any](ctx context.Context, seed T, edit bool, cfg forms.Config[T]) (forms.State[T], bool) {
	var ctrl *forms.Controller[T]
	if edit {
		ctrl = forms.NewEdit(seed, cfg)
	} else {
		ctrl = forms.NewCreate(seed, cfg)
	}
	ok := ctrl.Submit(ctx)
	return ctrl.Snapshot(), ok
}

// respondFormState converts a form controller outcome into an HTTP response.
func respondFormState[T any](w http.ResponseWriter, r *http.Request, state forms.State[T], ok bool, redirect string) {
	if !ok {
		if len(state.FieldErrors) > 0 {
			writeFieldErrors(w, state.FieldErrors)
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": state.SubmitError})
		return
	}
	if isHTMLRequest(r) {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	body := map[string]any{"record": state.Buffer}
	if state.Warning != "" {
		body["warning"] = state.Warning
	}
	writeJSON(w, http.StatusOK, body)
}

// deleteByID runs an idempotent delete: an already-absent record is success.
func deleteByID(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id string) error) {
	if r.Method != "POST" && r.Method != "DELETE" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" && isForm(r) {
		parseRequestForm(r)
		id = r.FormValue("ID")
	}
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if err := del(r.Context(), id); err != nil && !errors.Is(err, gateway.ErrNotFound) {
		internalError(w, err)
		return
	}
	if isHTMLRequest(r) {
		http.Redirect(w, r, r.Header.Get("Referer"), http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Stages ---

type stageInput struct {
	ID             string `json:"ID"`
	Title          string `json:"Title"`
	Description    string `json:"Description"`
	Category       string `json:"Category"`
	AgeMin         int    `json:"AgeMin"`
	AgeMax         int    `json:"AgeMax"`
	BasePriceCents int64  `json:"BasePriceCents"`
	Active         *bool  `json:"Active"`
}

func readStageInput(r *http.Request) (stageInput, error) {
	var in stageInput
	if isForm(r) {
		if err := parseRequestForm(r); err != nil {
			return in, err
		}
		in.ID = r.FormValue("ID")
		in.Title = r.FormValue("Title")
		in.Description = r.FormValue("Description")
		in.Category = r.FormValue("Category")
		in.AgeMin, _ = strconv.Atoi(r.FormValue("AgeMin"))
		in.AgeMax, _ = strconv.Atoi(r.FormValue("AgeMax"))
		cents, err := parseCents(r.FormValue("BasePrice"))
		if err != nil {
			return in, err
		}
		in.BasePriceCents = cents
		if v := r.FormValue("Active"); v != "" {
			active := v == "true"
			in.Active = &active
		}
		return in, nil
	}
	return in, strictDecode(r, &in)
}

// handleStages handles GET (list) and POST (create/update) for /stages.
func handleStages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"title", "category", "base_price_cents", "age_min", "created_at"},
			[]string{"category", "active"},
		)

		state := fetchList(ctx, lp, func(ctx context.Context, q listview.Query) (listview.Result[stageDomain.Stage], error) {
			filter := stage.ListFilter{
				Limit:    q.PerPage,
				Offset:   (q.Page - 1) * q.PerPage,
				Search:   q.Search,
				Sort:     q.Sort,
				Dir:      q.Dir,
				Category: q.Filters["category"],
			}
			if v := q.Filters["active"]; v != "" {
				active := v == "true"
				filter.Active = &active
			}
			rows, err := stores.StageStore.List(ctx, filter)
			if err != nil {
				return listview.Result[stageDomain.Stage]{}, err
			}
			total, err := stores.StageStore.Count(ctx, filter)
			if err != nil {
				return listview.Result[stageDomain.Stage]{}, err
			}
			return listview.Result[stageDomain.Stage]{Rows: rows, TotalCount: total}, nil
		})
		if state.Error != "" {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": state.Error})
			return
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "get_stage_list.html", map[string]any{
				"Stages":         state.Rows,
				"PageInfo":       state.PageInfo,
				"Sort":           state.Sort,
				"Dir":            state.Dir,
				"Search":         state.Search,
				"Status":         "",
				"Category":       state.Filters["category"],
				"Active":         state.Filters["active"],
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
		in, err := readStageInput(r)
		if err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		var seed stageDomain.Stage
		edit := in.ID != ""
		if edit {
			seed, err = stores.StageStore.GetByID(ctx, in.ID)
			if errors.Is(err, gateway.ErrNotFound) {
				http.Error(w, "stage not found", http.StatusNotFound)
				return
			}
			if err != nil {
				internalError(w, err)
				return
			}
		} else {
			// Create defaults: a new stage starts active.
			seed.Active = true
		}
		seed.Title = in.Title
		seed.Description = in.Description
		seed.Category = in.Category
		seed.AgeMin = in.AgeMin
		seed.AgeMax = in.AgeMax
		seed.BasePriceCents = in.BasePriceCents
		if in.Active != nil {
			seed.Active = *in.Active
		}

		cfg := forms.Config[stageDomain.Stage]{
			Validate: func(b stageDomain.Stage) map[string]string { return b.FieldErrors() },
			Save: func(ctx context.Context, b stageDomain.Stage) (stageDomain.Stage, error) {
				if b.ID == "" {
					b.ID = generateID()
					b.CreatedAt = timeNow()
				}
				if err := stores.StageStore.Save(ctx, b); err != nil {
					return b, err
				}
				return b, nil
			},
		}
		if file, header, ferr := r.FormFile("Photo"); ferr == nil && photoStore != nil {
			defer file.Close()
			cfg.AfterSave = func(ctx context.Context, saved stageDomain.Stage) error {
				_, err := orchestrators.ExecuteAttachStagePhoto(ctx, orchestrators.AttachPhotoInput{
					EntityID: saved.ID,
					Filename: header.Filename,
					Body:     file,
				}, orchestrators.AttachStagePhotoDeps{
					StageStore: stores.StageStore,
					Photos:     photoStore,
				})
				return err
			}
		}

		state, ok := submitForm(ctx, seed, edit, cfg)
		respondFormState(w, r, state, ok, "/stages")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleStageDelete handles POST /stages/delete.
func handleStageDelete(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, stores.StageStore.Delete)
}

// handleStagePhoto handles POST /stages/photo: attach an image to an
// existing stage (the second step of the two-step create).
func handleStagePhoto(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if photoStore == nil {
		http.Error(w, "photo storage is not configured", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("Photo")
	if err != nil {
		http.Error(w, "a Photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := orchestrators.ExecuteAttachStagePhoto(r.Context(), orchestrators.AttachPhotoInput{
		EntityID: r.FormValue("ID"),
		Filename: header.Filename,
		Body:     file,
	}, orchestrators.AttachStagePhotoDeps{
		StageStore: stores.StageStore,
		Photos:     photoStore,
	})
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			http.Error(w, "stage not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// handleStagesExport handles GET /stages/export: the currently filtered rows
// as a CSV download.
func handleStagesExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	lp := listutil.ParseListParams(r.URL.Query(),
		[]string{"title", "category", "created_at"},
		[]string{"category", "active"},
	)
	filter := stage.ListFilter{
		Limit:    lp.PerPage,
		Offset:   (lp.Page - 1) * lp.PerPage,
		Search:   lp.Search,
		Sort:     lp.Sort,
		Dir:      lp.Dir,
		Category: lp.Filters["category"],
	}
	if v := lp.Filters["active"]; v != "" {
		active := v == "true"
		filter.Active = &active
	}
	rows, err := stores.StageStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}

	header := []string{"title", "category", "age_min", "age_max", "base_price", "active"}
	export, err := exporter.CSV("stages", timeNow(), header, exporter.Rows(rows, func(s stageDomain.Stage) []string {
		return []string{
			s.Title,
			s.Category,
			strconv.Itoa(s.AgeMin),
			strconv.Itoa(s.AgeMax),
			strconv.FormatInt(s.BasePriceCents, 10),
			strconv.FormatBool(s.Active),
		}
	}))
	if err != nil {
		internalError(w, err)
		return
	}
	serveExport(w, export)
}

// serveExport writes a CSV download response.
func serveExport(w http.ResponseWriter, export exporter.Export) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Write(export.Data)
}

// --- Centers ---

type centerInput struct {
	ID         string `json:"ID"`
	Name       string `json:"Name"`
	Address    string `json:"Address"`
	City       string `json:"City"`
	PostalCode string `json:"PostalCode"`
	Phone      string `json:"Phone"`
	Email      string `json:"Email"`
	Capacity   int    `json:"Capacity"`
	Active     *bool  `json:"Active"`
}

// handleCenters handles GET (list) and POST (create/update) for /centers.
func handleCenters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"name", "city", "capacity", "created_at"},
			[]string{"city", "active"},
		)

		state := fetchList(ctx, lp, func(ctx context.Context, q listview.Query) (listview.Result[centerDomain.Center], error) {
			filter := center.ListFilter{
				Limit:  q.PerPage,
				Offset: (q.Page - 1) * q.PerPage,
				Search: q.Search,
				Sort:   q.Sort,
				Dir:    q.Dir,
				City:   q.Filters["city"],
			}
			if v := q.Filters["active"]; v != "" {
				active := v == "true"
				filter.Active = &active
			}
			rows, err := stores.CenterStore.List(ctx, filter)
			if err != nil {
				return listview.Result[centerDomain.Center]{}, err
			}
			total, err := stores.CenterStore.Count(ctx, filter)
			if err != nil {
				return listview.Result[centerDomain.Center]{}, err
			}
			return listview.Result[centerDomain.Center]{Rows: rows, TotalCount: total}, nil
		})
		if state.Error != "" {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": state.Error})
			return
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "get_center_list.html", map[string]any{
				"Centers":        state.Rows,
				"PageInfo":       state.PageInfo,
				"Sort":           state.Sort,
				"Dir":            state.Dir,
				"Search":         state.Search,
				"Status":         "",
				"City":           state.Filters["city"],
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
		var in centerInput
		if isForm(r) {
			if err := parseRequestForm(r); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			in.ID = r.FormValue("ID")
			in.Name = r.FormValue("Name")
			in.Address = r.FormValue("Address")
			in.City = r.FormValue("City")
			in.PostalCode = r.FormValue("PostalCode")
			in.Phone = r.FormValue("Phone")
			in.Email = r.FormValue("Email")
			in.Capacity, _ = strconv.Atoi(r.FormValue("Capacity"))
			if v := r.FormValue("Active"); v != "" {
				active := v == "true"
				in.Active = &active
			}
		} else if err := strictDecode(r, &in); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		var seed centerDomain.Center
		edit := in.ID != ""
		if edit {
			var err error
			seed, err = stores.CenterStore.GetByID(ctx, in.ID)
			if errors.Is(err, gateway.ErrNotFound) {
				http.Error(w, "center not found", http.StatusNotFound)
				return
			}
			if err != nil {
				internalError(w, err)
				return
			}
		} else {
			seed.Active = true
		}
		seed.Name = in.Name
		seed.Address = in.Address
		seed.City = in.City
		seed.PostalCode = in.PostalCode
		seed.Phone = in.Phone
		seed.Email = in.Email
		seed.Capacity = in.Capacity
		if in.Active != nil {
			seed.Active = *in.Active
		}

		cfg := forms.Config[centerDomain.Center]{
			Validate: func(b centerDomain.Center) map[string]string { return b.FieldErrors() },
			Save: func(ctx context.Context, b centerDomain.Center) (centerDomain.Center, error) {
				if b.ID == "" {
					b.ID = generateID()
					b.CreatedAt = timeNow()
				}
				if err := stores.CenterStore.Save(ctx, b); err != nil {
					return b, err
				}
				return b, nil
			},
		}
		if file, header, ferr := r.FormFile("Photo"); ferr == nil && photoStore != nil {
			defer file.Close()
			cfg.AfterSave = func(ctx context.Context, saved centerDomain.Center) error {
				_, err := orchestrators.ExecuteAttachCenterPhoto(ctx, orchestrators.AttachPhotoInput{
					EntityID: saved.ID,
					Filename: header.Filename,
					Body:     file,
				}, orchestrators.AttachCenterPhotoDeps{
					CenterStore: stores.CenterStore,
					Photos:      photoStore,
				})
				return err
			}
		}

		state, ok := submitForm(ctx, seed, edit, cfg)
		respondFormState(w, r, state, ok, "/centers")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleCenterDelete handles POST /centers/delete.
func handleCenterDelete(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, stores.CenterStore.Delete)
}

// --- Sessions ---

type sessionInput struct {
	ID         string `json:"ID"`
	StageID    string `json:"StageID"`
	CenterID   string `json:"CenterID"`
	StartDate  string `json:"StartDate"` // YYYY-MM-DD
	EndDate    string `json:"EndDate"`
	Capacity   int    `json:"Capacity"`
	PriceCents int64  `json:"PriceCents"`
	Status     string `json:"Status"`
}

// handleSessions handles GET (joined list) and POST (create/update) for
// /sessions.
func handleSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"start_date", "end_date", "capacity", "booked", "status"},
			[]string{"stage_id", "center_id", "status"},
		)

		filter := session.ListFilter{
			Limit:    lp.PerPage,
			Offset:   (lp.Page - 1) * lp.PerPage,
			Sort:     lp.Sort,
			Dir:      lp.Dir,
			StageID:  lp.Filters["stage_id"],
			CenterID: lp.Filters["center_id"],
			Status:   lp.Filters["status"],
		}
		result, err := projections.QueryGetSessionList(ctx, filter, projections.SessionListDeps{
			SessionStore: stores.SessionStore,
			StageStore:   stores.StageStore,
			CenterStore:  stores.CenterStore,
		})
		if err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			renderTemplate(w, r, "get_session_list.html", map[string]any{
				"Rows":           result.Rows,
				"PageInfo":       listutil.NewPageInfo(lp.Page, lp.PerPage, result.TotalCount),
				"Sort":           lp.Sort,
				"Dir":            lp.Dir,
				"Search":         lp.Search,
				"Status":         lp.Filters["status"],
				"PerPageOptions": listutil.PerPageOptions,
			})
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	if r.Method == "POST" {
		var in sessionInput
		if isForm(r) {
			if err := parseRequestForm(r); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			in.ID = r.FormValue("ID")
			in.StageID = r.FormValue("StageID")
			in.CenterID = r.FormValue("CenterID")
			in.StartDate = r.FormValue("StartDate")
			in.EndDate = r.FormValue("EndDate")
			in.Capacity, _ = strconv.Atoi(r.FormValue("Capacity"))
			cents, err := parseCents(r.FormValue("Price"))
			if err != nil {
				http.Error(w, "Invalid price", http.StatusBadRequest)
				return
			}
			in.PriceCents = cents
			in.Status = r.FormValue("Status")
		} else if err := strictDecode(r, &in); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		var seed sessionDomain.Session
		edit := in.ID != ""
		if edit {
			var err error
			seed, err = stores.SessionStore.GetByID(ctx, in.ID)
			if errors.Is(err, gateway.ErrNotFound) {
				http.Error(w, "session not found", http.StatusNotFound)
				return
			}
			if err != nil {
				internalError(w, err)
				return
			}
		} else {
			seed.Status = sessionDomain.StatusActive
		}
		seed.StageID = in.StageID
		seed.CenterID = in.CenterID
		seed.StartDate = parseDay(in.StartDate)
		seed.EndDate = parseDay(in.EndDate)
		seed.Capacity = in.Capacity
		seed.PriceCents = in.PriceCents
		if in.Status != "" {
			seed.Status = in.Status
		}

		state, ok := submitForm(ctx, seed, edit, forms.Config[sessionDomain.Session]{
			Validate: func(b sessionDomain.Session) map[string]string { return b.FieldErrors() },
			Save: func(ctx context.Context, b sessionDomain.Session) (sessionDomain.Session, error) {
				if b.ID == "" {
					b.ID = generateID()
					b.CreatedAt = timeNow()
				}
				if err := stores.SessionStore.Save(ctx, b); err != nil {
					return b, err
				}
				return b, nil
			},
		})
		respondFormState(w, r, state, ok, "/sessions")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleSessionDelete handles POST /sessions/delete.
func handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, stores.SessionStore.Delete)
}

// --- Schools ---

// handleSchools handles GET (list) and POST (create/update) for /schools.
func handleSchools(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"name", "city", "discount_pct", "created_at"},
			[]string{"city"},
		)

		state := fetchList(ctx, lp, schoolFetcher())
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
		var in struct {
			ID           string `json:"ID"`
			Name         string `json:"Name"`
			City         string `json:"City"`
			ContactName  string `json:"ContactName"`
			ContactEmail string `json:"ContactEmail"`
			DiscountPct  int    `json:"DiscountPct"`
		}
		if isForm(r) {
			if err := parseRequestForm(r); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			in.ID = r.FormValue("ID")
			in.Name = r.FormValue("Name")
			in.City = r.FormValue("City")
			in.ContactName = r.FormValue("ContactName")
			in.ContactEmail = r.FormValue("ContactEmail")
			in.DiscountPct, _ = strconv.Atoi(r.FormValue("DiscountPct"))
		} else if err := strictDecode(r, &in); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		var seed schoolDomain.School
		edit := in.ID != ""
		if edit {
			var err error
			seed, err = stores.SchoolStore.GetByID(ctx, in.ID)
			if errors.Is(err, gateway.ErrNotFound) {
				http.Error(w, "school not found", http.StatusNotFound)
				return
			}
			if err != nil {
				internalError(w, err)
				return
			}
		}
		seed.Name = in.Name
		seed.City = in.City
		seed.ContactName = in.ContactName
		seed.ContactEmail = in.ContactEmail
		seed.DiscountPct = in.DiscountPct

		state, ok := submitForm(ctx, seed, edit, forms.Config[schoolDomain.School]{
			Validate: func(b schoolDomain.School) map[string]string { return b.FieldErrors() },
			Save: func(ctx context.Context, b schoolDomain.School) (schoolDomain.School, error) {
				if b.ID == "" {
					b.ID = generateID()
					b.CreatedAt = timeNow()
				}
				if err := stores.SchoolStore.Save(ctx, b); err != nil {
					return b, err
				}
				return b, nil
			},
		})
		respondFormState(w, r, state, ok, "/schools")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

func schoolFetcher() listview.Fetcher[schoolDomain.School] {
	return func(ctx context.Context, q listview.Query) (listview.Result[schoolDomain.School], error) {
		filter := school.ListFilter{
			Limit:  q.PerPage,
			Offset: (q.Page - 1) * q.PerPage,
			Search: q.Search,
			Sort:   q.Sort,
			Dir:    q.Dir,
			City:   q.Filters["city"],
		}
		rows, err := stores.SchoolStore.List(ctx, filter)
		if err != nil {
			return listview.Result[schoolDomain.School]{}, err
		}
		total, err := stores.SchoolStore.Count(ctx, filter)
		if err != nil {
			return listview.Result[schoolDomain.School]{}, err
		}
		return listview.Result[schoolDomain.School]{Rows: rows, TotalCount: total}, nil
	}
}

// handleSchoolDelete handles POST /schools/delete.
func handleSchoolDelete(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, stores.SchoolStore.Delete)
}

// --- Tariffs ---

// handleTariffs handles GET (list) and POST (create/update) for /tariffs.
func handleTariffs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		lp := listutil.ParseListParams(r.URL.Query(),
			[]string{"label", "kind", "percent", "created_at"},
			[]string{"kind", "school_id"},
		)

		state := fetchList(ctx, lp, tariffFetcher())
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
		var in struct {
			ID          string `json:"ID"`
			Label       string `json:"Label"`
			Kind        string `json:"Kind"`
			Percent     int    `json:"Percent"`
			AmountCents int64  `json:"AmountCents"`
			SchoolID    string `json:"SchoolID"`
			ValidFrom   string `json:"ValidFrom"` // YYYY-MM-DD
			ValidTo     string `json:"ValidTo"`
		}
		if isForm(r) {
			if err := parseRequestForm(r); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			in.ID = r.FormValue("ID")
			in.Label = r.FormValue("Label")
			in.Kind = r.FormValue("Kind")
			in.Percent, _ = strconv.Atoi(r.FormValue("Percent"))
			cents, err := parseCents(r.FormValue("Amount"))
			if err != nil {
				http.Error(w, "Invalid amount", http.StatusBadRequest)
				return
			}
			in.AmountCents = cents
			in.SchoolID = r.FormValue("SchoolID")
			in.ValidFrom = r.FormValue("ValidFrom")
			in.ValidTo = r.FormValue("ValidTo")
		} else if err := strictDecode(r, &in); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		var seed tariffDomain.Tariff
		edit := in.ID != ""
		if edit {
			var err error
			seed, err = stores.TariffStore.GetByID(ctx, in.ID)
			if errors.Is(err, gateway.ErrNotFound) {
				http.Error(w, "tariff not found", http.StatusNotFound)
				return
			}
			if err != nil {
				internalError(w, err)
				return
			}
		}
		seed.Label = in.Label
		seed.Kind = in.Kind
		seed.Percent = in.Percent
		seed.AmountCents = in.AmountCents
		seed.SchoolID = in.SchoolID
		seed.ValidFrom = parseDay(in.ValidFrom)
		seed.ValidTo = parseDay(in.ValidTo)

		state, ok := submitForm(ctx, seed, edit, forms.Config[tariffDomain.Tariff]{
			Validate: func(b tariffDomain.Tariff) map[string]string { return b.FieldErrors() },
			Save: func(ctx context.Context, b tariffDomain.Tariff) (tariffDomain.Tariff, error) {
				if b.ID == "" {
					b.ID = generateID()
					b.CreatedAt = timeNow()
				}
				if err := stores.TariffStore.Save(ctx, b); err != nil {
					return b, err
				}
				return b, nil
			},
		})
		respondFormState(w, r, state, ok, "/tariffs")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

func tariffFetcher() listview.Fetcher[tariffDomain.Tariff] {
	return func(ctx context.Context, q listview.Query) (listview.Result[tariffDomain.Tariff], error) {
		filter := tariff.ListFilter{
			Limit:    q.PerPage,
			Offset:   (q.Page - 1) * q.PerPage,
			Search:   q.Search,
			Sort:     q.Sort,
			Dir:      q.Dir,
			Kind:     q.Filters["kind"],
			SchoolID: q.Filters["school_id"],
		}
		rows, err := stores.TariffStore.List(ctx, filter)
		if err != nil {
			return listview.Result[tariffDomain.Tariff]{}, err
		}
		total, err := stores.TariffStore.Count(ctx, filter)
		if err != nil {
			return listview.Result[tariffDomain.Tariff]{}, err
		}
		return listview.Result[tariffDomain.Tariff]{Rows: rows, TotalCount: total}, nil
	}
}

// handleTariffDelete handles POST /tariffs/delete.
func handleTariffDelete(w http.ResponseWriter, r *http.Request) {
	deleteByID(w, r, stores.TariffStore.Delete)
}
