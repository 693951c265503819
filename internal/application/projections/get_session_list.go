// Package projections implements the read-side queries behind the admin
// screens: joined list rows and the dashboard.
package projections

import (
	"context"

	storesession "campdesk/internal/adapters/storage/session"
	"campdesk/internal/domain/center"
	"campdesk/internal/domain/session"
	"campdesk/internal/domain/stage"
)

// SessionListSessionStore defines the session access the list needs.
type SessionListSessionStore interface {
	List(ctx context.Context, filter storesession.ListFilter) ([]session.Session, error)
	Count(ctx context.Context, filter storesession.ListFilter) (int, error)
}

// SessionListStageStore defines the stage lookups the list needs.
type SessionListStageStore interface {
	GetByID(ctx context.Context, id string) (stage.Stage, error)
}

// SessionListCenterStore defines the center lookups the list needs.
type SessionListCenterStore interface {
	GetByID(ctx context.Context, id string) (center.Center, error)
}

// SessionListDeps holds dependencies for the session list projection.
type SessionListDeps struct {
	SessionStore SessionListSessionStore
	StageStore   SessionListStageStore
	CenterStore  SessionListCenterStore
}

// SessionRow is one row of the session list: the session plus the labels a
// human needs to read it.
type SessionRow struct {
	Session    session.Session
	StageTitle string
	CenterName string
	PlacesLeft int
	PriceCents int64 // effective price: session override or stage base
}

// SessionListResult carries one page of rows and the unfiltered total.
type SessionListResult struct {
	Rows       []SessionRow
	TotalCount int
}

// QueryGetSessionList returns a page of sessions joined with their stage and
// center labels. A dangling stage or center reference yields an empty label
// rather than failing the whole page.
// POST: len(Rows) <= filter.Limit when a limit is set
func QueryGetSessionList(ctx context.Context, filter storesession.ListFilter, deps SessionListDeps) (SessionListResult, error) {
	var result SessionListResult

	sessions, err := deps.SessionStore.List(ctx, filter)
	if err != nil {
		return result, err
	}
	total, err := deps.SessionStore.Count(ctx, filter)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	// Labels are cached per page; pages are small.
	stageTitles := make(map[string]string)
	centerNames := make(map[string]string)
	stagePrices := make(map[string]int64)

	for _, sess := range sessions {
		title, ok := stageTitles[sess.StageID]
		if !ok {
			if st, err := deps.StageStore.GetByID(ctx, sess.StageID); err == nil {
				title = st.Title
				stagePrices[sess.StageID] = st.BasePriceCents
			}
			stageTitles[sess.StageID] = title
		}
		name, ok := centerNames[sess.CenterID]
		if !ok {
			if c, err := deps.CenterStore.GetByID(ctx, sess.CenterID); err == nil {
				name = c.Name
			}
			centerNames[sess.CenterID] = name
		}

		price := sess.PriceCents
		if price == 0 {
			price = stagePrices[sess.StageID]
		}

		result.Rows = append(result.Rows, SessionRow{
			Session:    sess,
			StageTitle: title,
			CenterName: name,
			PlacesLeft: sess.PlacesLeft(),
			PriceCents: price,
		})
	}
	return result, nil
}
