package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	storecenter "campdesk/internal/adapters/storage/center"
	storestage "campdesk/internal/adapters/storage/stage"
	"campdesk/internal/domain/center"
	"campdesk/internal/domain/session"
	"campdesk/internal/domain/stage"
)

// CenterStoreForSeed defines the store interface needed by SeedCatalog.
type CenterStoreForSeed interface {
	Save(ctx context.Context, value center.Center) error
	Count(ctx context.Context, filter storecenter.ListFilter) (int, error)
}

// StageStoreForSeed defines the store interface needed by SeedCatalog.
type StageStoreForSeed interface {
	Save(ctx context.Context, value stage.Stage) error
	Count(ctx context.Context, filter storestage.ListFilter) (int, error)
}

// SessionStoreForSeed defines the store interface needed by SeedCatalog.
type SessionStoreForSeed interface {
	Save(ctx context.Context, value session.Session) error
}

// SeedCatalogDeps holds dependencies for SeedCatalog.
type SeedCatalogDeps struct {
	CenterStore  CenterStoreForSeed
	StageStore   StageStoreForSeed
	SessionStore SessionStoreForSeed
	Now          func() time.Time
}

// ExecuteSeedCatalog creates a starter catalog (centers, stages, one session
// each) if the database is empty. Development convenience.
func ExecuteSeedCatalog(ctx context.Context, deps SeedCatalogDeps) error {
	existing, err := deps.CenterStore.Count(ctx, storecenter.ListFilter{})
	if err != nil {
		return err
	}
	if existing > 0 {
		return nil // Already seeded
	}

	now := deps.Now()

	centers := []center.Center{
		{ID: uuid.New().String(), Name: "Domaine des Fagnes", City: "Spa", PostalCode: "4900", Capacity: 120, Active: true, CreatedAt: now},
		{ID: uuid.New().String(), Name: "Centre Le Préau", City: "Namur", PostalCode: "5000", Capacity: 80, Active: true, CreatedAt: now},
	}
	for _, c := range centers {
		if err := deps.CenterStore.Save(ctx, c); err != nil {
			return err
		}
	}

	stages := []stage.Stage{
		{ID: uuid.New().String(), Title: "Poney et nature", Category: "animaux", AgeMin: 6, AgeMax: 12, BasePriceCents: 14500, Active: true, CreatedAt: now},
		{ID: uuid.New().String(), Title: "Cirque", Category: "arts", AgeMin: 5, AgeMax: 10, BasePriceCents: 12000, Active: true, CreatedAt: now},
		{ID: uuid.New().String(), Title: "Multisports", Category: "sport", AgeMin: 8, AgeMax: 14, BasePriceCents: 11000, Active: true, CreatedAt: now},
	}
	for _, s := range stages {
		if err := deps.StageStore.Save(ctx, s); err != nil {
			return err
		}
	}

	// One upcoming session per stage, alternating centers.
	start := time.Date(now.Year(), 7, 6, 0, 0, 0, 0, time.UTC)
	for i, s := range stages {
		sess := session.Session{
			ID:        uuid.New().String(),
			StageID:   s.ID,
			CenterID:  centers[i%len(centers)].ID,
			StartDate: start.AddDate(0, 0, 7*i),
			EndDate:   start.AddDate(0, 0, 7*i+4),
			Capacity:  24,
			Status:    session.StatusActive,
			CreatedAt: now,
		}
		if err := deps.SessionStore.Save(ctx, sess); err != nil {
			return err
		}
	}

	slog.Info("seed_event", "event", "catalog_seeded",
		"centers", len(centers), "stages", len(stages))
	return nil
}
