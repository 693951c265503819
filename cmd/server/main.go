package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "campdesk/internal/adapters/email"
	web "campdesk/internal/adapters/http"
	"campdesk/internal/adapters/objectstore"
	"campdesk/internal/adapters/rpc"
	"campdesk/internal/adapters/storage"
	btxStore "campdesk/internal/adapters/storage/banktransaction"
	centerStore "campdesk/internal/adapters/storage/center"
	creditNoteStore "campdesk/internal/adapters/storage/creditnote"
	invoiceStore "campdesk/internal/adapters/storage/invoice"
	requestStore "campdesk/internal/adapters/storage/request"
	schoolStore "campdesk/internal/adapters/storage/school"
	sessionStore "campdesk/internal/adapters/storage/session"
	stageStore "campdesk/internal/adapters/storage/stage"
	subscriberStore "campdesk/internal/adapters/storage/subscriber"
	tariffStore "campdesk/internal/adapters/storage/tariff"
	waitlistStore "campdesk/internal/adapters/storage/waitlist"
	"campdesk/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	dbPath := envOrDefault("CAMPDESK_DB_PATH", "campdesk.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	timedDB := storage.NewTimedDB(db)

	ctrStore := centerStore.NewSQLiteStore(timedDB)
	stgStore := stageStore.NewSQLiteStore(timedDB)
	sesStore := sessionStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		CenterStore:      ctrStore,
		StageStore:       stgStore,
		SessionStore:     sesStore,
		SchoolStore:      schoolStore.NewSQLiteStore(timedDB),
		TariffStore:      tariffStore.NewSQLiteStore(timedDB),
		InvoiceStore:     invoiceStore.NewSQLiteStore(timedDB),
		CreditNoteStore:  creditNoteStore.NewSQLiteStore(timedDB),
		TransactionStore: btxStore.NewSQLiteStore(timedDB),
		RequestStore:     requestStore.NewSQLiteStore(timedDB),
		WaitlistStore:    waitlistStore.NewSQLiteStore(timedDB),
		SubscriberStore:  subscriberStore.NewSQLiteStore(timedDB),
	}

	// Seed a starter catalog for development only
	if os.Getenv("CAMPDESK_ENV") != "production" {
		seedDeps := orchestrators.SeedCatalogDeps{
			CenterStore:  ctrStore,
			StageStore:   stgStore,
			SessionStore: sesStore,
			Now:          time.Now,
		}
		if err := orchestrators.ExecuteSeedCatalog(context.Background(), seedDeps); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
		log.Println("Starter catalog loaded (dev mode)")
	}

	// Configure email sender
	resendKey := os.Getenv("CAMPDESK_RESEND_KEY")
	emailFrom := envOrDefault("CAMPDESK_RESEND_FROM", "CampDesk <noreply@campdesk.be>")
	emailReply := envOrDefault("CAMPDESK_REPLY_TO", "info@campdesk.be")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("CAMPDESK_ENV") == "production" {
			log.Println("WARNING: CAMPDESK_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set CAMPDESK_RESEND_KEY for real delivery)")
		}
	}

	// Configure backend procedure invoker
	if backendURL := os.Getenv("CAMPDESK_BACKEND_URL"); backendURL != "" {
		web.SetInvoker(rpc.NewHTTPInvoker(backendURL))
		log.Printf("Backend invoker configured (%s)", backendURL)
	} else {
		log.Println("Backend invoker not configured, revenue summary disabled")
	}

	// Photo storage lives under the static dir so uploads are served directly
	staticDir := envOrDefault("CAMPDESK_STATIC_DIR", "static")
	photos, err := objectstore.NewDiskStore(filepath.Join(staticDir, "photos"), "/static/photos")
	if err != nil {
		log.Fatalf("failed to create photo store: %v", err)
	}
	web.SetPhotoStore(photos)

	mux := web.NewMux(staticDir, stores)

	addr := envOrDefault("CAMPDESK_ADDR", ":8080")
	log.Printf("CampDesk %s starting on %s (env=%s)", version, addr, envOrDefault("CAMPDESK_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
