package browser_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "campdesk/internal/adapters/http"
	"campdesk/internal/adapters/http/middleware"
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

// testApp bundles the running admin server and the Playwright handles a
// browser test needs.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
}

// newTestApp boots the full admin against a throwaway SQLite file, seeds
// the starter catalog, and launches a headless Chromium. Everything is
// torn down through t.Cleanup.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := openSeededDB(t)
	stores := newStores(db)
	seedCatalog(t, db, stores)

	baseURL, srv := startServer(t, stores)

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("start playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("launch chromium: %v", err)
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
	})

	return &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
	}
}

func openSeededDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "campdesk.db") +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	t.Cleanup(func() { db.Close() })

	if err := storage.InitDB(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func newStores(db *sql.DB) *web.Stores {
	return &web.Stores{
		CenterStore:      centerStore.NewSQLiteStore(db),
		StageStore:       stageStore.NewSQLiteStore(db),
		SessionStore:     sessionStore.NewSQLiteStore(db),
		SchoolStore:      schoolStore.NewSQLiteStore(db),
		TariffStore:      tariffStore.NewSQLiteStore(db),
		InvoiceStore:     invoiceStore.NewSQLiteStore(db),
		CreditNoteStore:  creditNoteStore.NewSQLiteStore(db),
		TransactionStore: btxStore.NewSQLiteStore(db),
		RequestStore:     requestStore.NewSQLiteStore(db),
		WaitlistStore:    waitlistStore.NewSQLiteStore(db),
		SubscriberStore:  subscriberStore.NewSQLiteStore(db),
	}
}

func seedCatalog(t *testing.T, db *sql.DB, stores *web.Stores) {
	t.Helper()
	err := orchestrators.ExecuteSeedCatalog(context.Background(), orchestrators.SeedCatalogDeps{
		CenterStore:  stores.CenterStore,
		StageStore:   stores.StageStore,
		SessionStore: stores.SessionStore,
		Now:          time.Now,
	})
	if err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
}

// startServer binds a free local port, registers it with the CSRF trusted
// origins, and serves the mux until the test ends. Templates and static
// assets resolve relative to the module root, so the working directory is
// moved there first.
func startServer(t *testing.T, stores *web.Stores) (string, *http.Server) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	chdirModuleRoot(t)
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: web.NewMux("static", stores),
	}
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("test server: %v", err)
		}
	}()
	t.Cleanup(func() { srv.Close() })

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	waitReady(t, baseURL)
	return baseURL, srv
}

func waitReady(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server at %s never became reachable", baseURL)
}

func chdirModuleRoot(t *testing.T) {
	t.Helper()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for dir := origDir; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			if err := os.Chdir(dir); err != nil {
				t.Fatalf("chdir %s: %v", dir, err)
			}
			t.Cleanup(func() { os.Chdir(origDir) })
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("no go.mod found above %s", origDir)
		}
		dir = parent
	}
}

// newPage opens a fresh browser tab that closes with the test.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("open page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}
