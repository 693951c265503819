package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"campdesk/internal/adapters/email"
	"campdesk/internal/adapters/http/middleware"
	"campdesk/internal/adapters/rpc"
	banktransactionStore "campdesk/internal/adapters/storage/banktransaction"
	centerStore "campdesk/internal/adapters/storage/center"
	creditnoteStore "campdesk/internal/adapters/storage/creditnote"
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

// Stores holds all storage dependencies.
type Stores struct {
	CenterStore      centerStore.Store
	StageStore       stageStore.Store
	SessionStore     sessionStore.Store
	SchoolStore      schoolStore.Store
	TariffStore      tariffStore.Store
	InvoiceStore     invoiceStore.Store
	CreditNoteStore  creditnoteStore.Store
	TransactionStore banktransactionStore.Store
	RequestStore     requestStore.Store
	WaitlistStore    waitlistStore.Store
	SubscriberStore  subscriberStore.Store
}

// loadCSRFKey reads the CSRF secret from CAMPDESK_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("CAMPDESK_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CAMPDESK_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("CAMPDESK_ENV") == "production" {
		log.Fatal("CAMPDESK_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set CAMPDESK_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// Global remote procedure invoker (set by SetInvoker)
var invoker rpc.Invoker = rpc.NoopInvoker{}

// SetInvoker sets the backend remote procedure invoker.
func SetInvoker(inv rpc.Invoker) {
	invoker = inv
}

// Global photo store (set by SetPhotoStore)
var photoStore orchestrators.PhotoStore

// SetPhotoStore sets the upload destination for stage and center photos.
func SetPhotoStore(ps orchestrators.PhotoStore) {
	photoStore = ps
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores) http.Handler {
	stores = s

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: SecurityHeaders -> CSRF -> RateLimit -> Timing -> Recover -> Mux
	return middleware.Chain(mux,
		middleware.Recover,
		middleware.Timing(),
		middleware.RateLimit(limiter),
		middleware.CSRF(csrfKey),
		middleware.SecurityHeaders,
	)
}
