package config

import (
	"time"

	"github.com/inboxsweep/inboxsweep/internal/logger"
	"github.com/inboxsweep/inboxsweep/internal/tracing"
)

type AppConfig struct {
	APIPort string `env:"PORT" envDefault:"8000"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8000"`
	Logger  *logger.Config
	Tracing *tracing.JaegerConfig
}

type GoogleOAuthConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURI  string `env:"REDIRECT_URI" envDefault:"http://localhost:8000/auth/callback"`
}

type CleanupConfig struct {
	// SafetyCap bounds total deletions per run. Zero disables the cap, which
	// is deliberately hard to reach from config: the default stays on.
	SafetyCap  int           `env:"CLEANUP_SAFETY_CAP" envDefault:"2000"`
	PageSize   int64         `env:"CLEANUP_PAGE_SIZE" envDefault:"500"`
	BatchPause time.Duration `env:"CLEANUP_BATCH_PAUSE" envDefault:"200ms"`

	// UnreadOnlyCategories binds the is:unread safety predicate to every
	// category query. Turning it off allows category filters to touch read
	// mail and should stay on outside of test setups.
	UnreadOnlyCategories bool `env:"CLEANUP_UNREAD_ONLY_CATEGORIES" envDefault:"true"`

	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionSweepSchedule string        `env:"CRON_SCHEDULE_SESSION_SWEEP" envDefault:"@every 15m"`
}

type IMAPConfig struct {
	// Enabled switches the mailbox backend from Gmail REST to plain IMAP.
	Enabled     bool   `env:"IMAP_ENABLED" envDefault:"false"`
	Server      string `env:"IMAP_SERVER"`
	Username    string `env:"IMAP_USERNAME"`
	Password    string `env:"IMAP_PASSWORD"`
	TrashFolder string `env:"IMAP_TRASH_FOLDER" envDefault:"Trash"`
}
