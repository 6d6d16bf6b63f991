package constants

import "time"

const (
	AppName            = "homeagenda"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/homeagenda/homeagenda.db"
	MemoryConfigPath   = ":memory:"
	Version            = "v0.3.0"

	// EnvDBConnection holds a Postgres connection string that must not be typed on the command line.
	EnvDBConnection = "HOMEAGENDA_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DateTimeFormat is accepted on the command line for local instants.
	DateTimeFormat = "2006-01-02 15:04"

	// Notify constants
	NotifierLockfileName   = "homeagenda-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.elioaoun07.homeagenda"
	NotifyTimeout          = 3 * time.Second

	// AgendaWalkLimit bounds how many consecutive done occurrences of one recurring item
	// the agenda steps over while looking for the next pending one.
	AgendaWalkLimit = 366

	// RecurrenceCacheSize is the number of parsed rules kept per process.
	RecurrenceCacheSize = 512
)
