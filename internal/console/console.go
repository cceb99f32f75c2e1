package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/portfolio/internal/task"
)

const (
	DefaultSiteTitle      = "Taha Barakat | Personal Portfolio"
	DefaultSecurityLevel  = "high"
	DefaultOperationDelay = 2 * time.Second
	defaultActiveUsers    = 12

	logEventScheduledBackup = "scheduled_backup"
	logFieldSchedule        = "schedule"
)

var (
	ErrUnknownSchedule = errors.New("console: unknown backup schedule")
	ErrUnknownAPIKey   = errors.New("console: unknown api key")
	ErrInvalidUserID   = errors.New("console: invalid user id")
	ErrEmptySiteTitle  = errors.New("console: site title is required")
	ErrNoActiveUsers   = errors.New("console: no active users")
)

// BackupSchedule is the cadence of scheduled backups.
type BackupSchedule string

const (
	BackupScheduleDaily   BackupSchedule = "daily"
	BackupScheduleWeekly  BackupSchedule = "weekly"
	BackupScheduleMonthly BackupSchedule = "monthly"
)

var backupScheduleIntervals = map[BackupSchedule]time.Duration{
	BackupScheduleDaily:   24 * time.Hour,
	BackupScheduleWeekly:  7 * 24 * time.Hour,
	BackupScheduleMonthly: 30 * 24 * time.Hour,
}

func ParseBackupSchedule(rawInput string) (BackupSchedule, error) {
	schedule := BackupSchedule(strings.ToLower(strings.TrimSpace(rawInput)))
	if _, known := backupScheduleIntervals[schedule]; !known {
		return "", fmt.Errorf("%w: %q", ErrUnknownSchedule, rawInput)
	}
	return schedule, nil
}

func (schedule BackupSchedule) Interval() time.Duration {
	return backupScheduleIntervals[schedule]
}

// APIKey is a display-only key the owner can toggle.
type APIKey struct {
	Name   string `json:"name"`
	Key    string `json:"key"`
	Active bool   `json:"active"`
}

func defaultAPIKeys() []APIKey {
	return []APIKey{
		{Name: "Public API", Key: "pub_4f8a9c2d7e6b5f3a2c1d", Active: true},
		{Name: "Admin API", Key: "adm_9b8c7d6e5f4a3b2c1d9e", Active: true},
		{Name: "Analytics API", Key: "anl_2a3b4c5d6e7f8g9h0i1j", Active: false},
	}
}

// Snapshot is a copy of the console state.
type Snapshot struct {
	SiteTitle         string         `json:"site_title"`
	MaintenanceMode   bool           `json:"maintenance_mode"`
	BackupSchedule    BackupSchedule `json:"backup_schedule"`
	LastBackup        *time.Time     `json:"last_backup,omitempty"`
	SecurityLevel     string         `json:"security_level"`
	ActiveUsers       int            `json:"active_users"`
	EmergencyLockdown bool           `json:"emergency_lockdown"`
	SuperAdminActive  bool           `json:"super_admin_active"`
	APIKeys           []APIKey       `json:"api_keys"`
	Operations        []Operation    `json:"operations"`
}

// Config tunes a Console.
type Config struct {
	OperationDelay     time.Duration
	InitialActiveUsers int
	SiteTitle          string
	FeedCapacity       int
	SuperAdminDuration time.Duration
	Clock              func() time.Time
}

// Console holds the mock administration state shared by the admin and owner dashboards.
// Nothing it does reaches outside the process.
type Console struct {
	mutex              sync.RWMutex
	logger             *zap.Logger
	feed               *Feed
	clock              func() time.Time
	operationDelay     time.Duration
	siteTitle          string
	maintenanceMode    bool
	backupSchedule     BackupSchedule
	lastBackup         *time.Time
	securityLevel      string
	activeUsers        int
	apiKeys            []APIKey
	emergencyLockdown  bool
	superAdminActive   bool
	superAdminDuration time.Duration
	powerCooldowns     map[PowerActionID]time.Time
	operations         map[string]*Operation
	operationOrder     []string
	backupScheduler    *task.Scheduler
	runtimeContext     context.Context
	cancelRuntime      context.CancelFunc
	operationsGroup    sync.WaitGroup
}

func New(configuration Config, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := configuration.Clock
	if clock == nil {
		clock = time.Now
	}
	operationDelay := configuration.OperationDelay
	if operationDelay <= 0 {
		operationDelay = DefaultOperationDelay
	}
	activeUsers := configuration.InitialActiveUsers
	if activeUsers <= 0 {
		activeUsers = defaultActiveUsers
	}
	superAdminDuration := configuration.SuperAdminDuration
	if superAdminDuration <= 0 {
		superAdminDuration = DefaultSuperAdminDuration
	}
	siteTitle := strings.TrimSpace(configuration.SiteTitle)
	if siteTitle == "" {
		siteTitle = DefaultSiteTitle
	}

	runtimeContext, cancelRuntime := context.WithCancel(context.Background())
	consoleInstance := &Console{
		logger:             logger,
		feed:               NewFeed(configuration.FeedCapacity, logger, clock),
		clock:              clock,
		operationDelay:     operationDelay,
		siteTitle:          siteTitle,
		backupSchedule:     BackupScheduleDaily,
		securityLevel:      DefaultSecurityLevel,
		activeUsers:        activeUsers,
		apiKeys:            defaultAPIKeys(),
		superAdminDuration: superAdminDuration,
		powerCooldowns:     make(map[PowerActionID]time.Time),
		operations:         make(map[string]*Operation),
		runtimeContext:     runtimeContext,
		cancelRuntime:      cancelRuntime,
	}
	consoleInstance.backupScheduler = task.NewScheduler(BackupScheduleDaily.Interval(), consoleInstance.runScheduledBackup)
	return consoleInstance
}

// Start begins scheduled backups. They stop when ctx is cancelled or Close is called.
func (console *Console) Start(ctx context.Context) {
	console.backupScheduler.Start(ctx)
}

// Close stops scheduled backups and cancels running operations. Cancelled operations publish nothing.
func (console *Console) Close() {
	console.backupScheduler.Stop()
	console.mutex.Lock()
	console.cancelRuntime()
	console.mutex.Unlock()
	console.operationsGroup.Wait()
}

func (console *Console) Feed() *Feed {
	return console.feed
}

// Notify publishes a notification on behalf of a caller outside the console.
func (console *Console) Notify(title string, description string, variant Variant) Notification {
	return console.feed.Publish(title, description, variant)
}

func (console *Console) Snapshot() Snapshot {
	console.mutex.RLock()
	defer console.mutex.RUnlock()

	snapshot := Snapshot{
		SiteTitle:       console.siteTitle,
		MaintenanceMode: console.maintenanceMode,
		BackupSchedule:  console.backupSchedule,
		SecurityLevel:     console.securityLevel,
		ActiveUsers:       console.activeUsers,
		EmergencyLockdown: console.emergencyLockdown,
		SuperAdminActive:  console.superAdminActive,
		APIKeys:           append([]APIKey(nil), console.apiKeys...),
		Operations:        make([]Operation, 0, len(console.operationOrder)),
	}
	if console.lastBackup != nil {
		lastBackup := *console.lastBackup
		snapshot.LastBackup = &lastBackup
	}
	for _, operationID := range console.operationOrder {
		snapshot.Operations = append(snapshot.Operations, *console.operations[operationID])
	}
	return snapshot
}

func (console *Console) KickUser(userID int) error {
	if userID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidUserID, userID)
	}
	console.mutex.Lock()
	if console.activeUsers == 0 {
		console.mutex.Unlock()
		return ErrNoActiveUsers
	}
	console.activeUsers--
	console.mutex.Unlock()

	console.feed.Publish("User Kicked", fmt.Sprintf("User ID: %d has been kicked from the website", userID), VariantDefault)
	return nil
}

// ToggleMaintenance flips maintenance mode and returns the new value.
func (console *Console) ToggleMaintenance() bool {
	console.mutex.Lock()
	console.maintenanceMode = !console.maintenanceMode
	enabled := console.maintenanceMode
	console.mutex.Unlock()

	if enabled {
		console.feed.Publish("Maintenance Mode Enabled", "Your website is now in maintenance mode and only accessible to admins", VariantDefault)
	} else {
		console.feed.Publish("Maintenance Mode Disabled", "Your website is now accessible to the public", VariantDefault)
	}
	return enabled
}

func (console *Console) SetBackupSchedule(rawSchedule string) (BackupSchedule, error) {
	schedule, parseErr := ParseBackupSchedule(rawSchedule)
	if parseErr != nil {
		return "", parseErr
	}
	console.mutex.Lock()
	console.backupSchedule = schedule
	console.mutex.Unlock()

	console.backupScheduler.Reschedule(schedule.Interval())
	console.feed.Publish("Backup Schedule Updated", fmt.Sprintf("Backups will now run %s", schedule), VariantDefault)
	return schedule, nil
}

func (console *Console) SetAPIKeyActive(name string, active bool) (APIKey, error) {
	console.mutex.Lock()
	var updated *APIKey
	for index := range console.apiKeys {
		if console.apiKeys[index].Name == name {
			console.apiKeys[index].Active = active
			updated = &console.apiKeys[index]
			break
		}
	}
	if updated == nil {
		console.mutex.Unlock()
		return APIKey{}, fmt.Errorf("%w: %q", ErrUnknownAPIKey, name)
	}
	result := *updated
	console.mutex.Unlock()

	if active {
		console.feed.Publish("API Key Activated", fmt.Sprintf("The %s key has been activated", name), VariantDefault)
	} else {
		console.feed.Publish("API Key Deactivated", fmt.Sprintf("The %s key has been deactivated", name), VariantDefault)
	}
	return result, nil
}

func (console *Console) SaveSettings(siteTitle string) error {
	trimmedTitle := strings.TrimSpace(siteTitle)
	if trimmedTitle == "" {
		return ErrEmptySiteTitle
	}
	console.mutex.Lock()
	console.siteTitle = trimmedTitle
	console.mutex.Unlock()

	console.feed.Publish("Settings Saved", "Your website settings have been updated", VariantDefault)
	return nil
}

func (console *Console) ResetSecurity() {
	console.mutex.Lock()
	console.securityLevel = DefaultSecurityLevel
	console.emergencyLockdown = false
	console.mutex.Unlock()

	console.feed.Publish("Security Settings Reset", "All security settings have been restored to defaults", VariantDefault)
}

func (console *Console) runScheduledBackup(context.Context) {
	console.mutex.RLock()
	schedule := console.backupSchedule
	console.mutex.RUnlock()

	console.logger.Info(logEventScheduledBackup, zap.String(logFieldSchedule, string(schedule)))
	console.StartBackup()
}
