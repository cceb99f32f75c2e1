package console

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultSuperAdminDuration = 10 * time.Second
	percentScale              = 100
)

var (
	ErrUnknownPowerAction     = errors.New("console: unknown power action")
	ErrPowerActionCoolingDown = errors.New("console: power action is cooling down")
	ErrConsoleClosed          = errors.New("console: closed")
)

// PowerActionID names one of the owner's privileged actions.
type PowerActionID string

const (
	PowerActionOptimizeDatabase  PowerActionID = "optimize-db"
	PowerActionForceLogout       PowerActionID = "force-logout"
	PowerActionEmergencyLockdown PowerActionID = "emergency-lock"
	PowerActionSuperAdmin        PowerActionID = "super-admin"
	PowerActionSystemBoost       PowerActionID = "system-boost"
)

// PowerActionStatus reports when an action may run again.
type PowerActionStatus struct {
	ID          PowerActionID `json:"id"`
	AvailableAt time.Time     `json:"available_at"`
}

type powerAction struct {
	cooldown              time.Duration
	startTitle            string
	startDescription      string
	startVariant          Variant
	completionTitle       string
	completionDescription string
	// completionDelay returns zero for actions that finish immediately.
	completionDelay func(*Console) time.Duration
	apply           func(*Console)
	complete        func(*Console)
}

func scaledOperationDelay(percent int64) func(*Console) time.Duration {
	return func(console *Console) time.Duration {
		return console.operationDelay * time.Duration(percent) / percentScale
	}
}

var powerActions = map[PowerActionID]powerAction{
	PowerActionOptimizeDatabase: {
		cooldown:              5 * time.Second,
		startTitle:            "Database Optimization Started",
		startDescription:      "Running optimization routines...",
		completionTitle:       "Database Optimized",
		completionDescription: "All tables have been optimized and indexes rebuilt",
		completionDelay:       scaledOperationDelay(100),
	},
	PowerActionForceLogout: {
		cooldown:              8 * time.Second,
		startTitle:            "Force Logout Initiated",
		startDescription:      "All users are being logged out...",
		completionTitle:       "Force Logout Complete",
		completionDescription: "All user sessions have been terminated",
		completionDelay:       scaledOperationDelay(75),
		complete: func(console *Console) {
			console.activeUsers = 0
		},
	},
	PowerActionEmergencyLockdown: {
		cooldown:         10 * time.Second,
		startTitle:       "Emergency Lockdown Activated",
		startDescription: "Website is now in lockdown mode. Only owners can access.",
		startVariant:     VariantDestructive,
		apply: func(console *Console) {
			console.emergencyLockdown = true
		},
	},
	PowerActionSuperAdmin: {
		cooldown:              15 * time.Second,
		startTitle:            "Super Admin Mode Activated",
		startDescription:      "All admins now have owner-level privileges for a limited time",
		completionTitle:       "Super Admin Mode Deactivated",
		completionDescription: "Admin privileges have been restored to normal",
		completionDelay: func(console *Console) time.Duration {
			return console.superAdminDuration
		},
		apply: func(console *Console) {
			console.superAdminActive = true
		},
		complete: func(console *Console) {
			console.superAdminActive = false
		},
	},
	PowerActionSystemBoost: {
		cooldown:              12 * time.Second,
		startTitle:            "System Boost Initiated",
		startDescription:      "Allocating additional resources to the server...",
		completionTitle:       "System Resources Boosted",
		completionDescription: "Server performance has been enhanced for the next hour",
		completionDelay:       scaledOperationDelay(125),
	},
}

// RunPowerAction starts the named action. An action that ran within its cooldown is
// rejected with ErrPowerActionCoolingDown and the time it becomes available again.
func (console *Console) RunPowerAction(rawID string) (PowerActionStatus, error) {
	actionID := PowerActionID(strings.ToLower(strings.TrimSpace(rawID)))
	action, known := powerActions[actionID]
	if !known {
		return PowerActionStatus{}, fmt.Errorf("%w: %q", ErrUnknownPowerAction, rawID)
	}
	now := console.clock()

	console.mutex.Lock()
	if console.runtimeContext.Err() != nil {
		console.mutex.Unlock()
		return PowerActionStatus{ID: actionID}, ErrConsoleClosed
	}
	if availableAt, cooling := console.powerCooldowns[actionID]; cooling && now.Before(availableAt) {
		console.mutex.Unlock()
		return PowerActionStatus{ID: actionID, AvailableAt: availableAt.UTC()}, fmt.Errorf("%w: %s", ErrPowerActionCoolingDown, actionID)
	}
	availableAt := now.Add(action.cooldown)
	console.powerCooldowns[actionID] = availableAt
	if action.apply != nil {
		action.apply(console)
	}
	var completionDelay time.Duration
	if action.completionDelay != nil {
		completionDelay = action.completionDelay(console)
		console.operationsGroup.Add(1)
	}
	console.mutex.Unlock()

	console.feed.Publish(action.startTitle, action.startDescription, action.startVariant)
	if action.completionDelay != nil {
		go console.completePowerAction(action, completionDelay)
	}
	return PowerActionStatus{ID: actionID, AvailableAt: availableAt.UTC()}, nil
}

func (console *Console) completePowerAction(action powerAction, delay time.Duration) {
	defer console.operationsGroup.Done()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-console.runtimeContext.Done():
		return
	case <-timer.C:
	}

	if action.complete != nil {
		console.mutex.Lock()
		action.complete(console)
		console.mutex.Unlock()
	}
	console.feed.Publish(action.completionTitle, action.completionDescription, VariantDefault)
}
