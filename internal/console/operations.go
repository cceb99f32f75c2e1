package console

import (
	"time"

	"github.com/google/uuid"
)

const (
	operationProgressSteps = 4
	maxTrackedOperations   = 20
)

type OperationKind string

const (
	OperationKindBackup       OperationKind = "backup"
	OperationKindSecurityScan OperationKind = "security_scan"
)

type OperationStatus string

const (
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// Operation is a simulated long-running task. Progress is a manufactured percentage.
type Operation struct {
	ID         string          `json:"id"`
	Kind       OperationKind   `json:"kind"`
	Status     OperationStatus `json:"status"`
	Progress   int             `json:"progress"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// StartBackup begins a simulated backup. LastBackup is updated when it completes.
func (console *Console) StartBackup() Operation {
	return console.startOperation(OperationKindBackup, "Backup Started", "Creating a backup of your website data...", func(finishedAt time.Time) {
		console.mutex.Lock()
		console.lastBackup = &finishedAt
		console.mutex.Unlock()
		console.feed.Publish("Backup Complete", "Website data has been successfully backed up", VariantDefault)
	})
}

// StartSecurityScan begins a simulated security scan.
func (console *Console) StartSecurityScan() Operation {
	return console.startOperation(OperationKindSecurityScan, "Security Scan Started", "Scanning the website for vulnerabilities...", func(time.Time) {
		console.feed.Publish("Security Scan Complete", "No vulnerabilities were found", VariantDefault)
	})
}

func (console *Console) startOperation(kind OperationKind, title string, description string, onComplete func(time.Time)) Operation {
	operation := &Operation{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    OperationStatusRunning,
		StartedAt: console.clock().UTC(),
	}

	console.mutex.Lock()
	if console.runtimeContext.Err() != nil {
		console.mutex.Unlock()
		finishedAt := operation.StartedAt
		operation.Status = OperationStatusCancelled
		operation.FinishedAt = &finishedAt
		return *operation
	}
	console.trackOperationLocked(operation)
	started := *operation
	console.operationsGroup.Add(1)
	console.mutex.Unlock()

	console.feed.Publish(title, description, VariantDefault)
	go console.runOperation(operation.ID, onComplete)
	return started
}

func (console *Console) trackOperationLocked(operation *Operation) {
	console.operations[operation.ID] = operation
	console.operationOrder = append(console.operationOrder, operation.ID)
	for len(console.operationOrder) > maxTrackedOperations {
		oldestID := console.operationOrder[0]
		if console.operations[oldestID].Status == OperationStatusRunning {
			break
		}
		delete(console.operations, oldestID)
		console.operationOrder = console.operationOrder[1:]
	}
}

func (console *Console) runOperation(operationID string, onComplete func(time.Time)) {
	defer console.operationsGroup.Done()

	stepDelay := console.operationDelay / operationProgressSteps
	if stepDelay <= 0 {
		stepDelay = time.Millisecond
	}
	ticker := time.NewTicker(stepDelay)
	defer ticker.Stop()

	for step := 1; step <= operationProgressSteps; step++ {
		select {
		case <-console.runtimeContext.Done():
			console.finishOperation(operationID, OperationStatusCancelled)
			return
		case <-ticker.C:
			console.setProgress(operationID, step*100/operationProgressSteps)
		}
	}

	finishedAt := console.finishOperation(operationID, OperationStatusCompleted)
	if onComplete != nil {
		onComplete(finishedAt)
	}
}

func (console *Console) setProgress(operationID string, progress int) {
	console.mutex.Lock()
	defer console.mutex.Unlock()
	if operation, found := console.operations[operationID]; found {
		operation.Progress = progress
	}
}

func (console *Console) finishOperation(operationID string, status OperationStatus) time.Time {
	finishedAt := console.clock().UTC()
	console.mutex.Lock()
	defer console.mutex.Unlock()
	if operation, found := console.operations[operationID]; found {
		operation.Status = status
		operation.FinishedAt = &finishedAt
	}
	return finishedAt
}
