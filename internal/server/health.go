package server

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/estate/estate/internal/people"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	IsCritical() bool // Critical services block startup and fail /health
	Name() string
}

// HealthManager runs a set of health checkers
type HealthManager struct {
	checkers []HealthChecker
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewHealthManager creates a new health manager
func NewHealthManager(logger *zap.Logger) *HealthManager {
	return &HealthManager{
		checkers: make([]HealthChecker, 0),
		logger:   logger,
	}
}

// AddChecker adds a health checker to the manager
func (h *HealthManager) AddChecker(checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checker)
}

// StartupHealthCheck performs critical health checks that must pass for startup
func (h *HealthManager) StartupHealthCheck(ctx context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var criticalFailures []error

	for _, checker := range h.checkers {
		err := checker.HealthCheck(ctx)
		if err == nil {
			h.logger.Debug("Service health check passed",
				zap.String("service", checker.Name()),
				zap.Bool("critical", checker.IsCritical()))
			continue
		}

		if checker.IsCritical() {
			criticalFailures = append(criticalFailures, fmt.Errorf("%s: %w", checker.Name(), err))
			h.logger.Error("Critical service health check failed",
				zap.String("service", checker.Name()),
				zap.Error(err))
		} else {
			h.logger.Warn("Non-critical service health check failed",
				zap.String("service", checker.Name()),
				zap.Error(err))
		}
	}

	if len(criticalFailures) > 0 {
		return fmt.Errorf("critical services failed health check: %v", criticalFailures)
	}
	return nil
}

// RuntimeHealthCheck reports the result of every checker by name
func (h *HealthManager) RuntimeHealthCheck(ctx context.Context) map[string]error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	results := make(map[string]error, len(h.checkers))
	for _, checker := range h.checkers {
		results[checker.Name()] = checker.HealthCheck(ctx)
	}
	return results
}

// CriticalFailures returns an error naming every critical checker that failed in results
func (h *HealthManager) CriticalFailures(results map[string]error) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var failures []error
	for _, checker := range h.checkers {
		if err := results[checker.Name()]; err != nil && checker.IsCritical() {
			failures = append(failures, fmt.Errorf("%s: %w", checker.Name(), err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("critical services failed health check: %v", failures)
	}
	return nil
}

// StoreHealthChecker checks that the person store is reachable
type StoreHealthChecker struct {
	store people.Store
}

// NewStoreHealthChecker creates a store health checker
func NewStoreHealthChecker(store people.Store) *StoreHealthChecker {
	return &StoreHealthChecker{store: store}
}

func (s *StoreHealthChecker) HealthCheck(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("store is nil")
	}
	return s.store.Ping(ctx)
}

func (s *StoreHealthChecker) IsCritical() bool {
	return true
}

func (s *StoreHealthChecker) Name() string {
	return "store"
}
