package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cityforge/cityforge/model"
	"github.com/cityforge/cityforge/utils/auth"
)

// webhookDeliveryRetention bounds how long dispatch outcomes are kept
const webhookDeliveryRetention = 30 * 24 * time.Hour

// cronLogRetention bounds how long job run records are kept
const cronLogRetention = 90 * 24 * time.Hour

// CleanupExpiredTokens removes blacklist entries for tokens that have
// expired on their own; they no longer need revocation tracking.
func (m *CronManager) CleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "cleanup_expired_tokens"

	blacklist := auth.NewBlacklistService(m.db)
	removed, err := blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to clean up blacklist: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired blacklist entries", removed))
}

// PruneWebhookDeliveries drops delivery records older than the
// retention window
func (m *CronManager) PruneWebhookDeliveries() {
	jobName := "prune_webhook_deliveries"

	cutoff := time.Now().Add(-webhookDeliveryRetention)
	result := m.db.Where("created_at < ?", cutoff).Delete(&model.WebhookDelivery{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to prune deliveries: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d old delivery records", result.RowsAffected))
}

// PruneCronJobLogs drops job run records older than the retention
// window
func (m *CronManager) PruneCronJobLogs() {
	jobName := "prune_cron_job_logs"

	cutoff := time.Now().Add(-cronLogRetention)
	result := m.db.Where("started_at < ?", cutoff).Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to prune cron logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d old cron log entries", result.RowsAffected))
}
