package service

import (
	"context"
	"fmt"
	"time"

	"nebulines/models"

	log "github.com/sirupsen/logrus"
)

// ledgerAuditService implements the LedgerAuditService interface
type ledgerAuditService struct {
	repo LedgerAuditRepository
	now  func() time.Time
}

// NewLedgerAuditService creates a new ledger audit service
func NewLedgerAuditService(repo LedgerAuditRepository) LedgerAuditService {
	return &ledgerAuditService{
		repo: repo,
		now:  time.Now,
	}
}

// Audit replays every account's ledger and reports balances that do not match
func (s *ledgerAuditService) Audit(ctx context.Context) (*models.LedgerAuditReport, error) {
	report := &models.LedgerAuditReport{StartedAt: s.now()}

	checked, discrepancies, err := s.repo.FindDiscrepancies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile ledger: %w", err)
	}
	report.AccountsChecked = checked
	report.Discrepancies = discrepancies
	report.FinishedAt = s.now()

	for _, d := range discrepancies {
		log.WithFields(log.Fields{
			"userID":    d.UserID,
			"balance":   d.Balance,
			"ledgerSum": d.LedgerSum,
			"drift":     d.Drift(),
		}).Error("Balance does not match ledger")
	}

	log.WithFields(log.Fields{
		"accountsChecked": checked,
		"discrepancies":   len(discrepancies),
		"duration":        report.FinishedAt.Sub(report.StartedAt),
	}).Info("Ledger audit finished")

	return report, nil
}
