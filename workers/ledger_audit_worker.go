package workers

import (
	"context"
	"fmt"

	"nebulines/models"
	"nebulines/service"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// AuditRecorder receives the outcome of every reconciliation run
type AuditRecorder interface {
	RecordLedgerAudit(discrepancies int, err error)
}

// LedgerAuditWorker periodically replays the ledger against stored balances
type LedgerAuditWorker struct {
	auditor  service.LedgerAuditService
	recorder AuditRecorder
	cron     *cron.Cron
}

// NewLedgerAuditWorker creates the worker. recorder may be nil.
func NewLedgerAuditWorker(auditor service.LedgerAuditService, recorder AuditRecorder) *LedgerAuditWorker {
	return &LedgerAuditWorker{
		auditor:  auditor,
		recorder: recorder,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start schedules the audit on spec (six fields, seconds first) and runs it once immediately.
// The returned function stops the schedule and waits for a running audit to finish.
func (w *LedgerAuditWorker) Start(ctx context.Context, spec string) (func(), error) {
	if _, err := w.cron.AddFunc(spec, func() { w.RunOnce(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid ledger audit schedule %q: %w", spec, err)
	}

	go w.RunOnce(ctx)
	w.cron.Start()
	log.WithField("schedule", spec).Info("Ledger audit worker started")

	return func() {
		<-w.cron.Stop().Done()
		log.Info("Ledger audit worker stopped")
	}, nil
}

// RunOnce performs a single reconciliation pass
func (w *LedgerAuditWorker) RunOnce(ctx context.Context) *models.LedgerAuditReport {
	if ctx.Err() != nil {
		return nil
	}

	report, err := w.auditor.Audit(ctx)
	if w.recorder != nil {
		discrepancies := 0
		if report != nil {
			discrepancies = len(report.Discrepancies)
		}
		w.recorder.RecordLedgerAudit(discrepancies, err)
	}
	if err != nil {
		log.WithError(err).Error("Ledger audit failed")
		return nil
	}

	return report
}
