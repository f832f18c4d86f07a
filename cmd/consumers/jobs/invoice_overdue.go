package jobs

import (
	"context"
	"log/slog"
	"time"

	"aegis/internal/service"
)

const overdueCheckInterval = time.Hour

// InvoiceOverdueJob periodically flips sent invoices past their due date to
// overdue.
type InvoiceOverdueJob struct {
	invoices *service.InvoiceService
	ticker   *time.Ticker
	done     chan bool
}

func NewInvoiceOverdueJob(invoices *service.InvoiceService) *InvoiceOverdueJob {
	return &InvoiceOverdueJob{
		invoices: invoices,
		done:     make(chan bool),
	}
}

// Start begins the background job. The first check runs immediately.
func (j *InvoiceOverdueJob) Start(ctx context.Context) {
	slog.Info("Starting invoice overdue job", "check_interval", overdueCheckInterval.String())

	j.ticker = time.NewTicker(overdueCheckInterval)

	go j.checkOverdueInvoices(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.checkOverdueInvoices(ctx)
			case <-j.done:
				slog.Info("Invoice overdue job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *InvoiceOverdueJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *InvoiceOverdueJob) checkOverdueInvoices(ctx context.Context) {
	count, err := j.invoices.MarkOverdue(ctx, time.Now())
	if err != nil {
		slog.Error("Failed to mark overdue invoices", "error", err)
		return
	}

	if count > 0 {
		slog.Info("Marked invoices overdue", "count", count)
	}
}
