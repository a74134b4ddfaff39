package jobs

import (
	"context"
	"fmt"
	"time"

	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/logger"
	"barangay-asset-backend/internal/utils"
)

// SendOverdueReminders notifies requesters whose paid lines have passed
// their return deadline and alerts the staff inbox. Overdue is never
// written to the database; this job recomputes it from return dates, the
// same way reads do.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()
		today := time.Now().UTC().Format(utils.DateLayout)

		items, err := jr.requestRepo.ListUnreturnedDueBefore(ctx, today)
		if err != nil {
			logger.Error("Failed to list overdue items", "error", err)
			return
		}

		for _, it := range items {
			req, err := jr.requestRepo.GetByID(ctx, it.RequestID)
			if err != nil {
				logger.Error("Failed to load request for overdue item", "item_id", it.ID, "error", err)
				continue
			}

			note := &domain.Notification{
				UserID:  req.RequesterID,
				Title:   "Rental Overdue",
				Message: fmt.Sprintf("An item on request %s was due back on %s. Please return it to the barangay hall.", req.CustomRequestID, it.ReturnDate),
				Attributes: map[string]string{
					"type":        "RENTAL_OVERDUE",
					"item_id":     fmt.Sprintf("%d", it.ID),
					"return_date": it.ReturnDate,
				},
			}
			if err := jr.noteRepo.Create(ctx, note); err != nil {
				logger.Error("Failed to create overdue notification", "item_id", it.ID, "error", err)
			}

			if err := jr.emailSvc.SendOverdueReminder(ctx, jr.config.Policy.StaffEmail, req.CustomRequestID, it.ReturnDate); err != nil {
				logger.Error("Failed to send overdue reminder", "item_id", it.ID, "error", err)
			}
		}

		logger.Info("Processed overdue reminders", "count", len(items))
	})
}

// PurgeStaleCarts drops server-side carts nobody has touched within the
// configured age so abandoned drafts do not pile up.
func (jr *JobRunner) PurgeStaleCarts() {
	jr.runWithRecovery("PurgeStaleCarts", func() {
		purged := jr.cartStore.PurgeStale(jr.config.CartMaxAge())
		logger.Info("Purged stale carts", "count", purged)
	})
}
