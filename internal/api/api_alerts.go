package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/YouWantToPinch/pocketwise-api/internal/database"
	"github.com/YouWantToPinch/pocketwise-api/internal/events"
	"github.com/YouWantToPinch/pocketwise-api/internal/ledger"
)

// checkBudgetExceeded publishes a budget.exceeded event when spending in the
// category for period is above its budget. Failures are logged and never
// reach the client; the write that triggered the check has already committed.
func (cfg *APIConfig) checkBudgetExceeded(ctx context.Context, userID uuid.UUID, category database.Category, period ledger.Period) {
	logger := slog.With(
		slog.String("user_id", userID.String()),
		slog.String("category_id", category.ID.String()),
		slog.String("period", period.String()),
	)

	budget, err := cfg.db.GetBudgetForCategoryPeriod(ctx, database.GetBudgetForCategoryPeriodParams{
		UserID:      userID,
		CategoryID:  category.ID,
		PeriodYear:  int32(period.Year),
		PeriodMonth: int32(period.Month),
	})
	if errors.Is(err, database.ErrNotFound) {
		return
	}
	if err != nil {
		logger.Warn("could not look up budget for alert", slog.String("error", err.Error()))
		return
	}

	spent, err := cfg.db.SumCategorySpending(ctx, database.SumCategorySpendingParams{
		UserID:     userID,
		CategoryID: category.ID,
		StartDate:  period.First(),
		EndDate:    period.Last(),
	})
	if err != nil {
		logger.Warn("could not sum category spending for alert", slog.String("error", err.Error()))
		return
	}
	if !spent.GreaterThan(budget.Amount) {
		return
	}

	event := events.NewBudgetExceeded(userID, events.BudgetExceeded{
		BudgetID:     budget.ID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Period:       period.String(),
		Budget:       budget.Amount,
		Spent:        spent,
	})
	if err := cfg.events.Publish(ctx, event); err != nil {
		logger.Error("could not publish budget alert", slog.String("error", err.Error()))
		return
	}
	logger.Info("budget exceeded",
		slog.String("budget", budget.Amount.String()),
		slog.String("spent", spent.String()))
}
