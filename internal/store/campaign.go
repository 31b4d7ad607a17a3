package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Campaign carries the pricing/policy context for a checkout
type Campaign struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Currency    string    `db:"currency" json:"currency"`
	PreauthOnly bool      `db:"preauth_only" json:"preauth_only"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

const sqlGetCampaignByID = `
	SELECT id, name, currency, preauth_only, created_at, updated_at
	FROM campaigns
	WHERE id = $1;
`

// GetCampaignByID retrieves a campaign by ID
func (s *Store) GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (Campaign, error) {
	var campaign Campaign
	err := s.db.GetContext(ctx, &campaign, sqlGetCampaignByID, campaignID)
	if err != nil {
		if err == sql.ErrNoRows {
			return Campaign{}, ErrNotFound
		}
		return Campaign{}, fmt.Errorf("failed to get campaign: %w", err)
	}
	return campaign, nil
}

// Atomic daily rollup increment. Runs inside the order commit transaction;
// the ON CONFLICT arm replaces the read-then-write upsert the funnel used to
// do, which raced under concurrent orders.
const sqlIncrementDailyOrderStats = `
	INSERT INTO campaign_analytics (campaign_id, date, orders_count, orders_value)
	VALUES ($1, $2, 1, $3)
	ON CONFLICT (campaign_id, date)
	DO UPDATE SET orders_count = campaign_analytics.orders_count + 1,
	              orders_value = campaign_analytics.orders_value + EXCLUDED.orders_value;
`

// CampaignDayStats is one row of the per-campaign daily order rollup
type CampaignDayStats struct {
	CampaignID  uuid.UUID       `db:"campaign_id" json:"campaign_id"`
	Date        time.Time       `db:"date" json:"date"`
	OrdersCount int             `db:"orders_count" json:"orders_count"`
	OrdersValue decimal.Decimal `db:"orders_value" json:"orders_value"`
}

const sqlGetDailyOrderStats = `
	SELECT campaign_id, date, orders_count, orders_value
	FROM campaign_analytics
	WHERE campaign_id = $1 AND date = $2;
`

// GetDailyOrderStats retrieves the rollup row for a campaign and day
func (s *Store) GetDailyOrderStats(ctx context.Context, campaignID uuid.UUID, date time.Time) (CampaignDayStats, error) {
	var stats CampaignDayStats
	err := s.db.GetContext(ctx, &stats, sqlGetDailyOrderStats, campaignID, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return CampaignDayStats{}, ErrNotFound
		}
		return CampaignDayStats{}, fmt.Errorf("failed to get daily order stats: %w", err)
	}
	return stats, nil
}
