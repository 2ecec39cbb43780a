package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/metrics"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const ratingColumns = "id, week_key, evaluator_id, evaluated_id, score, updated_at"

func (s *Store) ListRatings(ctx context.Context, weekKey string) ([]engagement.Rating, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+ratingColumns+`
    FROM engagement_ratings
    WHERE week_key = $1
    ORDER BY evaluated_id, evaluator_id
  `, weekKey)
	if err != nil {
		return nil, err
	}
	return collectRatings(rows)
}

func (s *Store) AllRatings(ctx context.Context) ([]engagement.Rating, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+ratingColumns+`
    FROM engagement_ratings
    ORDER BY week_key, evaluated_id, evaluator_id
  `)
	if err != nil {
		return nil, err
	}
	return collectRatings(rows)
}

// SaveRating relies on the unique (week_key, evaluator_id, evaluated_id)
// constraint; a conflicting row keeps its id and takes the new score.
func (s *Store) SaveRating(ctx context.Context, rating engagement.Rating) (engagement.Rating, error) {
	var saved engagement.Rating
	err := s.DB.QueryRow(ctx, `
    INSERT INTO engagement_ratings (id, week_key, evaluator_id, evaluated_id, score, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (week_key, evaluator_id, evaluated_id)
    DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
    RETURNING `+ratingColumns,
		uuid.NewString(), rating.WeekKey, rating.EvaluatorID, rating.EvaluatedID, rating.Score, rating.UpdatedAt,
	).Scan(&saved.ID, &saved.WeekKey, &saved.EvaluatorID, &saved.EvaluatedID, &saved.Score, &saved.UpdatedAt)
	if err != nil {
		return engagement.Rating{}, err
	}
	return saved, nil
}

func collectRatings(rows pgx.Rows) ([]engagement.Rating, error) {
	defer rows.Close()
	ratings := []engagement.Rating{}
	for rows.Next() {
		var r engagement.Rating
		if err := rows.Scan(&r.ID, &r.WeekKey, &r.EvaluatorID, &r.EvaluatedID, &r.Score, &r.UpdatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

const weeklyColumns = `id, week_key, user_id, leads_count, deals_count, mp, tons_count,
    deals_in_negotiation, buyers_count, suppliers_count, leads_processed, updated_at`

func (s *Store) ListWeeklyMetrics(ctx context.Context) ([]metrics.WeeklyMetric, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+weeklyColumns+" FROM weekly_metrics ORDER BY week_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []metrics.WeeklyMetric{}
	for rows.Next() {
		m, err := scanWeekly(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (s *Store) SaveWeeklyMetric(ctx context.Context, m metrics.WeeklyMetric) (metrics.WeeklyMetric, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO weekly_metrics (id, week_key, user_id, leads_count, deals_count, mp, tons_count,
      deals_in_negotiation, buyers_count, suppliers_count, leads_processed, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    ON CONFLICT (week_key) DO UPDATE SET
      user_id = EXCLUDED.user_id,
      leads_count = EXCLUDED.leads_count,
      deals_count = EXCLUDED.deals_count,
      mp = EXCLUDED.mp,
      tons_count = EXCLUDED.tons_count,
      deals_in_negotiation = EXCLUDED.deals_in_negotiation,
      buyers_count = EXCLUDED.buyers_count,
      suppliers_count = EXCLUDED.suppliers_count,
      leads_processed = EXCLUDED.leads_processed,
      updated_at = EXCLUDED.updated_at
    RETURNING `+weeklyColumns,
		uuid.NewString(), m.WeekKey, m.UserID, m.LeadsCount, m.DealsCount, m.MP, m.TonsCount,
		m.DealsInNegotiation, m.BuyersCount, m.SuppliersCount, m.LeadsProcessed, m.UpdatedAt,
	)
	return scanWeekly(row)
}

func scanWeekly(row pgx.Row) (metrics.WeeklyMetric, error) {
	var m metrics.WeeklyMetric
	err := row.Scan(&m.ID, &m.WeekKey, &m.UserID, &m.LeadsCount, &m.DealsCount, &m.MP, &m.TonsCount,
		&m.DealsInNegotiation, &m.BuyersCount, &m.SuppliersCount, &m.LeadsProcessed, &m.UpdatedAt)
	return m, err
}

const monthlyColumns = `id, month_key, user_id, revenue, net_profit, sk, mp, tons_count,
    deals_count, tons_per_deal, mp_per_deal, updated_at`

func (s *Store) ListMonthlyMetrics(ctx context.Context) ([]metrics.MonthlyMetric, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+monthlyColumns+" FROM monthly_metrics ORDER BY month_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []metrics.MonthlyMetric{}
	for rows.Next() {
		m, err := scanMonthly(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (s *Store) SaveMonthlyMetric(ctx context.Context, m metrics.MonthlyMetric) (metrics.MonthlyMetric, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO monthly_metrics (id, month_key, user_id, revenue, net_profit, sk, mp, tons_count,
      deals_count, tons_per_deal, mp_per_deal, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    ON CONFLICT (month_key) DO UPDATE SET
      user_id = EXCLUDED.user_id,
      revenue = EXCLUDED.revenue,
      net_profit = EXCLUDED.net_profit,
      sk = EXCLUDED.sk,
      mp = EXCLUDED.mp,
      tons_count = EXCLUDED.tons_count,
      deals_count = EXCLUDED.deals_count,
      tons_per_deal = EXCLUDED.tons_per_deal,
      mp_per_deal = EXCLUDED.mp_per_deal,
      updated_at = EXCLUDED.updated_at
    RETURNING `+monthlyColumns,
		uuid.NewString(), m.MonthKey, m.UserID, m.Revenue, m.NetProfit, m.SK, m.MP, m.TonsCount,
		m.DealsCount, m.TonsPerDeal, m.MPPerDeal, m.UpdatedAt,
	)
	return scanMonthly(row)
}

func scanMonthly(row pgx.Row) (metrics.MonthlyMetric, error) {
	var m metrics.MonthlyMetric
	err := row.Scan(&m.ID, &m.MonthKey, &m.UserID, &m.Revenue, &m.NetProfit, &m.SK, &m.MP, &m.TonsCount,
		&m.DealsCount, &m.TonsPerDeal, &m.MPPerDeal, &m.UpdatedAt)
	return m, err
}

func (s *Store) Reset(ctx context.Context) error {
	_, err := s.DB.Exec(ctx, "TRUNCATE engagement_ratings, weekly_metrics, monthly_metrics")
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}

func (s *Store) Close() error {
	s.DB.Close()
	return nil
}
