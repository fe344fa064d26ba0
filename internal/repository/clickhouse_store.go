package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
	pkgch "GridCast/pkg/clickhouse"
	applogger "GridCast/pkg/logger"
)

// ClickHouseStore implements MarketDataStore and PriceSink backed by ClickHouse.
type ClickHouseStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewClickHouseStore(ch *pkgch.Client, table string) *ClickHouseStore {
	return &ClickHouseStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *ClickHouseStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *ClickHouseStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStore) Store(ctx context.Context, r *models.PriceRecord) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, market, region, price_type, price, forecasted_at, horizon_hours) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		r.Timestamp,
		r.Market,
		r.Region,
		r.PriceType,
		r.Price,
		forecastedAtOrZero(r),
		r.HorizonHours,
	)
	return err
}

func (s *ClickHouseStore) StoreBatch(ctx context.Context, records []*models.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}
	// Chunked multi-row VALUES inserts to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(records); start += chunkSize {
		end := start + chunkSize
		if end > len(records) {
			end = len(records)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, r := range records[start:end] {
			if r == nil || r.Market == "" || r.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.Timestamp,
				r.Market,
				r.Region,
				r.PriceType,
				r.Price,
				forecastedAtOrZero(r),
				r.HorizonHours,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, market, region, price_type, price, forecasted_at, horizon_hours) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStore) GetPrices(ctx context.Context, market string, pt domrepo.PriceType, start, end time.Time) ([]models.PriceRecord, error) {
	began := time.Now()
	q := fmt.Sprintf(`
        SELECT ts, market, region, price_type, price, forecasted_at, horizon_hours
        FROM %s
        WHERE market = ? AND price_type = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, market, string(pt), start, end)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_prices query error",
				applogger.String("market", market),
				applogger.String("price_type", string(pt)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get prices: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceRecord, 0, 1024)
	for rows.Next() {
		var r models.PriceRecord
		var forecastedAt time.Time
		if err := rows.Scan(&r.Timestamp, &r.Market, &r.Region, &r.PriceType, &r.Price, &forecastedAt, &r.HorizonHours); err != nil {
			return nil, fmt.Errorf("scan price record: %w", err)
		}
		if !forecastedAt.IsZero() {
			fa := forecastedAt
			r.ForecastedAt = &fa
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_prices ok",
			applogger.String("market", market),
			applogger.String("price_type", string(pt)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(began)),
		)
	}
	return out, nil
}

func (s *ClickHouseStore) GetConsumptionReadings(ctx context.Context, siteID, metric string, start, end time.Time) ([]models.ConsumptionReading, error) {
	began := time.Now()
	const q = `
        SELECT r.entity_id, r.ts, r.value, r.metric
        FROM gridcast.consumption_readings AS r
        INNER JOIN gridcast.meters AS m ON m.meter_id = r.entity_id
        WHERE m.site_id = ? AND r.metric = ? AND r.ts >= ? AND r.ts <= ?
        ORDER BY r.ts ASC
    `
	rows, err := s.db.QueryContext(ctx, q, siteID, metric, start, end)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_readings query error",
				applogger.String("site_id", siteID),
				applogger.String("metric", metric),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get consumption readings: %w", err)
	}
	defer rows.Close()

	out := make([]models.ConsumptionReading, 0, 1024)
	for rows.Next() {
		var r models.ConsumptionReading
		if err := rows.Scan(&r.EntityID, &r.Timestamp, &r.Value, &r.Metric); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_readings ok",
			applogger.String("site_id", siteID),
			applogger.String("metric", metric),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(began)),
		)
	}
	return out, nil
}

func (s *ClickHouseStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStore) Close() error {
	return nil // Managed by pkg
}

func forecastedAtOrZero(r *models.PriceRecord) time.Time {
	if r.ForecastedAt != nil {
		return *r.ForecastedAt
	}
	return time.Time{}
}

var (
	_ domrepo.MarketDataStore = (*ClickHouseStore)(nil)
	_ domrepo.PriceSink       = (*ClickHouseStore)(nil)
)
