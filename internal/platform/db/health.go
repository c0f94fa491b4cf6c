package db

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// CoreTables lists the tables every deployment must have.
var CoreTables = []string{
	"roles", "users", "camps", "guardian_types", "marital_status",
	"consultation_reasons", "registrations", "registration_reasons", "doctor_exams",
}

// PoolStats is the JSON view of pgxpool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	EmptyAcquires   int64  `json:"empty_acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		EmptyAcquires:   stat.EmptyAcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

// HealthHandler pings the database and reports pool usage.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		stats := GetPoolStats(pool)
		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"pool":   stats,
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"pool":   stats,
		})
	}
}

// TableCount is the row count of one table, or the error that prevented counting it.
type TableCount struct {
	Table string
	Rows  int64
	Err   error
}

// CountRows counts the rows of each table. A missing table is reported in its
// TableCount rather than aborting the whole check.
func CountRows(ctx context.Context, q Querier, tables []string) []TableCount {
	out := make([]TableCount, 0, len(tables))
	for _, t := range tables {
		tc := TableCount{Table: t}
		// Table names come from CoreTables, never from user input.
		tc.Err = q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, t)).Scan(&tc.Rows)
		out = append(out, tc)
	}
	return out
}
