package camp

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/medcamp/medcamp/internal/platform/apperr"
	"github.com/medcamp/medcamp/internal/platform/db"
)

type repoPG struct {
	db db.Querier
}

func NewRepo(pool db.Querier) Repository {
	return &repoPG{db: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.db)
}

const campColumns = `camp_id, camp_name, camp_date, area, district, mandal,
	coordinator, sponsor, agenda, created_by, created_at`

func scanCamp(row pgx.Row) (*Camp, error) {
	var c Camp
	err := row.Scan(&c.ID, &c.CampName, &c.CampDate, &c.Area, &c.District, &c.Mandal,
		&c.Coordinator, &c.Sponsor, &c.Agenda, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) Create(ctx context.Context, c *Camp) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO camps (
			camp_name, camp_date, area, district, mandal,
			coordinator, sponsor, agenda, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING camp_id, created_at`,
		c.CampName, c.CampDate, c.Area, c.District, c.Mandal,
		c.Coordinator, c.Sponsor, c.Agenda, c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Camp, error) {
	c, err := scanCamp(r.conn(ctx).QueryRow(ctx, `SELECT `+campColumns+` FROM camps WHERE camp_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Camp not found")
	}
	return c, err
}

func (r *repoPG) Update(ctx context.Context, c *Camp) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE camps SET
			camp_name = $2, camp_date = $3, area = $4, district = $5,
			mandal = $6, coordinator = $7, sponsor = $8, agenda = $9
		WHERE camp_id = $1`,
		c.ID, c.CampName, c.CampDate, c.Area, c.District,
		c.Mandal, c.Coordinator, c.Sponsor, c.Agenda,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Camp not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*Camp, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+campColumns+` FROM camps ORDER BY camp_date DESC, camp_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Camp{}
	for rows.Next() {
		c, err := scanCamp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Stats runs the dashboard counts concurrently, one pooled connection each.
func (r *repoPG) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	counts := []struct {
		dest  *int64
		query string
	}{
		{&s.TotalCamps, `SELECT COUNT(*) FROM camps`},
		{&s.UpcomingCamps, `SELECT COUNT(*) FROM camps WHERE camp_date >= CURRENT_DATE`},
		{&s.TotalRegistrations, `SELECT COUNT(*) FROM registrations`},
		{&s.TodayRegistrations, `SELECT COUNT(*) FROM registrations WHERE created_at >= CURRENT_DATE`},
		{&s.TotalUsers, `SELECT COUNT(*) FROM users`},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		c := c
		g.Go(func() error {
			if err := r.db.QueryRow(gctx, c.query).Scan(c.dest); err != nil {
				return fmt.Errorf("%s: %w", c.query, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &s, nil
}
