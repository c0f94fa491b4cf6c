package exam

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

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

const examSelect = `
	SELECT d.doctor_exam_id, d.registration_id, d.user_id, d.visual_findings,
		d.via_result, d.via_extends_endocervical, d.via_quadrant_count,
		d.via_quadrants, d.biopsy_taken, d.biopsy_site_notes, d.actions_taken,
		d.actions_other_text, d.created_at, u.username
	FROM doctor_exams d
	LEFT JOIN users u ON u.user_id = d.user_id`

func scanExam(row pgx.Row) (*Exam, error) {
	var (
		e                            Exam
		findings, quadrants, actions []string
		result                       string
		extends, count               *string
	)
	err := row.Scan(&e.ID, &e.RegistrationID, &e.UserID, &findings,
		&result, &extends, &count,
		&quadrants, &e.BiopsyTaken, &e.BiopsySiteNotes, &actions,
		&e.ActionsOtherText, &e.CreatedAt, &e.RecordedBy)
	if err != nil {
		return nil, err
	}
	e.VIAResult = VIAResult(result)
	e.VisualFindings = fromStrings[VisualFinding](findings)
	e.VIAQuadrants = fromStrings[Quadrant](quadrants)
	e.ActionsTaken = fromStrings[Action](actions)
	if extends != nil {
		v := YesNo(*extends)
		e.VIAExtendsEndocervical = &v
	}
	if count != nil {
		v := QuadrantCount(*count)
		e.VIAQuadrantCount = &v
	}
	return &e, nil
}

func (r *repoPG) Create(ctx context.Context, e *Exam) error {
	var extends, count *string
	if e.VIAExtendsEndocervical != nil {
		s := string(*e.VIAExtendsEndocervical)
		extends = &s
	}
	if e.VIAQuadrantCount != nil {
		s := string(*e.VIAQuadrantCount)
		count = &s
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctor_exams (
			registration_id, user_id, visual_findings, via_result,
			via_extends_endocervical, via_quadrant_count, via_quadrants,
			biopsy_taken, biopsy_site_notes, actions_taken, actions_other_text
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING doctor_exam_id, created_at`,
		e.RegistrationID, e.UserID, toStrings(e.VisualFindings), string(e.VIAResult),
		extends, count, toStrings(e.VIAQuadrants),
		e.BiopsyTaken, e.BiopsySiteNotes, toStrings(e.ActionsTaken), e.ActionsOtherText,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Exam, error) {
	e, err := scanExam(r.conn(ctx).QueryRow(ctx, examSelect+` WHERE d.doctor_exam_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Not found")
	}
	return e, err
}

func (r *repoPG) ListByRegistration(ctx context.Context, registrationID int64) ([]*Exam, error) {
	rows, err := r.conn(ctx).Query(ctx, examSelect+`
		WHERE d.registration_id = $1
		ORDER BY d.created_at DESC, d.doctor_exam_id DESC`, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Exam{}
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
