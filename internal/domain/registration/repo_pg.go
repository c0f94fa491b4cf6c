package registration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/medcamp/medcamp/internal/platform/apperr"
	"github.com/medcamp/medcamp/internal/platform/db"
)

type repoPG struct {
	db db.Beginner
}

// NewRepo returns the Postgres repository. pool is normally a *pgxpool.Pool.
func NewRepo(pool db.Beginner) Repository {
	return &repoPG{db: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.db)
}

const insertRegistration = `
	INSERT INTO registrations (
		camp_id, registration_number, first_name, middle_name, last_name,
		guardian_name, guardian_type_id, age, mobile, aadhar, email,
		last_period_date, marital_status_id, marriage_date, children_count,
		abortion_count, highest_education, employment, address, remarks,
		vaccination_awareness, previously_screened
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10, $11,
		$12, $13, $14, $15,
		$16, $17, $18, $19, $20,
		$21, $22
	) RETURNING registration_id`

// The reason set goes in as one statement regardless of its size.
const insertReasons = `
	INSERT INTO registration_reasons (registration_id, reason_id)
	SELECT $1, unnest($2::int[])`

func (r *repoPG) Create(ctx context.Context, in *Intake) (*Created, error) {
	var id int64
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertRegistration,
			in.CampID, in.RegistrationNumber, in.FirstName, in.MiddleName, in.LastName,
			in.GuardianName, in.GuardianTypeID, in.Age, in.Mobile, in.Aadhar, in.Email,
			in.LastPeriodDate, in.MaritalStatusID, in.MarriageDate, in.ChildrenCount,
			in.AbortionCount, in.HighestEducation, in.Employment, in.Address, in.Remarks,
			flag(in.VaccinationAwareness), flag(in.PreviouslyScreened),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert registration: %w", err)
		}

		if len(in.ConsultationReasons) > 0 {
			if _, err := tx.Exec(ctx, insertReasons, id, in.ConsultationReasons); err != nil {
				return fmt.Errorf("insert consultation reasons: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The OPD number comes from the insert trigger, so read it back from the
	// committed row.
	out := &Created{RegistrationID: id}
	err = r.conn(ctx).QueryRow(ctx,
		`SELECT opd_number, registration_number FROM registrations WHERE registration_id = $1`, id,
	).Scan(&out.OPDNumber, &out.RegistrationNumber)
	if err != nil {
		return nil, fmt.Errorf("read back registration %d: %w", id, err)
	}
	return out, nil
}

func (r *repoPG) Update(ctx context.Context, id int64, in *Intake) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE registrations SET
				registration_number = $2, first_name = $3, middle_name = $4, last_name = $5,
				guardian_type_id = $6, guardian_name = $7, age = $8, mobile = $9, aadhar = $10,
				email = $11, last_period_date = $12, marital_status_id = $13, marriage_date = $14,
				children_count = $15, abortion_count = $16, highest_education = $17,
				employment = $18, address = $19, remarks = $20,
				vaccination_awareness = $21, previously_screened = $22, updated_at = NOW()
			WHERE registration_id = $1`,
			id, in.RegistrationNumber, in.FirstName, in.MiddleName, in.LastName,
			in.GuardianTypeID, in.GuardianName, in.Age, in.Mobile, in.Aadhar,
			in.Email, in.LastPeriodDate, in.MaritalStatusID, in.MarriageDate,
			in.ChildrenCount, in.AbortionCount, in.HighestEducation,
			in.Employment, in.Address, in.Remarks,
			flag(in.VaccinationAwareness), flag(in.PreviouslyScreened),
		)
		if err != nil {
			return fmt.Errorf("update registration %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Registration not found")
		}
		return nil
	})
}

const recordColumns = `r.registration_id, r.camp_id, r.opd_number, r.registration_number,
	r.first_name, r.middle_name, r.last_name, r.guardian_type_id, r.guardian_name,
	r.age, r.mobile, r.aadhar, r.email, r.last_period_date, r.marital_status_id,
	r.marriage_date, r.children_count, r.abortion_count, r.highest_education,
	r.employment, r.address, r.remarks, r.vaccination_awareness, r.previously_screened,
	r.created_at, r.updated_at`

func recordDest(rec *Record) []any {
	return []any{
		&rec.ID, &rec.CampID, &rec.OPDNumber, &rec.RegistrationNumber,
		&rec.FirstName, &rec.MiddleName, &rec.LastName, &rec.GuardianTypeID, &rec.GuardianName,
		&rec.Age, &rec.Mobile, &rec.Aadhar, &rec.Email, &rec.LastPeriodDate, &rec.MaritalStatusID,
		&rec.MarriageDate, &rec.ChildrenCount, &rec.AbortionCount, &rec.HighestEducation,
		&rec.Employment, &rec.Address, &rec.Remarks, &rec.VaccinationAwareness, &rec.PreviouslyScreened,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
}

// Reasons are folded into one comma-joined column and split again below. A
// reason name containing a comma would come back as two entries.
func (r *repoPG) GetByID(ctx context.Context, id int64) (*Registration, error) {
	var reg Registration
	var reasons string
	dest := append(recordDest(&reg.Record), &reasons)
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT `+recordColumns+`,
			COALESCE(string_agg(rr.reason_id::text, ',' ORDER BY rr.reason_id), '')
		FROM registrations r
		LEFT JOIN registration_reasons rr ON r.registration_id = rr.registration_id
		WHERE r.registration_id = $1
		GROUP BY r.registration_id`, id).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Registration not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get registration %d: %w", id, err)
	}

	reg.ConsultationReasons, err = splitInts(reasons)
	if err != nil {
		return nil, fmt.Errorf("registration %d reasons: %w", id, err)
	}
	return &reg, nil
}

func (r *repoPG) ListByCamp(ctx context.Context, campID int64) ([]*CampRegistration, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recordColumns+`, gt.type_name, ms.status_name,
			COALESCE(string_agg(cr.reason_name, ',' ORDER BY cr.reason_id), '')
		FROM registrations r
		JOIN guardian_types gt ON r.guardian_type_id = gt.type_id
		LEFT JOIN marital_status ms ON r.marital_status_id = ms.status_id
		LEFT JOIN registration_reasons rr ON r.registration_id = rr.registration_id
		LEFT JOIN consultation_reasons cr ON rr.reason_id = cr.reason_id
		WHERE r.camp_id = $1
		GROUP BY r.registration_id, gt.type_name, ms.status_name
		ORDER BY r.registration_id DESC`, campID)
	if err != nil {
		return nil, fmt.Errorf("list camp %d registrations: %w", campID, err)
	}
	defer rows.Close()

	out := []*CampRegistration{}
	for rows.Next() {
		var reg CampRegistration
		var reasons string
		dest := append(recordDest(&reg.Record), &reg.GuardianType, &reg.MaritalStatus, &reasons)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		reg.ConsultationReasons = splitNames(reasons)
		out = append(out, &reg)
	}
	return out, rows.Err()
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Summary, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT r.registration_id, r.camp_id, c.camp_name, r.opd_number, r.registration_number,
			r.first_name, r.last_name, r.guardian_name, r.age, r.mobile, r.created_at
		FROM registrations r
		JOIN camps c ON c.camp_id = r.camp_id
		ORDER BY r.opd_number DESC, r.registration_id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.CampID, &s.CampName, &s.OPDNumber, &s.RegistrationNumber,
			&s.FirstName, &s.LastName, &s.GuardianName, &s.Age, &s.Mobile, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &s)
	}
	return out, total, rows.Err()
}

func (r *repoPG) Lookups(ctx context.Context) (*Lookups, error) {
	var l Lookups
	var err error
	if l.GuardianTypes, err = r.lookup(ctx, `SELECT type_id, type_name FROM guardian_types ORDER BY type_id`); err != nil {
		return nil, fmt.Errorf("guardian types: %w", err)
	}
	if l.MaritalStatuses, err = r.lookup(ctx, `SELECT status_id, status_name FROM marital_status ORDER BY status_id`); err != nil {
		return nil, fmt.Errorf("marital statuses: %w", err)
	}
	if l.ConsultationReasons, err = r.lookup(ctx, `SELECT reason_id, reason_name FROM consultation_reasons ORDER BY reason_id`); err != nil {
		return nil, fmt.Errorf("consultation reasons: %w", err)
	}
	return &l, nil
}

func (r *repoPG) lookup(ctx context.Context, query string) ([]Lookup, error) {
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Lookup{}
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func splitInts(s string) ([]int, error) {
	out := []int{}
	if s == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func splitNames(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
