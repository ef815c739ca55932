package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/introly/introly-backend/internal/model"
)

// PostgresQuestionStore persists questions in the questions table.
// applicable_for is stored as a JSONB array of canonical gender tags.
type PostgresQuestionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresQuestionStore creates a new PostgresQuestionStore.
func NewPostgresQuestionStore(pool *pgxpool.Pool) *PostgresQuestionStore {
	return &PostgresQuestionStore{pool: pool}
}

const questionColumns = `id, tenant_id, question_text, category, applicable_for, display_order, created_at, updated_at`

func scanQuestion(row pgx.Row, q *model.Question) error {
	var genders []byte
	if err := row.Scan(&q.ID, &q.TenantID, &q.Text, &q.Category, &genders, &q.DisplayOrder, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return err
	}
	if len(genders) > 0 {
		if err := json.Unmarshal(genders, &q.ApplicableFor); err != nil {
			q.ApplicableFor = nil
		}
	}
	return nil
}

func (s *PostgresQuestionStore) List(ctx context.Context, tenantID string) ([]model.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions WHERE tenant_id = $1
		 ORDER BY display_order, id`, tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *PostgresQuestionStore) GetByID(ctx context.Context, tenantID string, id int64) (*model.Question, error) {
	var q model.Question
	err := scanQuestion(s.pool.QueryRow(ctx,
		`SELECT `+questionColumns+`
		 FROM questions WHERE tenant_id = $1 AND id = $2`, tenantID, id,
	), &q)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *PostgresQuestionStore) Create(ctx context.Context, q *model.Question) error {
	genders, err := json.Marshal(q.ApplicableFor)
	if err != nil {
		return err
	}

	// display_order is assigned inside the insert so concurrent creates
	// within a tenant cannot both read the same max.
	return s.pool.QueryRow(ctx,
		`INSERT INTO questions (tenant_id, question_text, category, applicable_for, display_order)
		 VALUES ($1, $2, $3, $4,
		         (SELECT COALESCE(MAX(display_order), 0) + 1 FROM questions WHERE tenant_id = $1))
		 RETURNING id, display_order, created_at, updated_at`,
		q.TenantID, q.Text, q.Category, genders,
	).Scan(&q.ID, &q.DisplayOrder, &q.CreatedAt, &q.UpdatedAt)
}

func (s *PostgresQuestionStore) Update(ctx context.Context, q *model.Question) error {
	genders, err := json.Marshal(q.ApplicableFor)
	if err != nil {
		return err
	}

	err = s.pool.QueryRow(ctx,
		`UPDATE questions
		 SET question_text = $1, category = $2, applicable_for = $3, updated_at = NOW()
		 WHERE tenant_id = $4 AND id = $5
		 RETURNING display_order, created_at, updated_at`,
		q.Text, q.Category, genders, q.TenantID, q.ID,
	).Scan(&q.DisplayOrder, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrQuestionNotFound
	}
	return err
}

func (s *PostgresQuestionStore) Delete(ctx context.Context, tenantID string, id int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM questions WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (s *PostgresQuestionStore) Reorder(ctx context.Context, tenantID string, orderedIDs []int64) ([]model.Question, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the tenant's rows so two reorders cannot interleave half-applied
	// numberings.
	rows, err := tx.Query(ctx,
		`SELECT id FROM questions WHERE tenant_id = $1 ORDER BY display_order, id FOR UPDATE`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}

	var current []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		current = append(current, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	final := mergeSequence(current, orderedIDs)
	ids := make([]int64, len(final))
	orders := make([]int, len(final))
	for pos, id := range final {
		ids[pos] = id
		orders[pos] = pos + 1
	}

	if len(ids) > 0 {
		_, err = tx.Exec(ctx,
			`UPDATE questions AS q
			 SET display_order = t.ord, updated_at = NOW()
			 FROM (
				SELECT u.id, u.ord
				FROM UNNEST($2::bigint[], $3::int[]) AS u (id, ord)
			 ) AS t
			 WHERE q.tenant_id = $1 AND q.id = t.id AND q.display_order <> t.ord`,
			tenantID, ids, orders,
		)
		if err != nil {
			return nil, err
		}
	}

	listRows, err := tx.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions WHERE tenant_id = $1
		 ORDER BY display_order, id`, tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer listRows.Close()

	var questions []model.Question
	for listRows.Next() {
		var q model.Question
		if err := scanQuestion(listRows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := listRows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return questions, nil
}

// PostgresAdminStore persists back-office users in the admins table.
type PostgresAdminStore struct {
	pool *pgxpool.Pool
}

// NewPostgresAdminStore creates a new PostgresAdminStore.
func NewPostgresAdminStore(pool *pgxpool.Pool) *PostgresAdminStore {
	return &PostgresAdminStore{pool: pool}
}

func (s *PostgresAdminStore) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var a model.Admin
	err := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, name, email, password_hash, created_at
		 FROM admins WHERE LOWER(email) = LOWER($1)`, email,
	).Scan(&a.ID, &a.TenantID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresAdminStore) Create(ctx context.Context, a *model.Admin) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO admins (tenant_id, name, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		a.TenantID, a.Name, a.Email, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt)
}
