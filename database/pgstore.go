package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"businessboard/backend/domain"
	"businessboard/backend/models"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var fkFields = map[string]string{
	fkBusinessType: "business_type_id",
	fkUser:         "user_id",
	fkState:        "state_id",
}

var refTables = map[domain.Ref]string{
	domain.RefBusinessType: "business_types",
	domain.RefUser:         "users",
	domain.RefState:        "states",
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is the Postgres implementation of domain.Store.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore { return &PGStore{pool: pool} }

var _ domain.Store = (*PGStore)(nil)

func (s *PGStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

const businessSelect = `
    SELECT b.id, b.name, b.business_type_id, b.user_id, b.state_id, b.value::text, b.created_at, b.updated_at,
           t.id, t.name, t.created_at, t.updated_at,
           u.id, u.name, u.email, u.created_at, u.updated_at,
           s.id, s.name, s.created_at, s.updated_at
    FROM businesses b
    JOIN business_types t ON t.id = b.business_type_id
    JOIN users u ON u.id = b.user_id
    JOIN states s ON s.id = b.state_id`

func scanBusiness(row pgx.Row) (models.Business, error) {
	var (
		b     models.Business
		value string
		t     models.BusinessType
		u     models.User
		st    models.State
	)
	err := row.Scan(&b.ID, &b.Name, &b.BusinessTypeID, &b.UserID, &b.StateID, &value, &b.CreatedAt, &b.UpdatedAt,
		&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt,
		&st.ID, &st.Name, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return models.Business{}, err
	}
	if b.Value, err = models.ParseMoney(value); err != nil {
		return models.Business{}, fmt.Errorf("business %d value %q: %w", b.ID, value, err)
	}
	b.BusinessType, b.User, b.State = &t, &u, &st
	return b, nil
}

func listBusinesses(ctx context.Context, q querier) ([]models.Business, error) {
	rows, err := q.Query(ctx, businessSelect+` ORDER BY b.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Business{}
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func listStates(ctx context.Context, q querier) ([]models.State, error) {
	rows, err := q.Query(ctx, `SELECT id, name, created_at, updated_at FROM states ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.State{}
	for rows.Next() {
		var st models.State
		if err := rows.Scan(&st.ID, &st.Name, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, st)
	}
	return list, rows.Err()
}

func listBusinessTypes(ctx context.Context, q querier) ([]models.BusinessType, error) {
	rows, err := q.Query(ctx, `SELECT id, name, created_at, updated_at FROM business_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.BusinessType{}
	for rows.Next() {
		var t models.BusinessType
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func listUsers(ctx context.Context, q querier) ([]models.User, error) {
	rows, err := q.Query(ctx, `SELECT id, name, email, created_at, updated_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Board reads the four lists inside one read-only repeatable-read
// transaction so they share a snapshot.
func (s *PGStore) Board(ctx context.Context) (models.Board, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return models.Board{}, err
	}
	defer tx.Rollback(ctx)

	var b models.Board
	if b.Businesses, err = listBusinesses(ctx, tx); err != nil {
		return models.Board{}, err
	}
	if b.States, err = listStates(ctx, tx); err != nil {
		return models.Board{}, err
	}
	if b.BusinessTypes, err = listBusinessTypes(ctx, tx); err != nil {
		return models.Board{}, err
	}
	if b.Users, err = listUsers(ctx, tx); err != nil {
		return models.Board{}, err
	}
	return b, tx.Commit(ctx)
}

func (s *PGStore) Businesses(ctx context.Context) ([]models.Business, error) {
	return listBusinesses(ctx, s.pool)
}

func (s *PGStore) Business(ctx context.Context, id int64) (models.Business, error) {
	b, err := scanBusiness(s.pool.QueryRow(ctx, businessSelect+` WHERE b.id=$1`, id))
	return b, translate(err)
}

func (s *PGStore) InsertBusiness(ctx context.Context, b models.Business) (models.Business, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `INSERT INTO businesses(name, business_type_id, user_id, state_id, value)
VALUES($1,$2,$3,$4,$5::numeric) RETURNING id`,
		b.Name, b.BusinessTypeID, b.UserID, b.StateID, b.Value.String()).Scan(&id)
	if err != nil {
		return models.Business{}, translate(err)
	}
	return s.Business(ctx, id)
}

func (s *PGStore) UpdateBusiness(ctx context.Context, id int64, p models.BusinessPatch) (models.Business, error) {
	if p.Empty() {
		return s.Business(ctx, id)
	}
	var (
		sets []string
		args []any
	)
	add := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}
	if p.Name != nil {
		add("name=$%d", *p.Name)
	}
	if p.BusinessTypeID != nil {
		add("business_type_id=$%d", *p.BusinessTypeID)
	}
	if p.UserID != nil {
		add("user_id=$%d", *p.UserID)
	}
	if p.StateID != nil {
		add("state_id=$%d", *p.StateID)
	}
	if p.Value != nil {
		add("value=$%d::numeric", p.Value.String())
	}
	sets = append(sets, "updated_at=now()")
	args = append(args, id)
	sql := fmt.Sprintf(`UPDATE businesses SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return models.Business{}, translate(err)
	}
	if tag.RowsAffected() == 0 {
		return models.Business{}, domain.ErrNotFound
	}
	return s.Business(ctx, id)
}

func (s *PGStore) DeleteBusiness(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM businesses WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PGStore) States(ctx context.Context) ([]models.State, error) {
	return listStates(ctx, s.pool)
}

func (s *PGStore) State(ctx context.Context, id int64) (models.State, error) {
	var st models.State
	err := s.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM states WHERE id=$1`, id).
		Scan(&st.ID, &st.Name, &st.CreatedAt, &st.UpdatedAt)
	return st, translate(err)
}

func (s *PGStore) InsertState(ctx context.Context, name string) (models.State, error) {
	var st models.State
	err := s.pool.QueryRow(ctx, `INSERT INTO states(name) VALUES($1) RETURNING id, name, created_at, updated_at`, name).
		Scan(&st.ID, &st.Name, &st.CreatedAt, &st.UpdatedAt)
	return st, translate(err)
}

func (s *PGStore) RenameState(ctx context.Context, id int64, name string) (models.State, error) {
	var st models.State
	err := s.pool.QueryRow(ctx, `UPDATE states SET name=$1, updated_at=now() WHERE id=$2 RETURNING id, name, created_at, updated_at`, name, id).
		Scan(&st.ID, &st.Name, &st.CreatedAt, &st.UpdatedAt)
	return st, translate(err)
}

// DeleteStateIfUnused issues a single conditional delete. A business inserted
// concurrently that commits first makes the RESTRICT foreign key fail the
// statement, which is reported as ErrInUse as well.
func (s *PGStore) DeleteStateIfUnused(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM states st WHERE st.id=$1
AND NOT EXISTS (SELECT 1 FROM businesses b WHERE b.state_id = st.id)`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
			return domain.ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM states WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInUse
}

func (s *PGStore) BusinessTypes(ctx context.Context) ([]models.BusinessType, error) {
	return listBusinessTypes(ctx, s.pool)
}

func (s *PGStore) InsertBusinessType(ctx context.Context, name string) (models.BusinessType, error) {
	var t models.BusinessType
	err := s.pool.QueryRow(ctx, `INSERT INTO business_types(name) VALUES($1) RETURNING id, name, created_at, updated_at`, name).
		Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	return t, translate(err)
}

func (s *PGStore) Users(ctx context.Context) ([]models.User, error) {
	return listUsers(ctx, s.pool)
}

func (s *PGStore) InsertUser(ctx context.Context, u models.User) (models.User, error) {
	out := models.User{PasswordHash: u.PasswordHash}
	err := s.pool.QueryRow(ctx, `INSERT INTO users(name, email, password_hash) VALUES($1,$2,$3)
RETURNING id, name, email, created_at, updated_at`, u.Name, u.Email, u.PasswordHash).
		Scan(&out.ID, &out.Name, &out.Email, &out.CreatedAt, &out.UpdatedAt)
	return out, translate(err)
}

func (s *PGStore) Exists(ctx context.Context, ref domain.Ref, id int64) (bool, error) {
	table, ok := refTables[ref]
	if !ok {
		return false, fmt.Errorf("unknown reference %d", ref)
	}
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

// translate maps driver errors onto the domain sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrDuplicate, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			if field, ok := fkFields[pgErr.ConstraintName]; ok {
				return &domain.MissingReferenceError{Field: field}
			}
		}
	}
	return err
}
