package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/user"
)

const pqUniqueViolation = "23505"

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// profileJSON stores user.TeacherProfile as a JSONB column.
type profileJSON struct {
	profile *user.TeacherProfile
}

func (p profileJSON) Value() (driver.Value, error) {
	if p.profile == nil {
		return nil, nil
	}
	return json.Marshal(p.profile)
}

func (p *profileJSON) Scan(src interface{}) error {
	if src == nil {
		p.profile = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return errors.Errorf("unsupported teacher profile type %T", src)
	}
	profile := new(user.TeacherProfile)
	if err := json.Unmarshal(data, profile); err != nil {
		return errors.Wrap(err, "scanning teacher profile")
	}
	p.profile = profile
	return nil
}

type userRow struct {
	ID             string       `db:"id"`
	Name           string       `db:"name"`
	Email          string       `db:"email"`
	PasswordHash   []byte       `db:"password_hash"`
	Role           string       `db:"role"`
	TeacherProfile profileJSON  `db:"teacher_profile"`
	AdminApproved  bool         `db:"admin_approved"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
	LastLogin      sql.NullTime `db:"last_login"`
}

func (repo userRepository) row(usr user.User) userRow {
	row := userRow{
		ID:             usr.ID,
		Name:           usr.Name,
		Email:          usr.Email,
		PasswordHash:   usr.PasswordHash,
		Role:           usr.Role.String(),
		TeacherProfile: profileJSON{profile: usr.TeacherProfile},
		AdminApproved:  usr.AdminApproved,
		CreatedAt:      usr.CreatedAt.UTC(),
		UpdatedAt:      usr.UpdatedAt.UTC(),
	}
	if !usr.LastLogin.IsZero() {
		row.LastLogin = sql.NullTime{Time: usr.LastLogin.UTC(), Valid: true}
	}
	return row
}

func (repo userRepository) unrow(row userRow) user.User {
	usr := user.User{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		PasswordHash:   row.PasswordHash,
		Role:           user.Role(row.Role),
		TeacherProfile: row.TeacherProfile.profile,
		AdminApproved:  row.AdminApproved,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time
	}
	return usr
}

func (repo userRepository) unrowSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unrow(row))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapUniqueErr maps a psql unique violation to user.ErrEmailExists
func (repo userRepository) trapUniqueErr(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return user.ErrEmailExists
	}
	return errors.Wrap(err, msg)
}

const userColumns = `id, name, email, password_hash, role, teacher_profile, admin_approved, created_at, updated_at, last_login`

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = ? AND id NOT IN (?))`
		var err error
		if query, args, err = sqlx.In(query, email, ids); err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :name, :email, :password_hash, :role, :teacher_profile, :admin_approved, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, query, repo.row(usr)); err != nil {
		return user.User{}, repo.trapUniqueErr(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.unrowSlice(rows), nil
}

func (repo userRepository) QueryUsersByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, query, role.String()); err != nil {
		return nil, errors.Wrap(err, "querying users by role")
	}
	return repo.unrowSlice(rows), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := repo.db.GetContext(ctx, &row, query, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by email")
	}
	return repo.unrow(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
		UPDATE users
		SET name = :name, email = :email, password_hash = :password_hash, role = :role,
		    teacher_profile = :teacher_profile, admin_approved = :admin_approved,
		    updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, repo.row(usr))
	if err != nil {
		return user.User{}, repo.trapUniqueErr(err, "updating user")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) DeleteUserByID(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return user.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return user.ErrNotFound
	}
	return nil
}
