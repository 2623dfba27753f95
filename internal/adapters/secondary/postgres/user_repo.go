package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) ports.UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `u.id, u.github_id, u.login, u.name, u.email, u.avatar_url,
	u.access_token, u.created_at, u.updated_at`

func (r *userRepo) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users
			(id, github_id, login, name, email, avatar_url, access_token,
			 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (github_id) DO UPDATE
		SET login=EXCLUDED.login, name=EXCLUDED.name, email=EXCLUDED.email,
			avatar_url=EXCLUDED.avatar_url, access_token=EXCLUDED.access_token,
			updated_at=NOW()
		RETURNING id, github_id, login, name, email, avatar_url, access_token,
			created_at, updated_at
	`
	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query,
		user.ID, user.GithubID, user.Login, user.Name, user.Email,
		user.AvatarURL, user.AccessToken, user.CreatedAt, user.UpdatedAt,
	).Scan(
		&u.ID, &u.GithubID, &u.Login, &u.Name, &u.Email, &u.AvatarURL,
		&u.AccessToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.id = $1`, userColumns)
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *userRepo) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE u.access_token = $1`, userColumns)
	user, err := scanUser(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by token: %w", err)
	}
	return user, nil
}

func (r *userRepo) ReplaceSiteLinks(ctx context.Context, userID uuid.UUID, repoGithubIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin link tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_sites WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear site links: %w", err)
	}
	if len(repoGithubIDs) > 0 {
		query := `
			INSERT INTO user_sites (user_id, site_id)
			SELECT $1, s.id FROM sites s WHERE s.github_id = ANY($2)
		`
		if _, err := tx.Exec(ctx, query, userID, repoGithubIDs); err != nil {
			return fmt.Errorf("insert site links: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit link tx: %w", err)
	}
	return nil
}

func (r *userRepo) HasSiteAccess(ctx context.Context, userID uuid.UUID, siteID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM user_sites WHERE user_id = $1 AND site_id = $2)`
	if err := r.pool.QueryRow(ctx, query, userID, siteID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check site access: %w", err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID, &u.GithubID, &u.Login, &u.Name, &u.Email, &u.AvatarURL,
		&u.AccessToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}
