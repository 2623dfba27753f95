package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
)

type siteRepo struct {
	pool *pgxpool.Pool
}

func NewSiteRepository(pool *pgxpool.Pool) ports.SiteRepository {
	return &siteRepo{pool: pool}
}

const siteColumns = `s.id, s.github_id, s.owner_github_id, s.owner_login, s.name,
	s.default_branch, s.active, s.webhook_id, s.deploy_key_id, s.registered_by,
	s.created_at, s.updated_at`

func (r *siteRepo) Create(ctx context.Context, site *domain.Site) error {
	query := `
		INSERT INTO sites
			(id, github_id, owner_github_id, owner_login, name, default_branch,
			 active, webhook_id, deploy_key_id, registered_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err := r.pool.Exec(ctx, query,
		site.ID, site.GithubID, site.Owner.GithubID, site.Owner.Login,
		site.Name, site.DefaultBranch, site.Active,
		site.WebhookID, site.DeployKeyID, site.RegisteredBy,
		site.CreatedAt, site.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrSiteExists
		}
		return fmt.Errorf("create site: %w", err)
	}
	return nil
}

func (r *siteRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	query := fmt.Sprintf(`SELECT %s FROM sites s WHERE s.id = $1`, siteColumns)
	site, err := scanSite(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSiteNotFound
		}
		return nil, fmt.Errorf("get site by id: %w", err)
	}
	return site, nil
}

func (r *siteRepo) GetByGithubID(ctx context.Context, githubID int64) (*domain.Site, error) {
	query := fmt.Sprintf(`SELECT %s FROM sites s WHERE s.github_id = $1`, siteColumns)
	site, err := scanSite(r.pool.QueryRow(ctx, query, githubID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSiteNotFound
		}
		return nil, fmt.Errorf("get site by github id: %w", err)
	}
	return site, nil
}

func (r *siteRepo) Update(ctx context.Context, site *domain.Site) error {
	query := `
		UPDATE sites
		SET default_branch=$1, active=$2, webhook_id=$3, deploy_key_id=$4,
			registered_by=$5, updated_at=NOW()
		WHERE id=$6
	`
	result, err := r.pool.Exec(ctx, query,
		site.DefaultBranch, site.Active, site.WebhookID, site.DeployKeyID,
		site.RegisteredBy, site.ID,
	)
	if err != nil {
		return fmt.Errorf("update site: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrSiteNotFound
	}
	return nil
}

func (r *siteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrSiteNotFound
	}
	return nil
}

func (r *siteRepo) List(ctx context.Context, filter ports.SiteListFilter) ([]*domain.Site, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	joinClause := ""
	if filter.UserID != uuid.Nil {
		joinClause = "JOIN user_sites us ON us.site_id = s.id"
		conditions = append(conditions, fmt.Sprintf("us.user_id = $%d", argPos))
		args = append(args, filter.UserID)
		argPos++
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("s.active = $%d", argPos))
		args = append(args, *filter.Active)
		argPos++
	}

	whereClause := "1=1"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM sites s %s WHERE %s", joinClause, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sites: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM sites s
		%s
		WHERE %s
		ORDER BY s.created_at DESC
		LIMIT $%d OFFSET $%d
	`, siteColumns, joinClause, whereClause, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	var sites []*domain.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan site row: %w", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate site rows: %w", err)
	}

	return sites, total, nil
}

func (r *siteRepo) CreateEnvironment(ctx context.Context, env *domain.Environment) error {
	query := `
		INSERT INTO environments
			(id, site_id, name, strategy, branch, url, status, current_build_id,
			 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err := r.pool.Exec(ctx, query,
		env.ID, env.SiteID, env.Name, string(env.Strategy), env.Branch,
		env.URL, string(env.Status), env.CurrentBuildID,
		env.CreatedAt, env.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrEnvironmentExists
		}
		return fmt.Errorf("create environment: %w", err)
	}
	return nil
}

func (r *siteRepo) GetEnvironment(ctx context.Context, id uuid.UUID) (*domain.Environment, error) {
	query := `
		SELECT id, site_id, name, strategy, branch, url, status, current_build_id,
			   created_at, updated_at
		FROM environments WHERE id = $1
	`
	env, err := scanEnvironment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEnvironmentNotFound
		}
		return nil, fmt.Errorf("get environment: %w", err)
	}
	return env, nil
}

func (r *siteRepo) ListEnvironments(ctx context.Context, siteID uuid.UUID) ([]*domain.Environment, error) {
	query := `
		SELECT id, site_id, name, strategy, branch, url, status, current_build_id,
			   created_at, updated_at
		FROM environments WHERE site_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("list environments: %w", err)
	}
	defer rows.Close()

	var envs []*domain.Environment
	for rows.Next() {
		env, err := scanEnvironment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan environment row: %w", err)
		}
		envs = append(envs, env)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate environment rows: %w", err)
	}
	return envs, nil
}

func (r *siteRepo) UpdateEnvironment(ctx context.Context, env *domain.Environment) error {
	query := `
		UPDATE environments
		SET name=$1, strategy=$2, branch=$3, url=$4, status=$5,
			current_build_id=$6, updated_at=NOW()
		WHERE id=$7
	`
	result, err := r.pool.Exec(ctx, query,
		env.Name, string(env.Strategy), env.Branch, env.URL,
		string(env.Status), env.CurrentBuildID, env.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrEnvironmentExists
		}
		return fmt.Errorf("update environment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEnvironmentNotFound
	}
	return nil
}

func scanSite(row pgx.Row) (*domain.Site, error) {
	s := &domain.Site{}
	err := row.Scan(
		&s.ID, &s.GithubID, &s.Owner.GithubID, &s.Owner.Login, &s.Name,
		&s.DefaultBranch, &s.Active, &s.WebhookID, &s.DeployKeyID,
		&s.RegisteredBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanEnvironment(row pgx.Row) (*domain.Environment, error) {
	e := &domain.Environment{}
	var strategy, status string
	err := row.Scan(
		&e.ID, &e.SiteID, &e.Name, &strategy, &e.Branch, &e.URL, &status,
		&e.CurrentBuildID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Strategy = domain.DeployStrategy(strategy)
	e.Status = domain.EnvironmentStatus(status)
	return e, nil
}
