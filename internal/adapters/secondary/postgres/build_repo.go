package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
)

type buildRepo struct {
	pool *pgxpool.Pool
}

func NewBuildRepository(pool *pgxpool.Pool) ports.BuildRepository {
	return &buildRepo{pool: pool}
}

const buildColumns = `b.id, b.site_id, b.environment_id, b.branch, b.tag,
	b.git_hash, b.path, b.status, b.detail, b.created_at, b.started_at, b.finished_at`

func (r *buildRepo) Create(ctx context.Context, build *domain.Build) error {
	query := `
		INSERT INTO builds
			(id, site_id, environment_id, branch, tag, git_hash, path, status,
			 detail, created_at, started_at, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err := r.pool.Exec(ctx, query,
		build.ID, build.SiteID, build.EnvironmentID, build.Branch, build.Tag,
		build.GitHash, build.Path, string(build.Status), build.Detail,
		build.CreatedAt, build.StartedAt, build.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("create build: %w", err)
	}
	return nil
}

func (r *buildRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	query := fmt.Sprintf(`SELECT %s FROM builds b WHERE b.id = $1`, buildColumns)
	build, err := scanBuild(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBuildNotFound
		}
		return nil, fmt.Errorf("get build by id: %w", err)
	}
	return build, nil
}

func (r *buildRepo) Update(ctx context.Context, build *domain.Build) error {
	query := `
		UPDATE builds
		SET status=$1, detail=$2, path=$3, started_at=$4, finished_at=$5
		WHERE id=$6
	`
	result, err := r.pool.Exec(ctx, query,
		string(build.Status), build.Detail, build.Path,
		build.StartedAt, build.FinishedAt, build.ID,
	)
	if err != nil {
		return fmt.Errorf("update build: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrBuildNotFound
	}
	return nil
}

func (r *buildRepo) List(ctx context.Context, filter ports.BuildListFilter) ([]*domain.Build, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	joinClause := ""
	if filter.UserID != uuid.Nil {
		joinClause = "JOIN user_sites us ON us.site_id = b.site_id"
		conditions = append(conditions, fmt.Sprintf("us.user_id = $%d", argPos))
		args = append(args, filter.UserID)
		argPos++
	}
	if filter.SiteID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("b.site_id = $%d", argPos))
		args = append(args, filter.SiteID)
		argPos++
	}
	if filter.EnvironmentID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("b.environment_id = $%d", argPos))
		args = append(args, filter.EnvironmentID)
		argPos++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", argPos))
		args = append(args, string(filter.Status))
		argPos++
	}

	whereClause := "1=1"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM builds b %s WHERE %s", joinClause, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count builds: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM builds b
		%s
		WHERE %s
		ORDER BY b.created_at DESC
		LIMIT $%d OFFSET $%d
	`, buildColumns, joinClause, whereClause, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	var builds []*domain.Build
	for rows.Next() {
		build, err := scanBuild(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan build row: %w", err)
		}
		builds = append(builds, build)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate build rows: %w", err)
	}

	return builds, total, nil
}

func scanBuild(row pgx.Row) (*domain.Build, error) {
	b := &domain.Build{}
	var status string
	err := row.Scan(
		&b.ID, &b.SiteID, &b.EnvironmentID, &b.Branch, &b.Tag,
		&b.GitHash, &b.Path, &status, &b.Detail,
		&b.CreatedAt, &b.StartedAt, &b.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BuildStatus(status)
	return b, nil
}
