// Package builder executes build jobs: clone the repository at the pushed
// commit, pick the output directory from .franklin.yml and publish it to the
// static server path.
package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	log "github.com/sirupsen/logrus"

	"franklin-api/internal/core/domain"
	ports "franklin-api/internal/core/ports/output"
)

type Runner struct {
	queue        chan domain.BuildJob
	reporter     ports.BuildReporter
	workers      int
	cloneTimeout time.Duration
	workdir      string
	wg           sync.WaitGroup
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithCloneTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.cloneTimeout = d
		}
	}
}

// WithWorkdir sets the scratch directory used for clones.
func WithWorkdir(dir string) Option {
	return func(r *Runner) { r.workdir = dir }
}

func New(queueSize int, opts ...Option) *Runner {
	if queueSize <= 0 {
		queueSize = 64
	}
	r := &Runner{
		queue:        make(chan domain.BuildJob, queueSize),
		workers:      2,
		cloneTimeout: 5 * time.Minute,
		workdir:      os.TempDir(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enqueue implements ports.BuildQueue.
func (r *Runner) Enqueue(ctx context.Context, job domain.BuildJob) error {
	select {
	case r.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return domain.ErrQueueFull
	}
}

// Start launches the worker pool reporting progress to reporter. Workers
// exit when ctx is cancelled or the queue is closed.
func (r *Runner) Start(ctx context.Context, reporter ports.BuildReporter) {
	r.reporter = reporter
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go func(worker int) {
			defer r.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-r.queue:
					if !ok {
						return
					}
					r.process(ctx, worker, job)
				}
			}
		}(i)
	}
}

// Stop waits for in-flight builds to finish.
func (r *Runner) Stop() {
	close(r.queue)
	r.wg.Wait()
}

func (r *Runner) process(ctx context.Context, worker int, job domain.BuildJob) {
	logger := log.WithFields(log.Fields{
		"worker": worker,
		"build":  job.BuildID,
		"hash":   job.GitHash,
	})
	logger.Info("build started")

	if err := r.reporter.ReportStatus(ctx, job.BuildID, domain.BuildStatusBuilding, ""); err != nil {
		logger.WithError(err).Error("report building status")
		return
	}

	if err := r.execute(ctx, job); err != nil {
		status := domain.BuildStatusFailed
		if ctx.Err() != nil {
			status = domain.BuildStatusCancelled
		}
		logger.WithError(err).Warn("build failed")
		if rerr := r.reporter.ReportStatus(context.WithoutCancel(ctx), job.BuildID, status, err.Error()); rerr != nil {
			logger.WithError(rerr).Error("report failed status")
		}
		return
	}

	logger.WithField("path", job.PublishPath).Info("build published")
	if err := r.reporter.ReportStatus(ctx, job.BuildID, domain.BuildStatusSucceeded, ""); err != nil {
		logger.WithError(err).Error("report succeeded status")
	}
}

func (r *Runner) execute(ctx context.Context, job domain.BuildJob) error {
	ctx, cancel := context.WithTimeout(ctx, r.cloneTimeout)
	defer cancel()

	dir, err := os.MkdirTemp(r.workdir, "franklin-build-")
	if err != nil {
		return fmt.Errorf("create build dir: %w", err)
	}
	defer os.RemoveAll(dir)

	cloneOpts := &git.CloneOptions{URL: job.CloneURL}
	if job.Ref != "" {
		// Tag builds have no commit hash; cloning the ref itself puts the
		// worktree at the tagged revision.
		cloneOpts.ReferenceName = plumbing.ReferenceName(job.Ref)
		cloneOpts.SingleBranch = true
	}
	if job.Token != "" {
		cloneOpts.Auth = &githttp.BasicAuth{
			Username: "x-access-token",
			Password: job.Token,
		}
	}
	repo, err := git.PlainCloneContext(ctx, dir, false, cloneOpts)
	if err != nil {
		return fmt.Errorf("clone %s: %w", job.CloneURL, err)
	}

	if job.GitHash != "" {
		wt, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("open worktree: %w", err)
		}
		if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(job.GitHash)}); err != nil {
			return fmt.Errorf("checkout %s: %w", job.GitHash, err)
		}
	}

	cfg, err := LoadSiteConfig(dir)
	if err != nil {
		return err
	}

	out, err := outputDir(dir, cfg)
	if err != nil {
		return err
	}
	return publish(out, job.PublishPath)
}

// outputDir resolves the configured output directory and confirms it stays
// inside the checkout.
func outputDir(checkout string, cfg *domain.SiteConfig) (string, error) {
	out := filepath.Join(checkout, filepath.Clean("/"+cfg.OutputDir))
	if !strings.HasPrefix(out, checkout) {
		return "", fmt.Errorf("output_dir %q escapes the repository", cfg.OutputDir)
	}
	info, err := os.Stat(out)
	if err != nil {
		return "", fmt.Errorf("output_dir %q: %w", cfg.OutputDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output_dir %q is not a directory", cfg.OutputDir)
	}
	return out, nil
}

// publish stages the output next to the target and swaps it in with a rename,
// so a serving site never sees a half-written tree.
func publish(src, target string) error {
	if target == "" {
		return fmt.Errorf("publish path is empty")
	}
	staging := target + ".staging"
	old := target + ".old"

	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clear staging dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create publish parent: %w", err)
	}
	if err := copyTree(src, staging); err != nil {
		return fmt.Errorf("stage site: %w", err)
	}

	if _, err := os.Stat(target); err == nil {
		if err := os.RemoveAll(old); err != nil {
			return fmt.Errorf("clear previous deploy: %w", err)
		}
		if err := os.Rename(target, old); err != nil {
			return fmt.Errorf("retire previous deploy: %w", err)
		}
	}
	if err := os.Rename(staging, target); err != nil {
		return fmt.Errorf("activate deploy: %w", err)
	}
	os.RemoveAll(old)
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == ".git" || strings.HasPrefix(rel, ".git"+string(filepath.Separator)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		targetPath := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(targetPath, 0o755)
		}
		return copyFile(path, targetPath)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
