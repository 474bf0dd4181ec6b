package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/lsx/internal/formatter"
	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/services"
	"github.com/desertthunder/lsx/internal/shared"
)

// BackupOpts contains configuration for list backups.
type BackupOpts struct {
	Format     formatter.Format // Backup format (default: toml)
	Directory  string           // Output directory; files are {kind}-backup.{ext}
	NumWorkers int              // Concurrent fetches (default: 2, one per media kind)
	RateLimit  float64          // Job dispatch rate per second (default: 2)
}

// BackupResult is the outcome for one media kind.
type BackupResult struct {
	Service models.ServiceName
	Kind    models.MediaKind
	Path    string
	Entries int
	Backup  *formatter.Backup
	Err     error
}

// BackupLists fetches each kind's list from svc and writes it through the backup sink.
//
// Kinds are fetched by a small worker pool. Results come back in the order of kinds. A failed kind
// does not stop the others; all failures are joined into the returned error.
func BackupLists(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	svc services.Service,
	session *models.Session,
	kinds []models.MediaKind,
	opts BackupOpts,
) ([]BackupResult, error) {
	if svc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}
	if !session.Valid() {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, svc.Name().Display())
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: no list types to back up", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatTOML
	}
	if opts.Directory == "" {
		opts.Directory = "."
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 2
	}
	if opts.NumWorkers > len(kinds) {
		opts.NumWorkers = len(kinds)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan models.MediaKind, len(kinds))
	results := make(chan BackupResult, len(kinds))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go backupWorker(ctx, &wg, svc, session, opts, jobs, results)
	}

	go func() {
		defer close(jobs)
		for _, kind := range kinds {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- kind
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]BackupResult, 0, len(kinds))
	for res := range results {
		collected = append(collected, res)
		sendProgress(progress, backupUpdate(len(collected), len(kinds), res))
	}

	slices.SortFunc(collected, func(a, b BackupResult) int {
		return slices.Index(kinds, a.Kind) - slices.Index(kinds, b.Kind)
	})

	var errs []error
	for _, res := range collected {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	if err := ctx.Err(); err != nil && len(collected) < len(kinds) {
		errs = append(errs, err)
	}
	return collected, errors.Join(errs...)
}

func backupWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	svc services.Service,
	session *models.Session,
	opts BackupOpts,
	jobs <-chan models.MediaKind,
	results chan<- BackupResult,
) {
	defer wg.Done()

	for kind := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- backupOne(ctx, svc, session, kind, opts)
	}
}

func backupOne(ctx context.Context, svc services.Service, session *models.Session, kind models.MediaKind, opts BackupOpts) BackupResult {
	result := BackupResult{
		Service: svc.Name(),
		Kind:    kind,
		Path:    formatter.BackupPath(opts.Directory, kind, opts.Format),
	}

	list, err := svc.FetchList(ctx, session, kind)
	if err != nil {
		result.Err = err
		return result
	}

	result.Backup = formatter.NewBackup(list)
	result.Entries = list.Len()

	if err := formatter.WriteFile(result.Backup, opts.Format, result.Path); err != nil {
		result.Err = fmt.Errorf("%s backup failed: %w", kind, err)
	}
	return result
}
