package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"punctab/internal/trace"
)

// GenerateAll runs Generate for every job in parallel. Results keep the order
// of jobs. A table that fails with diagnostics does not stop the others; the
// error is reserved for cancellation.
func GenerateAll(ctx context.Context, jobs []Job, opts Options) ([]*Result, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "generate", trace.CurrentSpan(ctx))
	defer root.End("")
	ctx = trace.WithSpan(ctx, root.ID())

	// Настраиваем параллелизм
	limit := opts.Jobs
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]*Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(limit, len(jobs)))
	for i, job := range jobs {
		g.Go(func() error {
			res, err := Generate(gctx, job, opts)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
