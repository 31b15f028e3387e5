// Package retry retries transient failures while opening database connections.
//
// Item-level work (loading one workbook, downloading one PDF) is never retried;
// only connection establishment goes through an Executor.
//
//	classifier := retry.NewSQLErrorClassifier()
//	strategy := retry.NewExponentialBackoff(3)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
package retry
