package utils

import (
	"context"
	"errors"
	"sync"
)

// ParallelTask is one unit of work for RunParallelTasks.
type ParallelTask func(ctx context.Context) error

// RunParallelTasks executes tasks with at most limit running at once and
// returns their errors joined, or nil. A limit below 1 runs everything at
// once.
func RunParallelTasks(ctx context.Context, limit int, tasks []ParallelTask) error {
	if len(tasks) == 0 {
		return nil
	}
	if limit < 1 || limit > len(tasks) {
		limit = len(tasks)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(tasks))
	slots := make(chan struct{}, limit)

	wg.Add(len(tasks))
	for i, task := range tasks {
		slots <- struct{}{}
		go func(index int, t ParallelTask) {
			defer func() {
				<-slots
				wg.Done()
			}()
			errs[index] = t(ctx)
		}(i, task)
	}

	wg.Wait()
	return errors.Join(errs...)
}
