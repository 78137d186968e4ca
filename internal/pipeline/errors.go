package pipeline

import "fmt"

// TaskError reports the declared task that aborted a run.
type TaskError struct {
	// Task is the name of the failed task.
	Task string

	// Err is the task's error.
	Err error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
