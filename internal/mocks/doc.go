// Package mocks provides shared test doubles for the task service and its
// dependencies.
//
// MemoryTaskStore is a working in-memory store.TaskStore with error
// injection fields; MockTaskService and MockJWTService are function-field
// mocks that fall back to fixed results when a field is nil.
//
//	tasks := mocks.NewMemoryTaskStore()
//	svc := &mocks.MockTaskService{
//	    GetTaskFn: func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
//	        return nil, service.ErrTaskNotFound
//	    },
//	}
package mocks
