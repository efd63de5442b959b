package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/leventyarali/vocanizer-sub000/internal/api/shared"
	"github.com/leventyarali/vocanizer-sub000/internal/calendar"
	"github.com/leventyarali/vocanizer-sub000/internal/domain"
	"github.com/leventyarali/vocanizer-sub000/internal/domain/recurrence"
	"github.com/leventyarali/vocanizer-sub000/internal/platform/logger"
	"github.com/leventyarali/vocanizer-sub000/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /api/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result, err := h.taskService.CreateTask(r.Context(), userID, req.ToInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskWithOccurrencesToResponse(result))
}

// ListTasks handles GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	opts, err := parseListOptions(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), userID, opts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	limit := opts.Limit
	if limit == 0 {
		limit = service.DefaultListLimit
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks:  tasksToResponse(tasks),
		Limit:  limit,
		Offset: opts.Offset,
	})
}

// GetTask handles GET /api/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id}
// The body replaces the task; occurrences are regenerated from it.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result, err := h.taskService.UpdateTask(r.Context(), userID, taskID, req.ToInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskWithOccurrencesToResponse(result))
}

// DeleteTask handles DELETE /api/tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompleteTask handles POST /api/tasks/{id}/complete
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.taskService.CompleteTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListOccurrences handles GET /api/tasks/{id}/occurrences
func (h *TaskHandler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	occurrences, err := h.taskService.ListOccurrences(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list occurrences")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: tasksToResponse(occurrences)})
}

// ExportCalendar handles GET /api/tasks/{id}/calendar.ics
func (h *TaskHandler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	data, err := h.taskService.ExportCalendar(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export calendar")
		return
	}

	w.Header().Set("Content-Type", calendar.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+taskID.String()+`.ics"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write calendar response", slog.String("error", err.Error()))
	}
}

// PreviewRecurrence handles POST /api/recurrence/preview
// Nothing is persisted.
func (h *TaskHandler) PreviewRecurrence(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if _, ok := requireUserID(w, r, log); !ok {
		return
	}

	var req PreviewRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	input := service.RecurrenceInput{Rule: req.Recurrence.ToDomain(), RRule: req.RRule}
	occurrences, err := h.taskService.PreviewRecurrence(r.Context(), req.Anchor, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to preview recurrence")
		return
	}

	resp := PreviewResponse{Occurrences: make([]OccurrenceResponse, 0, len(occurrences))}
	for _, occ := range occurrences {
		resp.Occurrences = append(resp.Occurrences, OccurrenceResponse{
			DueDate:       occ.DueDate,
			SequenceIndex: occ.SequenceIndex,
		})
	}
	if input.Rule != nil {
		resp.RRule = rruleText(*input.Rule)
	} else {
		resp.RRule = req.RRule
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func taskWithOccurrencesToResponse(result *service.TaskWithOccurrences) TaskWithOccurrencesResponse {
	return TaskWithOccurrencesResponse{
		Task:        taskToResponse(result.Task),
		Occurrences: tasksToResponse(result.Occurrences),
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	resp := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, taskToResponse(t))
	}
	return resp
}

func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:            task.ID.String(),
		UserID:        task.UserID.String(),
		Title:         task.Title,
		Description:   task.Description,
		Status:        string(task.Status),
		DueDate:       task.DueDate,
		SequenceIndex: task.SequenceIndex,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}

	if task.ParentTaskID != nil {
		parent := task.ParentTaskID.String()
		resp.ParentTaskID = &parent
	}

	if rule := task.Recurrence; rule != nil {
		resp.Recurrence = &RecurrenceResponse{
			Frequency:  string(rule.Frequency),
			Interval:   rule.Interval,
			DaysOfWeek: rule.DaysOfWeek,
			EndDate:    rule.EndDate,
			Count:      rule.Count,
			RRule:      rruleText(*rule),
		}
	}

	return resp
}

// rruleText renders rule as RRULE text, or "" for rules RFC 5545 cannot
// express, such as an empty day set.
func rruleText(rule domain.RecurrenceRule) string {
	text, err := recurrence.FormatRRule(rule)
	if err != nil {
		return ""
	}
	return text
}

