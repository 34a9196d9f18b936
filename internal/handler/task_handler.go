package handler

import (
	"time"

	"github.com/hitoshi/lifehub/internal/model"
)

// taskResponse はタスクのAPIレスポンス。
type taskResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTaskHandler はタスクCRUDのEntityHandlerを生成する。
func NewTaskHandler(service EntityService[model.Task, model.TaskInput]) *EntityHandler[model.Task, model.TaskInput, taskResponse] {
	return NewEntityHandler(service, toTaskResponse)
}

// toTaskResponse はmodel.TaskからAPIレスポンスに変換する。
func toTaskResponse(task *model.Task) taskResponse {
	return taskResponse{
		ID:        task.ID,
		Title:     task.Title,
		Detail:    task.Detail,
		Done:      task.Done,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}
