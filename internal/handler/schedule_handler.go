package handler

import (
	"time"

	"github.com/hitoshi/lifehub/internal/model"
)

// scheduleResponse はスケジュールのAPIレスポンス。
type scheduleResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Memo      string    `json:"memo"`
	Location  string    `json:"location"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewScheduleHandler はスケジュールCRUDのEntityHandlerを生成する。
func NewScheduleHandler(service EntityService[model.Schedule, model.ScheduleInput]) *EntityHandler[model.Schedule, model.ScheduleInput, scheduleResponse] {
	return NewEntityHandler(service, toScheduleResponse)
}

// toScheduleResponse はmodel.ScheduleからAPIレスポンスに変換する。
func toScheduleResponse(schedule *model.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:        schedule.ID,
		Title:     schedule.Title,
		Memo:      schedule.Memo,
		Location:  schedule.Location,
		Date:      schedule.Date,
		CreatedAt: schedule.CreatedAt,
		UpdatedAt: schedule.UpdatedAt,
	}
}
