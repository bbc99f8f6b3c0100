package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"edufoyer/database"
	"edufoyer/models"
	"edufoyer/services"
	"edufoyer/utils"
)

type createTaskRequest struct {
	Category    string `json:"category"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// POST /v1/tasks
func CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}

	db := database.DB
	task, err := services.CreateTask(db, services.DefaultQuotaPolicy, uid, req.Category, req.Subject, req.Description)
	if err != nil {
		writeServiceErr(w, err)
		return
	}

	// Everything past the task write is off the response path: relevance is
	// advisory, the pack decrement is opportunistic, fan-out is best effort.
	go func() {
		services.DecrementTaskPack(db, task.AskerID)

		if verdict, err := utils.CheckRelevance(task.Subject, task.Description); err != nil {
			log.Printf("[relevance] task %d: %v", task.ID, err)
		} else if err := db.Model(&models.Task{}).Where("id = ?", task.ID).
			Update("relevance", verdict).Error; err != nil {
			log.Printf("[relevance] stamp task %d: %v", task.ID, err)
		}

		recipients, err := services.EligibleSolverIDs(db, task)
		if err != nil {
			log.Printf("[notifier] list solvers for task %d: %v", task.ID, err)
			return
		}
		services.Notify(context.Background(), db, utils.RedisClient, services.Event{
			Type:       models.NotifyTaskCreated,
			TaskID:     task.ID,
			Subject:    task.Subject,
			Message:    fmt.Sprintf("New %s task: %s", task.Category, task.Subject),
			Recipients: recipients,
		})
	}()

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: task})
}
