package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"edufoyer/database"
	"edufoyer/models"
	"edufoyer/services"
	"edufoyer/utils"

	"github.com/gorilla/mux"
)

type completeRequest struct {
	Rating  *int   `json:"rating"`
	Comment string `json:"comment"`
}

// POST /v1/tasks/{id}/complete — the asker confirms resolution and rates the
// solver.
func CompleteByAskerHandler(w http.ResponseWriter, r *http.Request) {
	handleCompletion(w, r, true)
}

// POST /v1/tasks/{id}/finish — the assigned solver marks the session done.
func CompleteByWorkerHandler(w http.ResponseWriter, r *http.Request) {
	handleCompletion(w, r, false)
}

func handleCompletion(w http.ResponseWriter, r *http.Request, byAsker bool) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	taskID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || taskID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Not valid JSON"})
		return
	}

	db := database.DB
	var result *services.CompletionResult
	if byAsker {
		result, err = services.CompleteByAsker(db, uint(taskID), uid, req.Rating, req.Comment)
	} else {
		result, err = services.CompleteByWorker(db, uint(taskID), uid, req.Rating, req.Comment)
	}
	if err != nil {
		writeServiceErr(w, err)
		return
	}

	task := result.Task
	email := utils.GetUserEmail(r)
	go func() {
		// The counterpart hears about the resolution; the caller already
		// knows.
		recipient := task.AskerID
		if byAsker {
			recipient = *task.SolverID
		}
		services.Notify(context.Background(), db, utils.RedisClient, services.Event{
			Type:       models.NotifyTaskResolved,
			TaskID:     task.ID,
			Subject:    task.Subject,
			Message:    fmt.Sprintf("Task #%d was resolved", task.ID),
			Recipients: []uint{recipient},
		})
		if email != "" {
			utils.SendMailAsync(email, "Task resolved",
				fmt.Sprintf("Task #%d is resolved. Thanks for using Edufoyer.", task.ID))
		}
	}()

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Task resolved",
		Data: map[string]interface{}{
			"task":             task,
			"assignment":       result.Assignment,
			"first_completion": result.FirstCompletion,
		},
	})
}
