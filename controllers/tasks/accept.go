package tasks

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"edufoyer/database"
	"edufoyer/models"
	"edufoyer/services"
	"edufoyer/utils"

	"github.com/gorilla/mux"
)

// POST /v1/tasks/{id}/accept
func AcceptTaskHandler(w http.ResponseWriter, r *http.Request) {
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

	db := database.DB
	task, assignment, err := services.Accept(db, Rooms, uint(taskID), uid)
	if err != nil {
		writeServiceErr(w, err)
		return
	}

	email := utils.GetUserEmail(r)
	go func() {
		services.Notify(context.Background(), db, utils.RedisClient, services.Event{
			Type:       models.NotifyTaskAssigned,
			TaskID:     task.ID,
			Subject:    task.Subject,
			Message:    "Your task was accepted by a solver",
			Recipients: []uint{task.AskerID},
		})
		if email != "" {
			utils.SendMailAsync(email, "Session scheduled",
				fmt.Sprintf("You accepted task #%d. Your session room is %s.", task.ID, assignment.RoomName))
		}
	}()

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Task accepted",
		Data: map[string]interface{}{
			"task":       task,
			"assignment": assignment,
		},
	})
}
