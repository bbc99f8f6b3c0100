package tasks

import (
	"net/http"

	"edufoyer/services"
	"edufoyer/utils"
)

// Rooms is the session provisioner used by the accept flow. Package-level so
// tests can swap in a fake.
var Rooms services.RoomProvisioner = utils.NewRoomClient()

func writeServiceErr(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Something went wrong, please try again"
	}
	var data interface{}
	if d := services.ErrDetail(err); d != nil {
		data = d
	}
	utils.WriteJSON(w, status, utils.APIResponse{Success: false, Message: msg, Data: data})
}
