package solvers

import (
	"encoding/json"
	"net/http"

	"edufoyer/database"
	"edufoyer/models"
	"edufoyer/utils"

	"gorm.io/gorm"
)

type onboardRequest struct {
	Name         string   `json:"name"`
	Specialities []string `json:"specialities"`
}

// POST /v1/solvers — onboard the authenticated user as a solver. The solver
// id mirrors the identity service's user id; the wallet row is created with
// it.
func OnboardHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req onboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	specs := models.NormalizeSpecialities(req.Specialities)
	if specs == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "At least one speciality is required"})
		return
	}

	db := database.DB
	var existing models.Solver
	if err := db.First(&existing, uid).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Solver already onboarded"})
		return
	}

	solver := models.Solver{ID: uid, Name: req.Name, Specialities: specs}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&solver).Error; err != nil {
			return err
		}
		return tx.Create(&models.Wallet{SolverID: uid}).Error
	})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to onboard solver"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Solver onboarded", Data: solver})
}

// GET /v1/solvers/wallet — the solver's balance and full ledger.
func WalletHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	db := database.DB
	var wallet models.Wallet
	if err := db.Where("solver_id = ?", uid).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Wallet not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	var entries []models.WalletEntry
	if err := db.Where("wallet_id = ?", wallet.ID).Order("task_id ASC").Find(&entries).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{
		"wallet": wallet,
		"ledger": entries,
	}})
}
