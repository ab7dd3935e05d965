package handlers

import (
	"net/http"

	"github.com/Jidetireni/firstcare-registration/internal/constants"
	"github.com/Jidetireni/firstcare-registration/internal/dto"
)

func (h *Handlers) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	resp := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": h.config.Server.Env,
			"version":     "1.0.0",
		},
	}

	if err := h.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		h.errorResponse(w, r, err)
		return
	}
}

// Constants serves the option lists and fees the client renders the form
// with.
func (h *Handlers) Constants(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, dto.Constants{
		RegistrationFee:    constants.RegistrationFee,
		DailyDue:           constants.DailyDue,
		WorkingDaysPerWeek: constants.WorkingDaysPerWeek,
		State:              constants.State,
		SexOptions:         constants.SexOptions,
		Zones:              constants.Zones,
		LGAs:               constants.LGAs,
		Relationships:      constants.Relationships,
	}, nil)
}
