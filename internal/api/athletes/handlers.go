// internal/api/athletes/handlers.go
package athletes

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tsampaio/courtly/internal/api/apiutil"
	"github.com/tsampaio/courtly/internal/athletes"
)

var (
	directory *athletes.Directory
	initOnce  sync.Once
)

const athleteQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(d *athletes.Directory) {
	if d == nil {
		return
	}
	initOnce.Do(func() {
		directory = d
	})
}

type athleteResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// GET /api/v1/athletes/by-phone?phone=...
func HandleAthleteByPhone(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if directory == nil {
		logger.Error().Msg("Athlete directory not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if _, ok := apiutil.RequireActor(w, r); !ok {
		return
	}

	phone := r.URL.Query().Get("phone")

	ctx, cancel := context.WithTimeout(r.Context(), athleteQueryTimeout)
	defer cancel()

	athlete, err := directory.LookupByPhone(ctx, phone)
	if err != nil {
		apiutil.WriteEngineError(w, r, err)
		return
	}

	resp := athleteResponse{ID: athlete.ID, Name: athlete.Name, Phone: athlete.Phone}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Int64("athlete_id", athlete.ID).Msg("Failed to write athlete response")
	}
}
