package httpserver

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/swipedeck/internal/domain"
	apperrors "github.com/pscheid92/swipedeck/internal/platform/errors"
	"github.com/pscheid92/swipedeck/internal/profile"
)

var validate = validator.New()

type profilesQuery struct {
	Count int `query:"count" validate:"omitempty,min=1,max=50"`
}

type profilesResponse struct {
	Count    int              `json:"count"`
	Profiles []domain.Profile `json:"profiles"`
}

func (s *Server) registerAPIRoutes() {
	limiter := newRateLimiter(s.config.APIRate, s.config.APIBurst)
	s.echo.GET("/api/profiles", s.handleProfiles, limiter)
}

// handleProfiles previews what the profile source generates for a new deck.
func (s *Server) handleProfiles(c echo.Context) error {
	var q profilesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return apperrors.ValidationError("count must be an integer").WithContext("count", c.QueryParam("count"))
	}
	if err := validate.Struct(q); err != nil {
		return apperrors.FromValidation(err)
	}
	if q.Count == 0 {
		q.Count = s.config.DeckSize
	}
	if q.Count == 0 {
		q.Count = profile.DefaultCount
	}

	profiles := s.profiles.Generate(q.Count)
	if len(profiles) == 0 {
		return apperrors.InternalError("profile source returned no profiles", domain.ErrEmptyDeck)
	}

	if err := c.JSON(http.StatusOK, profilesResponse{Count: len(profiles), Profiles: profiles}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
