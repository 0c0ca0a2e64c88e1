package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/store"
)

// ProfileService reads and edits the caller's profile.
type ProfileService struct {
	store store.Store
	log   zerolog.Logger
}

func NewProfileService(s store.Store, log zerolog.Logger) *ProfileService {
	return &ProfileService{store: s, log: log}
}

// GetProfile returns the user's profile, creating an empty one on first use.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return s.store.Profiles().GetOrCreate(ctx, userID)
}

// UpdateProfile trims the update, treats blank strings as cleared values and
// stores the result.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error) {
	upd.Normalize()
	if err := model.ValidateProfileUpdate(&upd); err != nil {
		return nil, err
	}
	p, err := s.store.Profiles().Update(ctx, userID, &upd)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Msg("profile updated")
	return p, nil
}
