package service

import (
	"context"
	"fmt"

	"github.com/yourname/smartcoach/internal"
)

type ProfileRequest struct {
	Sex           string  `json:"sex" validate:"omitempty,oneof=male female"`
	BirthDate     string  `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	HeightCM      float64 `json:"height_cm" validate:"omitempty,gt=50,lt=300"`
	ActivityLevel string  `json:"activity_level" validate:"omitempty,oneof=sedentary light moderate active very_active"`
}

func ValidateProfileRequest(req *ProfileRequest) error {
	return validate.Struct(req)
}

// UpdateProfile replaces the user's profile.
func UpdateProfile(ctx context.Context, repos Repos, user *internal.User, req *ProfileRequest) (*internal.UserProfile, error) {
	p := &internal.UserProfile{
		Sex:           req.Sex,
		HeightCM:      req.HeightCM,
		ActivityLevel: req.ActivityLevel,
	}
	if req.BirthDate != "" {
		born, err := ParseDate(req.BirthDate)
		if err != nil {
			return nil, err
		}
		if born.After(now()) {
			return nil, invalid("birth date %s is in the future", req.BirthDate)
		}
		p.BirthDate = &born
	}
	err := updateUser(ctx, repos, user, func(u *internal.User) error {
		u.Profile = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// Profile returns the user's profile, empty when none was set.
func Profile(user *internal.User) *internal.UserProfile {
	if user.Profile == nil {
		return &internal.UserProfile{}
	}
	return user.Profile
}
