package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Profile is a single card in the deck.
type Profile struct {
	ID                string   `json:"id" validate:"required"`
	Name              string   `json:"name" validate:"required"`
	Age               int      `json:"age" validate:"gte=18"`
	City              string   `json:"city" validate:"required"`
	Title             string   `json:"title" validate:"required"`
	Bio               string   `json:"bio" validate:"required"`
	Tags              []string `json:"tags" validate:"len=4,unique,dive,required"`
	Images            []string `json:"images" validate:"min=1,dive,url"`
	CurrentPhotoIndex int      `json:"currentPhotoIndex"`
}

// NewProfile validates p and returns an independent copy with its photo index
// clamped into the bounds of its images.
func NewProfile(p Profile) (Profile, error) {
	if err := validate.Struct(p); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	out := p.Clone()
	out.CurrentPhotoIndex = out.ClampPhotoIndex(out.CurrentPhotoIndex)
	return out, nil
}

// Clone returns a deep copy so callers never share tag or image slices.
func (p Profile) Clone() Profile {
	out := p
	out.Tags = append([]string(nil), p.Tags...)
	out.Images = append([]string(nil), p.Images...)
	return out
}

// ClampPhotoIndex clamps i into [0, len(Images)-1].
func (p Profile) ClampPhotoIndex(i int) int {
	last := len(p.Images) - 1
	if last < 0 || i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}

// CurrentImage returns the image shown for the current photo index.
func (p Profile) CurrentImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[p.ClampPhotoIndex(p.CurrentPhotoIndex)]
}
