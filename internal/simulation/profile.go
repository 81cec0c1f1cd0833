package simulation

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Profile shapes a simulated workload.
type Profile struct {
	Users       int     `yaml:"users" validate:"min=1"`
	Subreddits  int     `yaml:"subreddits" validate:"min=1"`
	ZipfAlpha   float64 `yaml:"zipf_alpha" validate:"gt=0"`
	Seed        uint64  `yaml:"seed"`
	Concurrency int     `yaml:"concurrency" validate:"min=1"`

	JoinsPerUser    int `yaml:"joins_per_user" validate:"min=0"`
	MaxPostsPerUser int `yaml:"max_posts_per_user" validate:"min=1"`
	VotesPerPost    int `yaml:"votes_per_post" validate:"min=0"`
	CommentsPerPost int `yaml:"comments_per_post" validate:"min=0"`
	MessagesPerUser int `yaml:"messages_per_user" validate:"min=0"`

	UpvoteProbability float64 `yaml:"upvote_probability" validate:"gte=0,lte=1"`
	ReplyProbability  float64 `yaml:"reply_probability" validate:"gte=0,lte=1"`
	LeaveProbability  float64 `yaml:"leave_probability" validate:"gte=0,lte=1"`
	// LogoutProbability is the chance a user disconnects once done.
	LogoutProbability float64 `yaml:"logout_probability" validate:"gte=0,lte=1"`
}

// DefaultProfile mirrors the classic run: 20 subreddits, Zipf alpha 1.3,
// mostly upvotes.
func DefaultProfile() Profile {
	return Profile{
		Users:             10,
		Subreddits:        20,
		ZipfAlpha:         1.3,
		Seed:              1,
		Concurrency:       8,
		JoinsPerUser:      3,
		MaxPostsPerUser:   5,
		VotesPerPost:      5,
		CommentsPerPost:   3,
		MessagesPerUser:   2,
		UpvoteProbability: 0.7,
		ReplyProbability:  0.25,
		LeaveProbability:  0.3,
		LogoutProbability: 0.2,
	}
}

var profileValidate = validator.New()

// Validate checks the profile's bounds.
func (p Profile) Validate() error {
	if err := profileValidate.Struct(p); err != nil {
		return fmt.Errorf("invalid simulation profile: %w", err)
	}
	return nil
}

// LoadProfile reads a YAML profile from path. Fields missing from the file
// keep their DefaultProfile values.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
