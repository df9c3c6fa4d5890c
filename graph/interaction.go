package graph

import (
	"fmt"
	"strconv"
	"time"
)

// Well-known action tags. Action is free-form; these are the values the
// default policy assigns weights to.
const (
	ActionView     = "view"
	ActionDownload = "download"
	ActionShare    = "share"
)

// MetaTargetAgeMax is the metadata key declaring the intended-audience age
// ceiling of a content item ("content intended for viewers under age N").
// Content without this key is unclassified and never scored as
// minor-targeted.
const MetaTargetAgeMax = "target_age_max"

// Interaction records a single user action on a content item.
type Interaction struct {
	// UserID identifies the acting user. Must be registered.
	UserID string `json:"user_id"`

	// ContentID identifies the content item. Content IDs are created
	// implicitly on first interaction.
	ContentID string `json:"content_id"`

	// Category is a free-form content category tag (e.g., "video").
	Category string `json:"category,omitempty"`

	// Action is the action tag (e.g., "view", "download", "share").
	Action string `json:"action"`

	// Timestamp records when the interaction occurred.
	Timestamp time.Time `json:"timestamp"`

	// Meta contains arbitrary content metadata. The engine reads only
	// MetaTargetAgeMax from it.
	Meta map[string]string `json:"meta,omitempty"`
}

// NewInteraction creates an Interaction with the given user, content, and
// action, stamped with the provided time.
func NewInteraction(userID, contentID, action string, ts time.Time) *Interaction {
	return &Interaction{
		UserID:    userID,
		ContentID: contentID,
		Action:    action,
		Timestamp: ts,
		Meta:      make(map[string]string),
	}
}

// WithCategory sets the content category and returns the interaction for
// chaining.
func (i *Interaction) WithCategory(category string) *Interaction {
	i.Category = category
	return i
}

// WithMeta sets a single metadata entry and returns the interaction for
// chaining.
func (i *Interaction) WithMeta(key, value string) *Interaction {
	if i.Meta == nil {
		i.Meta = make(map[string]string)
	}
	i.Meta[key] = value
	return i
}

// WithTargetAgeMax declares the content's intended-audience age ceiling
// and returns the interaction for chaining.
func (i *Interaction) WithTargetAgeMax(age int) *Interaction {
	return i.WithMeta(MetaTargetAgeMax, strconv.Itoa(age))
}

// TargetAgeMax returns the declared audience age ceiling and whether one
// was declared. Malformed values count as undeclared.
func (i *Interaction) TargetAgeMax() (int, bool) {
	raw, ok := i.Meta[MetaTargetAgeMax]
	if !ok {
		return 0, false
	}
	age, err := strconv.Atoi(raw)
	if err != nil || age < 0 {
		return 0, false
	}
	return age, true
}

// Validate checks that the interaction references a user, a content item,
// and an action.
func (i *Interaction) Validate() error {
	if i.UserID == "" {
		return fmt.Errorf("interaction user ID cannot be empty")
	}
	if i.ContentID == "" {
		return fmt.Errorf("interaction content ID cannot be empty")
	}
	if i.Action == "" {
		return fmt.Errorf("interaction action cannot be empty")
	}
	return nil
}
