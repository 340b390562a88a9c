package reward

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnknownReward   = errors.New("unknown reward")
	ErrDuplicateReward = errors.New("reward already registered")
	ErrInvalidOption   = errors.New("invalid reward option")
	ErrNotOwned        = errors.New("reward not owned by player")
)

// Definition describes a reward and the options a player may pick from.
// Definitions are immutable once created.
type Definition struct {
	id      Identifier
	rule    Rule
	options []string
}

// NewDefinition returns a definition with at least one option. The first
// option is the one granted automatically on login.
func NewDefinition(id Identifier, rule Rule, options ...string) (Definition, error) {
	if len(options) == 0 {
		return Definition{}, fmt.Errorf("reward %s: %w: no options", id, ErrInvalidOption)
	}
	if rule == nil {
		rule = Nobody{}
	}
	return Definition{id: id, rule: rule, options: append([]string(nil), options...)}, nil
}

func (d Definition) ID() Identifier { return d.id }
func (d Definition) Rule() Rule     { return d.rule }

// Options returns a copy of the option list.
func (d Definition) Options() []string {
	return append([]string(nil), d.options...)
}

// Option returns the option at index i.
func (d Definition) Option(i int) (string, bool) {
	if i < 0 || i >= len(d.options) {
		return "", false
	}
	return d.options[i], true
}

// Rule decides whether a player collects a reward automatically.
type Rule interface {
	Eligible(player uuid.UUID) bool
}

// Everyone grants the reward to every player.
type Everyone struct{}

func (Everyone) Eligible(uuid.UUID) bool { return true }

// Nobody never grants the reward automatically. Such rewards are handed out
// by the grant command only.
type Nobody struct{}

func (Nobody) Eligible(uuid.UUID) bool { return false }

// Allowlist grants the reward to a fixed set of players, such as the
// contributors of a project.
type Allowlist struct {
	players map[uuid.UUID]struct{}
}

// NewAllowlist returns an allowlist holding ids.
func NewAllowlist(ids ...uuid.UUID) Allowlist {
	a := Allowlist{players: make(map[uuid.UUID]struct{}, len(ids))}
	for _, id := range ids {
		a.players[id] = struct{}{}
	}
	return a
}

// ParseAllowlist parses a list of UUID strings.
func ParseAllowlist(ids []string) (Allowlist, error) {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil {
			return Allowlist{}, fmt.Errorf("allowlist entry %q: %w", s, err)
		}
		parsed = append(parsed, id)
	}
	return NewAllowlist(parsed...), nil
}

func (a Allowlist) Eligible(player uuid.UUID) bool {
	_, ok := a.players[player]
	return ok
}

// Len returns the number of players on the list.
func (a Allowlist) Len() int { return len(a.players) }
