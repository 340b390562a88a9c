package reward

import (
	"fmt"
	"iter"
	"sort"

	"github.com/google/uuid"

	"github.com/oriumgames/titanium/nbthandler"
)

// Snapshot is the client side view of a ledger: the options each player
// holds, keyed by reward.
type Snapshot map[uuid.UUID]map[Identifier]int

// DecodeSnapshot reads the player entries of a serialized ledger. Both the
// simple and the full form are accepted.
func DecodeSnapshot(c nbthandler.Compound) (Snapshot, error) {
	players, err := decodePlayers(c)
	if err != nil {
		return nil, err
	}
	return Snapshot(players), nil
}

// Option returns the option player holds for reward.
func (s Snapshot) Option(player uuid.UUID, reward Identifier) (int, bool) {
	opt, ok := s[player][reward]
	return opt, ok
}

func decodePlayers(c nbthandler.Compound) (map[uuid.UUID]map[Identifier]int, error) {
	players := make(map[uuid.UUID]map[Identifier]int)
	raw, ok := c["Players"]
	if !ok {
		return players, nil
	}
	list, ok := nbthandler.List(raw)
	if !ok {
		return nil, fmt.Errorf("decode ledger: Players is %T, not a list", raw)
	}
	for _, e := range list {
		entry, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("decode ledger: player entry is %T", e)
		}
		str, _ := entry["UUID"].(string)
		p, err := uuid.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("decode ledger: player %q: %w", str, err)
		}
		rewardList, _ := nbthandler.List(entry["Rewards"])
		rewards := make(map[Identifier]int, len(rewardList))
		for _, re := range rewardList {
			r, ok := re.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("decode ledger: reward entry of %s is %T", p, re)
			}
			name, _ := r["Reward"].(string)
			id, err := ParseIdentifier(name)
			if err != nil {
				return nil, fmt.Errorf("decode ledger: player %s: %w", p, err)
			}
			opt, ok := nbthandler.Int(r["Option"])
			if !ok {
				return nil, fmt.Errorf("decode ledger: player %s reward %s: missing option", p, id)
			}
			rewards[id] = int(opt)
		}
		if len(rewards) > 0 {
			players[p] = rewards
		}
	}
	return players, nil
}

func sortedIDs(seq iter.Seq[uuid.UUID]) []uuid.UUID {
	var out []uuid.UUID
	for id := range seq {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
