package auction

import "github.com/Devansh171021/swpl/internal/domain/player"

// SequenceByRole orders players for presentation: groups in the priority
// order given, then any unrecognized role groups in first-encountered order.
// This is a stable partition, not a sort; relative order inside every group
// is preserved.
func SequenceByRole(players []player.Player, order []player.Role) []player.Player {
	if len(order) == 0 {
		order = player.DefaultRoleOrder
	}

	groups := make(map[player.Role][]player.Player, len(order)+1)
	extraRoles := make([]player.Role, 0, 4)
	prioritized := make(map[player.Role]struct{}, len(order))
	for _, role := range order {
		prioritized[role] = struct{}{}
	}

	for _, p := range players {
		role := p.Role
		if role == "" {
			role = player.RoleUnknown
		}
		if _, seen := groups[role]; !seen {
			if _, ok := prioritized[role]; !ok {
				extraRoles = append(extraRoles, role)
			}
		}
		groups[role] = append(groups[role], p)
	}

	out := make([]player.Player, 0, len(players))
	for _, role := range order {
		out = append(out, groups[role]...)
	}
	for _, role := range extraRoles {
		out = append(out, groups[role]...)
	}

	return out
}
