// Package matrix holds the commission-rate matrix model: the edit buffer, the pending-change ledger,
// the save and delete planners, and the bulk entry draft. It performs no I/O
package matrix

import (
	"strings"

	perr "rategrid/internal/platform/errors"
)

// Role is a compensation tier from the external role taxonomy
// the integer values are a cross-system contract and must never be renumbered
type Role int

// Role values as issued by the upstream taxonomy
const (
	RoleAdvisor       Role = 3
	RoleLeader1       Role = 4
	RoleLeader2       Role = 5
	RoleSeniorPartner Role = 6
)

// Roles lists every role in taxonomy order
var Roles = [...]Role{RoleAdvisor, RoleLeader1, RoleLeader2, RoleSeniorPartner}

// Valid reports whether r is one of the four known roles
func (r Role) Valid() bool { return r >= RoleAdvisor && r <= RoleSeniorPartner }

// String returns the taxonomy name
func (r Role) String() string {
	switch r {
	case RoleAdvisor:
		return "ADVISOR"
	case RoleLeader1:
		return "LEADER_1"
	case RoleLeader2:
		return "LEADER_2"
	case RoleSeniorPartner:
		return "SENIOR_PARTNER"
	default:
		return "UNKNOWN"
	}
}

// ParseRole accepts a taxonomy name (case-insensitive)
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADVISOR":
		return RoleAdvisor, nil
	case "LEADER_1":
		return RoleLeader1, nil
	case "LEADER_2":
		return RoleLeader2, nil
	case "SENIOR_PARTNER":
		return RoleSeniorPartner, nil
	}
	return 0, perr.InvalidArgf("unknown role %q", s)
}
