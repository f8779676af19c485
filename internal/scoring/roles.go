package scoring

import "strings"

// Role is a canonical lane assignment.
type Role string

const (
	RoleTop     Role = "TOP"
	RoleJungle  Role = "JUNGLE"
	RoleMid     Role = "MID"
	RoleADC     Role = "ADC"
	RoleSupport Role = "SUPPORT"
)

// roleAliases maps the upstream position labels onto canonical roles. Riot
// emits BOTTOM/UTILITY in teamPosition and BOT/SUPP elsewhere.
var roleAliases = map[string]Role{
	"TOP":     RoleTop,
	"JUNGLE":  RoleJungle,
	"MID":     RoleMid,
	"MIDDLE":  RoleMid,
	"ADC":     RoleADC,
	"BOT":     RoleADC,
	"BOTTOM":  RoleADC,
	"SUPPORT": RoleSupport,
	"SUPP":    RoleSupport,
	"UTILITY": RoleSupport,
}

// ResolveRole normalizes a raw position label. ok is false for labels with no
// canonical role (empty teamPosition in remakes, arena modes, bad data).
func ResolveRole(raw string) (Role, bool) {
	r, ok := roleAliases[strings.ToUpper(strings.TrimSpace(raw))]
	return r, ok
}

// Roles returns the canonical roles in draft display order.
func Roles() []Role {
	return []Role{RoleTop, RoleJungle, RoleMid, RoleADC, RoleSupport}
}
