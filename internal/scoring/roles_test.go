package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"TOP", RoleTop, true},
		{"top", RoleTop, true},
		{" Jungle ", RoleJungle, true},
		{"MIDDLE", RoleMid, true},
		{"MID", RoleMid, true},
		{"BOTTOM", RoleADC, true},
		{"BOT", RoleADC, true},
		{"ADC", RoleADC, true},
		{"UTILITY", RoleSupport, true},
		{"SUPP", RoleSupport, true},
		{"SUPPORT", RoleSupport, true},
		{"", "", false},
		{"Invalid", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ResolveRole(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRolesOrder(t *testing.T) {
	assert.Equal(t, []Role{RoleTop, RoleJungle, RoleMid, RoleADC, RoleSupport}, Roles())
}

func TestEveryRoleHasMetrics(t *testing.T) {
	for _, r := range Roles() {
		assert.NotEmpty(t, metricsFor(r), "role %s", r)
	}
}
