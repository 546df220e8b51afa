package app

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// newEnforcer builds an in-memory RBAC enforcer. policies are "sub, obj, act"
// lines and roles are "user, role" lines, both from configuration.
func newEnforcer(policies, roles []string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	p, err := splitRules(policies, 3)
	if err != nil {
		return nil, fmt.Errorf("casbin policies: %w", err)
	}
	g, err := splitRules(roles, 2)
	if err != nil {
		return nil, fmt.Errorf("casbin roles: %w", err)
	}

	if len(p) > 0 {
		if _, err := e.AddPolicies(p); err != nil {
			return nil, err
		}
	}
	if len(g) > 0 {
		if _, err := e.AddGroupingPolicies(g); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func splitRules(lines []string, fields int) ([][]string, error) {
	out := make([][]string, 0, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, ",")
		if len(parts) != fields {
			return nil, fmt.Errorf("rule %q must have %d fields", line, fields)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		out = append(out, parts)
	}
	return out, nil
}
