package services

import (
	"fmt"

	"github.com/arzan03/TaskManager/internal/models"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	ResourceTask = "task"
	ResourceUser = "user"
	// ResourceSelf is a user record edited by its own owner.
	ResourceSelf = "user:self"
)

const accessModel = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// accessRules lists, per role and resource, the fields that role may write.
var accessRules = map[string]map[string][]string{
	models.RoleManager: {
		ResourceTask: {"description", "priority", "status", "comment"},
		ResourceUser: {"name", "role", "email", "password", "contactno", "address"},
	},
	models.RoleEmployee: {
		ResourceTask: {"status", "comment"},
		ResourceSelf: {"name", "contactno", "address"},
	},
}

// AccessPolicy decides whether a role may write a set of fields.
type AccessPolicy struct {
	enforcer *casbin.SyncedEnforcer
}

func NewAccessPolicy() (*AccessPolicy, error) {
	m, err := model.NewModelFromString(accessModel)
	if err != nil {
		return nil, fmt.Errorf("access model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("access enforcer: %w", err)
	}

	var rules [][]string
	for role, resources := range accessRules {
		for resource, fields := range resources {
			for _, field := range fields {
				rules = append(rules, []string{role, resource, field})
			}
		}
	}
	if _, err := e.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("load access rules: %w", err)
	}

	return &AccessPolicy{enforcer: e}, nil
}

// IsAllowed reports whether role may write every one of fields on
// resource. One disallowed field rejects the whole set.
func (p *AccessPolicy) IsAllowed(role, resource string, fields []string) bool {
	for _, field := range fields {
		ok, err := p.enforcer.Enforce(role, resource, field)
		if err != nil || !ok {
			return false
		}
	}
	return true
}
