package access

import (
	"sort"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
)

// Action is an operation on a project or on something the project contains.
type Action string

const (
	ActionViewProject   Action = "project:view"
	ActionUpdateProject Action = "project:update"
	ActionDeleteProject Action = "project:delete"

	ActionViewTask   Action = "task:view"
	ActionCreateTask Action = "task:create"
	ActionUpdateTask Action = "task:update"
	ActionDeleteTask Action = "task:delete"
	ActionSetStatus  Action = "task:status"

	ActionViewTeam   Action = "team:view"
	ActionManageTeam Action = "team:manage"

	ActionViewNotes  Action = "note:view"
	ActionCreateNote Action = "note:create"
	ActionDeleteNote Action = "note:delete"

	ActionSubscribe Action = "events:subscribe"
)

type Decision int

const (
	Denied Decision = iota
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "denied"
}

type tier int

const (
	tierMember tier = iota
	tierManager
)

var actionTiers = map[Action]tier{
	ActionViewProject:   tierMember,
	ActionUpdateProject: tierManager,
	ActionDeleteProject: tierManager,
	ActionViewTask:      tierMember,
	ActionCreateTask:    tierManager,
	ActionUpdateTask:    tierManager,
	ActionDeleteTask:    tierManager,
	ActionSetStatus:     tierManager,
	ActionViewTeam:      tierMember,
	ActionManageTeam:    tierManager,
	ActionViewNotes:     tierMember,
	ActionCreateNote:    tierMember,
	ActionDeleteNote:    tierMember,
	ActionSubscribe:     tierMember,
}

// Permission decides whether actor may perform action on project. The
// manager may do everything; team members only what the member tier allows.
// Unknown actions are denied.
func Permission(actor uuid.UUID, project *domain.Project, action Action) Decision {
	if _, ok := actionTiers[action]; !ok || project == nil || actor == uuid.Nil {
		return Denied
	}
	if project.IsManager(actor) {
		return Allowed
	}
	if !ManagerOnly(action) && project.HasMember(actor) {
		return Allowed
	}
	return Denied
}

// ManagerOnly reports whether action is reserved to the project manager.
func ManagerOnly(action Action) bool {
	return actionTiers[action] == tierManager
}

// Actions lists every known action in a stable order.
func Actions() []Action {
	actions := make([]Action, 0, len(actionTiers))
	for a := range actionTiers {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}
