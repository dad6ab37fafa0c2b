package domain

// Action enumerates the operations the authorization policy decides on.
type Action string

// Actions a user may attempt against a task.
const (
	ActionCreate         Action = "create"
	ActionReadOne        Action = "read_one"
	ActionReadMany       Action = "read_many"
	ActionUpdateFields   Action = "update_fields"
	ActionUpdateStatus   Action = "update_status"
	ActionUpdatePriority Action = "update_priority"
	ActionDelete         Action = "delete"
)

// Allowed is the authorization policy: it decides whether the acting user may
// perform the given action on the task. Admins are always allowed. The
// creator may do everything; the assignee may read the task and change its
// status but not edit its fields, priority or existence.
//
// The task may be nil only for ActionCreate and ActionReadMany, which are not
// scoped to a single task.
func Allowed(user *User, task *Task, action Action) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}

	switch action {
	case ActionCreate, ActionReadMany:
		// Any authenticated user; ReadMany scoping happens at the query level.
		return true
	}

	if task == nil {
		return false
	}

	isCreator := task.CreatedBy == user.ID
	isAssignee := task.AssignedTo == user.ID

	switch action {
	case ActionReadOne, ActionUpdateStatus:
		return isCreator || isAssignee
	case ActionUpdateFields, ActionUpdatePriority, ActionDelete:
		return isCreator
	default:
		return false
	}
}
