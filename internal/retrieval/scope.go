package retrieval

import "github.com/kyungsinkim-sketch/nexus-planner-spark/internal/store"

// matchesScope applies the hybrid_search scope-projection table: which rows
// a requested scope ∈ {personal, team, role, all} admits.
//
//	personal  scope=personal AND user_id equals request user
//	team      scope ∈ {team, global} AND (project_id equals request project OR project_id is null)
//	role      scope ∈ {role, global} AND (role_tag equals request role OR role_tag is null)
//	all       own (user matches, non-null) OR team-matching-project OR scope ∈ {role, global}
func matchesScope(item *store.KnowledgeItem, scope string, roleTag, userID, projectID *string) bool {
	switch scope {
	case "personal":
		return item.Scope == "personal" && stringPtrEq(item.UserID, userID)
	case "team":
		if item.Scope != "team" && item.Scope != "global" {
			return false
		}
		return item.ProjectID == nil || stringPtrEq(item.ProjectID, projectID)
	case "role":
		if item.Scope != "role" && item.Scope != "global" {
			return false
		}
		return item.RoleTag == nil || stringPtrEq(item.RoleTag, roleTag)
	default: // "all"
		own := item.UserID != nil && userID != nil && *item.UserID == *userID
		teamMatch := item.Scope == "team" && (item.ProjectID == nil || stringPtrEq(item.ProjectID, projectID))
		broadcast := item.Scope == "role" || item.Scope == "global"
		return own || teamMatch || broadcast
	}
}

// matchesDialecticScope applies dialectic_search's scope/role admission:
// role or global rows, the caller's own personal rows, or team rows with
// no project set. Role admission separately wildcards on a missing
// role_tag, an exact match, or the broadcast-visible "CEO" tag.
func matchesDialecticScope(item *store.KnowledgeItem, roleTag, userID *string) bool {
	scopeOK := item.Scope == "role" || item.Scope == "global" ||
		(item.Scope == "personal" && stringPtrEq(item.UserID, userID)) ||
		(item.Scope == "team" && item.ProjectID == nil)
	if !scopeOK {
		return false
	}
	if item.RoleTag == nil {
		return true
	}
	if *item.RoleTag == "CEO" {
		return true
	}
	return stringPtrEq(item.RoleTag, roleTag)
}

func stringPtrEq(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
