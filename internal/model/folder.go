package model

// Folder is a node in the user's folder tree.
//
// ParentID links folders into a tree: the empty string means the folder sits
// at the root level. Nothing prevents reference cycles — the API only ever
// lists one level at a time, so a cycle would merely be unreachable garbage.
//
// EditorIDs is a set of user ids granted edit access. It is persisted and
// returned to clients, but no read or authorization path consults it yet.
// TODO: wire EditorIDs into the visibility check once the sharing UX lands.
type Folder struct {
	ID        string   `json:"id"        db:"id"`
	Name      string   `json:"name"      db:"name"`
	IsPublic  bool     `json:"isPublic"  db:"is_public"`
	EditorIDs []string `json:"editorsIds" db:"editors_ids"` // nil = never shared
	ParentID  string   `json:"parentId"  db:"parent_id"`    // "" = root level
	OwnerID   string   `json:"ownerId"   db:"owner_id"`
}
