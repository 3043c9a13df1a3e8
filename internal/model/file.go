package model

// File is the metadata record for an object stored externally.
//
// The binary payload lives in the object store under Key; this row only
// records who owns it and where it sits in the folder tree. FolderID mirrors
// Folder.ParentID: the empty string means the file is at the root level.
type File struct {
	ID        string   `json:"id"        db:"id"`
	Name      string   `json:"name"      db:"name"`
	Key       string   `json:"key"       db:"key"` // object-store key
	IsPublic  bool     `json:"isPublic"  db:"is_public"`
	EditorIDs []string `json:"editorsIds" db:"editors_ids"`
	FolderID  string   `json:"folderId"  db:"folder_id"` // "" = root level
	OwnerID   string   `json:"ownerId"   db:"owner_id"`
}
