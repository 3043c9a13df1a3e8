package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/filevault/internal/apperror"
	"github.com/sakif/filevault/internal/model"
	"github.com/sakif/filevault/internal/repository"
)

// Compile-time check that *DB implements repository.FolderRepository.
var _ repository.FolderRepository = (*DB)(nil)

// encodeEditors marshals an editor id list into the TEXT column.
// nil means the entity was never shared and is stored as NULL.
func encodeEditors(ids []string) (sql.NullString, error) {
	if ids == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding editors: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeEditors(raw sql.NullString) ([]string, error) {
	if !raw.Valid {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw.String), &ids); err != nil {
		return nil, fmt.Errorf("decoding editors: %w", err)
	}
	return ids, nil
}

// CreateFolder inserts a new folder, generating its id. Duplicate names
// within a parent are allowed — there is no uniqueness constraint on name.
func (db *DB) CreateFolder(ctx context.Context, folder *model.Folder) error {
	folder.ID = xid.New().String()

	editors, err := encodeEditors(folder.EditorIDs)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO folders (id, name, is_public, editors_ids, parent_id, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		folder.ID,
		folder.Name,
		folder.IsPublic,
		editors,
		nullable(folder.ParentID),
		folder.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting folder %s: %w", folder.Name, err)
	}

	return nil
}

// GetFolderByID retrieves a folder by id.
// Returns apperror.ErrNotFound if it doesn't exist.
func (db *DB) GetFolderByID(ctx context.Context, id string) (*model.Folder, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, is_public, editors_ids, parent_id, owner_id
		 FROM folders WHERE id = ?`,
		id,
	)

	folder, err := scanFolder(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("folder", id)
		}
		return nil, fmt.Errorf("sqlite: getting folder %s: %w", id, err)
	}

	return folder, nil
}

// ListFolders returns folders visible to the viewer under one parent:
// rows owned by the viewer OR public, parent matching exactly (NULL for the
// root level), name containing the filter case-insensitively. Ordered by id
// ascending — xids sort by creation time, so this is creation order.
func (db *DB) ListFolders(ctx context.Context, f repository.ListFilter) ([]model.Folder, error) {
	query := `
		SELECT id, name, is_public, editors_ids, parent_id, owner_id
		FROM folders
		WHERE (owner_id = ? OR is_public = 1)
		  AND name LIKE '%' || ? || '%'`
	args := []any{f.ViewerID, f.Name}

	if f.ParentID == "" {
		query += ` AND parent_id IS NULL`
	} else {
		query += ` AND parent_id = ?`
		args = append(args, f.ParentID)
	}
	query += ` ORDER BY id ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing folders: %w", err)
	}
	defer rows.Close()

	folders := []model.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning folder row: %w", err)
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating folder rows: %w", err)
	}

	return folders, nil
}

// UpdateFolder sets name and visibility by id and returns the updated row.
// The update is unconditional — ownership is not checked here or in the
// service. TODO: add an owner check once the sharing model settles; delete
// already enforces one and the asymmetry is surprising.
func (db *DB) UpdateFolder(ctx context.Context, id, name string, isPublic bool) (*model.Folder, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE folders SET name = ?, is_public = ? WHERE id = ?`,
		name, isPublic, id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating folder %s: %w", id, err)
	}
	if err := requireAffected(res, "folder", id); err != nil {
		return nil, err
	}

	return db.GetFolderByID(ctx, id)
}

// UpdateFolderEditors replaces the editor id set by id, unconditionally.
func (db *DB) UpdateFolderEditors(ctx context.Context, id string, editorIDs []string) (*model.Folder, error) {
	editors, err := encodeEditors(editorIDs)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE folders SET editors_ids = ? WHERE id = ?`,
		editors, id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating folder editors %s: %w", id, err)
	}
	if err := requireAffected(res, "folder", id); err != nil {
		return nil, err
	}

	return db.GetFolderByID(ctx, id)
}

// DeleteFolder removes the folder row. Cascading (child files and their
// objects) is orchestrated by the service layer, not here.
func (db *DB) DeleteFolder(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting folder %s: %w", id, err)
	}
	return requireAffected(res, "folder", id)
}

// scanFolder reads one folder row through any Scan-shaped function
// (sql.Row.Scan or sql.Rows.Scan).
func scanFolder(scan func(dest ...any) error) (*model.Folder, error) {
	var (
		folder  model.Folder
		editors sql.NullString
		parent  sql.NullString
	)
	if err := scan(
		&folder.ID,
		&folder.Name,
		&folder.IsPublic,
		&editors,
		&parent,
		&folder.OwnerID,
	); err != nil {
		return nil, err
	}

	ids, err := decodeEditors(editors)
	if err != nil {
		return nil, err
	}
	folder.EditorIDs = ids
	folder.ParentID = parent.String

	return &folder, nil
}

// requireAffected converts a zero-row UPDATE/DELETE into a NotFound error.
func requireAffected(res sql.Result, resource, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected for %s %s: %w", resource, id, err)
	}
	if affected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
