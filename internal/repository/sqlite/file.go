package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/filevault/internal/apperror"
	"github.com/sakif/filevault/internal/model"
	"github.com/sakif/filevault/internal/repository"
)

// Compile-time check that *DB implements repository.FileRepository.
var _ repository.FileRepository = (*DB)(nil)

// CreateFile inserts a new file metadata row, generating its id.
// folder_id, if set, must reference an existing folder — enforced only by
// the foreign-key constraint, not by application logic.
func (db *DB) CreateFile(ctx context.Context, file *model.File) error {
	file.ID = xid.New().String()

	editors, err := encodeEditors(file.EditorIDs)
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO files (id, name, key, is_public, editors_ids, folder_id, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		file.ID,
		file.Name,
		file.Key,
		file.IsPublic,
		editors,
		nullable(file.FolderID),
		file.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting file %s: %w", file.Name, err)
	}

	return nil
}

// GetFileByID retrieves a file by id.
// Returns apperror.ErrNotFound if it doesn't exist.
func (db *DB) GetFileByID(ctx context.Context, id string) (*model.File, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, key, is_public, editors_ids, folder_id, owner_id
		 FROM files WHERE id = ?`,
		id,
	)

	file, err := scanFile(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("file", id)
		}
		return nil, fmt.Errorf("sqlite: getting file %s: %w", id, err)
	}

	return file, nil
}

// ListFiles returns files visible to the viewer inside one folder, with the
// same visibility, filtering, and ordering rules as ListFolders.
func (db *DB) ListFiles(ctx context.Context, f repository.ListFilter) ([]model.File, error) {
	query := `
		SELECT id, name, key, is_public, editors_ids, folder_id, owner_id
		FROM files
		WHERE (owner_id = ? OR is_public = 1)
		  AND name LIKE '%' || ? || '%'`
	args := []any{f.ViewerID, f.Name}

	if f.ParentID == "" {
		query += ` AND folder_id IS NULL`
	} else {
		query += ` AND folder_id = ?`
		args = append(args, f.ParentID)
	}
	query += ` ORDER BY id ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing files: %w", err)
	}
	defer rows.Close()

	return collectFiles(rows)
}

// ListFilesByFolder returns every file row in the folder regardless of
// owner or visibility. The folder delete cascade uses this to find all
// backing objects that need removal.
func (db *DB) ListFilesByFolder(ctx context.Context, folderID string) ([]model.File, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, key, is_public, editors_ids, folder_id, owner_id
		 FROM files WHERE folder_id = ? ORDER BY id ASC`,
		folderID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing files by folder %s: %w", folderID, err)
	}
	defer rows.Close()

	return collectFiles(rows)
}

// UpdateFile sets name and visibility by id, unconditionally (no ownership
// check — see UpdateFolder).
func (db *DB) UpdateFile(ctx context.Context, id, name string, isPublic bool) (*model.File, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE files SET name = ?, is_public = ? WHERE id = ?`,
		name, isPublic, id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating file %s: %w", id, err)
	}
	if err := requireAffected(res, "file", id); err != nil {
		return nil, err
	}

	return db.GetFileByID(ctx, id)
}

// UpdateFileEditors replaces the editor id set by id, unconditionally.
func (db *DB) UpdateFileEditors(ctx context.Context, id string, editorIDs []string) (*model.File, error) {
	editors, err := encodeEditors(editorIDs)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE files SET editors_ids = ? WHERE id = ?`,
		editors, id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating file editors %s: %w", id, err)
	}
	if err := requireAffected(res, "file", id); err != nil {
		return nil, err
	}

	return db.GetFileByID(ctx, id)
}

// DeleteFile removes a single file row.
func (db *DB) DeleteFile(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting file %s: %w", id, err)
	}
	return requireAffected(res, "file", id)
}

// DeleteFilesByFolder bulk-removes all file rows in a folder. Zero rows is
// not an error — an empty folder is a normal cascade target.
func (db *DB) DeleteFilesByFolder(ctx context.Context, folderID string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM files WHERE folder_id = ?`, folderID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting files by folder %s: %w", folderID, err)
	}
	return nil
}

func scanFile(scan func(dest ...any) error) (*model.File, error) {
	var (
		file    model.File
		editors sql.NullString
		folder  sql.NullString
	)
	if err := scan(
		&file.ID,
		&file.Name,
		&file.Key,
		&file.IsPublic,
		&editors,
		&folder,
		&file.OwnerID,
	); err != nil {
		return nil, err
	}

	ids, err := decodeEditors(editors)
	if err != nil {
		return nil, err
	}
	file.EditorIDs = ids
	file.FolderID = folder.String

	return &file, nil
}

func collectFiles(rows *sql.Rows) ([]model.File, error) {
	files := []model.File{}
	for rows.Next() {
		file, err := scanFile(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning file row: %w", err)
		}
		files = append(files, *file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating file rows: %w", err)
	}
	return files, nil
}
