package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Upsert registers a participant.
//
// Matching order: canonical path first (the participant is renamed), then
// normalised name (the participant is repointed), else a new participant is
// inserted. created reports whether a new row was written.
func (r *Roster) Upsert(ctx context.Context, name, modulePath string) (p Participant, created bool, err error) {
	name = NormalizeName(name)
	modulePath = CanonicalPath(modulePath)
	if err := validate(name, modulePath); err != nil {
		return Participant{}, false, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Participant{}, false, fmt.Errorf("upsert participant: %w", err)
	}
	defer tx.Rollback()

	now := r.timestamp()
	var id string

	err = tx.QueryRowContext(ctx, `SELECT id FROM participants WHERE path = ?`, modulePath).Scan(&id)
	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx,
			`UPDATE participants SET name = ?, name_key = ?, updated_at = ? WHERE id = ?`,
			name, name, now, id)
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM participants WHERE name_key = ? ORDER BY created_at, id LIMIT 1`, name).Scan(&id)
		switch {
		case err == nil:
			_, err = tx.ExecContext(ctx,
				`UPDATE participants SET path = ?, updated_at = ? WHERE id = ?`,
				modulePath, now, id)
		case errors.Is(err, sql.ErrNoRows):
			id = r.ids()
			created = true
			_, err = tx.ExecContext(ctx, `
				INSERT INTO participants (id, name, name_key, path, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, id, name, name, modulePath, now, now)
		}
	}
	if isUniqueViolation(err) {
		return Participant{}, false, fmt.Errorf("%w: %s", ErrConflict, name)
	}
	if err != nil {
		return Participant{}, false, fmt.Errorf("upsert participant: %w", err)
	}

	p, err = scanParticipant(tx.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if err != nil {
		return Participant{}, false, fmt.Errorf("upsert participant: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Participant{}, false, fmt.Errorf("upsert participant: %w", err)
	}
	return p, created, nil
}

// Get returns the participant with id.
func (r *Roster) Get(ctx context.Context, id string) (Participant, error) {
	p, err := scanParticipant(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Participant{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Participant{}, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

// List returns every participant ordered by name, then id.
func (r *Roster) List(ctx context.Context) ([]Participant, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("list participants: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return out, nil
}

// Patch updates the non-nil fields of participant id.
func (r *Roster) Patch(ctx context.Context, id string, name, modulePath *string) (Participant, error) {
	cur, err := r.Get(ctx, id)
	if err != nil {
		return Participant{}, err
	}
	newName, newPath := cur.Name, cur.Path
	if name != nil {
		newName = NormalizeName(*name)
	}
	if modulePath != nil {
		newPath = CanonicalPath(*modulePath)
	}
	if err := validate(newName, newPath); err != nil {
		return Participant{}, err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE participants SET name = ?, name_key = ?, path = ?, updated_at = ? WHERE id = ?`,
		newName, newName, newPath, r.timestamp(), id)
	if isUniqueViolation(err) {
		return Participant{}, fmt.Errorf("%w: %s (%s)", ErrConflict, newName, newPath)
	}
	if err != nil {
		return Participant{}, fmt.Errorf("patch participant: %w", err)
	}
	return r.Get(ctx, id)
}

// Delete removes participant id.
func (r *Roster) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Resolve finds a participant by id, then by name, then by path.
func (r *Roster) Resolve(ctx context.Context, ref string) (Participant, error) {
	lookups := []struct {
		where string
		arg   string
	}{
		{`id = ?`, ref},
		{`name_key = ?`, NormalizeName(ref)},
		{`path = ?`, CanonicalPath(ref)},
	}
	for _, l := range lookups {
		if l.arg == "" {
			continue
		}
		p, err := scanParticipant(r.db.QueryRowContext(ctx,
			selectColumns+` WHERE `+l.where+` ORDER BY created_at, id LIMIT 1`, l.arg))
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Participant{}, fmt.Errorf("resolve participant: %w", err)
		}
	}
	return Participant{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}
