package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	profilesvc "github.com/AlonsoPV/baileApp-sub007/internal/services/profiles"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// profileColumns is the write whitelist for the fallback upsert. Keys
// outside this list never reach SQL, whatever the patch carries.
var profileColumns = []struct {
	name string
	cast string
}{
	{name: "display_name"},
	{name: "bio"},
	{name: "avatar_url"},
	{name: "dance_role"},
	{name: "ritmos"},
	{name: "zonas"},
	{name: "premios"},
	{name: "respuestas", cast: "::jsonb"},
	{name: "redes", cast: "::jsonb"},
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int64) (map[string]any, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, profilesvc.ErrProfileNotFound
	}

	var raw []byte
	err := r.pool.QueryRow(ctx, `
SELECT to_jsonb(p) - 'id'
FROM profiles p
WHERE user_id = $1
`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profilesvc.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile by user_id: %w", err)
	}

	record := map[string]any{}
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode profile row: %w", err)
	}

	return record, nil
}

// ApplyPatch invokes the server-side merge procedure with the whole patch
// as one jsonb document.
func (r *ProfileRepo) ApplyPatch(ctx context.Context, userID int64, patch map[string]any) error {
	if r.pool == nil {
		return nil
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	payload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal profile patch: %w", err)
	}

	if _, err := r.pool.Exec(ctx, `
SELECT profile_apply_patch($1, $2::jsonb)
`, userID, string(payload)); err != nil {
		return wrapProfileWriteErr("apply profile patch", err)
	}

	return nil
}

// UpsertPatch is the fallback write path: a plain insert-or-update built
// from the patch's whitelisted columns only.
func (r *ProfileRepo) UpsertPatch(ctx context.Context, userID int64, patch map[string]any) error {
	if r.pool == nil {
		return nil
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	columns := []string{"user_id"}
	placeholders := []string{"$1"}
	updates := []string{}
	args := []any{userID}

	for _, col := range profileColumns {
		value, ok := patch[col.name]
		if !ok {
			continue
		}
		if col.cast == "::jsonb" && value != nil {
			encoded, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("marshal %s column: %w", col.name, err)
			}
			value = string(encoded)
		}
		args = append(args, value)
		columns = append(columns, col.name)
		placeholders = append(placeholders, fmt.Sprintf("$%d%s", len(args), col.cast))
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col.name, col.name))
	}

	if len(updates) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
INSERT INTO profiles (%s, created_at, updated_at)
VALUES (%s, NOW(), NOW())
ON CONFLICT (user_id) DO UPDATE SET
	%s,
	updated_at = NOW()
`, strings.Join(columns, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ",\n\t"))

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return wrapProfileWriteErr("upsert profile patch", err)
	}

	return nil
}

// SetOnboardingCompleted writes the completion flag directly. The patch
// pipeline never carries this column; the onboarding flow owns it.
func (r *ProfileRepo) SetOnboardingCompleted(ctx context.Context, userID int64, completed bool) error {
	if r.pool == nil {
		return nil
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO profiles (user_id, onboarding_completed, created_at, updated_at)
VALUES ($1, $2, NOW(), NOW())
ON CONFLICT (user_id) DO UPDATE SET
	onboarding_completed = EXCLUDED.onboarding_completed,
	updated_at = NOW()
`, userID, completed); err != nil {
		return wrapProfileWriteErr("set onboarding completed", err)
	}

	return nil
}

// wrapProfileWriteErr preserves structured postgres rejections so the
// service can tell a constraint violation from a network failure.
func wrapProfileWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, &profilesvc.RejectionError{
			Code:    pgErr.Code,
			Message: pgErr.Message,
		})
	}
	return fmt.Errorf("%s: %w", op, err)
}
