// Package migrations embeds the schema and applies it in file-name order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/lrliang/hmf-ehr/internal/pkg/database"
)

//go:embed *.up.sql
var files embed.FS

// Apply runs every embedded *.up.sql file. Statements are idempotent, so
// Apply is safe on an already migrated database.
func Apply(ctx context.Context, db *database.DB) error {
	names, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		slog.Info("Migration applied", "file", name)
	}
	return nil
}
