package db

import (
  "strings"
  "testing"
)

// The startup migration must survive a second process start: every constraint
// it adds is dropped first, so re-running AutoMigrateAll cannot fail on a
// constraint that already exists.
func TestForeignKeyMigrationIsRerunnable(t *testing.T) {
  if len(foreignKeys) != 2 {
    t.Fatalf("want constraints for refresh_token and chat_detail, got %d", len(foreignKeys))
  }
  seen := map[string]bool{}
  for _, fk := range foreignKeys {
    if seen[fk.name] {
      t.Fatalf("duplicate constraint name %q", fk.name)
    }
    seen[fk.name] = true

    drop := fk.dropSQL()
    if !strings.Contains(drop, "DROP CONSTRAINT IF EXISTS") {
      t.Fatalf("drop statement for %s is not guarded: %s", fk.name, drop)
    }
    if !strings.Contains(drop, `"`+fk.table+`"`) || !strings.Contains(drop, `"`+fk.name+`"`) {
      t.Fatalf("drop statement for %s does not target its table and name: %s", fk.name, drop)
    }

    add := fk.addSQL()
    if !strings.Contains(add, `ADD CONSTRAINT "`+fk.name+`"`) {
      t.Fatalf("add statement for %s does not name its constraint: %s", fk.name, add)
    }
    if !strings.Contains(add, "ON DELETE CASCADE") {
      t.Fatalf("constraint %s must cascade deletes: %s", fk.name, add)
    }
    if !strings.Contains(add, `REFERENCES "user_profile"("id")`) {
      t.Fatalf("constraint %s must reference user_profile: %s", fk.name, add)
    }
  }
}
