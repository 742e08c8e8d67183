package clinic

import (
	"context"
	"database/sql"
	"sync"
)

// Schema lookups are hot (every tenant-scoped request resolves one), so the
// id -> schema mapping is cached in-process. Entries never change for a live
// clinic; deletes clear them explicitly.
var (
	schemaCache      = make(map[string]string)
	schemaCacheMutex sync.RWMutex
)

// GetSchemaNameByClinicID resolves a clinic's tenant schema, with caching.
func GetSchemaNameByClinicID(ctx context.Context, db *sql.DB, clinicID string) (string, error) {
	schemaCacheMutex.RLock()
	if schemaName, ok := schemaCache[clinicID]; ok {
		schemaCacheMutex.RUnlock()
		return schemaName, nil
	}
	schemaCacheMutex.RUnlock()

	query := `SELECT schema_name FROM dental.clinics WHERE id = $1 AND deleted_at IS NULL`
	var schemaName string
	err := db.QueryRowContext(ctx, query, clinicID).Scan(&schemaName)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}

	schemaCacheMutex.Lock()
	schemaCache[clinicID] = schemaName
	schemaCacheMutex.Unlock()

	return schemaName, nil
}

func ClearSchemaCache() {
	schemaCacheMutex.Lock()
	schemaCache = make(map[string]string)
	schemaCacheMutex.Unlock()
}
