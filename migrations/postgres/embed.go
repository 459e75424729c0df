// Package migrations embebe las migraciones SQL del registro del Hub.
package migrations

import "embed"

// FS contiene las migraciones de Postgres, aplicadas en orden lexicográfico.
// Solo se aplican los archivos *_up.sql.
//
//go:embed *.sql
var FS embed.FS

// Dir es el directorio dentro de FS donde viven las migraciones.
const Dir = "."
