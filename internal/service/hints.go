// internal/service/hints.go
package service

import "strings"

// Backend errors get a best-effort hint appended so the operator does
// not have to decode postgres messages. Matching is by substring; an
// unrecognized error carries no hint.

func schemaHint(err error, table string) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "schema cache") ||
		strings.Contains(msg, "could not find the table") ||
		strings.Contains(msg, "does not exist") {
		return "Parece que la tabla `" + table + "` aún no existe. " +
			"Ejecuta `bodega migrate` para crear el esquema y vuelve a intentar."
	}
	return ""
}

func integerTypeHint(err error) string {
	if err == nil {
		return ""
	}
	if strings.Contains(err.Error(), "invalid input syntax for type integer") {
		return "La base de datos tiene `stock`/`min_stock` como INTEGER. " +
			"Ejecuta `bodega migrate` (ALTER COLUMN a NUMERIC) o usa valores enteros."
	}
	return ""
}

func withHint(message, hint string) string {
	if hint == "" {
		return message
	}
	return message + ". " + hint
}
