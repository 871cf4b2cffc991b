// Package migrations содержит схему БД. Файлы встраиваются в бинарник и
// применяются goose при старте (DB_AUTO_MIGRATE=true) или из тестов.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
