// Package database provides PostgreSQL connectivity and repositories.
//
// Uses pgx for connection pooling. Repositories implement the engines'
// collaborator interfaces: the aggregate reader feeding the correlation
// engine, the raw-record reader feeding dataset export, and the
// best-effort audit repository for privacy operations, completed
// analyses, and dataset metadata.
package database
