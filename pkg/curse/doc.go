// Package curse is the addon provider client for the CurseForge v1 API.
//
// It performs the three lookups the addon reconciler needs (search by slug,
// file metadata and archive download) and carries no decision logic. Reads
// are retried with backoff; downloads are not.
package curse
