// Package database provides SQLite-based storage for Astra scan data.
//
// This package implements the ScanDB, which stores:
//   - The crawled page inventory for each target
//   - Scan reports for historical comparison across runs
//
// Design decision: We use SQLite (via modernc.org/sqlite) rather than a
// client/server database because:
// 1. The whole history lives in a single file under the user's data directory
// 2. The CGO-free driver keeps cross-compilation trivial
// 3. One scanner process is the only writer, so SQLite's locking model fits
// 4. WAL mode provides good concurrent read performance
package database
