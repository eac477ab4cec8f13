// Package scroll streams an unbounded query result as bounded pages over a cursor-based backend.
//
// The backend's paging primitive works in three steps: the first page is fetched by issuing
// the query with a keep-alive, later pages by presenting the cursor id, and the cursor must be
// released explicitly to free server-side state. Scroller wraps those steps:
//
//   - Open issues the query and returns a live Cursor with the first page.
//   - Next fetches the following page and refreshes the keep-alive.
//   - Close releases the cursor on a best-effort basis; failures are logged, never returned.
//   - Drive runs the whole scan, calling a callback once per non-empty page, and always
//     releases the cursor on the way out, including when the callback fails.
//
// Only one page is held in memory at a time. Cursors are never reopened after expiry: a
// reopened scroll would restart from the first page.
package scroll
