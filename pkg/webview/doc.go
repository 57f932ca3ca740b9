// Package webview serves a browser view of a productsync.Controller.
//
// Routes:
//
//	GET    /                     HTML page of the current state
//	GET    /api/state            JSON snapshot
//	PUT    /api/draft/{field}    {"value": "..."} edits one draft field
//	POST   /api/draft/submit     submits the draft (422 invalid, 502 remote failure)
//	DELETE /api/products/{id}    deletes a product (502 remote failure)
//	POST   /api/refresh          reloads the product list
//	GET    /ws                   WebSocket of state snapshots and notices
//
// Every WebSocket client first receives the current state, then a
// {"type":"state"} message per change and a {"type":"notice"} message per
// notice, in the order the controller produced them.
package webview
