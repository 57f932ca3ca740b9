// Package cli provides the command-line interface for productctl.
//
// Every command builds a productsync.Controller over the remote product
// service and acts as a view of it:
//   - list: mount the controller and print the product list
//   - add: edit the draft from flags (or a form) and submit it
//   - delete: remove a product by ID
//   - shell: interactive session that re-renders after every change
//   - serve: local web view with live updates over WebSocket
//   - config: show the effective configuration and where each value came from
//   - version: show build information
//
// Usage:
//
//	productctl list --where 'price > 100'
//	productctl add --title Backpack --price 109.95 --description "Fits 15in laptops"
//	productctl delete 21
//	productctl shell
//	productctl serve --addr 127.0.0.1:4300
package cli
