// Package productsync keeps a local view of the remote product collection in
// step with the outcomes of list, create and delete calls.
//
// A Controller owns four pieces of state: the product list, the draft being
// edited, a loading flag and an error message. Views read snapshots through
// State or Subscribe and drive the controller through its operations:
//
//	ctrl := productsync.New(client, productsync.WithLogger(log))
//	ctrl.Subscribe(render)
//	_ = ctrl.Mount(ctx)                       // first refresh, once
//	_ = ctrl.EditDraftField("title", "Backpack")
//	_ = ctrl.SubmitDraft(ctx)
//	_ = ctrl.DeleteProduct(ctx, "1")
//
// Each operation makes exactly one attempt. There are no retries and the
// controller adds no timeout of its own; the context is passed through to the
// service unchanged.
//
// Rules the controller maintains:
//   - loading is true only while a Refresh is in flight.
//   - error is cleared only by a successful Refresh; any failed remote call
//     sets it to a fixed message for that operation.
//   - a draft that fails validation never reaches the network and leaves the
//     state untouched.
//   - the draft resets to its defaults only after a successful submit.
//
// Operations issued concurrently are not ordered against each other. A
// Refresh that completes after a Submit has appended its product replaces the
// list with the service's response.
package productsync
