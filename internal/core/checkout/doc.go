// Package checkout implements the order-submission workflow as pure
// functions: validate the checkout form, aggregate the cart, price it
// against the catalog, build the order and render the messaging relay.
//
// The shell (API handlers) performs the single persistence call and maps
// the two outcomes to a redirect or an alert message.
package checkout
