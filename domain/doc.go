// Package domain contains the back-office specializations built on the
// tenant-isolated repository: orders, products, categories, coupons and
// aggregate statistics.
//
// These types consume the repository's boundary interface only. None of them
// re-implements tenant filtering; isolation is inherited from the layer
// below, which is the whole point of enforcing it centrally.
package domain
