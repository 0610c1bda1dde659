// Package catalogapi exposes the unified catalog over HTTP.
//
// It is a read-only surface over the stored catalog: the unify pipeline
// writes products and variants through core/catalog, this feature serves
// them.
//
// # HTTP Endpoints
//
//   - GET /products : List products (limit/offset query parameters).
//   - GET /products/:code : Get one product by its product code.
//   - GET /products/:code/variants : Get the variants of one product.
package catalogapi
