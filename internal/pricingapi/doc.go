// Package pricingapi provides the HTTP client for the pricing service.
//
// # Endpoints
//
//	GET  /pricing/{category}   pricing matrix for a product category
//	GET  /quotes/{id}          a saved quote
//	POST /quotes               store a quote, returns the stored copy
//
// # Client
//
// Client implements API with a 5 second request timeout. Concurrent GETs
// for the same path are collapsed into one request with singleflight; each
// caller still decodes into its own destination. Responses with status 400
// or above become *StatusError, which matches ErrStatus under errors.Is.
//
// # Testing
//
// Effects depend on the API interface, so tests can substitute a fake or
// point a real Client at an httptest.Server:
//
//	server := httptest.NewServer(handler)
//	c, _ := pricingapi.NewClient(server.URL)
package pricingapi
