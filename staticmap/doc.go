// Package staticmap builds, signs and fetches Google Static Maps requests
// for use as heat map backgrounds.
//
// A Request describes the map: center, zoom, pixel size, and optional
// style rules and paths. Its URL method renders the query in the order the
// service expects. Requests above FreeTierMaxSize need premium credentials;
// those URLs carry a client ID and an HMAC-SHA1 signature.
//
// Fetcher performs the HTTP call with context cancellation, deduplicates
// concurrent identical fetches and can keep results in a ByteCache.
package staticmap
