// Package syncconf holds the configuration of a sync relationship: which
// collections are involved, the marker prefix, the time windows and the set of
// synced fields.
package syncconf
