// Package filter implements the size filters that decide, per data item,
// whether the item is kept or discarded before it reaches a transformer.
//
// The package is built around the [Filter] interface. [Config] maps a
// filter type and inclusive size bounds to one concrete filter:
//
//   - [NullFilter] keeps everything.
//   - [ObjectSizeFilter] measures the in-memory footprint of an item.
//   - [PickleSizeFilter] measures the byte length of an item's serialized form.
package filter
