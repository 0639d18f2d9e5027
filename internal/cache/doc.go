// Package cache provides a small generic LRU used to keep decoded atlas
// pages alive across runtime reloads.
//
//	pages := cache.New[string, *image.NRGBA](16)
//	pages.Set(sum, img)
//	img, ok := pages.Get(sum)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
