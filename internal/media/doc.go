// Package media enumerates candidate files from an export tree, restricted
// to the fixed allow-list of still-image, video, and raw extensions.
package media
