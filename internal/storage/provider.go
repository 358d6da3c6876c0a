// Package storage defines the file-system abstraction for scraps and the
// generated site.
package storage

// Provider is the interface for file operations under one root directory.
type Provider interface {
	// List returns every scrap file: top-level .md files and .md files one
	// directory deep, whose directory names the context.
	List() ([]ScrapFile, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Files returns the slash-separated paths of regular files under dir,
	// relative to root. A missing dir yields no files.
	Files(dir string) ([]string, error)
	// Remove deletes the file at path. Removing a missing file is not an error.
	Remove(path string) error
	// Root returns the absolute root directory.
	Root() string
}
