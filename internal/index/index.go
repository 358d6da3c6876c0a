package index

// StampCache stores commit timestamps keyed by path and content checksum.
// Consumers depend on this interface rather than the concrete *DB type.
type StampCache interface {
	GetStamp(path, checksum string) (*CommitStamp, error)
	PutStamp(s CommitStamp) error
	DeleteStamp(path string) error
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies StampCache at compile time.
var _ StampCache = (*DB)(nil)

// CommitStamp is a cached commit timestamp for one revision of a file.
type CommitStamp struct {
	Path        string
	Checksum    string
	CommittedTS *int64
}
