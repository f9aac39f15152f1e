package source

type (
	// FileID identifies a file inside a FileSet.
	FileID uint32
	// FileFlags describe how the file content was obtained.
	FileFlags uint8
)

const (
	// FileVirtual marks content that did not come from disk (tests, stdin, embedded AST text).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File holds the normalized content of one source and its line index.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}
