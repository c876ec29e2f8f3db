package model

// Path represents a file system path.
type Path string

// File represents a listing file on disk.
type File struct {
	ShortPath Path
	FullPath  Path
	Hash      string
}

// Source is a decoded class listing waiting to be mutated.
type Source struct {
	Origin *File
	// Class is the class name declared by the listing, filled once the listing is loaded.
	Class string
}
