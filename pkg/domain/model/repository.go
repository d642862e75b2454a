package model

// RepositorySpec names a hub repository and the files to fetch from it, in order
type RepositorySpec struct {
	Repo  string   // Repository identifier such as "org/dataset"
	Files []string // Filenames inside the repository
}
