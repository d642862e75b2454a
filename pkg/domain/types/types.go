package types

// Version is set at build time via -ldflags.
var Version = "dev"

// RepoType discriminates the kind of hub repository a file is fetched from
type RepoType string

const (
	RepoTypeDataset RepoType = "dataset"
	RepoTypeModel   RepoType = "model"
	RepoTypeSpace   RepoType = "space"
)

// IsValid checks whether the repository type is one the hub knows about
func (t RepoType) IsValid() bool {
	switch t {
	case RepoTypeDataset, RepoTypeModel, RepoTypeSpace:
		return true
	}
	return false
}

func (t RepoType) String() string {
	return string(t)
}
